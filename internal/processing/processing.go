// Package processing runs a tool end to end: option decoding, prompt
// construction, per-tool upstream parameters and the single gateway call.
package processing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/foxholm/foxholm/internal/gateway"
	"github.com/foxholm/foxholm/internal/imaging"
	"github.com/foxholm/foxholm/internal/metrics"
	"github.com/foxholm/foxholm/internal/prompt"
	"github.com/foxholm/foxholm/internal/tool"
)

// maxSeed bounds generated seeds to the range the upstream accepts.
const maxSeed = 10_000_000

// Request is one processing submission.
type Request struct {
	ToolID    string
	ImageData string
	Options   map[string]json.RawMessage
}

// Details describes how the result was produced.
type Details struct {
	Prompt          string       `json:"prompt"`
	Options         tool.Options `json:"options"`
	Model           string       `json:"model"`
	Provider        string       `json:"provider"`
	Seed            int64        `json:"seed"`
	UsedSourceImage bool         `json:"usedSourceImage"`
	Scale           int          `json:"scale,omitempty"`
	Timestamp       string       `json:"timestamp"`
}

// Result is returned to the caller and never stored.
type Result struct {
	ToolID             string                  `json:"toolId"`
	OriginalImage      string                  `json:"originalImage"`
	ProcessedImage     string                  `json:"processedImage"`
	Analysis           *imaging.DamageAnalysis `json:"analysis,omitempty"`
	OriginalDimensions *imaging.Dimensions     `json:"originalDimensions,omitempty"`
	TargetDimensions   *imaging.Dimensions     `json:"targetDimensions,omitempty"`
	ProcessingDetails  Details                 `json:"processingDetails"`
}

// Config tunes the pipeline.
type Config struct {
	Limits             imaging.Limits
	MaxSourceDimension int
	MaxOutputDimension int
	Steps              int
	// Seed returns the seed for a call. Defaults to a random value.
	Seed func() int64
	Now  func() time.Time
}

// DefaultConfig mirrors the public service limits.
func DefaultConfig() Config {
	return Config{
		Limits:             imaging.DefaultLimits(),
		MaxSourceDimension: 2048,
		MaxOutputDimension: imaging.DefaultMaxOutputDimension,
		Steps:              39,
	}
}

// Processor is safe for concurrent use.
type Processor struct {
	registry *tool.Registry
	prompts  *prompt.Generator
	gateway  gateway.Gateway
	cfg      Config
}

// New wires a processor. A nil prompt generator uses the built-in templates.
func New(registry *tool.Registry, prompts *prompt.Generator, gw gateway.Gateway, cfg Config) *Processor {
	if prompts == nil {
		prompts = prompt.New()
	}
	if cfg.Seed == nil {
		cfg.Seed = func() int64 { return rand.Int64N(maxSeed-1) + 1 }
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.MaxOutputDimension == 0 {
		cfg.MaxOutputDimension = imaging.DefaultMaxOutputDimension
	}
	return &Processor{registry: registry, prompts: prompts, gateway: gw, cfg: cfg}
}

// Registry exposes the tool registry the processor resolves against.
func (p *Processor) Registry() *tool.Registry {
	return p.registry
}

// Provider returns the gateway name.
func (p *Processor) Provider() string {
	if p.gateway == nil {
		return ""
	}
	return p.gateway.Name()
}

// Prompt resolves the tool and builds its prompt without calling upstream.
func (p *Processor) Prompt(toolID string, raw map[string]json.RawMessage) (*tool.ToolConfig, tool.Options, string, error) {
	cfg, err := p.registry.Lookup(toolID)
	if err != nil {
		return nil, nil, "", err
	}
	opts, err := cfg.DecodeOptions(raw)
	if err != nil {
		return nil, nil, "", err
	}
	opts = cfg.ApplyDefaults(opts)
	return cfg, opts, p.prompts.Build(cfg.PromptTemplate, opts), nil
}

// Process validates req, calls the gateway exactly once and assembles the
// result. Unknown tools and invalid input fail before any upstream call.
func (p *Processor) Process(ctx context.Context, req Request) (res *Result, err error) {
	start := time.Now()
	toolLabel := "unknown"
	defer func() {
		metrics.RecordProcess(toolLabel, statusLabel(err), time.Since(start))
	}()

	cfg, opts, text, err := p.Prompt(req.ToolID, req.Options)
	if err != nil {
		return nil, err
	}
	toolLabel = cfg.ID

	// The declared media type is ignored; Inspect sniffs the real one.
	data, _, err := imaging.DecodeDataURL(req.ImageData)
	if err != nil {
		return nil, err
	}
	info, err := imaging.Inspect(data, p.cfg.Limits)
	if err != nil {
		return nil, err
	}

	upload, uploadInfo := data, info
	// Only oversized sources pay for a full decode.
	if limit := p.cfg.MaxSourceDimension; limit > 0 && (info.Width > limit || info.Height > limit) {
		upload, uploadInfo, err = imaging.Fit(data, p.cfg.MaxSourceDimension)
		if err != nil {
			return nil, err
		}
	}

	plan := planFor(cfg)(cfg, opts, *info, p.cfg.MaxOutputDimension)
	if plan.promptSuffix != "" {
		text = text + ", " + plan.promptSuffix
	}

	gwReq := &gateway.Request{
		Model:    cfg.Processing.Model,
		Prompt:   text,
		Width:    plan.width,
		Height:   plan.height,
		Strength: plan.strength,
		Steps:    p.cfg.Steps,
		Seed:     p.cfg.Seed(),
	}
	if cfg.Processing.SupportsImage {
		gwReq.Image = upload
		gwReq.MimeType = uploadInfo.MimeType
	}

	if p.gateway == nil {
		return nil, &gateway.Error{Kind: gateway.KindInternal, Message: "no image provider configured"}
	}
	callStart := time.Now()
	out, err := p.gateway.Transform(ctx, gwReq)
	metrics.RecordUpstreamCall(p.gateway.Name(), err, time.Since(callStart))
	if err != nil {
		return nil, gateway.Classify(p.gateway.Name(), err)
	}

	model := out.Model
	if model == "" {
		model = gwReq.Model
	}
	seed := out.Seed
	if seed == 0 {
		seed = gwReq.Seed
	}

	return &Result{
		ToolID:             cfg.ID,
		OriginalImage:      imaging.EnsureDataURL(req.ImageData),
		ProcessedImage:     out.ImageRef,
		Analysis:           plan.analysis,
		OriginalDimensions: plan.original,
		TargetDimensions:   plan.target,
		ProcessingDetails: Details{
			Prompt:          text,
			Options:         opts,
			Model:           model,
			Provider:        p.gateway.Name(),
			Seed:            seed,
			UsedSourceImage: out.UsedSourceImage,
			Scale:           plan.scale,
			Timestamp:       p.cfg.Now().UTC().Format(time.RFC3339Nano),
		},
	}, nil
}

func statusLabel(err error) string {
	if err == nil {
		return "success"
	}
	var nf *tool.NotFoundError
	var verr *tool.ValidationError
	switch {
	case errors.As(err, &nf):
		return "invalid_tool"
	case errors.As(err, &verr), errors.Is(err, imaging.ErrInvalid):
		return "invalid_input"
	default:
		return fmt.Sprintf("upstream_%s", gateway.KindOf(err))
	}
}

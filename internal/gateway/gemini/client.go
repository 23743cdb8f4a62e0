// Package gemini implements the gateway on Google's Gemini image models.
package gemini

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"google.golang.org/genai"

	"github.com/foxholm/foxholm/internal/gateway"
	"github.com/foxholm/foxholm/internal/imaging"
)

const (
	// DefaultModel is used when neither the client nor the request names one.
	DefaultModel = "gemini-2.5-flash-image"
	providerName = "gemini"
)

// Generator is the subset of the genai models service the client needs.
type Generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Client sends image edits to Gemini.
type Client struct {
	APIKey  string
	Model   string
	Timeout time.Duration

	once      sync.Once
	generator Generator
	initErr   error
}

// NewClient returns a client for apiKey. The genai client is created lazily
// on the first call.
func NewClient(apiKey, model string) *Client {
	model = strings.TrimSpace(model)
	if model == "" {
		model = DefaultModel
	}
	return &Client{APIKey: strings.TrimSpace(apiKey), Model: model}
}

// NewClientWithGenerator wires a preconstructed generator, mainly for tests.
func NewClientWithGenerator(g Generator, model string) *Client {
	c := NewClient("injected", model)
	c.generator = g
	c.once.Do(func() {})
	return c
}

// Name returns the provider identifier.
func (c *Client) Name() string {
	return providerName
}

func (c *Client) models(ctx context.Context) (Generator, error) {
	c.once.Do(func() {
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  c.APIKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			c.initErr = err
			return
		}
		c.generator = client.Models
	})
	return c.generator, c.initErr
}

// Transform sends the prompt and source image as one GenerateContent call
// and returns the first inline image part as a data URL. Width, height and
// strength have no Gemini counterpart and are ignored.
func (c *Client) Transform(ctx context.Context, req *gateway.Request) (*gateway.Result, error) {
	if c == nil {
		return nil, &gateway.Error{Kind: gateway.KindInternal, Provider: providerName, Message: "gemini client not configured"}
	}
	if c.APIKey == "" {
		return nil, &gateway.Error{Kind: gateway.KindAuth, Provider: providerName, Message: "api key is not configured"}
	}
	if req == nil || strings.TrimSpace(req.Prompt) == "" {
		return nil, &gateway.Error{Kind: gateway.KindBadRequest, Provider: providerName, Message: "prompt is required"}
	}

	ctx, cancel := gateway.WithTimeout(ctx, c.Timeout)
	defer cancel()

	gen, err := c.models(ctx)
	if err != nil {
		return nil, &gateway.Error{Kind: gateway.KindInternal, Provider: providerName, Message: "create gemini client", Err: err}
	}

	model := c.Model
	if strings.HasPrefix(req.Model, "gemini") {
		model = req.Model
	}

	parts := []*genai.Part{genai.NewPartFromText(req.Prompt)}
	if req.HasImage() {
		mimeType := req.MimeType
		if mimeType == "" {
			mimeType = "image/png"
		}
		parts = append(parts, genai.NewPartFromBytes(req.Image, mimeType))
	}
	contents := []*genai.Content{{Role: "user", Parts: parts}}

	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{"IMAGE", "TEXT"},
	}
	if req.Seed != 0 {
		seed := int32(req.Seed % (1 << 31))
		config.Seed = &seed
	}

	start := time.Now()
	result, err := gen.GenerateContent(ctx, model, contents, config)
	entry := gateway.TraceEntry{
		Provider:   providerName,
		Endpoint:   "models/" + model + ":generateContent",
		Method:     "POST",
		Model:      model,
		DurationMs: time.Since(start).Milliseconds(),
	}
	if err != nil {
		entry.Error = err.Error()
		gateway.Trace(entry)
		return nil, classify(err)
	}
	gateway.Trace(entry)

	ref, ok := firstImage(result)
	if !ok {
		return nil, gateway.Malformed(providerName, "response contained no image parts")
	}

	return &gateway.Result{
		ImageRef:        ref,
		Model:           model,
		UsedSourceImage: req.HasImage(),
		Seed:            req.Seed,
	}, nil
}

func firstImage(result *genai.GenerateContentResponse) (string, bool) {
	if result == nil {
		return "", false
	}
	for _, candidate := range result.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part != nil && part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return imaging.EncodeDataURL(part.InlineData.Data, part.InlineData.MIMEType), true
			}
		}
	}
	return "", false
}

// classify maps genai API errors onto gateway kinds by HTTP status.
func classify(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return providerError(apiErr)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return providerError(*apiErrPtr)
	}
	return gateway.Classify(providerName, err)
}

func providerError(apiErr genai.APIError) error {
	msg := apiErr.Message
	if msg == "" {
		msg = apiErr.Status
	}
	return gateway.Classify(providerName, &gateway.ProviderError{
		Provider:   providerName,
		StatusCode: apiErr.Code,
		Message:    msg,
	})
}

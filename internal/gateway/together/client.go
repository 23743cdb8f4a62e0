// Package together implements the gateway against the Together AI images API.
package together

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/foxholm/foxholm/internal/gateway"
	"github.com/foxholm/foxholm/internal/imaging"
)

const (
	defaultBaseURL = "https://api.together.xyz/v1"
	defaultModel   = "black-forest-labs/FLUX.1-kontext-pro"
	defaultSteps   = 39
	providerName   = "together"

	maxErrorMessage = 512
)

// Client calls Together AI over plain HTTP.
type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// NewClient returns a client with defaults applied.
func NewClient(baseURL, apiKey string) *Client {
	url := strings.TrimSpace(baseURL)
	if url == "" {
		url = defaultBaseURL
	}
	return &Client{
		BaseURL: url,
		APIKey:  strings.TrimSpace(apiKey),
	}
}

// Name returns the provider identifier.
func (c *Client) Name() string {
	return providerName
}

type generationRequest struct {
	Model    string   `json:"model"`
	Prompt   string   `json:"prompt"`
	Width    int      `json:"width,omitempty"`
	Height   int      `json:"height,omitempty"`
	Steps    int      `json:"steps"`
	N        int      `json:"n"`
	Seed     int64    `json:"seed,omitempty"`
	ImageURL string   `json:"image_url,omitempty"`
	Strength *float64 `json:"strength,omitempty"`
}

type generationResponse struct {
	ID    string `json:"id,omitempty"`
	Model string `json:"model,omitempty"`
	Data  []struct {
		URL     string `json:"url,omitempty"`
		B64JSON string `json:"b64_json,omitempty"`
	} `json:"data"`
}

// Transform sends one image generation request. A missing API key is
// reported as an auth failure without contacting the provider.
func (c *Client) Transform(ctx context.Context, req *gateway.Request) (*gateway.Result, error) {
	if c == nil {
		return nil, &gateway.Error{Kind: gateway.KindInternal, Provider: providerName, Message: "together client not configured"}
	}
	if c.APIKey == "" {
		return nil, &gateway.Error{Kind: gateway.KindAuth, Provider: providerName, Message: "api key is not configured"}
	}
	if req == nil || strings.TrimSpace(req.Prompt) == "" {
		return nil, &gateway.Error{Kind: gateway.KindBadRequest, Provider: providerName, Message: "prompt is required"}
	}

	payload := buildRequest(req)

	ctx, cancel := gateway.WithTimeout(ctx, c.Timeout)
	defer cancel()

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, gateway.Classify(providerName, fmt.Errorf("encode request: %w", err))
	}

	url := strings.TrimRight(c.BaseURL, "/") + "/images/generations"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, gateway.Classify(providerName, fmt.Errorf("build request: %w", err))
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	start := time.Now()
	entry := gateway.TraceEntry{
		Provider:    providerName,
		Endpoint:    url,
		Method:      http.MethodPost,
		Model:       payload.Model,
		RequestBody: body,
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		entry.Error = err.Error()
		entry.DurationMs = time.Since(start).Milliseconds()
		gateway.Trace(entry)
		return nil, gateway.Unavailable(providerName, err)
	}
	defer resp.Body.Close() // nolint:errcheck // best-effort cleanup

	respBody, err := io.ReadAll(resp.Body)
	entry.StatusCode = resp.StatusCode
	entry.Response = respBody
	entry.DurationMs = time.Since(start).Milliseconds()
	if err != nil {
		entry.Error = err.Error()
		gateway.Trace(entry)
		return nil, gateway.Unavailable(providerName, fmt.Errorf("read response: %w", err))
	}
	gateway.Trace(entry)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, gateway.Classify(providerName, &gateway.ProviderError{
			Provider:    providerName,
			StatusCode:  resp.StatusCode,
			Message:     errorMessage(respBody),
			RawResponse: respBody,
		})
	}

	var parsed generationResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, gateway.Malformed(providerName, "decode response: "+err.Error())
	}
	if len(parsed.Data) == 0 {
		return nil, gateway.Malformed(providerName, "response contained no images")
	}

	first := parsed.Data[0]
	ref := first.URL
	if ref == "" {
		if first.B64JSON == "" {
			return nil, gateway.Malformed(providerName, "image has neither url nor b64_json")
		}
		ref = imaging.EnsureDataURL(first.B64JSON)
	}

	return &gateway.Result{
		ImageRef:        ref,
		Model:           payload.Model,
		UsedSourceImage: payload.ImageURL != "",
		Seed:            payload.Seed,
	}, nil
}

func buildRequest(req *gateway.Request) generationRequest {
	payload := generationRequest{
		Model:  strings.TrimSpace(req.Model),
		Prompt: req.Prompt,
		Width:  req.Width,
		Height: req.Height,
		Steps:  req.Steps,
		N:      1,
		Seed:   req.Seed,
	}
	if payload.Model == "" {
		payload.Model = defaultModel
	}
	if payload.Steps <= 0 {
		payload.Steps = defaultSteps
	}
	if req.HasImage() {
		payload.ImageURL = imaging.EncodeDataURL(req.Image, req.MimeType)
		if req.Strength > 0 {
			strength := req.Strength
			payload.Strength = &strength
		}
	}
	return payload
}

// errorMessage pulls a readable message out of an error body. Together
// returns {"error":{"message":...}} but plain text bodies also occur.
func errorMessage(body []byte) string {
	var parsed struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil {
		if parsed.Error.Message != "" {
			return parsed.Error.Message
		}
		if parsed.Message != "" {
			return parsed.Message
		}
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > maxErrorMessage {
		cut := maxErrorMessage
		for cut > 0 && !utf8.RuneStart(msg[cut]) {
			cut--
		}
		msg = msg[:cut]
	}
	return msg
}

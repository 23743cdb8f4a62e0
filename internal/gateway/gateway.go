// Package gateway defines the boundary to external image transformation
// services. Each provider lives in its own subpackage.
package gateway

import (
	"context"
	"time"
)

// Gateway transforms a source image according to a prompt.
type Gateway interface {
	// Transform issues exactly one outbound request. It never retries.
	Transform(ctx context.Context, req *Request) (*Result, error)
	// Name returns the provider identifier (e.g., "together").
	Name() string
}

// Request is a provider-agnostic transformation request.
type Request struct {
	Model    string
	Prompt   string
	Image    []byte
	MimeType string
	Width    int
	Height   int
	Strength float64
	Steps    int
	Seed     int64
}

// HasImage reports whether a source image is attached.
func (r *Request) HasImage() bool {
	return r != nil && len(r.Image) > 0
}

// Result is the provider response. ImageRef is either an https URL or a
// data URL.
type Result struct {
	ImageRef        string
	Model           string
	UsedSourceImage bool
	Seed            int64
}

// WithTimeout bounds ctx by timeout when it is positive. The returned cancel
// func is never nil.
func WithTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

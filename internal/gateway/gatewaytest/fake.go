// Package gatewaytest provides an in-memory gateway for tests.
package gatewaytest

import (
	"context"
	"sync"

	"github.com/foxholm/foxholm/internal/gateway"
)

// Fake records every request and answers with Result or Err.
type Fake struct {
	Result *gateway.Result
	Err    error
	// Hook, when set, replaces Result and Err.
	Hook func(ctx context.Context, req *gateway.Request) (*gateway.Result, error)

	mu       sync.Mutex
	requests []gateway.Request
}

// New returns a fake that answers with a fixed image URL.
func New() *Fake {
	return &Fake{Result: &gateway.Result{ImageRef: "https://images.test/out.png"}}
}

// Name implements gateway.Gateway.
func (f *Fake) Name() string { return "fake" }

// Transform implements gateway.Gateway.
func (f *Fake) Transform(ctx context.Context, req *gateway.Request) (*gateway.Result, error) {
	f.mu.Lock()
	if req != nil {
		clone := *req
		clone.Image = append([]byte(nil), req.Image...)
		f.requests = append(f.requests, clone)
	}
	f.mu.Unlock()

	if f.Hook != nil {
		return f.Hook(ctx, req)
	}
	if f.Err != nil {
		return nil, f.Err
	}
	res := gateway.Result{}
	if f.Result != nil {
		res = *f.Result
	}
	if res.Model == "" {
		res.Model = req.Model
	}
	if res.Seed == 0 {
		res.Seed = req.Seed
	}
	res.UsedSourceImage = req.HasImage()
	return &res, nil
}

// Calls returns the number of Transform invocations.
func (f *Fake) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

// Requests returns copies of the recorded requests.
func (f *Fake) Requests() []gateway.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]gateway.Request(nil), f.requests...)
}

// Last returns the most recent request, or nil.
func (f *Fake) Last() *gateway.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		return nil
	}
	r := f.requests[len(f.requests)-1]
	return &r
}

package gateway

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// Kind classifies a gateway failure.
type Kind int

const (
	KindInternal Kind = iota
	KindAuth
	KindRateLimited
	KindBadRequest
	KindUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindAuth:
		return "auth"
	case KindRateLimited:
		return "rate_limited"
	case KindBadRequest:
		return "bad_request"
	case KindUnavailable:
		return "unavailable"
	default:
		return "internal"
	}
}

// ProviderError is returned by providers when the upstream responds with a
// non-2xx status.
//
// RawResponse holds the response body and must never include API keys. It is
// not exposed to clients.
type ProviderError struct {
	Provider    string
	StatusCode  int
	Message     string
	RawResponse []byte
}

func (e *ProviderError) Error() string {
	if e == nil {
		return "provider error"
	}
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s request failed: status %d: %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s request failed: %s", e.Provider, e.Message)
}

// Error is a classified gateway failure.
type Error struct {
	Kind       Kind
	Provider   string
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "image provider request failed"
	}
	if e.Provider != "" {
		msg = e.Provider + ": " + msg
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the kind of a classified error, or KindInternal.
func KindOf(err error) Kind {
	var gerr *Error
	if errors.As(err, &gerr) {
		return gerr.Kind
	}
	return KindInternal
}

// KindForStatus maps an upstream HTTP status to a failure kind.
func KindForStatus(status int) Kind {
	switch {
	case status == 401 || status == 403:
		return KindAuth
	case status == 429:
		return KindRateLimited
	case status >= 500 && status <= 599:
		return KindUnavailable
	case status >= 400 && status <= 499:
		return KindBadRequest
	default:
		return KindInternal
	}
}

// Classify wraps err into an *Error. Already classified errors pass through.
func Classify(provider string, err error) error {
	if err == nil {
		return nil
	}

	var gerr *Error
	if errors.As(err, &gerr) {
		return gerr
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindUnavailable, Provider: provider, Message: "provider request timed out", Err: err}
	}
	if errors.Is(err, context.Canceled) {
		return &Error{Kind: KindUnavailable, Provider: provider, Message: "provider request canceled", Err: err}
	}

	var perr *ProviderError
	if errors.As(err, &perr) && perr != nil {
		kind := KindForStatus(perr.StatusCode)
		return &Error{
			Kind:       kind,
			Provider:   provider,
			StatusCode: perr.StatusCode,
			Message:    messageFor(kind),
			Err:        errors.New(strings.TrimSpace(perr.Message)),
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return &Error{Kind: KindUnavailable, Provider: provider, Message: "provider unreachable", Err: err}
	}

	return &Error{Kind: KindInternal, Provider: provider, Message: "provider request failed", Err: err}
}

// Unavailable reports a transport failure that never produced a status.
func Unavailable(provider string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return Classify(provider, err)
	}
	return &Error{Kind: KindUnavailable, Provider: provider, Message: "provider unreachable", Err: err}
}

// Malformed reports a 2xx response the provider could not be understood from.
func Malformed(provider, reason string) error {
	return &Error{Kind: KindInternal, Provider: provider, Message: "invalid response structure", Err: errors.New(reason)}
}

func messageFor(kind Kind) string {
	switch kind {
	case KindAuth:
		return "provider authentication failed"
	case KindRateLimited:
		return "provider rate limited"
	case KindUnavailable:
		return "provider unavailable"
	case KindBadRequest:
		return "provider rejected request"
	default:
		return "provider request failed"
	}
}

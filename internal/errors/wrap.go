package errors

import (
	"context"

	"github.com/fulmenhq/gofulmen/errors"
)

// CodeConfigInvalid marks configuration failures raised outside HTTP.
const CodeConfigInvalid = "CONFIG_INVALID"

func NewConfigInvalidError(message string) *errors.ErrorEnvelope {
	return errors.NewErrorEnvelope(CodeConfigInvalid, message)
}

// WrapInternal wraps err as an internal failure correlated with ctx.
func WrapInternal(ctx context.Context, err error, message string) *errors.ErrorEnvelope {
	return wrap(ctx, CodeInternal, err, message)
}

// WrapConfigInvalid wraps err as a configuration failure.
func WrapConfigInvalid(ctx context.Context, err error, message string) *errors.ErrorEnvelope {
	return wrap(ctx, CodeConfigInvalid, err, message)
}

func wrap(ctx context.Context, code string, err error, message string) *errors.ErrorEnvelope {
	envelope := EnsureCorrelationID(errors.NewErrorEnvelope(code, message), ctx)
	envelope = envelope.WithTraceID(envelope.CorrelationID)
	return withWrappedError(envelope, err)
}

// Package errors maps domain failures onto gofulmen error envelopes and
// writes them as JSON responses.
package errors

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/fulmenhq/gofulmen/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/foxholm/foxholm/internal/gateway"
	"github.com/foxholm/foxholm/internal/imaging"
	"github.com/foxholm/foxholm/internal/metrics"
	"github.com/foxholm/foxholm/internal/observability"
	"github.com/foxholm/foxholm/internal/server/middleware"
	"github.com/foxholm/foxholm/internal/tool"
)

// Error codes.
const (
	CodeInvalidToolID       = "INVALID_TOOL_ID"
	CodeValidationFailed    = "VALIDATION_FAILED"
	CodePayloadTooLarge     = "PAYLOAD_TOO_LARGE"
	CodeNotFound            = "NOT_FOUND"
	CodeMethodNotAllowed    = "METHOD_NOT_ALLOWED"
	CodeUpstreamAuth        = "UPSTREAM_AUTH"
	CodeUpstreamRateLimited = "UPSTREAM_RATE_LIMITED"
	CodeUpstreamBadRequest  = "UPSTREAM_BAD_REQUEST"
	CodeUpstreamUnavailable = "UPSTREAM_UNAVAILABLE"
	CodeServiceUnavailable  = "SERVICE_UNAVAILABLE"
	CodeInternal            = "INTERNAL_ERROR"
)

// NewInvalidToolIDError reports an unknown tool together with the valid ids.
func NewInvalidToolIDError(requested string, available []string) *errors.ErrorEnvelope {
	if available == nil {
		available = []string{}
	}
	return errors.NewErrorEnvelope(CodeInvalidToolID, "Tool not found").WithDetails(map[string]interface{}{
		"requestedToolId":  requested,
		"availableToolIds": available,
	})
}

func NewValidationError(message string) *errors.ErrorEnvelope {
	return errors.NewErrorEnvelope(CodeValidationFailed, message)
}

// NewPayloadTooLargeError is used when the request body exceeds the cap.
func NewPayloadTooLargeError(limit int64) *errors.ErrorEnvelope {
	return errors.NewErrorEnvelope(CodePayloadTooLarge, "Image is too large. Maximum size is 10MB.").WithDetails(map[string]interface{}{
		"limitBytes": limit,
	})
}

func NewNotFoundError(message string) *errors.ErrorEnvelope {
	return errors.NewErrorEnvelope(CodeNotFound, message)
}

func NewMethodNotAllowedError(message string) *errors.ErrorEnvelope {
	return errors.NewErrorEnvelope(CodeMethodNotAllowed, message)
}

func NewInternalError(message string) *errors.ErrorEnvelope {
	return errors.NewErrorEnvelope(CodeInternal, message)
}

func NewServiceUnavailableError(message string) *errors.ErrorEnvelope {
	return errors.NewErrorEnvelope(CodeServiceUnavailable, message)
}

// upstreamMessages are the client-facing texts for each gateway failure.
var upstreamMessages = map[gateway.Kind]struct{ code, message string }{
	gateway.KindAuth:        {CodeUpstreamAuth, "Image provider authentication failed. Please check the configured API key."},
	gateway.KindRateLimited: {CodeUpstreamRateLimited, "Rate limit exceeded. Please try again later."},
	gateway.KindBadRequest:  {CodeUpstreamBadRequest, "Invalid request parameters. Please check image format and size."},
	gateway.KindUnavailable: {CodeUpstreamUnavailable, "Image provider is temporarily unavailable. Please try again later."},
}

// FromError classifies err and returns an envelope with correlation ids
// taken from ctx. Provider payloads stay in Context, which is logged but
// never written to clients.
func FromError(ctx context.Context, err error) *errors.ErrorEnvelope {
	var envelope *errors.ErrorEnvelope

	var existing *errors.ErrorEnvelope
	var notFound *tool.NotFoundError
	var validation *tool.ValidationError
	var tooLarge *http.MaxBytesError
	var imageErr *imaging.Error
	var gwErr *gateway.Error

	switch {
	case err == nil:
		envelope = NewInternalError("unexpected nil error")
		envelope, _ = envelope.WithSeverity(errors.SeverityCritical)
	case stderrors.As(err, &existing):
		envelope = existing
	case stderrors.As(err, &notFound):
		envelope = NewInvalidToolIDError(notFound.Requested, notFound.Available)
	case stderrors.As(err, &tooLarge):
		envelope = NewPayloadTooLargeError(tooLarge.Limit)
	case stderrors.As(err, &validation):
		envelope = NewValidationError(validation.Error()).WithDetails(map[string]interface{}{
			"field": validation.Field,
		})
	case stderrors.As(err, &imageErr):
		envelope = NewValidationError(imageErr.Reason)
	case stderrors.As(err, &gwErr):
		envelope = upstreamEnvelope(gwErr)
	default:
		envelope = NewInternalError("Image processing failed")
		envelope = withWrappedError(envelope, err)
		envelope, _ = envelope.WithSeverity(errors.SeverityHigh)
	}

	envelope = EnsureCorrelationID(envelope, ctx)
	if envelope.TraceID == "" {
		envelope = envelope.WithTraceID(envelope.CorrelationID)
	}
	return envelope
}

func upstreamEnvelope(gwErr *gateway.Error) *errors.ErrorEnvelope {
	entry, ok := upstreamMessages[gwErr.Kind]
	if !ok {
		entry = struct{ code, message string }{CodeInternal, "Image processing failed"}
	}
	envelope := errors.NewErrorEnvelope(entry.code, entry.message)
	envelope, _ = envelope.WithContext(map[string]interface{}{
		"provider":        gwErr.Provider,
		"upstream_status": gwErr.StatusCode,
		"wrapped_error":   gwErr.Error(),
	})
	severity := errors.SeverityMedium
	if gwErr.Kind == gateway.KindAuth || gwErr.Kind == gateway.KindInternal {
		severity = errors.SeverityHigh
	}
	envelope, _ = envelope.WithSeverity(severity)
	return envelope
}

// EnsureCorrelationID attaches the request id from ctx, or a generated one.
func EnsureCorrelationID(envelope *errors.ErrorEnvelope, ctx context.Context) *errors.ErrorEnvelope {
	if envelope == nil {
		return nil
	}
	if envelope.CorrelationID != "" {
		return envelope
	}

	var correlationID string
	if ctx != nil {
		correlationID = middleware.GetRequestID(ctx)
	}
	if correlationID == "" {
		correlationID = uuid.NewString()
	}
	return envelope.WithCorrelationID(correlationID)
}

// HTTPStatusFromEnvelope resolves the HTTP status code for an envelope.
func HTTPStatusFromEnvelope(envelope *errors.ErrorEnvelope) int {
	if envelope == nil {
		return http.StatusInternalServerError
	}
	return HTTPStatusFromCode(envelope.Code)
}

// HTTPStatusFromCode resolves the HTTP status code for an error code.
func HTTPStatusFromCode(code string) int {
	switch code {
	case CodeInvalidToolID, CodeNotFound:
		return http.StatusNotFound
	case CodeValidationFailed:
		return http.StatusBadRequest
	case CodePayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	case CodeMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case CodeUpstreamAuth:
		return http.StatusBadGateway
	case CodeUpstreamRateLimited:
		return http.StatusTooManyRequests
	case CodeUpstreamBadRequest:
		return http.StatusUnprocessableEntity
	case CodeUpstreamUnavailable, CodeServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func withWrappedError(envelope *errors.ErrorEnvelope, err error) *errors.ErrorEnvelope {
	if envelope == nil || err == nil {
		return envelope
	}
	updated, updateErr := envelope.WithContext(map[string]interface{}{
		"wrapped_error": err.Error(),
	})
	if updateErr != nil {
		return envelope
	}
	return updated
}

// ResponseBody renders the client-facing JSON object for an envelope. Detail
// keys are merged at the top level; the reserved keys always win.
func ResponseBody(envelope *errors.ErrorEnvelope) map[string]interface{} {
	body := make(map[string]interface{}, len(envelope.Details)+4)
	for key, value := range envelope.Details {
		body[key] = value
	}
	body["success"] = false
	body["error"] = envelope.Message
	body["code"] = envelope.Code
	if envelope.CorrelationID != "" {
		body["request_id"] = envelope.CorrelationID
	}
	return body
}

// RespondWithError classifies err and writes the JSON error response.
func RespondWithError(w http.ResponseWriter, r *http.Request, err error) {
	var ctx context.Context
	if r != nil {
		ctx = r.Context()
	}
	RespondWithEnvelope(w, r, FromError(ctx, err))
}

// RespondWithEnvelope writes envelope, logging it and emitting error metrics.
func RespondWithEnvelope(w http.ResponseWriter, r *http.Request, envelope *errors.ErrorEnvelope) {
	if w == nil || envelope == nil {
		return
	}

	if r != nil {
		envelope = EnsureCorrelationID(envelope, r.Context())
	} else {
		envelope = EnsureCorrelationID(envelope, nil)
	}

	statusCode := HTTPStatusFromEnvelope(envelope)

	logHTTPError(envelope, statusCode)
	emitErrorMetrics(r, envelope, statusCode)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(ResponseBody(envelope))
}

func logHTTPError(envelope *errors.ErrorEnvelope, statusCode int) {
	if observability.ServerLogger == nil || envelope == nil {
		return
	}

	fields := []zap.Field{
		zap.String("error_code", envelope.Code),
		zap.Int("http_status", statusCode),
	}
	if envelope.Severity != "" {
		fields = append(fields, zap.String("severity", string(envelope.Severity)))
	}
	for key, value := range envelope.Context {
		fields = append(fields, zap.Any(key, value))
	}
	if envelope.CorrelationID != "" {
		fields = append(fields, zap.String("request_id", envelope.CorrelationID))
	}

	switch envelope.Severity {
	case errors.SeverityCritical, errors.SeverityHigh:
		observability.ServerLogger.Error(envelope.Message, fields...)
	case errors.SeverityMedium:
		observability.ServerLogger.Warn(envelope.Message, fields...)
	default:
		observability.ServerLogger.Info(envelope.Message, fields...)
	}
}

func emitErrorMetrics(r *http.Request, envelope *errors.ErrorEnvelope, statusCode int) {
	metrics.RecordError(envelope.Code, statusCode)
	if r != nil {
		metrics.RecordErrorByEndpoint(middleware.EndpointPattern(r), envelope.Code)
	}
}

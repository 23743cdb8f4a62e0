package errors

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	fulmenerrors "github.com/fulmenhq/gofulmen/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foxholm/foxholm/internal/gateway"
	"github.com/foxholm/foxholm/internal/imaging"
	"github.com/foxholm/foxholm/internal/server/middleware"
	"github.com/foxholm/foxholm/internal/tool"
)

func requestContext(id string) context.Context {
	return context.WithValue(context.Background(), middleware.RequestIDContextKey, id)
}

func TestFromErrorClassification(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   string
		status int
	}{
		{"unknown tool", &tool.NotFoundError{Requested: "portrait", Available: []string{"headshot"}}, CodeInvalidToolID, http.StatusNotFound},
		{"bad option", &tool.ValidationError{Field: "style", Reason: "bad"}, CodeValidationFailed, http.StatusBadRequest},
		{"bad image", &imaging.Error{Reason: "image data is required"}, CodeValidationFailed, http.StatusBadRequest},
		{"body cap", &http.MaxBytesError{Limit: 64}, CodePayloadTooLarge, http.StatusRequestEntityTooLarge},
		{"upstream auth", &gateway.Error{Kind: gateway.KindAuth, Provider: "together", StatusCode: 401}, CodeUpstreamAuth, http.StatusBadGateway},
		{"upstream rate", &gateway.Error{Kind: gateway.KindRateLimited, Provider: "together", StatusCode: 429}, CodeUpstreamRateLimited, http.StatusTooManyRequests},
		{"upstream request", &gateway.Error{Kind: gateway.KindBadRequest, Provider: "together", StatusCode: 400}, CodeUpstreamBadRequest, http.StatusUnprocessableEntity},
		{"upstream down", &gateway.Error{Kind: gateway.KindUnavailable, Provider: "gemini"}, CodeUpstreamUnavailable, http.StatusServiceUnavailable},
		{"upstream internal", &gateway.Error{Kind: gateway.KindInternal, Provider: "gemini"}, CodeInternal, http.StatusInternalServerError},
		{"wrapped", fmt.Errorf("process: %w", &tool.NotFoundError{Requested: "x"}), CodeInvalidToolID, http.StatusNotFound},
		{"other", fmt.Errorf("disk on fire"), CodeInternal, http.StatusInternalServerError},
		{"nil", nil, CodeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			envelope := FromError(requestContext("req-1"), tt.err)
			require.NotNil(t, envelope)
			assert.Equal(t, tt.code, envelope.Code)
			assert.Equal(t, tt.status, HTTPStatusFromEnvelope(envelope))
			assert.Equal(t, "req-1", envelope.CorrelationID)
			assert.Equal(t, "req-1", envelope.TraceID)
		})
	}
}

func TestFromErrorKeepsExistingEnvelope(t *testing.T) {
	original := NewServiceUnavailableError("draining")
	envelope := FromError(context.Background(), original)
	assert.Equal(t, CodeServiceUnavailable, envelope.Code)
	assert.Equal(t, "draining", envelope.Message)
	assert.NotEmpty(t, envelope.CorrelationID)
}

func TestUpstreamDetailsStayInContext(t *testing.T) {
	envelope := FromError(context.Background(), &gateway.Error{
		Kind:       gateway.KindAuth,
		Provider:   "together",
		StatusCode: 401,
		Message:    "invalid api key sk-secret",
	})

	assert.Equal(t, "together", envelope.Context["provider"])
	body := ResponseBody(envelope)
	encoded, err := json.Marshal(body)
	require.NoError(t, err)
	assert.NotContains(t, string(encoded), "sk-secret")
	assert.NotContains(t, string(encoded), "together")
}

func TestResponseBody(t *testing.T) {
	envelope := NewInvalidToolIDError("portrait", []string{"headshot", "restore"}).WithCorrelationID("abc")
	body := ResponseBody(envelope)

	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Tool not found", body["error"])
	assert.Equal(t, CodeInvalidToolID, body["code"])
	assert.Equal(t, "abc", body["request_id"])
	assert.Equal(t, "portrait", body["requestedToolId"])
	assert.Equal(t, []string{"headshot", "restore"}, body["availableToolIds"])

	// Reserved keys cannot be shadowed by details.
	shadowed := NewValidationError("bad").WithDetails(map[string]interface{}{"success": true, "code": "X"})
	body = ResponseBody(shadowed)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, CodeValidationFailed, body["code"])
	assert.NotContains(t, body, "request_id")

	empty := ResponseBody(NewInvalidToolIDError("x", nil))
	assert.Equal(t, []string{}, empty["availableToolIds"])
}

func TestHTTPStatusFromCode(t *testing.T) {
	assert.Equal(t, http.StatusMethodNotAllowed, HTTPStatusFromCode(CodeMethodNotAllowed))
	assert.Equal(t, http.StatusNotFound, HTTPStatusFromCode(CodeNotFound))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatusFromCode(CodeConfigInvalid))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatusFromCode("SOMETHING_ELSE"))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatusFromEnvelope(nil))
}

func TestRespondWithError(t *testing.T) {
	handler := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		RespondWithError(w, r, &tool.NotFoundError{Requested: "portrait", Available: []string{"upscale"}})
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/tool-config?id=portrait", nil)
	req.Header.Set(middleware.RequestIDHeader, "client-id")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "client-id", body["request_id"])
	assert.Equal(t, "portrait", body["requestedToolId"])
	assert.Equal(t, []any{"upscale"}, body["availableToolIds"])
}

func TestRespondWithEnvelopeIgnoresNil(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondWithEnvelope(rec, nil, nil)
	assert.Equal(t, 0, rec.Body.Len())
}

func TestWrapHelpers(t *testing.T) {
	cause := fmt.Errorf("listen tcp: address in use")

	envelope := WrapInternal(requestContext("wrap-1"), cause, "server error")
	assert.Equal(t, CodeInternal, envelope.Code)
	assert.Equal(t, "server error", envelope.Message)
	assert.Equal(t, "wrap-1", envelope.CorrelationID)
	assert.Equal(t, "wrap-1", envelope.TraceID)
	assert.Equal(t, cause.Error(), envelope.Context["wrapped_error"])

	config := WrapConfigInvalid(context.TODO(), cause, "bad config")
	assert.Equal(t, CodeConfigInvalid, config.Code)
	assert.NotEmpty(t, config.CorrelationID)

	var asError error = NewConfigInvalidError("missing")
	var target *fulmenerrors.ErrorEnvelope
	require.ErrorAs(t, asError, &target)
	assert.Equal(t, CodeConfigInvalid, target.Code)
}

package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	apperrors "github.com/foxholm/foxholm/internal/errors"
	"github.com/foxholm/foxholm/internal/observability"
	"github.com/foxholm/foxholm/internal/processing"
	"github.com/foxholm/foxholm/internal/server/middleware"
)

// Process serves image submissions.
type Process struct {
	Processor *processing.Processor
}

type processRequest struct {
	ToolID    string                     `json:"toolId"`
	Subdomain string                     `json:"subdomain"`
	ImageData string                     `json:"imageData"`
	Options   map[string]json.RawMessage `json:"options"`
}

// Submit handles POST /api/process-image.
func (h *Process) Submit(w http.ResponseWriter, r *http.Request) {
	var body processRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			respondWithError(w, r, err)
		case errors.Is(err, io.EOF):
			respondWithError(w, r, apperrors.NewValidationError("request body is required"))
		default:
			respondWithError(w, r, apperrors.NewValidationError("request body must be a JSON object"))
		}
		return
	}

	toolID := strings.TrimSpace(body.ToolID)
	if toolID == "" {
		toolID = strings.TrimSpace(body.Subdomain)
	}
	if toolID == "" {
		toolID, _ = middleware.HostToolID(r.Context())
	}
	if toolID == "" {
		respondWithError(w, r, apperrors.NewValidationError("toolId is required"))
		return
	}
	if strings.TrimSpace(body.ImageData) == "" {
		respondWithError(w, r, apperrors.NewValidationError("imageData is required"))
		return
	}

	result, err := h.Processor.Process(r.Context(), processing.Request{
		ToolID:    toolID,
		ImageData: body.ImageData,
		Options:   body.Options,
	})
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	if observability.ServerLogger != nil {
		observability.ServerLogger.Info("Image processed",
			zap.String("tool", result.ToolID),
			zap.String("model", result.ProcessingDetails.Model),
			zap.String("provider", result.ProcessingDetails.Provider),
			zap.Bool("used_source_image", result.ProcessingDetails.UsedSourceImage),
			zap.String("request_id", middleware.GetRequestID(r.Context())),
		)
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": result})
}

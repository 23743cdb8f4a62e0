package handlers

import (
	"net/http"
	"strings"

	"github.com/foxholm/foxholm/internal/locale"
	"github.com/foxholm/foxholm/internal/metrics"
	"github.com/foxholm/foxholm/internal/server/middleware"
	"github.com/foxholm/foxholm/internal/tool"
)

// Tools serves the tool catalogue.
type Tools struct {
	Registry *tool.Registry
}

// ToolSummary is one entry of the tool listing.
type ToolSummary struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// legacySummary keeps the shape older clients read from /api/subdomains.
type legacySummary struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// List handles GET /api/tools.
func (h *Tools) List(w http.ResponseWriter, r *http.Request) {
	configs := h.Registry.List()
	data := make([]ToolSummary, 0, len(configs))
	for _, cfg := range configs {
		data = append(data, ToolSummary{Name: cfg.DisplayName(), ID: cfg.ID})
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": data})
}

// LegacyList handles GET /api/subdomains.
func (h *Tools) LegacyList(w http.ResponseWriter, r *http.Request) {
	configs := h.Registry.List()
	data := make([]legacySummary, 0, len(configs))
	for _, cfg := range configs {
		data = append(data, legacySummary{Name: cfg.DisplayName(), Path: cfg.ID})
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": data})
}

// Config handles GET /api/tool-config. The tool comes from ?id=, the legacy
// ?subdomain=, or the Host header, in that order.
func (h *Tools) Config(w http.ResponseWriter, r *http.Request) {
	requested := requestedToolID(r)

	cfg, ok := h.Registry.Localized(requested, locale.FromContext(r.Context()))
	metrics.RecordToolLookup(requested, ok)
	if !ok {
		respondWithError(w, r, &tool.NotFoundError{Requested: requested, Available: h.Registry.IDs()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"toolId":  cfg.ID,
		"config":  cfg,
	})
}

func requestedToolID(r *http.Request) string {
	q := r.URL.Query()
	for _, key := range []string{"id", "subdomain"} {
		if v := strings.TrimSpace(q.Get(key)); v != "" {
			return v
		}
	}
	id, _ := middleware.HostToolID(r.Context())
	return id
}

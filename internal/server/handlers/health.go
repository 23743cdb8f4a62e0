package handlers

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/fulmenhq/gofulmen/errors"

	"github.com/foxholm/foxholm/internal/metrics"
)

// HealthChecker is implemented by components that can report their health.
type HealthChecker interface {
	CheckHealth(ctx context.Context) error
}

// WarningReporter is implemented by checkers that can be healthy while
// still flagging a misconfiguration, such as a missing API key.
type WarningReporter interface {
	Warnings() []string
}

// CheckerFunc adapts a function to HealthChecker.
type CheckerFunc func(ctx context.Context) error

func (f CheckerFunc) CheckHealth(ctx context.Context) error { return f(ctx) }

// defaultProbeTimeout bounds the liveness and readiness probes.
const defaultProbeTimeout = 2 * time.Second

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status      string            `json:"status"`
	Version     string            `json:"version"`
	Environment string            `json:"environment,omitempty"`
	Timestamp   string            `json:"timestamp"`
	Checks      map[string]string `json:"checks,omitempty"`
	Warnings    []string          `json:"warnings,omitempty"`
}

// ProbeResponse is the body of the liveness and readiness probes.
type ProbeResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// HealthManager runs registered checks for the health endpoints.
type HealthManager struct {
	mu          sync.RWMutex
	checkers    map[string]HealthChecker
	version     string
	environment string
}

// NewHealthManager creates a health manager.
func NewHealthManager(version, environment string) *HealthManager {
	return &HealthManager{
		checkers:    make(map[string]HealthChecker),
		version:     version,
		environment: environment,
	}
}

// RegisterChecker adds or replaces a named check.
func (hm *HealthManager) RegisterChecker(name string, checker HealthChecker) {
	hm.mu.Lock()
	defer hm.mu.Unlock()
	hm.checkers[name] = checker
}

func (hm *HealthManager) snapshot() (names []string, checkers map[string]HealthChecker) {
	hm.mu.RLock()
	defer hm.mu.RUnlock()
	checkers = make(map[string]HealthChecker, len(hm.checkers))
	for name, c := range hm.checkers {
		names = append(names, name)
		checkers[name] = c
	}
	sort.Strings(names)
	return names, checkers
}

// run executes every check and collects warnings in check-name order.
func (hm *HealthManager) run(ctx context.Context) (map[string]string, []string) {
	names, checkers := hm.snapshot()
	checks := make(map[string]string, len(names))
	var warnings []string

	for _, name := range names {
		if ctx.Err() != nil {
			checks[name] = "timeout"
			continue
		}
		start := time.Now()
		err := checkers[name].CheckHealth(ctx)
		metrics.RecordHealthCheck(name, err == nil, time.Since(start))
		if err != nil {
			checks[name] = "unhealthy"
			continue
		}
		checks[name] = "healthy"
		if reporter, ok := checkers[name].(WarningReporter); ok {
			warnings = append(warnings, reporter.Warnings()...)
		}
	}
	return checks, warnings
}

func overallStatus(checks map[string]string) string {
	degraded := false
	for _, status := range checks {
		switch status {
		case "unhealthy":
			return "unhealthy"
		case "timeout":
			degraded = true
		}
	}
	if degraded {
		return "degraded"
	}
	return "healthy"
}

// APIHealthHandler handles GET /api/health. A healthy service answers "ok",
// with warnings for misconfiguration that does not stop it serving.
func (hm *HealthManager) APIHealthHandler(w http.ResponseWriter, r *http.Request) {
	checkCtx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks, warnings := hm.run(checkCtx)
	status := overallStatus(checks)
	if status == "unhealthy" {
		respondWithError(w, r, unhealthyEnvelope("Service unhealthy", "api", status, checks))
		return
	}

	apiStatus := "ok"
	if status == "degraded" {
		apiStatus = "degraded"
	}
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:      apiStatus,
		Version:     hm.version,
		Environment: hm.environment,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		Warnings:    warnings,
	})
}

// HealthHandler handles GET /health with per-check detail.
func (hm *HealthManager) HealthHandler(w http.ResponseWriter, r *http.Request) {
	checkCtx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks, warnings := hm.run(checkCtx)
	status := overallStatus(checks)
	if status == "unhealthy" {
		respondWithError(w, r, unhealthyEnvelope("aggregate health check failed", "", status, checks))
		return
	}

	writeJSON(w, http.StatusOK, HealthResponse{
		Status:      status,
		Version:     hm.version,
		Environment: hm.environment,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		Checks:      checks,
		Warnings:    warnings,
	})
}

// Probe returns a handler for a named probe bounded by timeout.
func (hm *HealthManager) Probe(name string, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checkCtx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		checks, _ := hm.run(checkCtx)
		status := overallStatus(checks)
		if status == "unhealthy" {
			respondWithError(w, r, unhealthyEnvelope(name+" probe failed", name, status, checks))
			return
		}
		writeJSON(w, http.StatusOK, ProbeResponse{Status: status, Timestamp: time.Now().UTC()})
	}
}

// LivenessHandler reports that the process is serving requests. It runs no
// checks so a failing dependency never gets the process restarted.
func LivenessHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ProbeResponse{Status: "healthy", Timestamp: time.Now().UTC()})
}

func unhealthyEnvelope(message, probe, status string, checks map[string]string) *errors.ErrorEnvelope {
	envelope := errors.NewErrorEnvelope("SERVICE_UNAVAILABLE", message)

	details := map[string]interface{}{"status": status}
	if len(checks) > 0 {
		details["checks"] = checks
	}
	if probe != "" {
		details["probe"] = probe
	}
	envelope = envelope.WithDetails(details)

	var unhealthy []string
	for name, result := range checks {
		if result != "healthy" {
			unhealthy = append(unhealthy, name)
		}
	}
	sort.Strings(unhealthy)
	contextData := map[string]interface{}{"status": status}
	if len(unhealthy) > 0 {
		contextData["unhealthy_checks"] = unhealthy
	}
	envelope, _ = envelope.WithContext(contextData)
	return envelope
}

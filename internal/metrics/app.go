package metrics

import (
	"time"

	"github.com/foxholm/foxholm/internal/gateway"
	"github.com/foxholm/foxholm/internal/observability"
)

// Application metric names.
const (
	ProcessRequestsTotal = "foxholm_process_requests_total"
	ProcessDurationMs    = "foxholm_process_duration_ms"
	UpstreamCallsTotal   = "foxholm_upstream_calls_total"
	UpstreamDurationMs   = "foxholm_upstream_duration_ms"
	ToolLookupsTotal     = "foxholm_tool_lookups_total"

	HealthCheckTotal    = "app_health_check_total"
	HealthCheckDuration = "app_health_check_duration_ms"

	ServerStartTime = "app_server_start_time_seconds"
)

func counter(name string, labels map[string]string) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Counter(name, 1, labels)
	}
}

func histogram(name string, d time.Duration, labels map[string]string) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Histogram(name, d, labels)
	}
}

// RecordProcess records one processing request for a tool. status is
// "success" or the failing error code.
func RecordProcess(toolID, status string, duration time.Duration) {
	counter(ProcessRequestsTotal, map[string]string{"tool": toolID, "status": status})
	histogram(ProcessDurationMs, duration, map[string]string{"tool": toolID})
}

// RecordUpstreamCall records one outbound gateway call. A nil err counts as
// success, anything else by its failure kind.
func RecordUpstreamCall(provider string, err error, duration time.Duration) {
	outcome := "success"
	if err != nil {
		outcome = gateway.KindOf(err).String()
	}
	counter(UpstreamCallsTotal, map[string]string{"provider": provider, "outcome": outcome})
	histogram(UpstreamDurationMs, duration, map[string]string{"provider": provider})
}

// RecordToolLookup records a tool-config resolution.
func RecordToolLookup(toolID string, found bool) {
	result := "found"
	if !found {
		result = "not_found"
		toolID = "unknown"
	}
	counter(ToolLookupsTotal, map[string]string{"tool": toolID, "result": result})
}

// RecordHealthCheck records a health check execution.
func RecordHealthCheck(checkName string, healthy bool, duration time.Duration) {
	status := "healthy"
	if !healthy {
		status = "unhealthy"
	}
	counter(HealthCheckTotal, map[string]string{"check": checkName, "status": status})
	histogram(HealthCheckDuration, duration, map[string]string{"check": checkName})
}

// SetServerStartTime records the server start time as a Unix timestamp.
func SetServerStartTime(timestamp int64) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Gauge(ServerStartTime, float64(timestamp), nil)
	}
}

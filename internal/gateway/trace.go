package gateway

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
)

// TraceEntry is one NDJSON line describing an outbound call.
type TraceEntry struct {
	Timestamp   time.Time       `json:"timestamp"`
	Provider    string          `json:"provider"`
	Endpoint    string          `json:"endpoint"`
	Method      string          `json:"method"`
	Model       string          `json:"model,omitempty"`
	RequestBody json.RawMessage `json:"request_body,omitempty"`
	StatusCode  int             `json:"status_code,omitempty"`
	Response    json.RawMessage `json:"response,omitempty"`
	Error       string          `json:"error,omitempty"`
	DurationMs  int64           `json:"duration_ms"`
}

// Tracer appends trace entries to a file.
type Tracer struct {
	file *os.File
	mu   sync.Mutex
}

var (
	globalTracer *Tracer
	tracerMu     sync.Mutex
)

// EnableTracing starts tracing to path. The returned func closes the file.
func EnableTracing(path string) (func(), error) {
	tracerMu.Lock()
	defer tracerMu.Unlock()

	if globalTracer != nil {
		_ = globalTracer.Close()
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("open trace file: %w", err)
	}

	globalTracer = &Tracer{file: f}
	return DisableTracing, nil
}

// DisableTracing stops tracing and closes the trace file.
func DisableTracing() {
	tracerMu.Lock()
	defer tracerMu.Unlock()
	if globalTracer != nil {
		_ = globalTracer.Close()
		globalTracer = nil
	}
}

// IsTracingEnabled reports whether a trace file is open.
func IsTracingEnabled() bool {
	tracerMu.Lock()
	defer tracerMu.Unlock()
	return globalTracer != nil
}

// Trace records entry when tracing is enabled. Image payloads in the
// request and response bodies are redacted before writing.
func Trace(entry TraceEntry) {
	tracerMu.Lock()
	t := globalTracer
	tracerMu.Unlock()

	if t == nil {
		return
	}
	entry.RequestBody = RedactImages(entry.RequestBody)
	entry.Response = RedactImages(entry.Response)
	t.Write(entry)
}

// Write records a trace entry as is.
func (t *Tracer) Write(entry TraceEntry) {
	if t == nil || t.file == nil {
		return
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	_, _ = t.file.Write(data)
	_, _ = t.file.Write([]byte("\n"))
}

// Close closes the trace file.
func (t *Tracer) Close() error {
	if t == nil || t.file == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.file.Close()
}

var imageKeys = map[string]bool{
	"image_url": true,
	"b64_json":  true,
	"data":      true,
	"imageData": true,
}

// RedactImages replaces inline image payloads in a JSON document with a
// size marker. Invalid JSON is dropped entirely.
func RedactImages(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 {
		return raw
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil
	}
	out, err := json.Marshal(redact("", doc))
	if err != nil {
		return nil
	}
	return out
}

func redact(key string, v any) any {
	switch val := v.(type) {
	case map[string]any:
		for k, child := range val {
			val[k] = redact(k, child)
		}
		return val
	case []any:
		for i, child := range val {
			val[i] = redact(key, child)
		}
		return val
	case string:
		if strings.HasPrefix(val, "data:") || (imageKeys[key] && len(val) > 256) {
			return fmt.Sprintf("[redacted %d bytes]", len(val))
		}
		return val
	default:
		return v
	}
}

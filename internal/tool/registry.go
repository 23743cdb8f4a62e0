package tool

import (
	"fmt"
	"strings"
)

// Registry is the immutable set of tool configurations. It is built once at
// start-up and shared by reference; nothing mutates it afterwards.
type Registry struct {
	tools map[string]*ToolConfig
	ids   []string
}

// NewRegistry builds a registry from configs, preserving their order.
func NewRegistry(configs []*ToolConfig) (*Registry, error) {
	reg := &Registry{tools: make(map[string]*ToolConfig, len(configs))}
	for _, cfg := range configs {
		if cfg == nil {
			continue
		}
		id := strings.TrimSpace(cfg.ID)
		if id == "" {
			return nil, fmt.Errorf("tool missing id")
		}
		key := strings.ToLower(id)
		if _, ok := reg.tools[key]; ok {
			return nil, fmt.Errorf("duplicate tool id: %s", id)
		}
		reg.tools[key] = cfg
		reg.ids = append(reg.ids, id)
	}
	if len(reg.ids) == 0 {
		return nil, fmt.Errorf("no tools configured")
	}
	return reg, nil
}

// Get looks up a tool by id. Lookup trims whitespace, drops any ":port"
// suffix and ignores case.
func (r *Registry) Get(id string) (*ToolConfig, bool) {
	if r == nil {
		return nil, false
	}
	key := normalizeID(id)
	if key == "" {
		return nil, false
	}
	cfg, ok := r.tools[key]
	return cfg, ok
}

// Localized returns the tool with display strings for locale applied.
func (r *Registry) Localized(id, locale string) (*ToolConfig, bool) {
	cfg, ok := r.Get(id)
	if !ok {
		return nil, false
	}
	return cfg.Localize(locale), true
}

// IDs returns the registered tool ids in registration order.
func (r *Registry) IDs() []string {
	if r == nil {
		return nil
	}
	return append([]string(nil), r.ids...)
}

// List returns the registered tools in registration order.
func (r *Registry) List() []*ToolConfig {
	if r == nil {
		return nil
	}
	out := make([]*ToolConfig, 0, len(r.ids))
	for _, id := range r.ids {
		out = append(out, r.tools[strings.ToLower(id)])
	}
	return out
}

// NotFoundError is returned when a requested tool id is not registered.
type NotFoundError struct {
	Requested string
	Available []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("tool %q not found (available: %s)", e.Requested, strings.Join(e.Available, ", "))
}

// Lookup is Get with a descriptive error for unknown ids.
func (r *Registry) Lookup(id string) (*ToolConfig, error) {
	cfg, ok := r.Get(id)
	if !ok {
		return nil, &NotFoundError{Requested: id, Available: r.IDs()}
	}
	return cfg, nil
}

func normalizeID(id string) string {
	id = strings.TrimSpace(id)
	if i := strings.IndexByte(id, ':'); i >= 0 {
		id = id[:i]
	}
	return strings.ToLower(strings.TrimSpace(id))
}

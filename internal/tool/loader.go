package tool

import (
	"embed"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed tools/*.yaml
var defaultToolsFS embed.FS

var idPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)

// Load parses and validates one tool definition from YAML bytes.
func Load(source string, data []byte) (*ToolConfig, error) {
	var cfg ToolConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse tool %s: %w", source, err)
	}
	if strings.TrimSpace(cfg.PromptTemplate) == "" {
		cfg.PromptTemplate = cfg.ID
	}
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate tool %s: %w", source, err)
	}
	return &cfg, nil
}

// LoadDefaults loads the embedded tool table in file name order.
func LoadDefaults() ([]*ToolConfig, error) {
	entries, err := defaultToolsFS.ReadDir("tools")
	if err != nil {
		return nil, fmt.Errorf("read embedded tools: %w", err)
	}
	results := make([]*ToolConfig, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		data, err := defaultToolsFS.ReadFile("tools/" + entry.Name())
		if err != nil {
			return nil, fmt.Errorf("read embedded tool %s: %w", entry.Name(), err)
		}
		cfg, err := Load(entry.Name(), data)
		if err != nil {
			return nil, err
		}
		results = append(results, cfg)
	}
	return results, nil
}

// DefaultRegistry builds a registry from the embedded tool table.
func DefaultRegistry() (*Registry, error) {
	configs, err := LoadDefaults()
	if err != nil {
		return nil, err
	}
	return NewRegistry(configs)
}

func validate(cfg *ToolConfig) error {
	if !idPattern.MatchString(cfg.ID) {
		return fmt.Errorf("id %q must be a lower-case DNS label", cfg.ID)
	}
	if strings.TrimSpace(cfg.Title) == "" {
		return fmt.Errorf("title is required")
	}
	if cfg.Processing.Strength < 0 || cfg.Processing.Strength > 1 {
		return fmt.Errorf("processing.strength must be within [0, 1]")
	}
	if cfg.Processing.Width < 0 || cfg.Processing.Height < 0 {
		return fmt.Errorf("processing dimensions must not be negative")
	}

	names := make(map[string]struct{}, len(cfg.FormFields))
	for _, field := range cfg.FormFields {
		if err := validateField(field); err != nil {
			return err
		}
		if _, dup := names[field.Name]; dup {
			return fmt.Errorf("duplicate field %q", field.Name)
		}
		names[field.Name] = struct{}{}
	}

	for locale, overlay := range cfg.Locales {
		for name, fo := range overlay.Fields {
			field, ok := cfg.FormFields.Field(name)
			if !ok {
				return fmt.Errorf("locale %s: unknown field %q", locale, name)
			}
			for value := range fo.Options {
				if !field.HasOption(value) {
					return fmt.Errorf("locale %s: field %q has no option %q", locale, name, value)
				}
			}
		}
	}
	return nil
}

func validateField(field FieldSpec) error {
	if strings.TrimSpace(field.Name) == "" {
		return fmt.Errorf("field name is required")
	}
	if !field.Type.valid() {
		return fmt.Errorf("field %q: unknown type %q", field.Name, field.Type)
	}

	if field.Type.HasOptions() {
		if len(field.Options) == 0 {
			return fmt.Errorf("field %q: %s requires options", field.Name, field.Type)
		}
		seen := make(map[string]struct{}, len(field.Options))
		for _, opt := range field.Options {
			if opt.Value == "" {
				return fmt.Errorf("field %q: option value is required", field.Name)
			}
			if _, dup := seen[opt.Value]; dup {
				return fmt.Errorf("field %q: duplicate option %q", field.Name, opt.Value)
			}
			seen[opt.Value] = struct{}{}
		}
	}

	if field.Type == FieldSlider {
		if field.Min == nil || field.Max == nil {
			return fmt.Errorf("field %q: slider requires min and max", field.Name)
		}
		if *field.Min > *field.Max {
			return fmt.Errorf("field %q: min exceeds max", field.Name)
		}
		if field.Step != nil && *field.Step <= 0 {
			return fmt.Errorf("field %q: step must be positive", field.Name)
		}
		if field.Default != nil && (*field.Default < *field.Min || *field.Default > *field.Max) {
			return fmt.Errorf("field %q: default outside [min, max]", field.Name)
		}
	}
	return nil
}

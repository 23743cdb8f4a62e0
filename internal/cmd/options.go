package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/foxholm/foxholm/internal/tool"
)

// parseSetFlags turns repeated key=value flags into raw option values shaped
// by each field's type. Checkbox values are comma separated.
func parseSetFlags(cfg *tool.ToolConfig, pairs []string) (map[string]json.RawMessage, error) {
	raw := make(map[string]json.RawMessage, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --set %q: expected key=value", pair)
		}
		value = strings.TrimSpace(value)

		field, known := cfg.FormFields.Field(key)
		var (
			v   any = value
			err error
		)
		if known {
			switch field.Type {
			case tool.FieldCheckbox:
				v = splitList(value)
			case tool.FieldSlider:
				v, err = strconv.ParseFloat(value, 64)
			case tool.FieldToggle:
				v, err = strconv.ParseBool(value)
			}
		}
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: %w", key, err)
		}

		encoded, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		raw[key] = encoded
	}
	return raw, nil
}

func splitList(value string) []string {
	out := []string{}
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

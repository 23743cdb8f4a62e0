package tool

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// ValueKind identifies which variant a Value holds.
type ValueKind int

const (
	KindString ValueKind = iota + 1
	KindList
	KindNumber
	KindBool
)

// Value is a single decoded option value. Exactly one variant is set,
// selected by Kind.
type Value struct {
	kind ValueKind
	str  string
	list []string
	num  float64
	flag bool
}

func StringValue(s string) Value      { return Value{kind: KindString, str: s} }
func ListValue(items ...string) Value { return Value{kind: KindList, list: append([]string(nil), items...)} }
func NumberValue(n float64) Value     { return Value{kind: KindNumber, num: n} }
func BoolValue(b bool) Value          { return Value{kind: KindBool, flag: b} }

// Kind reports the variant held by v. The zero Value has kind 0.
func (v Value) Kind() ValueKind { return v.kind }

func (v Value) AsString() (string, bool) { return v.str, v.kind == KindString }

func (v Value) AsList() ([]string, bool) {
	if v.kind != KindList {
		return nil, false
	}
	return append([]string(nil), v.list...), true
}

func (v Value) AsNumber() (float64, bool) { return v.num, v.kind == KindNumber }
func (v Value) AsBool() (bool, bool)      { return v.flag, v.kind == KindBool }

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return json.Marshal(v.str)
	case KindList:
		if v.list == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.list)
	case KindNumber:
		return json.Marshal(v.num)
	case KindBool:
		return json.Marshal(v.flag)
	default:
		return []byte("null"), nil
	}
}

// Options maps field names to decoded option values.
type Options map[string]Value

// String returns the named string value.
func (o Options) String(name string) (string, bool) {
	v, ok := o[name]
	if !ok {
		return "", false
	}
	return v.AsString()
}

// List returns the named list value in supplied order.
func (o Options) List(name string) []string {
	v, ok := o[name]
	if !ok {
		return nil
	}
	items, _ := v.AsList()
	return items
}

// Number returns the named numeric value.
func (o Options) Number(name string) (float64, bool) {
	v, ok := o[name]
	if !ok {
		return 0, false
	}
	return v.AsNumber()
}

// Bool returns the named boolean value.
func (o Options) Bool(name string) (bool, bool) {
	v, ok := o[name]
	if !ok {
		return false, false
	}
	return v.AsBool()
}

// ValidationError reports an option value that does not fit its field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid option %q: %s", e.Field, e.Reason)
}

// DecodeOptions converts raw client-supplied values into typed Options.
// Unknown fields are dropped; JSON null and empty strings or lists are
// treated as absent. Values whose shape does not match the field type, values
// outside the option list and slider values outside [min, max] are rejected.
func (c *ToolConfig) DecodeOptions(raw map[string]json.RawMessage) (Options, error) {
	opts := make(Options)
	for _, field := range c.FormFields {
		data, ok := raw[field.Name]
		if !ok {
			continue
		}
		data = bytes.TrimSpace(data)
		if len(data) == 0 || bytes.Equal(data, []byte("null")) {
			continue
		}

		value, present, err := decodeValue(field, data)
		if err != nil {
			return nil, err
		}
		if present {
			opts[field.Name] = value
		}
	}
	return opts, nil
}

func decodeValue(field FieldSpec, data []byte) (Value, bool, error) {
	invalid := func(format string, args ...any) (Value, bool, error) {
		return Value{}, false, &ValidationError{Field: field.Name, Reason: fmt.Sprintf(format, args...)}
	}

	switch field.Type {
	case FieldSelect, FieldRadio:
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return invalid("expected a string")
		}
		if s == "" {
			return Value{}, false, nil
		}
		if !field.HasOption(s) {
			return invalid("%q is not an allowed value", s)
		}
		return StringValue(s), true, nil

	case FieldCheckbox:
		var items []string
		if err := json.Unmarshal(data, &items); err != nil {
			// A lone string is a one-element selection.
			var single string
			if json.Unmarshal(data, &single) != nil {
				return invalid("expected a list of strings")
			}
			if single == "" {
				return Value{}, false, nil
			}
			items = []string{single}
		}
		seen := make(map[string]struct{}, len(items))
		kept := make([]string, 0, len(items))
		for _, item := range items {
			if !field.HasOption(item) {
				return invalid("%q is not an allowed value", item)
			}
			if _, dup := seen[item]; dup {
				continue
			}
			seen[item] = struct{}{}
			kept = append(kept, item)
		}
		if len(kept) == 0 {
			return Value{}, false, nil
		}
		return ListValue(kept...), true, nil

	case FieldSlider:
		var n float64
		if err := json.Unmarshal(data, &n); err != nil {
			return invalid("expected a number")
		}
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return invalid("expected a finite number")
		}
		if field.Min != nil && n < *field.Min {
			return invalid("%s is below the minimum %s", formatNumber(n), formatNumber(*field.Min))
		}
		if field.Max != nil && n > *field.Max {
			return invalid("%s is above the maximum %s", formatNumber(n), formatNumber(*field.Max))
		}
		return NumberValue(n), true, nil

	case FieldToggle:
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return invalid("expected a boolean")
		}
		return BoolValue(b), true, nil

	default:
		return invalid("unsupported field type %q", field.Type)
	}
}

// ApplyDefaults returns a copy of opts in which every missing required
// option-bearing field is set to its first option.
func (c *ToolConfig) ApplyDefaults(opts Options) Options {
	out := make(Options, len(opts))
	for k, v := range opts {
		out[k] = v
	}
	for _, field := range c.FormFields {
		if !field.Required || !field.Type.HasOptions() || len(field.Options) == 0 {
			continue
		}
		if _, ok := out[field.Name]; ok {
			continue
		}
		first := field.Options[0].Value
		if field.Type == FieldCheckbox {
			out[field.Name] = ListValue(first)
		} else {
			out[field.Name] = StringValue(first)
		}
	}
	return out
}

// formatNumber renders n without a trailing ".0" for whole numbers.
func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}

// Package tool holds the static catalogue of image tools: their form
// fields, SEO metadata and processing parameters.
package tool

import (
	"bytes"
	"encoding/json"
	"strings"
)

// FieldType describes how a form field is rendered and what value shape it
// accepts.
type FieldType string

const (
	FieldSelect   FieldType = "select"
	FieldRadio    FieldType = "radio"
	FieldCheckbox FieldType = "checkbox"
	FieldSlider   FieldType = "slider"
	FieldToggle   FieldType = "toggle"
)

// HasOptions reports whether the field type draws its values from a fixed
// option list.
func (t FieldType) HasOptions() bool {
	switch t {
	case FieldSelect, FieldRadio, FieldCheckbox:
		return true
	default:
		return false
	}
}

func (t FieldType) valid() bool {
	switch t {
	case FieldSelect, FieldRadio, FieldCheckbox, FieldSlider, FieldToggle:
		return true
	default:
		return false
	}
}

// Option is a single selectable value of a field.
type Option struct {
	Value string `yaml:"value" json:"value"`
	Label string `yaml:"label" json:"label"`
}

// FieldSpec describes one form field.
type FieldSpec struct {
	Name     string    `yaml:"name" json:"-"`
	Type     FieldType `yaml:"type" json:"type"`
	Label    string    `yaml:"label" json:"label"`
	Options  []Option  `yaml:"options,omitempty" json:"options,omitempty"`
	Required bool      `yaml:"required,omitempty" json:"required,omitempty"`
	Min      *float64  `yaml:"min,omitempty" json:"min,omitempty"`
	Max      *float64  `yaml:"max,omitempty" json:"max,omitempty"`
	Step     *float64  `yaml:"step,omitempty" json:"step,omitempty"`
	Default  *float64  `yaml:"default,omitempty" json:"default,omitempty"`
	Unit     string    `yaml:"unit,omitempty" json:"unit,omitempty"`
}

// HasOption reports whether value is one of the field's option values.
func (f FieldSpec) HasOption(value string) bool {
	for _, opt := range f.Options {
		if opt.Value == value {
			return true
		}
	}
	return false
}

// Fields is the ordered list of form fields. It encodes to JSON as an object
// keyed by field name whose key order is the rendering order.
type Fields []FieldSpec

// MarshalJSON implements json.Marshaler.
func (fs Fields) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range fs {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(f)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Field returns the named field.
func (fs Fields) Field(name string) (FieldSpec, bool) {
	for _, f := range fs {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}

// SEO carries page metadata for a tool's landing page.
type SEO struct {
	Title       string   `yaml:"title" json:"title"`
	Description string   `yaml:"description" json:"description"`
	Keywords    []string `yaml:"keywords,omitempty" json:"keywords,omitempty"`
}

// Processing holds the fixed upstream parameters used for a tool.
type Processing struct {
	Model         string  `yaml:"model" json:"model"`
	Width         int     `yaml:"width" json:"width"`
	Height        int     `yaml:"height" json:"height"`
	Strength      float64 `yaml:"strength" json:"strength"`
	SupportsImage bool    `yaml:"supports_image" json:"supportsImage"`
}

// ToolConfig is the complete static description of one tool.
type ToolConfig struct {
	ID             string             `yaml:"id" json:"id"`
	Emoji          string             `yaml:"emoji" json:"emoji"`
	Title          string             `yaml:"title" json:"title"`
	Description    string             `yaml:"description" json:"description"`
	Features       []string           `yaml:"features" json:"features"`
	FormFields     Fields             `yaml:"form_fields" json:"formFields"`
	SEO            SEO                `yaml:"seo" json:"seo"`
	PromptTemplate string             `yaml:"prompt_template" json:"-"`
	Processing     Processing         `yaml:"processing" json:"-"`
	Locales        map[string]Overlay `yaml:"locales,omitempty" json:"-"`
}

// DisplayName is the capitalized tool id used in listings.
func (c *ToolConfig) DisplayName() string {
	if c == nil || c.ID == "" {
		return ""
	}
	return strings.ToUpper(c.ID[:1]) + c.ID[1:]
}

// clone returns a deep copy safe to mutate.
func (c *ToolConfig) clone() *ToolConfig {
	out := *c
	out.Features = append([]string(nil), c.Features...)
	out.SEO.Keywords = append([]string(nil), c.SEO.Keywords...)
	out.FormFields = make(Fields, len(c.FormFields))
	for i, f := range c.FormFields {
		f.Options = append([]Option(nil), f.Options...)
		out.FormFields[i] = f
	}
	out.Locales = nil
	return &out
}

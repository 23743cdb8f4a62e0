package tool

import "sort"

// DefaultLocale is the language the embedded tool table is authored in.
const DefaultLocale = "en"

// Overlay replaces display strings of a tool for one locale. Empty values
// leave the default text in place.
type Overlay struct {
	Title       string                  `yaml:"title,omitempty"`
	Description string                  `yaml:"description,omitempty"`
	Features    []string                `yaml:"features,omitempty"`
	Fields      map[string]FieldOverlay `yaml:"fields,omitempty"`
	SEO         *SEO                    `yaml:"seo,omitempty"`
}

// FieldOverlay localizes a field label and its option labels keyed by
// option value.
type FieldOverlay struct {
	Label   string            `yaml:"label,omitempty"`
	Options map[string]string `yaml:"options,omitempty"`
}

// Localize returns a copy of c with the overlay for locale applied. Unknown
// locales and the default locale yield an unmodified copy.
func (c *ToolConfig) Localize(locale string) *ToolConfig {
	out := c.clone()
	overlay, ok := c.Locales[locale]
	if !ok || locale == DefaultLocale {
		return out
	}

	if overlay.Title != "" {
		out.Title = overlay.Title
	}
	if overlay.Description != "" {
		out.Description = overlay.Description
	}
	if len(overlay.Features) > 0 {
		out.Features = append([]string(nil), overlay.Features...)
	}
	if overlay.SEO != nil {
		if overlay.SEO.Title != "" {
			out.SEO.Title = overlay.SEO.Title
		}
		if overlay.SEO.Description != "" {
			out.SEO.Description = overlay.SEO.Description
		}
		if len(overlay.SEO.Keywords) > 0 {
			out.SEO.Keywords = append([]string(nil), overlay.SEO.Keywords...)
		}
	}

	for i := range out.FormFields {
		fo, ok := overlay.Fields[out.FormFields[i].Name]
		if !ok {
			continue
		}
		if fo.Label != "" {
			out.FormFields[i].Label = fo.Label
		}
		for j := range out.FormFields[i].Options {
			if label, ok := fo.Options[out.FormFields[i].Options[j].Value]; ok && label != "" {
				out.FormFields[i].Options[j].Label = label
			}
		}
	}
	return out
}

// LocaleNames returns the locales with an overlay, in addition to the default.
func (c *ToolConfig) LocaleNames() []string {
	names := []string{DefaultLocale}
	for name := range c.Locales {
		if name != DefaultLocale {
			names = append(names, name)
		}
	}
	sort.Strings(names[1:])
	return names
}

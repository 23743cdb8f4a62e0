// Package prompt turns a tool id and its option values into the instruction
// text sent upstream.
package prompt

import (
	"strconv"
	"strings"

	"github.com/foxholm/foxholm/internal/tool"
)

// Fallback is returned for tools without a registered template.
const Fallback = "Generate high quality image"

// Clause contributes zero or more fragments to a prompt. A clause must be a
// pure function of the options.
type Clause func(opts tool.Options) []string

// Template is an ordered list of clauses. The prompt is the concatenation of
// every fragment in clause order.
type Template []Clause

// Render builds the prompt for opts.
func (t Template) Render(opts tool.Options) string {
	var b strings.Builder
	for _, clause := range t {
		for _, part := range clause(opts) {
			b.WriteString(part)
		}
	}
	return b.String()
}

// Generator maps template names to templates.
type Generator struct {
	templates map[string]Template
}

// New returns a generator with the built-in templates registered.
func New() *Generator {
	return &Generator{templates: map[string]Template{
		"headshot": headshotTemplate,
		"restore":  restoreTemplate,
		"upscale":  upscaleTemplate,
	}}
}

// Build returns the prompt for the named template. Unknown names yield
// Fallback.
func (g *Generator) Build(name string, opts tool.Options) string {
	if g == nil {
		return Fallback
	}
	tmpl, ok := g.templates[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Fallback
	}
	return tmpl.Render(opts)
}

// Has reports whether a template is registered under name.
func (g *Generator) Has(name string) bool {
	if g == nil {
		return false
	}
	_, ok := g.templates[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

// Build renders with the built-in templates.
func Build(name string, opts tool.Options) string {
	return defaultGenerator.Build(name, opts)
}

var defaultGenerator = New()

func literal(text string) Clause {
	return func(tool.Options) []string { return []string{text} }
}

// choice emits render(value) for a string option, substituting def when the
// option is missing. An empty def omits the clause instead.
func choice(field, def string, render func(string) string) Clause {
	return func(opts tool.Options) []string {
		v, ok := opts.String(field)
		if !ok || v == "" {
			if def == "" {
				return nil
			}
			v = def
		}
		return []string{render(v)}
	}
}

// percent emits render(n) only when the slider value is greater than zero.
func percent(field string, render func(string) string) Clause {
	return func(opts tool.Options) []string {
		n, ok := opts.Number(field)
		if !ok || n <= 0 {
			return nil
		}
		return []string{render(strconv.FormatFloat(n, 'f', -1, 64))}
	}
}

// each emits one fragment per selected value in supplied order. Values
// without a mapping contribute nothing.
func each(field string, fragments map[string]string) Clause {
	return func(opts tool.Options) []string {
		var out []string
		for _, v := range opts.List(field) {
			if frag, ok := fragments[v]; ok {
				out = append(out, frag)
			}
		}
		return out
	}
}

func selected(opts tool.Options, field, value string) bool {
	if v, ok := opts.String(field); ok {
		return v == value
	}
	for _, v := range opts.List(field) {
		if v == value {
			return true
		}
	}
	return false
}

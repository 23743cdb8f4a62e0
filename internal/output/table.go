package output

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/foxholm/foxholm/internal/processing"
	"github.com/foxholm/foxholm/internal/tool"
)

// TableFormatter renders values as tables, either boxed for terminals or as
// Markdown.
type TableFormatter struct {
	Markdown bool
}

func (f *TableFormatter) newWriter() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	// Footers carry counts like "3 tools"; keep their case.
	t.Style().Format.Footer = text.FormatDefault
	return t
}

func (f *TableFormatter) render(t table.Writer) string {
	if f.Markdown {
		return t.RenderMarkdown()
	}
	return t.Render()
}

// FormatTools renders the catalogue, one row per tool.
func (f *TableFormatter) FormatTools(tools []*tool.ToolConfig) (string, error) {
	t := f.newWriter()
	t.AppendHeader(table.Row{"ID", "Tool", "Fields", "Model", "Image"})
	for _, cfg := range tools {
		if cfg == nil {
			continue
		}
		t.AppendRow(table.Row{
			cfg.ID,
			strings.TrimSpace(cfg.Emoji + " " + cfg.Title),
			len(cfg.FormFields),
			cfg.Processing.Model,
			yesNo(cfg.Processing.SupportsImage),
		})
	}
	t.AppendFooter(table.Row{"", fmt.Sprintf("%d tools", len(tools)), "", "", ""})
	return f.render(t), nil
}

// FormatTool renders one tool's form fields below its summary.
func (f *TableFormatter) FormatTool(cfg *tool.ToolConfig) (string, error) {
	if cfg == nil {
		return "", nil
	}

	summary := f.newWriter()
	summary.SetTitle(strings.TrimSpace(cfg.Emoji + " " + cfg.Title))
	summary.AppendRows([]table.Row{
		{"ID", cfg.ID},
		{"Description", cfg.Description},
		{"Features", strings.Join(cfg.Features, ", ")},
		{"Model", cfg.Processing.Model},
		{"SEO title", cfg.SEO.Title},
	})

	fields := f.newWriter()
	fields.AppendHeader(table.Row{"Field", "Type", "Label", "Values", "Required"})
	for _, field := range cfg.FormFields {
		fields.AppendRow(table.Row{
			field.Name,
			string(field.Type),
			field.Label,
			fieldValues(field),
			yesNo(field.Required),
		})
	}

	return f.render(summary) + "\n\n" + f.render(fields), nil
}

// FormatResult renders the outcome of a processing call.
func (f *TableFormatter) FormatResult(result *processing.Result) (string, error) {
	if result == nil {
		return "", nil
	}
	d := result.ProcessingDetails

	t := f.newWriter()
	t.AppendHeader(table.Row{"Key", "Value"})
	t.AppendRows([]table.Row{
		{"Tool", result.ToolID},
		{"Provider", d.Provider},
		{"Model", d.Model},
		{"Seed", d.Seed},
		{"Source image", yesNo(d.UsedSourceImage)},
		{"Prompt", d.Prompt},
	})
	if result.OriginalDimensions != nil {
		t.AppendRow(table.Row{"Original", result.OriginalDimensions.String()})
	}
	if result.TargetDimensions != nil {
		t.AppendRow(table.Row{"Target", fmt.Sprintf("%s (%dx)", result.TargetDimensions, d.Scale)})
	}
	if result.Analysis != nil {
		t.AppendRow(table.Row{"Damage", result.Analysis.DamageLevel + ": " + strings.Join(result.Analysis.DamageDetected, ", ")})
	}
	t.AppendRow(table.Row{"Output", abbreviate(result.ProcessedImage, 96)})
	return f.render(t), nil
}

func fieldValues(field tool.FieldSpec) string {
	if field.Type == tool.FieldSlider {
		parts := []string{}
		if field.Min != nil && field.Max != nil {
			parts = append(parts, fmt.Sprintf("%s-%s%s", number(*field.Min), number(*field.Max), field.Unit))
		}
		if field.Default != nil {
			parts = append(parts, "default "+number(*field.Default))
		}
		return strings.Join(parts, ", ")
	}
	values := make([]string, 0, len(field.Options))
	for _, opt := range field.Options {
		values = append(values, opt.Value)
	}
	return strings.Join(values, ", ")
}

func number(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

// abbreviate keeps data URLs from flooding the terminal.
func abbreviate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + fmt.Sprintf("... (%d bytes)", len(s))
}

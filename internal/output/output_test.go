package output

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foxholm/foxholm/internal/imaging"
	"github.com/foxholm/foxholm/internal/processing"
	"github.com/foxholm/foxholm/internal/tool"
)

func tools(t *testing.T) []*tool.ToolConfig {
	t.Helper()
	reg, err := tool.DefaultRegistry()
	require.NoError(t, err)
	return reg.List()
}

func TestParseFormat(t *testing.T) {
	format, err := ParseFormat("table")
	require.NoError(t, err)
	require.Equal(t, FormatTable, format)

	format, err = ParseFormat("JSON")
	require.NoError(t, err)
	require.Equal(t, FormatJSON, format)

	format, err = ParseFormat("md")
	require.NoError(t, err)
	require.Equal(t, FormatMarkdown, format)

	format, err = ParseFormat("")
	require.NoError(t, err)
	require.Equal(t, FormatTable, format)

	_, err = ParseFormat("csv")
	require.Error(t, err)
}

func TestFormatToolsTable(t *testing.T) {
	rendered, err := NewFormatter(FormatTable).FormatTools(tools(t))
	require.NoError(t, err)
	for _, want := range []string{"headshot", "restore", "upscale", "3 tools", "FLUX.1-kontext-pro"} {
		assert.Contains(t, rendered, want)
	}
}

func TestFormatToolsJSON(t *testing.T) {
	rendered, err := NewFormatter(FormatJSON).FormatTools(tools(t))
	require.NoError(t, err)

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal([]byte(rendered), &decoded))
	require.Len(t, decoded, 3)
	assert.Equal(t, "headshot", decoded[0]["id"])
	assert.NotContains(t, decoded[0], "processing")

	empty, err := NewFormatter(FormatJSON).FormatTools(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", empty)
}

func TestFormatToolMarkdown(t *testing.T) {
	var upscale *tool.ToolConfig
	for _, cfg := range tools(t) {
		if cfg.ID == "upscale" {
			upscale = cfg
		}
	}
	require.NotNil(t, upscale)

	rendered, err := NewFormatter(FormatMarkdown).FormatTool(upscale)
	require.NoError(t, err)
	assert.Contains(t, rendered, "| targetResolution |")
	assert.Contains(t, rendered, "2x, 4x, 8x, custom")
	assert.Contains(t, rendered, "0-100%, default 50")
}

func TestFormatResult(t *testing.T) {
	result := &processing.Result{
		ToolID:             "upscale",
		ProcessedImage:     "data:image/png;base64," + strings.Repeat("A", 500),
		OriginalDimensions: &imaging.Dimensions{Width: 1000, Height: 800},
		TargetDimensions:   &imaging.Dimensions{Width: 4000, Height: 3200},
		ProcessingDetails: processing.Details{
			Prompt:   "Upscale image to 4x resolution",
			Model:    "m",
			Provider: "together",
			Seed:     42,
			Scale:    4,
		},
	}

	rendered, err := NewFormatter(FormatTable).FormatResult(result)
	require.NoError(t, err)
	assert.Contains(t, rendered, "4000x3200 (4x)")
	assert.Contains(t, rendered, "(522 bytes)")
	assert.NotContains(t, rendered, strings.Repeat("A", 200))
}

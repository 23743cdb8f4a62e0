package tool

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultRegistry(t *testing.T) *Registry {
	t.Helper()
	reg, err := DefaultRegistry()
	require.NoError(t, err)
	return reg
}

func TestDefaultRegistryLoadsEmbeddedTools(t *testing.T) {
	reg := defaultRegistry(t)
	assert.Equal(t, []string{"headshot", "restore", "upscale"}, reg.IDs())

	for _, cfg := range reg.List() {
		assert.NotEmpty(t, cfg.Title, cfg.ID)
		assert.NotEmpty(t, cfg.Emoji, cfg.ID)
		assert.NotEmpty(t, cfg.SEO.Title, cfg.ID)
		assert.NotEmpty(t, cfg.FormFields, cfg.ID)
		assert.Equal(t, cfg.ID, cfg.PromptTemplate)
		assert.Equal(t, "black-forest-labs/FLUX.1-kontext-pro", cfg.Processing.Model)
	}
}

func TestRegistryGetNormalizesID(t *testing.T) {
	reg := defaultRegistry(t)

	for _, id := range []string{"headshot", "HEADSHOT", " HeadShot ", "headshot:3000", "Headshot:443 "} {
		cfg, ok := reg.Get(id)
		require.True(t, ok, id)
		assert.Equal(t, "headshot", cfg.ID)
	}

	for _, id := range []string{"", "   ", ":3000", "portrait", "head shot"} {
		_, ok := reg.Get(id)
		assert.False(t, ok, id)
	}
}

func TestRegistryLookupReportsAvailableIDs(t *testing.T) {
	reg := defaultRegistry(t)

	_, err := reg.Lookup("unknown")
	require.Error(t, err)

	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "unknown", nf.Requested)
	assert.Equal(t, reg.IDs(), nf.Available)
}

func TestRegistryIDsReturnsCopy(t *testing.T) {
	reg := defaultRegistry(t)
	ids := reg.IDs()
	ids[0] = "mutated"
	assert.Equal(t, "headshot", reg.IDs()[0])
}

func TestNewRegistryRejectsDuplicates(t *testing.T) {
	_, err := NewRegistry([]*ToolConfig{{ID: "a"}, {ID: "A"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")

	_, err = NewRegistry(nil)
	require.Error(t, err)
}

func TestFormFieldsEncodeInOrder(t *testing.T) {
	reg := defaultRegistry(t)
	cfg, ok := reg.Get("upscale")
	require.True(t, ok)

	data, err := json.Marshal(cfg)
	require.NoError(t, err)

	body := string(data)
	order := []string{`"targetResolution"`, `"enhancementType"`, `"noiseReduction"`, `"sharpeningLevel"`}
	last := -1
	for _, key := range order {
		idx := strings.Index(body, key)
		require.Greater(t, idx, last, key)
		last = idx
	}

	var decoded struct {
		FormFields map[string]struct {
			Type    string   `json:"type"`
			Min     *float64 `json:"min"`
			Default *float64 `json:"default"`
			Unit    string   `json:"unit"`
		} `json:"formFields"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	noise := decoded.FormFields["noiseReduction"]
	assert.Equal(t, "slider", noise.Type)
	require.NotNil(t, noise.Min)
	assert.Equal(t, 0.0, *noise.Min)
	require.NotNil(t, noise.Default)
	assert.Equal(t, 50.0, *noise.Default)
	assert.Equal(t, "%", noise.Unit)
	assert.NotContains(t, body, "prompt_template")
	assert.NotContains(t, body, "locales")
}

func TestLoadRejectsInvalidTables(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"missing id", "title: x\n", "lower-case DNS label"},
		{"upper id", "id: Head\ntitle: x\n", "lower-case DNS label"},
		{"missing title", "id: a\n", "title is required"},
		{"radio without options", "id: a\ntitle: x\nform_fields:\n  - {name: f, type: radio}\n", "requires options"},
		{"unknown type", "id: a\ntitle: x\nform_fields:\n  - {name: f, type: dial}\n", "unknown type"},
		{"duplicate option", "id: a\ntitle: x\nform_fields:\n  - name: f\n    type: select\n    options: [{value: a}, {value: a}]\n", "duplicate option"},
		{"duplicate field", "id: a\ntitle: x\nform_fields:\n  - {name: f, type: toggle}\n  - {name: f, type: toggle}\n", "duplicate field"},
		{"slider bounds", "id: a\ntitle: x\nform_fields:\n  - {name: s, type: slider, min: 10, max: 0}\n", "min exceeds max"},
		{"slider default", "id: a\ntitle: x\nform_fields:\n  - {name: s, type: slider, min: 0, max: 10, default: 11}\n", "default outside"},
		{"slider missing bounds", "id: a\ntitle: x\nform_fields:\n  - {name: s, type: slider}\n", "requires min and max"},
		{"strength range", "id: a\ntitle: x\nprocessing: {strength: 1.5}\n", "strength"},
		{"locale unknown field", "id: a\ntitle: x\nlocales:\n  es:\n    fields:\n      nope: {label: y}\n", "unknown field"},
		{"locale unknown option", "id: a\ntitle: x\nform_fields:\n  - name: f\n    type: radio\n    options: [{value: a}]\nlocales:\n  es:\n    fields:\n      f: {options: {b: y}}\n", "has no option"},
		{"bad yaml", "id: [", "parse tool"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load("test.yaml", []byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLocalizeOverlaysDisplayStrings(t *testing.T) {
	reg := defaultRegistry(t)

	es, ok := reg.Localized("headshot", "es")
	require.True(t, ok)
	assert.Equal(t, "Generador de fotos profesionales con IA", es.Title)
	style, ok := es.FormFields.Field("style")
	require.True(t, ok)
	assert.Equal(t, "Selección de estilo", style.Label)
	assert.Equal(t, "corporate", style.Options[0].Value)
	assert.Equal(t, "Profesional corporativo", style.Options[0].Label)

	// The shared registry entry stays untouched.
	en, _ := reg.Get("headshot")
	assert.Equal(t, "AI Professional Headshot Generator", en.Title)
	style, _ = en.FormFields.Field("style")
	assert.Equal(t, "Corporate Professional", style.Options[0].Label)

	fallback, ok := reg.Localized("upscale", "de")
	require.True(t, ok)
	assert.Equal(t, "AI Image Upscaling", fallback.Title)

	fr, _ := reg.Localized("upscale", "fr")
	noise, _ := fr.FormFields.Field("noiseReduction")
	assert.Equal(t, "Réduction du bruit", noise.Label)
	assert.Equal(t, "%", noise.Unit)

	assert.Equal(t, []string{"en", "es", "fr"}, en.LocaleNames())
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Headshot", (&ToolConfig{ID: "headshot"}).DisplayName())
	assert.Equal(t, "", (&ToolConfig{}).DisplayName())
}

package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	fulmenerrors "github.com/fulmenhq/gofulmen/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foxholm/foxholm/internal/config"
	"github.com/foxholm/foxholm/internal/gateway/gemini"
	"github.com/foxholm/foxholm/internal/gateway/together"
	"github.com/foxholm/foxholm/internal/imaging"
	"github.com/foxholm/foxholm/internal/tool"
)

func mustTool(t *testing.T, id string) *tool.ToolConfig {
	t.Helper()
	reg, err := tool.DefaultRegistry()
	require.NoError(t, err)
	cfg, err := reg.Lookup(id)
	require.NoError(t, err)
	return cfg
}

func TestParseSetFlags(t *testing.T) {
	upscale := mustTool(t, "upscale")

	raw, err := parseSetFlags(upscale, []string{"targetResolution=4x", " noiseReduction = 20 "})
	require.NoError(t, err)
	assert.JSONEq(t, `"4x"`, string(raw["targetResolution"]))
	assert.JSONEq(t, `20`, string(raw["noiseReduction"]))

	opts, err := upscale.DecodeOptions(raw)
	require.NoError(t, err)
	n, ok := opts.Number("noiseReduction")
	require.True(t, ok)
	assert.Equal(t, 20.0, n)

	headshot := mustTool(t, "headshot")
	raw, err = parseSetFlags(headshot, []string{"clothing=suit, business-casual,"})
	require.NoError(t, err)
	assert.JSONEq(t, `["suit","business-casual"]`, string(raw["clothing"]))

	// Unknown keys pass through as strings; DecodeOptions decides what to keep.
	raw, err = parseSetFlags(headshot, []string{"extra=value"})
	require.NoError(t, err)
	assert.JSONEq(t, `"value"`, string(raw["extra"]))
}

func TestParseSetFlagsErrors(t *testing.T) {
	upscale := mustTool(t, "upscale")

	for _, bad := range []string{"noequals", "=4x", "noiseReduction=lots"} {
		_, err := parseSetFlags(upscale, []string{bad})
		assert.Error(t, err, bad)
	}
}

func TestNewGateway(t *testing.T) {
	cfg := &config.Config{}
	cfg.Gateway.Provider = config.ProviderTogether
	cfg.Gateway.Timeout = 42 * time.Second
	cfg.Gateway.Together.APIKey = "key"

	gw, err := newGateway(cfg)
	require.NoError(t, err)
	client, ok := gw.(*together.Client)
	require.True(t, ok)
	assert.Equal(t, "together", client.Name())
	assert.Equal(t, 42*time.Second, client.Timeout)
	assert.Equal(t, "key", client.APIKey)

	cfg.Gateway.Provider = config.ProviderGemini
	cfg.Gateway.Gemini.Model = "custom-model"
	gw, err = newGateway(cfg)
	require.NoError(t, err)
	gem, ok := gw.(*gemini.Client)
	require.True(t, ok)
	assert.Equal(t, "custom-model", gem.Model)
	assert.Equal(t, 42*time.Second, gem.Timeout)

	cfg.Gateway.Provider = "dalle"
	_, err = newGateway(cfg)
	assert.Error(t, err)
}

func TestNewProcessor(t *testing.T) {
	cfg := &config.Config{}
	cfg.Gateway.Provider = config.ProviderTogether

	p, err := newProcessor(cfg)
	require.NoError(t, err)
	assert.Equal(t, "together", p.Provider())
	assert.Equal(t, []string{"headshot", "restore", "upscale"}, p.Registry().IDs())
}

func TestSaveOutput(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.png")

	require.NoError(t, saveOutput(path, imaging.EncodeDataURL([]byte("png-bytes"), "image/png")))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), data)

	err = saveOutput(filepath.Join(dir, "remote.png"), "https://cdn.example.com/out.png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "URL")
}

func TestRemoteHealthURL(t *testing.T) {
	t.Setenv("HEALTH_CHECK_HOST", "")
	assert.Equal(t, "http://localhost:3001/api/health", remoteHealthURL(3001))

	t.Setenv("HEALTH_CHECK_HOST", "app")
	assert.Equal(t, "http://app:8080/api/health", remoteHealthURL(8080))
}

func TestProbeHealth(t *testing.T) {
	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/health", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}))
	defer healthy.Close()

	status, err := probeHealth(context.Background(), healthy.Client(), healthy.URL+"/api/health")
	require.NoError(t, err)
	assert.Equal(t, "ok", status)

	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "unhealthy"})
	}))
	defer down.Close()

	status, err = probeHealth(context.Background(), down.Client(), down.URL+"/api/health")
	require.Error(t, err)
	assert.Equal(t, "unhealthy", status)
	assert.Contains(t, err.Error(), "503")
}

func TestWriteFatal(t *testing.T) {
	var buf bytes.Buffer
	writeFatal(&buf, "boom", nil)
	assert.Equal(t, "FATAL: boom\n", buf.String())

	buf.Reset()
	writeFatal(&buf, "boom", errors.New("disk full"))
	assert.Equal(t, "FATAL: boom: disk full\n", buf.String())

	buf.Reset()
	writeFatal(&buf, "boom", fulmenerrors.NewErrorEnvelope("CONFIG_INVALID", "bad port"))
	assert.Contains(t, buf.String(), "[CONFIG_INVALID]")
	assert.Contains(t, buf.String(), "bad port")
}

func TestPromptCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"prompt", "UPSCALE", "--set", "targetResolution=4x", "--set", "enhancementType=photo"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
		promptSets = nil
	})

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "Upscale image to 4x resolution, optimized for photo")
}

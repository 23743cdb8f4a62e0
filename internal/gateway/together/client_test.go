package together

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foxholm/foxholm/internal/gateway"
)

func TestClientRequiresAPIKey(t *testing.T) {
	client := NewClient("", "")
	_, err := client.Transform(context.Background(), &gateway.Request{Prompt: "hi"})
	require.Error(t, err)
	require.Equal(t, gateway.KindAuth, gateway.KindOf(err))
	require.Contains(t, err.Error(), "api key")
}

func TestClientDefaults(t *testing.T) {
	client := NewClient("  ", " key ")
	require.Equal(t, "https://api.together.xyz/v1", client.BaseURL)
	require.Equal(t, "key", client.APIKey)
	require.Equal(t, "together", client.Name())
}

func TestClientSendsImageToImageRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/images/generations", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		var payload map[string]any
		require.NoError(t, json.Unmarshal(body, &payload))
		assert.Equal(t, "black-forest-labs/FLUX.1-kontext-pro", payload["model"])
		assert.Equal(t, "Upscale image to 4x resolution", payload["prompt"])
		assert.EqualValues(t, 4000, payload["width"])
		assert.EqualValues(t, 3200, payload["height"])
		assert.EqualValues(t, 39, payload["steps"])
		assert.EqualValues(t, 1, payload["n"])
		assert.EqualValues(t, 1234, payload["seed"])
		assert.EqualValues(t, 0.6, payload["strength"])
		assert.Equal(t, "data:image/png;base64,aGk=", payload["image_url"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","data":[{"url":"https://cdn.example/out.png"}]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key")
	client.HTTPClient = server.Client()

	res, err := client.Transform(context.Background(), &gateway.Request{
		Prompt:   "Upscale image to 4x resolution",
		Image:    []byte("hi"),
		MimeType: "image/png",
		Width:    4000,
		Height:   3200,
		Strength: 0.6,
		Seed:     1234,
	})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/out.png", res.ImageRef)
	assert.Equal(t, "black-forest-labs/FLUX.1-kontext-pro", res.Model)
	assert.True(t, res.UsedSourceImage)
	assert.EqualValues(t, 1234, res.Seed)
}

func TestClientTextOnlyOmitsImageFields(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		_, hasImage := payload["image_url"]
		_, hasStrength := payload["strength"]
		assert.False(t, hasImage)
		assert.False(t, hasStrength)
		_, _ = w.Write([]byte(`{"data":[{"b64_json":"aGk="}]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key")
	client.HTTPClient = server.Client()

	res, err := client.Transform(context.Background(), &gateway.Request{Prompt: "p", Strength: 0.5, Model: "custom/model"})
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,aGk=", res.ImageRef)
	assert.Equal(t, "custom/model", res.Model)
	assert.False(t, res.UsedSourceImage)
}

func TestClientClassifiesStatus(t *testing.T) {
	cases := []struct {
		status int
		want   gateway.Kind
	}{
		{http.StatusUnauthorized, gateway.KindAuth},
		{http.StatusForbidden, gateway.KindAuth},
		{http.StatusTooManyRequests, gateway.KindRateLimited},
		{http.StatusBadRequest, gateway.KindBadRequest},
		{http.StatusUnprocessableEntity, gateway.KindBadRequest},
		{http.StatusBadGateway, gateway.KindUnavailable},
		{http.StatusServiceUnavailable, gateway.KindUnavailable},
	}

	for _, tc := range cases {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(tc.status)
			_, _ = w.Write([]byte(`{"error":{"message":"secret upstream detail"}}`))
		}))

		client := NewClient(server.URL, "test-key")
		client.HTTPClient = server.Client()
		_, err := client.Transform(context.Background(), &gateway.Request{Prompt: "p"})
		server.Close()

		require.Error(t, err, tc.status)
		assert.Equal(t, tc.want, gateway.KindOf(err), tc.status)
		assert.EqualValues(t, 1, calls.Load(), "no retries for %d", tc.status)

		var gerr *gateway.Error
		require.ErrorAs(t, err, &gerr)
		assert.Equal(t, tc.status, gerr.StatusCode)
	}
}

func TestClientMalformedResponse(t *testing.T) {
	for _, body := range []string{`not json`, `{"data":[]}`, `{"data":[{}]}`} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(body))
		}))
		client := NewClient(server.URL, "test-key")
		client.HTTPClient = server.Client()
		_, err := client.Transform(context.Background(), &gateway.Request{Prompt: "p"})
		server.Close()

		require.Error(t, err, body)
		assert.Equal(t, gateway.KindInternal, gateway.KindOf(err), body)
	}
}

func TestClientTimeoutIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key")
	client.HTTPClient = server.Client()
	client.Timeout = 50 * time.Millisecond

	_, err := client.Transform(context.Background(), &gateway.Request{Prompt: "p"})
	require.Error(t, err)
	assert.Equal(t, gateway.KindUnavailable, gateway.KindOf(err))
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "bad", errorMessage([]byte(`{"error":{"message":"bad"}}`)))
	assert.Equal(t, "flat", errorMessage([]byte(`{"message":"flat"}`)))
	assert.Equal(t, "plain text", errorMessage([]byte(" plain text \n")))
	assert.Len(t, errorMessage([]byte(strings.Repeat("x", 2000))), 512)
}

func TestErrorMessageKeepsRunesWhole(t *testing.T) {
	// "é" is two bytes and "€" three, so byte 512 lands inside a rune.
	body := "x" + strings.Repeat("é", 300)
	msg := errorMessage([]byte(body))
	assert.True(t, utf8.ValidString(msg))
	assert.Len(t, msg, 511)

	msg = errorMessage([]byte(strings.Repeat("€", 400)))
	assert.True(t, utf8.ValidString(msg))
	assert.Len(t, msg, 510)
}

package gemini

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/foxholm/foxholm/internal/gateway"
)

type fakeGenerator struct {
	model    string
	contents []*genai.Content
	config   *genai.GenerateContentConfig
	resp     *genai.GenerateContentResponse
	err      error
	calls    int
}

func (f *fakeGenerator) GenerateContent(_ context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.calls++
	f.model = model
	f.contents = contents
	f.config = config
	return f.resp, f.err
}

func imageResponse(data []byte, mime string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{
				{Text: "here you go"},
				{InlineData: &genai.Blob{Data: data, MIMEType: mime}},
			}},
		}},
	}
}

func TestClientRequiresAPIKey(t *testing.T) {
	_, err := NewClient("", "").Transform(context.Background(), &gateway.Request{Prompt: "p"})
	require.Error(t, err)
	assert.Equal(t, gateway.KindAuth, gateway.KindOf(err))
}

func TestClientSendsTextAndImageParts(t *testing.T) {
	gen := &fakeGenerator{resp: imageResponse([]byte("hi"), "image/jpeg")}
	client := NewClientWithGenerator(gen, "")

	res, err := client.Transform(context.Background(), &gateway.Request{
		Model:    "black-forest-labs/FLUX.1-kontext-pro",
		Prompt:   "restore this",
		Image:    []byte{1, 2, 3},
		MimeType: "image/png",
		Seed:     42,
	})
	require.NoError(t, err)

	assert.Equal(t, DefaultModel, gen.model)
	require.Len(t, gen.contents, 1)
	parts := gen.contents[0].Parts
	require.Len(t, parts, 2)
	assert.Equal(t, "restore this", parts[0].Text)
	require.NotNil(t, parts[1].InlineData)
	assert.Equal(t, []byte{1, 2, 3}, parts[1].InlineData.Data)
	assert.Equal(t, "image/png", parts[1].InlineData.MIMEType)
	require.NotNil(t, gen.config.Seed)
	assert.EqualValues(t, 42, *gen.config.Seed)

	assert.Equal(t, "data:image/jpeg;base64,aGk=", res.ImageRef)
	assert.Equal(t, DefaultModel, res.Model)
	assert.True(t, res.UsedSourceImage)
}

func TestClientHonorsGeminiModelOnRequest(t *testing.T) {
	gen := &fakeGenerator{resp: imageResponse([]byte("x"), "image/png")}
	client := NewClientWithGenerator(gen, "")
	_, err := client.Transform(context.Background(), &gateway.Request{Model: "gemini-3-pro-image-preview", Prompt: "p"})
	require.NoError(t, err)
	assert.Equal(t, "gemini-3-pro-image-preview", gen.model)
	assert.Len(t, gen.contents[0].Parts, 1)
}

func TestClientNoImageIsMalformed(t *testing.T) {
	gen := &fakeGenerator{resp: &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: []*genai.Part{{Text: "sorry"}}}}}}}
	_, err := NewClientWithGenerator(gen, "").Transform(context.Background(), &gateway.Request{Prompt: "p"})
	require.Error(t, err)
	assert.Equal(t, gateway.KindInternal, gateway.KindOf(err))
}

func TestClientClassifiesAPIErrors(t *testing.T) {
	cases := []struct {
		code int
		want gateway.Kind
	}{
		{401, gateway.KindAuth},
		{403, gateway.KindAuth},
		{429, gateway.KindRateLimited},
		{400, gateway.KindBadRequest},
		{503, gateway.KindUnavailable},
	}
	for _, tc := range cases {
		gen := &fakeGenerator{err: genai.APIError{Code: tc.code, Message: "nope"}}
		_, err := NewClientWithGenerator(gen, "").Transform(context.Background(), &gateway.Request{Prompt: "p"})
		require.Error(t, err)
		assert.Equal(t, tc.want, gateway.KindOf(err), tc.code)
		assert.Equal(t, 1, gen.calls)
	}

	gen := &fakeGenerator{err: context.DeadlineExceeded}
	_, err := NewClientWithGenerator(gen, "").Transform(context.Background(), &gateway.Request{Prompt: "p"})
	assert.Equal(t, gateway.KindUnavailable, gateway.KindOf(err))

	gen = &fakeGenerator{err: errors.New("boom")}
	_, err = NewClientWithGenerator(gen, "").Transform(context.Background(), &gateway.Request{Prompt: "p"})
	assert.Equal(t, gateway.KindInternal, gateway.KindOf(err))
}

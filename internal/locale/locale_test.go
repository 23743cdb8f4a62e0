package locale

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatch(t *testing.T) {
	tests := []struct {
		explicit string
		accept   string
		want     string
	}{
		{"", "", "en"},
		{"es", "", "es"},
		{"fr-CA", "", "fr"},
		{"", "fr-FR,fr;q=0.9,en;q=0.8", "fr"},
		{"", "es-MX", "es"},
		{"es", "fr", "es"},
		{"", "de-DE", "en"},
		{"klingon", "", "en"},
	}

	for _, tt := range tests {
		t.Run(tt.explicit+"|"+tt.accept, func(t *testing.T) {
			assert.Equal(t, tt.want, Match(tt.explicit, tt.accept))
		})
	}
}

func TestContextRoundTrip(t *testing.T) {
	ctx := WithLocale(context.Background(), "fr")
	assert.Equal(t, "fr", FromContext(ctx))
	assert.Equal(t, "en", FromContext(context.Background()))
}

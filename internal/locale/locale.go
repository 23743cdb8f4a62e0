// Package locale picks the display language for a request.
package locale

import (
	"context"

	"golang.org/x/text/language"
)

// Supported lists the locales the tool table carries text for. The first
// entry is the fallback.
var Supported = []string{"en", "es", "fr"}

var matcher = language.NewMatcher([]language.Tag{
	language.English,
	language.Spanish,
	language.French,
})

// Match resolves the best supported locale from an explicit choice (such as
// a ?lang= query value) and an Accept-Language header. The explicit value
// wins when it is usable; unknown input falls back to English.
func Match(explicit, acceptLanguage string) string {
	_, idx := language.MatchStrings(matcher, explicit, acceptLanguage)
	if idx < 0 || idx >= len(Supported) {
		return Supported[0]
	}
	return Supported[idx]
}

type contextKey struct{}

// WithLocale stores the resolved locale on ctx.
func WithLocale(ctx context.Context, loc string) context.Context {
	return context.WithValue(ctx, contextKey{}, loc)
}

// FromContext returns the locale stored on ctx, or the fallback.
func FromContext(ctx context.Context) string {
	if ctx != nil {
		if loc, ok := ctx.Value(contextKey{}).(string); ok && loc != "" {
			return loc
		}
	}
	return Supported[0]
}

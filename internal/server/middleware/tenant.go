package middleware

import (
	"context"
	"net/http"

	"github.com/foxholm/foxholm/internal/host"
	"github.com/foxholm/foxholm/internal/locale"
)

type hostToolKey struct{}

// HostTool stores the tool id derived from the Host header, if any.
func HostTool(rootDomain string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if id, ok := host.ExtractToolID(r.Host, rootDomain); ok {
				r = r.WithContext(context.WithValue(r.Context(), hostToolKey{}, id))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// HostToolID returns the tool id stored by HostTool.
func HostToolID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(hostToolKey{}).(string)
	return id, ok && id != ""
}

// Locale resolves the display locale from ?lang= and Accept-Language.
func Locale(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		loc := locale.Match(r.URL.Query().Get("lang"), r.Header.Get("Accept-Language"))
		w.Header().Set("Content-Language", loc)
		w.Header().Add("Vary", "Accept-Language")
		next.ServeHTTP(w, r.WithContext(locale.WithLocale(r.Context(), loc)))
	})
}

// MaxBody caps request bodies at limit bytes. Reads past the cap fail with
// *http.MaxBytesError.
func MaxBody(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limit > 0 && r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, limit)
			}
			next.ServeHTTP(w, r)
		})
	}
}

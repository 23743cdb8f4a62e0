package server

import (
	"bytes"
	"net/http"
	"time"

	"github.com/foxholm/foxholm/internal/locale"
	servermw "github.com/foxholm/foxholm/internal/server/middleware"
)

// sitemap serves /sitemap.xml with the requesting tool listed first.
func (s *Server) sitemap(w http.ResponseWriter, r *http.Request) {
	current, _ := servermw.HostToolID(r.Context())
	if cfg, ok := s.site.Registry.Get(current); ok {
		current = cfg.ID
	} else {
		current = ""
	}

	var buf bytes.Buffer
	if err := s.site.WriteSitemap(&buf, current, time.Now()); err != nil {
		HandleError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = w.Write(buf.Bytes())
}

// landing serves the meta page of the tool named by the Host header, or the
// tool index on the root domain and unknown subdomains.
func (s *Server) landing(w http.ResponseWriter, r *http.Request) {
	lang := locale.FromContext(r.Context())

	var buf bytes.Buffer
	var err error
	id, _ := servermw.HostToolID(r.Context())
	if cfg, ok := s.site.Registry.Localized(id, lang); ok {
		err = s.site.WriteToolPage(&buf, cfg, lang)
	} else {
		err = s.site.WriteIndexPage(&buf, lang)
	}
	if err != nil {
		HandleError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

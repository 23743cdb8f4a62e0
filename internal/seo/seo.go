// Package seo renders the crawler-facing surface: sitemap.xml and the
// per-tool landing page meta tags.
package seo

import (
	"github.com/foxholm/foxholm/internal/tool"
)

// ThemeColor is the brand colour advertised to browsers.
const ThemeColor = "#FF6B35"

// Site describes the public deployment the URLs are built for.
type Site struct {
	Domain     string
	Production bool
	Registry   *tool.Registry
}

// Protocol is https in production and http everywhere else.
func (s Site) Protocol() string {
	if s.Production {
		return "https"
	}
	return "http"
}

// RootURL is the root domain URL.
func (s Site) RootURL() string {
	return s.Protocol() + "://" + s.Domain
}

// ToolURL is the canonical URL of a tool subdomain.
func (s Site) ToolURL(id string) string {
	return s.Protocol() + "://" + id + "." + s.Domain
}

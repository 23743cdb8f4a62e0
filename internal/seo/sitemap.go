package seo

import (
	"encoding/xml"
	"io"
	"time"
)

const sitemapNS = "http://www.sitemaps.org/schemas/sitemap/0.9"

// URL is one sitemap entry.
type URL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod"`
	ChangeFreq string `xml:"changefreq"`
	Priority   string `xml:"priority"`
}

type urlSet struct {
	XMLName xml.Name `xml:"urlset"`
	XMLNS   string   `xml:"xmlns,attr"`
	URLs    []URL    `xml:"url"`
}

// URLs lists the root domain followed by every tool subdomain. When current
// names a tool its entry is moved to the front.
func (s Site) URLs(current string, now time.Time) []URL {
	lastMod := now.UTC().Format(time.DateOnly)
	urls := []URL{{Loc: s.RootURL(), LastMod: lastMod, ChangeFreq: "weekly", Priority: "1.0"}}

	var first []URL
	for _, cfg := range s.Registry.List() {
		u := URL{Loc: s.ToolURL(cfg.ID), LastMod: lastMod, ChangeFreq: "weekly", Priority: "0.8"}
		if current != "" && cfg.ID == current {
			first = append(first, u)
			continue
		}
		urls = append(urls, u)
	}
	return append(first, urls...)
}

// WriteSitemap encodes the sitemap XML document to w.
func (s Site) WriteSitemap(w io.Writer, current string, now time.Time) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(urlSet{XMLNS: sitemapNS, URLs: s.URLs(current, now)}); err != nil {
		return err
	}
	return enc.Flush()
}

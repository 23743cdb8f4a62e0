package seo

import (
	"encoding/json"
	"html/template"
	"io"
	"strings"

	"github.com/foxholm/foxholm/internal/tool"
)

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="{{.Lang}}">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>{{.Title}}</title>
  <meta name="description" content="{{.Description}}">
{{- if .Keywords}}
  <meta name="keywords" content="{{.Keywords}}">
{{- end}}
  <meta name="theme-color" content="{{.ThemeColor}}">
  <meta property="og:type" content="website">
  <meta property="og:title" content="{{.Title}}">
  <meta property="og:description" content="{{.Description}}">
  <meta property="og:url" content="{{.Canonical}}">
  <meta name="twitter:card" content="summary_large_image">
  <meta name="twitter:title" content="{{.Title}}">
  <meta name="twitter:description" content="{{.Description}}">
  <link rel="canonical" href="{{.Canonical}}">
{{- if .StructuredData}}
  <script type="application/ld+json">{{.StructuredData}}</script>
{{- end}}
</head>
<body>
{{- if .Tool}}
  <main id="root" data-tool="{{.Tool.ID}}">
    <h1>{{.Tool.Emoji}} {{.Tool.Title}}</h1>
    <p>{{.Tool.Description}}</p>
    <ul>
{{- range .Tool.Features}}
      <li>{{.}}</li>
{{- end}}
    </ul>
  </main>
{{- else}}
  <main id="root">
    <h1>Foxholm AI Image Tools</h1>
    <ul>
{{- range .Links}}
      <li><a href="{{.URL}}">{{.Emoji}} {{.Title}}</a> {{.Description}}</li>
{{- end}}
    </ul>
  </main>
{{- end}}
</body>
</html>
`))

type link struct {
	URL         string
	Emoji       string
	Title       string
	Description string
}

type pageData struct {
	Lang           string
	Title          string
	Description    string
	Keywords       string
	ThemeColor     string
	Canonical      string
	StructuredData template.JS
	Tool           *tool.ToolConfig
	Links          []link
}

type offer struct {
	Type          string `json:"@type"`
	Price         string `json:"price"`
	PriceCurrency string `json:"priceCurrency"`
}

type organization struct {
	Type string `json:"@type"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

type webApplication struct {
	Context             string       `json:"@context"`
	Type                string       `json:"@type"`
	Name                string       `json:"name"`
	Description         string       `json:"description"`
	URL                 string       `json:"url"`
	ApplicationCategory string       `json:"applicationCategory"`
	OperatingSystem     string       `json:"operatingSystem"`
	Offers              offer        `json:"offers"`
	FeatureList         []string     `json:"featureList"`
	Provider            organization `json:"provider"`
}

// StructuredData returns the JSON-LD WebApplication document for cfg.
func (s Site) StructuredData(cfg *tool.ToolConfig) ([]byte, error) {
	return json.Marshal(webApplication{
		Context:             "https://schema.org",
		Type:                "WebApplication",
		Name:                cfg.Title,
		Description:         cfg.Description,
		URL:                 s.ToolURL(cfg.ID),
		ApplicationCategory: "PhotographyApplication",
		OperatingSystem:     "Web",
		Offers:              offer{Type: "Offer", Price: "0", PriceCurrency: "USD"},
		FeatureList:         cfg.Features,
		Provider: organization{
			Type: "Organization",
			Name: "Foxholm",
			URL:  s.Protocol() + "://www." + s.Domain,
		},
	})
}

// WriteToolPage renders the landing page of a localized tool.
func (s Site) WriteToolPage(w io.Writer, cfg *tool.ToolConfig, lang string) error {
	ld, err := s.StructuredData(cfg)
	if err != nil {
		return err
	}
	title, description := cfg.SEO.Title, cfg.SEO.Description
	if title == "" {
		title = cfg.Title
	}
	if description == "" {
		description = cfg.Description
	}
	return pageTemplate.Execute(w, pageData{
		Lang:           lang,
		Title:          title,
		Description:    description,
		Keywords:       strings.Join(cfg.SEO.Keywords, ", "),
		ThemeColor:     ThemeColor,
		Canonical:      s.ToolURL(cfg.ID),
		StructuredData: template.JS(ld),
		Tool:           cfg,
	})
}

// WriteIndexPage renders the root domain page linking every tool.
func (s Site) WriteIndexPage(w io.Writer, lang string) error {
	data := pageData{
		Lang:        lang,
		Title:       "Foxholm AI Image Tools",
		Description: "Free AI image tools: professional headshots, photo restoration and image upscaling.",
		ThemeColor:  ThemeColor,
		Canonical:   s.RootURL(),
	}
	for _, id := range s.Registry.IDs() {
		cfg, ok := s.Registry.Localized(id, lang)
		if !ok {
			continue
		}
		data.Links = append(data.Links, link{
			URL:         s.ToolURL(cfg.ID),
			Emoji:       cfg.Emoji,
			Title:       cfg.Title,
			Description: cfg.Description,
		})
	}
	return pageTemplate.Execute(w, data)
}

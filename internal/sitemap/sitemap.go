// Package sitemap renders the XML sitemap for crawlers and an HTML sitemap
// for people.
package sitemap

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Page is one public route.
type Page struct {
	Path       string
	ChangeFreq string
	Priority   string
}

// Pages lists the public routes in navigation order.
var Pages = []Page{
	{Path: "/", ChangeFreq: "weekly", Priority: "1.0"},
	{Path: "/projects", ChangeFreq: "weekly", Priority: "0.9"},
	{Path: "/skills", ChangeFreq: "monthly", Priority: "0.8"},
	{Path: "/about", ChangeFreq: "monthly", Priority: "0.8"},
	{Path: "/contact", ChangeFreq: "monthly", Priority: "0.7"},
}

const xmlns = "http://www.sitemaps.org/schemas/sitemap/0.9"

type urlSet struct {
	XMLName xml.Name `xml:"urlset"`
	Xmlns   string   `xml:"xmlns,attr"`
	URLs    []urlXML `xml:"url"`
}

type urlXML struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod"`
	ChangeFreq string `xml:"changefreq"`
	Priority   string `xml:"priority"`
}

// Generator renders sitemaps for a base URL.
type Generator struct {
	BaseURL string
	Title   string
	Now     func() time.Time
}

// New returns a generator for baseURL.
func New(baseURL, title string) *Generator {
	return &Generator{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Title:   title,
		Now:     time.Now,
	}
}

func (g *Generator) loc(p Page) string {
	return g.BaseURL + p.Path
}

// WriteXML writes the sitemaps.org urlset.
func (g *Generator) WriteXML(w io.Writer) error {
	lastMod := g.Now().UTC().Format(time.DateOnly)
	set := urlSet{Xmlns: xmlns}
	for _, p := range Pages {
		set.URLs = append(set.URLs, urlXML{
			Loc:        g.loc(p),
			LastMod:    lastMod,
			ChangeFreq: p.ChangeFreq,
			Priority:   p.Priority,
		})
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("sitemap.WriteXML: %w", err)
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(set); err != nil {
		return fmt.Errorf("sitemap.WriteXML: %w", err)
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return fmt.Errorf("sitemap.WriteXML: %w", err)
	}
	return nil
}

var htmlTmpl = template.Must(template.New("sitemap").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Sitemap - {{.Title}}</title>
</head>
<body>
    <h1>Sitemap - {{.Title}}</h1>
    <ul>
{{- range .Links}}
        <li><a href="{{.}}">{{.}}</a></li>
{{- end}}
    </ul>
    <p>Last updated: {{.Updated}}</p>
</body>
</html>
`))

// WriteHTML writes the human-readable sitemap.
func (g *Generator) WriteHTML(w io.Writer) error {
	links := make([]string, 0, len(Pages))
	for _, p := range Pages {
		links = append(links, g.loc(p))
	}
	err := htmlTmpl.Execute(w, struct {
		Title   string
		Links   []string
		Updated string
	}{
		Title:   g.Title,
		Links:   links,
		Updated: g.Now().Format("January 2, 2006"),
	})
	if err != nil {
		return fmt.Errorf("sitemap.WriteHTML: %w", err)
	}
	return nil
}

// WriteFiles writes sitemap.xml and sitemap.html into dir.
func (g *Generator) WriteFiles(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("sitemap.WriteFiles: %w", err)
	}
	for name, write := range map[string]func(io.Writer) error{
		"sitemap.xml":  g.WriteXML,
		"sitemap.html": g.WriteHTML,
	} {
		var buf bytes.Buffer
		if err := write(&buf); err != nil {
			return err
		}
		if err := os.WriteFile(filepath.Join(dir, name), buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("sitemap.WriteFiles: %w", err)
		}
	}
	return nil
}

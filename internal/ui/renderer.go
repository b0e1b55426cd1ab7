// Package ui renders the admin panel pages from embedded HTML templates
package ui

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aethra/catalog-admin/internal/schema"
)

//go:embed templates/*.html static/*.css
var assetsFS embed.FS

// Renderer executes the page templates
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer parses the embedded templates
func NewRenderer() (*Renderer, error) {
	tmpl, err := template.New("base").Funcs(template.FuncMap{
		"trim":       strings.TrimSpace,
		"sectionURL": SectionURL,
		"recordURL":  RecordURL,
		"isTextarea": func(t schema.InputType) bool { return t == schema.InputTextarea },
		"isSelect":   func(t schema.InputType) bool { return t == schema.InputSelect },
		"timestamp":  func(t time.Time) string { return t.UTC().Format("2006-01-02 15:04:05") },
	}).ParseFS(assetsFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// Render executes a page template into w. Nothing is written on failure.
func (r *Renderer) Render(w io.Writer, name string, data any) error {
	var b bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&b, name, data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	_, err := b.WriteTo(w)
	return err
}

// Static returns the stylesheet directory
func Static() http.FileSystem {
	sub, err := fs.Sub(assetsFS, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}

// SectionURL is the navigation target of a section
func SectionURL(s schema.Section) string {
	return "/panel/sections/" + string(s)
}

// RecordURL is the action URL of a record, e.g. /panel/records/track/7/edit
func RecordURL(kind schema.Kind, id, action string) string {
	return "/panel/records/" + url.PathEscape(string(kind)) + "/" + url.PathEscape(id) + "/" + action
}

// Package templates renders the HTML fragments patched into the editor by
// Datastar SSE responses, and the editor page itself.
package templates

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"io/fs"
)

//go:embed fragments/*.html pages/*.html
var files embed.FS

var funcMap = template.FuncMap{
	// dict builds a map from key/value pairs for passing several values to a
	// nested template.
	"dict": func(values ...any) map[string]any {
		if len(values)%2 != 0 {
			return nil
		}
		m := make(map[string]any, len(values)/2)
		for i := 0; i < len(values); i += 2 {
			key, ok := values[i].(string)
			if !ok {
				continue
			}
			m[key] = values[i+1]
		}
		return m
	},
	"km": func(meters float64) string {
		return fmt.Sprintf("%.2f km", meters/1000)
	},
	"eur": func(v float64) string {
		return fmt.Sprintf("%.2f €", v)
	},
	"json": func(v any) (template.JS, error) {
		b, err := json.Marshal(v)
		if err != nil {
			return "", err
		}
		return template.JS(b), nil
	},
	"inc": func(i int) int { return i + 1 },
	"dec": func(i int) int { return i - 1 },
}

// Renderer executes the embedded templates.
type Renderer struct {
	templates *template.Template
}

// New parses the embedded fragments and pages.
func New() (*Renderer, error) {
	tmpl, err := parse(files)
	if err != nil {
		return nil, err
	}
	return &Renderer{templates: tmpl}, nil
}

// NewFromFS parses templates from fsys, laid out like the embedded set. Used
// to develop templates without rebuilding.
func NewFromFS(fsys fs.FS) (*Renderer, error) {
	tmpl, err := parse(fsys)
	if err != nil {
		return nil, err
	}
	return &Renderer{templates: tmpl}, nil
}

func parse(fsys fs.FS) (*template.Template, error) {
	return template.New("").Funcs(funcMap).ParseFS(fsys, "fragments/*.html", "pages/*.html")
}

// Render renders a named template to a string.
func (r *Renderer) Render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := r.RenderToBuffer(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderToBuffer renders a named template to a buffer.
func (r *Renderer) RenderToBuffer(buf *bytes.Buffer, name string, data any) error {
	return r.Execute(buf, name, data)
}

// Execute renders a named template to w.
func (r *Renderer) Execute(w io.Writer, name string, data any) error {
	return r.templates.ExecuteTemplate(w, name, data)
}

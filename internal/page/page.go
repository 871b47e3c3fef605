// Package page assembles resolved publication rows into a complete
// HTML document. All user-controlled text is escaped here by
// html/template's contextual auto-escaping.
package page

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"os"

	"github.com/matsen/bibble/internal/render"
)

//go:embed templates/default.tmpl
var templateFS embed.FS

// Data is the input to a page template.
type Data struct {
	Title string
	Rows  []render.RowView
}

// Default returns the built-in publication list template.
func Default() *template.Template {
	return template.Must(template.ParseFS(templateFS, "templates/default.tmpl"))
}

// Load parses a user-supplied template file. The template receives a
// Data value and is responsible for iterating its Rows.
func Load(path string) (*template.Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading template: %w", err)
	}

	tmpl, err := template.New("page").Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("parsing template %s: %w", path, err)
	}
	return tmpl, nil
}

// Render executes the template with the given rows and writes the page
// to w.
func Render(w io.Writer, tmpl *template.Template, data Data) error {
	if err := tmpl.Execute(w, data); err != nil {
		return fmt.Errorf("rendering page: %w", err)
	}
	return nil
}

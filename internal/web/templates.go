package web

import (
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path/filepath"
	"strings"
)

// Templates manages HTML template rendering.
type Templates struct {
	templates map[string]*template.Template
}

// NewTemplates loads page templates from the given filesystem. Each page
// under pages/ is parsed together with every layout under layouts/.
func NewTemplates(templatesFS fs.FS) (*Templates, error) {
	layouts, err := fs.Glob(templatesFS, "layouts/*.html")
	if err != nil {
		return nil, fmt.Errorf("finding layouts: %w", err)
	}

	pages, err := fs.Glob(templatesFS, "pages/*.html")
	if err != nil {
		return nil, fmt.Errorf("finding pages: %w", err)
	}

	t := &Templates{templates: make(map[string]*template.Template)}

	for _, page := range pages {
		name := strings.TrimSuffix(filepath.Base(page), ".html")
		files := append([]string{page}, layouts...)

		tmpl, err := template.New(name).ParseFS(templatesFS, files...)
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", name, err)
		}
		t.templates[name] = tmpl
	}

	return t, nil
}

// Render renders a page template into the "base" layout.
func (t *Templates) Render(w io.Writer, page string, data any) error {
	tmpl, ok := t.templates[page]
	if !ok {
		return fmt.Errorf("template %q not found", page)
	}
	return tmpl.ExecuteTemplate(w, "base", data)
}

// PageData contains common data passed to all page templates.
type PageData struct {
	Title string
}

// HomePageData contains data for the home page template.
type HomePageData struct {
	PageData
	PlaylistName string
}

// SuccessPageData contains data for the success page template.
type SuccessPageData struct {
	PageData
	PlaylistName string
}

// ErrorPageData contains data for the error page template.
type ErrorPageData struct {
	PageData
	Message string
	// ShowLogin distinguishes "authorization failed, log in again" from
	// "upstream error, safe to retry".
	ShowLogin bool
}

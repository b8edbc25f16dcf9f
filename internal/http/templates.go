package http

import (
	"embed"
	"html/template"
	"path/filepath"
	"time"

	"github.com/mrlokans/librarian/internal/entities"
)

//go:embed templates/*.html
var embeddedTemplates embed.FS

var templateFuncs = template.FuncMap{
	"formatTime": func(t time.Time) string {
		return t.Local().Format("2006-01-02 15:04:05")
	},
	"isSelected": func(selected *entities.BookRecord, id uint) bool {
		return selected != nil && selected.ID == id
	},
	"authorValue": func(id uint) string {
		return uintString(id)
	},
	"add": func(a, b int) int {
		return a + b
	},
	"subtract": func(a, b int) int {
		return a - b
	},
}

// loadTemplates parses the page templates from dir, or from the binary
// when dir is empty.
func loadTemplates(dir string) (*template.Template, error) {
	tmpl := template.New("").Funcs(templateFuncs)
	if dir != "" {
		return tmpl.ParseGlob(filepath.Join(dir, "*.html"))
	}
	return tmpl.ParseFS(embeddedTemplates, "templates/*.html")
}

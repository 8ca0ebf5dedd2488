package handler

import (
	"embed"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

// Templates parses the embedded HTML pages for gin's HTML renderer.
func Templates() *template.Template {
	return template.Must(template.New("").ParseFS(templateFS, "templates/*.html"))
}

// Package web holds the server-rendered page.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"strings"
)

//go:embed templates/*.tmpl
var files embed.FS

const IndexTemplate = "index.tmpl"

// Templates parses the embedded page templates.
func Templates() (*template.Template, error) {
	return template.New("").Funcs(template.FuncMap{
		"percent":  percent,
		"imageSrc": imageSrc,
	}).ParseFS(files, "templates/*.tmpl")
}

func percent(v float64) string {
	return fmt.Sprintf("%.2f%%", v)
}

// imageSrc lets catalog images through as-is when they are web or inline image references.
// Anything else goes through html/template URL filtering.
func imageSrc(ref string) any {
	lower := strings.ToLower(ref)
	if strings.HasPrefix(lower, "https://") || strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "data:image/") {
		return template.URL(ref)
	}
	return ref
}

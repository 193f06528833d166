// Package templates holds the server-rendered pages.
package templates

import (
	"embed"
	"html/template"
)

//go:embed *.html
var files embed.FS

// Load parses every page together with the shared layout blocks.
func Load() (*template.Template, error) {
	return template.New("").Funcs(template.FuncMap{
		"fieldError": func(errors map[string]string, field string) string {
			return errors[field]
		},
	}).ParseFS(files, "*.html")
}

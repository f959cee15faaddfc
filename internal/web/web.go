// Package web holds the HTML templates rendered by the record pages.
package web

import (
	"embed"
	"html/template"
)

//go:embed templates/*.html
var files embed.FS

// Templates parses the embedded page set. Pages are addressed by file name,
// e.g. "records.html".
func Templates() *template.Template {
	return template.Must(template.New("").Funcs(Funcs()).ParseFS(files, "templates/*.html"))
}

// Funcs are the helpers available to every page.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"fieldError": func(errs map[string]string, field string) string {
			return errs[field]
		},
		"invalidClass": func(errs map[string]string, field string) string {
			if _, ok := errs[field]; ok {
				return " is-invalid"
			}
			return ""
		},
	}
}

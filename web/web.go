// Package web holds the HTML served at the guestbook root.
package web

import (
	"embed"
	"html/template"
	"time"
)

//go:embed templates/*.html
var templates embed.FS

const IndexTemplate = "index.html"

func Templates() *template.Template {
	return template.Must(template.New("").Funcs(template.FuncMap{
		"stamp": func(t time.Time) string {
			return t.Format("2006-01-02 15:04")
		},
	}).ParseFS(templates, "templates/*.html"))
}

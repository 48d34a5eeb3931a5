package render

import (
	"io"
	"text/template"
)

var markdownTemplate = template.Must(template.New("markdown").Parse(`# {{.Title}} - Slide Explanations

- Source: {{.Source}}
{{- if .Provider}}
- Model provider: {{.Provider}}
{{- end}}
- Generated: {{.Generated}}
- Pages: {{len .Pages}}

## Contents
{{range .Pages}}
- [Page {{.Number}}](#page-{{.Number}})
{{- end}}
{{range .Pages}}
---

## Page {{.Number}}
{{if .Image}}
![Page {{.Number}}]({{.Image}})
{{end}}
{{.Explanation}}
{{end}}`))

func renderMarkdown(w io.Writer, v view) error {
	return markdownTemplate.Execute(w, v)
}

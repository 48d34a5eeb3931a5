package render

import (
	"html/template"
	"io"
)

var htmlTemplate = template.Must(template.New("html").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}} - Slide Explanations</title>
<style>
body { font-family: -apple-system, "Segoe UI", Helvetica, Arial, sans-serif; max-width: 960px; margin: 0 auto; padding: 2rem; color: #222; line-height: 1.6; }
header { border-bottom: 2px solid #4a6fa5; margin-bottom: 2rem; }
nav ul { columns: 4; list-style: none; padding: 0; }
section.page { margin-bottom: 3rem; padding-bottom: 2rem; border-bottom: 1px solid #ddd; }
section.page img { max-width: 100%; border: 1px solid #ccc; box-shadow: 0 2px 6px rgba(0,0,0,.1); }
.explanation { white-space: pre-wrap; background: #f8f9fb; padding: 1rem 1.25rem; border-radius: 6px; }
.meta { color: #666; font-size: .9rem; }
</style>
</head>
<body>
<header>
<h1>{{.Title}} - Slide Explanations</h1>
<p class="meta">Source: {{.Source}}{{if .Provider}} &middot; Model provider: {{.Provider}}{{end}} &middot; Generated: {{.Generated}} &middot; Pages: {{len .Pages}}</p>
</header>
<nav>
<ul>
{{- range .Pages}}
<li><a href="#page-{{.Number}}">Page {{.Number}}</a></li>
{{- end}}
</ul>
</nav>
<main>
{{- range .Pages}}
<section class="page" id="page-{{.Number}}">
<h2>Page {{.Number}}</h2>
{{- if .Image}}
<img src="{{.Image}}" alt="Page {{.Number}}" loading="lazy">
{{- end}}
<div class="explanation">{{.Explanation}}</div>
</section>
{{- end}}
</main>
</body>
</html>
`))

func renderHTML(w io.Writer, v view) error {
	return htmlTemplate.Execute(w, v)
}

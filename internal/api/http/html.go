package http

import (
	"html/template"
	"net/http"
)

// errorPage holds the fields rendered into the redirect endpoint's HTML
// error pages.
type errorPage struct {
	Title     string
	Heading   string
	Detail    string
	ShortCode string
}

var errorPageTmpl = template.Must(template.New("errorPage").Parse(`<!DOCTYPE html>
<html>
  <head>
    <title>{{.Title}}</title>
    <style>
      body { font-family: system-ui; display: flex; align-items: center; justify-content: center; min-height: 100vh; margin: 0; background: #f3f4f6; }
      .error { text-align: center; padding: 2rem; background: white; border-radius: 1rem; box-shadow: 0 10px 25px rgba(0,0,0,0.1); max-width: 500px; }
      h1 { color: #dc2626; margin: 0 0 1rem; }
      p { color: #6b7280; margin: 0 0 0.5rem; line-height: 1.6; }
      code { background: #f3f4f6; padding: 0.25rem 0.5rem; border-radius: 0.25rem; font-size: 0.875rem; }
      a { color: #7c3aed; text-decoration: none; font-weight: 500; }
    </style>
  </head>
  <body>
    <div class="error">
      <h1>{{.Heading}}</h1>
      <p>{{.Detail}}</p>
      {{- if .ShortCode}}
      <p><code>{{.ShortCode}}</code></p>
      {{- end}}
      <p><a href="/">Go to Homepage</a></p>
    </div>
  </body>
</html>
`))

func renderErrorPage(w http.ResponseWriter, statusCode int, p errorPage) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)

	// Template execution over a fixed struct can't fail once parsed.
	_ = errorPageTmpl.Execute(w, p)
}

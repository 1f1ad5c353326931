package indexer

import (
	"bytes"
	"html/template"
)

type link struct {
	Href  string
	Text  string
	Date  string
	Today bool
}

type navMonth struct {
	Key   string // YYYY-MM
	Name  string
	Links []link
}

type navYear struct {
	Year   string
	Months []navMonth
}

var funcs = template.FuncMap{
	// html/template drops comments written in template text, so markers are
	// emitted as trusted values.
	"openRegion":  func(name string) template.HTML { return template.HTML(BeginMarker(name)) },
	"closeRegion": func(name string) template.HTML { return template.HTML(EndMarker(name)) },
}

var (
	listingTmpl = template.Must(template.New("listing").Parse(
		`{{range .Links}}<li><a href="{{.Href}}">{{.Text}}</a></li>
{{else}}<li>{{.Empty}}</li>
{{end}}`))

	rootNavTmpl = template.Must(template.New("nav").Parse(
		`<div id="nav-container">
{{range .}}  <div class="nav-section" data-year="{{.Year}}">
    <div class="nav-section-title">{{.Year}}</div>
    <div class="nav-items">
{{range .Months}}      <div class="nav-section" data-month="{{.Key}}">
        <div class="nav-section-title">{{.Name}}</div>
        <div class="nav-items">
{{range .Links}}          <a class="nav-item" href="{{.Href}}" data-date="{{.Date}}">{{.Text}}</a>
{{end}}        </div>
      </div>
{{end}}    </div>
  </div>
{{end}}</div>
`))

	flatNavTmpl = template.Must(template.New("flat").Parse(
		`{{range .}}{{range .Months}}<h4>{{.Name}}</h4>
{{range .Links}}<a href="{{.Href}}">{{.Text}}</a>
{{end}}{{end}}{{end}}`))

	recentTmpl = template.Must(template.New("recent").Parse(
		`{{range .}}<a class="lesson-link{{if .Today}} today{{end}}" href="{{.Href}}">{{.Text}}</a>
{{end}}`))

	scaffoldTmpl = template.Must(template.New("scaffold").Funcs(funcs).Parse(`<!DOCTYPE html>
<html><head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>{{.Title}} Lessons</title>
  <style>body{font-family:-apple-system,BlinkMacSystemFont,'Segoe UI',Roboto,sans-serif;max-width:760px;margin:0 auto;padding:22px;background:#f5f5f5} .card{background:#fff;padding:18px;border-radius:12px;box-shadow:0 2px 8px rgba(0,0,0,0.08)} a{color:#667eea;text-decoration:none}</style>
</head><body>
  <div class="card">
    <h1>{{.Title}}</h1>
    <p><a href="{{.Home}}">← Home</a></p>
    <ul>
{{openRegion "listing"}}
{{closeRegion "listing"}}
    </ul>
    <nav>
{{openRegion "nav"}}
{{closeRegion "nav"}}
    </nav>
  </div>
</body></html>
`))
)

func execute(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func renderListing(links []link, empty string) (string, error) {
	return execute(listingTmpl, struct {
		Links []link
		Empty string
	}{links, empty})
}

func renderRootNav(years []navYear) (string, error) { return execute(rootNavTmpl, years) }

func renderFlatNav(years []navYear) (string, error) { return execute(flatNavTmpl, years) }

func renderRecent(links []link) (string, error) { return execute(recentTmpl, links) }

func renderScaffold(title, home string) (string, error) {
	return execute(scaffoldTmpl, struct{ Title, Home string }{title, home})
}

package explorer

import (
	"fmt"
	"html/template"
	"io"
	"strings"
	"unicode/utf8"

	"report_explorer/internal/domain"
)

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#039;",
)

// EscapeHTML escapes the five HTML-significant characters of s.
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

// PageData is everything the exported HTML page shows.
type PageData struct {
	Query     string
	Reviews   []Review
	Favorites []domain.Favorite
	Chart     Chart
}

var pageTemplate = template.Must(template.New("page").Funcs(template.FuncMap{
	"chartSVG": ChartSVG,
	"deref": func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	},
}).Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Report Explorer</title>
<style>
body { font-family: sans-serif; margin: 2rem; }
.card { border: 1px solid #ddd; border-radius: 8px; padding: .75rem 1rem; margin: .5rem 0; }
.small { color: #555; font-size: .9rem; }
.row { display: flex; gap: 1rem; align-items: center; }
</style>
</head>
<body data-page="explore">
<h1>Report Explorer</h1>
{{with .Query}}<p class="small">Filter: {{.}}</p>{{end}}
<section id="results">
{{template "reviews" .Reviews}}
</section>
<section id="chart">
{{chartSVG .Chart}}
</section>
<h2>Favorites</h2>
<section id="favList">
{{template "favorites" .Favorites}}
</section>
</body>
</html>
{{define "reviews"}}{{if not .}}<p>No results.</p>{{else}}{{range .}}
<div class="card">
  <h3>{{.DisplayTitle}}</h3>
  <p class="small">Score: <b>{{.DisplayScore}}</b></p>
  <div class="row">
    <a href="{{with .Link}}{{.}}{{else}}#{{end}}" target="_blank" rel="noreferrer">Open Video</a>
    <button data-save="{{.ID}}">Save</button>
  </div>
</div>{{end}}{{end}}{{end}}
{{define "favorites"}}{{if not .}}<p>No favorites yet.</p>{{else}}{{range .}}
<div class="card">
  <h3>{{.Title}}</h3>
  <p class="small">Score: <b>{{with deref .Score}}{{.}}{{else}}N/A{{end}}</b></p>
  {{with deref .URL}}<a href="{{.}}" target="_blank" rel="noreferrer">Open</a>{{end}}
</div>{{end}}{{end}}{{end}}
`))

// RenderPage writes a standalone HTML page of review cards, the score chart
// and favorite cards.
func RenderPage(w io.Writer, data PageData) error {
	if err := pageTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	return nil
}

// RenderReviews writes only the review cards.
func RenderReviews(w io.Writer, reviews []Review) error {
	return pageTemplate.ExecuteTemplate(w, "reviews", reviews)
}

// RenderFavorites writes only the favorite cards.
func RenderFavorites(w io.Writer, favorites []domain.Favorite) error {
	return pageTemplate.ExecuteTemplate(w, "favorites", favorites)
}

const (
	svgWidth     = 640
	svgHeight    = 280
	svgPadLeft   = 32
	svgPadBottom = 48
	svgPadTop    = 24
	labelRunes   = 14
)

// ChartSVG draws c as an inline SVG bar chart with a 0..Max value axis.
func ChartSVG(c Chart) template.HTML {
	var b strings.Builder

	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" role="img" aria-label="Review Scores">`,
		svgWidth, svgHeight)
	b.WriteString(`<title>Review Scores</title>`)

	plotHeight := svgHeight - svgPadTop - svgPadBottom
	baseline := svgHeight - svgPadBottom
	fmt.Fprintf(&b, `<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="#999"/>`,
		svgPadLeft, baseline, svgWidth, baseline)
	fmt.Fprintf(&b, `<text x="4" y="%d" font-size="10">0</text>`, baseline)
	fmt.Fprintf(&b, `<text x="4" y="%d" font-size="10">%d</text>`, svgPadTop+4, c.Max)

	if len(c.Bars) > 0 && c.Max > 0 {
		slot := (svgWidth - svgPadLeft) / len(c.Bars)
		barWidth := slot * 2 / 3
		for i, bar := range c.Bars {
			h := min(max(int(float64(bar.Value)/float64(c.Max)*float64(plotHeight)), 0), plotHeight)
			x := svgPadLeft + i*slot + (slot-barWidth)/2
			fmt.Fprintf(&b, `<rect x="%d" y="%d" width="%d" height="%d" fill="#4e79a7"><title>%s: %d</title></rect>`,
				x, baseline-h, barWidth, h, EscapeHTML(bar.Label), bar.Value)
			fmt.Fprintf(&b, `<text x="%d" y="%d" font-size="10" text-anchor="middle">%s</text>`,
				x+barWidth/2, baseline+14, EscapeHTML(truncateLabel(bar.Label)))
		}
	}

	b.WriteString(`</svg>`)
	return template.HTML(b.String())
}

func truncateLabel(s string) string {
	if utf8.RuneCountInString(s) <= labelRunes {
		return s
	}
	r := []rune(s)
	return string(r[:labelRunes-1]) + "…"
}

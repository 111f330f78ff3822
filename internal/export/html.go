package export

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/lepinkainen/reelbox/internal/movie"
)

var pageTemplate = template.Must(template.New("movies").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Movie list</title>
<style>
body { font-family: sans-serif; margin: 2em; color: #222; }
.movie { display: flex; gap: 1.5em; margin-bottom: 2em; page-break-inside: avoid; }
.movie img { width: 160px; height: auto; }
.movie h2 { margin: 0 0 .3em 0; }
.meta { color: #666; font-size: .9em; }
</style>
</head>
<body>
<h1>Movie list</h1>
{{- if not .}}
<p>No movies yet.</p>
{{- end}}
{{- range .}}
<div class="movie">
{{- if .Poster}}
<img src="{{.Poster}}" alt="{{.Label}}">
{{- end}}
<div>
<h2>{{.Label}}</h2>
{{- if .Meta}}
<p class="meta">{{.Meta}}</p>
{{- end}}
{{- if .Plot}}
<p>{{.Plot}}</p>
{{- end}}
{{- if .IMDbURL}}
<p><a href="{{.IMDbURL}}">View on IMDb</a></p>
{{- end}}
</div>
</div>
{{- end}}
</body>
</html>
`))

type htmlMovie struct {
	Label   string
	Poster  string
	Meta    string
	Plot    string
	IMDbURL string
}

// RenderHTML renders the list as a standalone HTML page, newest first.
func RenderHTML(movies movie.List) (string, error) {
	items := make([]htmlMovie, 0, len(movies))
	for _, m := range movies {
		item := htmlMovie{Label: m.Label(), Poster: m.Poster()}

		var meta []string
		for _, field := range detailFields {
			if value := m.String(field.key); value != "" && value != "N/A" {
				meta = append(meta, field.label+": "+value)
			}
		}
		item.Meta = strings.Join(meta, " · ")

		if plot := m.Plot(); plot != "N/A" {
			item.Plot = plot
		}
		if id := m.IMDbID(); id != "" {
			item.IMDbURL = "https://www.imdb.com/title/" + id + "/"
		}
		items = append(items, item)
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, items); err != nil {
		return "", fmt.Errorf("failed to render HTML: %w", err)
	}
	return buf.String(), nil
}

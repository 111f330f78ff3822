// Package export writes the movie list to disk as JSON, YAML, a markdown
// note, an HTML page or a PDF printed by headless Chrome.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/lepinkainen/reelbox/internal/fileutil"
	"github.com/lepinkainen/reelbox/internal/movie"
)

type Format string

const (
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
	FormatPDF      Format = "pdf"
)

// Formats lists the supported formats in help order.
var Formats = []Format{FormatJSON, FormatYAML, FormatMarkdown, FormatHTML, FormatPDF}

// ParseFormat accepts a format name or a common alias (yml, md).
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "html", "htm":
		return FormatHTML, nil
	case "pdf":
		return FormatPDF, nil
	}
	return "", fmt.Errorf("unsupported export format %q (valid formats: json, yaml, markdown, html, pdf)", name)
}

// Options controls an export.
type Options struct {
	Format    Format
	Path      string
	Overwrite bool

	// Posters downloads poster images next to a markdown export and links
	// them locally instead of by URL.
	Posters     bool
	PosterWidth int
	HTTPClient  *http.Client

	// PDFTimeout bounds the headless Chrome session; 0 means one minute.
	PDFTimeout time.Duration
}

// Write exports movies to opts.Path. It returns false without error when
// the file exists and Overwrite is not set.
func Write(ctx context.Context, movies movie.List, opts Options) (bool, error) {
	if opts.Path == "" {
		return false, fmt.Errorf("export path is required")
	}
	movies = movies.Copy()

	var (
		written bool
		err     error
	)
	switch opts.Format {
	case FormatJSON:
		written, err = fileutil.WriteJSONFile(movies, opts.Path, opts.Overwrite)
	case FormatYAML:
		written, err = fileutil.WriteYAMLFile(movies, opts.Path, opts.Overwrite)
	case FormatMarkdown:
		if fileutil.FileExists(opts.Path) && !opts.Overwrite {
			slog.Info("Export file already exists, skipping", "path", opts.Path)
			return false, nil
		}
		var posters map[int]string
		if opts.Posters {
			posters = downloadPosters(ctx, movies, opts)
		}
		doc := RenderMarkdown(movies, posters)
		written, err = fileutil.WriteFileWithOverwrite(opts.Path, []byte(doc), 0644, opts.Overwrite)
	case FormatHTML, FormatPDF:
		if fileutil.FileExists(opts.Path) && !opts.Overwrite {
			slog.Info("Export file already exists, skipping", "path", opts.Path)
			return false, nil
		}
		var data []byte
		data, err = renderPage(ctx, movies, opts)
		if err == nil {
			written, err = fileutil.WriteFileWithOverwrite(opts.Path, data, 0644, opts.Overwrite)
		}
	default:
		return false, fmt.Errorf("unsupported export format %q", opts.Format)
	}
	if err != nil {
		return false, fmt.Errorf("export %s: %w", opts.Format, err)
	}
	if written {
		slog.Info("Exported movies", "format", opts.Format, "path", opts.Path, "movies", len(movies))
	}
	return written, nil
}

func renderPage(ctx context.Context, movies movie.List, opts Options) ([]byte, error) {
	html, err := RenderHTML(movies)
	if err != nil {
		return nil, err
	}
	if opts.Format == FormatHTML {
		return []byte(html), nil
	}
	return RenderPDF(ctx, html, opts.PDFTimeout)
}

// downloadPosters fetches posters for the markdown export. Failures fall
// back to the remote URL.
func downloadPosters(ctx context.Context, movies movie.List, opts Options) map[int]string {
	local := make(map[int]string)
	outputDir := filepath.Dir(opts.Path)
	for i, m := range movies {
		if m.Poster() == "" {
			continue
		}
		result, err := fileutil.DownloadPoster(ctx, fileutil.PosterOptions{
			URL:       m.Poster(),
			OutputDir: outputDir,
			Filename:  fileutil.PosterFilename(m.Label()),
			MaxWidth:  opts.PosterWidth,
			Overwrite: opts.Overwrite,
			Client:    opts.HTTPClient,
		})
		if err != nil {
			slog.Warn("Failed to download poster", "title", m.Title(), "error", err)
			continue
		}
		if result != nil {
			local[i] = filepath.ToSlash(result.RelativePath)
		}
	}
	return local
}

var detailFields = []struct {
	key   string
	label string
}{
	{"Director", "Director"},
	{"Actors", "Actors"},
	{"Genre", "Genre"},
	{"Runtime", "Runtime"},
	{"Rated", "Rated"},
	{"imdbRating", "IMDb rating"},
}

// RenderMarkdown renders the list as one markdown note, newest first.
// posters maps list positions to local image paths and may be nil.
func RenderMarkdown(movies movie.List, posters map[int]string) string {
	mb := fileutil.NewMarkdownBuilder().
		AddField("title", "Movie list").
		AddField("count", len(movies)).
		AddTags("movies")

	if len(movies) == 0 {
		mb.AddParagraph("_No movies yet._")
		return mb.Build()
	}

	for i, m := range movies {
		mb.AddHeading(2, m.Label())

		image := m.Poster()
		if path, ok := posters[i]; ok {
			image = path
		}
		mb.AddImage(image)
		if plot := m.Plot(); plot != "N/A" {
			mb.AddParagraph(plot)
		}

		var details []string
		for _, field := range detailFields {
			if value := m.String(field.key); value != "" && value != "N/A" {
				details = append(details, field.label+": "+value)
			}
		}
		if tag := fileutil.DecadeTag(m.Year()); tag != "" {
			details = append(details, "Decade: "+strings.TrimPrefix(tag, "year/"))
		}
		mb.AddCallout("info", "Details", strings.Join(details, "\n"))

		if id := m.IMDbID(); id != "" {
			mb.AddExternalLink("View on IMDb", "https://www.imdb.com/title/"+id+"/")
		}
	}
	return mb.Build()
}

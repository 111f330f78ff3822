package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/lepinkainen/reelbox/internal/export"
)

// ExportCmd represents the export command
type ExportCmd struct {
	Format      string        `short:"F" help:"Output format: json, yaml, markdown, html or pdf" default:"json"`
	Output      string        `short:"o" help:"Output file path" required:""`
	Overwrite   bool          `help:"Overwrite the output file if it exists"`
	Snapshot    int           `help:"Snapshot index to export instead of the latest one" default:"-1"`
	Posters     bool          `help:"Download posters next to a markdown export"`
	PosterWidth int           `help:"Maximum width of downloaded posters" default:"300"`
	PDFTimeout  time.Duration `name:"pdf-timeout" help:"Time limit for rendering a PDF with headless Chrome" default:"1m"`
}

func (e *ExportCmd) Run() error {
	format, err := export.ParseFormat(e.Format)
	if err != nil {
		return err
	}

	history, err := loadHistory()
	if err != nil {
		return err
	}

	movies := history.Latest()
	if e.Snapshot >= 0 {
		if e.Snapshot >= len(history) {
			return fmt.Errorf("snapshot %d does not exist (%d stored)", e.Snapshot, len(history))
		}
		movies = history[e.Snapshot].Copy()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	written, err := export.Write(ctx, movies, export.Options{
		Format:      format,
		Path:        e.Output,
		Overwrite:   e.Overwrite,
		Posters:     e.Posters,
		PosterWidth: e.PosterWidth,
		PDFTimeout:  e.PDFTimeout,
	})
	if err != nil {
		return err
	}
	if !written {
		_, _ = fmt.Fprintf(stdout, "%s already exists, use --overwrite to replace it\n", e.Output)
		return nil
	}
	_, _ = fmt.Fprintf(stdout, "Exported %d movies to %s\n", len(movies), e.Output)
	return nil
}

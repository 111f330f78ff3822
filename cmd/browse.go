package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/viper"

	"github.com/lepinkainen/reelbox/internal/movie"
	"github.com/lepinkainen/reelbox/internal/tui"
)

var runUI = func(c tui.Controller) error { return tui.Run(c) }

// BrowseCmd represents the interactive browser command
type BrowseCmd struct {
	Layout         string `help:"Initial layout (inline, grid, list)" default:"inline"`
	ResetOnCorrupt bool   `help:"Discard a corrupt stored history and seed a fresh list"`
	LogFile        string `help:"Where to write logs while the UI is open (defaults to log.file)"`
}

func (b *BrowseCmd) Run() error {
	logFile := b.LogFile
	if logFile == "" {
		logFile = viper.GetString("log.file")
	}
	restore, err := logToFile(logFile, logLevel)
	if err != nil {
		return err
	}
	defer restore()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	br, vp, err := startBrowser(ctx, b.ResetOnCorrupt)
	if err != nil {
		return err
	}
	defer vp.Close()
	defer br.Close()

	if b.Layout != "" {
		br.SetLayout(b.Layout)
	}
	return runUI(br)
}

// SearchCmd represents the one-shot search command
type SearchCmd struct {
	Title          string `arg:"" help:"Movie title to look up"`
	Year           string `short:"y" help:"Release year to narrow the lookup"`
	ResetOnCorrupt bool   `help:"Discard a corrupt stored history and seed a fresh list"`
}

func (s *SearchCmd) Run() error {
	if strings.TrimSpace(s.Title) == "" {
		return fmt.Errorf("title must not be blank")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	br, vp, err := startBrowser(ctx, s.ResetOnCorrupt)
	if err != nil {
		return err
	}
	defer vp.Close()
	defer br.Close()

	// let any seeding finish so the new movie lands on top
	br.Wait()
	before := br.State().Added

	br.Search(s.Title, s.Year)
	br.Wait()

	view := br.State()
	if view.Added == before {
		if view.LastError != nil {
			return fmt.Errorf("search for %q failed: %w", s.Title, view.LastError)
		}
		return fmt.Errorf("no movie found for %q", s.Title)
	}

	found := view.Movies[0]
	slog.Info("Movie added", "title", found.Title(), "year", found.Year(), "movies", len(view.Movies))
	printMovie(found)
	return nil
}

// ListCmd represents the list command
type ListCmd struct {
	JSON bool `help:"Print the list as JSON"`
}

func (l *ListCmd) Run() error {
	history, err := loadHistory()
	if err != nil {
		return err
	}
	movies := history.Latest()

	if l.JSON {
		data, err := json.MarshalIndent(movies, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		_, _ = fmt.Fprintln(stdout, string(data))
		return nil
	}

	if len(movies) == 0 {
		_, _ = fmt.Fprintln(stdout, "No movies stored.")
		return nil
	}
	for i, m := range movies {
		_, _ = fmt.Fprintf(stdout, "%3d. %s\n", i+1, m.Label())
	}
	return nil
}

// HistoryCmd represents the history command
type HistoryCmd struct{}

func (h *HistoryCmd) Run() error {
	history, err := loadHistory()
	if err != nil {
		return err
	}
	if len(history) == 0 {
		_, _ = fmt.Fprintln(stdout, "No snapshots stored.")
		return nil
	}
	for i, snapshot := range history {
		newest := "-"
		if len(snapshot) > 0 {
			newest = snapshot[0].Label()
		}
		_, _ = fmt.Fprintf(stdout, "#%d\t%d movies\tnewest: %s\n", i, len(snapshot), newest)
	}
	return nil
}

// DedupeListCmd represents the dedupe command
type DedupeListCmd struct{}

func (d *DedupeListCmd) Run() error {
	br, vp, err := startBrowser(context.Background(), false)
	if err != nil {
		return err
	}
	defer vp.Close()
	defer br.Close()

	br.Wait()
	removed := br.Dedupe()
	_, _ = fmt.Fprintf(stdout, "Removed %d duplicate movies, %d left.\n", removed, len(br.State().Movies))
	return nil
}

func printMovie(m movie.Movie) {
	_, _ = fmt.Fprintln(stdout, m.Label())
	for _, key := range []string{"Director", "Genre", "Runtime", "imdbRating"} {
		if v := m.String(key); v != "" && v != "N/A" {
			_, _ = fmt.Fprintf(stdout, "  %s: %s\n", key, v)
		}
	}
	if plot := m.Plot(); plot != "" && plot != "N/A" {
		_, _ = fmt.Fprintf(stdout, "  %s\n", plot)
	}
}

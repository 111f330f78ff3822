package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/lepinkainen/reelbox/internal/browser"
	"github.com/lepinkainen/reelbox/internal/cache"
	"github.com/lepinkainen/reelbox/internal/config"
	"github.com/lepinkainen/reelbox/internal/errors"
	"github.com/lepinkainen/reelbox/internal/movie"
	"github.com/lepinkainen/reelbox/internal/omdb"
	"github.com/lepinkainen/reelbox/internal/storage"
	"github.com/lepinkainen/reelbox/internal/viewport"
)

// Seams replaced in tests.
var (
	stdout io.Writer = os.Stdout

	newFetcher = func() (browser.Fetcher, error) {
		return omdb.NewClientFromConfig(omdb.WithCache(config.UseCache))
	}

	openStorage = func() (*storage.Adapter, error) {
		db, err := cache.GetGlobalCache()
		if err != nil {
			return nil, fmt.Errorf("failed to open storage database: %w", err)
		}
		return storage.NewAdapter(storage.NewSQLiteSubstrate(db)), nil
	}

	browserOptions = browser.OptionsFromConfig
)

// startBrowser wires storage, the OMDb client and a viewport into a started
// browser. With resetOnCorrupt an undecodable history is discarded and the
// list is seeded again instead of failing.
func startBrowser(ctx context.Context, resetOnCorrupt bool) (*browser.Browser, *viewport.State, error) {
	fetcher, err := newFetcher()
	if err != nil {
		return nil, nil, err
	}
	store, err := openStorage()
	if err != nil {
		return nil, nil, err
	}

	vp := viewport.New(viewport.DefaultWidth)
	opts := browserOptions()
	deps := browser.Deps{Fetcher: fetcher, Storage: store, Viewport: vp}

	b := browser.New(ctx, deps, opts)
	err = b.Start()
	if err != nil && errors.IsCorruptHistoryError(err) && resetOnCorrupt {
		slog.Warn("Stored movie history is corrupt, resetting", "key", opts.StorageKey, "error", err)
		b.Close()
		store.Remove(opts.StorageKey)
		b = browser.New(ctx, deps, opts)
		err = b.Start()
	}
	if err != nil {
		b.Close()
		vp.Close()
		return nil, nil, err
	}
	return b, vp, nil
}

// loadHistory reads the stored snapshot sequence without starting a browser.
func loadHistory() (movie.History, error) {
	store, err := openStorage()
	if err != nil {
		return nil, err
	}
	raw := store.Load(config.StorageKey)
	if raw == "" {
		return movie.History{}, nil
	}
	history, err := movie.DecodeHistory(raw)
	if err != nil {
		return nil, errors.NewCorruptHistoryError(config.StorageKey, err)
	}
	return history, nil
}

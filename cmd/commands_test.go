package cmd

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/stretchr/testify/require"

	"github.com/lepinkainen/reelbox/internal/browser"
	"github.com/lepinkainen/reelbox/internal/cache"
	"github.com/lepinkainen/reelbox/internal/config"
	"github.com/lepinkainen/reelbox/internal/errors"
	"github.com/lepinkainen/reelbox/internal/movie"
	"github.com/lepinkainen/reelbox/internal/testutil"
	"github.com/lepinkainen/reelbox/internal/tui"
)

var heat = map[string]any{
	"Title":    "Heat",
	"Year":     "1995",
	"Director": "Michael Mann",
	"Plot":     "A group of professional bank robbers start to feel the heat.",
	"imdbID":   "tt0113277",
	"Response": "True",
}

func setupCommandEnv(t *testing.T, movies ...map[string]any) (*testutil.OMDBServer, *bytes.Buffer, *testutil.TestEnv) {
	t.Helper()

	resetCmdState(t)
	env := testutil.NewTestEnv(t)
	testutil.SetupTestCache(t, env)
	require.NoError(t, cache.ResetGlobalCache())
	t.Cleanup(func() { _ = cache.ResetGlobalCache() })

	server := testutil.NewOMDBServer(t, movies...)
	config.OMDBBaseURL = server.URL

	var out bytes.Buffer
	origOut := stdout
	stdout = &out
	t.Cleanup(func() { stdout = origOut })

	return server, &out, env
}

func storeRaw(t *testing.T, value string) {
	t.Helper()
	store, err := openStorage()
	require.NoError(t, err)
	store.Save(config.StorageKey, value)
}

func storeHistory(t *testing.T, history movie.History) {
	t.Helper()
	raw, err := history.Encode()
	require.NoError(t, err)
	storeRaw(t, raw)
}

func storedHistory(t *testing.T) movie.History {
	t.Helper()
	history, err := loadHistory()
	require.NoError(t, err)
	return history
}

func TestSearchCmd_AddsMovie(t *testing.T) {
	server, out, _ := setupCommandEnv(t, heat)
	storeRaw(t, "[]")

	err := (&SearchCmd{Title: "Heat", Year: "1995"}).Run()
	assert.NoError(t, err)

	assert.Contains(t, out.String(), "Heat (1995)")
	assert.Contains(t, out.String(), "Director: Michael Mann")

	requests := server.Requests()
	assert.Equal(t, 1, len(requests))
	assert.Equal(t, "1995", requests[0].Get("y"))
	assert.Equal(t, "test-omdb-key", requests[0].Get("apikey"))

	history := storedHistory(t)
	assert.Equal(t, 1, len(history))
	assert.Equal(t, []string{"Heat"}, history[0].Titles())
}

func TestSearchCmd_NotFound(t *testing.T) {
	_, _, _ = setupCommandEnv(t)
	storeRaw(t, "[]")

	err := (&SearchCmd{Title: "Nonexistent Film"}).Run()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), `no movie found for "Nonexistent Film"`)
	assert.Equal(t, 0, len(storedHistory(t)))
}

func TestSearchCmd_BlankTitle(t *testing.T) {
	_, _, _ = setupCommandEnv(t)

	err := (&SearchCmd{Title: "   "}).Run()
	assert.Error(t, err)
}

func TestSearchCmd_SeedsEmptyStorage(t *testing.T) {
	var payloads []map[string]any
	for _, title := range movie.Catalog {
		payloads = append(payloads, map[string]any{"Title": title, "Year": "2000", "Response": "True"})
	}
	server, _, _ := setupCommandEnv(t, append(payloads, heat)...)
	// a seeded "Heat" must not satisfy the search from cache
	config.UseCache = false

	err := (&SearchCmd{Title: "Heat"}).Run()
	assert.NoError(t, err)

	assert.Equal(t, 9, len(server.Requests()))
	latest := storedHistory(t).Latest()
	assert.Equal(t, 9, len(latest))
	assert.Equal(t, "Heat", latest[0].Title())
}

func TestSearchCmd_CorruptHistory(t *testing.T) {
	_, _, _ = setupCommandEnv(t, heat)
	storeRaw(t, "{not json")

	err := (&SearchCmd{Title: "Heat"}).Run()
	assert.Error(t, err)
	assert.True(t, errors.IsCorruptHistoryError(err))

	browserOptions = func() browser.Options {
		opts := browser.OptionsFromConfig()
		opts.Catalog = []string{}
		return opts
	}
	t.Cleanup(func() { browserOptions = browser.OptionsFromConfig })

	err = (&SearchCmd{Title: "Heat", ResetOnCorrupt: true}).Run()
	assert.NoError(t, err)
	assert.Equal(t, []string{"Heat"}, storedHistory(t).Latest().Titles())
}

func TestSearchCmd_MissingAPIKey(t *testing.T) {
	_, _, _ = setupCommandEnv(t, heat)
	config.OMDBAPIKey = ""

	err := (&SearchCmd{Title: "Heat"}).Run()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "OMDB API key not found")
}

func TestListCmd(t *testing.T) {
	_, out, _ := setupCommandEnv(t)
	storeHistory(t, movie.History{
		{movie.Movie(heat)},
		{movie.Movie{"Title": "Rocky", "Year": "1976"}, movie.Movie(heat)},
	})

	assert.NoError(t, (&ListCmd{}).Run())
	assert.Equal(t, "  1. Rocky (1976)\n  2. Heat (1995)\n", out.String())

	out.Reset()
	assert.NoError(t, (&ListCmd{JSON: true}).Run())
	var decoded []map[string]any
	assert.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	assert.Equal(t, 2, len(decoded))
	assert.Equal(t, "Rocky", decoded[0]["Title"])
}

func TestListCmd_Empty(t *testing.T) {
	_, out, _ := setupCommandEnv(t)

	assert.NoError(t, (&ListCmd{}).Run())
	assert.Equal(t, "No movies stored.\n", out.String())
}

func TestHistoryCmd(t *testing.T) {
	_, out, _ := setupCommandEnv(t)

	assert.NoError(t, (&HistoryCmd{}).Run())
	assert.Equal(t, "No snapshots stored.\n", out.String())

	out.Reset()
	storeHistory(t, movie.History{
		{},
		{movie.Movie(heat)},
	})
	assert.NoError(t, (&HistoryCmd{}).Run())
	assert.Equal(t, "#0\t0 movies\tnewest: -\n#1\t1 movies\tnewest: Heat (1995)\n", out.String())
}

func TestHistoryCmd_Corrupt(t *testing.T) {
	_, _, _ = setupCommandEnv(t)
	storeRaw(t, "nope")

	err := (&HistoryCmd{}).Run()
	assert.True(t, errors.IsCorruptHistoryError(err))
}

func TestExportCmd(t *testing.T) {
	_, out, env := setupCommandEnv(t)
	storeHistory(t, movie.History{
		{movie.Movie(heat)},
		{movie.Movie{"Title": "Rocky", "Year": "1976"}, movie.Movie(heat)},
	})

	path := filepath.Join(env.RootDir(), "movies.json")
	assert.NoError(t, (&ExportCmd{Format: "json", Output: path, Snapshot: -1}).Run())
	assert.Contains(t, out.String(), "Exported 2 movies")

	var decoded []map[string]any
	assert.NoError(t, json.Unmarshal([]byte(env.ReadFileString("movies.json")), &decoded))
	assert.Equal(t, "Rocky", decoded[0]["Title"])

	out.Reset()
	assert.NoError(t, (&ExportCmd{Format: "json", Output: path, Snapshot: -1}).Run())
	assert.Contains(t, out.String(), "already exists")

	mdPath := filepath.Join(env.RootDir(), "first.md")
	assert.NoError(t, (&ExportCmd{Format: "md", Output: mdPath, Snapshot: 0}).Run())
	doc := env.ReadFileString("first.md")
	assert.Contains(t, doc, "## Heat (1995)")
	assert.False(t, strings.Contains(doc, "Rocky"))
}

func TestExportCmd_Errors(t *testing.T) {
	_, _, env := setupCommandEnv(t)
	storeHistory(t, movie.History{{movie.Movie(heat)}})

	err := (&ExportCmd{Format: "csv", Output: env.Path("x.csv"), Snapshot: -1}).Run()
	assert.Error(t, err)

	err = (&ExportCmd{Format: "json", Output: env.Path("x.json"), Snapshot: 5}).Run()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "snapshot 5 does not exist")
}

func TestStorageCommands(t *testing.T) {
	_, out, _ := setupCommandEnv(t)

	assert.NoError(t, (&StorageSetCmd{Key: "b", Value: "2"}).Run())
	assert.NoError(t, (&StorageSetCmd{Key: "a", Value: "1"}).Run())

	assert.NoError(t, (&StorageGetCmd{Key: "a"}).Run())
	assert.Equal(t, "1\n", out.String())

	out.Reset()
	assert.NoError(t, (&StorageListCmd{}).Run())
	assert.Equal(t, "a\nb\n", out.String())

	assert.NoError(t, (&StorageRemoveCmd{Key: "a"}).Run())
	assert.Error(t, (&StorageGetCmd{Key: "a"}).Run())

	assert.Error(t, (&StorageClearCmd{}).Run())
	assert.NoError(t, (&StorageClearCmd{Force: true}).Run())

	out.Reset()
	assert.NoError(t, (&StorageListCmd{}).Run())
	assert.Equal(t, "", out.String())
}

func TestDedupeListCmd(t *testing.T) {
	_, out, _ := setupCommandEnv(t)
	storeHistory(t, movie.History{{movie.Movie(heat), movie.Movie{"Title": "Rocky", "Year": "1976"}, movie.Movie(heat)}})

	assert.NoError(t, (&DedupeListCmd{}).Run())
	assert.Equal(t, "Removed 1 duplicate movies, 2 left.\n", out.String())

	history := storedHistory(t)
	assert.Equal(t, 2, len(history))
	assert.Equal(t, []string{"Heat", "Rocky"}, history.Latest().Titles())
}

func TestBrowseCmd(t *testing.T) {
	_, _, env := setupCommandEnv(t)
	storeHistory(t, movie.History{{movie.Movie(heat)}})

	var seen browser.View
	origUI := runUI
	runUI = func(c tui.Controller) error {
		seen = c.State()
		return nil
	}
	t.Cleanup(func() { runUI = origUI })

	logPath := env.Path("ui.log")
	assert.NoError(t, (&BrowseCmd{Layout: "grid", LogFile: logPath}).Run())

	assert.Equal(t, "grid", seen.Layout)
	assert.Equal(t, []string{"Heat"}, seen.Movies.Titles())
	assert.Equal(t, browser.PhaseIdle, seen.Phase)
	assert.True(t, env.FileExists("ui.log"))
	assert.Contains(t, env.ReadFileString("ui.log"), "Restored movies from storage")
}

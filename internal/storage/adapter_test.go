package storage

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/lepinkainen/reelbox/internal/cache"
	"github.com/lepinkainen/reelbox/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func substrates(t *testing.T) map[string]Substrate {
	t.Helper()

	env := testutil.NewTestEnv(t)
	db, err := cache.Open(filepath.Join(env.RootDir(), "storage.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return map[string]Substrate{
		"memory": NewMemorySubstrate(),
		"sqlite": NewSQLiteSubstrate(db),
	}
}

func TestAdapter(t *testing.T) {
	for name, substrate := range substrates(t) {
		t.Run(name, func(t *testing.T) {
			a := NewAdapter(substrate)

			assert.Equal(t, "", a.Load("omdb"), "absent key loads as empty")

			a.Save("omdb", `[[{"Title":"Heat"}]]`)
			a.Save("other", "x")
			assert.Equal(t, `[[{"Title":"Heat"}]]`, a.Load("omdb"))

			a.Save("omdb", "")
			assert.Equal(t, "", a.Load("omdb"), "empty value is indistinguishable from absence")

			assert.Equal(t, []string{"omdb", "other"}, a.Keys())

			a.Remove("other")
			assert.Equal(t, "", a.Load("other"))
			a.Remove("never-existed")

			a.Save("x", "1")
			a.Clear()
			assert.Empty(t, a.Keys())
			assert.Equal(t, "", a.Load("x"))
		})
	}
}

func TestSQLiteSubstrate_SurvivesReopen(t *testing.T) {
	env := testutil.NewTestEnv(t)
	path := filepath.Join(env.RootDir(), "persist.db")

	db, err := cache.Open(path)
	require.NoError(t, err)
	NewAdapter(NewSQLiteSubstrate(db)).Save("omdb", "persisted")
	require.NoError(t, db.Close())

	reopened, err := cache.Open(path)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	assert.Equal(t, "persisted", NewAdapter(NewSQLiteSubstrate(reopened)).Load("omdb"))
}

type failingSubstrate struct{}

var errBroken = errors.New("disk on fire")

func (failingSubstrate) GetItem(string) (string, bool, error) { return "stale", true, errBroken }
func (failingSubstrate) SetItem(string, string) error         { return errBroken }
func (failingSubstrate) RemoveItem(string) error              { return errBroken }
func (failingSubstrate) Clear() error                         { return errBroken }
func (failingSubstrate) Keys() ([]string, error)              { return nil, errBroken }

func TestAdapter_SwallowsSubstrateErrors(t *testing.T) {
	a := NewAdapter(failingSubstrate{})

	assert.NotPanics(t, func() {
		a.Save("k", "v")
		a.Remove("k")
		a.Clear()
	})
	assert.Equal(t, "", a.Load("k"))
	assert.Nil(t, a.Keys())
}

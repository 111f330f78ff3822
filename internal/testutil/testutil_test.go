package testutil

import (
	"encoding/json"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/lepinkainen/reelbox/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTestEnv_PathWithinSandbox(t *testing.T) {
	env := NewTestEnv(t)

	path := env.Path("a", "b.txt")
	assert.Equal(t, filepath.Join(env.RootDir(), "a", "b.txt"), path)
}

func TestTestEnv_WriteReadFileString(t *testing.T) {
	env := NewTestEnv(t)

	env.WriteFileString("nested/dir/file.txt", "hello")
	assert.True(t, env.FileExists("nested/dir/file.txt"))
	assert.Equal(t, "hello", env.ReadFileString("nested/dir/file.txt"))
	assert.False(t, env.FileExists("missing.txt"))
}

func TestSetTestConfig_RestoresState(t *testing.T) {
	config.StorageKey = "before"

	t.Run("inner", func(t *testing.T) {
		SetTestConfig(t)
		assert.Equal(t, "omdb", config.StorageKey)
		assert.Equal(t, "test-omdb-key", config.OMDBAPIKey)
		config.StorageKey = "changed"
	})

	assert.Equal(t, "before", config.StorageKey)
}

func TestOMDBServer(t *testing.T) {
	server := NewOMDBServer(t, map[string]any{"Title": "Heat", "Year": "1995"})

	resp, err := http.Get(server.URL + "/?t=heat&apikey=k")
	require.NoError(t, err)
	var found map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&found))
	_ = resp.Body.Close()
	assert.Equal(t, "Heat", found["Title"])

	resp, err = http.Get(server.URL + "/?t=nothing&apikey=k")
	require.NoError(t, err)
	var missing map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&missing))
	_ = resp.Body.Close()
	assert.Equal(t, "False", missing["Response"])

	assert.Equal(t, []string{"heat", "nothing"}, server.RequestedTitles())
}

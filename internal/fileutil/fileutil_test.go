package fileutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/lepinkainen/reelbox/internal/testutil"
)

func TestSanitizeFilename(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "plain title", input: "Heat (1995)", expected: "Heat (1995)"},
		{name: "colon", input: "Mad Max 2: The Road Warrior", expected: "Mad Max 2 - The Road Warrior"},
		{name: "slash", input: "Face/Off", expected: "Face-Off"},
		{name: "backslash", input: "Back\\Slash", expected: "Back-Slash"},
		{name: "surrounding space", input: "  Heat  ", expected: "Heat"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, SanitizeFilename(tc.input))
		})
	}
}

func TestFileExists(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.WriteFileString("present.txt", "x")

	assert.True(t, FileExists(env.Path("present.txt")))
	assert.False(t, FileExists(env.Path("missing.txt")))
	assert.False(t, FileExists(env.RootDir()), "directories are not files")
}

func TestWriteFileWithOverwrite(t *testing.T) {
	env := testutil.NewTestEnv(t)
	path := env.Path("nested", "dir", "out.txt")

	written, err := WriteFileWithOverwrite(path, []byte("first"), 0644, false)
	require.NoError(t, err)
	assert.True(t, written)

	written, err = WriteFileWithOverwrite(path, []byte("second"), 0644, false)
	require.NoError(t, err)
	assert.False(t, written)
	assert.Equal(t, "first", env.ReadFileString(path))

	written, err = WriteFileWithOverwrite(path, []byte("third"), 0644, true)
	require.NoError(t, err)
	assert.True(t, written)
	assert.Equal(t, "third", env.ReadFileString(path))
}

func TestWriteFileWithOverwrite_UnwritableDir(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.WriteFileString("blocker", "file in the way")

	_, err := WriteFileWithOverwrite(filepath.Join(env.Path("blocker"), "out.txt"), []byte("x"), 0644, true)
	assert.Error(t, err)
}

func TestWriteJSONFile(t *testing.T) {
	env := testutil.NewTestEnv(t)
	path := env.Path("movies.json")
	data := []map[string]any{{"Title": "Heat", "Year": "1995"}}

	written, err := WriteJSONFile(data, path, false)
	require.NoError(t, err)
	assert.True(t, written)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "Heat", decoded[0]["Title"])
	assert.Contains(t, string(raw), "\n  {", "output is indented")

	written, err = WriteJSONFile(data, path, false)
	require.NoError(t, err)
	assert.False(t, written)
}

func TestWriteJSONFile_MarshalError(t *testing.T) {
	env := testutil.NewTestEnv(t)

	_, err := WriteJSONFile(map[string]any{"bad": make(chan int)}, env.Path("bad.json"), true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to marshal JSON")
	assert.False(t, env.FileExists("bad.json"))
}

func TestWriteYAMLFile(t *testing.T) {
	env := testutil.NewTestEnv(t)
	path := env.Path("movies.yaml")
	data := []map[string]any{{"Title": "Heat", "Year": "1995"}}

	written, err := WriteYAMLFile(data, path, true)
	require.NoError(t, err)
	assert.True(t, written)

	var decoded []map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(env.ReadFileString(path)), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "Heat", decoded[0]["Title"])
	assert.Equal(t, "1995", decoded[0]["Year"])
}

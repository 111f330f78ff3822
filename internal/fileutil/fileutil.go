package fileutil

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// SanitizeFilename replaces characters that are unsafe in file names.
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, ":", " -")
	name = strings.ReplaceAll(name, "/", "-")
	name = strings.ReplaceAll(name, "\\", "-")
	return strings.TrimSpace(name)
}

// FileExists reports whether a regular file exists at filePath.
func FileExists(filePath string) bool {
	info, err := os.Stat(filePath)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// WriteFileWithOverwrite writes data to filePath, creating parent directories.
// An existing file is left alone unless overwrite is set; the returned bool
// reports whether anything was written.
func WriteFileWithOverwrite(filePath string, data []byte, perm os.FileMode, overwrite bool) (bool, error) {
	if FileExists(filePath) && !overwrite {
		slog.Info("File already exists, skipping", "filename", filePath)
		return false, nil
	}

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return false, fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(filePath, data, perm); err != nil {
		return false, fmt.Errorf("failed to write %s: %w", filePath, err)
	}
	return true, nil
}

// WriteJSONFile writes data as indented JSON.
func WriteJSONFile(data any, filePath string, overwrite bool) (bool, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return false, fmt.Errorf("failed to marshal JSON: %w", err)
	}
	slog.Debug("Writing JSON file", "filename", filePath, "overwrite", overwrite)
	return WriteFileWithOverwrite(filePath, append(jsonData, '\n'), 0644, overwrite)
}

// WriteYAMLFile writes data as YAML with two-space indentation.
func WriteYAMLFile(data any, filePath string, overwrite bool) (bool, error) {
	var buf strings.Builder
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(data); err != nil {
		return false, fmt.Errorf("failed to marshal YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return false, fmt.Errorf("failed to marshal YAML: %w", err)
	}
	slog.Debug("Writing YAML file", "filename", filePath, "overwrite", overwrite)
	return WriteFileWithOverwrite(filePath, []byte(buf.String()), 0644, overwrite)
}

package fileutil

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/disintegration/imaging"
)

// DefaultPosterWidth is the width posters are scaled down to.
const DefaultPosterWidth = 300

// PosterOptions describes a poster download.
type PosterOptions struct {
	URL       string
	OutputDir string
	// Filename inside OutputDir/attachments, e.g. "Heat (1995) - poster.jpg".
	Filename string
	// MaxWidth caps the saved image width; 0 means DefaultPosterWidth.
	MaxWidth  int
	Overwrite bool
	Client    *http.Client
}

// PosterResult describes where a poster ended up.
type PosterResult struct {
	Downloaded   bool
	LocalPath    string
	RelativePath string
}

// PosterFilename builds the attachment name for a movie label.
func PosterFilename(label string) string {
	return SanitizeFilename(label) + " - poster.jpg"
}

// DownloadPoster fetches a poster image, shrinks it to MaxWidth and stores
// it as JPEG under OutputDir/attachments. An empty URL returns (nil, nil).
func DownloadPoster(ctx context.Context, opts PosterOptions) (*PosterResult, error) {
	if opts.URL == "" {
		return nil, nil
	}

	relativePath := filepath.Join("attachments", opts.Filename)
	result := &PosterResult{
		LocalPath:    filepath.Join(opts.OutputDir, relativePath),
		RelativePath: relativePath,
	}

	if FileExists(result.LocalPath) && !opts.Overwrite {
		slog.Debug("Poster already exists, skipping download", "path", result.LocalPath)
		return result, nil
	}

	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	maxWidth := opts.MaxWidth
	if maxWidth <= 0 {
		maxWidth = DefaultPosterWidth
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, opts.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create poster request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download poster: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d downloading poster from %s", resp.StatusCode, opts.URL)
	}

	img, err := imaging.Decode(resp.Body, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode poster: %w", err)
	}
	if img.Bounds().Dx() > maxWidth {
		img = imaging.Resize(img, maxWidth, 0, imaging.Lanczos)
	}

	if err := os.MkdirAll(filepath.Dir(result.LocalPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create attachments directory: %w", err)
	}
	if err := imaging.Save(img, result.LocalPath, imaging.JPEGQuality(85)); err != nil {
		return nil, fmt.Errorf("failed to save poster: %w", err)
	}

	slog.Info("Downloaded poster", "path", result.LocalPath)
	result.Downloaded = true
	return result, nil
}

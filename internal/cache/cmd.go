package cache

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
)

// InvalidateCacheCmd represents the cache invalidate subcommand
type InvalidateCacheCmd struct {
	Source string `arg:"" help:"Cache source to invalidate: omdb, storage" required:""`
}

func (i *InvalidateCacheCmd) Run() error {
	tableName, ok := SourceTables[i.Source]
	if !ok {
		valid := slices.Sorted(maps.Keys(SourceTables))
		return fmt.Errorf("invalid cache source '%s'; valid sources are: %s", i.Source, strings.Join(valid, ", "))
	}

	cacheInstance, err := GetGlobalCache()
	if err != nil {
		return fmt.Errorf("failed to open cache database: %w", err)
	}

	slog.Info("Invalidating cache", "source", i.Source, "database", cacheInstance.Path())

	rowsDeleted, err := cacheInstance.InvalidateSource(tableName)
	if err != nil {
		return fmt.Errorf("failed to invalidate cache: %w", err)
	}

	slog.Info("Cache invalidated", "source", i.Source, "rows_deleted", rowsDeleted)
	return nil
}

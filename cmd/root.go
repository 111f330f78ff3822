package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"github.com/lepinkainen/humanlog"
	"github.com/spf13/viper"

	"github.com/lepinkainen/reelbox/internal/cache"
	"github.com/lepinkainen/reelbox/internal/config"
)

// logLevel is raised to debug by --debug
var logLevel = slog.LevelInfo

// CLI represents the complete command structure for the reelbox application
type CLI struct {
	// Global flags
	APIKey  string `name:"api-key" help:"OMDB API key (overrides omdb.api_key and OMDB_API_KEY)"`
	Debug   bool   `help:"Enable debug logging"`
	NoCache bool   `help:"Bypass the OMDB response cache"`
	Dedupe  bool   `help:"Drop duplicate movies, keeping the newest copy"`

	// Cache flags
	CacheDBFile string `help:"Path to the SQLite database holding storage and the OMDB cache" default:"./reelbox.db"`
	CacheTTL    string `help:"OMDB cache time-to-live duration (e.g., 720h for 30 days)" default:"720h"`

	Browse     BrowseCmd     `cmd:"" default:"withargs" help:"Open the interactive movie browser"`
	Search     SearchCmd     `cmd:"" help:"Look a title up on OMDB and add it to the list"`
	List       ListCmd       `cmd:"" help:"Print the stored movie list"`
	History    HistoryCmd    `cmd:"" help:"Print the stored snapshot history"`
	DedupeList DedupeListCmd `cmd:"" name:"dedupe" help:"Remove duplicate movies from the stored list"`
	Export     ExportCmd     `cmd:"" help:"Export the stored movie list to a file"`
	Storage    StorageCmd    `cmd:"" help:"Inspect and edit the persistent key/value storage"`
	Cache      CacheCmd      `cmd:"" help:"Manage the OMDB response cache"`
}

// CacheCmd represents the cache command and its subcommands
type CacheCmd struct {
	Invalidate cache.InvalidateCacheCmd `cmd:"" help:"Invalidate a cache source (omdb, storage)"`
}

// Execute runs the Kong-based CLI
func Execute() {
	initLogging(os.Stdout, slog.LevelInfo)
	initConfig()

	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("reelbox"),
		kong.Description("Browse, search and keep a list of movies from OMDB."),
		kong.UsageOnError(),
	)

	if cli.Debug {
		logLevel = slog.LevelDebug
		initLogging(os.Stdout, logLevel)
	}
	updateGlobalConfig(&cli)

	err := ctx.Run()
	if cerr := cache.ResetGlobalCache(); cerr != nil {
		slog.Warn("Failed to close cache database", "error", cerr)
	}
	if err != nil {
		slog.Error("Command failed", "error", err)
		os.Exit(1)
	}
}

func initConfig() {
	config.SetDefaults()

	viper.AutomaticEnv()
	if err := viper.BindEnv("omdb.api_key", "OMDB_API_KEY"); err != nil {
		slog.Error("Failed to bind environment variable", "error", err)
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			slog.Debug("Config file not found, using defaults")
		} else {
			slog.Error("Fatal error config file", "error", err)
			os.Exit(1)
		}
	}

	config.InitConfig()
}

// updateGlobalConfig applies global flags on top of the loaded config
func updateGlobalConfig(cli *CLI) {
	config.SetOMDBAPIKey(cli.APIKey)
	if cli.Dedupe {
		config.SetDedupe(true)
	}
	if cli.NoCache {
		config.UseCache = false
	}

	viper.Set("cache.dbfile", cli.CacheDBFile)
	viper.Set("cache.ttl", cli.CacheTTL)
}

func initLogging(w io.Writer, level slog.Level) {
	handler := humanlog.NewHandler(w, &humanlog.Options{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}

// logToFile sends logs to path for as long as the terminal UI owns the
// screen. The returned function restores stdout logging.
func logToFile(path string, level slog.Level) (func(), error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	previous := slog.Default()
	initLogging(f, level)
	return func() {
		slog.SetDefault(previous)
		_ = f.Close()
	}, nil
}

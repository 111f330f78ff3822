package config

import (
	"log/slog"
	"time"

	"github.com/spf13/viper"
)

// Input clearing modes for manual searches.
const (
	ClearInputsOnIssue    = "on-issue"
	ClearInputsOnComplete = "on-complete"
)

// Persist modes for the stored snapshot sequence.
const (
	PersistHistory = "history"
	PersistLatest  = "latest"
)

// Global configuration variables
var (
	// OMDBAPIKey is the API key for OMDB (Open Movie Database)
	OMDBAPIKey string
	// OMDBBaseURL is the OMDB endpoint queried with ?t=&y=&apikey=
	OMDBBaseURL string
	// OMDBRequestsPerSecond paces outgoing OMDB requests
	OMDBRequestsPerSecond int
	// HTTPTimeout bounds a single OMDB request; zero means no timeout
	HTTPTimeout time.Duration

	// StorageKey is the key the movie history is persisted under
	StorageKey string
	// SeedCount is how many catalog titles are looked up when storage is empty
	SeedCount int
	// SearchNotFoundDelay is how long the not-found flag stays up after a manual search miss
	SearchNotFoundDelay time.Duration
	// SeedNotFoundDelay is how long the not-found flag stays up after a seed miss
	SeedNotFoundDelay time.Duration
	// ClearInputs is either ClearInputsOnIssue or ClearInputsOnComplete
	ClearInputs string
	// PersistMode is either PersistHistory or PersistLatest
	PersistMode string
	// Dedupe enables identity de-duplication of the movie list
	Dedupe bool
	// UseCache routes OMDB lookups through the SQLite response cache
	UseCache bool
)

// SetDefaults registers the default values for every key this package reads.
func SetDefaults() {
	viper.SetDefault("omdb.base_url", "https://www.omdbapi.com/")
	viper.SetDefault("omdb.requests_per_second", 5)
	viper.SetDefault("omdb.timeout", "0s")

	viper.SetDefault("storage.key", "omdb")

	viper.SetDefault("browser.seed_count", 8)
	viper.SetDefault("browser.search_not_found_delay", "4s")
	viper.SetDefault("browser.seed_not_found_delay", "5s")
	viper.SetDefault("browser.clear_inputs", ClearInputsOnIssue)
	viper.SetDefault("browser.persist_mode", PersistHistory)
	viper.SetDefault("browser.dedupe", false)

	viper.SetDefault("cache.enabled", true)
	viper.SetDefault("cache.dbfile", "./reelbox.db")
	viper.SetDefault("cache.ttl", "720h")
	viper.SetDefault("log.file", "./reelbox.log")
}

// InitConfig initializes the global configuration
func InitConfig() {
	SetDefaults()

	OMDBAPIKey = viper.GetString("omdb.api_key")
	OMDBBaseURL = viper.GetString("omdb.base_url")
	OMDBRequestsPerSecond = viper.GetInt("omdb.requests_per_second")
	HTTPTimeout = durationOrDefault("omdb.timeout", 0)

	StorageKey = viper.GetString("storage.key")

	SeedCount = viper.GetInt("browser.seed_count")
	SearchNotFoundDelay = durationOrDefault("browser.search_not_found_delay", 4*time.Second)
	SeedNotFoundDelay = durationOrDefault("browser.seed_not_found_delay", 5*time.Second)
	ClearInputs = oneOf("browser.clear_inputs", ClearInputsOnIssue, ClearInputsOnComplete)
	PersistMode = oneOf("browser.persist_mode", PersistHistory, PersistLatest)
	Dedupe = viper.GetBool("browser.dedupe")
	UseCache = viper.GetBool("cache.enabled")
}

// SetOMDBAPIKey overrides the OMDB API key, typically from a CLI flag
func SetOMDBAPIKey(key string) {
	if key != "" {
		OMDBAPIKey = key
	}
}

// SetDedupe sets the Dedupe flag
func SetDedupe(dedupe bool) {
	Dedupe = dedupe
}

func durationOrDefault(key string, fallback time.Duration) time.Duration {
	raw := viper.GetString(key)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		slog.Warn("Invalid duration in config, using default", "key", key, "value", raw, "default", fallback)
		return fallback
	}
	return d
}

// oneOf returns the configured value when it is one of allowed, else the first allowed value.
func oneOf(key string, allowed ...string) string {
	value := viper.GetString(key)
	for _, a := range allowed {
		if value == a {
			return value
		}
	}
	slog.Warn("Unknown config value, using default", "key", key, "value", value, "default", allowed[0])
	return allowed[0]
}

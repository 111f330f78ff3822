package testutil

import (
	"testing"
	"time"

	"github.com/lepinkainen/reelbox/internal/config"
	"github.com/spf13/viper"
)

// ConfigState holds the state of the config package variables.
type ConfigState struct {
	OMDBAPIKey            string
	OMDBBaseURL           string
	OMDBRequestsPerSecond int
	HTTPTimeout           time.Duration
	StorageKey            string
	SeedCount             int
	SearchNotFoundDelay   time.Duration
	SeedNotFoundDelay     time.Duration
	ClearInputs           string
	PersistMode           string
	Dedupe                bool
	UseCache              bool
}

// SaveConfigState captures the current state of config package variables.
func SaveConfigState() ConfigState {
	return ConfigState{
		OMDBAPIKey:            config.OMDBAPIKey,
		OMDBBaseURL:           config.OMDBBaseURL,
		OMDBRequestsPerSecond: config.OMDBRequestsPerSecond,
		HTTPTimeout:           config.HTTPTimeout,
		StorageKey:            config.StorageKey,
		SeedCount:             config.SeedCount,
		SearchNotFoundDelay:   config.SearchNotFoundDelay,
		SeedNotFoundDelay:     config.SeedNotFoundDelay,
		ClearInputs:           config.ClearInputs,
		PersistMode:           config.PersistMode,
		Dedupe:                config.Dedupe,
		UseCache:              config.UseCache,
	}
}

// RestoreConfigState restores the config package variables to a saved state.
func RestoreConfigState(state ConfigState) {
	config.OMDBAPIKey = state.OMDBAPIKey
	config.OMDBBaseURL = state.OMDBBaseURL
	config.OMDBRequestsPerSecond = state.OMDBRequestsPerSecond
	config.HTTPTimeout = state.HTTPTimeout
	config.StorageKey = state.StorageKey
	config.SeedCount = state.SeedCount
	config.SearchNotFoundDelay = state.SearchNotFoundDelay
	config.SeedNotFoundDelay = state.SeedNotFoundDelay
	config.ClearInputs = state.ClearInputs
	config.PersistMode = state.PersistMode
	config.Dedupe = state.Dedupe
	config.UseCache = state.UseCache
}

// SetTestConfig resets viper, loads config defaults and shortens the
// not-found delays so timer-driven tests finish quickly. Everything is
// restored when the test completes.
func SetTestConfig(t *testing.T) {
	t.Helper()

	state := SaveConfigState()
	viper.Reset()

	config.InitConfig()
	config.OMDBAPIKey = "test-omdb-key"
	config.OMDBRequestsPerSecond = 1000
	config.SearchNotFoundDelay = 40 * time.Millisecond
	config.SeedNotFoundDelay = 50 * time.Millisecond

	t.Cleanup(func() {
		RestoreConfigState(state)
		viper.Reset()
	})
}

// SetupTestCache configures viper for test caching inside env.
// Callers that use the global cache singleton must reset it themselves.
func SetupTestCache(t *testing.T, env *TestEnv) string {
	t.Helper()

	dbPath := env.Path("test-cache.db")
	viper.Set("cache.dbfile", dbPath)
	viper.Set("cache.ttl", "24h")

	return dbPath
}

package cache

// SQL schemas for cache tables
// All tables use "cache_key" as the primary key column for consistency

// OMDBCacheSchema defines the schema for OMDB title lookups
const OMDBCacheSchema = `
CREATE TABLE IF NOT EXISTS omdb_cache (
	cache_key TEXT PRIMARY KEY NOT NULL,
	data TEXT NOT NULL,
	cached_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_omdb_cached_at ON omdb_cache(cached_at);
`

// LocalStorageSchema defines the key/value table backing the persistence adapter.
// Entries in this table never expire.
const LocalStorageSchema = `
CREATE TABLE IF NOT EXISTS local_storage (
	cache_key TEXT PRIMARY KEY NOT NULL,
	data TEXT NOT NULL,
	cached_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// Table names
const (
	OMDBTable         = "omdb_cache"
	LocalStorageTable = "local_storage"
)

// AllCacheSchemas contains all table schemas for easy initialization
var AllCacheSchemas = []string{
	OMDBCacheSchema,
	LocalStorageSchema,
}

// ValidCacheTableNames is the whitelist of allowed table names
// Used to prevent SQL injection when interpolating table names
var ValidCacheTableNames = map[string]bool{
	OMDBTable:         true,
	LocalStorageTable: true,
}

// SourceTables maps user-facing source names to their table
var SourceTables = map[string]string{
	"omdb":    OMDBTable,
	"storage": LocalStorageTable,
}

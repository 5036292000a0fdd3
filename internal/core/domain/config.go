package domain

import "time"

// Backend names a record store implementation.
type Backend string

const (
	// BackendMemory keeps records in process memory.
	BackendMemory Backend = "memory"
	// BackendSQLite keeps records in a SQLite database.
	BackendSQLite Backend = "sqlite"
	// BackendBolt keeps records in a bbolt file.
	BackendBolt Backend = "bolt"
	// BackendChain layers a memory store in front of a persistent one.
	BackendChain Backend = "chain"
)

// StoreConfig describes the record store to open.
type StoreConfig struct {
	Backend Backend
	// Path is the database file of persistent backends. Empty means in-memory SQLite.
	Path string
	// Persistent is the backend behind the memory layer of a chain.
	Persistent Backend
	// WithDates stores received and expiration dates in their own columns.
	WithDates bool
	// MaxRecords bounds the memory store. Zero means unbounded.
	MaxRecords int
	// ExpireAfter makes memory records older than this read as absent. Zero disables it.
	ExpireAfter time.Duration
}

// TypePolicy lists the fields that identify objects of one type.
type TypePolicy struct {
	KeyFields []string
}

// Config is the complete cache configuration.
type Config struct {
	Store            StoreConfig
	NotifierCapacity int
	// TypePolicies maps a typename to its key fields.
	TypePolicies map[string]TypePolicy
	// EmbeddedFields maps a typename to fields that are always embedded.
	EmbeddedFields map[string][]string
	// MaxAges maps "Type.field" to its freshness policy.
	MaxAges map[string]MaxAge
	// DefaultMaxAge applies to root fields without an entry.
	DefaultMaxAge MaxAge
	// JSONLogs switches the logger to JSON output.
	JSONLogs bool
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			Backend: BackendMemory,
		},
		NotifierCapacity: DefaultNotifierCapacity,
		TypePolicies:     map[string]TypePolicy{},
		EmbeddedFields:   map[string][]string{},
		MaxAges:          map[string]MaxAge{},
	}
}

package domain

import "path/filepath"

const (
	// CacheDirName is the name of the directory holding persistent caches.
	CacheDirName = ".normcache"

	// SQLiteFileName is the default name of the SQLite cache file.
	SQLiteFileName = "records.db"

	// BoltFileName is the default name of the bbolt cache file.
	BoltFileName = "records.bolt"

	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "normcache.yaml"

	// DefaultNotifierCapacity is the number of change events buffered before publishers block.
	DefaultNotifierCapacity = 64

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for cache files (rw-------).
	FilePerm = 0o600
)

// DefaultSQLitePath returns the default path of the SQLite cache file.
func DefaultSQLitePath() string {
	return filepath.Join(CacheDirName, SQLiteFileName)
}

// DefaultBoltPath returns the default path of the bbolt cache file.
func DefaultBoltPath() string {
	return filepath.Join(CacheDirName, BoltFileName)
}

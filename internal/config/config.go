// Package config holds the engine's tunable constants.
//
// EDUCATIONAL NOTES:
// ------------------
// A handful of numbers govern the engine's behavior: page size, buffer
// pool capacity, insert safety margin. They live in a small struct
// configured with functional options, rather than scattering
// package-level constants that every caller has to know about by name.
package config

const (
	// DefaultPageSize is the recommended page size (32 KiB).
	DefaultPageSize = 32 * 1024

	// MinPageSize is the minimum allowed page size (4 KiB).
	MinPageSize = 4 * 1024

	// DefaultBufferPoolCapacity is the default number of decoded pages kept
	// in the buffer pool at once.
	DefaultBufferPoolCapacity = 1024

	// InsertSafetyMargin is the minimum spare room (beyond the serialized
	// image) a page must retain for an insert to be accepted.
	InsertSafetyMargin = 1024

	// DefaultDatabaseName is the database selected when none is requested
	// and none exists yet.
	DefaultDatabaseName = "default"

	// CatalogFileSuffix names the sidecar metadata file for a database.
	CatalogFileSuffix = ".meta"

	// DataFileName names a database's paged heap file.
	DataFileName = "data.db"
)

// Config collects the tunables a StorageEngine is opened with.
type Config struct {
	PageSize           int
	BufferPoolCapacity int
	DefaultDatabase    string
}

// Option configures a Config.
type Option func(*Config)

// WithPageSize overrides the page size; values below MinPageSize are
// rejected by the disk manager at open time, not here.
func WithPageSize(size int) Option {
	return func(c *Config) { c.PageSize = size }
}

// WithBufferPoolCapacity overrides the number of cached pages per database.
func WithBufferPoolCapacity(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.BufferPoolCapacity = n
		}
	}
}

// WithDefaultDatabase overrides the database name created/selected when the
// engine starts with no current database.
func WithDefaultDatabase(name string) Option {
	return func(c *Config) {
		if name != "" {
			c.DefaultDatabase = name
		}
	}
}

// New builds a Config from defaults plus any overrides.
func New(opts ...Option) Config {
	c := Config{
		PageSize:           DefaultPageSize,
		BufferPoolCapacity: DefaultBufferPoolCapacity,
		DefaultDatabase:    DefaultDatabaseName,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

package dbms

import (
	"os"
	"path/filepath"
	"sort"
	"sync"

	"go.uber.org/multierr"

	"github.com/cabewaldrop/pagedb/internal/config"
	"github.com/cabewaldrop/pagedb/internal/dberr"
	"github.com/cabewaldrop/pagedb/internal/dblog"
)

// StorageEngine is the top-level facade owning every database under a base
// directory, plus a "current database" selector used by statements that
// don't name one explicitly.
type StorageEngine struct {
	mu        sync.Mutex
	baseDir   string
	cfg       config.Config
	databases map[string]*Database
	current   string
}

// Open hydrates every subdirectory of baseDir as a database, creating the
// configured default database if none exist yet.
func Open(baseDir string, opts ...config.Option) (*StorageEngine, error) {
	cfg := config.New(opts...)

	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, dberr.IO(err, "create base directory %s", baseDir)
	}

	entries, err := os.ReadDir(baseDir)
	if err != nil {
		return nil, dberr.IO(err, "read base directory %s", baseDir)
	}

	engine := &StorageEngine{
		baseDir:   baseDir,
		cfg:       cfg,
		databases: make(map[string]*Database),
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		db, err := openDatabase(filepath.Join(baseDir, entry.Name()), entry.Name(), cfg)
		if err != nil {
			return nil, err
		}
		engine.databases[entry.Name()] = db
	}

	if len(engine.databases) == 0 {
		if err := engine.CreateDatabase(cfg.DefaultDatabase); err != nil {
			return nil, err
		}
	}

	if _, ok := engine.databases[cfg.DefaultDatabase]; ok {
		engine.current = cfg.DefaultDatabase
	} else {
		names := engine.ListDatabases()
		if len(names) > 0 {
			engine.current = names[0]
		}
	}

	return engine, nil
}

// ListDatabases returns every known database name, sorted.
func (e *StorageEngine) ListDatabases() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	names := make([]string, 0, len(e.databases))
	for name := range e.databases {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CreateDatabase creates and registers a new, empty database.
func (e *StorageEngine) CreateDatabase(name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, exists := e.databases[name]; exists {
		return dberr.Schema("database %q already exists", name)
	}
	db, err := openDatabase(filepath.Join(e.baseDir, name), name, e.cfg)
	if err != nil {
		return err
	}
	e.databases[name] = db
	if e.current == "" {
		e.current = name
	}
	return nil
}

// DropDatabase closes and removes a database along with its on-disk
// directory. Dropping the current database leaves no current database
// selected until UseDatabase is called again.
func (e *StorageEngine) DropDatabase(name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	db, exists := e.databases[name]
	if !exists {
		return dberr.NotFound("database %q does not exist", name)
	}
	if err := db.Close(); err != nil {
		dblog.L().Warnw("close failed while dropping database", "database", name, "error", err)
	}
	if err := os.RemoveAll(db.dir); err != nil {
		return dberr.IO(err, "remove database directory %s", db.dir)
	}
	delete(e.databases, name)
	if e.current == name {
		e.current = ""
	}
	return nil
}

// UseDatabase selects name as the current database.
func (e *StorageEngine) UseDatabase(name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, exists := e.databases[name]; !exists {
		return dberr.NotFound("database %q does not exist", name)
	}
	e.current = name
	return nil
}

// CurrentDatabase returns the currently selected database.
func (e *StorageEngine) CurrentDatabase() (*Database, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.current == "" {
		return nil, dberr.NotFound("no database selected")
	}
	db, ok := e.databases[e.current]
	if !ok {
		return nil, dberr.NotFound("current database %q no longer exists", e.current)
	}
	return db, nil
}

// CurrentDatabaseName returns the name of the currently selected database,
// or "" if none is selected.
func (e *StorageEngine) CurrentDatabaseName() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current
}

// Shutdown saves every database, logging (but not aborting on) any
// individual failure, and returns the combined error so a caller can still
// observe that something went wrong.
func (e *StorageEngine) Shutdown() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	var combined error
	for name, db := range e.databases {
		if err := db.Close(); err != nil {
			dblog.L().Warnw("failed to save database during shutdown", "database", name, "error", err)
			combined = multierr.Append(combined, err)
		}
	}
	return combined
}

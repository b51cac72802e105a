// Package dbms ties storage, catalog, and table together into a single
// database, and multiple databases together into the StorageEngine facade
// the executor talks to.
package dbms

import (
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/cabewaldrop/pagedb/internal/catalog"
	"github.com/cabewaldrop/pagedb/internal/config"
	"github.com/cabewaldrop/pagedb/internal/dberr"
	"github.com/cabewaldrop/pagedb/internal/schema"
	"github.com/cabewaldrop/pagedb/internal/storage"
	"github.com/cabewaldrop/pagedb/internal/table"
	"github.com/cabewaldrop/pagedb/internal/value"
)

// Database owns one database's on-disk state: its heap file, buffer pool,
// and catalog, plus the in-memory Table wrappers hydrated from that
// catalog.
type Database struct {
	mu     sync.Mutex
	name   string
	dir    string
	disk   *storage.DiskManager
	pool   *storage.BufferPool
	cat    *catalog.Catalog
	tables map[string]*table.Table
}

// openDatabase loads (or initializes) the database named name inside dir,
// hydrating every table the catalog knows about.
func openDatabase(dir, name string, cfg config.Config) (*Database, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, dberr.IO(err, "create database directory %s", dir)
	}

	disk, err := storage.OpenDiskManager(filepath.Join(dir, config.DataFileName), cfg.PageSize)
	if err != nil {
		return nil, err
	}
	cat, err := catalog.Load(filepath.Join(dir, name+config.CatalogFileSuffix))
	if err != nil {
		disk.Close()
		return nil, err
	}

	db := &Database{
		name:   name,
		dir:    dir,
		disk:   disk,
		pool:   storage.NewBufferPool(disk, cfg.BufferPoolCapacity),
		cat:    cat,
		tables: make(map[string]*table.Table),
	}

	for _, tname := range cat.ListTables() {
		cols, err := cat.GetColumns(tname)
		if err != nil {
			return nil, err
		}
		pageIDs, err := cat.GetPageIDs(tname)
		if err != nil {
			return nil, err
		}
		db.tables[tname] = table.Load(tname, cols, pageIDs)
	}

	return db, nil
}

// Name returns the database's name.
func (db *Database) Name() string { return db.name }

// ListTables returns every table name in the database, sorted.
func (db *Database) ListTables() []string {
	db.mu.Lock()
	defer db.mu.Unlock()
	names := make([]string, 0, len(db.tables))
	for name := range db.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetTable returns the named table.
func (db *Database) GetTable(name string) (*table.Table, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	tbl, ok := db.tables[name]
	if !ok {
		return nil, dberr.NotFound("table %q does not exist", name)
	}
	return tbl, nil
}

// CreateTable registers a new, empty table.
func (db *Database) CreateTable(name string, columns []schema.ColumnDef) error {
	if err := schema.Validate(columns); err != nil {
		return err
	}

	db.mu.Lock()
	defer db.mu.Unlock()
	if _, exists := db.tables[name]; exists {
		return dberr.Schema("table %q already exists", name)
	}
	if err := db.cat.AddTable(name, columns); err != nil {
		return err
	}
	db.tables[name] = table.New(name, columns)
	return nil
}

// DropTable removes a table's metadata. The pages it owned are not
// reclaimed: allocated pages are never freed, so a dropped table's
// storage is simply abandoned rather than returned to a free list.
func (db *Database) DropTable(name string) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if _, exists := db.tables[name]; !exists {
		return dberr.NotFound("table %q does not exist", name)
	}
	if err := db.cat.RemoveTable(name); err != nil {
		return err
	}
	delete(db.tables, name)
	return nil
}

// InsertRecord inserts values into tableName, persisting any newly
// allocated page id to the catalog.
func (db *Database) InsertRecord(tableName string, values []value.Value) (storage.RecordId, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	tbl, ok := db.tables[tableName]
	if !ok {
		return storage.RecordId{}, dberr.NotFound("table %q does not exist", tableName)
	}
	id, allocated, err := tbl.Insert(db.pool, values)
	if err != nil {
		return storage.RecordId{}, err
	}
	if allocated >= 0 {
		if err := db.cat.AppendPageID(tableName, uint32(allocated)); err != nil {
			return storage.RecordId{}, err
		}
	}
	return id, nil
}

// DeleteRecord removes the record at id from tableName.
func (db *Database) DeleteRecord(tableName string, id storage.RecordId) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	tbl, ok := db.tables[tableName]
	if !ok {
		return dberr.NotFound("table %q does not exist", tableName)
	}
	return tbl.Delete(db.pool, id)
}

// UpdateRecord replaces the record at id in tableName with newValues,
// persisting a relocation's new page id if one was allocated.
func (db *Database) UpdateRecord(tableName string, id storage.RecordId, newValues []value.Value) (storage.RecordId, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	tbl, ok := db.tables[tableName]
	if !ok {
		return storage.RecordId{}, dberr.NotFound("table %q does not exist", tableName)
	}
	newID, allocated, err := tbl.Update(db.pool, id, newValues)
	if err != nil {
		return storage.RecordId{}, err
	}
	if allocated >= 0 {
		if err := db.cat.AppendPageID(tableName, uint32(allocated)); err != nil {
			return storage.RecordId{}, err
		}
	}
	return newID, nil
}

// ScanTable calls fn for every live record in tableName.
func (db *Database) ScanTable(tableName string, fn func(id storage.RecordId, values []value.Value) error) error {
	db.mu.Lock()
	tbl, ok := db.tables[tableName]
	db.mu.Unlock()
	if !ok {
		return dberr.NotFound("table %q does not exist", tableName)
	}
	return tbl.Scan(db.pool, fn)
}

// Save flushes every dirty page and writes the catalog to disk.
func (db *Database) Save() error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if err := db.pool.FlushAll(); err != nil {
		return err
	}
	return db.cat.Save()
}

// Close saves the database and closes its disk manager.
func (db *Database) Close() error {
	if err := db.Save(); err != nil {
		return err
	}
	return db.pool.Close()
}

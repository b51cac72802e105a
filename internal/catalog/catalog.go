// Package catalog persists per-database table metadata: which tables
// exist, their column definitions, and which pages hold their rows.
//
// EDUCATIONAL NOTES:
// ------------------
// Metadata lives in its own sidecar file next to the data file (one
// catalog per database directory), encoded with the same msgpack codec
// the page layer uses, rather than on page 0 of the data file itself.
// That split means the catalog can be loaded and saved independently of
// the buffer pool, and a corrupt/missing catalog never corrupts the heap.
package catalog

import (
	"os"
	"sort"
	"sync"

	"github.com/cabewaldrop/pagedb/internal/codec"
	"github.com/cabewaldrop/pagedb/internal/dberr"
	"github.com/cabewaldrop/pagedb/internal/schema"
)

// tableEntry is one table's persisted metadata.
type tableEntry struct {
	Columns []schema.ColumnDef
	PageIDs []uint32
}

// Catalog maps table name to its column definitions and the list of pages
// holding its rows.
type Catalog struct {
	mu     sync.Mutex
	path   string
	tables map[string]*tableEntry
}

// Load reads the catalog from path. A missing file yields an empty catalog
// rather than an error, since a freshly created database has no metadata
// file yet.
func Load(path string) (*Catalog, error) {
	c := &Catalog{path: path, tables: make(map[string]*tableEntry)}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return nil, dberr.IO(err, "read catalog %s", path)
	}
	if len(data) == 0 {
		return c, nil
	}

	var tables map[string]*tableEntry
	if err := codec.Unmarshal(data, &tables); err != nil {
		return nil, dberr.IO(err, "decode catalog %s", path)
	}
	c.tables = tables
	return c, nil
}

// Save writes the catalog to its backing file.
func (c *Catalog) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := codec.Marshal(c.tables)
	if err != nil {
		return dberr.IO(err, "encode catalog %s", c.path)
	}
	if err := os.WriteFile(c.path, data, 0644); err != nil {
		return dberr.IO(err, "write catalog %s", c.path)
	}
	return nil
}

// HasTable reports whether name is a known table.
func (c *Catalog) HasTable(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.tables[name]
	return ok
}

// ListTables returns every table name, sorted for deterministic SHOW
// TABLES output.
func (c *Catalog) ListTables() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	names := make([]string, 0, len(c.tables))
	for name := range c.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AddTable registers a new table with no pages yet allocated. It fails if
// the table already exists.
func (c *Catalog) AddTable(name string, columns []schema.ColumnDef) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.tables[name]; exists {
		return dberr.Schema("table %q already exists", name)
	}
	c.tables[name] = &tableEntry{Columns: columns}
	return nil
}

// RemoveTable drops a table's metadata. It fails if the table is unknown.
func (c *Catalog) RemoveTable(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.tables[name]; !exists {
		return dberr.NotFound("table %q does not exist", name)
	}
	delete(c.tables, name)
	return nil
}

// GetColumns returns the column definitions for name.
func (c *Catalog) GetColumns(name string) ([]schema.ColumnDef, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.tables[name]
	if !ok {
		return nil, dberr.NotFound("table %q does not exist", name)
	}
	return entry.Columns, nil
}

// GetPageIDs returns the ordered list of page ids holding name's rows.
func (c *Catalog) GetPageIDs(name string) ([]uint32, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.tables[name]
	if !ok {
		return nil, dberr.NotFound("table %q does not exist", name)
	}
	return entry.PageIDs, nil
}

// SetPageIDs overwrites name's page id list.
func (c *Catalog) SetPageIDs(name string, ids []uint32) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.tables[name]
	if !ok {
		return dberr.NotFound("table %q does not exist", name)
	}
	entry.PageIDs = ids
	return nil
}

// AppendPageID records a newly allocated page as belonging to name.
func (c *Catalog) AppendPageID(name string, id uint32) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.tables[name]
	if !ok {
		return dberr.NotFound("table %q does not exist", name)
	}
	entry.PageIDs = append(entry.PageIDs, id)
	return nil
}

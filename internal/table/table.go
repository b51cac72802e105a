// Package table implements the heap-organized table: row storage with no
// secondary index, relying on a full scan for uniqueness checks and
// predicate evaluation.
//
// EDUCATIONAL NOTES:
// ------------------
// A B-tree keyed by primary key gives O(log n) lookups, but this engine
// has no secondary index at all: every insert's uniqueness check, and
// every SELECT/UPDATE/DELETE's predicate, walks the table's pages in
// order. That trade simplifies the storage model considerably at the
// cost of scan performance, which is the deliberate shape this
// component takes.
package table

import (
	"github.com/cabewaldrop/pagedb/internal/dberr"
	"github.com/cabewaldrop/pagedb/internal/schema"
	"github.com/cabewaldrop/pagedb/internal/storage"
	"github.com/cabewaldrop/pagedb/internal/value"
)

// Record pairs a row's values with the RecordId it lives at. A freshly
// built row not yet inserted has no id.
type Record struct {
	ID     *storage.RecordId
	Values []value.Value
}

// Table is a named, typed heap of records spread across zero or more
// pages. PageIDs is kept in sync with the owning Database's catalog: Insert
// and Update return the id of any page they allocate as their allocated
// result (-1 when none) so the caller can persist it.
type Table struct {
	name    string
	columns []schema.ColumnDef
	pageIDs []uint32
}

// New creates an empty table definition with no pages yet.
func New(name string, columns []schema.ColumnDef) *Table {
	return &Table{name: name, columns: append([]schema.ColumnDef(nil), columns...)}
}

// Load reconstructs a table from catalog metadata.
func Load(name string, columns []schema.ColumnDef, pageIDs []uint32) *Table {
	return &Table{
		name:    name,
		columns: append([]schema.ColumnDef(nil), columns...),
		pageIDs: append([]uint32(nil), pageIDs...),
	}
}

// Name returns the table's name.
func (t *Table) Name() string { return t.name }

// Columns returns the table's column definitions.
func (t *Table) Columns() []schema.ColumnDef { return t.columns }

// PageIDs returns the pages currently allocated to the table.
func (t *Table) PageIDs() []uint32 { return t.pageIDs }

func (t *Table) validateRow(values []value.Value) error {
	if len(values) != len(t.columns) {
		return dberr.Schema("table %q has %d columns, got %d values", t.name, len(t.columns), len(values))
	}
	for i, col := range t.columns {
		if col.NotNull && values[i].IsNull() {
			return dberr.Schema("column %q is NOT NULL", col.Name)
		}
		if err := col.Type.CheckValue(values[i]); err != nil {
			return dberr.Schema("column %q: %v", col.Name, err)
		}
	}
	return nil
}

// checkUnique scans every existing row and fails if any unique column in
// values collides with a non-null value already present. skip, if
// non-nil, excludes that record from the scan (used by Update to avoid a
// row conflicting with its own prior values).
func (t *Table) checkUnique(pool *storage.BufferPool, values []value.Value, skip *storage.RecordId) error {
	for i, col := range t.columns {
		if !col.Unique || values[i].IsNull() {
			continue
		}
		candidate := values[i]
		conflict := false
		err := t.Scan(pool, func(id storage.RecordId, row []value.Value) error {
			if skip != nil && id == *skip {
				return nil
			}
			if row[i].IsNull() {
				return nil
			}
			if row[i].EqualForUniqueness(candidate) {
				conflict = true
			}
			return nil
		})
		if err != nil {
			return err
		}
		if conflict {
			return dberr.Schema("duplicate value %s for unique column %q", candidate.String(), col.Name)
		}
	}
	return nil
}

// Insert validates values against the table's schema, checks uniqueness
// against every existing row, and writes the row into the first page with
// room, allocating a new page only if none has space. It returns the new
// page id via allocated when a page was allocated so the caller can
// persist it to the catalog; allocated is -1 otherwise.
func (t *Table) Insert(pool *storage.BufferPool, values []value.Value) (id storage.RecordId, allocated int64, err error) {
	return t.insertRow(pool, values, nil)
}

// insertRow is Insert's implementation, parameterized by a record id to
// exclude from the uniqueness check. skip is nil for a plain Insert; an
// Update relocating an oversized row passes its own old id, since that
// row is still present (not yet deleted) when the relocating insert runs
// and must not be treated as a conflict with itself.
func (t *Table) insertRow(pool *storage.BufferPool, values []value.Value, skip *storage.RecordId) (id storage.RecordId, allocated int64, err error) {
	allocated = -1
	if err = t.validateRow(values); err != nil {
		return storage.RecordId{}, allocated, err
	}
	if err = t.checkUnique(pool, values, skip); err != nil {
		return storage.RecordId{}, allocated, err
	}

	for _, pageID := range t.pageIDs {
		page, gerr := pool.GetPage(pageID)
		if gerr != nil {
			return storage.RecordId{}, allocated, gerr
		}
		if !page.CanFit(values) {
			continue
		}
		pool.Pin(pageID)
		rid, ierr := page.InsertRecord(values)
		pool.Unpin(pageID)
		if ierr != nil {
			continue
		}
		return rid, allocated, nil
	}

	page, cerr := pool.CreatePage()
	if cerr != nil {
		return storage.RecordId{}, allocated, cerr
	}
	pool.Pin(page.ID())
	rid, ierr := page.InsertRecord(values)
	pool.Unpin(page.ID())
	if ierr != nil {
		return storage.RecordId{}, allocated, ierr
	}
	t.pageIDs = append(t.pageIDs, page.ID())
	allocated = int64(page.ID())
	return rid, allocated, nil
}

// Get returns the values stored at id.
func (t *Table) Get(pool *storage.BufferPool, id storage.RecordId) ([]value.Value, error) {
	page, err := pool.GetPage(id.PageID)
	if err != nil {
		return nil, err
	}
	values, ok := page.GetRecord(id.Slot)
	if !ok {
		return nil, dberr.NotFound("no record at %+v", id)
	}
	return values, nil
}

// Delete removes the record at id.
func (t *Table) Delete(pool *storage.BufferPool, id storage.RecordId) error {
	page, err := pool.GetPage(id.PageID)
	if err != nil {
		return err
	}
	pool.Pin(id.PageID)
	defer pool.Unpin(id.PageID)
	return page.DeleteRecord(id.Slot)
}

// Update replaces the record at id with newValues, re-validating
// not-null/unique constraints. If the updated row no longer fits on its
// original page, the record is relocated: inserted onto a (possibly new)
// page first, and only deleted from its old slot once the insert
// succeeds, so a relocation failure leaves the original row untouched.
// allocated reports a newly allocated page id from a relocation, or -1.
func (t *Table) Update(pool *storage.BufferPool, id storage.RecordId, newValues []value.Value) (newID storage.RecordId, allocated int64, err error) {
	allocated = -1
	if err = t.validateRow(newValues); err != nil {
		return storage.RecordId{}, allocated, err
	}
	if err = t.checkUnique(pool, newValues, &id); err != nil {
		return storage.RecordId{}, allocated, err
	}

	page, err := pool.GetPage(id.PageID)
	if err != nil {
		return storage.RecordId{}, allocated, err
	}

	pool.Pin(id.PageID)
	rerr := page.ReplaceRecord(id.Slot, newValues)
	pool.Unpin(id.PageID)
	if rerr == nil {
		return id, allocated, nil
	}
	if kind, _ := dberr.KindOf(rerr); kind != dberr.KindIO {
		return storage.RecordId{}, allocated, rerr
	}

	// In-place replace didn't fit: relocate via insert-then-delete so a
	// failed relocation never loses the original row. The old id is still
	// live at this point, so the relocating insert must skip it in its
	// own uniqueness check or an update that keeps a unique column's value
	// unchanged would collide with its own pre-image.
	newID, allocated, err = t.insertRow(pool, newValues, &id)
	if err != nil {
		return storage.RecordId{}, allocated, dberr.Execution("update could not relocate oversized row: %v", err)
	}
	if derr := t.Delete(pool, id); derr != nil {
		return storage.RecordId{}, allocated, derr
	}
	return newID, allocated, nil
}

// Scan calls fn for every live record in page order.
func (t *Table) Scan(pool *storage.BufferPool, fn func(id storage.RecordId, values []value.Value) error) error {
	for _, pageID := range t.pageIDs {
		page, err := pool.GetPage(pageID)
		if err != nil {
			return err
		}
		err = page.IterRecords(func(slot int, values []value.Value) error {
			return fn(storage.RecordId{PageID: pageID, Slot: slot}, values)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

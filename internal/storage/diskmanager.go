// Package storage implements the engine's paged disk layer: a raw
// fixed-page-size disk manager, a slotted Page on top of it, and a
// pin-aware LRU buffer pool in front of both.
//
// EDUCATIONAL NOTES:
// ------------------
// The three-layer split here is deliberate: a disk manager owns the file
// and its fixed-size blocks, a Page owns one block's on-disk layout, and
// a buffer pool owns the in-memory cache in front of both. The page's
// internal shape is a slotted page of msgpack-encoded records rather
// than a fixed-header B-tree/data page, and catalog metadata lives in
// its own sidecar file (see internal/catalog) instead of on page zero.
package storage

import (
	"fmt"
	"os"
	"sync"

	"github.com/cabewaldrop/pagedb/internal/config"
	"github.com/cabewaldrop/pagedb/internal/dberr"
)

// DiskManager owns one database's backing file and hands out fixed-size
// pages by id. Page ids are allocated monotonically starting at 0 and are
// never reused, even after the owning page's last record is deleted.
type DiskManager struct {
	mu        sync.Mutex
	file      *os.File
	path      string
	pageSize  int
	pageCount uint32
}

// OpenDiskManager opens (creating if absent) the file at path as a paged
// store of the given page size, inferring the current page count from the
// file's size.
func OpenDiskManager(path string, pageSize int) (*DiskManager, error) {
	if pageSize < config.MinPageSize {
		return nil, dberr.Schema("page size %d is below the minimum of %d", pageSize, config.MinPageSize)
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, dberr.IO(err, "open database file %s", path)
	}
	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, dberr.IO(err, "stat database file %s", path)
	}
	return &DiskManager{
		file:      f,
		path:      path,
		pageSize:  pageSize,
		pageCount: uint32(stat.Size() / int64(pageSize)),
	}, nil
}

// PageSize returns the fixed size every page occupies on disk.
func (d *DiskManager) PageSize() int { return d.pageSize }

// PageCount returns the number of pages that have ever been allocated.
func (d *DiskManager) PageCount() uint32 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pageCount
}

// AllocatePage grows the file by one zero-filled page and returns its id.
// Page ids are never reclaimed: dropping every record on a page does not
// shrink the file or free its id for reuse.
func (d *DiskManager) AllocatePage() (uint32, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	id := d.pageCount
	zero := make([]byte, d.pageSize)
	offset := int64(id) * int64(d.pageSize)
	if _, err := d.file.WriteAt(zero, offset); err != nil {
		return 0, dberr.IO(err, "allocate page %d", id)
	}
	d.pageCount++
	return id, nil
}

// ReadPage reads the raw bytes of page id. Reading a page at or beyond the
// current page count is an error rather than an implicit zero page.
func (d *DiskManager) ReadPage(id uint32) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if id >= d.pageCount {
		return nil, dberr.NotFound("page %d does not exist (only %d pages allocated)", id, d.pageCount)
	}
	buf := make([]byte, d.pageSize)
	offset := int64(id) * int64(d.pageSize)
	n, err := d.file.ReadAt(buf, offset)
	if err != nil {
		return nil, dberr.IO(err, "read page %d", id)
	}
	if n != d.pageSize {
		return nil, dberr.IO(fmt.Errorf("short read: got %d bytes, want %d", n, d.pageSize), "read page %d", id)
	}
	return buf, nil
}

// WritePage writes data as the full image of page id. data must be no
// larger than the page size; it is zero-padded if shorter.
func (d *DiskManager) WritePage(id uint32, data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(data) > d.pageSize {
		return dberr.IO(fmt.Errorf("encoded page is %d bytes, exceeds page size %d", len(data), d.pageSize), "write page %d", id)
	}
	if id >= d.pageCount {
		return dberr.NotFound("page %d does not exist (only %d pages allocated)", id, d.pageCount)
	}

	buf := make([]byte, d.pageSize)
	copy(buf, data)
	offset := int64(id) * int64(d.pageSize)
	n, err := d.file.WriteAt(buf, offset)
	if err != nil {
		return dberr.IO(err, "write page %d", id)
	}
	if n != d.pageSize {
		return dberr.IO(fmt.Errorf("short write: wrote %d bytes, want %d", n, d.pageSize), "write page %d", id)
	}
	return d.file.Sync()
}

// Close closes the underlying file. The caller is responsible for flushing
// any cached pages through WritePage first.
func (d *DiskManager) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.file.Close()
}

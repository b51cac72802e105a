package storage

import (
	"container/list"
	"sync"

	"github.com/cabewaldrop/pagedb/internal/dberr"
)

// BufferPool caches decoded pages in front of a DiskManager, evicting the
// least recently used unpinned page when the cache is at capacity.
//
// EDUCATIONAL NOTES:
// ------------------
// container/list gives LRU order and a map gives O(1) lookup; on top of
// that sits pinning: a page a caller is actively mutating (e.g.
// mid-insert, before the change is committed to the slot array) must not
// be evicted out from under it. Eviction walks the LRU list from the
// back and skips any page with a nonzero pin count.
type BufferPool struct {
	mu       sync.Mutex
	disk     *DiskManager
	capacity int

	cache    map[uint32]*Page
	lruList  *list.List
	lruMap   map[uint32]*list.Element
	pinCount map[uint32]int
}

// NewBufferPool creates a buffer pool of the given capacity in front of disk.
func NewBufferPool(disk *DiskManager, capacity int) *BufferPool {
	if capacity <= 0 {
		capacity = 1
	}
	return &BufferPool{
		disk:     disk,
		capacity: capacity,
		cache:    make(map[uint32]*Page),
		lruList:  list.New(),
		lruMap:   make(map[uint32]*list.Element),
		pinCount: make(map[uint32]int),
	}
}

// GetPage returns the page with the given id, reading it from disk on a
// cache miss.
func (bp *BufferPool) GetPage(id uint32) (*Page, error) {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	if page, ok := bp.cache[id]; ok {
		bp.touch(id)
		return page, nil
	}

	if err := bp.evictIfNeeded(); err != nil {
		return nil, err
	}

	raw, err := bp.disk.ReadPage(id)
	if err != nil {
		return nil, err
	}
	page, err := DeserializePage(id, bp.disk.PageSize(), raw)
	if err != nil {
		return nil, err
	}
	bp.insert(page)
	return page, nil
}

// CreatePage allocates a fresh page on disk and adds it to the cache.
func (bp *BufferPool) CreatePage() (*Page, error) {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	if err := bp.evictIfNeeded(); err != nil {
		return nil, err
	}
	id, err := bp.disk.AllocatePage()
	if err != nil {
		return nil, err
	}
	page := NewPage(id, bp.disk.PageSize())
	bp.insert(page)
	return page, nil
}

// Pin marks a page as in-use, excluding it from eviction until a matching
// Unpin. Pins nest: a page pinned twice needs two unpins.
func (bp *BufferPool) Pin(id uint32) {
	bp.mu.Lock()
	defer bp.mu.Unlock()
	bp.pinCount[id]++
}

// Unpin releases one pin taken by Pin.
func (bp *BufferPool) Unpin(id uint32) {
	bp.mu.Lock()
	defer bp.mu.Unlock()
	if bp.pinCount[id] > 0 {
		bp.pinCount[id]--
		if bp.pinCount[id] == 0 {
			delete(bp.pinCount, id)
		}
	}
}

// FlushPage writes a page to disk if dirty.
func (bp *BufferPool) FlushPage(id uint32) error {
	bp.mu.Lock()
	defer bp.mu.Unlock()
	page, ok := bp.cache[id]
	if !ok {
		return nil
	}
	return bp.flushLocked(page)
}

// FlushAll writes every dirty cached page to disk.
func (bp *BufferPool) FlushAll() error {
	bp.mu.Lock()
	defer bp.mu.Unlock()
	for _, page := range bp.cache {
		if err := bp.flushLocked(page); err != nil {
			return err
		}
	}
	return nil
}

// Close flushes every dirty page then closes the underlying disk manager.
func (bp *BufferPool) Close() error {
	if err := bp.FlushAll(); err != nil {
		return err
	}
	return bp.disk.Close()
}

func (bp *BufferPool) flushLocked(page *Page) error {
	if !page.IsDirty() {
		return nil
	}
	data, err := page.Serialize()
	if err != nil {
		return err
	}
	if err := bp.disk.WritePage(page.ID(), data); err != nil {
		return err
	}
	page.MarkClean()
	return nil
}

func (bp *BufferPool) touch(id uint32) {
	if elem, ok := bp.lruMap[id]; ok {
		bp.lruList.MoveToFront(elem)
	}
}

func (bp *BufferPool) insert(page *Page) {
	bp.cache[page.ID()] = page
	elem := bp.lruList.PushFront(page.ID())
	bp.lruMap[page.ID()] = elem
}

// evictIfNeeded evicts the least recently used unpinned page if the cache
// is at capacity. Caller must hold bp.mu.
func (bp *BufferPool) evictIfNeeded() error {
	if len(bp.cache) < bp.capacity {
		return nil
	}

	for elem := bp.lruList.Back(); elem != nil; elem = elem.Prev() {
		id := elem.Value.(uint32)
		if bp.pinCount[id] > 0 {
			continue
		}
		page, ok := bp.cache[id]
		if !ok {
			bp.lruList.Remove(elem)
			continue
		}
		if err := bp.flushLocked(page); err != nil {
			return dberr.IO(err, "flush page %d before eviction", id)
		}
		delete(bp.cache, id)
		bp.lruList.Remove(elem)
		delete(bp.lruMap, id)
		return nil
	}

	return dberr.IO(nil, "buffer pool exhausted: all %d cached pages are pinned", len(bp.cache))
}

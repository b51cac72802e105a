package storage

import (
	"github.com/cabewaldrop/pagedb/internal/codec"
	"github.com/cabewaldrop/pagedb/internal/config"
	"github.com/cabewaldrop/pagedb/internal/dberr"
	"github.com/cabewaldrop/pagedb/internal/value"
)

// RecordId addresses a single record as the page it lives on plus its slot
// index within that page.
type RecordId struct {
	PageID uint32
	Slot   int
}

// slotRow is the wire shape of one page slot: Present distinguishes a live
// record from a deleted (tombstoned) one so msgpack round-trips a sparse
// slot array without losing slot indices.
type slotRow struct {
	Present bool
	Values  []value.Value
}

// Page is a slotted block of records. Deleting a record tombstones its
// slot rather than shifting later slots down, so a RecordId stays valid
// for the lifetime of the record it names. Slots freed by a delete are
// reused by later inserts before the slot array is grown.
type Page struct {
	id       uint32
	pageSize int
	slots    []slotRow
	dirty    bool
}

// NewPage creates a new, empty page with the given id.
func NewPage(id uint32, pageSize int) *Page {
	return &Page{id: id, pageSize: pageSize, dirty: true}
}

// ID returns the page's id.
func (p *Page) ID() uint32 { return p.id }

// IsDirty reports whether the page has unflushed changes.
func (p *Page) IsDirty() bool { return p.dirty }

// MarkClean clears the dirty flag after a successful flush.
func (p *Page) MarkClean() { p.dirty = false }

// NumSlots returns the length of the slot array, including tombstoned
// slots.
func (p *Page) NumSlots() int { return len(p.slots) }

// GetRecord returns the values stored at slot, or ok=false if the slot is
// out of range or tombstoned.
func (p *Page) GetRecord(slot int) (values []value.Value, ok bool) {
	if slot < 0 || slot >= len(p.slots) || !p.slots[slot].Present {
		return nil, false
	}
	return p.slots[slot].Values, true
}

// IterRecords calls fn for every live (non-tombstoned) slot in ascending
// slot order, stopping at the first error fn returns.
func (p *Page) IterRecords(fn func(slot int, values []value.Value) error) error {
	for i, s := range p.slots {
		if !s.Present {
			continue
		}
		if err := fn(i, s.Values); err != nil {
			return err
		}
	}
	return nil
}

// CanFit reports whether values could be inserted into the page without
// exceeding the page size minus the configured safety margin.
func (p *Page) CanFit(values []value.Value) bool {
	_, ok := p.fitCandidate(values, -1)
	return ok
}

// fitCandidate encodes the page as it would look with values written into
// slot (or appended, if slot is -1 or beyond the current slot count), and
// reports the encoded size plus whether it fits within budget.
func (p *Page) fitCandidate(values []value.Value, slot int) (int, bool) {
	candidate := make([]slotRow, len(p.slots))
	copy(candidate, p.slots)

	if slot < 0 || slot >= len(candidate) {
		candidate = append(candidate, slotRow{Present: true, Values: values})
	} else {
		candidate[slot] = slotRow{Present: true, Values: values}
	}

	encoded, err := codec.Marshal(candidate)
	if err != nil {
		return 0, false
	}
	budget := p.pageSize - config.InsertSafetyMargin
	return len(encoded), len(encoded) <= budget
}

// InsertRecord stores values in the first tombstoned slot, or appends a new
// slot if none is free. It fails with a KindIO error if the page does not
// have room.
func (p *Page) InsertRecord(values []value.Value) (RecordId, error) {
	for i, s := range p.slots {
		if s.Present {
			continue
		}
		size, ok := p.fitCandidate(values, i)
		if !ok {
			return RecordId{}, dberr.IO(nil, "page %d has no room for record (would be %d bytes)", p.id, size)
		}
		p.slots[i] = slotRow{Present: true, Values: values}
		p.dirty = true
		return RecordId{PageID: p.id, Slot: i}, nil
	}

	size, ok := p.fitCandidate(values, -1)
	if !ok {
		return RecordId{}, dberr.IO(nil, "page %d has no room for record (would be %d bytes)", p.id, size)
	}
	p.slots = append(p.slots, slotRow{Present: true, Values: values})
	p.dirty = true
	return RecordId{PageID: p.id, Slot: len(p.slots) - 1}, nil
}

// ReplaceRecord overwrites the values at slot in place, keeping the same
// RecordId. It fails if slot does not hold a live record, or if the new
// values would not fit in the page.
func (p *Page) ReplaceRecord(slot int, values []value.Value) error {
	if slot < 0 || slot >= len(p.slots) || !p.slots[slot].Present {
		return dberr.NotFound("page %d has no record at slot %d", p.id, slot)
	}
	size, ok := p.fitCandidate(values, slot)
	if !ok {
		return dberr.IO(nil, "page %d has no room for updated record (would be %d bytes)", p.id, size)
	}
	p.slots[slot] = slotRow{Present: true, Values: values}
	p.dirty = true
	return nil
}

// DeleteRecord tombstones slot, leaving it available for reuse by a later
// insert but preserving every other slot's RecordId.
func (p *Page) DeleteRecord(slot int) error {
	if slot < 0 || slot >= len(p.slots) || !p.slots[slot].Present {
		return dberr.NotFound("page %d has no record at slot %d", p.id, slot)
	}
	p.slots[slot] = slotRow{}
	p.dirty = true
	return nil
}

// Serialize encodes the page's slot array for storage. The disk manager is
// responsible for padding the result out to the full page size.
func (p *Page) Serialize() ([]byte, error) {
	data, err := codec.Marshal(p.slots)
	if err != nil {
		return nil, dberr.IO(err, "encode page %d", p.id)
	}
	return data, nil
}

// DeserializePage decodes a page previously produced by Serialize.
func DeserializePage(id uint32, pageSize int, data []byte) (*Page, error) {
	var slots []slotRow
	if err := codec.Unmarshal(data, &slots); err != nil {
		return nil, dberr.IO(err, "decode page %d", id)
	}
	return &Page{id: id, pageSize: pageSize, slots: slots}, nil
}

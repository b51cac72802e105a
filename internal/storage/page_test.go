package storage

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cabewaldrop/pagedb/internal/value"
)

func TestNewPage(t *testing.T) {
	page := NewPage(1, 4096)

	require.Equal(t, uint32(1), page.ID())
	require.Equal(t, 0, page.NumSlots())
	require.True(t, page.IsDirty())
}

func TestPageInsertGetDelete(t *testing.T) {
	page := NewPage(0, 4096)

	row := []value.Value{value.Int(7), value.Str("hello")}
	id, err := page.InsertRecord(row)
	require.NoError(t, err)
	require.Equal(t, RecordId{PageID: 0, Slot: 0}, id)
	require.Equal(t, 1, page.NumSlots())

	got, ok := page.GetRecord(0)
	require.True(t, ok)
	require.Equal(t, row, got)

	require.NoError(t, page.DeleteRecord(0))
	_, ok = page.GetRecord(0)
	require.False(t, ok)

	// A deleted slot is not counted as present, but the slot array still
	// has an entry at index 0.
	require.Equal(t, 1, page.NumSlots())
}

func TestPageInsertReusesTombstonedSlot(t *testing.T) {
	page := NewPage(0, 4096)

	id1, err := page.InsertRecord([]value.Value{value.Int(1)})
	require.NoError(t, err)
	_, err = page.InsertRecord([]value.Value{value.Int(2)})
	require.NoError(t, err)

	require.NoError(t, page.DeleteRecord(id1.Slot))

	id3, err := page.InsertRecord([]value.Value{value.Int(3)})
	require.NoError(t, err)
	require.Equal(t, id1.Slot, id3.Slot)
	require.Equal(t, 2, page.NumSlots())
}

func TestPageReplaceRecord(t *testing.T) {
	page := NewPage(0, 4096)
	id, err := page.InsertRecord([]value.Value{value.Int(1)})
	require.NoError(t, err)

	require.NoError(t, page.ReplaceRecord(id.Slot, []value.Value{value.Int(99)}))
	got, ok := page.GetRecord(id.Slot)
	require.True(t, ok)
	require.Equal(t, []value.Value{value.Int(99)}, got)
}

func TestPageReplaceMissingSlotFails(t *testing.T) {
	page := NewPage(0, 4096)
	err := page.ReplaceRecord(3, []value.Value{value.Int(1)})
	require.Error(t, err)
}

func TestPageInsertFailsWhenFull(t *testing.T) {
	page := NewPage(0, 4096)

	big := make([]value.Value, 0)
	for i := 0; i < 500; i++ {
		big = append(big, value.Str("0123456789"))
	}

	_, err := page.InsertRecord(big)
	require.Error(t, err)
	require.Equal(t, 0, page.NumSlots())
}

func TestPageSerializeDeserializeRoundTrip(t *testing.T) {
	page := NewPage(5, 4096)
	_, err := page.InsertRecord([]value.Value{value.Int(1), value.Str("a")})
	require.NoError(t, err)
	_, err = page.InsertRecord([]value.Value{value.Null(), value.Bool(true)})
	require.NoError(t, err)

	data, err := page.Serialize()
	require.NoError(t, err)

	restored, err := DeserializePage(5, 4096, data)
	require.NoError(t, err)
	require.Equal(t, uint32(5), restored.ID())
	require.Equal(t, page.NumSlots(), restored.NumSlots())

	got, ok := restored.GetRecord(0)
	require.True(t, ok)
	require.Equal(t, []value.Value{value.Int(1), value.Str("a")}, got)
}

func TestPageIterRecordsSkipsTombstones(t *testing.T) {
	page := NewPage(0, 4096)
	_, _ = page.InsertRecord([]value.Value{value.Int(1)})
	id2, _ := page.InsertRecord([]value.Value{value.Int(2)})
	_, _ = page.InsertRecord([]value.Value{value.Int(3)})
	require.NoError(t, page.DeleteRecord(id2.Slot))

	var seen []int32
	err := page.IterRecords(func(slot int, values []value.Value) error {
		seen = append(seen, values[0].I)
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, []int32{1, 3}, seen)
}

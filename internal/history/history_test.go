package history

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/billfold/billfold/internal/invoice"
)

func snap(number string) invoice.Snapshot {
	return invoice.Snapshot{
		Invoice:   &invoice.Invoice{ID: "1-" + number, Number: number},
		Timestamp: 1,
	}
}

func TestEmptyHistory(t *testing.T) {
	h := New()

	assert.False(t, h.CanUndo())
	assert.False(t, h.CanRedo())

	_, ok := h.PopUndo()
	assert.False(t, ok)
	_, ok = h.PopRedo()
	assert.False(t, ok)
}

func TestRecordForUndo_LIFO(t *testing.T) {
	h := New()
	h.RecordForUndo(snap("INV-0001"))
	h.RecordForUndo(snap("INV-0002"))

	s, ok := h.PopUndo()
	require.True(t, ok)
	assert.Equal(t, "INV-0002", s.Invoice.Number)

	s, ok = h.PopUndo()
	require.True(t, ok)
	assert.Equal(t, "INV-0001", s.Invoice.Number)

	assert.False(t, h.CanUndo())
}

func TestRecordForUndo_ClearsRedo(t *testing.T) {
	h := New()
	h.PushRedo(snap("INV-0001"))
	h.PushRedo(snap("INV-0002"))
	require.True(t, h.CanRedo())

	h.RecordForUndo(snap("INV-0003"))

	assert.False(t, h.CanRedo(), "a new edit invalidates the redo branch")
	assert.Equal(t, 1, h.UndoLen())
}

func TestPushUndo_KeepsRedo(t *testing.T) {
	h := New()
	h.PushRedo(snap("INV-0001"))

	h.PushUndo(snap("INV-0002"))

	assert.True(t, h.CanRedo(), "PushUndo must not clear the redo stack")
	assert.Equal(t, 1, h.RedoLen())
}

func TestPushUndo_EvictsOldestAtCapacity(t *testing.T) {
	h := New()
	for i := 1; i <= UndoDepth+3; i++ {
		h.PushUndo(snap(fmt.Sprintf("INV-%04d", i)))
	}

	assert.Equal(t, UndoDepth, h.UndoLen())

	// Drain: newest first, oldest surviving entry is #4.
	var last invoice.Snapshot
	for h.CanUndo() {
		last, _ = h.PopUndo()
	}
	assert.Equal(t, "INV-0004", last.Invoice.Number)
}

func TestRedo_Unbounded(t *testing.T) {
	h := New()
	for i := 1; i <= UndoDepth+10; i++ {
		h.PushRedo(snap(fmt.Sprintf("INV-%04d", i)))
	}
	assert.Equal(t, UndoDepth+10, h.RedoLen())
}

func TestUndoRedoRoundTrip(t *testing.T) {
	h := New()
	h.RecordForUndo(snap("INV-0001"))

	s, ok := h.PopUndo()
	require.True(t, ok)
	h.PushRedo(s)

	s, ok = h.PopRedo()
	require.True(t, ok)
	assert.Equal(t, "INV-0001", s.Invoice.Number)
	assert.False(t, h.CanUndo())
	assert.False(t, h.CanRedo())
}

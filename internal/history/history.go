// Package history implements bounded linear undo/redo over invoice
// snapshots: two independent stacks plus the one coupling rule that a
// newly recorded edit invalidates the redo branch.
//
// The stacks are exclusively owned by one engine instance and are never
// exposed for direct mutation. Snapshots are immutable once pushed - the
// engine deep-copies on the way in and treats popped snapshots as
// transfers of ownership.
package history

import "github.com/billfold/billfold/internal/invoice"

// UndoDepth is the fixed capacity of the undo stack. When a push would
// exceed it, the oldest entry is evicted (FIFO) so the newest 50 edits
// are always retained.
//
// The redo stack is deliberately unbounded: it can only hold snapshots
// popped off the bounded undo stack, so it inherits the bound in
// practice.
const UndoDepth = 50

// History holds the undo and redo stacks.
type History struct {
	undo []invoice.Snapshot
	redo []invoice.Snapshot
}

// New creates an empty history.
func New() *History {
	return &History{}
}

// RecordForUndo pushes the current state onto the undo stack ahead of a
// new edit. Any recorded edit makes the redo branch unreachable, so the
// redo stack is cleared - history is strictly linear, never a tree.
func (h *History) RecordForUndo(s invoice.Snapshot) {
	h.PushUndo(s)
	h.redo = h.redo[:0]
}

// PushUndo pushes onto the undo stack without touching the redo stack.
// Used while coordinating a redo. The capacity bound applies here too so
// the undo stack can never exceed UndoDepth by any path.
func (h *History) PushUndo(s invoice.Snapshot) {
	h.undo = append(h.undo, s)
	if len(h.undo) > UndoDepth {
		// FIFO eviction: drop the oldest edit, keep the newest.
		copy(h.undo, h.undo[1:])
		h.undo = h.undo[:UndoDepth]
	}
}

// PopUndo pops the most recent undo snapshot.
func (h *History) PopUndo() (invoice.Snapshot, bool) {
	if len(h.undo) == 0 {
		return invoice.Snapshot{}, false
	}
	s := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	return s, true
}

// PushRedo pushes onto the redo stack. Used while coordinating an undo.
func (h *History) PushRedo(s invoice.Snapshot) {
	h.redo = append(h.redo, s)
}

// PopRedo pops the most recent redo snapshot.
func (h *History) PopRedo() (invoice.Snapshot, bool) {
	if len(h.redo) == 0 {
		return invoice.Snapshot{}, false
	}
	s := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	return s, true
}

// CanUndo reports whether the undo stack is non-empty.
func (h *History) CanUndo() bool {
	return len(h.undo) > 0
}

// CanRedo reports whether the redo stack is non-empty.
func (h *History) CanRedo() bool {
	return len(h.redo) > 0
}

// UndoLen returns the undo stack depth. Diagnostic.
func (h *History) UndoLen() int {
	return len(h.undo)
}

// RedoLen returns the redo stack depth. Diagnostic.
func (h *History) RedoLen() int {
	return len(h.redo)
}

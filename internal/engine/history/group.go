package history

import (
	"github.com/dshills/textcore/internal/engine/buffer"
	"github.com/dshills/textcore/internal/engine/textpos"
)

// GroupScope closes a group opened by History.GroupScope. It is meant for
// defer:
//
//	defer h.GroupScope("reindent").End()
type GroupScope struct {
	h    *History
	done bool
}

// GroupScope opens a group and returns a handle that closes it.
func (h *History) GroupScope(name string) *GroupScope {
	h.BeginGroup(name)
	return &GroupScope{h: h}
}

// End records the group. Calls after the first End or Cancel do nothing.
func (g *GroupScope) End() {
	if !g.done {
		g.done = true
		g.h.EndGroup()
	}
}

// Cancel drops the group without recording it. The buffer keeps the edits.
func (g *GroupScope) Cancel() {
	if !g.done {
		g.done = true
		g.h.CancelGroup()
	}
}

// Transaction runs fn inside a group. The group is recorded when fn
// succeeds and dropped when it fails; fn's error is returned unchanged.
func (h *History) Transaction(name string, fn func() error) error {
	scope := h.GroupScope(name)
	if err := fn(); err != nil {
		scope.Cancel()
		return err
	}
	scope.End()
	return nil
}

// Checkpoint marks a depth in the undo stack together with the revision
// the buffer had there.
type Checkpoint struct {
	undoDepth int
	revision  buffer.RevisionID
}

// Depth returns the number of undo entries at the checkpoint.
func (c Checkpoint) Depth() int { return c.undoDepth }

// CreateCheckpoint marks the current position in history. buf is the
// buffer the history records.
func (h *History) CreateCheckpoint(buf *buffer.Buffer) Checkpoint {
	h.mu.Lock()
	defer h.mu.Unlock()
	return Checkpoint{undoDepth: len(h.undo), revision: buf.RevisionID()}
}

// UndoToCheckpoint undoes entries until the stack is back at the
// checkpoint's depth and returns every inverse edit in the order applied.
// On error the edits undone so far stay undone.
func (h *History) UndoToCheckpoint(cp Checkpoint, buf *buffer.Buffer) ([]textpos.Edit, error) {
	var edits []textpos.Edit
	for h.UndoCount() > cp.undoDepth {
		step, err := h.Undo(buf)
		if err != nil {
			return edits, err
		}
		edits = append(edits, step...)
	}
	return edits, nil
}

// RedoToCheckpoint redoes entries until the stack reaches the checkpoint's
// depth or the redo stack runs out, and returns the edits in the order
// applied.
func (h *History) RedoToCheckpoint(cp Checkpoint, buf *buffer.Buffer) ([]textpos.Edit, error) {
	var edits []textpos.Edit
	for h.UndoCount() < cp.undoDepth && h.CanRedo() {
		step, err := h.Redo(buf)
		if err != nil {
			return edits, err
		}
		edits = append(edits, step...)
	}
	return edits, nil
}

// AtCheckpoint reports whether buf is at the content cp was taken on.
func (h *History) AtCheckpoint(cp Checkpoint, buf *buffer.Buffer) bool {
	return h.UndoCount() == cp.undoDepth && buf.RevisionID() == cp.revision
}

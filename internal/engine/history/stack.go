package history

import (
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/dshills/textcore/internal/engine/buffer"
	"github.com/dshills/textcore/internal/engine/textpos"
)

var (
	// ErrNothingToUndo is returned by Undo when the undo stack is empty.
	ErrNothingToUndo = errors.New("nothing to undo")
	// ErrNothingToRedo is returned by Redo when the redo stack is empty.
	ErrNothingToRedo = errors.New("nothing to redo")
	// ErrDiverged means the buffer was edited without recording the edit,
	// so the top entry no longer describes the current content.
	ErrDiverged = errors.New("buffer diverged from history")
)

// DefaultMaxEntries bounds the undo stack when no size is given.
const DefaultMaxEntries = 1000

// stack is a LIFO of entries, newest last.
type stack []*Entry

func (s stack) top() (*Entry, bool) {
	if len(s) == 0 {
		return nil, false
	}
	return s[len(s)-1], true
}

func (s *stack) push(e *Entry) { *s = append(*s, e) }

func (s *stack) pop() {
	*s = (*s)[:len(*s)-1]
}

// trim drops the oldest entries beyond limit.
func (s *stack) trim(limit int) {
	if n := len(*s) - limit; n > 0 {
		*s = (*s)[n:]
	}
}

func (s stack) infos() []OperationInfo {
	out := make([]OperationInfo, 0, len(s))
	for _, e := range s {
		out = append(out, e.info())
	}
	return out
}

// openGroup collects edits between BeginGroup and EndGroup. entry stays
// nil until the first edit arrives.
type openGroup struct {
	name  string
	entry *Entry
}

// History records snapshot pairs for one buffer and moves the buffer
// between them.
type History struct {
	mu sync.Mutex

	undo stack
	redo stack

	group *openGroup
	limit int
}

// New returns an empty history holding at most maxEntries undo entries.
// A non-positive maxEntries selects DefaultMaxEntries.
func New(maxEntries int) *History {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &History{limit: maxEntries}
}

// Record adds the edits, in application order, that turned before into
// after as one entry. No-op edits are ignored. While grouping, the edits
// join the open group.
func (h *History) Record(description string, before, after *buffer.Snapshot, edits ...textpos.Edit) {
	edits = slices.DeleteFunc(slices.Clone(edits), textpos.Edit.IsNoop)
	if len(edits) == 0 {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if g := h.group; g != nil {
		if g.entry == nil {
			g.entry = &Entry{Description: g.name, Before: before, Timestamp: time.Now()}
		}
		g.entry.After = after
		g.entry.Edits = append(g.entry.Edits, edits...)
		return
	}

	h.commit(&Entry{
		Description: description,
		Before:      before,
		After:       after,
		Edits:       edits,
		Timestamp:   time.Now(),
	})
}

// commit pushes e as the newest undo entry and forgets the redo branch.
// h.mu must be held.
func (h *History) commit(e *Entry) {
	h.undo.push(e)
	h.undo.trim(h.limit)
	h.redo = nil
}

// Undo restores the state before the last entry and returns the inverse
// edits reported to the buffer's listeners. The buffer is updated without
// holding the history lock.
func (h *History) Undo(buf *buffer.Buffer) ([]textpos.Edit, error) {
	entry, err := h.take(&h.undo, ErrNothingToUndo, buf.RevisionID(), (*Entry).afterRevision)
	if err != nil {
		return nil, err
	}

	edits := entry.Inverse()
	if err := buf.Restore(entry.Before, edits...); err != nil {
		h.give(&h.undo, entry)
		return nil, err
	}
	h.give(&h.redo, entry)
	return edits, nil
}

// Redo reinstates the last undone entry and returns its edits.
func (h *History) Redo(buf *buffer.Buffer) ([]textpos.Edit, error) {
	entry, err := h.take(&h.redo, ErrNothingToRedo, buf.RevisionID(), (*Entry).beforeRevision)
	if err != nil {
		return nil, err
	}

	if err := buf.Restore(entry.After, entry.Edits...); err != nil {
		h.give(&h.redo, entry)
		return nil, err
	}
	h.give(&h.undo, entry)
	return entry.Edits, nil
}

// take pops the top of s if the buffer is at the revision the entry
// expects.
func (h *History) take(s *stack, empty error, have buffer.RevisionID, want func(*Entry) buffer.RevisionID) (*Entry, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	entry, ok := s.top()
	if !ok {
		return nil, empty
	}
	if want(entry) != have {
		return nil, ErrDiverged
	}
	s.pop()
	return entry, nil
}

func (h *History) give(s *stack, e *Entry) {
	h.mu.Lock()
	s.push(e)
	h.mu.Unlock()
}

// CanUndo reports whether an entry can be undone.
func (h *History) CanUndo() bool { return h.UndoCount() > 0 }

// CanRedo reports whether an entry can be redone.
func (h *History) CanRedo() bool { return h.RedoCount() > 0 }

// UndoCount returns the depth of the undo stack.
func (h *History) UndoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undo)
}

// RedoCount returns the depth of the redo stack.
func (h *History) RedoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redo)
}

// BeginGroup opens a group; edits recorded until EndGroup undo as one
// entry named name. Nested calls are ignored.
func (h *History) BeginGroup(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.group == nil {
		h.group = &openGroup{name: name}
	}
}

// EndGroup closes the open group. A group without edits records nothing.
func (h *History) EndGroup() {
	h.mu.Lock()
	defer h.mu.Unlock()

	g := h.group
	h.group = nil
	if g != nil && g.entry != nil {
		h.commit(g.entry)
	}
}

// CancelGroup closes the open group without recording it. The buffer keeps
// the group's edits.
func (h *History) CancelGroup() {
	h.mu.Lock()
	h.group = nil
	h.mu.Unlock()
}

// IsGrouping reports whether a group is open.
func (h *History) IsGrouping() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.group != nil
}

// Clear drops every entry and any open group.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.undo, h.redo, h.group = nil, nil, nil
}

// UndoInfo describes the undo stack, oldest first.
func (h *History) UndoInfo() []OperationInfo {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.undo.infos()
}

// RedoInfo describes the redo stack, oldest first.
func (h *History) RedoInfo() []OperationInfo {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.redo.infos()
}

// PeekUndo describes the entry Undo would revert.
func (h *History) PeekUndo() (OperationInfo, bool) {
	return h.peek(&h.undo)
}

// PeekRedo describes the entry Redo would reinstate.
func (h *History) PeekRedo() (OperationInfo, bool) {
	return h.peek(&h.redo)
}

func (h *History) peek(s *stack) (OperationInfo, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if e, ok := s.top(); ok {
		return e.info(), true
	}
	return OperationInfo{}, false
}

// SetMaxEntries changes the undo limit, dropping the oldest entries if the
// stack is already deeper. A non-positive n selects DefaultMaxEntries.
func (h *History) SetMaxEntries(n int) {
	if n <= 0 {
		n = DefaultMaxEntries
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.limit = n
	h.undo.trim(n)
}

// MaxEntries returns the undo limit.
func (h *History) MaxEntries() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.limit
}

package history

import (
	"time"

	"github.com/dshills/textcore/internal/engine/buffer"
	"github.com/dshills/textcore/internal/engine/textpos"
)

// Entry is one undo unit: the snapshots on either side of one or more
// edits.
type Entry struct {
	Description string
	Before      *buffer.Snapshot
	After       *buffer.Snapshot
	// Edits turn Before into After, in application order.
	Edits     []textpos.Edit
	Timestamp time.Time
}

// Inverse returns the edits that turn After back into Before.
func (e *Entry) Inverse() []textpos.Edit {
	out := make([]textpos.Edit, len(e.Edits))
	for i, ed := range e.Edits {
		out[len(e.Edits)-1-i] = ed.Invert()
	}
	return out
}

// BytesDelta returns the change in document length.
func (e *Entry) BytesDelta() int64 {
	var total int64
	for _, ed := range e.Edits {
		total += ed.Delta()
	}
	return total
}

func (e *Entry) beforeRevision() buffer.RevisionID { return e.Before.RevisionID() }

func (e *Entry) afterRevision() buffer.RevisionID { return e.After.RevisionID() }

func (e *Entry) info() OperationInfo {
	return OperationInfo{
		Description: e.Description,
		Timestamp:   e.Timestamp,
		BytesDelta:  e.BytesDelta(),
		Edits:       len(e.Edits),
	}
}

// OperationInfo provides read-only info about an entry.
// Used for displaying undo/redo history to users.
type OperationInfo struct {
	Description string    // Human-readable description
	Timestamp   time.Time // When the entry was recorded
	BytesDelta  int64     // Positive for insertions, negative for deletions
	Edits       int       // Number of edits in the entry
}

package buffer

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"github.com/dshills/textcore/internal/engine/textpos"
)

// ErrOverlappingChanges is returned by ApplyChanges for a batch whose
// ranges overlap.
var ErrOverlappingChanges = errors.New("overlapping changes")

// Change replaces Length bytes at Offset with Text. Offsets in a batch
// refer to the document before any change of the batch applies.
type Change struct {
	Offset int64
	Length int64
	Text   string
}

// ApplyChanges applies a batch of non-overlapping changes under one lock
// and returns the resulting snapshot and the applied edits. Changes apply
// from the highest offset down, so each edit's offset is valid in the
// document it was applied to; the edits are reported to listeners and
// returned in that order. Insertions at the same offset keep their batch
// order in the result. An insertion may not sit at the start of a
// deletion that comes earlier in the batch.
//
// Nothing is applied when any change is out of range or the ranges
// overlap. A load failure part way keeps the edits applied so far; they
// are reported and returned with the error.
func (b *Buffer) ApplyChanges(changes []Change) (*Snapshot, []textpos.Edit, error) {
	b.mu.Lock()
	edits, err := b.applyChangesLocked(changes)
	snap := b.snapshotLocked()
	b.mu.Unlock()

	for _, e := range edits {
		b.notify(e)
	}
	return snap, edits, err
}

func (b *Buffer) applyChangesLocked(changes []Change) ([]textpos.Edit, error) {
	n := b.tree.Len()
	order := make([]int, len(changes))
	for i, c := range changes {
		if c.Offset < 0 || c.Offset > n || c.Length < 0 {
			return nil, fmt.Errorf("change %d [%d, +%d) (len %d): %w", i, c.Offset, c.Length, n, textpos.ErrOutOfRange)
		}
		order[i] = i
	}
	// Descending by offset; among equal offsets the later change goes
	// first so earlier ones end up in front of it.
	slices.SortStableFunc(order, func(x, y int) int {
		if c := cmp.Compare(changes[y].Offset, changes[x].Offset); c != 0 {
			return c
		}
		return cmp.Compare(y, x)
	})
	for k := 1; k < len(order); k++ {
		hi, lo := changes[order[k-1]], changes[order[k]]
		if lo.Offset+lo.Length > hi.Offset {
			return nil, fmt.Errorf("changes at %d and %d: %w", lo.Offset, hi.Offset, ErrOverlappingChanges)
		}
	}

	edits := make([]textpos.Edit, 0, len(changes))
	for _, i := range order {
		c := changes[i]
		e, err := b.applyLocked(c.Offset, c.Length, c.Text)
		if err != nil {
			return edits, err
		}
		if !e.IsNoop() {
			edits = append(edits, e)
		}
	}
	return edits, nil
}

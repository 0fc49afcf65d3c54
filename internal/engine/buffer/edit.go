package buffer

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/dshills/textcore/internal/engine/piecetree"
	"github.com/dshills/textcore/internal/engine/textpos"
)

// Insert inserts text at offset and returns the resulting snapshot.
// An offset inside a multi-byte character moves to the character start.
func (b *Buffer) Insert(offset int64, text string) (*Snapshot, error) {
	return b.Replace(offset, 0, text)
}

// Delete removes length bytes at offset and returns the resulting
// snapshot. A length running past the end is clamped.
func (b *Buffer) Delete(offset, length int64) (*Snapshot, error) {
	return b.Replace(offset, length, "")
}

// Replace replaces length bytes at offset with text. The replaced range
// grows outward to whole characters.
func (b *Buffer) Replace(offset, length int64, text string) (*Snapshot, error) {
	b.mu.Lock()
	e, err := b.applyLocked(offset, length, text)
	if err != nil {
		b.mu.Unlock()
		return nil, err
	}
	snap := b.snapshotLocked()
	b.mu.Unlock()

	b.notify(e)
	return snap, nil
}

// InsertAtPosition inserts text at pos and returns the resulting snapshot
// and the offset the text was inserted at. For line/column positions the
// lookup and the tree split share one descent. Positions that can only be
// estimated fail with ErrUnknownLines.
func (b *Buffer) InsertAtPosition(pos textpos.Position, text string) (*Snapshot, int64, error) {
	b.mu.Lock()
	e, err := b.insertAtPositionLocked(pos, text)
	if err != nil {
		b.mu.Unlock()
		return nil, 0, err
	}
	snap := b.snapshotLocked()
	b.mu.Unlock()

	b.notify(e)
	return snap, e.Offset, nil
}

func (b *Buffer) insertAtPositionLocked(pos textpos.Position, text string) (textpos.Edit, error) {
	pt, isPoint := pos.Point()
	if isPoint && pt.Line >= 0 && pt.Column >= 0 {
		pieces := b.piecesFor(text)
		t, off, err := b.tree.InsertAtPosition(pt, pieces...)
		if err == nil {
			if !b.isBoundary(off) {
				return b.applyLocked(off, 0, text)
			}
			b.commit(t, off)
			return textpos.Edit{Offset: off, Inserted: int64(len(text))}, nil
		}
		if !errors.Is(err, textpos.ErrUnknownLines) && !errors.Is(err, textpos.ErrNotLoaded) {
			return textpos.Edit{}, err
		}
	}

	off, err := b.exactOffset(pos)
	if err != nil {
		return textpos.Edit{}, err
	}
	return b.applyLocked(off, 0, text)
}

// DeletePositionRange removes the bytes between two positions and returns
// the resulting snapshot and the removed range.
func (b *Buffer) DeletePositionRange(from, to textpos.Position) (*Snapshot, textpos.Range, error) {
	b.mu.Lock()
	e, err := b.deletePositionRangeLocked(from, to)
	if err != nil {
		b.mu.Unlock()
		return nil, textpos.Range{}, err
	}
	snap := b.snapshotLocked()
	b.mu.Unlock()

	b.notify(e)
	return snap, textpos.Range{Start: e.Offset, End: e.Offset + e.Removed}, nil
}

func (b *Buffer) deletePositionRangeLocked(from, to textpos.Position) (textpos.Edit, error) {
	fp, ok1 := from.Point()
	tp, ok2 := to.Point()
	if ok1 && ok2 {
		t, removed, err := b.tree.DeletePositionRange(fp, tp)
		if err == nil {
			if !b.isBoundary(removed.Start) || !b.isBoundary(removed.End) {
				return b.applyLocked(removed.Start, removed.Len(), "")
			}
			b.commit(t, removed.Start)
			return textpos.Edit{Offset: removed.Start, Removed: removed.Len()}, nil
		}
		if !errors.Is(err, textpos.ErrUnknownLines) && !errors.Is(err, textpos.ErrNotLoaded) {
			return textpos.Edit{}, err
		}
	}

	start, err := b.exactOffset(from)
	if err != nil {
		return textpos.Edit{}, err
	}
	end, err := b.exactOffset(to)
	if err != nil {
		return textpos.Edit{}, err
	}
	r := textpos.NewRange(start, end)
	return b.applyLocked(r.Start, r.Len(), "")
}

// exactOffset resolves pos, refusing estimated results.
func (b *Buffer) exactOffset(pos textpos.Position) (int64, error) {
	off, ex, err := b.positionToOffsetLocked(pos)
	if err != nil {
		return 0, err
	}
	if ex != textpos.Exact {
		return 0, fmt.Errorf("edit at %s: %w", pos, textpos.ErrUnknownLines)
	}
	return off, nil
}

// applyLocked replaces [offset, offset+length) with text. Caller holds the
// write lock.
func (b *Buffer) applyLocked(offset, length int64, text string) (textpos.Edit, error) {
	if offset < 0 || offset > b.tree.Len() || length < 0 {
		return textpos.Edit{}, fmt.Errorf("edit [%d, +%d) (len %d): %w",
			offset, length, b.tree.Len(), textpos.ErrOutOfRange)
	}
	end := min(offset+length, b.tree.Len())

	wide := b.widen(offset, end)
	if err := b.materialize(wide.Start, wide.End); err != nil {
		return textpos.Edit{}, err
	}
	_, r, err := b.readBoundaries(offset, end)
	if err != nil {
		return textpos.Edit{}, err
	}
	if length == 0 {
		r.End = r.Start
	}

	e := textpos.Edit{Offset: r.Start, Removed: r.Len(), Inserted: int64(len(text))}
	if e.IsNoop() {
		return e, nil
	}
	t, err := b.tree.Replace(r.Start, r.Len(), b.piecesFor(text)...)
	if err != nil {
		return textpos.Edit{}, err
	}
	b.commit(t, r.Start)
	return e, nil
}

// commit makes t current after an edit at offset.
func (b *Buffer) commit(t piecetree.Tree, offset int64) {
	b.tree = t
	b.revision = NewRevisionID()
	b.anchors.truncate(offset)
	if offset < lineEndingSample {
		b.lineEndingKnown = false
	}
}

// piecesFor stores text and returns the pieces referencing it. Short text
// goes to the shared append units; long text gets a unit of its own.
func (b *Buffer) piecesFor(text string) []piecetree.Piece {
	if text == "" {
		return nil
	}
	n := int64(len(text))
	if n <= b.cfg.addCapacity {
		u, start := b.store.Append([]byte(text))
		return []piecetree.Piece{piecetree.NewPiece(u, start, n)}
	}
	u := b.store.NewLoaded([]byte(text))
	return []piecetree.Piece{piecetree.NewPiece(u, 0, n)}
}

// isBoundary reports whether offset starts a character in the current
// tree. Unreadable bytes count as not a boundary.
func (b *Buffer) isBoundary(offset int64) bool {
	if offset <= 0 || offset >= b.tree.Len() {
		return true
	}
	data, err := b.tree.Bytes(offset, offset+1)
	if err != nil || len(data) == 0 {
		return false
	}
	return utf8.RuneStart(data[0])
}

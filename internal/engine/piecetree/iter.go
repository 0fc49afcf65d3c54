package piecetree

import "github.com/dshills/textcore/internal/engine/textpos"

// Segment is the visible part of one piece within an iterated range.
type Segment struct {
	Piece Piece
	// DocStart is the document offset of the piece's first byte.
	DocStart int64
	// Lo and Hi bound the visible bytes, relative to the piece start.
	Lo, Hi int64
}

// Len returns the number of visible bytes.
func (s Segment) Len() int64 {
	return s.Hi - s.Lo
}

// Range returns the visible bytes as a document range.
func (s Segment) Range() textpos.Range {
	return textpos.Range{Start: s.DocStart + s.Lo, End: s.DocStart + s.Hi}
}

// Bytes returns the visible bytes; it fails for unloaded pieces.
func (s Segment) Bytes() ([]byte, error) {
	return s.Piece.Bytes(s.Lo, s.Hi)
}

// Iterator walks the pieces overlapping a byte range in document order.
// Creating it costs one descent; each Next is amortized O(1).
type Iterator struct {
	root       *Node
	start, end int64
	c          cursor
	started    bool
	done       bool
	seg        Segment
}

// Iter returns an iterator over the pieces overlapping [start, end),
// clamped to the document.
func (t Tree) Iter(start, end int64) *Iterator {
	r := textpos.NewRange(start, end).Clamp(t.Len())
	return &Iterator{root: t.root, start: r.Start, end: r.End}
}

// Next advances to the next segment.
func (it *Iterator) Next() bool {
	if it.done {
		return false
	}
	if !it.started {
		it.started = true
		if it.root == nil || it.start >= it.end {
			it.done = true
			return false
		}
		it.c, _ = seekOffset(it.root, it.start)
	} else if !it.c.next() || it.c.start >= it.end {
		it.done = true
		return false
	}

	lo := max(it.start-it.c.start, 0)
	hi := min(it.end-it.c.start, it.c.leaf.Len())
	it.seg = Segment{Piece: it.c.leaf.piece, DocStart: it.c.start, Lo: lo, Hi: hi}
	return true
}

// Segment returns the current segment.
func (it *Iterator) Segment() Segment {
	return it.seg
}

package piecetree

import (
	"bytes"
	"fmt"

	"github.com/dshills/textcore/internal/engine/textpos"
)

// Tree is an immutable sequence of pieces. The zero value is an empty tree.
type Tree struct {
	root *Node
}

// New creates an empty tree.
func New() Tree {
	return Tree{}
}

// FromPieces creates a balanced tree holding pieces in order.
func FromPieces(pieces ...Piece) Tree {
	return Tree{root: build(pieces)}
}

// Len returns the document length in bytes.
func (t Tree) Len() int64 {
	return t.root.Len()
}

// IsEmpty returns true if the tree holds no bytes.
func (t Tree) IsEmpty() bool {
	return t.root == nil
}

// Summary returns the aggregate of the whole tree.
func (t Tree) Summary() Summary {
	if t.root == nil {
		return Summary{}
	}
	return t.root.summary
}

// LineFeeds returns the number of line feeds, or unknown if any piece is
// unloaded.
func (t Tree) LineFeeds() textpos.Count {
	return t.Summary().LineFeeds
}

// LineCount returns the number of lines (line feeds + 1).
func (t Tree) LineCount() textpos.Count {
	return t.LineFeeds().Add(textpos.Known(1))
}

// PieceCount returns the number of pieces.
func (t Tree) PieceCount() int {
	return t.Summary().Pieces
}

// Height returns the height of the tree, -1 when empty.
func (t Tree) Height() int {
	return int(height(t.root))
}

// Pieces returns all pieces in document order.
func (t Tree) Pieces() []Piece {
	return t.root.appendPieces(make([]Piece, 0, t.PieceCount()))
}

// Equal reports whether two trees share the same root.
func (t Tree) Equal(other Tree) bool {
	return t.root == other.root
}

func (t Tree) checkOffset(offset int64) error {
	if offset < 0 || offset > t.Len() {
		return fmt.Errorf("offset %d (len %d): %w", offset, t.Len(), textpos.ErrOutOfRange)
	}
	return nil
}

// Split returns the trees holding [0, offset) and [offset, Len).
func (t Tree) Split(offset int64) (Tree, Tree, error) {
	if err := t.checkOffset(offset); err != nil {
		return t, Tree{}, err
	}
	l, r := splitNode(t.root, offset)
	return Tree{root: l}, Tree{root: r}, nil
}

// Concat returns the concatenation of a and b.
func Concat(a, b Tree) Tree {
	return Tree{root: join(a.root, b.root)}
}

// Insert returns a tree with pieces inserted at offset.
func (t Tree) Insert(offset int64, pieces ...Piece) (Tree, error) {
	if err := t.checkOffset(offset); err != nil {
		return t, err
	}
	l, r := splitNode(t.root, offset)
	return Tree{root: splice(l, pieces, r)}, nil
}

// Delete returns a tree without [offset, offset+length). A length running
// past the end is clamped.
func (t Tree) Delete(offset, length int64) (Tree, error) {
	return t.Replace(offset, length)
}

// Replace returns a tree where [offset, offset+length) is replaced by
// pieces. A length running past the end is clamped.
func (t Tree) Replace(offset, length int64, pieces ...Piece) (Tree, error) {
	if err := t.checkOffset(offset); err != nil {
		return t, err
	}
	if length < 0 {
		return t, fmt.Errorf("negative length %d: %w", length, textpos.ErrOutOfRange)
	}
	end := min(offset+length, t.Len())
	l, rest := splitNode(t.root, offset)
	_, r := splitNode(rest, end-offset)
	return Tree{root: splice(l, pieces, r)}, nil
}

// splice joins l, the new pieces and r. A single new piece that continues
// the last piece of l in the same unit extends it instead of adding a leaf,
// so consecutive typing does not grow the piece count.
func splice(l *Node, pieces []Piece, r *Node) *Node {
	if len(pieces) == 1 && l != nil && pieces[0].Length > 0 {
		last := lastLeaf(l)
		if last.piece.adjoins(pieces[0]) {
			head, _ := splitNode(l, l.Len()-last.Len())
			merged := newLeaf(last.piece.merge(pieces[0]))
			return join(join(head, merged), r)
		}
	}
	return join(join(l, build(pieces)), r)
}

// PieceAt returns the piece containing offset and the document offset of
// its first byte. Offsets on a boundary resolve to the following piece.
func (t Tree) PieceAt(offset int64) (Piece, int64, bool) {
	if t.root == nil || offset < 0 || offset >= t.Len() {
		return Piece{}, 0, false
	}
	c, _ := seekOffset(t.root, offset)
	return c.leaf.piece, c.start, true
}

// Bytes returns a copy of [start, end). Every piece in the range must be
// loaded.
func (t Tree) Bytes(start, end int64) ([]byte, error) {
	r := textpos.NewRange(start, end).Clamp(t.Len())
	buf := make([]byte, 0, r.Len())
	for it := t.Iter(r.Start, r.End); it.Next(); {
		b, err := it.Segment().Bytes()
		if err != nil {
			return nil, err
		}
		buf = append(buf, b...)
	}
	return buf, nil
}

// String returns the whole document, with unloaded regions shown as '?'.
// Intended for tests and debugging.
func (t Tree) String() string {
	var sb bytes.Buffer
	for it := t.Iter(0, t.Len()); it.Next(); {
		seg := it.Segment()
		b, err := seg.Bytes()
		if err != nil {
			sb.Write(bytes.Repeat([]byte{'?'}, int(seg.Len())))
			continue
		}
		sb.Write(b)
	}
	return sb.String()
}

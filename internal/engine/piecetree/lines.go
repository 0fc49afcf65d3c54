package piecetree

import (
	"fmt"

	"github.com/dshills/textcore/internal/engine/textpos"
)

// seekLine descends to the leaf holding the first byte of line and returns
// the offset of that byte within the leaf.
//
// A subtree with an unknown line-feed count is entered only when the target
// must lie in it or nowhere, so the descent stays single-path. Reaching an
// unloaded piece before the target line fails with ErrUnknownLines.
func seekLine(root *Node, line int64) (cursor, int64, error) {
	c := cursor{path: make([]frame, 0, int(root.height)+1)}
	n := root
	rem := line
	for !n.IsLeaf() {
		if rem > 0 {
			if lf, ok := n.left.summary.LineFeeds.Value(); ok && rem > lf {
				c.path = append(c.path, frame{node: n, right: true})
				c.start += n.left.Len()
				rem -= lf
				n = n.right
				continue
			}
		}
		c.path = append(c.path, frame{node: n})
		n = n.left
	}
	c.leaf = n
	if rem == 0 {
		return c, 0, nil
	}

	p := n.piece
	if !p.IsLoaded() {
		return c, 0, fmt.Errorf("line %d: %w", line, textpos.ErrUnknownLines)
	}
	pos := p.Unit.NthLineFeed(p.Start, p.End(), rem)
	if pos < 0 {
		return c, 0, fmt.Errorf("line %d: %w", line, textpos.ErrOutOfRange)
	}
	return c, pos - p.Start + 1, nil
}

// advanceColumn moves col bytes forward from (c, inLeaf) without crossing a
// line feed or the document end, crossing into following leaves as needed.
func advanceColumn(c *cursor, inLeaf, col int64) (int64, error) {
	for col > 0 {
		p := c.leaf.piece
		if avail := p.Length - inLeaf; avail > 0 {
			if !p.IsLoaded() {
				return inLeaf, fmt.Errorf("column in unloaded region: %w", textpos.ErrNotLoaded)
			}
			take := min(avail, col)
			from := p.Start + inLeaf
			if nl := p.Unit.NthLineFeed(from, from+take, 1); nl >= 0 {
				return inLeaf + (nl - from), nil
			}
			inLeaf += take
			col -= take
			continue
		}
		if !c.next() {
			break
		}
		inLeaf = 0
	}
	return inLeaf, nil
}

// locate resolves a point to a cursor position, clamping the column to the
// end of its line.
func (t Tree) locate(pt textpos.Point) (cursor, int64, error) {
	if pt.Line < 0 || pt.Column < 0 {
		return cursor{}, 0, fmt.Errorf("point %s: %w", pt, textpos.ErrOutOfRange)
	}
	if t.root == nil {
		if pt.Line > 0 {
			return cursor{}, 0, fmt.Errorf("line %d of empty document: %w", pt.Line, textpos.ErrOutOfRange)
		}
		return cursor{}, 0, nil
	}
	if lf, ok := t.LineFeeds().Value(); ok && pt.Line > lf {
		return cursor{}, 0, fmt.Errorf("line %d (lines %d): %w", pt.Line, lf+1, textpos.ErrOutOfRange)
	}
	c, in, err := seekLine(t.root, pt.Line)
	if err != nil {
		return c, in, err
	}
	in, err = advanceColumn(&c, in, pt.Column)
	return c, in, err
}

// LineStart returns the offset of the first byte of line.
func (t Tree) LineStart(line int64) (int64, error) {
	return t.PointToOffset(textpos.Point{Line: line})
}

// PointToOffset converts a line/column point to a byte offset. Columns past
// the end of the line clamp to the line end.
func (t Tree) PointToOffset(pt textpos.Point) (int64, error) {
	c, in, err := t.locate(pt)
	if err != nil {
		return 0, err
	}
	return c.start + in, nil
}

// linesBefore counts the line feeds in [0, offset).
func (t Tree) linesBefore(offset int64) (int64, error) {
	n := t.root
	rem := offset
	var lines int64
	for !n.IsLeaf() {
		ll := n.left.Len()
		if rem <= ll {
			n = n.left
			continue
		}
		lf, ok := n.left.summary.LineFeeds.Value()
		if !ok {
			return 0, fmt.Errorf("offset %d: %w", offset, textpos.ErrUnknownLines)
		}
		lines += lf
		rem -= ll
		n = n.right
	}
	if rem == 0 {
		return lines, nil
	}
	p := n.piece
	lf, ok := p.Unit.CountLineFeeds(p.Start, p.Start+rem).Value()
	if !ok {
		return 0, fmt.Errorf("offset %d: %w", offset, textpos.ErrUnknownLines)
	}
	return lines + lf, nil
}

// OffsetToPoint converts a byte offset to a line/column point.
func (t Tree) OffsetToPoint(offset int64) (textpos.Point, error) {
	if err := t.checkOffset(offset); err != nil {
		return textpos.Point{}, err
	}
	if t.root == nil {
		return textpos.Point{}, nil
	}
	line, err := t.linesBefore(offset)
	if err != nil {
		return textpos.Point{}, err
	}
	c, in, err := seekLine(t.root, line)
	if err != nil {
		return textpos.Point{}, err
	}
	return textpos.Point{Line: line, Column: offset - (c.start + in)}, nil
}

// InsertAtPosition inserts pieces at a line/column point, resolving the
// point and splitting along the same descent. It returns the new tree and
// the offset the pieces were inserted at.
func (t Tree) InsertAtPosition(pt textpos.Point, pieces ...Piece) (Tree, int64, error) {
	c, in, err := t.locate(pt)
	if err != nil {
		return t, 0, err
	}
	if t.root == nil {
		return FromPieces(pieces...), 0, nil
	}
	offset := c.start + in
	l, r := c.split(in)
	return Tree{root: splice(l, pieces, r)}, offset, nil
}

// DeletePositionRange removes the bytes between two points and returns the
// removed document range. Each endpoint is resolved by the descent that
// splits the tree there.
func (t Tree) DeletePositionRange(from, to textpos.Point) (Tree, textpos.Range, error) {
	if to.Before(from) {
		from, to = to, from
	}
	cs, ins, err := t.locate(from)
	if err != nil {
		return t, textpos.Range{}, err
	}
	ce, ine, err := t.locate(to)
	if err != nil {
		return t, textpos.Range{}, err
	}
	if t.root == nil {
		return t, textpos.Range{}, nil
	}
	removed := textpos.Range{Start: cs.start + ins, End: ce.start + ine}
	l, _ := cs.split(ins)
	_, r := ce.split(ine)
	return Tree{root: join(l, r)}, removed, nil
}

package buffer

import (
	"fmt"

	"github.com/cespare/xxhash/v2"

	"github.com/dshills/textcore/internal/engine/piecetree"
	"github.com/dshills/textcore/internal/engine/search"
	"github.com/dshills/textcore/internal/engine/storage"
	"github.com/dshills/textcore/internal/engine/textpos"
)

// Snapshot provides a read-only view of a buffer at a specific point in time.
// It is safe for concurrent access and will not change even if the original
// buffer is modified.
type Snapshot struct {
	tree      piecetree.Tree
	store     *storage.Store
	revision  RevisionID
	chunkSize int64
}

// Len returns the total byte length of the snapshot.
func (s *Snapshot) Len() int64 {
	return s.tree.Len()
}

// IsEmpty returns true if the snapshot is empty.
func (s *Snapshot) IsEmpty() bool {
	return s.tree.IsEmpty()
}

// RevisionID returns the revision ID of this snapshot.
func (s *Snapshot) RevisionID() RevisionID {
	return s.revision
}

// LineCount returns the number of lines, unknown while any region is
// unloaded.
func (s *Snapshot) LineCount() textpos.Count {
	return s.tree.LineCount()
}

// PieceCount returns the number of pieces.
func (s *Snapshot) PieceCount() int {
	return s.tree.PieceCount()
}

// ReadRange returns the bytes in [start, end), clamped to the snapshot.
// It fails with ErrNotLoaded if the range touches unloaded bytes; use
// Buffer.ReadRange or Buffer.Prepare to materialize them.
func (s *Snapshot) ReadRange(start, end int64) ([]byte, error) {
	return s.tree.Bytes(start, end)
}

// Text returns the full snapshot content as a string.
func (s *Snapshot) Text() (string, error) {
	data, err := s.tree.Bytes(0, s.tree.Len())
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// OffsetToPoint converts a byte offset to line/column.
func (s *Snapshot) OffsetToPoint(offset int64) (textpos.Point, error) {
	return s.tree.OffsetToPoint(offset)
}

// PointToOffset converts line/column to byte offset.
func (s *Snapshot) PointToOffset(pt textpos.Point) (int64, error) {
	return s.tree.PointToOffset(pt)
}

// LineStartOffset returns the byte offset of the start of a line.
func (s *Snapshot) LineStartOffset(line int64) (int64, error) {
	return s.tree.LineStart(line)
}

// PointUTF16 is a line and column position where the column is measured
// in UTF-16 code units, as used by the language server protocol.
type PointUTF16 struct {
	Line   int64
	Column int64
}

// String returns a human-readable representation of the point.
func (p PointUTF16) String() string {
	return fmt.Sprintf("(%d:%d utf16)", p.Line, p.Column)
}

// OffsetToPointUTF16 converts a byte offset to UTF-16 line/column.
func (s *Snapshot) OffsetToPointUTF16(offset int64) (PointUTF16, error) {
	pt, err := s.tree.OffsetToPoint(offset)
	if err != nil {
		return PointUTF16{}, err
	}
	lineText, err := s.tree.Bytes(offset-pt.Column, offset)
	if err != nil {
		return PointUTF16{}, err
	}
	return PointUTF16{Line: pt.Line, Column: utf16Column(lineText)}, nil
}

// PointUTF16ToOffset converts UTF-16 line/column to byte offset.
func (s *Snapshot) PointUTF16ToOffset(p PointUTF16) (int64, error) {
	start, err := s.tree.LineStart(p.Line)
	if err != nil {
		return 0, err
	}
	end := s.tree.Len()
	if next, err := s.tree.LineStart(p.Line + 1); err == nil {
		end = next - 1
	}
	lineText, err := s.tree.Bytes(start, end)
	if err != nil {
		return 0, err
	}
	return start + int64(byteOffsetFromUTF16Column(lineText, p.Column)), nil
}

// utf16Column counts UTF-16 code units in text.
func utf16Column(text []byte) int64 {
	var col int64
	for _, r := range string(text) {
		if r >= 0x10000 {
			col += 2 // Surrogate pair (characters outside BMP)
		} else {
			col++
		}
	}
	return col
}

// byteOffsetFromUTF16Column converts a UTF-16 column to byte offset within a line.
func byteOffsetFromUTF16Column(line []byte, utf16Col int64) int {
	var col int64
	for i, r := range string(line) {
		if col >= utf16Col {
			return i
		}
		if r >= 0x10000 {
			col += 2
		} else {
			col++
		}
	}
	return len(line)
}

// Segments returns the bytes of [start, end) as consecutive segments,
// making the snapshot a search source. Unloaded regions are read from the
// backing file in bounded pieces and are not retained.
func (s *Snapshot) Segments(start, end int64) search.Segments {
	return &snapshotSegments{
		it:    s.tree.Iter(start, end),
		store: s.store,
		chunk: s.chunkSize,
	}
}

type snapshotSegments struct {
	it     *piecetree.Iterator
	store  *storage.Store
	chunk  int64
	seg    piecetree.Segment
	pos    int64
	active bool
	cur    []byte
	err    error
}

func (ss *snapshotSegments) Next() bool {
	if ss.err != nil {
		return false
	}
	for {
		if ss.active && ss.pos < ss.seg.Hi {
			p := ss.seg.Piece
			n := min(ss.seg.Hi-ss.pos, ss.chunk)
			data, err := ss.store.Read(p.Unit, p.Start+ss.pos, n)
			if err != nil {
				ss.err = err
				return false
			}
			ss.cur = data
			ss.pos += n
			return true
		}
		if !ss.it.Next() {
			return false
		}
		ss.seg = ss.it.Segment()
		ss.pos = ss.seg.Lo
		ss.active = true
	}
}

func (ss *snapshotSegments) Bytes() []byte { return ss.cur }

func (ss *snapshotSegments) Err() error { return ss.err }

var _ search.Source = (*Snapshot)(nil)

// Digest returns an xxhash fingerprint of the snapshot's content. Unloaded
// regions are streamed from the backing file.
func (s *Snapshot) Digest() (uint64, error) {
	h := xxhash.New()
	segs := s.Segments(0, s.tree.Len())
	for segs.Next() {
		_, _ = h.Write(segs.Bytes())
	}
	if err := segs.Err(); err != nil {
		return 0, err
	}
	return h.Sum64(), nil
}

package buffer

import (
	"bytes"

	"github.com/dshills/textcore/internal/engine/textpos"
)

// lineScanChunk is the read size when looking backwards for a line start.
const lineScanChunk = 64 * 1024

// Line returns the bytes of line, including its line feed. Where the line
// index does not reach the line its start is estimated as for
// PositionToOffset, and the result says so.
func (b *Buffer) Line(line int64) ([]byte, textpos.Exactness, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	start, ex, err := b.positionToOffsetLocked(textpos.LineCol(line, 0))
	if err != nil {
		return nil, ex, err
	}
	end, err := b.lineEndLocked(start)
	if err != nil {
		return nil, ex, err
	}
	data, err := b.readLocked(start, end)
	return data, ex, err
}

// lineEndLocked returns the offset just past the line feed that ends the
// line containing offset, or the document length. Caller holds the write
// lock.
func (b *Buffer) lineEndLocked(offset int64) (int64, error) {
	n := b.tree.Len()
	for off := offset; off < n; {
		data, err := b.readLocked(off, off+b.cfg.loadChunkSize)
		if err != nil {
			return 0, err
		}
		if i := bytes.IndexByte(data, '\n'); i >= 0 {
			return off + int64(i) + 1, nil
		}
		off += int64(len(data))
	}
	return n, nil
}

// LineIterator walks the lines of a snapshot in either direction. Lines
// include their line feed. Unloaded regions are read as needed and not
// retained.
type LineIterator struct {
	snap  *Snapshot
	pos   int64
	start int64
	line  []byte
	err   error
}

// Lines returns an iterator at the start of the line containing offset.
// Next returns that line; Prev returns the one before it.
func (s *Snapshot) Lines(offset int64) *LineIterator {
	it := &LineIterator{snap: s}
	it.pos, it.err = s.lineStart(min(max(offset, 0), s.Len()))
	return it
}

// Next advances to the line at the iterator position and moves past it.
func (it *LineIterator) Next() bool {
	if it.err != nil || it.pos >= it.snap.Len() {
		return false
	}
	end, err := it.snap.lineEnd(it.pos)
	if err == nil {
		it.line, err = it.snap.read(it.pos, end)
	}
	if err != nil {
		it.err = err
		return false
	}
	it.start, it.pos = it.pos, end
	return true
}

// Prev moves back to the line ending at the iterator position. After Next,
// Prev returns the same line again.
func (it *LineIterator) Prev() bool {
	if it.err != nil || it.pos == 0 {
		return false
	}
	start, err := it.snap.lineStart(it.pos - 1)
	if err == nil {
		it.line, err = it.snap.read(start, it.pos)
	}
	if err != nil {
		it.err = err
		return false
	}
	it.start, it.pos = start, start
	return true
}

// Line returns the current line.
func (it *LineIterator) Line() []byte { return it.line }

// Start returns the offset of the current line.
func (it *LineIterator) Start() int64 { return it.start }

// Position returns the offset Next would read from.
func (it *LineIterator) Position() int64 { return it.pos }

// Err returns the first read error.
func (it *LineIterator) Err() error { return it.err }

// lineStart returns the start of the line containing offset.
func (s *Snapshot) lineStart(offset int64) (int64, error) {
	for end := offset; end > 0; {
		start := max(end-lineScanChunk, 0)
		data, err := s.read(start, end)
		if err != nil {
			return 0, err
		}
		if i := bytes.LastIndexByte(data, '\n'); i >= 0 {
			return start + int64(i) + 1, nil
		}
		end = start
	}
	return 0, nil
}

// lineEnd returns the offset just past the line feed ending the line
// containing offset, or the snapshot length.
func (s *Snapshot) lineEnd(offset int64) (int64, error) {
	segs := s.Segments(offset, s.Len())
	pos := offset
	for segs.Next() {
		data := segs.Bytes()
		if i := bytes.IndexByte(data, '\n'); i >= 0 {
			return pos + int64(i) + 1, nil
		}
		pos += int64(len(data))
	}
	if err := segs.Err(); err != nil {
		return 0, err
	}
	return s.Len(), nil
}

// read copies [start, end) out of the snapshot, streaming unloaded regions.
func (s *Snapshot) read(start, end int64) ([]byte, error) {
	out := make([]byte, 0, end-start)
	segs := s.Segments(start, end)
	for segs.Next() {
		out = append(out, segs.Bytes()...)
	}
	return out, segs.Err()
}

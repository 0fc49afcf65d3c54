package buffer

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/dshills/textcore/internal/engine/textpos"
	"github.com/dshills/textcore/internal/logging"
)

// PositionToOffset converts a position to a byte offset.
//
// Where the line index covers the position the result is Exact. Otherwise
// the line start is found from the nearest anchor: by scanning when the
// anchor is close, or by jumping an average line length per line and
// scanning a bounded window for the next line start, which yields an
// Estimated offset. Columns past the end of the line clamp to the line end.
func (b *Buffer) PositionToOffset(pos textpos.Position) (int64, textpos.Exactness, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.positionToOffsetLocked(pos)
}

func (b *Buffer) positionToOffsetLocked(pos textpos.Position) (int64, textpos.Exactness, error) {
	if off, ok := pos.ByteOffset(); ok {
		if off < 0 || off > b.tree.Len() {
			return 0, textpos.Exact, fmt.Errorf("offset %d (len %d): %w", off, b.tree.Len(), textpos.ErrOutOfRange)
		}
		return off, textpos.Exact, nil
	}

	pt, _ := pos.Point()
	if pt.Line < 0 || pt.Column < 0 {
		return 0, textpos.Exact, fmt.Errorf("point %s: %w", pt, textpos.ErrOutOfRange)
	}
	off, err := b.tree.PointToOffset(pt)
	if err == nil {
		return off, textpos.Exact, nil
	}
	if !errors.Is(err, textpos.ErrUnknownLines) && !errors.Is(err, textpos.ErrNotLoaded) {
		return 0, textpos.Exact, err
	}

	start, ex, err := b.lineStartLocked(pt.Line)
	if err != nil {
		return 0, ex, err
	}
	off, err = b.advanceColumn(start, pt.Column)
	return off, ex, err
}

// lineStartLocked returns the offset of the first byte of line.
func (b *Buffer) lineStartLocked(line int64) (int64, textpos.Exactness, error) {
	off, err := b.tree.LineStart(line)
	if err == nil {
		return off, textpos.Exact, nil
	}
	if !errors.Is(err, textpos.ErrUnknownLines) {
		return 0, textpos.Exact, err
	}

	base := b.anchors.byLine(line)
	if base.Line == line {
		return base.Offset, base.Exactness, nil
	}

	if line-base.Line <= b.cfg.anchorScanLines {
		data, err := b.readLocked(base.Offset, base.Offset+b.cfg.anchorScanBytes)
		if err != nil {
			return 0, base.Exactness, err
		}
		if i := nthIndex(data, line-base.Line); i >= 0 {
			off := base.Offset + int64(i) + 1
			b.anchors.refine(base, data[:i+1])
			b.anchors.add(anchor{Offset: off, Line: line, Exactness: base.Exactness})
			return off, base.Exactness, nil
		}
		if base.Offset+int64(len(data)) == b.tree.Len() && base.Exactness == textpos.Exact {
			return 0, textpos.Exact, fmt.Errorf("line %d past end of document: %w", line, textpos.ErrOutOfRange)
		}
	}

	return b.estimateLineStart(base, line)
}

// estimateLineStart guesses where line starts from base and the average
// line length, then moves the guess to the next real line start within the
// scan window. The guess never passes an anchor for a later line.
func (b *Buffer) estimateLineStart(base anchor, line int64) (int64, textpos.Exactness, error) {
	lines := line - base.Line
	limit := b.tree.Len()
	if next, ok := b.anchors.afterLine(line); ok {
		limit = min(limit, next.Offset-(next.Line-line))
	}
	guess := max(base.Offset+lines*b.avgLine, base.Offset+lines)
	guess = min(guess, limit)
	if guess >= b.tree.Len() {
		return b.tree.Len(), textpos.Estimated, nil
	}

	from := guess - 1
	data, err := b.readLocked(from, min(from+b.cfg.anchorScanBytes, limit))
	if err != nil {
		return 0, textpos.Estimated, err
	}
	i := bytes.IndexByte(data, '\n')
	if i < 0 {
		return guess, textpos.Estimated, nil
	}
	off := from + int64(i) + 1
	b.anchors.add(anchor{Offset: off, Line: line, Exactness: textpos.Estimated})
	b.logger.Debug("estimated line start",
		logging.FieldLine, line,
		logging.FieldOffset, off,
	)
	return off, textpos.Estimated, nil
}

// advanceColumn moves up to col bytes forward from a line start, stopping
// at the line feed that ends the line.
func (b *Buffer) advanceColumn(start, col int64) (int64, error) {
	off := start
	for rem := col; rem > 0 && off < b.tree.Len(); {
		data, err := b.readLocked(off, off+min(rem, b.cfg.loadChunkSize))
		if err != nil {
			return 0, err
		}
		if i := bytes.IndexByte(data, '\n'); i >= 0 {
			return off + int64(i), nil
		}
		if len(data) == 0 {
			break
		}
		off += int64(len(data))
		rem -= int64(len(data))
	}
	return off, nil
}

// OffsetToPosition converts a byte offset to a line/column position,
// estimating the line when the line index does not reach the offset.
func (b *Buffer) OffsetToPosition(offset int64) (textpos.Position, textpos.Exactness, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if offset < 0 || offset > b.tree.Len() {
		return textpos.Position{}, textpos.Exact,
			fmt.Errorf("offset %d (len %d): %w", offset, b.tree.Len(), textpos.ErrOutOfRange)
	}
	pt, err := b.tree.OffsetToPoint(offset)
	if err == nil {
		return textpos.AtPoint(pt), textpos.Exact, nil
	}
	if !errors.Is(err, textpos.ErrUnknownLines) {
		return textpos.Position{}, textpos.Exact, err
	}

	base := b.anchors.byOffset(offset)
	if offset-base.Offset <= b.cfg.anchorScanBytes {
		data, err := b.readLocked(base.Offset, offset)
		if err != nil {
			return textpos.Position{}, base.Exactness, err
		}
		n := int64(bytes.Count(data, newline))
		lineStart := base.Offset
		if last := bytes.LastIndexByte(data, '\n'); last >= 0 {
			lineStart += int64(last) + 1
		}
		b.anchors.refine(base, data)
		if n > 0 {
			b.anchors.add(anchor{Offset: lineStart, Line: base.Line + n, Exactness: base.Exactness})
		}
		return textpos.LineCol(base.Line+n, offset-lineStart), base.Exactness, nil
	}

	from := offset - b.cfg.anchorScanBytes
	data, err := b.readLocked(from, offset)
	if err != nil {
		return textpos.Position{}, textpos.Estimated, err
	}
	last := bytes.LastIndexByte(data, '\n')
	if last < 0 {
		// The line starts out of scan reach. from stands in for its start,
		// recorded so that the reverse conversion measures from it too.
		line := base.Line + max(1, (from-base.Offset)/b.avgLine)
		if next, ok := b.anchors.afterOffset(offset); ok {
			line = min(line, next.Line-1)
		}
		b.anchors.add(anchor{Offset: from, Line: line, Exactness: textpos.Estimated, mid: true})
		return textpos.LineCol(line, offset-from), textpos.Estimated, nil
	}

	lineStart := from + int64(last) + 1
	line := base.Line + max(1, (lineStart-base.Offset)/b.avgLine)
	if next, ok := b.anchors.afterOffset(offset); ok {
		line = min(line, next.Line-1)
	}
	line = max(line, base.Line+1)
	b.anchors.add(anchor{Offset: lineStart, Line: line, Exactness: textpos.Estimated})
	return textpos.LineCol(line, offset-lineStart), textpos.Estimated, nil
}

// LineCount returns the number of lines. Without a complete line index
// it adds the known line feeds to the unindexed bytes divided by the
// average line length.
func (b *Buffer) LineCount() textpos.Estimate {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if n, ok := b.tree.LineCount().Value(); ok {
		return textpos.Estimate{Value: n, Exactness: textpos.Exact}
	}
	var known, unknownBytes int64
	for it := b.tree.Iter(0, b.tree.Len()); it.Next(); {
		seg := it.Segment()
		if lf, ok := seg.Piece.LineFeeds.Value(); ok {
			known += lf
		} else {
			unknownBytes += seg.Len()
		}
	}
	est := known + unknownBytes/b.avgLine + 1
	if n := b.anchors.len(); n > 0 {
		est = max(est, b.anchors.list[n-1].Line+1)
	}
	return textpos.Estimate{Value: est, Exactness: textpos.Estimated}
}

// AnchorCount returns the number of cached line anchors.
func (b *Buffer) AnchorCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.anchors.len()
}

// nthIndex returns the index of the n-th (1-based) line feed in data, or -1.
func nthIndex(data []byte, n int64) int {
	pos := 0
	for {
		i := bytes.IndexByte(data[pos:], '\n')
		if i < 0 {
			return -1
		}
		n--
		if n == 0 {
			return pos + i
		}
		pos += i + 1
	}
}

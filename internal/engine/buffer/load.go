package buffer

import (
	"context"
	"errors"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/dshills/textcore/internal/engine/piecetree"
	"github.com/dshills/textcore/internal/engine/storage"
	"github.com/dshills/textcore/internal/engine/textpos"
	"github.com/dshills/textcore/internal/logging"
)

// chunk is one aligned region of an unloaded unit scheduled for reading.
type chunk struct {
	docStart  int64
	unit      *storage.Unit
	unitStart int64
	length    int64
}

// planLoads lists the aligned chunks needed to make [start, end) resident.
// The tree is walked once; chunks never extend past the piece they serve.
func (b *Buffer) planLoads(t piecetree.Tree, start, end int64) []chunk {
	var chunks []chunk
	align, size := b.cfg.chunkAlignment, b.cfg.loadChunkSize
	for it := t.Iter(start, end); it.Next(); {
		seg := it.Segment()
		p := seg.Piece
		if p.IsLoaded() {
			continue
		}
		u := p.Unit
		for pos := p.Start + seg.Lo; pos < p.Start+seg.Hi; {
			file := u.FileOffset() + pos
			cs := max(file-file%align-u.FileOffset(), p.Start)
			ce := min(cs+size, p.End())
			chunks = append(chunks, chunk{
				docStart:  seg.DocStart + (cs - p.Start),
				unit:      u,
				unitStart: cs,
				length:    ce - cs,
			})
			pos = ce
		}
	}
	return chunks
}

// fetch reads every chunk, at most loadConcurrency at a time.
func (b *Buffer) fetch(ctx context.Context, chunks []chunk) ([]*storage.Unit, error) {
	units := make([]*storage.Unit, len(chunks))
	if len(chunks) == 1 {
		u, err := b.store.Load(chunks[0].unit, chunks[0].unitStart, chunks[0].length)
		units[0] = u
		return units, err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(b.cfg.loadConcurrency)
	for i, c := range chunks {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			u, err := b.store.Load(c.unit, c.unitStart, c.length)
			if err != nil {
				return err
			}
			units[i] = u
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return units, nil
}

// residentChunk is a loaded copy of bytes of an unloaded unit, starting
// at start within that unit.
type residentChunk struct {
	start int64
	unit  *storage.Unit
}

// install splices loaded chunks into the tree. A chunk whose region no
// longer maps to the same unit bytes (an edit intervened) is skipped.
// Caller holds the write lock.
func (b *Buffer) install(chunks []chunk, units []*storage.Unit) int {
	installed := 0
	for i, c := range chunks {
		if !b.splice(c, piecetree.NewPiece(units[i], 0, units[i].Len())) {
			continue
		}
		b.resident[c.unit] = append(b.resident[c.unit], residentChunk{start: c.unitStart, unit: units[i]})
		b.measureAverage(units[i])
		installed++
	}
	return installed
}

// splice replaces the region of c with p when the region still maps to
// the bytes c was planned from.
func (b *Buffer) splice(c chunk, p piecetree.Piece) bool {
	cur, curStart, ok := b.tree.PieceAt(c.docStart)
	if !ok || cur.Unit != c.unit {
		return false
	}
	if cur.Start+(c.docStart-curStart) != c.unitStart || curStart+cur.Length-c.docStart < c.length {
		return false
	}
	t, err := b.tree.Replace(c.docStart, c.length, p)
	if err != nil {
		return false
	}
	b.tree = t
	return true
}

// reinstall splices chunks read earlier back into the tree, so a restored
// snapshot taken before they were read does not read them again.
// Caller holds the write lock.
func (b *Buffer) reinstall() int {
	if len(b.resident) == 0 {
		return 0
	}
	n := 0
	for _, c := range b.planLoads(b.tree, 0, b.tree.Len()) {
		for _, r := range b.resident[c.unit] {
			lo := c.unitStart - r.start
			if lo < 0 || lo+c.length > r.unit.Len() {
				continue
			}
			if b.splice(c, piecetree.NewPiece(r.unit, lo, c.length)) {
				n++
			}
			break
		}
	}
	return n
}

// materialize makes [start, end) resident. Caller holds the write lock.
func (b *Buffer) materialize(start, end int64) error {
	chunks := b.planLoads(b.tree, start, end)
	if len(chunks) == 0 {
		return nil
	}
	units, err := b.fetch(context.Background(), chunks)
	if err != nil {
		return err
	}
	b.install(chunks, units)
	return nil
}

// readLocked materializes and returns [start, end), clamped to the
// document. Caller holds the write lock.
func (b *Buffer) readLocked(start, end int64) ([]byte, error) {
	r := textpos.NewRange(start, end).Clamp(b.tree.Len())
	if err := b.materialize(r.Start, r.End); err != nil {
		return nil, err
	}
	return b.tree.Bytes(r.Start, r.End)
}

// ReadRange returns the bytes in [start, end) and the range actually read.
// Offsets are clamped to the document, and the range grows outward so no
// multi-byte UTF-8 sequence is cut. Unloaded regions are materialized in
// aligned chunks; rereading a resident range performs no I/O.
func (b *Buffer) ReadRange(start, end int64) ([]byte, textpos.Range, error) {
	b.mu.RLock()
	data, r, err := b.readBoundaries(start, end)
	b.mu.RUnlock()
	if err == nil || !errors.Is(err, textpos.ErrNotLoaded) {
		return data, r, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	wide := b.widen(start, end)
	if err := b.materialize(wide.Start, wide.End); err != nil {
		return nil, textpos.Range{}, err
	}
	return b.readBoundaries(start, end)
}

// widen returns the clamped range extended by the longest UTF-8 tail on
// both sides.
func (b *Buffer) widen(start, end int64) textpos.Range {
	r := textpos.NewRange(start, end).Clamp(b.tree.Len())
	return textpos.Range{Start: r.Start - utf8.UTFMax + 1, End: r.End + utf8.UTFMax - 1}.Clamp(b.tree.Len())
}

// readBoundaries reads [start, end) rounded outward to character
// boundaries. It fails with ErrNotLoaded when any needed byte is not
// resident.
func (b *Buffer) readBoundaries(start, end int64) ([]byte, textpos.Range, error) {
	r := textpos.NewRange(start, end).Clamp(b.tree.Len())
	wide := b.widen(start, end)
	data, err := b.tree.Bytes(wide.Start, wide.End)
	if err != nil {
		return nil, textpos.Range{}, err
	}
	lo := int(r.Start - wide.Start)
	hi := int(r.End - wide.Start)
	for lo > 0 && lo < len(data) && !utf8.RuneStart(data[lo]) {
		lo--
	}
	for hi < len(data) && !utf8.RuneStart(data[hi]) {
		hi++
	}
	out := textpos.Range{Start: wide.Start + int64(lo), End: wide.Start + int64(hi)}
	if out.IsEmpty() {
		return []byte{}, out, nil
	}
	return data[lo:hi], out, nil
}

// Prepare materializes [start, end) ahead of use, for example before a
// render pass. Chunk reads run concurrently and without holding the
// buffer lock; only splicing the results into the tree is exclusive.
// It returns the snapshot that includes the loaded chunks.
func (b *Buffer) Prepare(ctx context.Context, start, end int64) (*Snapshot, error) {
	b.mu.RLock()
	wide := b.widen(start, end)
	chunks := b.planLoads(b.tree, wide.Start, wide.End)
	b.mu.RUnlock()

	if len(chunks) > 0 {
		units, err := b.fetch(ctx, chunks)
		if err != nil {
			return nil, err
		}
		b.mu.Lock()
		n := b.install(chunks, units)
		b.mu.Unlock()
		b.logger.Debug("prepared range",
			logging.FieldOffset, start,
			logging.FieldBytes, end-start,
			logging.FieldChunks, n,
		)
	}
	return b.Snapshot(), nil
}

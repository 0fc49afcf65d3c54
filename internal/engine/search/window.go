package search

import "unicode/utf8"

// Window reads a byte range as a sequence of overlapping chunks. Each chunk
// holds up to overlap bytes carried over from the previous chunk followed by
// up to chunkSize new bytes. Memory use is bounded by chunkSize + overlap
// regardless of the range length.
//
// Besides the chunk, a window keeps up to one character of the bytes that
// precede it in the range, so that patterns looking behind a position see
// the same text a full scan would.
type Window struct {
	segs      Segments
	pending   []byte
	data      []byte // lead context followed by the chunk
	lead      int
	chunkSize int
	overlap   int
	end       int64

	offset     int64 // document offset of the chunk's first byte
	validStart int
	started    bool
	done       bool
	err        error
}

// NewWindow returns a Window over [start, end) of src.
func NewWindow(src Source, start, end int64, chunkSize, overlap int) *Window {
	chunkSize = max(chunkSize, 1)
	overlap = max(overlap, 0)
	return &Window{
		segs:      src.Segments(start, end),
		data:      make([]byte, 0, utf8.UTFMax+overlap+chunkSize),
		chunkSize: chunkSize,
		overlap:   overlap,
		end:       end,
		offset:    start,
	}
}

// Next loads the following chunk. It returns false once the range is
// exhausted or a read failed; check Err.
func (w *Window) Next() bool {
	if w.done {
		return false
	}

	keep := 0
	if w.started {
		n := len(w.data) - w.lead
		keep = w.carry()
		retain := min(keep+utf8.UTFMax, len(w.data))
		w.offset += int64(n - keep)
		copy(w.data, w.data[len(w.data)-retain:])
		w.data = w.data[:retain]
		w.lead = retain - keep
	}
	w.validStart = keep

	want := w.lead + keep + w.chunkSize
	for len(w.data) < want {
		if len(w.pending) == 0 {
			if !w.segs.Next() {
				break
			}
			w.pending = w.segs.Bytes()
			continue
		}
		n := min(len(w.pending), want-len(w.data))
		w.data = append(w.data, w.pending[:n]...)
		w.pending = w.pending[n:]
	}

	n := len(w.data) - w.lead
	if n == 0 || w.started && n == keep {
		w.done = true
		w.err = w.segs.Err()
		return false
	}
	w.started = true
	return true
}

// carry returns how many bytes of the current chunk the next chunk starts
// with.
func (w *Window) carry() int {
	return min(w.overlap, len(w.data)-w.lead)
}

// Bytes returns the current chunk, valid until the next call to Next.
func (w *Window) Bytes() []byte {
	return w.data[w.lead:]
}

// Context returns the current chunk preceded by up to one character of the
// range before it, and the length of that prefix. The prefix is empty for
// the first chunk.
func (w *Window) Context() ([]byte, int) {
	return w.data, w.lead
}

// Offset returns the document offset of the chunk's first byte.
func (w *Window) Offset() int64 {
	return w.offset
}

// ValidStart returns the number of leading bytes carried over from the
// previous chunk.
func (w *Window) ValidStart() int {
	return w.validStart
}

// Last reports whether the chunk reaches the end of the range.
func (w *Window) Last() bool {
	return w.offset+int64(len(w.data)-w.lead) >= w.end
}

// Err returns the first read error.
func (w *Window) Err() error {
	return w.err
}

package search

// Source exposes a document as consecutive byte segments.
type Source interface {
	Len() int64
	Segments(start, end int64) Segments
}

// Segments iterates the bytes of a range in order.
type Segments interface {
	Next() bool
	// Bytes returns the current segment. It stays valid until Next.
	Bytes() []byte
	Err() error
}

// Bytes is a Source over an in-memory slice, split into segments of at most
// SegmentSize bytes (the whole range when zero).
type Bytes struct {
	Data        []byte
	SegmentSize int
}

// Len returns the length of the data.
func (b Bytes) Len() int64 {
	return int64(len(b.Data))
}

// Segments returns an iterator over data[start:end].
func (b Bytes) Segments(start, end int64) Segments {
	start = max(0, min(start, int64(len(b.Data))))
	end = max(start, min(end, int64(len(b.Data))))
	size := b.SegmentSize
	if size <= 0 {
		size = int(end - start)
	}
	return &byteSegments{data: b.Data[start:end], size: size}
}

type byteSegments struct {
	data []byte
	size int
	cur  []byte
}

func (s *byteSegments) Next() bool {
	if len(s.data) == 0 {
		return false
	}
	n := min(s.size, len(s.data))
	s.cur, s.data = s.data[:n], s.data[n:]
	return true
}

func (s *byteSegments) Bytes() []byte { return s.cur }

func (s *byteSegments) Err() error { return nil }

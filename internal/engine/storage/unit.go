package storage

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/dshills/textcore/internal/engine/textpos"
)

// ID identifies a unit within a Store.
type ID uint64

// Kind distinguishes resident units from file-backed placeholders.
type Kind uint8

const (
	// KindLoaded units hold their bytes in memory.
	KindLoaded Kind = iota
	// KindUnloaded units describe a file region that has not been read.
	KindUnloaded
)

// String returns "loaded" or "unloaded".
func (k Kind) String() string {
	if k == KindUnloaded {
		return "unloaded"
	}
	return "loaded"
}

// Unit is an immutable unit of backing storage.
type Unit struct {
	id   ID
	kind Kind

	// Loaded.
	data []byte
	// lineFeeds holds the offsets of every '\n' in data when indexed.
	lineFeeds []int64
	indexed   bool

	// Unloaded.
	path       string
	fileOffset int64
	length     int64
}

// NewLoaded returns a loaded unit over data. When index is true the offsets
// of all line feeds are recorded so line lookups avoid rescanning.
// The unit takes ownership of data.
func NewLoaded(id ID, data []byte, index bool) *Unit {
	u := &Unit{id: id, kind: KindLoaded, data: data, length: int64(len(data))}
	if index {
		u.lineFeeds = indexLineFeeds(data)
		u.indexed = true
	}
	return u
}

// NewUnloaded returns a placeholder for length bytes of path starting at
// fileOffset.
func NewUnloaded(id ID, path string, fileOffset, length int64) *Unit {
	return &Unit{
		id:         id,
		kind:       KindUnloaded,
		path:       path,
		fileOffset: fileOffset,
		length:     length,
	}
}

// ID returns the unit's identifier.
func (u *Unit) ID() ID { return u.id }

// Kind returns whether the unit is loaded.
func (u *Unit) Kind() Kind { return u.kind }

// IsLoaded reports whether the unit's bytes are resident.
func (u *Unit) IsLoaded() bool { return u.kind == KindLoaded }

// Len returns the number of bytes the unit spans.
func (u *Unit) Len() int64 { return u.length }

// Path returns the backing file of an unloaded unit.
func (u *Unit) Path() string { return u.path }

// FileOffset returns the file position of an unloaded unit's first byte.
func (u *Unit) FileOffset() int64 { return u.fileOffset }

// String returns a short description for logs and debugging.
func (u *Unit) String() string {
	if u.kind == KindUnloaded {
		return fmt.Sprintf("unit#%d(unloaded %s@%d+%d)", u.id, u.path, u.fileOffset, u.length)
	}
	return fmt.Sprintf("unit#%d(loaded %d bytes)", u.id, u.length)
}

// Bytes returns the resident bytes in [start, end).
// The returned slice must not be modified.
func (u *Unit) Bytes(start, end int64) ([]byte, error) {
	if u.kind != KindLoaded {
		return nil, fmt.Errorf("%s: %w", u, textpos.ErrNotLoaded)
	}
	if start < 0 || end < start || end > u.length {
		return nil, fmt.Errorf("unit range [%d, %d) of %d: %w", start, end, u.length, textpos.ErrOutOfRange)
	}
	return u.data[start:end:end], nil
}

// CountLineFeeds counts '\n' bytes in [start, end).
// The count is unknown for unloaded units.
func (u *Unit) CountLineFeeds(start, end int64) textpos.Count {
	if u.kind != KindLoaded {
		return textpos.Unknown()
	}
	if u.indexed {
		lo := sort.Search(len(u.lineFeeds), func(i int) bool { return u.lineFeeds[i] >= start })
		hi := sort.Search(len(u.lineFeeds), func(i int) bool { return u.lineFeeds[i] >= end })
		return textpos.Known(int64(hi - lo))
	}
	return textpos.Known(int64(bytes.Count(u.data[start:end], newline)))
}

// NthLineFeed returns the offset of the n-th (1-based) '\n' at or after
// start and before end, or -1 if there are fewer than n.
func (u *Unit) NthLineFeed(start, end int64, n int64) int64 {
	if u.kind != KindLoaded || n <= 0 {
		return -1
	}
	if u.indexed {
		lo := sort.Search(len(u.lineFeeds), func(i int) bool { return u.lineFeeds[i] >= start })
		idx := lo + int(n) - 1
		if idx >= len(u.lineFeeds) || u.lineFeeds[idx] >= end {
			return -1
		}
		return u.lineFeeds[idx]
	}
	pos := start
	for {
		i := bytes.IndexByte(u.data[pos:end], '\n')
		if i < 0 {
			return -1
		}
		n--
		if n == 0 {
			return pos + int64(i)
		}
		pos += int64(i) + 1
	}
}

// LastLineFeed returns the offset of the last '\n' in [start, end), or -1.
func (u *Unit) LastLineFeed(start, end int64) int64 {
	if u.kind != KindLoaded || end <= start {
		return -1
	}
	if u.indexed {
		hi := sort.Search(len(u.lineFeeds), func(i int) bool { return u.lineFeeds[i] >= end })
		if hi == 0 || u.lineFeeds[hi-1] < start {
			return -1
		}
		return u.lineFeeds[hi-1]
	}
	i := bytes.LastIndexByte(u.data[start:end], '\n')
	if i < 0 {
		return -1
	}
	return start + int64(i)
}

var newline = []byte{'\n'}

func indexLineFeeds(data []byte) []int64 {
	feeds := make([]int64, 0, bytes.Count(data, newline))
	for i, b := range data {
		if b == '\n' {
			feeds = append(feeds, int64(i))
		}
	}
	return feeds
}

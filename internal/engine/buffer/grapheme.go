package buffer

import (
	"github.com/rivo/uniseg"
)

// graphemeWindow is the initial read size for boundary searches. It doubles
// while a cluster may extend past the window, up to maxGraphemeWindow.
const (
	graphemeWindow    = 64
	maxGraphemeWindow = 64 * 1024
)

// SnapToCharBoundary returns the start of the UTF-8 character containing
// offset. Offsets are clamped to the document.
func (b *Buffer) SnapToCharBoundary(offset int64) (int64, error) {
	_, r, err := b.ReadRange(offset, offset)
	if err != nil {
		return 0, err
	}
	return r.Start, nil
}

// NextGraphemeBoundary returns the end of the grapheme cluster containing
// offset, or the document length at the end.
func (b *Buffer) NextGraphemeBoundary(offset int64) (int64, error) {
	n := b.Len()
	if offset >= n {
		return n, nil
	}
	offset = max(offset, 0)

	for window := int64(graphemeWindow); ; window *= 2 {
		data, r, err := b.ReadRange(offset, offset+window)
		if err != nil {
			return 0, err
		}
		pos := r.Start
		state := -1
		for len(data) > 0 {
			var cluster []byte
			cluster, data, _, state = uniseg.FirstGraphemeCluster(data, state)
			pos += int64(len(cluster))
			if pos > offset && (len(data) > 0 || r.End == n || window >= maxGraphemeWindow) {
				return pos, nil
			}
		}
		if r.End == n || window >= maxGraphemeWindow {
			return pos, nil
		}
	}
}

// PrevGraphemeBoundary returns the start of the grapheme cluster that ends
// at or contains offset-1, or 0 at the start.
func (b *Buffer) PrevGraphemeBoundary(offset int64) (int64, error) {
	if offset <= 0 {
		return 0, nil
	}
	offset = min(offset, b.Len())

	for window := int64(graphemeWindow); ; window *= 2 {
		data, r, err := b.ReadRange(offset-window, offset)
		if err != nil {
			return 0, err
		}
		pos := r.Start
		prev := r.Start
		state := -1
		for len(data) > 0 {
			var cluster []byte
			cluster, data, _, state = uniseg.FirstGraphemeCluster(data, state)
			if pos+int64(len(cluster)) >= offset {
				break
			}
			pos += int64(len(cluster))
			prev = pos
		}
		// The window may start inside a cluster, so only a boundary past
		// the first one is trusted.
		if prev > r.Start || r.Start == 0 || window >= maxGraphemeWindow {
			return prev, nil
		}
	}
}

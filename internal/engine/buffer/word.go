package buffer

import (
	"unicode"
	"unicode/utf8"

	"github.com/rivo/uniseg"
)

// Word searches read wordWindow bytes first and double up to maxWordWindow
// while the answer may lie outside the window.
const (
	wordWindow    = 256
	maxWordWindow = 64 * 1024
)

// isWord reports whether a word segment holds a letter, a digit or an
// underscore. Segments of spaces or punctuation are not words.
func isWord(seg []byte) bool {
	for len(seg) > 0 {
		r, n := utf8.DecodeRune(seg)
		if r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
		seg = seg[n:]
	}
	return false
}

// NextWordBoundary returns the end of the first word ending after offset,
// or the document length when no word follows. Words follow the Unicode
// word segmentation rules. The scan gives up maxWordWindow bytes past
// offset and returns the end of what it read.
func (b *Buffer) NextWordBoundary(offset int64) (int64, error) {
	n := b.Len()
	if offset >= n {
		return n, nil
	}
	offset = max(offset, 0)

	for window := int64(wordWindow); ; window *= 2 {
		data, r, err := b.ReadRange(offset, offset+window)
		if err != nil {
			return 0, err
		}
		pos := r.Start
		state := -1
		for len(data) > 0 {
			var word []byte
			word, data, state = uniseg.FirstWord(data, state)
			pos += int64(len(word))
			// A word touching the window end may continue past it.
			if pos > offset && isWord(word) && (len(data) > 0 || r.End == n) {
				return pos, nil
			}
		}
		if r.End == n || window >= maxWordWindow {
			return r.End, nil
		}
	}
}

// PrevWordBoundary returns the start of the last word starting before
// offset, or 0 when no word precedes it. The scan gives up maxWordWindow
// bytes before offset.
func (b *Buffer) PrevWordBoundary(offset int64) (int64, error) {
	if offset <= 0 {
		return 0, nil
	}
	offset = min(offset, b.Len())

	for window := int64(wordWindow); ; window *= 2 {
		data, r, err := b.ReadRange(offset-window, offset)
		if err != nil {
			return 0, err
		}
		pos := r.Start
		found := int64(-1)
		state := -1
		for len(data) > 0 {
			var word []byte
			word, data, state = uniseg.FirstWord(data, state)
			if pos < offset && isWord(word) {
				found = pos
			}
			pos += int64(len(word))
		}
		// A word at the window start may begin before the window.
		if found > r.Start || r.Start == 0 {
			return max(found, 0), nil
		}
		if window >= maxWordWindow {
			return max(found, r.Start), nil
		}
	}
}

package buffer

import (
	"bytes"
	"sort"

	"github.com/dshills/textcore/internal/engine/textpos"
)

// anchor records that line Line starts at byte Offset. A mid anchor only
// claims that Offset lies inside line Line, whose start was out of scan
// reach; positions on that line are measured from Offset instead.
type anchor struct {
	Offset    int64
	Line      int64
	Exactness textpos.Exactness
	mid       bool
}

// origin is the implicit anchor every document has.
var origin = anchor{Exactness: textpos.Exact}

// anchorSet keeps anchors ordered by offset. Lines increase strictly with
// offsets; add drops estimates that would break the ordering.
type anchorSet struct {
	list []anchor
	max  int
}

// len returns the number of cached anchors.
func (s *anchorSet) len() int {
	return len(s.list)
}

// byLine returns the last anchor at or before line.
func (s *anchorSet) byLine(line int64) anchor {
	i := sort.Search(len(s.list), func(i int) bool { return s.list[i].Line > line })
	if i == 0 {
		return origin
	}
	return s.list[i-1]
}

// byOffset returns the last anchor at or before offset.
func (s *anchorSet) byOffset(offset int64) anchor {
	i := sort.Search(len(s.list), func(i int) bool { return s.list[i].Offset > offset })
	if i == 0 {
		return origin
	}
	return s.list[i-1]
}

// afterLine returns the first anchor past line.
func (s *anchorSet) afterLine(line int64) (anchor, bool) {
	i := sort.Search(len(s.list), func(i int) bool { return s.list[i].Line > line })
	if i == len(s.list) {
		return anchor{}, false
	}
	return s.list[i], true
}

// afterOffset returns the first anchor past offset.
func (s *anchorSet) afterOffset(offset int64) (anchor, bool) {
	i := sort.Search(len(s.list), func(i int) bool { return s.list[i].Offset > offset })
	if i == len(s.list) {
		return anchor{}, false
	}
	return s.list[i], true
}

// add records a. An exact anchor replaces anything it contradicts; an
// estimated one is dropped if it contradicts an exact anchor.
func (s *anchorSet) add(a anchor) {
	if a.Offset == 0 {
		return
	}
	var kept []anchor
	for _, b := range s.list {
		if !conflicts(a, b) {
			continue
		}
		if b.Exactness == textpos.Exact && a.Exactness == textpos.Estimated {
			return
		}
		kept = append(kept, b)
	}
	if len(kept) > 0 {
		s.list = removeAll(s.list, kept)
	}

	i := sort.Search(len(s.list), func(i int) bool { return s.list[i].Offset >= a.Offset })
	s.list = append(s.list, anchor{})
	copy(s.list[i+1:], s.list[i:])
	s.list[i] = a

	if s.max > 0 && len(s.list) > s.max {
		s.thin()
	}
}

// conflicts reports whether a and b cannot both describe the document.
func conflicts(a, b anchor) bool {
	switch {
	case a.Offset == b.Offset:
		return true
	case a.Offset < b.Offset:
		return a.Line >= b.Line
	default:
		return a.Line <= b.Line
	}
}

func removeAll(list, drop []anchor) []anchor {
	out := list[:0]
	j := 0
	for _, a := range list {
		if j < len(drop) && a == drop[j] {
			j++
			continue
		}
		out = append(out, a)
	}
	return out
}

// thin halves the set, keeping every other anchor and all exact ones.
func (s *anchorSet) thin() {
	out := s.list[:0]
	for i, a := range s.list {
		if i%2 == 0 || a.Exactness == textpos.Exact && len(out) < s.max/2 {
			out = append(out, a)
		}
	}
	s.list = out
}

// refine upgrades anchors inside data, which was read starting at the
// exact anchor base, to their exact line numbers. Mid anchors in data are
// dropped; the exact scan now resolves their positions.
func (s *anchorSet) refine(base anchor, data []byte) {
	if base.Exactness != textpos.Exact {
		return
	}
	end := base.Offset + int64(len(data))
	i := sort.Search(len(s.list), func(i int) bool { return s.list[i].Offset > base.Offset })
	changed := false
	for ; i < len(s.list) && s.list[i].Offset <= end; i++ {
		a := &s.list[i]
		if a.mid {
			s.list = append(s.list[:i], s.list[i+1:]...)
			i--
			continue
		}
		line := base.Line + int64(bytes.Count(data[:a.Offset-base.Offset], newline))
		if a.Line != line || a.Exactness != textpos.Exact {
			a.Line = line
			a.Exactness = textpos.Exact
			changed = true
		}
	}
	if changed {
		s.repair()
	}
}

// repair drops estimated anchors whose lines no longer increase with their
// offsets.
func (s *anchorSet) repair() {
	out := s.list[:0]
	for i, a := range s.list {
		if a.Exactness == textpos.Estimated {
			if len(out) > 0 && out[len(out)-1].Line >= a.Line {
				continue
			}
			if next := nextExact(s.list[i+1:]); next != nil && next.Line <= a.Line {
				continue
			}
		}
		out = append(out, a)
	}
	s.list = out
}

func nextExact(list []anchor) *anchor {
	for i := range list {
		if list[i].Exactness == textpos.Exact {
			return &list[i]
		}
	}
	return nil
}

// truncate drops anchors past offset. Anchors at or before an edit offset
// still start the same lines afterwards.
func (s *anchorSet) truncate(offset int64) {
	i := sort.Search(len(s.list), func(i int) bool { return s.list[i].Offset > offset })
	s.list = s.list[:i]
}

var newline = []byte{'\n'}

package buffer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dshills/textcore/internal/engine/textpos"
)

func est(off, line int64) anchor {
	return anchor{Offset: off, Line: line, Exactness: textpos.Estimated}
}

func exact(off, line int64) anchor {
	return anchor{Offset: off, Line: line, Exactness: textpos.Exact}
}

func TestAnchorLookup(t *testing.T) {
	s := anchorSet{}
	s.add(exact(100, 10))
	s.add(est(5000, 400))
	s.add(exact(50, 5))

	assert.Equal(t, origin, s.byLine(4))
	assert.Equal(t, exact(50, 5), s.byLine(9))
	assert.Equal(t, exact(100, 10), s.byLine(399))
	assert.Equal(t, est(5000, 400), s.byLine(1000))
	assert.Equal(t, exact(100, 10), s.byOffset(4999))

	next, ok := s.afterLine(10)
	assert.True(t, ok)
	assert.Equal(t, est(5000, 400), next)
	_, ok = s.afterOffset(5000)
	assert.False(t, ok)
}

func TestAnchorConflicts(t *testing.T) {
	s := anchorSet{}
	s.add(exact(100, 10))

	s.add(est(200, 9))
	assert.Equal(t, []anchor{exact(100, 10)}, s.list, "estimate contradicting an exact anchor")

	s.add(est(300, 20))
	s.add(exact(250, 25))
	assert.Equal(t, []anchor{exact(100, 10), exact(250, 25)}, s.list)

	s.add(est(0, 0))
	assert.Len(t, s.list, 2, "origin is implicit")
}

func TestAnchorRefine(t *testing.T) {
	s := anchorSet{}
	s.add(est(2, 7))
	s.add(est(6, 8))
	s.add(est(900, 50))

	s.refine(origin, []byte("a\nb\nc\n"))
	assert.Equal(t, []anchor{exact(2, 1), exact(6, 3), est(900, 50)}, s.list)
}

func TestAnchorRefineDropsContradictedEstimates(t *testing.T) {
	s := anchorSet{}
	s.add(est(4, 40))
	s.add(est(8, 41))

	s.refine(origin, []byte("a\nb\n"))
	assert.Equal(t, []anchor{exact(4, 2)}, s.list[:1])
	for i := 1; i < len(s.list); i++ {
		assert.Greater(t, s.list[i].Line, s.list[i-1].Line)
	}
}

func TestAnchorTruncate(t *testing.T) {
	s := anchorSet{}
	for i := int64(1); i <= 5; i++ {
		s.add(exact(i*100, i))
	}
	s.truncate(300)
	assert.Equal(t, []anchor{exact(100, 1), exact(200, 2), exact(300, 3)}, s.list)
}

func TestAnchorCap(t *testing.T) {
	s := anchorSet{max: 4}
	for i := int64(1); i <= 9; i++ {
		s.add(est(i*100, i))
	}
	assert.LessOrEqual(t, s.len(), 4)
	for i := 1; i < s.len(); i++ {
		assert.Less(t, s.list[i-1].Offset, s.list[i].Offset)
	}
}

package buffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/textcore/internal/engine/textpos"
)

func TestLine(t *testing.T) {
	b := FromString("alpha\nbeta\n\ngamma")
	for i, want := range []string{"alpha\n", "beta\n", "\n", "gamma"} {
		got, ex, err := b.Line(int64(i))
		require.NoError(t, err)
		assert.Equal(t, want, string(got))
		assert.Equal(t, textpos.Exact, ex)
	}
	_, _, err := b.Line(4)
	assert.ErrorIs(t, err, textpos.ErrOutOfRange)
}

func TestLineOfLazyFile(t *testing.T) {
	b, _ := openLarge(t, 200*mib)

	got, ex, err := b.Line(50)
	require.NoError(t, err)
	assert.Equal(t, textpos.Exact, ex)
	assert.Equal(t, lineBytes(5000, 5100), got)

	got, ex, err = b.Line(1_000_000)
	require.NoError(t, err)
	assert.Equal(t, textpos.Estimated, ex)
	assert.Equal(t, lineBytes(100_000_000, 100_000_100), got)
}

func TestLineIterator(t *testing.T) {
	s := FromString("alpha\nbeta\ngamma").Snapshot()

	it := s.Lines(8)
	assert.EqualValues(t, 6, it.Position())
	var fwd []string
	for it.Next() {
		fwd = append(fwd, string(it.Line()))
	}
	require.NoError(t, it.Err())
	assert.Equal(t, []string{"beta\n", "gamma"}, fwd)

	var back []string
	for it.Prev() {
		back = append(back, string(it.Line()))
	}
	require.NoError(t, it.Err())
	assert.Equal(t, []string{"gamma", "beta\n", "alpha\n"}, back)
	assert.EqualValues(t, 0, it.Start())

	require.True(t, it.Next())
	assert.Equal(t, "alpha\n", string(it.Line()))
}

func TestLineIteratorOverUnloadedRegion(t *testing.T) {
	b, src := openLarge(t, 200*mib)
	start := int64(100 * mib)

	it := b.Snapshot().Lines(start + 50)
	require.True(t, it.Next())
	assert.Equal(t, start, it.Start())
	assert.Equal(t, lineBytes(start, start+100), it.Line())

	require.True(t, it.Prev())
	require.True(t, it.Prev())
	assert.Equal(t, lineBytes(start-100, start), it.Line())
	require.NoError(t, it.Err())

	assert.Positive(t, src.reads.Load())
	assert.Equal(t, 1, b.PieceCount(), "iteration must not retain chunks")
}

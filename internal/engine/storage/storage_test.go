package storage

import (
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/textcore/internal/engine/textpos"
	"github.com/dshills/textcore/internal/logging"
)

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestUnitLineFeeds(t *testing.T) {
	t.Parallel()

	data := []byte("ab\ncd\n\nef")
	for _, index := range []bool{true, false} {
		u := NewLoaded(1, data, index)

		assert.Equal(t, textpos.Known(3), u.CountLineFeeds(0, int64(len(data))))
		assert.Equal(t, textpos.Known(1), u.CountLineFeeds(3, 6))
		assert.Equal(t, textpos.Known(0), u.CountLineFeeds(7, 9))

		assert.Equal(t, int64(2), u.NthLineFeed(0, 9, 1))
		assert.Equal(t, int64(6), u.NthLineFeed(0, 9, 3))
		assert.Equal(t, int64(5), u.NthLineFeed(3, 9, 1))
		assert.Equal(t, int64(-1), u.NthLineFeed(0, 9, 4))
		assert.Equal(t, int64(-1), u.NthLineFeed(0, 5, 2))

		assert.Equal(t, int64(6), u.LastLineFeed(0, 9))
		assert.Equal(t, int64(2), u.LastLineFeed(0, 5))
		assert.Equal(t, int64(-1), u.LastLineFeed(7, 9))
	}
}

func TestUnloadedUnit(t *testing.T) {
	t.Parallel()

	u := NewUnloaded(7, "big.log", 4096, 1<<20)
	assert.False(t, u.IsLoaded())
	assert.Equal(t, KindUnloaded, u.Kind())
	assert.False(t, u.CountLineFeeds(0, 10).IsKnown())

	_, err := u.Bytes(0, 10)
	assert.ErrorIs(t, err, textpos.ErrNotLoaded)
}

func TestUnitBytesBounds(t *testing.T) {
	t.Parallel()

	u := NewLoaded(1, []byte("hello"), false)
	b, err := u.Bytes(1, 4)
	require.NoError(t, err)
	assert.Equal(t, "ell", string(b))
	assert.Equal(t, 3, cap(b))

	_, err = u.Bytes(2, 9)
	assert.ErrorIs(t, err, textpos.ErrOutOfRange)
}

func TestAppendStartsNewUnitWhenFull(t *testing.T) {
	t.Parallel()

	s := NewStore(WithAddCapacity(8), WithLogger(logging.Discard()))

	u1, off1 := s.Append([]byte("abcde"))
	u2, off2 := s.Append([]byte("fgh"))
	u3, off3 := s.Append([]byte("ij"))

	assert.Same(t, u1, u2)
	assert.Equal(t, int64(0), off1)
	assert.Equal(t, int64(5), off2)
	assert.NotSame(t, u1, u3)
	assert.Equal(t, int64(0), off3)

	b, err := u1.Bytes(0, 8)
	require.NoError(t, err)
	assert.Equal(t, "abcdefgh", string(b))

	big, off := s.Append([]byte("0123456789abcdef"))
	assert.Equal(t, int64(0), off)
	assert.Equal(t, int64(16), big.Len())
}

func TestLoadChunk(t *testing.T) {
	t.Parallel()

	path := writeTemp(t, "line one\nline two\nline three\n")
	s := NewStore(WithLogger(logging.Discard()))
	t.Cleanup(func() { _ = s.Close() })

	u, err := s.Open(path)
	require.NoError(t, err)
	assert.Equal(t, int64(29), u.Len())
	assert.False(t, u.IsLoaded())

	chunk, err := s.Load(u, 9, 9)
	require.NoError(t, err)
	assert.True(t, chunk.IsLoaded())
	b, err := chunk.Bytes(0, chunk.Len())
	require.NoError(t, err)
	assert.Equal(t, "line two\n", string(b))
	assert.Equal(t, textpos.Known(1), chunk.CountLineFeeds(0, chunk.Len()))

	assert.False(t, u.IsLoaded(), "original unit must not change")

	transient, err := s.Read(u, 0, 4)
	require.NoError(t, err)
	assert.Equal(t, "line", string(transient))
}

func TestLoadOutOfRange(t *testing.T) {
	t.Parallel()

	path := writeTemp(t, "short")
	s := NewStore(WithLogger(logging.Discard()))
	u, err := s.Open(path)
	require.NoError(t, err)

	_, err = s.Load(u, 3, 10)
	assert.ErrorIs(t, err, textpos.ErrOutOfRange)
}

func TestLoadDetectsTruncation(t *testing.T) {
	t.Parallel()

	path := writeTemp(t, "0123456789")
	s := NewStore(WithLogger(logging.Discard()))
	u, err := s.Open(path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("0123"), 0o600))

	_, err = s.Load(u, 0, 10)
	assert.ErrorIs(t, err, textpos.ErrLoadFailed)
	assert.ErrorIs(t, err, textpos.ErrSourceChanged)
}

func TestOpenMissingFile(t *testing.T) {
	t.Parallel()

	s := NewStore(WithLogger(logging.Discard()))
	_, err := s.Open(filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, textpos.ErrLoadFailed)
}

type failingSource struct {
	calls atomic.Int32
}

func (f *failingSource) Size(string) (int64, error) { return 100, nil }

func (f *failingSource) ReadAt(string, []byte, int64) error {
	f.calls.Add(1)
	return errors.New("disk on fire")
}

func TestLoadSourceError(t *testing.T) {
	t.Parallel()

	src := &failingSource{}
	s := NewStore(WithSource(src), WithLogger(logging.Discard()))
	u, err := s.Open("virtual")
	require.NoError(t, err)

	_, err = s.Load(u, 0, 50)
	require.Error(t, err)
	assert.ErrorIs(t, err, textpos.ErrLoadFailed)
	assert.Contains(t, err.Error(), "disk on fire")
	assert.Equal(t, int32(1), src.calls.Load())
}

func TestWatchFlagsRewrite(t *testing.T) {
	t.Parallel()

	path := writeTemp(t, "aaaaaaaaaa")
	s := NewStore(WithWatch(true), WithLogger(logging.Discard()))
	t.Cleanup(func() { _ = s.Close() })

	u, err := s.Open(path)
	require.NoError(t, err)
	_, err = s.Load(u, 0, 5)
	require.NoError(t, err)

	// Same size, different content: only the watcher can notice.
	require.NoError(t, os.WriteFile(path, []byte("bbbbbbbbbb"), 0o600))

	assert.Eventually(t, func() bool {
		_, err := s.Load(u, 0, 5)
		return errors.Is(err, textpos.ErrSourceChanged)
	}, 2*time.Second, 10*time.Millisecond)
}

package search

import (
	"bytes"
	"context"
	"errors"
	"math/rand/v2"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/textcore/internal/engine/textpos"
)

func whole(b Bytes) textpos.Range {
	return textpos.Range{Start: 0, End: b.Len()}
}

// naive returns the non-overlapping matches of pat found by a full scan.
func naive(data []byte, pat string) []Match {
	var out []Match
	for i := 0; ; {
		j := bytes.Index(data[i:], []byte(pat))
		if j < 0 {
			return out
		}
		out = append(out, Match{Start: int64(i + j), End: int64(i + j + len(pat))})
		i += j + len(pat)
	}
}

func TestFindFirstLiteral(t *testing.T) {
	t.Parallel()

	src := Bytes{Data: []byte("the quick brown fox jumps over the lazy dog"), SegmentSize: 5}
	tests := []struct {
		name    string
		pattern string
		r       textpos.Range
		want    int64
		found   bool
	}{
		{"first word", "the", whole(src), 0, true},
		{"later", "fox", whole(src), 16, true},
		{"second occurrence via range", "the", textpos.Range{Start: 1, End: 43}, 31, true},
		{"absent", "cat", whole(src), 0, false},
		{"match must fit in range", "lazy", textpos.Range{Start: 0, End: 37}, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m, ok, err := FindFirst(context.Background(), src, tt.r, Literal(tt.pattern))
			require.NoError(t, err)
			assert.Equal(t, tt.found, ok)
			if tt.found {
				assert.Equal(t, tt.want, m.Start)
				assert.Equal(t, tt.want+int64(len(tt.pattern)), m.End)
			}
		})
	}
}

func TestMatchAcrossChunkBoundaryFoundOnce(t *testing.T) {
	t.Parallel()

	data := bytes.Repeat([]byte{'.'}, 3*LiteralChunkSize)
	copy(data[LiteralChunkSize-3:], "needle")
	src := Bytes{Data: data, SegmentSize: 1000}

	m, ok, err := FindFirst(context.Background(), src, whole(src), Literal("needle"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(LiteralChunkSize-3), m.Start)

	all, err := FindAll(context.Background(), src, whole(src), Literal("needle"), 0)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestChunkedMatchesEqualFullScan(t *testing.T) {
	t.Parallel()

	r := rand.New(rand.NewPCG(3, 5))
	alphabet := []byte("ab\n")
	for trial := 0; trial < 50; trial++ {
		data := make([]byte, 500+r.IntN(500))
		for i := range data {
			data[i] = alphabet[r.IntN(len(alphabet))]
		}
		from := r.IntN(100)
		pat := string(data[from : from+1+r.IntN(6)])
		src := Bytes{Data: data, SegmentSize: 1 + r.IntN(40)}

		got, err := FindAll(context.Background(), src, whole(src), Literal(pat), 0,
			WithChunkSize(1+r.IntN(30)))
		require.NoError(t, err)
		assert.Equal(t, naive(data, pat), got, "trial %d pattern %q", trial, pat)
	}
}

func TestEmptyPatternOrRange(t *testing.T) {
	t.Parallel()

	src := Bytes{Data: []byte("abc")}
	_, ok, err := FindFirst(context.Background(), src, whole(src), Literal(""))
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = FindFirst(context.Background(), src, textpos.Range{Start: 2, End: 2}, Literal("c"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRegex(t *testing.T) {
	t.Parallel()

	_, err := Regex("a(b")
	require.ErrorIs(t, err, textpos.ErrInvalidPattern)

	pat, err := Regex(`ne+dle`)
	require.NoError(t, err)
	data := []byte(strings.Repeat("x", 30) + "neeeeedle" + strings.Repeat("y", 30) + "nedle")
	src := Bytes{Data: data, SegmentSize: 7}

	got, err := FindAll(context.Background(), src, whole(src), pat, 0, WithChunkSize(16), WithOverlap(12))
	require.NoError(t, err)
	assert.Equal(t, []Match{{Start: 30, End: 39}, {Start: 69, End: 74}}, got)
}

// fullScan returns the non-empty matches regexp reports for the whole of
// data.
func fullScan(re *regexp.Regexp, data []byte) []Match {
	var out []Match
	for _, loc := range re.FindAllIndex(data, -1) {
		if loc[1] > loc[0] {
			out = append(out, Match{Start: int64(loc[0]), End: int64(loc[1])})
		}
	}
	return out
}

func TestRegexAssertionsSeePrecedingText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		expr string
		text string
		want []Match
	}{
		{`\bfoo`, "foofoo foo", []Match{{0, 3}, {7, 10}}},
		{`^a`, "aaa", []Match{{0, 1}}},
		{`(?m)^a`, "aa\naa", []Match{{0, 1}, {3, 4}}},
		{`\Bo`, "oo o", []Match{{1, 2}}},
		{`\Ab`, "bb", []Match{{0, 1}}},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			t.Parallel()
			pat, err := Regex(tt.expr)
			require.NoError(t, err)
			src := Bytes{Data: []byte(tt.text)}
			got, err := FindAll(context.Background(), src, whole(src), pat, 0)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, fullScan(regexp.MustCompile(tt.expr), src.Data), got)
		})
	}
}

func TestChunkedRegexEqualsFullScan(t *testing.T) {
	t.Parallel()

	exprs := []string{`\bfoo`, `foo\b`, `^a`, `(?m)^ab`, `(?m)b$`, `\Bo{1,3}`, `a\b`, `\bo{1,2}f?`}
	words := []string{"foo", "a", "ab", "b", "oo", "of", " ", "\n", "ba"}
	r := rand.New(rand.NewPCG(11, 13))
	for trial := 0; trial < 60; trial++ {
		var sb strings.Builder
		for sb.Len() < 300+r.IntN(300) {
			sb.WriteString(words[r.IntN(len(words))])
		}
		data := []byte(sb.String())
		src := Bytes{Data: data, SegmentSize: 1 + r.IntN(40)}

		for _, expr := range exprs {
			pat, err := Regex(expr)
			require.NoError(t, err)
			chunk := 1 + r.IntN(30)
			got, err := FindAll(context.Background(), src, whole(src), pat, 0,
				WithChunkSize(chunk), WithOverlap(8))
			require.NoError(t, err)
			assert.Equal(t, fullScan(regexp.MustCompile(expr), data), got,
				"trial %d expr %q chunk %d", trial, expr, chunk)
		}
	}
}

func TestRegexGreedyMatchAtWindowEnd(t *testing.T) {
	t.Parallel()

	pat, err := Regex(`a+`)
	require.NoError(t, err)
	src := Bytes{Data: []byte("xxxxaaaaaaxx")}

	got, err := FindAll(context.Background(), src, whole(src), pat, 0, WithChunkSize(6), WithOverlap(8))
	require.NoError(t, err)
	assert.Equal(t, []Match{{Start: 4, End: 10}}, got)
}

func TestFold(t *testing.T) {
	t.Parallel()

	src := Bytes{Data: []byte("Hello, HELLO, hello"), SegmentSize: 4}
	got, err := FindAll(context.Background(), src, whole(src), Fold("hello"), 0, WithChunkSize(8))
	require.NoError(t, err)
	assert.Equal(t, []Match{{0, 5}, {7, 12}, {14, 19}}, got)
}

func TestFoldAcrossWindowSeams(t *testing.T) {
	t.Parallel()

	const chunk = 64
	variants := []string{"ÉTÉ", "été", "Été"}
	for at := chunk - 8; at <= chunk+8; at++ {
		data := bytes.Repeat([]byte{'-'}, 3*chunk)
		var planted []int
		pos := at
		for _, v := range variants {
			copy(data[pos:], v)
			planted = append(planted, pos)
			pos += len(v) + 7
		}
		src := Bytes{Data: data, SegmentSize: 5}
		pat := Fold("été")

		scan, err := FindAll(context.Background(), src, whole(src), pat, 0, WithChunkSize(len(data)))
		require.NoError(t, err)
		got, err := FindAll(context.Background(), src, whole(src), pat, 0, WithChunkSize(chunk))
		require.NoError(t, err)

		assert.Equal(t, scan, got, "planted at %d", at)
		if assert.Len(t, got, len(variants), "planted at %d", at) {
			for i, m := range got {
				assert.Equal(t, int64(planted[i]), m.Start)
				assert.Equal(t, int64(planted[i]+len(variants[i])), m.End)
			}
		}
	}
}

func TestFindAllLimit(t *testing.T) {
	t.Parallel()

	src := Bytes{Data: []byte("a a a a a")}
	got, err := FindAll(context.Background(), src, whole(src), Literal("a"), 2)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	src := Bytes{Data: []byte("abc")}
	_, _, err := FindFirst(ctx, src, whole(src), Literal("b"))
	assert.ErrorIs(t, err, context.Canceled)
}

type brokenSource struct{}

func (brokenSource) Len() int64 { return 100 }

func (brokenSource) Segments(int64, int64) Segments { return &brokenSegments{} }

type brokenSegments struct{ calls int }

func (s *brokenSegments) Next() bool {
	s.calls++
	return s.calls == 1
}

func (s *brokenSegments) Bytes() []byte { return []byte("abc") }

func (s *brokenSegments) Err() error {
	return textpos.ErrLoadFailed
}

func TestSourceErrorSurfaces(t *testing.T) {
	t.Parallel()

	_, ok, err := FindFirst(context.Background(), brokenSource{}, textpos.Range{Start: 0, End: 100}, Literal("zzz"))
	assert.False(t, ok)
	assert.True(t, errors.Is(err, textpos.ErrLoadFailed))
}

func TestWindowOverlap(t *testing.T) {
	t.Parallel()

	w := NewWindow(Bytes{Data: []byte("abcdefghij"), SegmentSize: 3}, 0, 10, 4, 2)

	type chunk struct {
		text       string
		offset     int64
		validStart int
		last       bool
	}
	var got []chunk
	for w.Next() {
		got = append(got, chunk{string(w.Bytes()), w.Offset(), w.ValidStart(), w.Last()})
	}
	require.NoError(t, w.Err())
	assert.Equal(t, []chunk{
		{"abcd", 0, 0, false},
		{"cdefgh", 2, 2, false},
		{"ghij", 6, 2, true},
	}, got)
}

func BenchmarkLiteralSearch(b *testing.B) {
	data := bytes.Repeat([]byte("lorem ipsum dolor sit amet\n"), 1<<16)
	src := Bytes{Data: data, SegmentSize: 4096}
	pat := Literal("not present")
	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _, _ = FindFirst(context.Background(), src, whole(src), pat)
	}
}

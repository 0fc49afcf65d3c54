package piecetree

import (
	"errors"
	"math"
	"math/rand/v2"
	"strings"
	"testing"
	"testing/quick"

	"github.com/dshills/textcore/internal/engine/storage"
	"github.com/dshills/textcore/internal/engine/textpos"
)

func TestNew(t *testing.T) {
	tr := New()
	if tr.Len() != 0 {
		t.Errorf("New tree should have length 0, got %d", tr.Len())
	}
	if !tr.IsEmpty() {
		t.Error("New tree should be empty")
	}
	if got := tr.LineCount(); got != textpos.Known(1) {
		t.Errorf("New tree should have 1 line, got %s", got)
	}
	if tr.Height() != -1 {
		t.Errorf("Height() = %d, want -1", tr.Height())
	}
}

func TestFromPieces(t *testing.T) {
	tests := []struct {
		name  string
		input string
		chunk int
	}{
		{"single char", "a", 1},
		{"short string", "hello", 2},
		{"with newline", "hello\nworld", 3},
		{"multiple newlines", "a\nb\nc\nd", 1},
		{"unicode", "hello 世界 🌍", 4},
		{"long string", strings.Repeat("abcdefghij", 100), 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := fromString(tt.input, tt.chunk)
			checkInvariants(t, tr)
			if tr.String() != tt.input {
				t.Errorf("String() = %q, want %q", tr.String(), tt.input)
			}
			if tr.Len() != int64(len(tt.input)) {
				t.Errorf("Len() = %d, want %d", tr.Len(), len(tt.input))
			}
			want := textpos.Known(int64(strings.Count(tt.input, "\n")))
			if tr.LineFeeds() != want {
				t.Errorf("LineFeeds() = %s, want %s", tr.LineFeeds(), want)
			}
		})
	}
}

func TestInsert(t *testing.T) {
	tests := []struct {
		name     string
		initial  string
		offset   int64
		text     string
		expected string
	}{
		{"into empty", "", 0, "hello", "hello"},
		{"at start", "world", 0, "hello ", "hello world"},
		{"at end", "hello", 5, " world", "hello world"},
		{"in middle", "helo", 2, "l", "hello"},
		{"on piece boundary", "abcdef", 3, "XY", "abcXYdef"},
		{"newline", "ab", 1, "\n", "a\nb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := fromString(tt.initial, 3)
			got, err := tr.Insert(tt.offset, loaded(tt.text))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			checkInvariants(t, got)
			if got.String() != tt.expected {
				t.Errorf("Insert() = %q, want %q", got.String(), tt.expected)
			}
			if tr.String() != tt.initial {
				t.Errorf("original modified: %q", tr.String())
			}
		})
	}
}

func TestInsertOutOfRange(t *testing.T) {
	tr := fromString("hello", 2)
	for _, off := range []int64{-1, 6, 100} {
		if _, err := tr.Insert(off, loaded("x")); !errors.Is(err, textpos.ErrOutOfRange) {
			t.Errorf("Insert(%d) error = %v, want ErrOutOfRange", off, err)
		}
	}
}

func TestDelete(t *testing.T) {
	tests := []struct {
		name     string
		initial  string
		offset   int64
		length   int64
		expected string
	}{
		{"from start", "hello world", 0, 6, "world"},
		{"from end", "hello world", 5, 6, "hello"},
		{"middle", "hello world", 2, 3, "he world"},
		{"across pieces", "abcdefghij", 2, 6, "abij"},
		{"everything", "abc", 0, 3, ""},
		{"zero length", "abc", 1, 0, "abc"},
		{"clamped past end", "hello", 3, 100, "hel"},
		{"at end", "hello", 5, 10, "hello"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := fromString(tt.initial, 3)
			got, err := tr.Delete(tt.offset, tt.length)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			checkInvariants(t, got)
			if got.String() != tt.expected {
				t.Errorf("Delete() = %q, want %q", got.String(), tt.expected)
			}
		})
	}
}

func TestDeleteOutOfRange(t *testing.T) {
	tr := fromString("hello", 2)
	if _, err := tr.Delete(6, 1); !errors.Is(err, textpos.ErrOutOfRange) {
		t.Errorf("Delete(6, 1) error = %v, want ErrOutOfRange", err)
	}
	if _, err := tr.Delete(1, -1); !errors.Is(err, textpos.ErrOutOfRange) {
		t.Errorf("Delete(1, -1) error = %v, want ErrOutOfRange", err)
	}
}

func TestInsertThenDeleteRestores(t *testing.T) {
	// Inserting L bytes at p then deleting [p, p+L) gives back the same bytes.
	f := func(base string, ins string, at uint16) bool {
		tr := fromString(base, 5)
		p := int64(at) % (tr.Len() + 1)
		mid, err := tr.Insert(p, loaded(ins))
		if err != nil {
			return false
		}
		back, err := mid.Delete(p, int64(len(ins)))
		if err != nil {
			return false
		}
		return back.String() == base && back.Len() == tr.Len()
	}
	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}
}

func TestReplace(t *testing.T) {
	tr := fromString("hello cruel world", 4)
	got, err := tr.Replace(6, 5, loaded("kind"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	checkInvariants(t, got)
	if got.String() != "hello kind world" {
		t.Errorf("Replace() = %q", got.String())
	}
}

func TestSplitConcat(t *testing.T) {
	text := "the quick brown fox\njumps over\nthe lazy dog"
	tr := fromString(text, 4)
	for off := int64(0); off <= tr.Len(); off++ {
		l, r, err := tr.Split(off)
		if err != nil {
			t.Fatalf("Split(%d): %v", off, err)
		}
		checkInvariants(t, l)
		checkInvariants(t, r)
		if l.String() != text[:off] || r.String() != text[off:] {
			t.Fatalf("Split(%d) = %q | %q", off, l.String(), r.String())
		}
		joined := Concat(l, r)
		checkInvariants(t, joined)
		if joined.String() != text {
			t.Fatalf("Concat after Split(%d) = %q", off, joined.String())
		}
	}
}

func TestConcatUnevenHeights(t *testing.T) {
	big := fromString(strings.Repeat("x", 4096), 1)
	small := fromString("yz", 1)
	for _, tr := range []Tree{Concat(big, small), Concat(small, big)} {
		checkInvariants(t, tr)
		if tr.Len() != 4098 {
			t.Errorf("Len() = %d, want 4098", tr.Len())
		}
	}
}

func TestSnapshotsAreIndependent(t *testing.T) {
	v1 := fromString("abc", 1)
	v2, _ := v1.Insert(1, loaded("XYZ"))
	v3, _ := v2.Delete(0, 2)

	if v1.String() != "abc" || v2.String() != "aXYZbc" || v3.String() != "YZbc" {
		t.Errorf("snapshots changed: %q %q %q", v1.String(), v2.String(), v3.String())
	}
}

func TestConsecutiveAppendsCoalesce(t *testing.T) {
	store := storage.NewStore()
	tr := New()
	off := int64(0)
	for _, ch := range "typing" {
		u, start := store.Append([]byte(string(ch)))
		var err error
		tr, err = tr.Insert(off, NewPiece(u, start, 1))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		off++
	}
	checkInvariants(t, tr)
	if tr.String() != "typing" {
		t.Errorf("String() = %q", tr.String())
	}
	if tr.PieceCount() != 1 {
		t.Errorf("PieceCount() = %d, want 1", tr.PieceCount())
	}
}

func TestBalanceUnderRandomEdits(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	tr := New()
	var model []byte
	for i := 0; i < 2000; i++ {
		if len(model) > 0 && rng.IntN(4) == 0 {
			off := rng.IntN(len(model))
			n := rng.IntN(min(8, len(model)-off)) + 1
			var err error
			if tr, err = tr.Delete(int64(off), int64(n)); err != nil {
				t.Fatalf("Delete: %v", err)
			}
			model = append(model[:off:off], model[off+n:]...)
			continue
		}
		off := rng.IntN(len(model) + 1)
		s := string(rune('a' + rng.IntN(26)))
		if rng.IntN(5) == 0 {
			s = "\n"
		}
		var err error
		if tr, err = tr.Insert(int64(off), loaded(s)); err != nil {
			t.Fatalf("Insert: %v", err)
		}
		model = append(model[:off:off], append([]byte(s), model[off:]...)...)
	}

	checkInvariants(t, tr)
	if tr.String() != string(model) {
		t.Fatal("content diverged from model")
	}
	limit := int(1.45*math.Log2(float64(tr.PieceCount()+2))) + 2
	if tr.Height() > limit {
		t.Errorf("Height() = %d for %d pieces, want <= %d", tr.Height(), tr.PieceCount(), limit)
	}
}

func TestUnknownLineFeedsPropagate(t *testing.T) {
	tr := FromPieces(loaded("ab\n"), unloaded(100), loaded("\ncd"))
	if tr.LineFeeds().IsKnown() {
		t.Error("tree with unloaded piece should have unknown line feeds")
	}
	if tr.Len() != 106 {
		t.Errorf("Len() = %d, want 106", tr.Len())
	}

	l, _, _ := tr.Split(3)
	if got := l.LineFeeds(); got != textpos.Known(1) {
		t.Errorf("known prefix line feeds = %s, want 1", got)
	}
	if got := tr.String(); got != "ab\n"+strings.Repeat("?", 100)+"\ncd" {
		t.Errorf("String() = %q", got)
	}
	if _, err := tr.Bytes(0, 10); !errors.Is(err, textpos.ErrNotLoaded) {
		t.Errorf("Bytes over unloaded piece error = %v, want ErrNotLoaded", err)
	}
}

func TestPieceAt(t *testing.T) {
	tr := FromPieces(loaded("abc"), loaded("defg"))
	p, start, ok := tr.PieceAt(3)
	if !ok || start != 3 || p.Length != 4 {
		t.Errorf("PieceAt(3) = %s, %d, %v", p, start, ok)
	}
	if _, _, ok := tr.PieceAt(7); ok {
		t.Error("PieceAt(len) should report false")
	}
}

func TestIter(t *testing.T) {
	tr := FromPieces(loaded("abc"), loaded("defg"), loaded("hi"))
	tests := []struct {
		name       string
		start, end int64
		want       []string
	}{
		{"all", 0, 9, []string{"abc", "defg", "hi"}},
		{"inside one", 4, 6, []string{"ef"}},
		{"across", 2, 8, []string{"c", "defg", "h"}},
		{"boundary start", 3, 9, []string{"defg", "hi"}},
		{"empty", 5, 5, nil},
		{"clamped", 7, 50, []string{"hi"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for it := tr.Iter(tt.start, tt.end); it.Next(); {
				b, err := it.Segment().Bytes()
				if err != nil {
					t.Fatalf("Bytes: %v", err)
				}
				got = append(got, string(b))
			}
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Errorf("segments = %q, want %q", got, tt.want)
			}
		})
	}
}

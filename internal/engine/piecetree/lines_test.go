package piecetree

import (
	"errors"
	"strings"
	"testing"

	"github.com/dshills/textcore/internal/engine/textpos"
)

func TestOffsetToPoint(t *testing.T) {
	tr := fromString("hello\nworld\n\nend", 3)
	tests := []struct {
		offset int64
		want   textpos.Point
	}{
		{0, textpos.Point{Line: 0, Column: 0}},
		{5, textpos.Point{Line: 0, Column: 5}},
		{6, textpos.Point{Line: 1, Column: 0}},
		{9, textpos.Point{Line: 1, Column: 3}},
		{12, textpos.Point{Line: 2, Column: 0}},
		{13, textpos.Point{Line: 3, Column: 0}},
		{16, textpos.Point{Line: 3, Column: 3}},
	}
	for _, tt := range tests {
		if got := mustPoint(t, tr, tt.offset); got != tt.want {
			t.Errorf("OffsetToPoint(%d) = %s, want %s", tt.offset, got, tt.want)
		}
	}
}

func TestPointToOffset(t *testing.T) {
	tr := fromString("hello\nworld\n\nend", 2)
	tests := []struct {
		name string
		pt   textpos.Point
		want int64
	}{
		{"origin", textpos.Point{Line: 0, Column: 0}, 0},
		{"line 1", textpos.Point{Line: 1, Column: 2}, 8},
		{"empty line", textpos.Point{Line: 2, Column: 0}, 12},
		{"last line end", textpos.Point{Line: 3, Column: 3}, 16},
		{"column clamped to line end", textpos.Point{Line: 0, Column: 99}, 5},
		{"column clamped on empty line", textpos.Point{Line: 2, Column: 4}, 12},
		{"column clamped at document end", textpos.Point{Line: 3, Column: 99}, 16},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tr.PointToOffset(tt.pt)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("PointToOffset(%s) = %d, want %d", tt.pt, got, tt.want)
			}
		})
	}
}

func TestPointOffsetBijection(t *testing.T) {
	text := "alpha\nβeta\n\n\ngamma delta\nε\n"
	for _, chunk := range []int{1, 2, 5, 64} {
		tr := fromString(text, chunk)
		for off := int64(0); off <= tr.Len(); off++ {
			pt := mustPoint(t, tr, off)
			back, err := tr.PointToOffset(pt)
			if err != nil {
				t.Fatalf("chunk %d: PointToOffset(%s): %v", chunk, pt, err)
			}
			if back != off {
				t.Fatalf("chunk %d: offset %d -> %s -> %d", chunk, off, pt, back)
			}
		}
	}
}

func TestLineBeyondKnownCount(t *testing.T) {
	tr := fromString("a\nb", 1)
	if _, err := tr.LineStart(2); !errors.Is(err, textpos.ErrOutOfRange) {
		t.Errorf("LineStart(2) error = %v, want ErrOutOfRange", err)
	}
	if _, err := tr.PointToOffset(textpos.Point{Line: -1}); !errors.Is(err, textpos.ErrOutOfRange) {
		t.Errorf("negative line error = %v, want ErrOutOfRange", err)
	}
	if _, err := tr.OffsetToPoint(4); !errors.Is(err, textpos.ErrOutOfRange) {
		t.Errorf("OffsetToPoint(4) error = %v, want ErrOutOfRange", err)
	}
}

func TestLinesWithUnloadedRegion(t *testing.T) {
	tr := FromPieces(loaded("one\ntwo\n"), unloaded(1000), loaded("x\ny"))

	// Lines before the unloaded region resolve exactly.
	off, err := tr.LineStart(2)
	if err != nil || off != 8 {
		t.Errorf("LineStart(2) = %d, %v; want 8", off, err)
	}
	pt, err := tr.OffsetToPoint(5)
	if err != nil || pt != (textpos.Point{Line: 1, Column: 1}) {
		t.Errorf("OffsetToPoint(5) = %s, %v", pt, err)
	}

	// Anything needing the unknown count fails instead of guessing.
	if _, err := tr.LineStart(3); !errors.Is(err, textpos.ErrUnknownLines) {
		t.Errorf("LineStart(3) error = %v, want ErrUnknownLines", err)
	}
	if _, err := tr.OffsetToPoint(1009); !errors.Is(err, textpos.ErrUnknownLines) {
		t.Errorf("OffsetToPoint(1009) error = %v, want ErrUnknownLines", err)
	}
}

func TestEmptyTreePositions(t *testing.T) {
	tr := New()
	if got := mustPoint(t, tr, 0); got != (textpos.Point{}) {
		t.Errorf("OffsetToPoint(0) = %s", got)
	}
	off, err := tr.PointToOffset(textpos.Point{Line: 0, Column: 3})
	if err != nil || off != 0 {
		t.Errorf("PointToOffset = %d, %v", off, err)
	}
	if _, err := tr.LineStart(1); !errors.Is(err, textpos.ErrOutOfRange) {
		t.Errorf("LineStart(1) error = %v, want ErrOutOfRange", err)
	}
}

func TestInsertAtPosition(t *testing.T) {
	tests := []struct {
		name    string
		initial string
		pt      textpos.Point
		text    string
		want    string
		offset  int64
	}{
		{"start of line 1", "ab\ncd", textpos.Point{Line: 1}, "X", "ab\nXcd", 3},
		{"middle of line 0", "ab\ncd", textpos.Point{Column: 1}, "X", "aXb\ncd", 1},
		{"clamped column", "ab\ncd", textpos.Point{Column: 9}, "X", "abX\ncd", 2},
		{"into empty", "", textpos.Point{}, "hi", "hi", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := fromString(tt.initial, 2)
			got, off, err := tr.InsertAtPosition(tt.pt, loaded(tt.text))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			checkInvariants(t, got)
			if got.String() != tt.want || off != tt.offset {
				t.Errorf("InsertAtPosition = %q at %d, want %q at %d", got.String(), off, tt.want, tt.offset)
			}
		})
	}
}

func TestDeletePositionRange(t *testing.T) {
	tr := fromString("first\nsecond\nthird", 3)
	got, removed, err := tr.DeletePositionRange(textpos.Point{Line: 0, Column: 3}, textpos.Point{Line: 2, Column: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	checkInvariants(t, got)
	if got.String() != "firird" {
		t.Errorf("DeletePositionRange = %q", got.String())
	}
	if removed != (textpos.Range{Start: 3, End: 15}) {
		t.Errorf("removed = %s", removed)
	}

	swapped, _, err := tr.DeletePositionRange(textpos.Point{Line: 1}, textpos.Point{Line: 0, Column: 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if swapped.String() != "firstsecond\nthird" {
		t.Errorf("reversed endpoints = %q", swapped.String())
	}
}

func TestLineCountMatchesNewlines(t *testing.T) {
	text := strings.Repeat("line of text\n", 500)
	tr := fromString(text, 37)
	want := textpos.Known(501)
	if got := tr.LineCount(); got != want {
		t.Errorf("LineCount() = %s, want %s", got, want)
	}
	for line := int64(0); line <= 500; line += 50 {
		off, err := tr.LineStart(line)
		if err != nil {
			t.Fatalf("LineStart(%d): %v", line, err)
		}
		if off != line*13 {
			t.Errorf("LineStart(%d) = %d, want %d", line, off, line*13)
		}
	}
}

package piecetree

import (
	"strings"
	"testing"
)

// FuzzEdits applies an insert then a delete and compares with a string model.
func FuzzEdits(f *testing.F) {
	f.Add("hello\nworld", 3, "abc", 2, 4)
	f.Add("", 0, "x", 0, 1)
	f.Add("日本語\n", 3, "\n\n", 1, 3)

	f.Fuzz(func(t *testing.T, initial string, insAt int, text string, delAt, delLen int) {
		tr := fromString(initial, 3)
		model := initial

		insAt = clampInt(insAt, 0, len(model))
		tr, err := tr.Insert(int64(insAt), loaded(text))
		if err != nil {
			t.Fatalf("Insert: %v", err)
		}
		model = model[:insAt] + text + model[insAt:]

		delAt = clampInt(delAt, 0, len(model))
		delLen = clampInt(delLen, 0, len(model))
		tr, err = tr.Delete(int64(delAt), int64(delLen))
		if err != nil {
			t.Fatalf("Delete: %v", err)
		}
		end := min(delAt+delLen, len(model))
		model = model[:delAt] + model[end:]

		checkInvariants(t, tr)
		if tr.String() != model {
			t.Fatalf("content = %q, want %q", tr.String(), model)
		}
		if n, _ := tr.LineFeeds().Value(); int(n) != strings.Count(model, "\n") {
			t.Errorf("line feeds = %d, want %d", n, strings.Count(model, "\n"))
		}
	})
}

// FuzzPointRoundTrip checks offset -> point -> offset for every offset.
func FuzzPointRoundTrip(f *testing.F) {
	f.Add("a\nbb\n\nccc", 2)
	f.Add("\n\n\n", 1)

	f.Fuzz(func(t *testing.T, s string, chunk int) {
		chunk = clampInt(chunk, 1, 16)
		tr := fromString(s, chunk)
		for off := int64(0); off <= tr.Len(); off++ {
			pt := mustPoint(t, tr, off)
			back, err := tr.PointToOffset(pt)
			if err != nil || back != off {
				t.Fatalf("offset %d -> %s -> %d (%v)", off, pt, back, err)
			}
		}
	})
}

func clampInt(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

package piecetree

import (
	"sync/atomic"
	"testing"

	"github.com/dshills/textcore/internal/engine/storage"
	"github.com/dshills/textcore/internal/engine/textpos"
)

var testUnitID atomic.Uint64

// loaded returns a piece covering all of s in a fresh indexed unit.
func loaded(s string) Piece {
	u := storage.NewLoaded(storage.ID(testUnitID.Add(1)), []byte(s), true)
	return NewPiece(u, 0, int64(len(s)))
}

// unloaded returns a piece of n bytes that has not been read.
func unloaded(n int64) Piece {
	u := storage.NewUnloaded(storage.ID(testUnitID.Add(1)), "virtual", 0, n)
	return NewPiece(u, 0, n)
}

// fromString builds a tree of pieces of at most chunk bytes each.
func fromString(s string, chunk int) Tree {
	b := NewBuilder()
	for i := 0; i < len(s); i += chunk {
		end := min(i+chunk, len(s))
		// Separate units keep pieces from merging back together.
		part := storage.NewLoaded(storage.ID(testUnitID.Add(1)), []byte(s[i:end]), i%2 == 0)
		b.Add(NewPiece(part, 0, int64(end-i)))
	}
	return b.Build()
}

// checkInvariants verifies balance and cached summaries.
func checkInvariants(t *testing.T, tr Tree) {
	t.Helper()
	var walk func(n *Node) Summary
	walk = func(n *Node) Summary {
		if n.IsLeaf() {
			if n.height != 0 {
				t.Fatalf("leaf height %d", n.height)
			}
			if n.piece.Length <= 0 {
				t.Fatalf("empty leaf %s", n.piece)
			}
			want := n.piece.Unit.CountLineFeeds(n.piece.Start, n.piece.End())
			if want != n.piece.LineFeeds {
				t.Fatalf("leaf %s: line feeds %s, want %s", n.piece, n.piece.LineFeeds, want)
			}
			return summarize(n.piece)
		}
		ls, rs := walk(n.left), walk(n.right)
		if d := n.left.height - n.right.height; d > 1 || d < -1 {
			t.Fatalf("unbalanced node: heights %d and %d", n.left.height, n.right.height)
		}
		if n.height != max(n.left.height, n.right.height)+1 {
			t.Fatalf("height %d, children %d and %d", n.height, n.left.height, n.right.height)
		}
		sum := ls.Add(rs)
		if sum != n.summary {
			t.Fatalf("summary %+v, want %+v", n.summary, sum)
		}
		return sum
	}
	if tr.root != nil {
		walk(tr.root)
	}
}

func mustPoint(t *testing.T, tr Tree, off int64) textpos.Point {
	t.Helper()
	pt, err := tr.OffsetToPoint(off)
	if err != nil {
		t.Fatalf("OffsetToPoint(%d): %v", off, err)
	}
	return pt
}

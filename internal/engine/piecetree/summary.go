package piecetree

import "github.com/dshills/textcore/internal/engine/textpos"

// Summary aggregates the pieces of a subtree.
// Summaries form a monoid under Add with the zero value as identity.
type Summary struct {
	Bytes     int64
	LineFeeds textpos.Count
	Pieces    int
}

// Add combines two summaries (associative, not commutative).
func (s Summary) Add(other Summary) Summary {
	return Summary{
		Bytes:     s.Bytes + other.Bytes,
		LineFeeds: s.LineFeeds.Add(other.LineFeeds),
		Pieces:    s.Pieces + other.Pieces,
	}
}

func summarize(p Piece) Summary {
	return Summary{Bytes: p.Length, LineFeeds: p.LineFeeds, Pieces: 1}
}

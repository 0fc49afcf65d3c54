package piecetree

import (
	"fmt"

	"github.com/dshills/textcore/internal/engine/storage"
	"github.com/dshills/textcore/internal/engine/textpos"
)

// Piece is a byte range [Start, Start+Length) of a storage unit.
type Piece struct {
	Unit      *storage.Unit
	Start     int64
	Length    int64
	LineFeeds textpos.Count
}

// NewPiece returns a piece over u, counting line feeds when the unit is
// loaded.
func NewPiece(u *storage.Unit, start, length int64) Piece {
	return Piece{
		Unit:      u,
		Start:     start,
		Length:    length,
		LineFeeds: u.CountLineFeeds(start, start+length),
	}
}

// End returns the unit offset just past the piece.
func (p Piece) End() int64 {
	return p.Start + p.Length
}

// IsLoaded reports whether the piece's bytes are resident.
func (p Piece) IsLoaded() bool {
	return p.Unit.IsLoaded()
}

// Bytes returns the piece's bytes in [lo, hi), relative to the piece start.
func (p Piece) Bytes(lo, hi int64) ([]byte, error) {
	return p.Unit.Bytes(p.Start+lo, p.Start+hi)
}

// String returns a short description of the piece.
func (p Piece) String() string {
	return fmt.Sprintf("piece(unit#%d [%d, %d) lf=%s)", p.Unit.ID(), p.Start, p.End(), p.LineFeeds)
}

// split divides the piece at offset at (relative to the piece start).
// Line-feed counts are recomputed for the smaller half and derived for the
// other when the total is known.
func (p Piece) split(at int64) (Piece, Piece) {
	left := Piece{Unit: p.Unit, Start: p.Start, Length: at}
	right := Piece{Unit: p.Unit, Start: p.Start + at, Length: p.Length - at}

	total, known := p.LineFeeds.Value()
	switch {
	case !p.Unit.IsLoaded():
		left.LineFeeds = textpos.Unknown()
		right.LineFeeds = textpos.Unknown()
	case !known:
		left.LineFeeds = p.Unit.CountLineFeeds(left.Start, left.End())
		right.LineFeeds = p.Unit.CountLineFeeds(right.Start, right.End())
	case at <= p.Length-at:
		n, _ := p.Unit.CountLineFeeds(left.Start, left.End()).Value()
		left.LineFeeds = textpos.Known(n)
		right.LineFeeds = textpos.Known(total - n)
	default:
		n, _ := p.Unit.CountLineFeeds(right.Start, right.End()).Value()
		right.LineFeeds = textpos.Known(n)
		left.LineFeeds = textpos.Known(total - n)
	}
	return left, right
}

// adjoins reports whether next continues p in the same unit.
func (p Piece) adjoins(next Piece) bool {
	return p.Unit == next.Unit && p.End() == next.Start && p.Unit.IsLoaded()
}

// merge returns p extended by next. The caller checks adjoins.
func (p Piece) merge(next Piece) Piece {
	return Piece{
		Unit:      p.Unit,
		Start:     p.Start,
		Length:    p.Length + next.Length,
		LineFeeds: p.LineFeeds.Add(next.LineFeeds),
	}
}

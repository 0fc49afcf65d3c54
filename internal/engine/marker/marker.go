package marker

import (
	"fmt"

	"github.com/dshills/textcore/internal/engine/textpos"
)

// ID identifies a marker within an Index.
type ID uint64

// Affinity decides which side of an insertion at a bound the bound ends up.
type Affinity uint8

const (
	// Left bounds stay before text inserted at their position.
	Left Affinity = iota
	// Right bounds move after text inserted at their position.
	Right
)

// String returns "left" or "right".
func (a Affinity) String() string {
	if a == Right {
		return "right"
	}
	return "left"
}

// DeletePolicy decides the fate of markers lying inside a deleted span.
type DeletePolicy uint8

const (
	// DeleteClamp collapses consumed markers to the deletion start.
	DeleteClamp DeletePolicy = iota
	// DeleteRemove drops markers lying strictly inside the deleted span.
	DeleteRemove
)

// Marker is a resolved snapshot of a marker's state.
type Marker struct {
	ID            ID
	Start, End    int64
	StartAffinity Affinity
	EndAffinity   Affinity
}

// IsPoint returns true for zero-width markers.
func (m Marker) IsPoint() bool {
	return m.Start == m.End
}

// Range returns the marker's extent.
func (m Marker) Range() textpos.Range {
	return textpos.Range{Start: m.Start, End: m.End}
}

// Covers reports whether pos lies in [Start, End), or equals the position of
// a point marker.
func (m Marker) Covers(pos int64) bool {
	if m.IsPoint() {
		return m.Start == pos
	}
	return m.Start <= pos && pos < m.End
}

// String returns a short description of the marker.
func (m Marker) String() string {
	return fmt.Sprintf("marker#%d[%d, %d]", m.ID, m.Start, m.End)
}

package textpos

import "fmt"

// ByteOffset is a byte position in a document.
type ByteOffset = int64

// Point is a line and column position.
type Point struct {
	Line   int64
	Column int64
}

// String returns a human-readable representation of the point.
func (p Point) String() string {
	return fmt.Sprintf("(%d:%d)", p.Line, p.Column)
}

// Compare returns -1 if p < other, 0 if p == other, 1 if p > other.
func (p Point) Compare(other Point) int {
	if p.Line < other.Line {
		return -1
	}
	if p.Line > other.Line {
		return 1
	}
	if p.Column < other.Column {
		return -1
	}
	if p.Column > other.Column {
		return 1
	}
	return 0
}

// Before returns true if p comes before other.
func (p Point) Before(other Point) bool {
	return p.Compare(other) < 0
}

// PositionKind discriminates the two Position forms.
type PositionKind uint8

const (
	// KindOffset is a raw byte offset.
	KindOffset PositionKind = iota
	// KindLineCol is a line/column pair.
	KindLineCol
)

// Position is either a byte offset or a line/column pair.
// The zero value is Offset(0).
type Position struct {
	kind   PositionKind
	offset ByteOffset
	point  Point
}

// Offset returns a Position holding a byte offset.
func Offset(off ByteOffset) Position {
	return Position{kind: KindOffset, offset: off}
}

// LineCol returns a Position holding a line/column pair.
func LineCol(line, col int64) Position {
	return Position{kind: KindLineCol, point: Point{Line: line, Column: col}}
}

// AtPoint returns a Position holding p.
func AtPoint(p Point) Position {
	return Position{kind: KindLineCol, point: p}
}

// Kind reports which form the position holds.
func (p Position) Kind() PositionKind {
	return p.kind
}

// ByteOffset returns the offset and true if p is an offset position.
func (p Position) ByteOffset() (ByteOffset, bool) {
	return p.offset, p.kind == KindOffset
}

// Point returns the line/column pair and true if p is a line/column position.
func (p Position) Point() (Point, bool) {
	return p.point, p.kind == KindLineCol
}

// String returns a human-readable representation of the position.
func (p Position) String() string {
	if p.kind == KindLineCol {
		return p.point.String()
	}
	return fmt.Sprintf("@%d", p.offset)
}

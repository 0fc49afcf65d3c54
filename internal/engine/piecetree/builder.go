package piecetree

// Builder accumulates pieces and builds a balanced tree in one pass.
// Adjacent pieces that continue each other in the same unit are merged.
type Builder struct {
	pieces []Piece
}

// NewBuilder creates a new tree builder.
func NewBuilder() *Builder {
	return &Builder{pieces: make([]Piece, 0, 64)}
}

// Add appends a piece. Empty pieces are ignored.
func (b *Builder) Add(p Piece) {
	if p.Length <= 0 {
		return
	}
	if n := len(b.pieces); n > 0 && b.pieces[n-1].adjoins(p) {
		b.pieces[n-1] = b.pieces[n-1].merge(p)
		return
	}
	b.pieces = append(b.pieces, p)
}

// Len returns the total bytes added so far.
func (b *Builder) Len() int64 {
	var n int64
	for _, p := range b.pieces {
		n += p.Length
	}
	return n
}

// Build returns the tree. The builder may be reused afterwards.
func (b *Builder) Build() Tree {
	t := FromPieces(b.pieces...)
	b.pieces = b.pieces[:0]
	return t
}

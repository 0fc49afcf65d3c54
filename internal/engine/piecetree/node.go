package piecetree

// Node is a node of the piece tree. Leaves (height 0) hold a single piece;
// internal nodes have exactly two children. Nodes are never modified after
// construction.
type Node struct {
	height  int8
	summary Summary

	// Internal node fields.
	left, right *Node

	// Leaf node fields.
	piece Piece
}

func newLeaf(p Piece) *Node {
	return &Node{summary: summarize(p), piece: p}
}

func newInternal(left, right *Node) *Node {
	return &Node{
		height:  max(left.height, right.height) + 1,
		summary: left.summary.Add(right.summary),
		left:    left,
		right:   right,
	}
}

// IsLeaf returns true if this is a leaf node.
func (n *Node) IsLeaf() bool {
	return n.left == nil
}

// Len returns the byte length of the subtree.
func (n *Node) Len() int64 {
	if n == nil {
		return 0
	}
	return n.summary.Bytes
}

func height(n *Node) int8 {
	if n == nil {
		return -1
	}
	return n.height
}

// join concatenates two trees, rebalancing along the spine of the taller
// one. Cost is O(|height(l) - height(r)| + 1).
func join(l, r *Node) *Node {
	switch {
	case l == nil:
		return r
	case r == nil:
		return l
	}

	hl, hr := l.height, r.height
	if hl > hr+1 {
		return balance(l.left, join(l.right, r))
	}
	if hr > hl+1 {
		return balance(join(l, r.left), r.right)
	}
	return newInternal(l, r)
}

// balance builds an internal node over a and b whose heights differ by at
// most two, rotating when they differ by exactly two.
func balance(a, b *Node) *Node {
	ha, hb := height(a), height(b)
	switch {
	case ha > hb+1:
		if height(a.left) >= height(a.right) {
			return newInternal(a.left, newInternal(a.right, b))
		}
		return newInternal(
			newInternal(a.left, a.right.left),
			newInternal(a.right.right, b),
		)
	case hb > ha+1:
		if height(b.right) >= height(b.left) {
			return newInternal(newInternal(a, b.left), b.right)
		}
		return newInternal(
			newInternal(a, b.left.left),
			newInternal(b.left.right, b.right),
		)
	}
	return newInternal(a, b)
}

// build returns a balanced tree over pieces, skipping empty ones.
func build(pieces []Piece) *Node {
	leaves := make([]*Node, 0, len(pieces))
	for _, p := range pieces {
		if p.Length > 0 {
			leaves = append(leaves, newLeaf(p))
		}
	}
	return buildFromLeaves(leaves)
}

func buildFromLeaves(leaves []*Node) *Node {
	switch len(leaves) {
	case 0:
		return nil
	case 1:
		return leaves[0]
	}
	mid := len(leaves) / 2
	return newInternal(buildFromLeaves(leaves[:mid]), buildFromLeaves(leaves[mid:]))
}

// firstLeaf and lastLeaf return the outermost leaves of a subtree.
func firstLeaf(n *Node) *Node {
	for n != nil && !n.IsLeaf() {
		n = n.left
	}
	return n
}

func lastLeaf(n *Node) *Node {
	for n != nil && !n.IsLeaf() {
		n = n.right
	}
	return n
}

// appendPieces appends the pieces of the subtree in document order.
func (n *Node) appendPieces(dst []Piece) []Piece {
	if n == nil {
		return dst
	}
	if n.IsLeaf() {
		return append(dst, n.piece)
	}
	dst = n.left.appendPieces(dst)
	return n.right.appendPieces(dst)
}

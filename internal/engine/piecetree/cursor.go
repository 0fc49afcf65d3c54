package piecetree

// frame records one step of a root-to-leaf descent.
type frame struct {
	node  *Node
	right bool // the descent continued into node.right
}

// cursor addresses a leaf together with the path that reached it. The path
// lets a split reuse the descent that located the leaf, and lets iteration
// move to the neighbouring leaf in amortized O(1).
type cursor struct {
	path  []frame
	leaf  *Node
	start int64 // document offset of the leaf's first byte
}

// seekOffset descends to the leaf containing offset and returns the offset
// within that leaf. An offset on a piece boundary resolves to the start of
// the following piece, except at the document end. root must be non-nil and
// 0 <= offset <= root.Len().
func seekOffset(root *Node, offset int64) (cursor, int64) {
	c := cursor{path: make([]frame, 0, int(root.height)+1)}
	n := root
	for !n.IsLeaf() {
		ll := n.left.Len()
		if offset < ll {
			c.path = append(c.path, frame{node: n})
			n = n.left
			continue
		}
		c.path = append(c.path, frame{node: n, right: true})
		c.start += ll
		offset -= ll
		n = n.right
	}
	c.leaf = n
	return c, offset
}

// leafEnd returns the document offset just past the current leaf.
func (c *cursor) leafEnd() int64 {
	return c.start + c.leaf.Len()
}

// next moves to the following leaf. It returns false, leaving the cursor
// unchanged, at the last leaf.
func (c *cursor) next() bool {
	depth := len(c.path) - 1
	for depth >= 0 && c.path[depth].right {
		depth--
	}
	if depth < 0 {
		return false
	}

	c.start = c.leafEnd()
	c.path = c.path[:depth+1]
	c.path[depth].right = true
	n := c.path[depth].node.right
	for !n.IsLeaf() {
		c.path = append(c.path, frame{node: n})
		n = n.left
	}
	c.leaf = n
	return true
}

// split divides the tree at inLeaf bytes into the cursor's leaf, rebuilding
// both halves bottom-up along the recorded path.
func (c *cursor) split(inLeaf int64) (*Node, *Node) {
	var l, r *Node
	switch {
	case inLeaf <= 0:
		r = c.leaf
	case inLeaf >= c.leaf.Len():
		l = c.leaf
	default:
		lp, rp := c.leaf.piece.split(inLeaf)
		l, r = newLeaf(lp), newLeaf(rp)
	}

	for i := len(c.path) - 1; i >= 0; i-- {
		f := c.path[i]
		if f.right {
			l = join(f.node.left, l)
		} else {
			r = join(r, f.node.right)
		}
	}
	return l, r
}

// splitNode splits the subtree rooted at root at offset.
func splitNode(root *Node, offset int64) (*Node, *Node) {
	if root == nil {
		return nil, nil
	}
	if offset <= 0 {
		return nil, root
	}
	if offset >= root.Len() {
		return root, nil
	}
	c, in := seekOffset(root, offset)
	return c.split(in)
}

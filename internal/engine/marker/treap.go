package marker

import "math/rand/v2"

// node is a treap node keyed by start. Its own fields are current with
// respect to every pending shift except those held by its ancestors; its
// pending shift has not yet been applied to its children.
type node struct {
	id          ID
	start, end  int64
	startAff    Affinity
	endAff      Affinity
	maxEnd      int64
	pending     shift
	prio        uint64
	left, right *node
	parent      *node
}

func newNode(id ID, start, end int64, startAff, endAff Affinity) *node {
	return &node{
		id:       id,
		start:    start,
		end:      end,
		startAff: startAff,
		endAff:   endAff,
		maxEnd:   end,
		pending:  identity,
		prio:     rand.Uint64(),
	}
}

// applyShift adjusts n and defers the adjustment of its descendants.
func applyShift(n *node, s shift) {
	if n == nil || s.isIdentity() {
		return
	}
	n.start = s.apply(n.start)
	n.end = s.apply(n.end)
	n.maxEnd = s.apply(n.maxEnd)
	n.pending = n.pending.then(s)
}

// push hands n's pending shift to its children.
func push(n *node) {
	if n.pending.isIdentity() {
		return
	}
	applyShift(n.left, n.pending)
	applyShift(n.right, n.pending)
	n.pending = identity
}

// pull recomputes n's aggregate and re-links its children. n must have been
// pushed.
func pull(n *node) {
	n.maxEnd = n.end
	if n.left != nil {
		n.left.parent = n
		n.maxEnd = max(n.maxEnd, n.left.maxEnd)
	}
	if n.right != nil {
		n.right.parent = n
		n.maxEnd = max(n.maxEnd, n.right.maxEnd)
	}
}

func detach(n *node) *node {
	if n != nil {
		n.parent = nil
	}
	return n
}

// split separates nodes with start < p (start <= p when inclusive) from the
// rest.
func split(n *node, p int64, inclusive bool) (*node, *node) {
	if n == nil {
		return nil, nil
	}
	push(n)
	if n.start < p || (inclusive && n.start == p) {
		a, b := split(n.right, p, inclusive)
		n.right = a
		pull(n)
		return n, detach(b)
	}
	a, b := split(n.left, p, inclusive)
	n.left = b
	pull(n)
	return detach(a), n
}

// merge joins two treaps where every start in a is <= every start in b.
func merge(a, b *node) *node {
	switch {
	case a == nil:
		return detach(b)
	case b == nil:
		return detach(a)
	}
	if a.prio > b.prio {
		push(a)
		a.right = merge(a.right, b)
		pull(a)
		return detach(a)
	}
	push(b)
	b.left = merge(a, b.left)
	pull(b)
	return detach(b)
}

// treap holds the markers sharing one start affinity.
type treap struct {
	root *node
	size int
}

func (t *treap) insert(n *node) {
	l, r := split(t.root, n.start, true)
	t.root = merge(merge(l, n), r)
	t.size++
}

// settle pushes every pending shift between the root and n so that n's own
// fields and its children are current.
func settle(n *node) {
	var path []*node
	for a := n.parent; a != nil; a = a.parent {
		path = append(path, a)
	}
	for i := len(path) - 1; i >= 0; i-- {
		push(path[i])
	}
	push(n)
}

func (t *treap) remove(n *node) {
	settle(n)
	sub := merge(n.left, n.right)
	p := n.parent
	switch {
	case p == nil:
		t.root = sub
	case p.left == n:
		p.left = sub
	default:
		p.right = sub
	}
	if sub != nil {
		sub.parent = p
	}
	for q := p; q != nil; q = q.parent {
		pull(q)
	}
	n.left, n.right, n.parent = nil, nil, nil
	t.size--
}

// resolve returns n's effective bounds by composing the shifts pending on
// its ancestors, nearest first.
func resolve(n *node) (int64, int64) {
	start, end := n.start, n.end
	for a := n.parent; a != nil; a = a.parent {
		start = a.pending.apply(start)
		end = a.pending.apply(end)
	}
	return start, end
}

// insertText shifts the treap for len bytes inserted at p. Starts after p
// (at or after p for right-affinity starts) form a suffix shifted as one
// subtree; ends of earlier markers that reach past p are adjusted one by one.
func (t *treap) insertText(p, length int64, startAff Affinity) {
	l, r := split(t.root, p, startAff == Left)
	applyShift(r, offsetBy(length))
	extendEnds(l, p, length)
	t.root = merge(l, r)
}

func extendEnds(n *node, p, length int64) {
	if n == nil || n.maxEnd < p {
		return
	}
	push(n)
	if n.end > p || (n.end == p && n.endAff == Right) {
		n.end += length
	}
	extendEnds(n.left, p, length)
	extendEnds(n.right, p, length)
	pull(n)
}

// deleteText shifts the treap for [p, p+length) removed. Starts after p
// move back by length but not before p; ends of markers starting at or
// before p are clamped the same way.
func (t *treap) deleteText(p, length int64) {
	l, r := split(t.root, p, true)
	applyShift(r, shift{add: -length, floor: p})
	clampEnds(l, p, length)
	t.root = merge(l, r)
}

func clampEnds(n *node, p, length int64) {
	if n == nil || n.maxEnd <= p {
		return
	}
	push(n)
	if n.end > p {
		n.end = max(p, n.end-length)
	}
	clampEnds(n.left, p, length)
	clampEnds(n.right, p, length)
	pull(n)
}

// stab appends the markers covering pos. acc is the composition of the
// shifts pending on n's ancestors.
func (t *treap) stab(n *node, acc shift, pos int64, out []Marker) []Marker {
	if n == nil || acc.apply(n.maxEnd) < pos {
		return out
	}
	childAcc := n.pending.then(acc)
	out = t.stab(n.left, childAcc, pos, out)
	start, end := acc.apply(n.start), acc.apply(n.end)
	if start > pos {
		return out
	}
	if m := n.marker(start, end); m.Covers(pos) {
		out = append(out, m)
	}
	return t.stab(n.right, childAcc, pos, out)
}

// overlap appends the markers intersecting [a, b). Point markers count when
// a <= position < b.
func (t *treap) overlap(n *node, acc shift, a, b int64, out []Marker) []Marker {
	if n == nil || acc.apply(n.maxEnd) < a {
		return out
	}
	childAcc := n.pending.then(acc)
	out = t.overlap(n.left, childAcc, a, b, out)
	start, end := acc.apply(n.start), acc.apply(n.end)
	if start >= b {
		return out
	}
	if end > a || (start == end && start >= a) {
		out = append(out, n.marker(start, end))
	}
	return t.overlap(n.right, childAcc, a, b, out)
}

// startsIn appends markers whose start lies in [a, b].
func (t *treap) startsIn(n *node, acc shift, a, b int64, out []Marker) []Marker {
	if n == nil {
		return out
	}
	childAcc := n.pending.then(acc)
	start, end := acc.apply(n.start), acc.apply(n.end)
	if start >= a {
		out = t.startsIn(n.left, childAcc, a, b, out)
	}
	if start >= a && start <= b {
		out = append(out, n.marker(start, end))
	}
	if start <= b {
		out = t.startsIn(n.right, childAcc, a, b, out)
	}
	return out
}

func (t *treap) all(n *node, acc shift, out []Marker) []Marker {
	if n == nil {
		return out
	}
	childAcc := n.pending.then(acc)
	out = t.all(n.left, childAcc, out)
	out = append(out, n.marker(acc.apply(n.start), acc.apply(n.end)))
	return t.all(n.right, childAcc, out)
}

func (n *node) marker(start, end int64) Marker {
	return Marker{
		ID:            n.id,
		Start:         start,
		End:           end,
		StartAffinity: n.startAff,
		EndAffinity:   n.endAff,
	}
}

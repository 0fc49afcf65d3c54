package marker

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/dshills/textcore/internal/engine/textpos"
)

// Index stores markers and keeps them anchored across edits.
//
// Index is not safe for concurrent use; the owner serializes access.
type Index struct {
	left   treap // markers whose start has Left affinity
	right  treap // markers whose start has Right affinity
	nodes  map[ID]*node
	nextID ID
	policy DeletePolicy
}

// Option configures an Index.
type Option func(*Index)

// WithDeletePolicy sets how markers inside deleted text are handled.
func WithDeletePolicy(p DeletePolicy) Option {
	return func(idx *Index) {
		idx.policy = p
	}
}

// NewIndex creates an empty marker index.
func NewIndex(opts ...Option) *Index {
	idx := &Index{nodes: make(map[ID]*node)}
	for _, opt := range opts {
		opt(idx)
	}
	return idx
}

// Len returns the number of markers.
func (idx *Index) Len() int {
	return len(idx.nodes)
}

// Policy returns the deletion policy.
func (idx *Index) Policy() DeletePolicy {
	return idx.policy
}

func (idx *Index) treapFor(a Affinity) *treap {
	if a == Right {
		return &idx.right
	}
	return &idx.left
}

// Create adds an interval marker over r.
func (idx *Index) Create(r textpos.Range, startAff, endAff Affinity) (ID, error) {
	if r.Start < 0 || r.End < r.Start {
		return 0, fmt.Errorf("marker range %s: %w", r, textpos.ErrOutOfRange)
	}
	idx.nextID++
	n := newNode(idx.nextID, r.Start, r.End, startAff, endAff)
	idx.treapFor(startAff).insert(n)
	idx.nodes[n.id] = n
	return n.id, nil
}

// CreatePoint adds a zero-width marker at offset.
func (idx *Index) CreatePoint(offset int64, aff Affinity) (ID, error) {
	return idx.Create(textpos.Range{Start: offset, End: offset}, aff, aff)
}

// Get returns the marker's current state.
func (idx *Index) Get(id ID) (Marker, error) {
	n, ok := idx.nodes[id]
	if !ok {
		return Marker{}, fmt.Errorf("marker %d: %w", id, textpos.ErrMarkerNotFound)
	}
	start, end := resolve(n)
	return n.marker(start, end), nil
}

// Position returns the start of the marker.
func (idx *Index) Position(id ID) (int64, error) {
	m, err := idx.Get(id)
	if err != nil {
		return 0, err
	}
	return m.Start, nil
}

// Move relocates a marker, keeping its ID and affinities.
func (idx *Index) Move(id ID, r textpos.Range) error {
	n, ok := idx.nodes[id]
	if !ok {
		return fmt.Errorf("marker %d: %w", id, textpos.ErrMarkerNotFound)
	}
	if r.Start < 0 || r.End < r.Start {
		return fmt.Errorf("marker range %s: %w", r, textpos.ErrOutOfRange)
	}
	t := idx.treapFor(n.startAff)
	t.remove(n)
	n.start, n.end, n.maxEnd = r.Start, r.End, r.End
	n.pending = identity
	t.insert(n)
	return nil
}

// Remove deletes a marker.
func (idx *Index) Remove(id ID) error {
	n, ok := idx.nodes[id]
	if !ok {
		return fmt.Errorf("marker %d: %w", id, textpos.ErrMarkerNotFound)
	}
	idx.treapFor(n.startAff).remove(n)
	delete(idx.nodes, id)
	return nil
}

// Insert adjusts markers for length bytes inserted at offset.
func (idx *Index) Insert(offset, length int64) {
	if length <= 0 {
		return
	}
	idx.left.insertText(offset, length, Left)
	idx.right.insertText(offset, length, Right)
}

// Delete adjusts markers for the bytes [offset, offset+length) being
// removed. Under DeleteRemove, markers lying strictly inside the span are
// dropped and their IDs returned.
func (idx *Index) Delete(offset, length int64) []ID {
	if length <= 0 {
		return nil
	}
	var removed []ID
	if idx.policy == DeleteRemove {
		removed = idx.removeConsumed(offset, offset+length)
	}
	idx.left.deleteText(offset, length)
	idx.right.deleteText(offset, length)
	return removed
}

// Apply adjusts markers for an edit and returns the IDs of markers the
// deletion policy removed.
func (idx *Index) Apply(e textpos.Edit) []ID {
	removed := idx.Delete(e.Offset, e.Removed)
	idx.Insert(e.Offset, e.Inserted)
	return removed
}

// OnEdit implements textpos.EditListener.
func (idx *Index) OnEdit(e textpos.Edit) {
	idx.Apply(e)
}

// removeConsumed drops markers within [from, to] that do not merely touch
// its edges.
func (idx *Index) removeConsumed(from, to int64) []ID {
	var candidates []Marker
	for _, t := range []*treap{&idx.left, &idx.right} {
		candidates = t.startsIn(t.root, identity, from, to, candidates)
	}
	var removed []ID
	for _, m := range candidates {
		if m.End <= to && m.Start != to && m.End != from {
			_ = idx.Remove(m.ID)
			removed = append(removed, m.ID)
		}
	}
	slices.Sort(removed)
	return removed
}

// QueryPoint returns the markers covering pos, ordered by start then ID.
func (idx *Index) QueryPoint(pos int64) []Marker {
	var out []Marker
	out = idx.left.stab(idx.left.root, identity, pos, out)
	out = idx.right.stab(idx.right.root, identity, pos, out)
	sortMarkers(out)
	return out
}

// QueryRange returns the markers intersecting [r.Start, r.End), ordered by
// start then ID. An empty range matches nothing.
func (idx *Index) QueryRange(r textpos.Range) []Marker {
	if r.IsEmpty() {
		return nil
	}
	var out []Marker
	out = idx.left.overlap(idx.left.root, identity, r.Start, r.End, out)
	out = idx.right.overlap(idx.right.root, identity, r.Start, r.End, out)
	sortMarkers(out)
	return out
}

// All returns every marker ordered by start then ID.
func (idx *Index) All() []Marker {
	out := make([]Marker, 0, idx.Len())
	out = idx.left.all(idx.left.root, identity, out)
	out = idx.right.all(idx.right.root, identity, out)
	sortMarkers(out)
	return out
}

func sortMarkers(ms []Marker) {
	slices.SortFunc(ms, func(a, b Marker) int {
		if c := cmp.Compare(a.Start, b.Start); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

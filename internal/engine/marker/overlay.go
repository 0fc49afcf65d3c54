package marker

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/dshills/textcore/internal/engine/textpos"
)

// Face is the presentation applied to an overlay's text. Colors are opaque
// strings interpreted by the renderer.
type Face struct {
	Foreground string
	Background string
	Bold       bool
	Italic     bool
	Underline  bool
}

// Overlay decorates a range of text. The range is held by an interval
// marker whose start has Left affinity and whose end has Right affinity, so
// text typed at either edge extends the overlay.
type Overlay struct {
	Handle    string
	Namespace string
	Priority  int
	Face      Face
	Message   string

	marker ID
}

// Resolved is an overlay together with its current range.
type Resolved struct {
	Overlay
	Range textpos.Range
}

// Overlays manages overlays on top of a marker index.
//
// Overlays is not safe for concurrent use; the owner serializes access.
type Overlays struct {
	index    *Index
	byHandle map[string]*Overlay
	byMarker map[ID]*Overlay
}

// NewOverlays creates an overlay manager storing its ranges in idx.
func NewOverlays(idx *Index) *Overlays {
	return &Overlays{
		index:    idx,
		byHandle: make(map[string]*Overlay),
		byMarker: make(map[ID]*Overlay),
	}
}

// Len returns the number of overlays.
func (o *Overlays) Len() int {
	return len(o.byHandle)
}

// Add places ov over r and returns its handle. A handle is generated when
// ov.Handle is empty; adding an existing handle replaces that overlay.
func (o *Overlays) Add(r textpos.Range, ov Overlay) (string, error) {
	if ov.Handle == "" {
		ov.Handle = uuid.New().String()
	} else if _, exists := o.byHandle[ov.Handle]; exists {
		if err := o.Remove(ov.Handle); err != nil {
			return "", err
		}
	}
	id, err := o.index.Create(r, Left, Right)
	if err != nil {
		return "", fmt.Errorf("overlay %s: %w", ov.Handle, err)
	}
	ov.marker = id
	stored := ov
	o.byHandle[ov.Handle] = &stored
	o.byMarker[id] = &stored
	return ov.Handle, nil
}

// Remove deletes the overlay with the given handle.
func (o *Overlays) Remove(handle string) error {
	ov, ok := o.byHandle[handle]
	if !ok {
		return fmt.Errorf("overlay %s: %w", handle, textpos.ErrMarkerNotFound)
	}
	o.drop(ov)
	return o.index.Remove(ov.marker)
}

func (o *Overlays) drop(ov *Overlay) {
	delete(o.byHandle, ov.Handle)
	delete(o.byMarker, ov.marker)
}

// Get returns the overlay with the given handle and its current range.
func (o *Overlays) Get(handle string) (Resolved, error) {
	ov, ok := o.byHandle[handle]
	if !ok {
		return Resolved{}, fmt.Errorf("overlay %s: %w", handle, textpos.ErrMarkerNotFound)
	}
	m, err := o.index.Get(ov.marker)
	if err != nil {
		return Resolved{}, err
	}
	return Resolved{Overlay: *ov, Range: m.Range()}, nil
}

// ClearNamespace removes every overlay in ns and returns how many were
// removed.
func (o *Overlays) ClearNamespace(ns string) int {
	victims := lo.Filter(lo.Values(o.byHandle), func(ov *Overlay, _ int) bool {
		return ov.Namespace == ns
	})
	for _, ov := range victims {
		_ = o.Remove(ov.Handle)
	}
	return len(victims)
}

// RemoveInRange removes overlays intersecting r and returns how many were
// removed.
func (o *Overlays) RemoveInRange(r textpos.Range) int {
	victims := o.resolve(o.index.QueryRange(r))
	for _, ov := range victims {
		_ = o.Remove(ov.Handle)
	}
	return len(victims)
}

// Forget drops overlays whose markers were removed by the index, typically
// by the DeleteRemove policy.
func (o *Overlays) Forget(ids []ID) {
	for _, id := range ids {
		if ov, ok := o.byMarker[id]; ok {
			o.drop(ov)
		}
	}
}

// AtPosition returns the overlays covering pos, highest priority first.
func (o *Overlays) AtPosition(pos int64) []Resolved {
	out := o.resolve(o.index.QueryPoint(pos))
	slices.SortStableFunc(out, func(a, b Resolved) int {
		return cmp.Compare(b.Priority, a.Priority)
	})
	return out
}

// InRange returns the overlays intersecting r ordered by start, then by
// priority with the highest first.
func (o *Overlays) InRange(r textpos.Range) []Resolved {
	out := o.resolve(o.index.QueryRange(r))
	slices.SortStableFunc(out, func(a, b Resolved) int {
		if c := cmp.Compare(a.Range.Start, b.Range.Start); c != 0 {
			return c
		}
		return cmp.Compare(b.Priority, a.Priority)
	})
	return out
}

// resolve keeps the markers that belong to overlays.
func (o *Overlays) resolve(ms []Marker) []Resolved {
	return lo.FilterMap(ms, func(m Marker, _ int) (Resolved, bool) {
		ov, ok := o.byMarker[m.ID]
		if !ok {
			return Resolved{}, false
		}
		return Resolved{Overlay: *ov, Range: m.Range()}, true
	})
}

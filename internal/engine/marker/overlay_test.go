package marker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/textcore/internal/engine/textpos"
)

func TestOverlayAddAndGet(t *testing.T) {
	t.Parallel()

	ovs := NewOverlays(NewIndex())
	h, err := ovs.Add(rng(4, 9), Overlay{Namespace: "lint", Priority: 2, Message: "unused"})
	require.NoError(t, err)
	assert.NotEmpty(t, h)

	got, err := ovs.Get(h)
	require.NoError(t, err)
	assert.Equal(t, rng(4, 9), got.Range)
	assert.Equal(t, "lint", got.Namespace)
	assert.Equal(t, "unused", got.Message)

	_, err = ovs.Get("nope")
	assert.ErrorIs(t, err, textpos.ErrMarkerNotFound)
}

func TestOverlayEdgesExtend(t *testing.T) {
	t.Parallel()

	idx := NewIndex()
	ovs := NewOverlays(idx)
	h, err := ovs.Add(rng(10, 20), Overlay{})
	require.NoError(t, err)

	idx.Insert(10, 3) // at start: start stays, text joins the overlay
	idx.Insert(23, 2) // at end: end moves
	got, err := ovs.Get(h)
	require.NoError(t, err)
	assert.Equal(t, rng(10, 25), got.Range)
}

func TestOverlayAtPositionByPriority(t *testing.T) {
	t.Parallel()

	ovs := NewOverlays(NewIndex())
	low, _ := ovs.Add(rng(0, 10), Overlay{Priority: 1})
	high, _ := ovs.Add(rng(5, 15), Overlay{Priority: 10})
	mid, _ := ovs.Add(rng(2, 8), Overlay{Priority: 5})
	_, _ = ovs.Add(rng(30, 40), Overlay{Priority: 99})

	got := ovs.AtPosition(6)
	require.Len(t, got, 3)
	assert.Equal(t, []string{high, mid, low}, []string{got[0].Handle, got[1].Handle, got[2].Handle})

	inView := ovs.InRange(rng(9, 31))
	require.Len(t, inView, 3)
	assert.Equal(t, low, inView[0].Handle)
}

func TestOverlayNamespaceAndRangeRemoval(t *testing.T) {
	t.Parallel()

	idx := NewIndex()
	ovs := NewOverlays(idx)
	_, _ = ovs.Add(rng(0, 5), Overlay{Namespace: "search"})
	_, _ = ovs.Add(rng(10, 15), Overlay{Namespace: "search"})
	keep, _ := ovs.Add(rng(20, 25), Overlay{Namespace: "diag"})

	assert.Equal(t, 2, ovs.ClearNamespace("search"))
	assert.Equal(t, 1, ovs.Len())
	assert.Equal(t, 1, idx.Len())

	assert.Equal(t, 1, ovs.RemoveInRange(rng(22, 23)))
	assert.Equal(t, 0, ovs.Len())
	assert.ErrorIs(t, ovs.Remove(keep), textpos.ErrMarkerNotFound)
}

func TestOverlayReplaceHandle(t *testing.T) {
	t.Parallel()

	idx := NewIndex()
	ovs := NewOverlays(idx)
	h, _ := ovs.Add(rng(0, 5), Overlay{Handle: "cursorline"})
	_, err := ovs.Add(rng(7, 9), Overlay{Handle: h})
	require.NoError(t, err)

	assert.Equal(t, 1, ovs.Len())
	assert.Equal(t, 1, idx.Len())
	got, err := ovs.Get("cursorline")
	require.NoError(t, err)
	assert.Equal(t, rng(7, 9), got.Range)
}

func TestOverlayForgetRemovedMarkers(t *testing.T) {
	t.Parallel()

	idx := NewIndex(WithDeletePolicy(DeleteRemove))
	ovs := NewOverlays(idx)
	h, _ := ovs.Add(rng(12, 14), Overlay{})

	removed := idx.Delete(10, 10)
	ovs.Forget(removed)

	assert.Equal(t, 0, ovs.Len())
	_, err := ovs.Get(h)
	assert.ErrorIs(t, err, textpos.ErrMarkerNotFound)
}

package buffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/textcore/internal/engine/textpos"
)

func TestApplyChanges(t *testing.T) {
	b := FromString("one two three")
	var seen []textpos.Edit
	b.AddListener(textpos.EditListenerFunc(func(e textpos.Edit) { seen = append(seen, e) }))

	snap, edits, err := b.ApplyChanges([]Change{
		{Offset: 0, Length: 3, Text: "1"},
		{Offset: 8, Length: 5, Text: "3"},
		{Offset: 4, Length: 3, Text: "2"},
	})
	require.NoError(t, err)
	assert.Equal(t, "1 2 3", text(t, snap))
	assert.Equal(t, []textpos.Edit{
		{Offset: 8, Removed: 5, Inserted: 1},
		{Offset: 4, Removed: 3, Inserted: 1},
		{Offset: 0, Removed: 3, Inserted: 1},
	}, edits)
	assert.Equal(t, edits, seen)
}

func TestApplyChangesKeepsInsertionOrder(t *testing.T) {
	b := FromString("ac")
	snap, _, err := b.ApplyChanges([]Change{
		{Offset: 1, Text: "b"},
		{Offset: 1, Text: "B"},
		{Offset: 2, Text: "!"},
	})
	require.NoError(t, err)
	assert.Equal(t, "abBc!", text(t, snap))
}

func TestApplyChangesRejectsBadBatches(t *testing.T) {
	tests := []struct {
		name    string
		changes []Change
		want    error
	}{
		{"overlap", []Change{{Offset: 0, Length: 3, Text: "x"}, {Offset: 2, Length: 2, Text: "y"}}, ErrOverlappingChanges},
		{"insert at start of earlier delete", []Change{{Offset: 1, Length: 1}, {Offset: 1, Text: "x"}}, ErrOverlappingChanges},
		{"past end", []Change{{Offset: 1, Text: "x"}, {Offset: 9, Text: "y"}}, textpos.ErrOutOfRange},
		{"negative length", []Change{{Offset: 1, Length: -1}}, textpos.ErrOutOfRange},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b := FromString("abcdef")
			rev := b.RevisionID()
			_, edits, err := b.ApplyChanges(tc.changes)
			assert.ErrorIs(t, err, tc.want)
			assert.Empty(t, edits)
			assert.Equal(t, "abcdef", text(t, b.Snapshot()))
			assert.Equal(t, rev, b.RevisionID())
		})
	}
}

// Package history provides undo/redo functionality for the text engine.
//
// Edits to a buffer already produce immutable snapshots, so history does
// not replay text. Each entry keeps the snapshots from before and after an
// edit together with the edits that connect them. Undo installs the before
// snapshot and reports the inverse edits; redo installs the after snapshot
// and reports the original edits. Listeners such as the marker index follow
// along through the reported edits.
//
//	h := history.New(1000) // Max 1000 undo entries
//
//	before := buf.Snapshot()
//	after, _ := buf.Insert(0, "hello")
//	h.Record("type", before, after, edit)
//
//	h.Undo(buf)
//	h.Redo(buf)
//
// # Grouping
//
// Edits recorded between BeginGroup and EndGroup form one entry:
//
//	err := h.Transaction("replace all", func() error {
//	    // ... several edits, each recorded ...
//	    return nil
//	})
//
// A Checkpoint marks a depth in the stack; UndoToCheckpoint walks back to
// it and returns every inverse edit it applied.
package history

// Package buffer provides a thread-safe text buffer built on top of the
// persistent piece tree. It serves as the primary interface for reading and
// mutating document bytes in the editor engine.
//
// The buffer package provides:
//
//   - Thread-safe access via sync.RWMutex with a single writer
//   - Instant opening of huge files through unloaded storage units
//   - Lazy materialization of aligned chunks on first read
//   - Offset and line/column conversion, estimated where no line index
//     exists yet and refined through cached anchors
//   - Immutable snapshots for lock-free concurrent reads and undo
//   - Character and grapheme boundary helpers
//
// Basic usage:
//
//	buf, err := buffer.Open("huge.log")
//	if err != nil {
//	    return err
//	}
//	defer buf.Close()
//
//	// Reading touches only the chunks that hold the range.
//	data, r, err := buf.ReadRange(1_000_000, 1_000_100)
//
//	// Edits return the new snapshot; older snapshots stay readable.
//	snap, err := buf.Insert(r.Start, "marker ")
//
// Large files:
//
// Files above the large-file threshold open as one unloaded unit. Their line
// count is unknown until every byte has been read, so line/column lookups
// report whether the answer is Exact or Estimated. Estimates come from an
// average line length and are pinned by scanning a bounded window around the
// guess. Discovered (offset, line) pairs are cached as anchors so later
// lookups nearby start close to their target.
//
// Thread Safety:
//
// All Buffer methods are thread-safe. Reads that find their range resident
// take a read lock; reads that must materialize and all edits take the write
// lock. Snapshot values never change and need no locking.
package buffer

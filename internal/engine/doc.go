// Package engine provides the text storage core behind the editor.
//
// The engine package serves as the main facade, combining the document
// buffer, markers, overlays, search and undo/redo into a unified,
// thread-safe API that works the same for a ten-byte scratch buffer and a
// multi-gigabyte log file.
//
// # Architecture
//
// The engine is built on several sub-packages:
//
//   - storage: immutable file and add-buffer units, loaded on demand
//   - piecetree: persistent balanced tree of pieces with tri-state line counts
//   - buffer: edits, lazy chunk loading, position conversion and anchors
//   - marker: interval index with lazy offset deltas, and overlays on top
//   - search: chunked literal and regular expression search
//   - history: snapshot-based undo/redo
//
// # Thread Safety
//
// All Engine operations are thread-safe. The engine uses a read-write mutex
// to allow concurrent reads while serializing writes. Snapshots are
// immutable and may be read from any goroutine without locking.
//
// # Basic Usage
//
//	e := engine.New(engine.WithContent("Hello World"))
//
//	// Insert text
//	e.Insert(6, "Big ") // "Hello Big World"
//
//	// Read content
//	data, _, _ := e.ReadRange(0, 5) // "Hello"
//
//	// Undo the insertion
//	e.Undo()
//
// # Large Files
//
// Files above the large-file threshold open as a single unloaded piece.
// Reads load the surrounding aligned chunk; line counts stay unknown until a
// region is loaded, and positions beyond the scanned prefix are estimated:
//
//	e, _ := engine.Open("huge.log")
//	off, exactness, _ := e.PositionToOffset(textpos.LineCol(1_000_000, 0))
//	if exactness == engine.Estimated {
//	    // off is close to line 1,000,000 but may be refined later.
//	}
//
// Edits require exact positions; addressing an estimated line returns
// ErrUnknownLines.
//
// # Markers and Overlays
//
// Markers follow edits. A bound with Right affinity moves past text
// inserted at it; a bound with Left affinity stays in front:
//
//	id, _ := e.CreatePointMarker(6, engine.AffinityRight)
//	e.Insert(6, "Big ")
//	m, _ := e.Marker(id) // m.Start == 10
//
// Overlays decorate ranges and grow when text is typed at their edges:
//
//	h, _ := e.AddOverlay(textpos.NewRange(0, 5), engine.Overlay{Namespace: "lint"})
//	visible := e.OverlaysIn(viewport)
//
// # Search
//
// Searches run over a snapshot and never retain unloaded regions:
//
//	m, found, err := e.FindFirst(ctx, search.Literal("needle"), textpos.NewRange(0, e.Len()))
//
// # Error Handling
//
// The package re-exports the errors callers test for:
//
//   - ErrOutOfRange: offset, line or range outside the document
//   - ErrLoadFailed: backing storage could not be read
//   - ErrInvalidPattern: search pattern does not compile
//   - ErrUnknownLines: edit at an estimated position
//   - ErrNothingToUndo / ErrNothingToRedo: history exhausted
//   - ErrReadOnly: write operation on read-only engine
package engine

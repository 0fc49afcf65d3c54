package engine

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/samber/lo"

	"github.com/dshills/textcore/internal/engine/buffer"
	"github.com/dshills/textcore/internal/engine/history"
	"github.com/dshills/textcore/internal/engine/marker"
	"github.com/dshills/textcore/internal/engine/search"
	"github.com/dshills/textcore/internal/engine/textpos"
	"github.com/dshills/textcore/internal/logging"
)

// Re-export commonly used types for convenience.
type (
	// ByteOffset is a byte position in the document.
	ByteOffset = textpos.ByteOffset

	// Point represents a line/column position.
	Point = textpos.Point

	// Position is a byte offset or a line/column pair.
	Position = textpos.Position

	// Range represents a half-open byte range.
	Range = textpos.Range

	// Edit describes an applied mutation.
	Edit = textpos.Edit

	// Estimate is a value tagged exact or estimated.
	Estimate = textpos.Estimate

	// Exactness tags computed and estimated values.
	Exactness = textpos.Exactness

	// LineEnding is the detected line terminator style.
	LineEnding = buffer.LineEnding

	// RevisionID uniquely identifies a buffer revision.
	RevisionID = buffer.RevisionID

	// Snapshot is an immutable view of one revision.
	Snapshot = buffer.Snapshot

	// MarkerID identifies a marker.
	MarkerID = marker.ID

	// Marker is a resolved marker.
	Marker = marker.Marker

	// Affinity decides where a marker bound goes on insertion at it.
	Affinity = marker.Affinity

	// Overlay decorates a range of text.
	Overlay = marker.Overlay

	// ResolvedOverlay is an overlay with its current range.
	ResolvedOverlay = marker.Resolved

	// Pattern is a compiled search pattern.
	Pattern = search.Pattern

	// Match is a search hit.
	Match = search.Match

	// Checkpoint marks a position in undo history.
	Checkpoint = history.Checkpoint

	// Change is one replacement of a batch applied by ApplyEdits.
	Change = buffer.Change

	// LineIterator walks lines of a snapshot in either direction.
	LineIterator = buffer.LineIterator
)

// Re-export constants.
const (
	Exact     = textpos.Exact
	Estimated = textpos.Estimated

	AffinityLeft  = marker.Left
	AffinityRight = marker.Right
)

// Engine is the main facade for the text storage core.
// It combines the buffer, markers, overlays, search and undo/redo into a
// unified, thread-safe API. Every applied edit, including undo and redo,
// shifts markers before the edit call returns.
//
// All operations are thread-safe and can be called from multiple goroutines.
type Engine struct {
	mu sync.RWMutex

	// Core components
	buf      *buffer.Buffer
	markers  *marker.Index
	overlays *marker.Overlays
	history  *history.History

	// Edits reported by the buffer while a mutation records them.
	applied   []textpos.Edit
	recording bool

	// Configuration
	maxUndoEntries int
	deletePolicy   marker.DeletePolicy
	readOnly       bool
	bufferOpts     []buffer.Option
	searchOpts     []search.Option
	logger         *log.Logger

	// Initialization
	initContent string
}

func configure(opts []Option) *Engine {
	e := &Engine{
		maxUndoEntries: DefaultMaxUndoEntries,
		logger:         logging.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) wire(buf *buffer.Buffer) *Engine {
	e.buf = buf
	e.markers = marker.NewIndex(marker.WithDeletePolicy(e.deletePolicy))
	e.overlays = marker.NewOverlays(e.markers)
	e.history = history.New(e.maxUndoEntries)
	buf.AddListener(textpos.EditListenerFunc(e.onEdit))
	return e
}

func (e *Engine) allBufferOpts() []buffer.Option {
	return append([]buffer.Option{buffer.WithLogger(e.logger)}, e.bufferOpts...)
}

// New creates a new Engine with the given options.
func New(opts ...Option) *Engine {
	e := configure(opts)
	if e.initContent != "" {
		return e.wire(buffer.FromString(e.initContent, e.allBufferOpts()...))
	}
	return e.wire(buffer.New(e.allBufferOpts()...))
}

// Open creates an Engine backed by the file at path. Files above the
// large-file threshold are loaded lazily.
func Open(path string, opts ...Option) (*Engine, error) {
	e := configure(opts)
	buf, err := buffer.Open(path, e.allBufferOpts()...)
	if err != nil {
		return nil, err
	}
	return e.wire(buf), nil
}

// Close releases the backing file.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.buf.Close()
}

// onEdit runs for every applied edit while the caller holds mu.
func (e *Engine) onEdit(ed textpos.Edit) {
	if e.recording {
		e.applied = append(e.applied, ed)
	}
	if removed := e.markers.Apply(ed); len(removed) > 0 {
		e.overlays.Forget(removed)
	}
}

// ============================================================================
// Read Operations
// ============================================================================

// Len returns the total byte length of the document.
func (e *Engine) Len() ByteOffset {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.buf.Len()
}

// IsEmpty returns true if the document is empty.
func (e *Engine) IsEmpty() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.buf.IsEmpty()
}

// IsLargeFile reports whether the document was opened lazily.
func (e *Engine) IsLargeFile() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.buf.IsLargeFile()
}

// Path returns the backing file path, if any.
func (e *Engine) Path() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.buf.Path()
}

// LineCount returns the number of lines, exact when every region has been
// scanned.
func (e *Engine) LineCount() Estimate {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.buf.LineCount()
}

// ReadRange returns the bytes of [start, end) rounded outward to character
// boundaries, loading any unloaded region first.
func (e *Engine) ReadRange(start, end ByteOffset) ([]byte, Range, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.buf.ReadRange(start, end)
}

// Text returns the full document. For large documents prefer ReadRange.
func (e *Engine) Text() (string, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	data, _, err := e.buf.ReadRange(0, e.buf.Len())
	return string(data), err
}

// Prepare loads [start, end) in the background of the caller, for example
// ahead of a viewport scroll, and returns a snapshot covering it.
func (e *Engine) Prepare(ctx context.Context, start, end ByteOffset) (*Snapshot, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.buf.Prepare(ctx, start, end)
}

// LineEnding returns the detected line ending style.
func (e *Engine) LineEnding() (LineEnding, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.buf.LineEnding()
}

// Digest returns a hash of the current content.
func (e *Engine) Digest() (uint64, error) {
	return e.Snapshot().Digest()
}

// ============================================================================
// Position Conversion
// ============================================================================

// PositionToOffset resolves pos to a byte offset.
func (e *Engine) PositionToOffset(pos Position) (ByteOffset, Exactness, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.buf.PositionToOffset(pos)
}

// OffsetToPosition converts a byte offset to line/column.
func (e *Engine) OffsetToPosition(offset ByteOffset) (Position, Exactness, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.buf.OffsetToPosition(offset)
}

// NextGraphemeBoundary returns the first grapheme boundary after offset.
func (e *Engine) NextGraphemeBoundary(offset ByteOffset) (ByteOffset, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.buf.NextGraphemeBoundary(offset)
}

// PrevGraphemeBoundary returns the last grapheme boundary before offset.
func (e *Engine) PrevGraphemeBoundary(offset ByteOffset) (ByteOffset, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.buf.PrevGraphemeBoundary(offset)
}

// NextWordBoundary returns the end of the next word after offset.
func (e *Engine) NextWordBoundary(offset ByteOffset) (ByteOffset, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.buf.NextWordBoundary(offset)
}

// PrevWordBoundary returns the start of the word before offset.
func (e *Engine) PrevWordBoundary(offset ByteOffset) (ByteOffset, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.buf.PrevWordBoundary(offset)
}

// Line returns the bytes of a line, including its line feed, and whether
// the line's start was found exactly.
func (e *Engine) Line(line int64) ([]byte, Exactness, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.buf.Line(line)
}

// Lines returns an iterator over the lines of the current revision,
// starting at the line containing offset.
func (e *Engine) Lines(offset ByteOffset) *LineIterator {
	return e.Snapshot().Lines(offset)
}

// ============================================================================
// Write Operations
// ============================================================================

// mutate applies fn to the buffer and records the resulting edit for undo.
func (e *Engine) mutate(desc string, fn func() (*buffer.Snapshot, error)) (Edit, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	edits, err := e.record(desc, fn)
	if err != nil || len(edits) == 0 {
		return Edit{}, err
	}
	return edits[len(edits)-1], nil
}

// record runs fn and records every edit it applies as one undo entry, even
// when fn fails after applying some. fn may return a nil snapshot when it
// applies nothing. Caller holds mu.
func (e *Engine) record(desc string, fn func() (*buffer.Snapshot, error)) ([]Edit, error) {
	if e.readOnly {
		return nil, ErrReadOnly
	}

	before := e.buf.Snapshot()
	e.applied, e.recording = nil, true
	after, err := fn()
	edits := e.applied
	e.applied, e.recording = nil, false

	if len(edits) > 0 {
		if after == nil {
			after = e.buf.Snapshot()
		}
		e.history.Record(desc, before, after, edits...)
	}
	return edits, err
}

// Insert inserts text at the given offset and returns the applied edit.
// An offset inside a character is moved to the character's start.
func (e *Engine) Insert(offset ByteOffset, text string) (Edit, error) {
	return e.mutate("Insert", func() (*buffer.Snapshot, error) {
		return e.buf.Insert(offset, text)
	})
}

// Delete removes length bytes at offset.
func (e *Engine) Delete(offset, length int64) (Edit, error) {
	return e.mutate("Delete", func() (*buffer.Snapshot, error) {
		return e.buf.Delete(offset, length)
	})
}

// Replace replaces length bytes at offset with text.
func (e *Engine) Replace(offset, length int64, text string) (Edit, error) {
	return e.mutate("Replace", func() (*buffer.Snapshot, error) {
		return e.buf.Replace(offset, length, text)
	})
}

// InsertAt inserts text at a position given in either form.
func (e *Engine) InsertAt(pos Position, text string) (Edit, error) {
	return e.mutate("Insert", func() (*buffer.Snapshot, error) {
		s, _, err := e.buf.InsertAtPosition(pos, text)
		return s, err
	})
}

// DeleteRange deletes the text between two positions given in either form.
func (e *Engine) DeleteRange(from, to Position) (Edit, error) {
	return e.mutate("Delete", func() (*buffer.Snapshot, error) {
		s, _, err := e.buf.DeletePositionRange(from, to)
		return s, err
	})
}

// ReplaceRange replaces the bytes of r with text.
func (e *Engine) ReplaceRange(r Range, text string) (Edit, error) {
	return e.mutate("Replace", func() (*buffer.Snapshot, error) {
		return e.buf.Replace(r.Start, r.Len(), text)
	})
}

// ApplyEdits applies a batch of changes as one undo step and returns the
// applied edits, highest offset first. Offsets refer to the document
// before the batch. Overlapping changes fail with ErrOverlappingChanges
// and nothing is applied.
func (e *Engine) ApplyEdits(changes []Change) ([]Edit, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.record("Edit", func() (*buffer.Snapshot, error) {
		s, _, err := e.buf.ApplyChanges(changes)
		return s, err
	})
}

// ============================================================================
// Markers and Overlays
// ============================================================================

// CreateMarker places an interval marker over r.
func (e *Engine) CreateMarker(r Range, startAff, endAff Affinity) (MarkerID, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if r.End > e.buf.Len() {
		return 0, textpos.ErrOutOfRange
	}
	return e.markers.Create(r, startAff, endAff)
}

// CreatePointMarker places a zero-width marker at offset.
func (e *Engine) CreatePointMarker(offset ByteOffset, aff Affinity) (MarkerID, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if offset > e.buf.Len() {
		return 0, textpos.ErrOutOfRange
	}
	return e.markers.CreatePoint(offset, aff)
}

// Marker returns the current state of a marker.
func (e *Engine) Marker(id MarkerID) (Marker, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.markers.Get(id)
}

// MoveMarker sets a marker's range.
func (e *Engine) MoveMarker(id MarkerID, r Range) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if r.End > e.buf.Len() {
		return textpos.ErrOutOfRange
	}
	return e.markers.Move(id, r)
}

// RemoveMarker deletes a marker.
func (e *Engine) RemoveMarker(id MarkerID) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.markers.Remove(id)
}

// MarkersAt returns the markers covering pos.
func (e *Engine) MarkersAt(pos ByteOffset) []Marker {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.markers.QueryPoint(pos)
}

// MarkersIn returns the markers overlapping r.
func (e *Engine) MarkersIn(r Range) []Marker {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.markers.QueryRange(r)
}

// AddOverlay decorates r and returns the overlay handle.
func (e *Engine) AddOverlay(r Range, ov Overlay) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if r.End > e.buf.Len() {
		return "", textpos.ErrOutOfRange
	}
	return e.overlays.Add(r, ov)
}

// RemoveOverlay deletes an overlay by handle.
func (e *Engine) RemoveOverlay(handle string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.overlays.Remove(handle)
}

// ClearOverlays removes every overlay in a namespace.
func (e *Engine) ClearOverlays(namespace string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.overlays.ClearNamespace(namespace)
}

// OverlaysAt returns the overlays covering pos, highest priority first.
func (e *Engine) OverlaysAt(pos ByteOffset) []ResolvedOverlay {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.overlays.AtPosition(pos)
}

// OverlaysIn returns the overlays overlapping r, typically a viewport.
func (e *Engine) OverlaysIn(r Range) []ResolvedOverlay {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.overlays.InRange(r)
}

// ============================================================================
// Search
// ============================================================================

// FindFirst returns the first match of pat in r of the current revision.
// Unloaded regions are read without being retained.
func (e *Engine) FindFirst(ctx context.Context, pat Pattern, r Range) (Match, bool, error) {
	return search.FindFirst(ctx, e.Snapshot(), r, pat, e.searchOpts...)
}

// FindAll returns up to limit matches of pat in r (all when limit <= 0).
func (e *Engine) FindAll(ctx context.Context, pat Pattern, r Range, limit int) ([]Match, error) {
	return search.FindAll(ctx, e.Snapshot(), r, pat, limit, e.searchOpts...)
}

// Matcher returns an iterator over matches of pat in r of the current
// revision. Later edits do not affect it.
func (e *Engine) Matcher(ctx context.Context, pat Pattern, r Range) *search.Matcher {
	return search.NewMatcher(ctx, e.Snapshot(), r, pat, e.searchOpts...)
}

// ReplaceNext replaces the first match of pat that starts at or after from
// inside within, and returns the replaced match. The replacement text is
// inserted literally.
func (e *Engine) ReplaceNext(ctx context.Context, pat Pattern, text string, from ByteOffset, within Range) (Match, bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	r := Range{Start: max(from, within.Start), End: within.End}.Clamp(e.buf.Len())
	var (
		m     Match
		found bool
	)
	_, err := e.record("Replace", func() (*buffer.Snapshot, error) {
		var err error
		m, found, err = search.FindFirst(ctx, e.buf.Snapshot(), r, pat, e.searchOpts...)
		if err != nil || !found {
			return nil, err
		}
		return e.buf.Replace(m.Start, m.End-m.Start, text)
	})
	if err != nil {
		return Match{}, false, err
	}
	return m, found, nil
}

// ReplaceAll replaces every match of pat with text as one undo step and
// returns the number of replacements. Matches are found on the document as
// it was before the first replacement, so text is never searched again.
func (e *Engine) ReplaceAll(ctx context.Context, pat Pattern, text string) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	n := 0
	_, err := e.record("Replace All", func() (*buffer.Snapshot, error) {
		snap := e.buf.Snapshot()
		matches, err := search.FindAll(ctx, snap, Range{End: snap.Len()}, pat, 0, e.searchOpts...)
		if err != nil || len(matches) == 0 {
			return nil, err
		}
		changes := lo.Map(matches, func(m Match, _ int) Change {
			return Change{Offset: m.Start, Length: m.End - m.Start, Text: text}
		})
		after, edits, err := e.buf.ApplyChanges(changes)
		n = len(edits)
		return after, err
	})
	return n, err
}

// ReplaceAllRegex compiles expr and replaces every match with text.
func (e *Engine) ReplaceAllRegex(ctx context.Context, expr, text string) (int, error) {
	pat, err := search.Regex(expr)
	if err != nil {
		return 0, err
	}
	return e.ReplaceAll(ctx, pat, text)
}

// ============================================================================
// Undo/Redo Operations
// ============================================================================

// Undo reverts the most recent edit or group.
func (e *Engine) Undo() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.readOnly {
		return ErrReadOnly
	}
	_, err := e.history.Undo(e.buf)
	return err
}

// Redo reapplies the most recently undone edit or group.
func (e *Engine) Redo() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.readOnly {
		return ErrReadOnly
	}
	_, err := e.history.Redo(e.buf)
	return err
}

// CanUndo returns true if there are operations to undo.
func (e *Engine) CanUndo() bool {
	return e.history.CanUndo()
}

// CanRedo returns true if there are operations to redo.
func (e *Engine) CanRedo() bool {
	return e.history.CanRedo()
}

// UndoCount returns the number of undoable operations.
func (e *Engine) UndoCount() int {
	return e.history.UndoCount()
}

// RedoCount returns the number of redoable operations.
func (e *Engine) RedoCount() int {
	return e.history.RedoCount()
}

// BeginUndoGroup starts grouping edits into a single undo step.
func (e *Engine) BeginUndoGroup(name string) {
	e.history.BeginGroup(name)
}

// EndUndoGroup ends the current undo group.
func (e *Engine) EndUndoGroup() {
	e.history.EndGroup()
}

// CancelUndoGroup cancels the current group without recording it.
func (e *Engine) CancelUndoGroup() {
	e.history.CancelGroup()
}

// Transaction runs fn with every edit it makes grouped into one undo step.
// If fn fails the group is dropped, but its edits stay applied.
func (e *Engine) Transaction(name string, fn func() error) error {
	return e.history.Transaction(name, fn)
}

// Checkpoint marks the current position in undo history.
func (e *Engine) Checkpoint() Checkpoint {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.history.CreateCheckpoint(e.buf)
}

// UndoToCheckpoint undoes every entry recorded after cp.
func (e *Engine) UndoToCheckpoint(cp Checkpoint) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.readOnly {
		return ErrReadOnly
	}
	_, err := e.history.UndoToCheckpoint(cp, e.buf)
	return err
}

// AtCheckpoint reports whether the document is unchanged since cp.
func (e *Engine) AtCheckpoint(cp Checkpoint) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.history.AtCheckpoint(cp, e.buf)
}

// ClearHistory clears all undo/redo history.
func (e *Engine) ClearHistory() {
	e.history.Clear()
}

// ============================================================================
// Snapshots and Configuration
// ============================================================================

// RevisionID returns the current revision ID.
func (e *Engine) RevisionID() RevisionID {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.buf.RevisionID()
}

// Snapshot returns an immutable view of the current revision.
func (e *Engine) Snapshot() *Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.buf.Snapshot()
}

// IsReadOnly returns true if the engine rejects edits.
func (e *Engine) IsReadOnly() bool {
	return e.readOnly
}

// SetContent replaces the whole document as one undoable edit.
func (e *Engine) SetContent(content string) error {
	_, err := e.mutate("Set Content", func() (*buffer.Snapshot, error) {
		return e.buf.Replace(0, e.buf.Len(), content)
	})
	return err
}

package buffer

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"

	"github.com/dshills/textcore/internal/engine/piecetree"
	"github.com/dshills/textcore/internal/engine/storage"
	"github.com/dshills/textcore/internal/engine/textpos"
	"github.com/dshills/textcore/internal/logging"
)

// ErrForeignSnapshot is returned when restoring a snapshot taken from a
// different buffer.
var ErrForeignSnapshot = errors.New("snapshot belongs to another buffer")

// RevisionID uniquely identifies a buffer revision.
// Each modification to the buffer creates a new revision.
type RevisionID uint64

var revisionCounter atomic.Uint64

// NewRevisionID generates a new unique revision ID.
func NewRevisionID() RevisionID {
	return RevisionID(revisionCounter.Add(1))
}

// Buffer owns a piece tree and the storage its pieces point into.
// All methods are thread-safe.
type Buffer struct {
	mu       sync.RWMutex
	tree     piecetree.Tree
	store    *storage.Store
	revision RevisionID
	path     string
	large    bool

	resident map[*storage.Unit][]residentChunk

	anchors     anchorSet
	avgLine     int64
	avgMeasured bool

	lineEnding      LineEnding
	lineEndingKnown bool

	listenersMu sync.RWMutex
	listeners   []textpos.EditListener

	cfg    settings
	logger *log.Logger
}

func newBuffer(opts []Option) *Buffer {
	cfg := defaultSettings()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = logging.Default()
	}

	storeOpts := []storage.Option{
		storage.WithLogger(cfg.logger),
		storage.WithAddCapacity(cfg.addCapacity),
		storage.WithWatch(cfg.watch),
	}
	if cfg.source != nil {
		storeOpts = append(storeOpts, storage.WithSource(cfg.source))
	}

	return &Buffer{
		tree:     piecetree.New(),
		store:    storage.NewStore(storeOpts...),
		revision: NewRevisionID(),
		resident: make(map[*storage.Unit][]residentChunk),
		anchors:  anchorSet{max: cfg.maxAnchors},
		avgLine:  cfg.averageLineLength,
		cfg:      cfg,
		logger:   cfg.logger,
	}
}

// New creates an empty buffer.
func New(opts ...Option) *Buffer {
	return newBuffer(opts)
}

// FromBytes creates a buffer holding a copy of data.
func FromBytes(data []byte, opts ...Option) *Buffer {
	b := newBuffer(opts)
	if len(data) > 0 {
		u := b.store.NewLoaded(append([]byte(nil), data...))
		b.tree = piecetree.FromPieces(piecetree.NewPiece(u, 0, u.Len()))
	}
	return b
}

// FromString creates a buffer with initial content.
func FromString(s string, opts ...Option) *Buffer {
	return FromBytes([]byte(s), opts...)
}

// Open creates a buffer backed by the file at path. Files larger than the
// large-file threshold are not read: they start as a single unloaded piece
// whose bytes are materialized on demand.
func Open(path string, opts ...Option) (*Buffer, error) {
	b := newBuffer(opts)
	b.path = path

	u, err := b.store.Open(path)
	if err != nil {
		_ = b.store.Close()
		return nil, err
	}
	if u.Len() == 0 {
		return b, nil
	}

	if u.Len() > b.cfg.largeFileThreshold {
		b.large = true
		b.tree = piecetree.FromPieces(piecetree.NewPiece(u, 0, u.Len()))
		b.logger.Info("opened large file lazily",
			logging.FieldPath, path,
			logging.FieldSize, u.Len(),
			logging.FieldLarge, true,
		)
		return b, nil
	}

	loaded, err := b.store.Load(u, 0, u.Len())
	if err != nil {
		_ = b.store.Close()
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	b.tree = piecetree.FromPieces(piecetree.NewPiece(loaded, 0, loaded.Len()))
	b.measureAverage(loaded)
	return b, nil
}

// Close releases the file watcher and any open file handles.
func (b *Buffer) Close() error {
	return b.store.Close()
}

// Path returns the backing file, or "" for in-memory buffers.
func (b *Buffer) Path() string {
	return b.path
}

// IsLargeFile reports whether the buffer was opened lazily.
func (b *Buffer) IsLargeFile() bool {
	return b.large
}

// Len returns the total byte length of the buffer.
func (b *Buffer) Len() int64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.tree.Len()
}

// IsEmpty returns true if the buffer is empty.
func (b *Buffer) IsEmpty() bool {
	return b.Len() == 0
}

// RevisionID returns the current revision ID.
func (b *Buffer) RevisionID() RevisionID {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.revision
}

// PieceCount returns the number of pieces in the current tree.
func (b *Buffer) PieceCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.tree.PieceCount()
}

// Snapshot returns a read-only snapshot of the current buffer state.
// Safe for concurrent access from other goroutines.
func (b *Buffer) Snapshot() *Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.snapshotLocked()
}

func (b *Buffer) snapshotLocked() *Snapshot {
	return &Snapshot{
		tree:      b.tree,
		store:     b.store,
		revision:  b.revision,
		chunkSize: b.cfg.loadChunkSize,
	}
}

// Restore installs the tree of an earlier snapshot and reports edits to
// the edit listeners in order. The edits must turn the current content into
// the snapshot's content so markers follow the change. The buffer takes the
// snapshot's revision. Regions of the file read since the snapshot was
// taken stay resident.
func (b *Buffer) Restore(s *Snapshot, edits ...textpos.Edit) error {
	if s.store != b.store {
		return ErrForeignSnapshot
	}
	b.mu.Lock()
	b.tree = s.tree
	b.revision = s.revision
	if n := b.reinstall(); n > 0 {
		b.logger.Debug("restored resident chunks", logging.FieldChunks, n)
	}
	for _, e := range edits {
		b.anchors.truncate(e.Offset)
		if e.Offset < lineEndingSample {
			b.lineEndingKnown = false
		}
	}
	if len(edits) == 0 {
		b.anchors.truncate(0)
		b.lineEndingKnown = false
	}
	b.mu.Unlock()

	for _, e := range edits {
		b.notify(e)
	}
	return nil
}

// AddListener registers l to receive every applied edit.
func (b *Buffer) AddListener(l textpos.EditListener) {
	b.listenersMu.Lock()
	defer b.listenersMu.Unlock()
	b.listeners = append(b.listeners, l)
}

func (b *Buffer) notify(e textpos.Edit) {
	if e.IsNoop() {
		return
	}
	b.listenersMu.RLock()
	listeners := b.listeners
	b.listenersMu.RUnlock()
	for _, l := range listeners {
		l.OnEdit(e)
	}
}

// LineEnding returns the line ending style detected in the first loaded
// bytes of the document. It reports LineEndingLF for empty documents.
func (b *Buffer) LineEnding() (LineEnding, error) {
	b.mu.RLock()
	if b.lineEndingKnown {
		le := b.lineEnding
		b.mu.RUnlock()
		return le, nil
	}
	b.mu.RUnlock()

	data, _, err := b.ReadRange(0, lineEndingSample)
	if err != nil {
		return LineEndingLF, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.lineEnding = DetectLineEnding(data)
	b.lineEndingKnown = true
	return b.lineEnding, nil
}

// measureAverage derives the average line length from the first loaded
// chunk that contains a line feed.
func (b *Buffer) measureAverage(u *storage.Unit) {
	if b.avgMeasured {
		return
	}
	n, ok := u.CountLineFeeds(0, u.Len()).Value()
	if !ok || n == 0 {
		return
	}
	b.avgLine = max(u.Len()/n, 1)
	b.avgMeasured = true
}

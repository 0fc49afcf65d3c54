package storage

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"

	"github.com/dshills/textcore/internal/engine/textpos"
	"github.com/dshills/textcore/internal/logging"
)

// Store allocates units and loads file regions on demand.
//
// Unit creation and loads are safe for concurrent use. Append must only be
// called by the buffer's single writer.
type Store struct {
	source      Source
	logger      *log.Logger
	nextID      atomic.Uint64
	add         addBuffer
	watchSource bool

	mu      sync.Mutex
	watcher *sourceWatcher
	sizes   map[string]int64
}

// Option configures a Store.
type Option func(*Store)

// WithSource sets the reader used for unloaded units.
func WithSource(src Source) Option {
	return func(s *Store) {
		s.source = src
	}
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithAddCapacity sets the size of each append unit.
func WithAddCapacity(n int64) Option {
	return func(s *Store) {
		if n > 0 {
			s.add.capacity = n
		}
	}
}

// WithWatch enables change detection on opened files.
func WithWatch(enabled bool) Option {
	return func(s *Store) {
		s.watchSource = enabled
	}
}

// NewStore creates a Store reading from the local filesystem by default.
func NewStore(opts ...Option) *Store {
	s := &Store{
		logger: logging.Default(),
		add:    addBuffer{capacity: DefaultAddCapacity},
		sizes:  make(map[string]int64),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.source == nil {
		s.source = NewFileSource()
	}
	return s
}

func (s *Store) allocID() ID {
	return ID(s.nextID.Add(1))
}

// NewLoaded creates an indexed loaded unit owning data.
func (s *Store) NewLoaded(data []byte) *Unit {
	return NewLoaded(s.allocID(), data, true)
}

// Append copies p into the add buffer and returns the unit and offset the
// copy lives at.
func (s *Store) Append(p []byte) (*Unit, int64) {
	return s.add.append(p, &s.nextID)
}

// Open describes the whole of path as a single unloaded unit without reading
// it. The file size is remembered so later loads can detect truncation.
func (s *Store) Open(path string) (*Unit, error) {
	size, err := s.source.Size(path)
	if err != nil {
		return nil, fmt.Errorf("%w: stat %s: %w", textpos.ErrLoadFailed, path, err)
	}

	s.mu.Lock()
	s.sizes[path] = size
	s.mu.Unlock()

	if s.watchSource {
		if err := s.watch(path); err != nil {
			s.logger.Warn("cannot watch backing file", logging.FieldPath, path, logging.FieldError, err)
		}
	}
	return NewUnloaded(s.allocID(), path, 0, size), nil
}

// ReadFile reads the whole of path into an indexed loaded unit.
func (s *Store) ReadFile(path string) (*Unit, error) {
	size, err := s.source.Size(path)
	if err != nil {
		return nil, fmt.Errorf("%w: stat %s: %w", textpos.ErrLoadFailed, path, err)
	}
	data := make([]byte, size)
	if err := s.source.ReadAt(path, data, 0); err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", textpos.ErrLoadFailed, path, err)
	}
	return s.NewLoaded(data), nil
}

// Load reads n bytes of the unloaded unit u starting at start (relative to
// the unit) and returns them as a new loaded unit. u is left untouched.
func (s *Store) Load(u *Unit, start, n int64) (*Unit, error) {
	data, err := s.read(u, start, n)
	if err != nil {
		return nil, err
	}
	loaded := s.NewLoaded(data)
	s.logger.Debug("loaded chunk",
		logging.FieldUnit, loaded.ID(),
		logging.FieldPath, u.path,
		logging.FieldFileOffset, u.fileOffset+start,
		logging.FieldBytes, n,
	)
	return loaded, nil
}

// Read returns n bytes of u starting at start. Loaded units are sliced
// directly; unloaded units are read from the source without being retained.
func (s *Store) Read(u *Unit, start, n int64) ([]byte, error) {
	if u.IsLoaded() {
		return u.Bytes(start, start+n)
	}
	return s.read(u, start, n)
}

func (s *Store) read(u *Unit, start, n int64) ([]byte, error) {
	if u.IsLoaded() {
		return nil, fmt.Errorf("load of %s: already loaded", u)
	}
	if start < 0 || n < 0 || start+n > u.length {
		return nil, fmt.Errorf("load [%d, %d) of %s: %w", start, start+n, u, textpos.ErrOutOfRange)
	}
	if err := s.checkSource(u.path); err != nil {
		s.logger.Error("load failed", logging.FieldPath, u.path, logging.FieldError, err)
		return nil, err
	}

	data := make([]byte, n)
	if err := s.source.ReadAt(u.path, data, u.fileOffset+start); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			err = fmt.Errorf("%w: %w", textpos.ErrSourceChanged, err)
		}
		s.logger.Error("load failed",
			logging.FieldPath, u.path,
			logging.FieldFileOffset, u.fileOffset+start,
			logging.FieldError, err,
		)
		return nil, fmt.Errorf("%w: reading %s at %d: %w", textpos.ErrLoadFailed, u.path, u.fileOffset+start, err)
	}
	return data, nil
}

func (s *Store) checkSource(path string) error {
	s.mu.Lock()
	w := s.watcher
	want, known := s.sizes[path]
	s.mu.Unlock()

	if w != nil && w.isChanged(path) {
		return fmt.Errorf("%w: %s: %w", textpos.ErrLoadFailed, path, textpos.ErrSourceChanged)
	}
	if !known {
		return nil
	}
	size, err := s.source.Size(path)
	if err != nil {
		return fmt.Errorf("%w: stat %s: %w", textpos.ErrLoadFailed, path, err)
	}
	if size != want {
		return fmt.Errorf("%w: %s size %d, opened at %d: %w",
			textpos.ErrLoadFailed, path, size, want, textpos.ErrSourceChanged)
	}
	return nil
}

func (s *Store) watch(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.watcher == nil {
		w, err := newSourceWatcher(s.logger)
		if err != nil {
			return err
		}
		s.watcher = w
	}
	return s.watcher.watch(path)
}

// Close stops the source watcher and releases the source if it holds
// resources.
func (s *Store) Close() error {
	s.mu.Lock()
	w := s.watcher
	s.watcher = nil
	s.mu.Unlock()

	var errs []error
	if w != nil {
		errs = append(errs, w.close())
	}
	if c, ok := s.source.(io.Closer); ok {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

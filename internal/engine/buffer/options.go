package buffer

import (
	"github.com/charmbracelet/log"

	"github.com/dshills/textcore/internal/engine/storage"
)

// Defaults for the lazy-loading and position tunables.
const (
	DefaultLargeFileThreshold = 100 * 1024 * 1024
	DefaultLoadChunkSize      = 1024 * 1024
	DefaultChunkAlignment     = 64 * 1024
	DefaultAnchorScanLines    = 100
	DefaultAnchorScanBytes    = 10 * 1024
	DefaultAverageLineLength  = 80
	DefaultMaxAnchors         = 4096
	DefaultLoadConcurrency    = 4
)

type settings struct {
	largeFileThreshold int64
	loadChunkSize      int64
	chunkAlignment     int64
	anchorScanLines    int64
	anchorScanBytes    int64
	averageLineLength  int64
	maxAnchors         int
	loadConcurrency    int
	addCapacity        int64
	watch              bool
	source             storage.Source
	logger             *log.Logger
}

func defaultSettings() settings {
	return settings{
		largeFileThreshold: DefaultLargeFileThreshold,
		loadChunkSize:      DefaultLoadChunkSize,
		chunkAlignment:     DefaultChunkAlignment,
		anchorScanLines:    DefaultAnchorScanLines,
		anchorScanBytes:    DefaultAnchorScanBytes,
		averageLineLength:  DefaultAverageLineLength,
		maxAnchors:         DefaultMaxAnchors,
		loadConcurrency:    DefaultLoadConcurrency,
		addCapacity:        storage.DefaultAddCapacity,
	}
}

// Option is a functional option for configuring a Buffer.
type Option func(*settings)

// WithLargeFileThreshold sets the file size above which Open defers reading.
func WithLargeFileThreshold(n int64) Option {
	return func(s *settings) {
		if n >= 0 {
			s.largeFileThreshold = n
		}
	}
}

// WithLoadChunk sets the materialization chunk size and its alignment.
// The chunk size is raised to the alignment if smaller.
func WithLoadChunk(size, alignment int64) Option {
	return func(s *settings) {
		if alignment > 0 {
			s.chunkAlignment = alignment
		}
		if size > 0 {
			s.loadChunkSize = size
		}
		s.loadChunkSize = max(s.loadChunkSize, s.chunkAlignment)
	}
}

// WithAnchorScan bounds the scan performed by one estimated lookup.
func WithAnchorScan(lines, bytes int64) Option {
	return func(s *settings) {
		if lines > 0 {
			s.anchorScanLines = lines
		}
		if bytes > 0 {
			s.anchorScanBytes = bytes
		}
	}
}

// WithAverageLineLength sets the line length assumed before any chunk has
// been measured.
func WithAverageLineLength(n int64) Option {
	return func(s *settings) {
		if n > 0 {
			s.averageLineLength = n
		}
	}
}

// WithMaxAnchors caps the number of cached anchors.
func WithMaxAnchors(n int) Option {
	return func(s *settings) {
		if n > 1 {
			s.maxAnchors = n
		}
	}
}

// WithLoadConcurrency limits parallel chunk reads in Prepare.
func WithLoadConcurrency(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.loadConcurrency = n
		}
	}
}

// WithAddCapacity sets the size of the append units holding typed text.
func WithAddCapacity(n int64) Option {
	return func(s *settings) {
		if n > 0 {
			s.addCapacity = n
		}
	}
}

// WithWatch enables detection of external changes to opened files.
func WithWatch(enabled bool) Option {
	return func(s *settings) {
		s.watch = enabled
	}
}

// WithSource sets the reader for file-backed units.
func WithSource(src storage.Source) Option {
	return func(s *settings) {
		s.source = src
	}
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

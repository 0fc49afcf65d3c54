package engine

import (
	"github.com/charmbracelet/log"

	"github.com/dshills/textcore/internal/engine/buffer"
	"github.com/dshills/textcore/internal/engine/marker"
	"github.com/dshills/textcore/internal/engine/search"
)

// Default configuration values.
const (
	DefaultMaxUndoEntries = 1000
)

// Option configures an Engine during creation.
type Option func(*Engine)

// WithContent sets the initial content of the engine.
func WithContent(content string) Option {
	return func(e *Engine) {
		e.initContent = content
	}
}

// WithMaxUndoEntries sets the maximum number of undo history entries.
func WithMaxUndoEntries(max int) Option {
	return func(e *Engine) {
		if max > 0 {
			e.maxUndoEntries = max
		}
	}
}

// WithDeletePolicy sets what happens to markers inside deleted text.
func WithDeletePolicy(p marker.DeletePolicy) Option {
	return func(e *Engine) {
		e.deletePolicy = p
	}
}

// WithBufferOptions passes options through to the underlying buffer.
func WithBufferOptions(opts ...buffer.Option) Option {
	return func(e *Engine) {
		e.bufferOpts = append(e.bufferOpts, opts...)
	}
}

// WithSearchOptions sets the window geometry used by FindFirst, FindAll and
// Matcher.
func WithSearchOptions(opts ...search.Option) Option {
	return func(e *Engine) {
		e.searchOpts = append(e.searchOpts, opts...)
	}
}

// WithLogger sets the logger for the engine and its buffer.
func WithLogger(logger *log.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithReadOnly creates a read-only engine.
// Write operations will return ErrReadOnly.
func WithReadOnly() Option {
	return func(e *Engine) {
		e.readOnly = true
	}
}

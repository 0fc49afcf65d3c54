package engine

import (
	"errors"

	"github.com/dshills/textcore/internal/engine/buffer"
	"github.com/dshills/textcore/internal/engine/history"
	"github.com/dshills/textcore/internal/engine/textpos"
)

// Errors returned by engine operations. The textpos and history errors are
// re-exported so callers need only this package.
var (
	// ErrOutOfRange indicates an offset, line or range outside the document.
	ErrOutOfRange = textpos.ErrOutOfRange

	// ErrLoadFailed indicates backing storage could not be read.
	ErrLoadFailed = textpos.ErrLoadFailed

	// ErrInvalidPattern indicates a search pattern that does not compile.
	ErrInvalidPattern = textpos.ErrInvalidPattern

	// ErrUnknownLines indicates an edit addressed an estimated position.
	ErrUnknownLines = textpos.ErrUnknownLines

	// ErrMarkerNotFound indicates an unknown marker or overlay handle.
	ErrMarkerNotFound = textpos.ErrMarkerNotFound

	// ErrNothingToUndo indicates the undo stack is empty.
	ErrNothingToUndo = history.ErrNothingToUndo

	// ErrNothingToRedo indicates the redo stack is empty.
	ErrNothingToRedo = history.ErrNothingToRedo

	// ErrOverlappingChanges indicates a batch of changes whose ranges
	// overlap.
	ErrOverlappingChanges = buffer.ErrOverlappingChanges

	// ErrReadOnly indicates an operation was attempted on a read-only engine.
	ErrReadOnly = errors.New("engine is read-only")
)

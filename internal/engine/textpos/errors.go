package textpos

import "errors"

// Errors shared by the engine packages. Callers should test with errors.Is.
var (
	// ErrOutOfRange indicates an offset, line or range outside the document.
	ErrOutOfRange = errors.New("position out of range")

	// ErrLoadFailed indicates backing storage could not be read.
	ErrLoadFailed = errors.New("load failed")

	// ErrInvalidPattern indicates a search pattern that does not compile.
	ErrInvalidPattern = errors.New("invalid pattern")

	// ErrUnknownLines indicates a line computation crossed a region whose
	// line-feed count has not been determined yet.
	ErrUnknownLines = errors.New("line count unknown")

	// ErrNotLoaded indicates a read from a snapshot touched bytes that have
	// not been materialized.
	ErrNotLoaded = errors.New("region not loaded")

	// ErrSourceChanged indicates the backing file changed after it was opened.
	ErrSourceChanged = errors.New("backing file changed")

	// ErrMarkerNotFound indicates an unknown marker or overlay handle.
	ErrMarkerNotFound = errors.New("marker not found")
)

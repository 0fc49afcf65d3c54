package logging

// Field name constants for structured logging.
const (
	// Common fields.
	FieldError = "error"
	FieldPath  = "path"
	FieldSize  = "size"

	// Storage fields.
	FieldUnit       = "unit"
	FieldFileOffset = "file_offset"
	FieldBytes      = "bytes"
	FieldChunks     = "chunks"

	// Buffer fields.
	FieldOffset    = "offset"
	FieldLine      = "line"
	FieldExactness = "exactness"
	FieldLarge     = "large"
	FieldRevision  = "revision"

	// Search fields.
	FieldPattern = "pattern"
	FieldMatch   = "match"
)

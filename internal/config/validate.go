package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a single validation failure.
type ValidationError struct {
	// Path is the dot-separated path to the invalid value.
	Path string

	// Message describes what's wrong.
	Message string

	// Value is the invalid value.
	Value any
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got %v)", e.Path, e.Message, e.Value)
}

// ValidationErrors collects multiple validation errors.
type ValidationErrors struct {
	Errors []*ValidationError
}

// Error implements the error interface.
func (e *ValidationErrors) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}

	msgs := make([]string, 0, len(e.Errors))
	for _, err := range e.Errors {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("%d validation errors:\n  - %s", len(e.Errors), strings.Join(msgs, "\n  - "))
}

func (e *ValidationErrors) add(path, message string, value any) {
	e.Errors = append(e.Errors, &ValidationError{Path: path, Message: message, Value: value})
}

func (e *ValidationErrors) positive(path string, v int64) {
	if v <= 0 {
		e.add(path, "must be positive", v)
	}
}

var (
	logLevels  = map[string]bool{"debug": true, "info": true, "warn": true, "warning": true, "error": true}
	logFormats = map[string]bool{"text": true, "json": true, "logfmt": true}
)

// Validate checks every setting and returns *ValidationErrors listing all
// problems, or nil.
func (c *Config) Validate() error {
	var errs ValidationErrors

	if !logLevels[strings.ToLower(c.Logging.Level)] {
		errs.add("logging.level", "must be one of debug, info, warn, error", c.Logging.Level)
	}
	if !logFormats[strings.ToLower(c.Logging.Format)] {
		errs.add("logging.format", "must be one of text, json, logfmt", c.Logging.Format)
	}

	b := c.Buffer
	if b.LargeFileThreshold < 0 {
		errs.add("buffer.large_file_threshold", "must not be negative", b.LargeFileThreshold)
	}
	errs.positive("buffer.load_chunk_size", b.LoadChunkSize)
	errs.positive("buffer.chunk_alignment", b.ChunkAlignment)
	if b.ChunkAlignment > 0 && b.ChunkAlignment&(b.ChunkAlignment-1) != 0 {
		errs.add("buffer.chunk_alignment", "must be a power of two", b.ChunkAlignment)
	}
	if b.ChunkAlignment > 0 && b.LoadChunkSize%b.ChunkAlignment != 0 {
		errs.add("buffer.load_chunk_size", "must be a multiple of buffer.chunk_alignment", b.LoadChunkSize)
	}
	errs.positive("buffer.anchor_scan_lines", b.AnchorScanLines)
	errs.positive("buffer.anchor_scan_bytes", b.AnchorScanBytes)
	errs.positive("buffer.average_line_length", b.AverageLineLength)
	errs.positive("buffer.max_anchors", int64(b.MaxAnchors))
	errs.positive("buffer.load_concurrency", int64(b.LoadConcurrency))
	errs.positive("buffer.add_capacity", b.AddCapacity)

	if c.Search.ChunkSize < 0 {
		errs.add("search.chunk_size", "must not be negative", c.Search.ChunkSize)
	}
	if c.Search.Overlap < -1 {
		errs.add("search.overlap", "must be -1 (pattern default) or more", c.Search.Overlap)
	}

	switch c.Markers.DeletePolicy {
	case DeletePolicyClamp, DeletePolicyRemove:
	default:
		errs.add("markers.delete_policy", "must be clamp or remove", c.Markers.DeletePolicy)
	}

	errs.positive("history.max_entries", int64(c.History.MaxEntries))

	if len(errs.Errors) == 0 {
		return nil
	}
	return &errs
}

// Package logging builds the charmbracelet/log loggers used by the storage
// engine and the CLI, and carries them through contexts.
package logging

import (
	"io"
	"os"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/log"
)

// Options selects a logger's level and output shape.
type Options struct {
	// Level is debug, info, warn (or warning) or error. Anything else
	// means info.
	Level string
	// Format is text, json or logfmt. Anything else means text.
	Format     string
	Timestamps bool
}

var std atomic.Pointer[log.Logger]

// New returns a logger writing to w.
func New(w io.Writer, opts Options) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: opts.Timestamps,
		Formatter:       ParseFormat(opts.Format),
	})
	logger.SetLevel(ParseLevel(opts.Level))
	return logger
}

// Stderr returns a text logger on standard error at level.
func Stderr(level string) *log.Logger {
	return New(os.Stderr, Options{Level: level})
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return New(io.Discard, Options{Level: "error"})
}

// ParseLevel maps a level name to a log level.
func ParseLevel(name string) log.Level {
	if strings.EqualFold(name, "warning") {
		return log.WarnLevel
	}
	level, err := log.ParseLevel(name)
	if err != nil || level == log.FatalLevel {
		return log.InfoLevel
	}
	return level
}

// ParseFormat maps a format name to a formatter.
func ParseFormat(name string) log.Formatter {
	switch strings.ToLower(name) {
	case "json":
		return log.JSONFormatter
	case "logfmt":
		return log.LogfmtFormatter
	default:
		return log.TextFormatter
	}
}

// Default returns the process-wide logger. Until SetDefault is called it
// is a text logger on standard error that reports warnings and errors.
func Default() *log.Logger {
	if l := std.Load(); l != nil {
		return l
	}
	std.CompareAndSwap(nil, Stderr("warn"))
	return std.Load()
}

// SetDefault replaces the process-wide logger.
func SetDefault(logger *log.Logger) {
	std.Store(logger)
}

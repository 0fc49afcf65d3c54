package search

import (
	"bytes"
	"fmt"
	"regexp"
	"unicode/utf8"

	"golang.org/x/text/language"
	"golang.org/x/text/search"

	"github.com/dshills/textcore/internal/engine/textpos"
)

// Default window geometry.
const (
	LiteralChunkSize = 64 * 1024
	RegexChunkSize   = 1024 * 1024
	RegexOverlap     = 4 * 1024
)

// Kind distinguishes pattern flavours.
type Kind uint8

const (
	// KindLiteral matches bytes exactly.
	KindLiteral Kind = iota
	// KindFold matches text ignoring case.
	KindFold
	// KindRegex matches a regular expression.
	KindRegex
)

// Pattern is a compiled search pattern.
type Pattern struct {
	kind    Kind
	source  string
	literal []byte
	fold    *search.Pattern
	re      *regexp.Regexp
	// behind matches one character and then re, capturing re's match as
	// group 1. Searching from the character before a position gives re the
	// text to the left of it.
	behind *regexp.Regexp
}

// Literal returns a pattern matching s byte for byte.
func Literal(s string) Pattern {
	return Pattern{kind: KindLiteral, source: s, literal: []byte(s)}
}

// Fold returns a pattern matching s ignoring case.
func Fold(s string) Pattern {
	m := search.New(language.Und, search.IgnoreCase)
	return Pattern{kind: KindFold, source: s, fold: m.CompileString(s)}
}

// Regex compiles a regular expression pattern.
func Regex(expr string) (Pattern, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return Pattern{}, fmt.Errorf("%w: %w", textpos.ErrInvalidPattern, err)
	}
	behind, err := regexp.Compile(`(?s:.)(` + expr + `)`)
	if err != nil {
		return Pattern{}, fmt.Errorf("%w: %w", textpos.ErrInvalidPattern, err)
	}
	return Pattern{kind: KindRegex, source: expr, re: re, behind: behind}, nil
}

// Kind returns the pattern flavour.
func (p Pattern) Kind() Kind {
	return p.kind
}

// String returns the pattern source.
func (p Pattern) String() string {
	return p.source
}

// IsEmpty reports whether the pattern can match nothing useful.
func (p Pattern) IsEmpty() bool {
	return p.source == ""
}

// chunkSize returns the default number of new bytes per window.
func (p Pattern) chunkSize() int {
	if p.kind == KindRegex {
		return RegexChunkSize
	}
	return LiteralChunkSize
}

// overlap returns the default carry-over between windows.
func (p Pattern) overlap() int {
	switch p.kind {
	case KindRegex:
		return RegexOverlap
	case KindFold:
		// Case variants may differ in encoded length.
		return 4 * len(p.source)
	default:
		return max(len(p.literal)-1, 0)
	}
}

// find returns the first match in the window's chunk at or after from,
// as offsets into the chunk.
func (p Pattern) find(w *Window, from int) (int, int, bool) {
	buf := w.Bytes()
	if from > len(buf) {
		return 0, 0, false
	}
	hay := buf[from:]
	switch p.kind {
	case KindRegex:
		return p.findRegex(w, from)
	case KindFold:
		s, e := p.fold.Index(hay)
		if s < 0 {
			return 0, 0, false
		}
		return from + s, from + e, true
	default:
		i := bytes.Index(hay, p.literal)
		if i < 0 {
			return 0, 0, false
		}
		return from + i, from + i + len(p.literal), true
	}
}

// findRegex matches with the text before from in view, so assertions such
// as \b and ^ behave as in a scan of the whole range.
func (p Pattern) findRegex(w *Window, from int) (int, int, bool) {
	data, lead := w.Context()
	at := lead + from
	if at == 0 {
		loc := p.re.FindIndex(data)
		if loc == nil {
			return 0, 0, false
		}
		return loc[0] - lead, loc[1] - lead, true
	}
	_, width := utf8.DecodeLastRune(data[:at])
	base := at - width
	loc := p.behind.FindSubmatchIndex(data[base:])
	if loc == nil {
		return 0, 0, false
	}
	return base + loc[2] - lead, base + loc[3] - lead, true
}

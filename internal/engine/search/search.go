package search

import (
	"context"
	"unicode/utf8"

	"github.com/dshills/textcore/internal/engine/textpos"
)

// Match is a matched document range.
type Match struct {
	Start int64
	End   int64
}

// Range returns the match as a textpos.Range.
func (m Match) Range() textpos.Range {
	return textpos.Range{Start: m.Start, End: m.End}
}

// Option configures window geometry.
type Option func(*options)

type options struct {
	chunkSize int
	overlap   int
}

// WithChunkSize overrides the number of new bytes read per window.
func WithChunkSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.chunkSize = n
		}
	}
}

// WithOverlap overrides the carry-over between windows. Literal patterns
// never overlap by less than len(pattern)-1.
func WithOverlap(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.overlap = n
		}
	}
}

// Matcher pulls successive non-overlapping matches of a pattern from a
// range. Callers may stop at any time; the context is checked between
// windows.
//
// Matches are those a single scan of the whole range would report, as long
// as each match (plus any text a regular expression needs after it) fits in
// the window overlap. Empty matches are skipped.
type Matcher struct {
	ctx    context.Context
	pat    Pattern
	win    *Window
	loaded bool
	from   int   // chunk index the next search starts at
	next   int64 // document offset the scan has reached
	match  Match
	err    error
	done   bool
}

// NewMatcher returns a Matcher over r of src. An empty pattern or range
// yields no matches.
func NewMatcher(ctx context.Context, src Source, r textpos.Range, pat Pattern, opts ...Option) *Matcher {
	m := &Matcher{ctx: ctx, pat: pat}
	r = r.Clamp(src.Len())
	if pat.IsEmpty() || r.IsEmpty() {
		m.done = true
		return m
	}

	o := options{chunkSize: pat.chunkSize(), overlap: pat.overlap()}
	for _, opt := range opts {
		opt(&o)
	}
	if pat.kind == KindLiteral {
		o.overlap = max(o.overlap, len(pat.literal)-1)
	}
	m.win = NewWindow(src, r.Start, r.End, o.chunkSize, o.overlap)
	m.next = r.Start
	return m
}

// Next advances to the next match.
func (m *Matcher) Next() bool {
	if m.done {
		return false
	}
	for {
		if !m.loaded {
			if err := m.ctx.Err(); err != nil {
				return m.fail(err)
			}
			if !m.win.Next() {
				return m.fail(m.win.Err())
			}
			m.loaded = true
			m.from = int(max(0, m.next-m.win.Offset()))
		}

		buf := m.win.Bytes()
		for m.from <= len(buf) {
			s, e, ok := m.pat.find(m.win, m.from)
			if !ok {
				break
			}
			if e == s {
				_, width := utf8.DecodeRune(buf[s:])
				m.from = s + max(width, 1)
				continue
			}
			if m.pat.kind == KindRegex && !m.win.Last() && s >= len(buf)-m.win.carry() {
				// The next window starts before s and sees more text after
				// the match.
				break
			}
			m.from = e
			m.match = Match{Start: m.win.Offset() + int64(s), End: m.win.Offset() + int64(e)}
			m.next = m.match.End
			return true
		}
		m.loaded = false
	}
}

func (m *Matcher) fail(err error) bool {
	m.err = err
	m.done = true
	return false
}

// Match returns the current match.
func (m *Matcher) Match() Match {
	return m.match
}

// Err returns the error that ended iteration, if any.
func (m *Matcher) Err() error {
	return m.err
}

// FindFirst returns the first match of pat within r.
func FindFirst(ctx context.Context, src Source, r textpos.Range, pat Pattern, opts ...Option) (Match, bool, error) {
	m := NewMatcher(ctx, src, r, pat, opts...)
	if m.Next() {
		return m.Match(), true, nil
	}
	return Match{}, false, m.Err()
}

// FindAll collects up to limit matches (all when limit <= 0).
func FindAll(ctx context.Context, src Source, r textpos.Range, pat Pattern, limit int, opts ...Option) ([]Match, error) {
	var out []Match
	m := NewMatcher(ctx, src, r, pat, opts...)
	for m.Next() {
		out = append(out, m.Match())
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, m.Err()
}

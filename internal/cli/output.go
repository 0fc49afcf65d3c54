package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/tidwall/sjson"

	"github.com/dshills/textcore/internal/engine"
	"github.com/dshills/textcore/internal/engine/textpos"
)

// ErrInvalidPosition is returned for position arguments that are neither a
// byte offset nor LINE:COL.
var ErrInvalidPosition = errors.New("invalid position")

// parsePosition parses "1234" as a byte offset and "10:4" as a zero-based
// line/column pair.
func parsePosition(s string) (textpos.Position, error) {
	if line, col, ok := strings.Cut(s, ":"); ok {
		l, err1 := strconv.ParseInt(line, 10, 64)
		c, err2 := strconv.ParseInt(col, 10, 64)
		if err1 != nil || err2 != nil || l < 0 || c < 0 {
			return textpos.Position{}, fmt.Errorf("%q: %w", s, ErrInvalidPosition)
		}
		return textpos.LineCol(l, c), nil
	}
	off, err := strconv.ParseInt(s, 10, 64)
	if err != nil || off < 0 {
		return textpos.Position{}, fmt.Errorf("%q: %w", s, ErrInvalidPosition)
	}
	return textpos.Offset(off), nil
}

// resolveArg parses and resolves a position argument to an offset.
func resolveArg(e *engine.Engine, s string) (int64, textpos.Exactness, error) {
	pos, err := parsePosition(s)
	if err != nil {
		return 0, textpos.Exact, err
	}
	return e.PositionToOffset(pos)
}

// pointOf returns the line/column form of a resolved position.
func pointOf(p textpos.Position) textpos.Point {
	pt, _ := p.Point()
	return pt
}

// jsonDoc builds a JSON object incrementally with sjson. The first error
// sticks and later sets are ignored.
type jsonDoc struct {
	data []byte
	err  error
}

func newJSONDoc() *jsonDoc {
	return &jsonDoc{data: []byte("{}")}
}

func (d *jsonDoc) set(path string, value any) *jsonDoc {
	if d.err != nil {
		return d
	}
	d.data, d.err = sjson.SetBytes(d.data, path, value)
	return d
}

func (d *jsonDoc) writeTo(w io.Writer) error {
	if d.err != nil {
		return fmt.Errorf("encode output: %w", d.err)
	}
	_, err := fmt.Fprintln(w, string(d.data))
	return err
}

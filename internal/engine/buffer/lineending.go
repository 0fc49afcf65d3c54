package buffer

import "bytes"

// lineEndingSample is the prefix examined by line ending detection.
const lineEndingSample = 64 * 1024

// LineEnding is the line terminator style of a document.
type LineEnding uint8

const (
	LineEndingLF LineEnding = iota
	LineEndingCRLF
	LineEndingCR
)

var lineEndingSeqs = [...]string{
	LineEndingLF:   "\n",
	LineEndingCRLF: "\r\n",
	LineEndingCR:   "\r",
}

// String returns the terminator escaped, for display.
func (le LineEnding) String() string {
	switch le {
	case LineEndingCRLF:
		return `\r\n`
	case LineEndingCR:
		return `\r`
	}
	return `\n`
}

// Sequence returns the terminator bytes.
func (le LineEnding) Sequence() string {
	if int(le) < len(lineEndingSeqs) {
		return lineEndingSeqs[le]
	}
	return "\n"
}

// DetectLineEnding returns the terminator that occurs most often in data.
// Ties prefer CRLF, then CR; data without terminators is LF.
func DetectLineEnding(data []byte) LineEnding {
	crlf := bytes.Count(data, []byte("\r\n"))
	lf := bytes.Count(data, []byte("\n")) - crlf
	cr := bytes.Count(data, []byte("\r")) - crlf

	best, n := LineEndingLF, lf
	if crlf > 0 && crlf >= n {
		best, n = LineEndingCRLF, crlf
	}
	if cr > 0 && (cr > n || cr == n && best == LineEndingLF) {
		best = LineEndingCR
	}
	return best
}

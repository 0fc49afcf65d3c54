package textpos

import "strconv"

// Count is a line-feed count that may not be known yet.
// An unknown count is distinct from zero; it never silently reads as 0.
// The zero value is Known(0).
type Count struct {
	n       int64
	unknown bool
}

// Known returns a determined count.
func Known(n int64) Count {
	return Count{n: n}
}

// Unknown returns an undetermined count.
func Unknown() Count {
	return Count{unknown: true}
}

// IsKnown reports whether the count has been determined.
func (c Count) IsKnown() bool {
	return !c.unknown
}

// Value returns the count and whether it is known.
func (c Count) Value() (int64, bool) {
	if c.unknown {
		return 0, false
	}
	return c.n, true
}

// Add combines two counts. The result is unknown if either side is.
func (c Count) Add(other Count) Count {
	if c.unknown || other.unknown {
		return Unknown()
	}
	return Known(c.n + other.n)
}

// String returns the count or "?" when unknown.
func (c Count) String() string {
	if c.unknown {
		return "?"
	}
	return strconv.FormatInt(c.n, 10)
}

// Exactness tags a line number as computed or approximated.
type Exactness uint8

const (
	// Exact values were computed from known line-feed counts.
	Exact Exactness = iota
	// Estimated values were derived from an average line length.
	Estimated
)

// String returns "exact" or "estimated".
func (e Exactness) String() string {
	if e == Estimated {
		return "estimated"
	}
	return "exact"
}

// Combine returns the weaker of the two tags.
func (e Exactness) Combine(other Exactness) Exactness {
	if e == Estimated || other == Estimated {
		return Estimated
	}
	return Exact
}

// Estimate is a value tagged with its exactness.
type Estimate struct {
	Value     int64
	Exactness Exactness
}

// IsExact reports whether the value was computed rather than estimated.
func (e Estimate) IsExact() bool {
	return e.Exactness == Exact
}

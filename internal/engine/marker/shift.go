package marker

import "math"

// shift is the pending adjustment x -> max(floor, x+add). The family is
// closed under composition, so any sequence of insertions and deletions on a
// subtree collapses into a single shift.
type shift struct {
	add   int64
	floor int64
}

var identity = shift{floor: math.MinInt64}

func offsetBy(d int64) shift {
	return shift{add: d, floor: math.MinInt64}
}

func (s shift) apply(x int64) int64 {
	return max(s.floor, x+s.add)
}

func (s shift) isIdentity() bool {
	return s.add == 0 && s.floor == math.MinInt64
}

// then returns the shift equivalent to applying s and then t.
func (s shift) then(t shift) shift {
	floor := t.floor
	if s.floor != math.MinInt64 {
		floor = max(floor, s.floor+t.add)
	}
	return shift{add: s.add + t.add, floor: floor}
}

package storage

import "sync/atomic"

// DefaultAddCapacity is the size of each append unit.
const DefaultAddCapacity = 64 * 1024

// addBuffer hands out space in fixed-capacity append units. Bytes below
// used are immutable; only the single writer touches bytes above it.
type addBuffer struct {
	capacity int64
	unit     *Unit
	used     int64
}

// append copies p into the current append unit, starting a new one when p
// does not fit, and returns the unit and the offset of the copy.
func (a *addBuffer) append(p []byte, nextID *atomic.Uint64) (*Unit, int64) {
	need := int64(len(p))
	if a.unit == nil || a.capacity-a.used < need {
		size := max(a.capacity, need)
		data := make([]byte, size)
		a.unit = &Unit{id: ID(nextID.Add(1)), kind: KindLoaded, data: data, length: size}
		a.used = 0
	}
	start := a.used
	copy(a.unit.data[start:], p)
	a.used += need
	return a.unit, start
}

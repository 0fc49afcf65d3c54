package textpos

import "fmt"

// Edit describes a mutation at Offset that removed Removed bytes and then
// inserted Inserted bytes.
type Edit struct {
	Offset   ByteOffset
	Removed  int64
	Inserted int64
}

// Delta returns the net change in document length.
func (e Edit) Delta() int64 {
	return e.Inserted - e.Removed
}

// IsNoop returns true if the edit changed nothing.
func (e Edit) IsNoop() bool {
	return e.Removed == 0 && e.Inserted == 0
}

// Invert returns the edit that undoes e.
func (e Edit) Invert() Edit {
	return Edit{Offset: e.Offset, Removed: e.Inserted, Inserted: e.Removed}
}

// String returns a human-readable representation of the edit.
func (e Edit) String() string {
	return fmt.Sprintf("edit@%d -%d +%d", e.Offset, e.Removed, e.Inserted)
}

// EditListener receives edits after they have been applied.
type EditListener interface {
	OnEdit(e Edit)
}

// EditListenerFunc adapts a function to EditListener.
type EditListenerFunc func(e Edit)

// OnEdit calls f(e).
func (f EditListenerFunc) OnEdit(e Edit) {
	f(e)
}

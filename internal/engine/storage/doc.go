// Package storage holds the backing units that pieces of a document point
// into.
//
// A Unit is either Loaded (bytes resident in memory, optionally with a
// line-feed index) or Unloaded (a region of a file identified by path, file
// offset and length). Units never change once created: loading a region of an
// Unloaded unit produces a new Loaded unit rather than mutating the original.
// The single exception is the append area of an add buffer, which only ever
// grows past the bytes already referenced by pieces.
//
// The Store allocates unit IDs, owns the add buffer, performs chunk loads
// through a Source and optionally watches source files for changes.
package storage

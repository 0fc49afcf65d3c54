// Package textpos defines the coordinate types shared by the text engine:
// byte offsets, line/column points, the tagged Position union, tri-state
// line-feed counts and the edit record exchanged between the buffer and the
// marker index.
//
// Lines and columns are 0-indexed. Columns are measured in bytes from the
// start of the line.
package textpos

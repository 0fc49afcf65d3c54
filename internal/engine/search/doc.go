// Package search finds patterns in documents without materializing them.
//
// A document is read through a Source as consecutive segments and scanned in
// fixed-size windows. Consecutive windows overlap so a match straddling a
// window boundary lies wholly inside the later window; a match is reported
// only if it ends after the bytes the previous window already covered, so
// every match is reported once.
//
// Literal patterns use 64 KiB windows overlapping by len(pattern)-1 bytes,
// which makes literal search exact. Regular expressions use 1 MiB windows
// overlapping by 4 KiB; matches longer than the overlap may be truncated at a
// window boundary.
package search

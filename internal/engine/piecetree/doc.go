// Package piecetree provides a persistent, height-balanced tree of pieces.
//
// Each leaf holds one Piece: a byte range of a storage Unit. Internal nodes
// cache the aggregate Summary of their subtree (bytes, line feeds, pieces), so
// offset and line lookups descend in O(log n). Line-feed counts are tri-state:
// a subtree that contains any piece of an unloaded unit reports an unknown
// count, and line lookups that would need it fail with ErrUnknownLines.
//
// Trees are immutable values. Insert, Delete, Replace and Split return new
// trees that share every untouched node with the original, which makes
// snapshots free:
//
//	t := piecetree.FromPieces(p0)
//	t2, _ := t.Insert(5, p1) // t is unchanged
//	for it := t2.Iter(0, t2.Len()); it.Next(); {
//		seg := it.Segment()
//		...
//	}
//
// Balance is maintained with AVL joins; split and concatenation each cost
// O(log n).
package piecetree

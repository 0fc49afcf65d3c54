// Package marker keeps positions anchored to text across edits.
//
// A marker is an interval [Start, End] of byte offsets (a point marker has
// Start == End). Each bound carries an affinity that decides what happens when
// text is inserted exactly at it: Left bounds stay before the inserted text,
// Right bounds move after it. Deleting a span moves bounds inside it to the
// deletion start.
//
// Edits are applied lazily. Markers are kept in treaps ordered by start, one
// per start affinity, so the markers shifted by an edit always form a suffix
// of each treap. The shift is recorded once on that suffix's root and pushed
// down only when a later operation walks through it, which makes an edit
// O(log n) plus O(k) for the k intervals that straddle the edit point.
// Positions are resolved on read by composing the pending shifts on the path
// to the root.
//
// Overlays layer presentation data (faces, priorities, namespaces) on top of
// interval markers.
package marker

// Package geom provides the numeric building blocks of the partition builder:
// grid snapping, the inclusive point-in-box predicate, axis-aligned
// rectangles on the horizontal plane and marker-set bounds.
//
// # Grid Snapping
//
// [SnapScalar] moves a coordinate onto the nearest multiple of the grid unit
// in the requested direction. Values already on the grid are returned
// unchanged, so snapping is idempotent:
//
//	x, _ := geom.SnapScalar(45, 20, true)  // 60
//	x, _ = geom.SnapScalar(30, 20, false)  // 20
//	x, _ = geom.SnapScalar(40, 20, true)   // 40
//
// Remainders follow floored division, so negative inputs snap toward negative
// infinity when rounding down (-15 becomes -20) and toward positive infinity
// when rounding up (-15 becomes 0).
//
// Grid membership is tested in cells rather than with a floating remainder:
// a value within a billionth of a cell of a multiple is on the grid. Units
// such as 0.1 or 0.3 therefore snap 0.9 to itself instead of one cell away.
// [Cells] counts whole cells in an extent the same way, and the builder
// places every split at a whole number of cells from the node's edge.
//
// # Bounds
//
// [PointInBounds] is boundary-inclusive on every side: a marker lying exactly
// on a cell edge counts as inside both cells that share the edge.
//
// [Rect] always lies on the z = 0 plane. The builder never splits on z, and
// the world's vertical extent is carried separately by the tree.
package geom

// Package tree builds and flattens the grid-snapped spatial partition that a
// game world's renderer and collision system use to bucket map content.
//
// # Overview
//
// A [Tree] covers the horizontal extent of a marker set. [Build] snaps that
// extent to the grid and recursively splits it, one axis at a time, until
// every cell is no larger than the grid unit or contains no marker at all.
// The result is a binary tree whose internal nodes each cut their rectangle
// at a grid line along x or y.
//
// # Splitting Policy
//
// For a node of width w and depth d against grid unit u:
//
//   - w <= u and d <= u: the node stays a leaf
//   - no marker inside the node (edges inclusive): the node stays a leaf
//   - only d > u: split on y at the snapped midpoint
//   - only w > u: split on x at the snapped midpoint
//   - both exceed u: split on x, then split each half on y if that half is
//     still deeper than u, yielding up to four quadrants per level
//
// Midpoints are always snapped down to the grid, so children may differ in
// size when the extent is an odd number of units.
//
// Child order is fixed: an x split puts the lower-x half on the left, a y
// split puts the upper-y half on the left.
//
// # Storage
//
// Nodes live in an arena owned by the tree and refer to each other by
// [NodeID]. A node's parent is an index, not a pointer, so the structure has
// no ownership cycles and a node's parent is found in constant time.
//
// # Flattening
//
// [Tree.Flatten] lays the tree out in preorder and describes every node by
// its descendant count and the signed distance back to its parent. The
// layout is checked as it is produced; a violated invariant is reported as
// ENCODING_INVARIANT_VIOLATION instead of being written out. [Unflatten]
// reverses the layout and is what makes the scheme testable on its own.
//
// # Visualization
//
// [Tree.ToDOT] and [Tree.RenderSVG] draw the tree with Graphviz, and
// [Tree.WriteDump] writes a plain-text listing.
package tree

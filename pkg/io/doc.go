// Package io encodes partition trees as chunk files and reads and writes
// marker sets.
//
// # Tree Encoding
//
// [WriteTree] emits a tree through any [chunk.Writer]. The layout is one
// tree chunk ([TagTree]) holding the snapped world bounds, followed by one
// node chunk ([TagNode]) per node in preorder. Each node chunk nests a split
// chunk ([TagSplit]):
//
//	0x03F00004 Tree
//	  WorldBoundsMinimum  vector
//	  WorldBoundsMaximum  vector
//	  0x03F00005 Node            (repeated, preorder)
//	    ChildCount        uint32  descendants, excluding the node
//	    ParentOffset      int32   parent index - own index; 0 for the root
//	    0x03F00006 Split
//	      Axis            int32   0 = x, 2 = y, -1 = leaf
//	      Position        float32 split coordinate, -1 for leaves
//	      ...Limit        uint32  eight limits, always 0
//
// The node list is flattened and checked before the first chunk is begun,
// so a tree that breaks the preorder layout never produces partial output.
//
// [ExportTree] is the file convenience: it encodes into an in-memory
// [chunk.Document] and writes the result atomically.
//
// Reading tree files back is not supported; [ImportTree] always fails with
// UNSUPPORTED.
//
// # Marker Files
//
// Marker sets are JSON, either an object with a "markers" array or a bare
// array. Each marker is a [x, y, z] triple or an {"x", "y", "z"} object:
//
//	{"markers": [[0, 0, 0], [15, 5, 0], [45, 45, 0]]}
//	[{"x": 0, "y": 0, "z": 0}, {"x": 15, "y": 5}]
//
// Use [ReadMarkers] and [WriteMarkers] for streams, [ImportMarkers] and
// [ExportMarkers] for files.
package io

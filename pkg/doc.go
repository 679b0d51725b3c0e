// Package pkg provides the core libraries for gridtree.
//
// # Overview
//
// Gridtree partitions the horizontal extent of a world into a binary tree of
// grid-aligned cells, driven by a set of marker points, and exports the tree
// as a chunk file an engine can load. The pkg directory is organized into:
//
//  1. [geom] - Vectors, rectangles and grid snapping
//  2. [tree] - The partition tree, its builder and its flattened form
//  3. [chunk] - The chunk document model and its codecs (p3d, xml, json)
//  4. [io] - Tree export and marker files
//  5. [pipeline] - Orchestration (markers → build → encode → write) with caching
//  6. [cache], [metrics], [observability] - Infrastructure
//  7. [render/partition] - Plots of the partition
//
// # Architecture
//
// The typical data flow through gridtree:
//
//	markers.json
//	     ↓
//	[io] ImportMarkers
//	     ↓
//	[tree] Build (snap world bounds, split at grid midpoints)
//	     ↓
//	[tree] Flatten (preorder records, checked)
//	     ↓
//	[io] WriteTree → [chunk] Document → codec
//	     ↓
//	world.p3d / world.xml / world.json
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/gridtree/pkg/chunk"
//	    "github.com/matzehuels/gridtree/pkg/geom"
//	    "github.com/matzehuels/gridtree/pkg/io"
//	    "github.com/matzehuels/gridtree/pkg/tree"
//	)
//
//	markers := []geom.Vec3{geom.V(0, 0, 0), geom.V(45, 45, 0)}
//	t, err := tree.Build(markers, tree.DefaultGridUnit)
//	if err != nil {
//	    return err
//	}
//	return io.ExportTree(t, "world.p3d", chunk.P3D)
//
// [geom]: github.com/matzehuels/gridtree/pkg/geom
// [tree]: github.com/matzehuels/gridtree/pkg/tree
// [chunk]: github.com/matzehuels/gridtree/pkg/chunk
// [io]: github.com/matzehuels/gridtree/pkg/io
// [pipeline]: github.com/matzehuels/gridtree/pkg/pipeline
// [cache]: github.com/matzehuels/gridtree/pkg/cache
// [metrics]: github.com/matzehuels/gridtree/pkg/metrics
// [observability]: github.com/matzehuels/gridtree/pkg/observability
// [render/partition]: github.com/matzehuels/gridtree/pkg/render/partition
package pkg

package io

import (
	"github.com/matzehuels/gridtree/pkg/chunk"
	"github.com/matzehuels/gridtree/pkg/tree"
)

// Chunk tags of the tree encoding.
const (
	TagTree  chunk.Tag = 0x3F00004
	TagNode  chunk.Tag = 0x3F00005
	TagSplit chunk.Tag = 0x3F00006
)

// Exported axis codes. The engine numbers the horizontal axes 0 and 2.
const (
	AxisCodeX    int32 = 0
	AxisCodeY    int32 = 2
	AxisCodeLeaf int32 = -1
)

// limitFields are written as zero into every split chunk.
var limitFields = []string{
	"StaticWorldMeshLimit",
	"StaticWorldPropLimit",
	"GroundCollisionLimit",
	"CharactersCarsAndBreakableWorldPropLimit",
	"WallCollisionLimit",
	"RoadNodeSegmentLimit",
	"PedNodeSegmentLimit",
	"WorldMeshLimit",
}

// AxisCode maps a split axis to its exported code.
func AxisCode(a tree.Axis) int32 {
	switch a {
	case tree.AxisX:
		return AxisCodeX
	case tree.AxisY:
		return AxisCodeY
	default:
		return AxisCodeLeaf
	}
}

// WriteTree emits t through w under w's root chunk. It does not flush w.
// When flattening fails no chunk is written and the error carries
// ENCODING_INVARIANT_VIOLATION.
func WriteTree(w chunk.Writer, t *tree.Tree) error {
	records, err := t.Flatten()
	if err != nil {
		return err
	}

	tc := w.BeginChunk(w.Root(), TagTree)
	w.WriteVector(tc, "WorldBoundsMinimum", t.WorldMin.X, t.WorldMin.Y, t.WorldMin.Z)
	w.WriteVector(tc, "WorldBoundsMaximum", t.WorldMax.X, t.WorldMax.Y, t.WorldMax.Z)

	for _, rec := range records {
		nc := w.BeginChunk(tc, TagNode)
		w.WriteValue(nc, "ChildCount", chunk.Uint32(rec.ChildCount))
		w.WriteValue(nc, "ParentOffset", chunk.Int32(rec.ParentOffset))

		sc := w.BeginChunk(nc, TagSplit)
		pos := float32(-1)
		if !rec.IsLeaf() {
			pos = float32(rec.Position)
		}
		w.WriteValue(sc, "Axis", chunk.Int32(AxisCode(rec.Axis)))
		w.WriteValue(sc, "Position", chunk.Float32(pos))
		for _, name := range limitFields {
			w.WriteValue(sc, name, chunk.Uint32(0))
		}
	}
	return nil
}

// EncodeTree returns t encoded with codec.
func EncodeTree(t *tree.Tree, codec chunk.Codec) ([]byte, error) {
	doc := chunk.NewDocument(codec)
	if err := WriteTree(doc, t); err != nil {
		return nil, err
	}
	return doc.Bytes()
}

// ExportTree encodes t with codec and atomically writes it to path. An
// existing file at path is replaced only if encoding succeeds.
func ExportTree(t *tree.Tree, path string, codec chunk.Codec) error {
	doc := chunk.NewDocument(codec)
	if err := WriteTree(doc, t); err != nil {
		return err
	}
	return doc.Flush(path)
}

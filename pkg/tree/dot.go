package tree

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/gridtree/pkg/geom"
)

// ToDOT returns a Graphviz DOT representation of the tree.
//
// Internal nodes are ellipses labeled with their split ("X=20"); leaves are
// rounded boxes labeled with their rectangle. Leaves containing at least one
// of the given markers are filled; pass nil to skip occupancy shading.
func (t *Tree) ToDOT(markers []geom.Vec3) string {
	var buf bytes.Buffer
	buf.WriteString("digraph Tree {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [fontname=\"SF Mono, Menlo, monospace\", fontsize=12, style=filled, fillcolor=white];\n")
	buf.WriteString("  edge [arrowhead=none];\n\n")

	for _, id := range t.Preorder() {
		n := t.nodes[id]
		if s := n.Split; s != nil {
			fmt.Fprintf(&buf, "  n%d [label=\"%s=%g\", shape=ellipse];\n", id, s.Axis, s.Position)
			fmt.Fprintf(&buf, "  n%d -> n%d;\n", id, s.Left)
			fmt.Fprintf(&buf, "  n%d -> n%d;\n", id, s.Right)
			continue
		}
		fill := "white"
		if n.Rect.ContainsAny(markers) {
			fill = "\"#b7e4c7\""
		}
		fmt.Fprintf(&buf, "  n%d [label=%q, shape=box, style=\"filled,rounded\", fillcolor=%s];\n",
			id, n.Rect.String(), fill)
	}

	buf.WriteString("}\n")
	return buf.String()
}

// RenderSVG renders [Tree.ToDOT] to an SVG document with Graphviz.
func (t *Tree) RenderSVG(ctx context.Context, markers []geom.Vec3) ([]byte, error) {
	dot := t.ToDOT(markers)

	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

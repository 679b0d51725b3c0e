package tree

import (
	"github.com/matzehuels/gridtree/pkg/errors"
	"github.com/matzehuels/gridtree/pkg/geom"
)

// DefaultGridUnit is the cell size used when the caller does not pick one.
const DefaultGridUnit = 20.0

// NodeID addresses a node within its tree's arena.
type NodeID int32

// NoNode is the parent of the root.
const NoNode NodeID = -1

// Axis is the internal split axis. Encoders remap it to their own numbering.
type Axis int8

const (
	AxisNone Axis = -1 // leaf marker in flattened records
	AxisX    Axis = 0
	AxisY    Axis = 1
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "X"
	case AxisY:
		return "Y"
	}
	return "-"
}

// Split describes how an internal node divides its rectangle.
type Split struct {
	Axis     Axis
	Position float64
	Left     NodeID
	Right    NodeID
}

// Node is one cell of the partition. Split is nil for leaves.
type Node struct {
	Rect   geom.Rect
	Parent NodeID
	Split  *Split
}

// IsLeaf reports whether the node has no children.
func (n Node) IsLeaf() bool { return n.Split == nil }

// Tree is a grid-snapped partition of the world's horizontal extent.
// The root is always NodeID 0. A Tree is not modified after it is built.
type Tree struct {
	WorldMin geom.Vec3
	WorldMax geom.Vec3
	GridUnit float64

	nodes []Node
}

// New returns a tree holding a single leaf spanning worldMin to worldMax.
func New(worldMin, worldMax geom.Vec3, gridUnit float64) (*Tree, error) {
	if err := errors.ValidateGridUnit(gridUnit); err != nil {
		return nil, err
	}
	rect, err := geom.NewRect(worldMin, worldMax)
	if err != nil {
		return nil, err
	}
	return &Tree{
		WorldMin: worldMin,
		WorldMax: worldMax,
		GridUnit: gridUnit,
		nodes:    []Node{{Rect: rect, Parent: NoNode}},
	}, nil
}

// Root returns the root node's ID.
func (t *Tree) Root() NodeID { return 0 }

// Len returns the total number of nodes.
func (t *Tree) Len() int { return len(t.nodes) }

// Node returns a copy of the node with the given ID.
// It panics if id is out of range, like a slice index.
func (t *Tree) Node(id NodeID) Node {
	n := t.nodes[id]
	if n.Split != nil {
		s := *n.Split
		n.Split = &s
	}
	return n
}

// Leaves returns every leaf in preorder.
func (t *Tree) Leaves() []NodeID {
	var out []NodeID
	for _, id := range t.Preorder() {
		if t.nodes[id].IsLeaf() {
			out = append(out, id)
		}
	}
	return out
}

// Depth returns the number of edges on the longest root-to-leaf path.
func (t *Tree) Depth() int {
	return t.depth(t.Root())
}

func (t *Tree) depth(id NodeID) int {
	s := t.nodes[id].Split
	if s == nil {
		return 0
	}
	return 1 + max(t.depth(s.Left), t.depth(s.Right))
}

// Locate returns the leaf containing p. Points on a split line resolve to
// the left child. The second result is false if p lies outside the world.
func (t *Tree) Locate(p geom.Vec3) (NodeID, bool) {
	id := t.Root()
	if !t.nodes[id].Rect.Contains(p) {
		return NoNode, false
	}
	for {
		s := t.nodes[id].Split
		if s == nil {
			return id, true
		}
		switch s.Axis {
		case AxisX:
			if p.X <= s.Position {
				id = s.Left
			} else {
				id = s.Right
			}
		case AxisY:
			if p.Y >= s.Position {
				id = s.Left
			} else {
				id = s.Right
			}
		}
	}
}

// split turns leaf id into an internal node cut at pos along axis and
// returns the two new children.
func (t *Tree) split(id NodeID, axis Axis, pos float64) (NodeID, NodeID) {
	r := t.nodes[id].Rect
	left, right := r, r
	switch axis {
	case AxisX:
		left.Max.X = pos
		right.Min.X = pos
	case AxisY:
		left.Min.Y = pos
		right.Max.Y = pos
	}

	l := NodeID(len(t.nodes))
	rt := l + 1
	t.nodes = append(t.nodes,
		Node{Rect: left, Parent: id},
		Node{Rect: right, Parent: id},
	)
	t.nodes[id].Split = &Split{Axis: axis, Position: pos, Left: l, Right: rt}
	return l, rt
}

package tree

import (
	"github.com/matzehuels/gridtree/pkg/errors"
	"github.com/matzehuels/gridtree/pkg/geom"
)

// Record is one node of a flattened tree.
type Record struct {
	// Node is the arena ID the record was produced from.
	Node NodeID

	// ChildCount is the number of descendants, excluding the node itself.
	ChildCount int

	// ParentOffset is the parent's preorder index minus this record's index:
	// zero for the root, negative for everything else.
	ParentOffset int

	// Axis is AxisNone for leaves.
	Axis Axis

	// Position is the split coordinate. Leaves carry zero.
	Position float64
}

// IsLeaf reports whether the record describes a leaf.
func (r Record) IsLeaf() bool { return r.Axis == AxisNone }

// Preorder lists every node reachable from the root: the root first, then
// the whole left subtree, then the whole right subtree.
func (t *Tree) Preorder() []NodeID {
	if len(t.nodes) == 0 {
		return nil
	}
	out := make([]NodeID, 0, len(t.nodes))
	stack := []NodeID{t.Root()}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, id)
		if s := t.nodes[id].Split; s != nil {
			stack = append(stack, s.Right, s.Left)
		}
	}
	return out
}

// SubtreeSize returns the number of nodes in id's subtree, itself included.
// A leaf has size 1.
func (t *Tree) SubtreeSize(id NodeID) int {
	s := t.nodes[id].Split
	if s == nil {
		return 1
	}
	return 1 + t.SubtreeSize(s.Left) + t.SubtreeSize(s.Right)
}

// Flatten returns the preorder records of the tree. It verifies, for every
// node, that its parent precedes it, that its children sit where preorder
// puts them, and that descendant counts agree with the layout.
func (t *Tree) Flatten() ([]Record, error) {
	if len(t.nodes) == 0 {
		return nil, invariant("tree has no nodes")
	}
	order := t.Preorder()
	if len(order) != len(t.nodes) {
		return nil, invariant("preorder reaches %d of %d nodes", len(order), len(t.nodes))
	}

	index := make([]int, len(t.nodes))
	for i := range index {
		index[i] = -1
	}
	for i, id := range order {
		if index[id] != -1 {
			return nil, invariant("node %d visited twice", id)
		}
		index[id] = i
	}

	// Children follow their parent in preorder, so walking backwards sees
	// every child before its parent.
	size := make([]int, len(t.nodes))
	for i := len(order) - 1; i >= 0; i-- {
		id := order[i]
		size[id] = 1
		if s := t.nodes[id].Split; s != nil {
			size[id] += size[s.Left] + size[s.Right]
		}
	}

	records := make([]Record, len(order))
	for i, id := range order {
		n := t.nodes[id]
		rec := Record{Node: id, ChildCount: size[id] - 1, Axis: AxisNone}

		if i == 0 {
			if n.Parent != NoNode {
				return nil, invariant("root %d has parent %d", id, n.Parent)
			}
		} else {
			if n.Parent == NoNode {
				return nil, invariant("node %d at index %d has no parent", id, i)
			}
			j := index[n.Parent]
			if j < 0 || j >= i {
				return nil, invariant("parent of node %d at index %d sits at index %d", id, i, j)
			}
			rec.ParentOffset = j - i
		}

		if s := n.Split; s != nil {
			if index[s.Left] != i+1 || index[s.Right] != i+1+size[s.Left] {
				return nil, invariant("children of node %d at indices %d,%d, want %d,%d",
					id, index[s.Left], index[s.Right], i+1, i+1+size[s.Left])
			}
			if t.nodes[s.Left].Parent != id || t.nodes[s.Right].Parent != id {
				return nil, invariant("children of node %d point at another parent", id)
			}
			rec.Axis = s.Axis
			rec.Position = s.Position
		}
		records[i] = rec
	}

	if records[0].ChildCount != len(records)-1 {
		return nil, invariant("root child count %d, want %d", records[0].ChildCount, len(records)-1)
	}
	return records, nil
}

// Unflatten rebuilds a tree from preorder records using only their offsets,
// counts and split data. Node rectangles are recomputed from the world
// bounds, so a successful Unflatten also proves every split lies inside its
// node.
func Unflatten(worldMin, worldMax geom.Vec3, gridUnit float64, records []Record) (*Tree, error) {
	if len(records) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidArgument, "no records to unflatten")
	}
	if records[0].ParentOffset != 0 {
		return nil, invariant("root record has parent offset %d", records[0].ParentOffset)
	}

	t, err := New(worldMin, worldMax, gridUnit)
	if err != nil {
		return nil, err
	}
	next, err := t.unflatten(records, 0, t.Root())
	if err != nil {
		return nil, err
	}
	if next != len(records) {
		return nil, invariant("%d trailing records after the root subtree", len(records)-next)
	}
	return t, nil
}

// unflatten consumes the subtree starting at records[i] into node id and
// returns the index just past it.
func (t *Tree) unflatten(records []Record, i int, id NodeID) (int, error) {
	rec := records[i]
	next := i + 1

	if !rec.IsLeaf() {
		r := t.nodes[id].Rect
		lo, hi := r.Min.X, r.Max.X
		if rec.Axis == AxisY {
			lo, hi = r.Min.Y, r.Max.Y
		} else if rec.Axis != AxisX {
			return 0, invariant("record %d has unknown axis %d", i, rec.Axis)
		}
		if rec.Position < lo || rec.Position > hi {
			return 0, invariant("record %d splits at %g outside %s", i, rec.Position, r)
		}

		left, right := t.split(id, rec.Axis, rec.Position)
		for _, child := range []NodeID{left, right} {
			if next >= len(records) {
				return 0, invariant("record %d is missing a child", i)
			}
			if got := records[next].ParentOffset; got != i-next {
				return 0, invariant("record %d has parent offset %d, want %d", next, got, i-next)
			}
			var err error
			if next, err = t.unflatten(records, next, child); err != nil {
				return 0, err
			}
		}
	}

	if got := next - i - 1; rec.ChildCount != got {
		return 0, invariant("record %d claims %d descendants, layout has %d", i, rec.ChildCount, got)
	}
	return next, nil
}

func invariant(format string, args ...any) error {
	return errors.New(errors.ErrCodeEncodingInvariant, format, args...)
}


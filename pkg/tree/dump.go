package tree

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// WriteDump writes one line per node in preorder: its ID, parent, split,
// descendant count and rectangle. It is the diagnostic listing callers may
// route to any sink; nothing here touches the filesystem.
func (t *Tree) WriteDump(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "tree grid=%g world=%v..%v nodes=%d leaves=%d depth=%d\n",
		t.GridUnit, t.WorldMin, t.WorldMax, t.Len(), len(t.Leaves()), t.Depth())

	for _, id := range t.Preorder() {
		n := t.nodes[id]
		parent := "root"
		if n.Parent != NoNode {
			parent = fmt.Sprintf("%d", n.Parent)
		}
		split := "leaf"
		if s := n.Split; s != nil {
			split = fmt.Sprintf("%s@%g lc=%d rc=%d", s.Axis, s.Position, s.Left, s.Right)
		}
		fmt.Fprintf(bw, "#%d\tparent=%s\t%s\tchildren=%d\tbounds=%s\n",
			id, parent, split, t.SubtreeSize(id)-1, n.Rect)
	}
	return bw.Flush()
}

func (t *Tree) String() string {
	var b strings.Builder
	_ = t.WriteDump(&b)
	return b.String()
}

package tree_test

import (
	"fmt"

	"github.com/matzehuels/gridtree/pkg/geom"
	"github.com/matzehuels/gridtree/pkg/tree"
)

func Example() {
	markers := []geom.Vec3{
		geom.V(0, 0, 0),
		geom.V(15, 5, 0),
		geom.V(45, 45, 0),
	}

	t, err := tree.Build(markers, 20)
	if err != nil {
		panic(err)
	}

	fmt.Println("nodes:", t.Len(), "depth:", t.Depth())
	for _, id := range t.Leaves() {
		fmt.Println(t.Node(id).Rect)
	}
	// Output:
	// nodes: 13 depth: 4
	// [0,20]-[20,60]
	// [0,0]-[20,20]
	// [20,40]-[40,60]
	// [20,20]-[40,40]
	// [40,40]-[60,60]
	// [40,20]-[60,40]
	// [20,0]-[60,20]
}

func ExampleTree_Flatten() {
	t, err := tree.Build([]geom.Vec3{geom.V(0, 0, 0), geom.V(35, 10, 0)}, 20)
	if err != nil {
		panic(err)
	}

	records, err := t.Flatten()
	if err != nil {
		panic(err)
	}
	for i, r := range records {
		fmt.Printf("%d children=%d parent=%d axis=%s pos=%g\n", i, r.ChildCount, r.ParentOffset, r.Axis, r.Position)
	}
	// Output:
	// 0 children=2 parent=0 axis=X pos=20
	// 1 children=0 parent=-1 axis=- pos=0
	// 2 children=0 parent=-2 axis=- pos=0
}

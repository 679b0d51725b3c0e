package pipeline

import (
	"github.com/segmentio/encoding/json"

	"github.com/matzehuels/gridtree/pkg/geom"
	"github.com/matzehuels/gridtree/pkg/tree"
)

// cachedTree is the cache form of a tree: the world bounds plus the
// flattened records.
type cachedTree struct {
	WorldMin geom.Vec3     `json:"world_min"`
	WorldMax geom.Vec3     `json:"world_max"`
	GridUnit float64       `json:"grid_unit"`
	Records  []tree.Record `json:"records"`
}

// marshalTree flattens t for the cache. The bytes also feed the tree hash.
func marshalTree(t *tree.Tree) ([]byte, error) {
	records, err := t.Flatten()
	if err != nil {
		return nil, err
	}
	return json.Marshal(cachedTree{
		WorldMin: t.WorldMin,
		WorldMax: t.WorldMax,
		GridUnit: t.GridUnit,
		Records:  records,
	})
}

func unmarshalTree(data []byte) (*tree.Tree, error) {
	var ct cachedTree
	if err := json.Unmarshal(data, &ct); err != nil {
		return nil, err
	}
	return tree.Unflatten(ct.WorldMin, ct.WorldMax, ct.GridUnit, ct.Records)
}

package io

import (
	"github.com/matzehuels/gridtree/pkg/errors"
	"github.com/matzehuels/gridtree/pkg/tree"
)

// ImportTree would load a previously exported tree. Tree files are
// write-only, so it always fails with UNSUPPORTED.
func ImportTree(path string) (*tree.Tree, error) {
	return nil, errors.New(errors.ErrCodeUnsupported, "importing tree files is not supported: %s", path)
}

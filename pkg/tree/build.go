package tree

import (
	"math"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/gridtree/pkg/errors"
	"github.com/matzehuels/gridtree/pkg/geom"
)

// BuildOption configures [Build].
type BuildOption func(*builder)

// WithLogger reports every split at debug level.
func WithLogger(l *log.Logger) BuildOption {
	return func(b *builder) { b.logger = l }
}

type builder struct {
	t       *Tree
	markers []geom.Vec3
	unit    float64
	logger  *log.Logger
}

// Build partitions the horizontal extent of markers into grid-aligned cells.
//
// The world bounds are the per-axis marker extremes, each snapped up to the
// grid. The markers slice is only read and may be shared between concurrent
// builds.
//
// Build fails with INVALID_ARGUMENT if gridUnit is not positive, if a marker
// is not finite or if the world extent overflows, and with EMPTY_INPUT if
// markers is empty. A marker set whose snapped bounds have no
// extent (a single marker, for instance) produces a tree with one
// zero-extent leaf.
func Build(markers []geom.Vec3, gridUnit float64, opts ...BuildOption) (*Tree, error) {
	if err := errors.ValidateGridUnit(gridUnit); err != nil {
		return nil, err
	}
	if len(markers) == 0 {
		return nil, errors.New(errors.ErrCodeEmptyInput, "marker set is empty")
	}

	lo, hi, err := geom.Bounds(markers)
	if err != nil {
		return nil, err
	}
	worldMin, err := geom.SnapVector(lo, gridUnit, true)
	if err != nil {
		return nil, err
	}
	worldMax, err := geom.SnapVector(hi, gridUnit, true)
	if err != nil {
		return nil, err
	}

	if !worldMin.IsFinite() || !worldMax.IsFinite() || !finiteExtent(worldMin, worldMax) {
		return nil, errors.New(errors.ErrCodeInvalidArgument,
			"world %v..%v is too large for grid unit %g", worldMin, worldMax, gridUnit)
	}

	t, err := New(worldMin, worldMax, gridUnit)
	if err != nil {
		return nil, err
	}

	b := &builder{t: t, markers: markers, unit: gridUnit}
	for _, opt := range opts {
		opt(b)
	}
	b.subdivide(t.Root())
	return t, nil
}

func (b *builder) subdivide(id NodeID) {
	r := b.t.nodes[id].Rect
	cw, cd := b.cells(r.Width()), b.cells(r.Depth())

	if cw <= 1 && cd <= 1 {
		return
	}
	if !r.ContainsAny(b.markers) {
		return
	}

	switch {
	case cw <= 1:
		pos, ok := b.midpoint(r.Min.Y, r.Max.Y, cd)
		if !ok {
			return
		}
		upper, lower := b.split(id, AxisY, pos)
		b.subdivide(upper)
		b.subdivide(lower)
	case cd <= 1:
		pos, ok := b.midpoint(r.Min.X, r.Max.X, cw)
		if !ok {
			return
		}
		left, right := b.split(id, AxisX, pos)
		b.subdivide(left)
		b.subdivide(right)
	default:
		pos, ok := b.midpoint(r.Min.X, r.Max.X, cw)
		if !ok {
			return
		}
		left, right := b.split(id, AxisX, pos)
		b.subdivideHalf(left)
		b.subdivideHalf(right)
	}
}

// subdivideHalf finishes a quadrant split: a half that is still deeper than
// the grid unit is cut on y before recursing, without re-testing occupancy.
func (b *builder) subdivideHalf(id NodeID) {
	r := b.t.nodes[id].Rect
	cd := b.cells(r.Depth())
	if cd <= 1 {
		b.subdivide(id)
		return
	}
	pos, ok := b.midpoint(r.Min.Y, r.Max.Y, cd)
	if !ok {
		b.subdivide(id)
		return
	}
	upper, lower := b.split(id, AxisY, pos)
	b.subdivide(upper)
	b.subdivide(lower)
}

func (b *builder) split(id NodeID, axis Axis, pos float64) (NodeID, NodeID) {
	l, r := b.t.split(id, axis, pos)
	if b.logger != nil {
		b.logger.Debug("split", "node", id, "axis", axis, "pos", pos, "rect", b.t.nodes[id].Rect)
	}
	return l, r
}

func (b *builder) cells(extent float64) float64 {
	return geom.Cells(extent, b.unit)
}

// midpoint returns the grid line floor(cells/2) units above lo, which is
// lo+extent/2 snapped down. It reports false when that line does not fall
// strictly between lo and hi, which only happens once the unit drops below
// the float spacing at lo.
func (b *builder) midpoint(lo, hi, cells float64) (float64, bool) {
	pos := lo + math.Floor(cells/2)*b.unit
	return pos, lo < pos && pos < hi
}

func finiteExtent(lo, hi geom.Vec3) bool {
	return !math.IsInf(hi.X-lo.X, 0) && !math.IsInf(hi.Y-lo.Y, 0)
}

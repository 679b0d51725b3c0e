package geom

import (
	"math"

	"github.com/matzehuels/gridtree/pkg/errors"
)

// SnapScalar snaps x to a multiple of unit.
//
// If x is already a multiple, up to rounding error, it is returned unchanged.
// Otherwise x moves to the multiple below it, or the one above it when
// roundUp is set. A non-positive or non-finite unit fails with INVALID_ARGUMENT.
func SnapScalar(x, unit float64, roundUp bool) (float64, error) {
	if err := errors.ValidateGridUnit(unit); err != nil {
		return 0, err
	}
	return snap(x, unit, roundUp), nil
}

// SnapVector applies [SnapScalar] to every axis of v.
func SnapVector(v Vec3, unit float64, roundUp bool) (Vec3, error) {
	if err := errors.ValidateGridUnit(unit); err != nil {
		return Vec3{}, err
	}
	return Vec3{
		X: snap(v.X, unit, roundUp),
		Y: snap(v.Y, unit, roundUp),
		Z: snap(v.Z, unit, roundUp),
	}, nil
}

// gridTolerance is the relative distance, in cells, within which a value
// counts as a multiple of the unit.
const gridTolerance = 1e-9

// cellsOf returns x/unit and the nearest integer to it, and reports whether
// the two agree within gridTolerance.
func cellsOf(x, unit float64) (q, k float64, on bool) {
	q = x / unit
	k = math.Round(q)
	return q, k, math.Abs(q-k) <= gridTolerance*math.Max(1, math.Abs(q))
}

// snap assumes unit has already been validated.
func snap(x, unit float64, roundUp bool) float64 {
	q, _, on := cellsOf(x, unit)
	if on {
		return x
	}
	x = math.Floor(q) * unit
	if roundUp {
		x += unit
	}
	return x
}

// Cells returns how many grid units fit in extent, rounded to the nearest
// whole cell. extent is expected to be a difference of grid positions.
func Cells(extent, unit float64) float64 {
	_, k, _ := cellsOf(extent, unit)
	return k
}

// OnGrid reports whether x is a multiple of unit, up to rounding error.
func OnGrid(x, unit float64) bool {
	_, _, on := cellsOf(x, unit)
	return on
}

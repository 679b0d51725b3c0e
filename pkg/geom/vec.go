package geom

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/matzehuels/gridtree/pkg/errors"
)

// Vec3 is a point or corner in world space.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// V is shorthand for constructing a Vec3.
func V(x, y, z float64) Vec3 { return Vec3{X: x, Y: y, Z: z} }

// Sub returns v - o.
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{X: v.X - o.X, Y: v.Y - o.Y, Z: v.Z - o.Z}
}

// Flat returns v projected onto the z = 0 plane.
func (v Vec3) Flat() Vec3 {
	return Vec3{X: v.X, Y: v.Y}
}

// IsFinite reports whether no component of v is NaN or infinite.
func (v Vec3) IsFinite() bool {
	return finite(v.X) && finite(v.Y) && finite(v.Z)
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

func (v Vec3) String() string {
	return fmt.Sprintf("(%g, %g, %g)", v.X, v.Y, v.Z)
}

// Bounds returns the per-axis minimum and maximum over markers.
// It fails with EMPTY_INPUT when markers is empty, since neither extreme is
// defined over an empty set, and with INVALID_ARGUMENT when a coordinate is
// NaN or infinite.
func Bounds(markers []Vec3) (lo, hi Vec3, err error) {
	if len(markers) == 0 {
		return Vec3{}, Vec3{}, errors.New(errors.ErrCodeEmptyInput, "cannot compute bounds of an empty marker set")
	}

	if err := CheckFinite(markers); err != nil {
		return Vec3{}, Vec3{}, err
	}

	xs := make([]float64, len(markers))
	ys := make([]float64, len(markers))
	zs := make([]float64, len(markers))
	for i, m := range markers {
		xs[i], ys[i], zs[i] = m.X, m.Y, m.Z
	}

	lo = Vec3{X: floats.Min(xs), Y: floats.Min(ys), Z: floats.Min(zs)}
	hi = Vec3{X: floats.Max(xs), Y: floats.Max(ys), Z: floats.Max(zs)}
	return lo, hi, nil
}

// CheckFinite fails with INVALID_ARGUMENT naming the first marker with a NaN
// or infinite coordinate.
func CheckFinite(markers []Vec3) error {
	for i, m := range markers {
		if !m.IsFinite() {
			return errors.New(errors.ErrCodeInvalidArgument, "marker %d %v is not finite", i, m)
		}
	}
	return nil
}

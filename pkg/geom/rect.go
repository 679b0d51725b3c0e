package geom

import (
	"fmt"

	"github.com/matzehuels/gridtree/pkg/errors"
)

// PointInBounds reports whether p lies inside the box spanned by bl and ur.
// All comparisons are inclusive. The z axis is only tested when ignoreZ is
// false.
func PointInBounds(p, bl, ur Vec3, ignoreZ bool) bool {
	if p.X < bl.X || p.Y < bl.Y {
		return false
	}
	if p.X > ur.X || p.Y > ur.Y {
		return false
	}
	if !ignoreZ {
		if p.Z < bl.Z || p.Z > ur.Z {
			return false
		}
	}
	return true
}

// Rect is an axis-aligned rectangle on the horizontal plane. Min is the
// bottom-left corner and Max the top-right; both have Z == 0.
type Rect struct {
	Min Vec3 `json:"min"`
	Max Vec3 `json:"max"`
}

// NewRect builds a rectangle from two corners, discarding their z
// components. It fails with INVALID_ARGUMENT if min exceeds max on x or y.
func NewRect(min, max Vec3) (Rect, error) {
	if min.X > max.X || min.Y > max.Y {
		return Rect{}, errors.New(errors.ErrCodeInvalidArgument, "malformed rectangle: min %v exceeds max %v", min, max)
	}
	return Rect{Min: min.Flat(), Max: max.Flat()}, nil
}

// Width is the x extent.
func (r Rect) Width() float64 { return r.Max.X - r.Min.X }

// Depth is the y extent.
func (r Rect) Depth() float64 { return r.Max.Y - r.Min.Y }

// Contains is the 2D inclusive occupancy test used by the builder.
func (r Rect) Contains(p Vec3) bool {
	return PointInBounds(p, r.Min, r.Max, true)
}

// ContainsAny reports whether at least one point lies inside r.
func (r Rect) ContainsAny(points []Vec3) bool {
	for _, p := range points {
		if r.Contains(p) {
			return true
		}
	}
	return false
}

// Count returns how many points lie inside r.
func (r Rect) Count(points []Vec3) int {
	n := 0
	for _, p := range points {
		if r.Contains(p) {
			n++
		}
	}
	return n
}

func (r Rect) String() string {
	return fmt.Sprintf("[%g,%g]-[%g,%g]", r.Min.X, r.Min.Y, r.Max.X, r.Max.Y)
}

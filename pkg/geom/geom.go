// Package geom provides the geometric primitives shared by the brush
// kernel: planes, segments, polygons and the tolerant predicates used to
// classify and match them. Vectors, boxes and matrices come from sdfx.
package geom

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Tolerances used throughout the kernel. They are tunable constants, not
// literals buried in the algorithms.
const (
	// PointEpsilon is the distance within which a point is considered to lie
	// on a plane, and within which two vertices are merged.
	PointEpsilon = 1e-4

	// NormalEpsilon is the component tolerance for matching two unit normals.
	NormalEpsilon = 1e-4

	// HandleEpsilon is the tolerance used to re-identify vertices and edges
	// by position across successive edits.
	HandleEpsilon = 0.1

	// VolumeEpsilon is the smallest volume accepted for a solid.
	VolumeEpsilon = 1e-6
)

// PointStatus classifies a point against a plane.
type PointStatus int

const (
	PointBelow  PointStatus = iota // behind the plane (inside the half-space)
	PointInside                    // on the plane within tolerance
	PointAbove                     // in front of the plane
)

func (s PointStatus) String() string {
	switch s {
	case PointBelow:
		return "below"
	case PointInside:
		return "inside"
	case PointAbove:
		return "above"
	default:
		return "unknown"
	}
}

// Near reports whether two points are within eps of each other.
func Near(a, b v3.Vec, eps float64) bool {
	return a.Sub(b).Length() <= eps
}

// NearComponents reports whether every component of a and b differs by at
// most eps.
func NearComponents(a, b v3.Vec, eps float64) bool {
	return math.Abs(a.X-b.X) <= eps && math.Abs(a.Y-b.Y) <= eps && math.Abs(a.Z-b.Z) <= eps
}

// IsZero reports whether v is the zero vector within eps.
func IsZero(v v3.Vec, eps float64) bool {
	return math.Abs(v.X) <= eps && math.Abs(v.Y) <= eps && math.Abs(v.Z) <= eps
}

// Normalize returns v scaled to unit length and false if v is too short to
// have a direction.
func Normalize(v v3.Vec) (v3.Vec, bool) {
	l := v.Length()
	if l < 1e-12 {
		return v3.Vec{}, false
	}
	return v.DivScalar(l), true
}

// Lerp interpolates between a and b.
func Lerp(a, b v3.Vec, t float64) v3.Vec {
	return a.Add(b.Sub(a).MulScalar(t))
}

// Component returns the coordinate of v along axis (0=X, 1=Y, 2=Z).
func Component(v v3.Vec, axis int) float64 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

// WithComponent returns v with the coordinate along axis replaced.
func WithComponent(v v3.Vec, axis int, value float64) v3.Vec {
	switch axis {
	case 0:
		v.X = value
	case 1:
		v.Y = value
	default:
		v.Z = value
	}
	return v
}

// AxisVector returns the unit vector along axis.
func AxisVector(axis int) v3.Vec {
	return WithComponent(v3.Vec{}, axis, 1)
}

// MajorAxis returns the index of the largest absolute component of v.
func MajorAxis(v v3.Vec) int {
	ax, ay, az := math.Abs(v.X), math.Abs(v.Y), math.Abs(v.Z)
	switch {
	case ax >= ay && ax >= az:
		return 0
	case ay >= az:
		return 1
	default:
		return 2
	}
}

// Basis returns two unit vectors u and v such that (u, v, n) is a
// right-handed orthonormal frame. n must be a unit vector.
func Basis(n v3.Vec) (u, v v3.Vec) {
	ref := v3.Vec{X: 1}
	if math.Abs(n.X) > 0.9 {
		ref = v3.Vec{Y: 1}
	}
	u = ref.Sub(n.MulScalar(ref.Dot(n))).Normalize()
	v = n.Cross(u)
	return u, v
}

// ---------------------------------------------------------------------------
// Boxes
// ---------------------------------------------------------------------------

// BoxOf returns the bounding box of the given points.
func BoxOf(points []v3.Vec) sdf.Box3 {
	if len(points) == 0 {
		return sdf.Box3{}
	}
	b := sdf.Box3{Min: points[0], Max: points[0]}
	for _, p := range points[1:] {
		b.Min = b.Min.Min(p)
		b.Max = b.Max.Max(p)
	}
	return b
}

// BoxUnion returns the smallest box containing a and b.
func BoxUnion(a, b sdf.Box3) sdf.Box3 {
	return sdf.Box3{Min: a.Min.Min(b.Min), Max: a.Max.Max(b.Max)}
}

// BoxContains reports whether inner lies inside outer, allowing eps of slack.
func BoxContains(outer, inner sdf.Box3, eps float64) bool {
	return inner.Min.X >= outer.Min.X-eps && inner.Min.Y >= outer.Min.Y-eps && inner.Min.Z >= outer.Min.Z-eps &&
		inner.Max.X <= outer.Max.X+eps && inner.Max.Y <= outer.Max.Y+eps && inner.Max.Z <= outer.Max.Z+eps
}

// BoxContainsPoint reports whether p lies inside b, allowing eps of slack.
func BoxContainsPoint(b sdf.Box3, p v3.Vec, eps float64) bool {
	return BoxContains(b, sdf.Box3{Min: p, Max: p}, eps)
}

// BoxEquals reports whether two boxes match within eps.
func BoxEquals(a, b sdf.Box3, eps float64) bool {
	return NearComponents(a.Min, b.Min, eps) && NearComponents(a.Max, b.Max, eps)
}

// BoxValid reports whether b has a strictly positive extent on every axis.
func BoxValid(b sdf.Box3) bool {
	return b.Max.X > b.Min.X && b.Max.Y > b.Min.Y && b.Max.Z > b.Min.Z
}

// BoxCorners returns the eight corners of b.
func BoxCorners(b sdf.Box3) [8]v3.Vec {
	return [8]v3.Vec{
		{X: b.Min.X, Y: b.Min.Y, Z: b.Min.Z},
		{X: b.Max.X, Y: b.Min.Y, Z: b.Min.Z},
		{X: b.Max.X, Y: b.Max.Y, Z: b.Min.Z},
		{X: b.Min.X, Y: b.Max.Y, Z: b.Min.Z},
		{X: b.Min.X, Y: b.Min.Y, Z: b.Max.Z},
		{X: b.Max.X, Y: b.Min.Y, Z: b.Max.Z},
		{X: b.Max.X, Y: b.Max.Y, Z: b.Max.Z},
		{X: b.Min.X, Y: b.Max.Y, Z: b.Max.Z},
	}
}

package geom

import (
	"fmt"
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Plane is the set of points p with Normal·p = Distance. Normal is a unit
// vector pointing out of the half-space the plane bounds.
type Plane struct {
	Normal   v3.Vec
	Distance float64
}

// NewPlane returns the plane through point with the given normal. The
// normal is normalized; a zero normal yields false.
func NewPlane(normal, point v3.Vec) (Plane, bool) {
	n, ok := Normalize(normal)
	if !ok {
		return Plane{}, false
	}
	return Plane{Normal: n, Distance: n.Dot(point)}, true
}

// PlaneFromPoints returns the plane through a, b and c whose normal follows
// the right-hand rule for the order a, b, c. Collinear points yield false.
func PlaneFromPoints(a, b, c v3.Vec) (Plane, bool) {
	return NewPlane(b.Sub(a).Cross(c.Sub(a)), a)
}

// AxisPlane returns the axis-aligned plane with outward normal +axis or
// -axis at the given coordinate.
func AxisPlane(axis int, positive bool, coord float64) Plane {
	n := AxisVector(axis)
	if !positive {
		return Plane{Normal: n.Neg(), Distance: -coord}
	}
	return Plane{Normal: n, Distance: coord}
}

// BoxPlanes returns the six outward facing planes bounding b in the order
// -X, +X, -Y, +Y, -Z, +Z.
func BoxPlanes(b sdf.Box3) [6]Plane {
	return [6]Plane{
		AxisPlane(0, false, b.Min.X),
		AxisPlane(0, true, b.Max.X),
		AxisPlane(1, false, b.Min.Y),
		AxisPlane(1, true, b.Max.Y),
		AxisPlane(2, false, b.Min.Z),
		AxisPlane(2, true, b.Max.Z),
	}
}

// SignedDistance returns the distance of p in front of the plane.
func (p Plane) SignedDistance(q v3.Vec) float64 {
	return p.Normal.Dot(q) - p.Distance
}

// Classify returns the status of q relative to the plane.
func (p Plane) Classify(q v3.Vec, eps float64) PointStatus {
	d := p.SignedDistance(q)
	switch {
	case d > eps:
		return PointAbove
	case d < -eps:
		return PointBelow
	default:
		return PointInside
	}
}

// Anchor returns the point of the plane closest to the origin.
func (p Plane) Anchor() v3.Vec {
	return p.Normal.MulScalar(p.Distance)
}

// Project returns the orthogonal projection of q onto the plane.
func (p Plane) Project(q v3.Vec) v3.Vec {
	return q.Sub(p.Normal.MulScalar(p.SignedDistance(q)))
}

// Translate returns the plane moved along its normal by offset.
func (p Plane) Translate(offset float64) Plane {
	return Plane{Normal: p.Normal, Distance: p.Distance + offset}
}

// Equals reports whether two planes coincide, including orientation.
func (p Plane) Equals(o Plane, eps float64) bool {
	return NearComponents(p.Normal, o.Normal, NormalEpsilon) && math.Abs(p.Distance-o.Distance) <= eps
}

// IntersectSegment returns the point where the segment a-b crosses the
// plane. It reports false if the segment is parallel to the plane.
func (p Plane) IntersectSegment(a, b v3.Vec) (v3.Vec, bool) {
	da := p.SignedDistance(a)
	db := p.SignedDistance(b)
	if math.Abs(da-db) < 1e-12 {
		return v3.Vec{}, false
	}
	t := da / (da - db)
	return Lerp(a, b, t), true
}

func (p Plane) String() string {
	return fmt.Sprintf("(%.4g %.4g %.4g) %.4g", p.Normal.X, p.Normal.Y, p.Normal.Z, p.Distance)
}

// ---------------------------------------------------------------------------
// Segments
// ---------------------------------------------------------------------------

// Segment is an undirected line segment. It is the handle callers use to
// address an edge.
type Segment struct {
	Start v3.Vec
	End   v3.Vec
}

// Seg is shorthand for building a Segment.
func Seg(start, end v3.Vec) Segment {
	return Segment{Start: start, End: end}
}

// Midpoint returns the center of the segment.
func (s Segment) Midpoint() v3.Vec {
	return s.Start.Add(s.End).MulScalar(0.5)
}

// Length returns the length of the segment.
func (s Segment) Length() float64 {
	return s.End.Sub(s.Start).Length()
}

// Direction returns the unit vector from Start to End.
func (s Segment) Direction() v3.Vec {
	d, _ := Normalize(s.End.Sub(s.Start))
	return d
}

// Reverse swaps the endpoints.
func (s Segment) Reverse() Segment {
	return Segment{Start: s.End, End: s.Start}
}

// Equals reports whether two segments share both endpoints within eps, in
// either order.
func (s Segment) Equals(o Segment, eps float64) bool {
	return (Near(s.Start, o.Start, eps) && Near(s.End, o.End, eps)) ||
		(Near(s.Start, o.End, eps) && Near(s.End, o.Start, eps))
}

// ClosestPoint returns the point on the segment closest to p.
func (s Segment) ClosestPoint(p v3.Vec) v3.Vec {
	d := s.End.Sub(s.Start)
	l2 := d.Dot(d)
	if l2 < 1e-24 {
		return s.Start
	}
	t := math.Max(0, math.Min(1, p.Sub(s.Start).Dot(d)/l2))
	return s.Start.Add(d.MulScalar(t))
}

// Distance returns the distance from p to the segment.
func (s Segment) Distance(p v3.Vec) float64 {
	return p.Sub(s.ClosestPoint(p)).Length()
}

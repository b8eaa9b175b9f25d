package geom

import (
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Polygon is an ordered planar loop of points, counter-clockwise when seen
// from the side its normal points to.
type Polygon []v3.Vec

// Centroid returns the average of the polygon's vertices.
func (p Polygon) Centroid() v3.Vec {
	var c v3.Vec
	if len(p) == 0 {
		return c
	}
	for _, q := range p {
		c = c.Add(q)
	}
	return c.DivScalar(float64(len(p)))
}

// AreaVector returns the Newell vector of the loop: its direction is the
// loop normal and its length is twice the enclosed area.
func (p Polygon) AreaVector() v3.Vec {
	var n v3.Vec
	for i := range p {
		a := p[i]
		b := p[(i+1)%len(p)]
		n.X += (a.Y - b.Y) * (a.Z + b.Z)
		n.Y += (a.Z - b.Z) * (a.X + b.X)
		n.Z += (a.X - b.X) * (a.Y + b.Y)
	}
	return n
}

// Normal returns the unit normal of the loop by Newell's method.
func (p Polygon) Normal() (v3.Vec, bool) {
	return Normalize(p.AreaVector())
}

// Area returns the enclosed area.
func (p Polygon) Area() float64 {
	return p.AreaVector().Length() / 2
}

// Plane returns the supporting plane of the loop.
func (p Polygon) Plane() (Plane, bool) {
	n, ok := p.Normal()
	if !ok || len(p) < 3 {
		return Plane{}, false
	}
	return Plane{Normal: n, Distance: n.Dot(p.Centroid())}, true
}

// Bounds returns the bounding box of the loop.
func (p Polygon) Bounds() sdf.Box3 {
	return BoxOf(p)
}

// Reverse returns the loop in the opposite winding.
func (p Polygon) Reverse() Polygon {
	r := make(Polygon, len(p))
	for i, q := range p {
		r[len(p)-1-i] = q
	}
	return r
}

package polyhedron

import (
	"math"

	"github.com/chazu/brushwork/pkg/geom"
	"github.com/chazu/brushwork/pkg/kernel"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Determinant returns the determinant of the linear part of m.
func Determinant(m sdf.M44) float64 {
	o := m.MulPosition(v3.Vec{})
	x := m.MulPosition(v3.Vec{X: 1}).Sub(o)
	y := m.MulPosition(v3.Vec{Y: 1}).Sub(o)
	z := m.MulPosition(v3.Vec{Z: 1}).Sub(o)
	return x.Dot(y.Cross(z))
}

// Transform applies the affine matrix m to every vertex. Face planes are
// re-derived from the transformed loops, so non-uniform scales and shears
// keep correct normals. A mirroring matrix reverses every loop to keep the
// outward winding. Singular matrices fail with kernel.ErrDegenerateGeometry.
// Vertex indices are preserved.
func (p *Polyhedron) Transform(m sdf.M44) (*Polyhedron, error) {
	det := Determinant(m)
	if math.Abs(det) < 1e-12 {
		return nil, kernel.Errorf(kernel.ErrDegenerateGeometry, "singular transform")
	}
	verts := make([]v3.Vec, len(p.vertices))
	for i, v := range p.vertices {
		verts[i] = m.MulPosition(v)
	}
	faces := make([]Face, len(p.faces))
	for i, f := range p.faces {
		loop := append([]int(nil), f.Loop...)
		if det < 0 {
			for a, b := 0, len(loop)-1; a < b; a, b = a+1, b-1 {
				loop[a], loop[b] = loop[b], loop[a]
			}
		}
		poly := make(geom.Polygon, len(loop))
		for j, v := range loop {
			poly[j] = verts[v]
		}
		plane, ok := poly.Plane()
		if !ok {
			return nil, kernel.Errorf(kernel.ErrDegenerateGeometry, "face %d collapsed", i)
		}
		faces[i] = Face{Plane: snapPlane(plane), Loop: loop, Tag: f.Tag}
	}
	return build(verts, faces)
}

// snapPlane rounds away floating point noise from axis-aligned normals so
// boxes stay exactly axis-aligned after rotations by multiples of 90°.
func snapPlane(pl geom.Plane) geom.Plane {
	axis := geom.MajorAxis(pl.Normal)
	if math.Abs(math.Abs(geom.Component(pl.Normal, axis))-1) > 1e-12 {
		return pl
	}
	n := geom.AxisVector(axis)
	if geom.Component(pl.Normal, axis) < 0 {
		n = n.Neg()
	}
	return geom.Plane{Normal: n, Distance: pl.Distance}
}

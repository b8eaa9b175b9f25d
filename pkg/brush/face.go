package brush

import (
	"fmt"
	"math"

	"github.com/chazu/brushwork/pkg/geom"
	"github.com/chazu/brushwork/pkg/kernel"
	"github.com/chazu/brushwork/pkg/polyhedron"
	"github.com/chazu/brushwork/pkg/result"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// ScaleFace scales the polygon of the face with the given outward normal
// about its centroid: each vertex v moves to c + (v - c) * scale. The face
// plane stays put and the adjoining faces follow the moved vertices. The
// edit is rejected with kernel.ErrDegenerateGeometry if scale is not
// positive or if any vertex would stop being a corner of the solid. With
// lockTextures the tilted adjoining faces keep their texels where the face
// was not moved.
func (b *Brush) ScaleFace(worldBounds sdf.Box3, normal v3.Vec, scale float64, lockTextures bool) result.Result[*Brush] {
	if scale <= geom.PointEpsilon {
		return result.Fail[*Brush](kernel.Errorf(kernel.ErrDegenerateGeometry, "face scale %g", scale))
	}
	fi, ok := b.poly.FindFace(normal)
	if !ok {
		return result.Fail[*Brush](kernel.Errorf(kernel.ErrHandleNotFound, "face with normal %v", normal))
	}
	face := b.poly.Face(fi)
	c := b.poly.FacePolygon(fi).Centroid()
	points := b.poly.Vertices()
	for _, v := range face.Loop {
		points[v] = c.Add(points[v].Sub(c).MulScalar(scale))
	}
	q, err := polyhedron.FromPointsWithHints(points, b.poly.Faces())
	if err != nil {
		return result.Fail[*Brush](err)
	}
	attrs := b.attrs
	if lockTextures {
		attrs = b.relocked(q)
	}
	return b.derive(worldBounds, q, attrs, Attributes{}).Then(func(nb *Brush) result.Result[*Brush] {
		for _, p := range points {
			if _, ok := nb.poly.FindVertex(p, geom.PointEpsilon); !ok {
				return result.Fail[*Brush](kernel.Errorf(kernel.ErrDegenerateGeometry, "vertex %v would not remain a corner", p))
			}
		}
		if nb.VertexCount() != len(points) {
			return result.Fail[*Brush](kernel.Errorf(kernel.ErrDegenerateGeometry, "face scale changes the vertex count"))
		}
		return result.Ok(nb)
	})
}

// InsetFace scales the face with the given outward normal toward its
// centroid as an interactive drag would: anchor is the point grabbed on the
// face, and signedDistance is how far it is dragged toward the centroid
// (negative drags outward). The scale is the ratio of the new to the old
// in-plane distance between centroid and anchor.
func (b *Brush) InsetFace(worldBounds sdf.Box3, normal, anchor v3.Vec, signedDistance float64, lockTextures bool) result.Result[*Brush] {
	fi, ok := b.poly.FindFace(normal)
	if !ok {
		return result.Fail[*Brush](kernel.Errorf(kernel.ErrHandleNotFound, "face with normal %v", normal))
	}
	plane := b.poly.Face(fi).Plane
	c := b.poly.FacePolygon(fi).Centroid()
	r := plane.Project(anchor).Sub(c).Length()
	if r <= geom.PointEpsilon {
		return result.Fail[*Brush](kernel.Errorf(kernel.ErrDegenerateGeometry, "inset anchor on the face centroid"))
	}
	scale := (r - signedDistance) / r
	res := b.ScaleFace(worldBounds, plane.Normal, scale, lockTextures)
	if !res.IsOk() {
		return result.Fail[*Brush](fmt.Errorf("inset by %g: %w", signedDistance, res.Err()))
	}
	return res
}

// relocked returns attributes indexed like b's faces for the reshaped solid
// q. Each face whose plane tilted is rotated onto its new plane and shifted
// so the texel at one of its unmoved vertices stays put.
func (b *Brush) relocked(q *polyhedron.Polyhedron) []Attributes {
	attrs := append([]Attributes(nil), b.attrs...)
	for i := range q.FaceCount() {
		f := q.Face(i)
		if f.Tag < 0 || f.Tag >= len(attrs) {
			continue
		}
		old := b.poly.Face(f.Tag).Plane
		if geom.NearComponents(old.Normal, f.Plane.Normal, geom.NormalEpsilon) {
			continue
		}
		anchor, ok := unmoved(q.FacePolygon(i), old)
		if !ok {
			continue
		}
		attrs[f.Tag] = b.attrs[f.Tag].locked(b.format, rotationBetween(old.Normal, f.Plane.Normal),
			old.Normal, anchor, f.Plane.Normal, anchor)
	}
	return attrs
}

// unmoved returns a point of poly lying on the plane old.
func unmoved(poly geom.Polygon, old geom.Plane) (v3.Vec, bool) {
	for _, p := range poly {
		if math.Abs(old.SignedDistance(p)) <= geom.PointEpsilon {
			return p, true
		}
	}
	return v3.Vec{}, false
}

// rotationBetween returns the rotation about the origin turning unit vector
// a onto unit vector b.
func rotationBetween(a, b v3.Vec) sdf.M44 {
	axis, ok := geom.Normalize(a.Cross(b))
	if !ok {
		return sdf.Identity3d()
	}
	return sdf.Rotate3d(axis, math.Acos(math.Max(-1, math.Min(1, a.Dot(b)))))
}

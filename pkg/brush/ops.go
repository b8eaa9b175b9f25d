package brush

import (
	"errors"
	"fmt"

	"github.com/chazu/brushwork/pkg/geom"
	"github.com/chazu/brushwork/pkg/kernel"
	"github.com/chazu/brushwork/pkg/polyhedron"
	"github.com/chazu/brushwork/pkg/result"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Transform applies the affine matrix m. Face planes are re-derived from
// the transformed vertices. With lockTextures the texture offsets (and, in
// the Valve format, the axes) follow the faces so the material stays fixed
// to the brush; otherwise attributes are carried through unchanged.
func (b *Brush) Transform(worldBounds sdf.Box3, m sdf.M44, lockTextures bool) result.Result[*Brush] {
	q, err := b.poly.Transform(m)
	if err != nil {
		return result.Fail[*Brush](fmt.Errorf("transform: %w", err))
	}
	attrs := b.attrs
	if lockTextures {
		attrs = make([]Attributes, len(b.attrs))
		for i, a := range b.attrs {
			from := b.poly.Face(i)
			to := q.Face(i)
			attrs[i] = a.locked(b.format, m,
				from.Plane.Normal, b.poly.FacePolygon(i).Centroid(),
				to.Plane.Normal, q.FacePolygon(i).Centroid())
		}
	}
	return b.derive(worldBounds, q, attrs, Attributes{})
}

// Translate moves the brush by delta.
func (b *Brush) Translate(worldBounds sdf.Box3, delta v3.Vec, lockTextures bool) result.Result[*Brush] {
	return b.Transform(worldBounds, sdf.Translate3d(delta), lockTextures)
}

// Mirror reflects the brush across the plane through origin perpendicular
// to axis (0=X, 1=Y, 2=Z).
func (b *Brush) Mirror(worldBounds sdf.Box3, axis int, origin v3.Vec, lockTextures bool) result.Result[*Brush] {
	return b.Transform(worldBounds, MirrorMatrix(axis, origin), lockTextures)
}

// MirrorMatrix returns the reflection across the plane through origin
// perpendicular to axis.
func MirrorMatrix(axis int, origin v3.Vec) sdf.M44 {
	s := geom.WithComponent(v3.Vec{X: 1, Y: 1, Z: 1}, axis, -1)
	return sdf.Translate3d(origin).Mul(sdf.Scale3d(s)).Mul(sdf.Translate3d(origin.Neg()))
}

// Clip keeps the part of the brush behind plane. The new face gets attrs.
// A plane missing the brush leaves it unchanged; a plane excluding it
// fails with kernel.ErrEmptyResult.
func (b *Brush) Clip(worldBounds sdf.Box3, plane geom.Plane, attrs Attributes) result.Result[*Brush] {
	tag := len(b.attrs)
	q, _, err := b.poly.ClipTagged(plane, tag)
	if err != nil {
		return result.Fail[*Brush](fmt.Errorf("clip: %w", err))
	}
	all := append(append([]Attributes(nil), b.attrs...), attrs.withAxes(b.format, plane.Normal))
	return b.derive(worldBounds, q, all, attrs)
}

// ClipAll applies Clip for every plane in turn, failing as a whole.
func (b *Brush) ClipAll(worldBounds sdf.Box3, planes []geom.Plane, attrs Attributes) result.Result[*Brush] {
	r := result.Ok(b)
	for _, pl := range planes {
		r = r.Then(func(cur *Brush) result.Result[*Brush] {
			return cur.Clip(worldBounds, pl, attrs)
		})
	}
	return r
}

// rehull rebuilds the brush as the hull of points. Faces keep the
// attributes of the old face with the same plane, or of the old face
// facing the most similar way.
func (b *Brush) rehull(worldBounds sdf.Box3, points []v3.Vec) result.Result[*Brush] {
	q, err := polyhedron.FromPointsWithHints(points, b.poly.Faces())
	if err != nil {
		return result.Fail[*Brush](err)
	}
	return b.derive(worldBounds, q, b.attrs, Attributes{})
}

// asDegenerate reports an empty clip inside a local edit as degenerate
// geometry: the edit would leave no volume.
func asDegenerate(err error) error {
	if errors.Is(err, kernel.ErrEmptyResult) {
		return kernel.Errorf(kernel.ErrDegenerateGeometry, "%v", err)
	}
	return err
}

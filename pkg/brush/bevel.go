package brush

import (
	"fmt"

	"github.com/chazu/brushwork/pkg/geom"
	"github.com/chazu/brushwork/pkg/kernel"
	"github.com/chazu/brushwork/pkg/result"
	"github.com/deadsy/sdfx/sdf"
)

// BevelEdge replaces edge by a new face. The bevel plane's normal bisects
// the outward normals of the two faces at the edge, and the plane passes
// distance behind the edge along that normal; the side opposite the normal
// is kept. The new face inherits the attributes of the first face at the
// edge.
//
// The edge is matched against the current topology within
// geom.HandleEpsilon. A distance large enough to cut deep into the solid
// still succeeds; only a bevel leaving no volume fails, with
// kernel.ErrDegenerateGeometry, as does a non-positive distance.
func (b *Brush) BevelEdge(worldBounds sdf.Box3, edge geom.Segment, distance float64, lockTextures bool) result.Result[*Brush] {
	if distance <= 0 {
		return result.Fail[*Brush](kernel.Errorf(kernel.ErrDegenerateGeometry, "bevel distance %g", distance))
	}
	ei, ok := b.poly.FindEdge(edge, geom.HandleEpsilon)
	if !ok {
		return result.Fail[*Brush](kernel.Errorf(kernel.ErrHandleNotFound, "edge %v", edge))
	}
	return b.bevel(worldBounds, ei, distance, lockTextures)
}

func (b *Brush) bevel(worldBounds sdf.Box3, ei int, distance float64, lockTextures bool) result.Result[*Brush] {
	e := b.poly.Edge(ei)
	f0, f1 := b.poly.EdgeFaces(ei)
	n, ok := geom.Normalize(f0.Plane.Normal.Add(f1.Plane.Normal))
	if !ok {
		return result.Fail[*Brush](kernel.Errorf(kernel.ErrDegenerateGeometry, "edge faces are opposite"))
	}
	seg := b.poly.EdgeSegment(ei)
	plane, _ := geom.NewPlane(n, seg.Midpoint().Sub(n.MulScalar(distance)))

	tag := len(b.attrs)
	q, _, err := b.poly.ClipTagged(plane, tag)
	if err != nil {
		return result.Fail[*Brush](fmt.Errorf("bevel: %w", asDegenerate(err)))
	}

	inherited := b.attrs[e.Faces[0]]
	if lockTextures {
		// Keep the texel under the edge midpoint where it was on the
		// source face.
		mid := seg.Midpoint()
		want := inherited.TexCoords(b.format, f0.Plane.Normal, mid)
		inherited = inherited.withAxes(b.format, n)
		got := inherited.TexCoords(b.format, n, mid)
		inherited.Offset.X += want.X - got.X
		inherited.Offset.Y += want.Y - got.Y
	}
	all := append(append([]Attributes(nil), b.attrs...), inherited)
	return b.derive(worldBounds, q, all, inherited)
}

// BevelEdges bevels several edges one after another, re-identifying each
// edge against the brush produced by the previous bevel. An edge shortened
// by an earlier bevel is found as the remaining part of its segment; an
// edge removed entirely by an earlier bevel is skipped. Every edge must
// exist on the receiver, otherwise kernel.ErrHandleNotFound is returned
// and nothing is applied.
func (b *Brush) BevelEdges(worldBounds sdf.Box3, edges []geom.Segment, distance float64, lockTextures bool) result.Result[*Brush] {
	for _, edge := range edges {
		if !b.HasEdge(edge) {
			return result.Fail[*Brush](kernel.Errorf(kernel.ErrHandleNotFound, "edge %v", edge))
		}
	}
	if distance <= 0 {
		return result.Fail[*Brush](kernel.Errorf(kernel.ErrDegenerateGeometry, "bevel distance %g", distance))
	}
	cur := b
	for _, edge := range edges {
		ei, ok := cur.resolveEdge(edge)
		if !ok {
			continue
		}
		r := cur.bevel(worldBounds, ei, distance, lockTextures)
		if !r.IsOk() {
			return r
		}
		cur = r.MustGet()
	}
	return result.Ok(cur)
}

// resolveEdge finds edge exactly, or else the longest current edge lying
// on the original segment.
func (b *Brush) resolveEdge(edge geom.Segment) (int, bool) {
	if ei, ok := b.poly.FindEdge(edge, geom.HandleEpsilon); ok {
		return ei, true
	}
	best, bestLen := -1, geom.HandleEpsilon
	for i, s := range b.poly.Segments() {
		if edge.Distance(s.Start) > geom.HandleEpsilon || edge.Distance(s.End) > geom.HandleEpsilon {
			continue
		}
		if l := s.Length(); l > bestLen {
			best, bestLen = i, l
		}
	}
	return best, best >= 0
}

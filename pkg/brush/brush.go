// Package brush wraps a convex polyhedron with per-face material
// attributes and exposes the editing operations of the level editor:
// transform, clip, bevel, inset, vertex surgery and mirroring.
//
// A Brush is an immutable value. Every operation returns a
// result.Result holding a new Brush, or the reason the edit was rejected;
// the receiver is never modified.
package brush

import (
	"fmt"

	"github.com/chazu/brushwork/pkg/geom"
	"github.com/chazu/brushwork/pkg/kernel"
	"github.com/chazu/brushwork/pkg/polyhedron"
	"github.com/chazu/brushwork/pkg/result"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Brush is an attributed convex solid. Face i of the polyhedron carries tag
// i and the attributes attrs[i].
type Brush struct {
	poly        *polyhedron.Polyhedron
	attrs       []Attributes
	format      MapFormat
	worldBounds sdf.Box3
}

// Compile-time interface check.
var _ kernel.Solid = (*Brush)(nil)

// New wraps poly, giving every face the attributes returned by faceAttrs.
// The brush must lie inside worldBounds.
func New(format MapFormat, worldBounds sdf.Box3, poly *polyhedron.Polyhedron, faceAttrs func(polyhedron.Face) Attributes) result.Result[*Brush] {
	if poly == nil {
		return result.Fail[*Brush](kernel.Errorf(kernel.ErrDegenerateGeometry, "no geometry"))
	}
	if err := checkBounds(worldBounds, poly); err != nil {
		return result.Fail[*Brush](err)
	}
	attrs := make([]Attributes, poly.FaceCount())
	for i := range attrs {
		f := poly.Face(i)
		attrs[i] = faceAttrs(f).withAxes(format, f.Plane.Normal)
	}
	return result.Ok(&Brush{poly: poly.Sequential(), attrs: attrs, format: format, worldBounds: worldBounds})
}

// NewUniform wraps poly giving every face the same attributes.
func NewUniform(format MapFormat, worldBounds sdf.Box3, poly *polyhedron.Polyhedron, attrs Attributes) result.Result[*Brush] {
	return New(format, worldBounds, poly, func(polyhedron.Face) Attributes { return attrs })
}

// checkBounds rejects solids leaving worldBounds.
func checkBounds(worldBounds sdf.Box3, p *polyhedron.Polyhedron) error {
	if !geom.BoxContains(worldBounds, p.Bounds(), geom.PointEpsilon) {
		b := p.Bounds()
		return kernel.Errorf(kernel.ErrOutOfWorldBounds, "[%v %v] exceeds [%v %v]", b.Min, b.Max, worldBounds.Min, worldBounds.Max)
	}
	return nil
}

// derive builds the successor of b from q, whose face tags index into
// attrs. Faces tagged polyhedron.NoTag fall back to fallback.
func (b *Brush) derive(worldBounds sdf.Box3, q *polyhedron.Polyhedron, attrs []Attributes, fallback Attributes) result.Result[*Brush] {
	if err := checkBounds(worldBounds, q); err != nil {
		return result.Fail[*Brush](err)
	}
	out := make([]Attributes, q.FaceCount())
	for i := range out {
		f := q.Face(i)
		if f.Tag >= 0 && f.Tag < len(attrs) {
			out[i] = attrs[f.Tag]
		} else {
			out[i] = fallback.withAxes(b.format, f.Plane.Normal)
		}
	}
	return result.Ok(&Brush{poly: q.Sequential(), attrs: out, format: b.format, worldBounds: worldBounds})
}

// Polyhedron returns the underlying solid.
func (b *Brush) Polyhedron() *polyhedron.Polyhedron { return b.poly }

// Format returns the map format tag.
func (b *Brush) Format() MapFormat { return b.format }

// WorldBounds returns the bounds the brush was last validated against.
func (b *Brush) WorldBounds() sdf.Box3 { return b.worldBounds }

// VertexCount returns the number of vertices.
func (b *Brush) VertexCount() int { return b.poly.VertexCount() }

// EdgeCount returns the number of edges.
func (b *Brush) EdgeCount() int { return b.poly.EdgeCount() }

// FaceCount returns the number of faces.
func (b *Brush) FaceCount() int { return b.poly.FaceCount() }

// Bounds returns the axis-aligned bounding box.
func (b *Brush) Bounds() sdf.Box3 { return b.poly.Bounds() }

// Planes returns the face planes.
func (b *Brush) Planes() []geom.Plane { return b.poly.Planes() }

// Mesh returns a triangulation of the faces.
func (b *Brush) Mesh() *kernel.Mesh { return b.poly.Mesh() }

// Vertices returns the vertex positions.
func (b *Brush) Vertices() []v3.Vec { return b.poly.Vertices() }

// Edges returns every edge as a segment handle.
func (b *Brush) Edges() []geom.Segment { return b.poly.Segments() }

// Centroid returns the average vertex position.
func (b *Brush) Centroid() v3.Vec { return b.poly.Centroid() }

// Volume returns the enclosed volume.
func (b *Brush) Volume() float64 { return b.poly.Volume() }

// Face describes one face of a brush.
type Face struct {
	Plane      geom.Plane
	Polygon    geom.Polygon
	Attributes Attributes
}

// Face returns face i.
func (b *Brush) Face(i int) Face {
	return Face{Plane: b.poly.Face(i).Plane, Polygon: b.poly.FacePolygon(i), Attributes: b.attrs[i]}
}

// Faces returns every face.
func (b *Brush) Faces() []Face {
	out := make([]Face, b.FaceCount())
	for i := range out {
		out[i] = b.Face(i)
	}
	return out
}

// FaceAttributes returns the attributes of face i.
func (b *Brush) FaceAttributes(i int) Attributes { return b.attrs[i] }

// FindFace returns the face with the given outward normal.
func (b *Brush) FindFace(normal v3.Vec) (int, bool) {
	return b.poly.FindFace(normal)
}

// HasFace reports whether a face with the given outward normal exists.
func (b *Brush) HasFace(normal v3.Vec) bool {
	_, ok := b.poly.FindFace(normal)
	return ok
}

// HasEdge reports whether an edge matches edge within geom.HandleEpsilon.
func (b *Brush) HasEdge(edge geom.Segment) bool {
	_, ok := b.poly.FindEdge(edge, geom.HandleEpsilon)
	return ok
}

// HasVertex reports whether a vertex lies within geom.HandleEpsilon of pos.
func (b *Brush) HasVertex(pos v3.Vec) bool {
	_, ok := b.poly.FindVertex(pos, geom.HandleEpsilon)
	return ok
}

// FullySpecified reports whether every face has a material.
func (b *Brush) FullySpecified() bool {
	for _, a := range b.attrs {
		if a.Material == "" {
			return false
		}
	}
	return true
}

// FaceLoop returns every edge of the two faces adjacent to edge, the
// selection grown by the edge tool's loop command.
func (b *Brush) FaceLoop(edge geom.Segment) ([]geom.Segment, error) {
	ei, ok := b.poly.FindEdge(edge, geom.HandleEpsilon)
	if !ok {
		return nil, kernel.Errorf(kernel.ErrHandleNotFound, "edge %v", edge)
	}
	e := b.poly.Edge(ei)
	var out []geom.Segment
	seen := make(map[int]bool)
	for _, fi := range e.Faces {
		for i, other := range b.poly.Edges() {
			if seen[i] || (other.Faces[0] != fi && other.Faces[1] != fi) {
				continue
			}
			seen[i] = true
			out = append(out, b.poly.EdgeSegment(i))
		}
	}
	return out, nil
}

// WithFaceAttributes returns a copy with the attributes of face i replaced.
func (b *Brush) WithFaceAttributes(i int, attrs Attributes) *Brush {
	out := *b
	out.attrs = append([]Attributes(nil), b.attrs...)
	out.attrs[i] = attrs.withAxes(b.format, b.poly.Face(i).Plane.Normal)
	return &out
}

// WithMaterial returns a copy with every face set to material.
func (b *Brush) WithMaterial(material string) *Brush {
	out := *b
	out.attrs = append([]Attributes(nil), b.attrs...)
	for i := range out.attrs {
		out.attrs[i].Material = material
	}
	return &out
}

func (b *Brush) String() string {
	return fmt.Sprintf("brush(%s V=%d E=%d F=%d)", b.format, b.VertexCount(), b.EdgeCount(), b.FaceCount())
}

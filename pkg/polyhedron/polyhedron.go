// Package polyhedron implements the boundary representation of a convex
// solid: an immutable vertex/edge/face graph built from points or from
// half-spaces, with clipping, affine transformation and tolerant lookups.
//
// Every Polyhedron returned without error is a closed 2-manifold with
// planar convex faces wound counter-clockwise seen from outside, no two
// coplanar faces, at least three faces at every vertex, and positive
// volume. Operations never modify their receiver.
package polyhedron

import (
	"fmt"
	"math"

	"github.com/chazu/brushwork/pkg/geom"
	"github.com/chazu/brushwork/pkg/kernel"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// NoTag marks a face that carries no caller payload.
const NoTag = -1

// Face is a planar convex loop of vertex indices.
type Face struct {
	Plane geom.Plane
	// Loop lists vertex indices counter-clockwise seen from outside. It is
	// shared with the Polyhedron and must not be modified.
	Loop []int
	// Tag is an opaque caller payload carried through clips and hull
	// rebuilds, NoTag if unset.
	Tag int
}

// Edge connects two vertices and separates two faces. The edge runs from
// V[0] to V[1] in Faces[0] and the other way in Faces[1].
type Edge struct {
	V     [2]int
	Faces [2]int
}

// Polyhedron is a closed convex solid. The zero value is not usable; build
// one with FromPoints, FromPlanes or Box.
type Polyhedron struct {
	vertices []v3.Vec
	faces    []Face
	edges    []Edge
}

// VertexCount returns the number of vertices.
func (p *Polyhedron) VertexCount() int { return len(p.vertices) }

// EdgeCount returns the number of edges.
func (p *Polyhedron) EdgeCount() int { return len(p.edges) }

// FaceCount returns the number of faces.
func (p *Polyhedron) FaceCount() int { return len(p.faces) }

// Vertex returns the position of vertex i.
func (p *Polyhedron) Vertex(i int) v3.Vec { return p.vertices[i] }

// Vertices returns a copy of all vertex positions.
func (p *Polyhedron) Vertices() []v3.Vec {
	return append([]v3.Vec(nil), p.vertices...)
}

// Face returns face i.
func (p *Polyhedron) Face(i int) Face { return p.faces[i] }

// Faces returns a copy of the face list.
func (p *Polyhedron) Faces() []Face {
	return append([]Face(nil), p.faces...)
}

// Edge returns edge i.
func (p *Polyhedron) Edge(i int) Edge { return p.edges[i] }

// Edges returns a copy of the edge list.
func (p *Polyhedron) Edges() []Edge {
	return append([]Edge(nil), p.edges...)
}

// EdgeSegment returns edge i as a segment handle.
func (p *Polyhedron) EdgeSegment(i int) geom.Segment {
	e := p.edges[i]
	return geom.Seg(p.vertices[e.V[0]], p.vertices[e.V[1]])
}

// Segments returns every edge as a segment handle.
func (p *Polyhedron) Segments() []geom.Segment {
	out := make([]geom.Segment, len(p.edges))
	for i := range p.edges {
		out[i] = p.EdgeSegment(i)
	}
	return out
}

// FacePolygon returns the vertex positions of face i.
func (p *Polyhedron) FacePolygon(i int) geom.Polygon {
	loop := p.faces[i].Loop
	poly := make(geom.Polygon, len(loop))
	for j, v := range loop {
		poly[j] = p.vertices[v]
	}
	return poly
}

// Planes returns the supporting plane of every face.
func (p *Polyhedron) Planes() []geom.Plane {
	out := make([]geom.Plane, len(p.faces))
	for i, f := range p.faces {
		out[i] = f.Plane
	}
	return out
}

// VertexFaces returns the faces incident to vertex v.
func (p *Polyhedron) VertexFaces(v int) []int {
	var out []int
	for i, f := range p.faces {
		for _, w := range f.Loop {
			if w == v {
				out = append(out, i)
				break
			}
		}
	}
	return out
}

// VertexEdges returns the edges incident to vertex v.
func (p *Polyhedron) VertexEdges(v int) []int {
	var out []int
	for i, e := range p.edges {
		if e.V[0] == v || e.V[1] == v {
			out = append(out, i)
		}
	}
	return out
}

// Bounds returns the axis-aligned bounding box.
func (p *Polyhedron) Bounds() sdf.Box3 {
	return geom.BoxOf(p.vertices)
}

// Centroid returns the average of the vertex positions.
func (p *Polyhedron) Centroid() v3.Vec {
	return geom.Polygon(p.vertices).Centroid()
}

// Volume returns the enclosed volume, one third of the sum over faces of
// plane distance times face area.
func (p *Polyhedron) Volume() float64 {
	// Measure from the centroid so large offsets do not cancel.
	c := p.Centroid()
	var vol float64
	for i, f := range p.faces {
		vol += (f.Plane.Distance - f.Plane.Normal.Dot(c)) * p.FacePolygon(i).Area()
	}
	return vol / 3
}

// SurfaceArea returns the total face area.
func (p *Polyhedron) SurfaceArea() float64 {
	var area float64
	for i := range p.faces {
		area += p.FacePolygon(i).Area()
	}
	return area
}

// Contains reports whether q lies inside or on the solid.
func (p *Polyhedron) Contains(q v3.Vec) bool {
	for _, f := range p.faces {
		if f.Plane.SignedDistance(q) > geom.PointEpsilon {
			return false
		}
	}
	return true
}

// FindFace returns the face whose outward normal matches normal within
// geom.NormalEpsilon.
func (p *Polyhedron) FindFace(normal v3.Vec) (int, bool) {
	n, ok := geom.Normalize(normal)
	if !ok {
		return -1, false
	}
	best, bestDot := -1, -2.0
	for i, f := range p.faces {
		if !geom.NearComponents(f.Plane.Normal, n, geom.NormalEpsilon) {
			continue
		}
		if d := f.Plane.Normal.Dot(n); d > bestDot {
			best, bestDot = i, d
		}
	}
	return best, best >= 0
}

// FindEdge returns the edge whose endpoints match seg within eps, in either
// order. The closest match wins.
func (p *Polyhedron) FindEdge(seg geom.Segment, eps float64) (int, bool) {
	best, bestDist := -1, math.Inf(1)
	for i := range p.edges {
		s := p.EdgeSegment(i)
		if !s.Equals(seg, eps) {
			continue
		}
		d := math.Min(
			s.Start.Sub(seg.Start).Length()+s.End.Sub(seg.End).Length(),
			s.Start.Sub(seg.End).Length()+s.End.Sub(seg.Start).Length(),
		)
		if d < bestDist {
			best, bestDist = i, d
		}
	}
	return best, best >= 0
}

// FindVertex returns the vertex closest to pos within eps.
func (p *Polyhedron) FindVertex(pos v3.Vec, eps float64) (int, bool) {
	best, bestDist := -1, math.Inf(1)
	for i, v := range p.vertices {
		if d := v.Sub(pos).Length(); d <= eps && d < bestDist {
			best, bestDist = i, d
		}
	}
	return best, best >= 0
}

// EdgeFaces returns the two faces separated by edge i.
func (p *Polyhedron) EdgeFaces(i int) (Face, Face) {
	e := p.edges[i]
	return p.faces[e.Faces[0]], p.faces[e.Faces[1]]
}

// Retag returns a copy with the tag of face i replaced.
func (p *Polyhedron) Retag(i, tag int) *Polyhedron {
	faces := p.Faces()
	faces[i].Tag = tag
	return &Polyhedron{vertices: p.vertices, faces: faces, edges: p.edges}
}

// Sequential returns a copy in which face i carries tag i.
func (p *Polyhedron) Sequential() *Polyhedron {
	faces := p.Faces()
	for i := range faces {
		faces[i].Tag = i
	}
	return &Polyhedron{vertices: p.vertices, faces: faces, edges: p.edges}
}

// Mesh returns a fan triangulation of every face.
func (p *Polyhedron) Mesh() *kernel.Mesh {
	m := &kernel.Mesh{}
	for i, f := range p.faces {
		m.AddPolygon(p.FacePolygon(i), f.Plane.Normal)
	}
	return m
}

func (p *Polyhedron) String() string {
	b := p.Bounds()
	return fmt.Sprintf("polyhedron(V=%d E=%d F=%d bounds=[%v %v])",
		p.VertexCount(), p.EdgeCount(), p.FaceCount(), b.Min, b.Max)
}

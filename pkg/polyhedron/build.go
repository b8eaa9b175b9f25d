package polyhedron

import (
	"math"

	"github.com/chazu/brushwork/pkg/geom"
	"github.com/chazu/brushwork/pkg/kernel"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// validationEpsilon bounds how far a vertex may sit in front of any face
// plane, or off its own face plane, in a valid solid.
const validationEpsilon = 10 * geom.PointEpsilon

// build assembles a Polyhedron from a vertex pool and face loops. Vertices
// referenced by fewer than three faces are dropped from the loops, unused
// vertices are compacted away, and edges are derived from the loops.
func build(vertices []v3.Vec, faces []Face) (*Polyhedron, error) {
	faces = dropLowDegreeVertices(len(vertices), faces)

	// Compact in index order so surviving vertices keep their relative order.
	remap := make([]int, len(vertices))
	for i := range remap {
		remap[i] = -1
	}
	for _, f := range faces {
		for _, v := range f.Loop {
			remap[v] = 0
		}
	}
	var verts []v3.Vec
	for i, r := range remap {
		if r == 0 {
			remap[i] = len(verts)
			verts = append(verts, vertices[i])
		}
	}
	out := make([]Face, 0, len(faces))
	for _, f := range faces {
		loop := make([]int, len(f.Loop))
		for j, v := range f.Loop {
			loop[j] = remap[v]
		}
		out = append(out, Face{Plane: f.Plane, Loop: loop, Tag: f.Tag})
	}
	if len(out) < 4 || len(verts) < 4 {
		return nil, kernel.Errorf(kernel.ErrDegenerateGeometry, "%d faces, %d vertices", len(out), len(verts))
	}

	edges, err := deriveEdges(out)
	if err != nil {
		return nil, err
	}
	p := &Polyhedron{vertices: verts, faces: out, edges: edges}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// dropLowDegreeVertices removes vertices incident to fewer than three faces
// from every loop. Such a vertex lies on a straight edge between two faces.
func dropLowDegreeVertices(n int, faces []Face) []Face {
	for {
		degree := make([]int, n)
		for _, f := range faces {
			for _, v := range f.Loop {
				degree[v]++
			}
		}
		changed := false
		next := make([]Face, 0, len(faces))
		for _, f := range faces {
			loop := make([]int, 0, len(f.Loop))
			for _, v := range f.Loop {
				if degree[v] >= 3 {
					loop = append(loop, v)
				}
			}
			if len(loop) != len(f.Loop) {
				changed = true
			}
			if len(loop) >= 3 {
				next = append(next, Face{Plane: f.Plane, Loop: loop, Tag: f.Tag})
			} else {
				changed = true
			}
		}
		faces = next
		if !changed {
			return faces
		}
	}
}

// deriveEdges pairs up the directed loop edges. Each undirected edge must
// appear exactly twice, once in each direction.
func deriveEdges(faces []Face) ([]Edge, error) {
	index := make(map[[2]int]int)
	var edges []Edge
	for fi, f := range faces {
		for j, a := range f.Loop {
			b := f.Loop[(j+1)%len(f.Loop)]
			if a == b {
				return nil, kernel.Errorf(kernel.ErrDegenerateGeometry, "face %d repeats vertex %d", fi, a)
			}
			key := [2]int{min(a, b), max(a, b)}
			ei, ok := index[key]
			if !ok {
				index[key] = len(edges)
				edges = append(edges, Edge{V: [2]int{a, b}, Faces: [2]int{fi, -1}})
				continue
			}
			e := &edges[ei]
			if e.V[0] == a || e.Faces[1] >= 0 {
				return nil, kernel.Errorf(kernel.ErrDegenerateGeometry, "edge %d-%d is not manifold", a, b)
			}
			e.Faces[1] = fi
		}
	}
	for _, e := range edges {
		if e.Faces[1] < 0 {
			return nil, kernel.Errorf(kernel.ErrDegenerateGeometry, "edge %d-%d is open", e.V[0], e.V[1])
		}
	}
	return edges, nil
}

// Validate checks every structural and geometric invariant of the solid.
func (p *Polyhedron) Validate() error {
	v, e, f := p.VertexCount(), p.EdgeCount(), p.FaceCount()
	if v < 4 || f < 4 {
		return kernel.Errorf(kernel.ErrDegenerateGeometry, "only %d vertices and %d faces", v, f)
	}
	if v-e+f != 2 {
		return kernel.Errorf(kernel.ErrDegenerateGeometry, "euler characteristic V-E+F = %d", v-e+f)
	}
	for _, edge := range p.edges {
		if edge.Faces[0] == edge.Faces[1] || edge.Faces[1] < 0 {
			return kernel.Errorf(kernel.ErrDegenerateGeometry, "edge %d-%d is not shared by two faces", edge.V[0], edge.V[1])
		}
	}
	for i, face := range p.faces {
		if len(face.Loop) < 3 {
			return kernel.Errorf(kernel.ErrDegenerateGeometry, "face %d has %d vertices", i, len(face.Loop))
		}
		for _, vi := range face.Loop {
			if d := math.Abs(face.Plane.SignedDistance(p.vertices[vi])); d > validationEpsilon {
				return kernel.Errorf(kernel.ErrDegenerateGeometry, "face %d is not planar (%.3g)", i, d)
			}
		}
		n, ok := p.FacePolygon(i).Normal()
		if !ok || n.Dot(face.Plane.Normal) <= 0 {
			return kernel.Errorf(kernel.ErrDegenerateGeometry, "face %d winding disagrees with its plane", i)
		}
		for vi, q := range p.vertices {
			if d := face.Plane.SignedDistance(q); d > validationEpsilon {
				return kernel.Errorf(kernel.ErrDegenerateGeometry, "vertex %d is %.3g in front of face %d", vi, d, i)
			}
		}
		for j := i + 1; j < len(p.faces); j++ {
			if p.faces[j].Plane.Equals(face.Plane, validationEpsilon) {
				return kernel.Errorf(kernel.ErrDegenerateGeometry, "faces %d and %d are coplanar", i, j)
			}
		}
	}
	if vol := p.Volume(); vol <= geom.VolumeEpsilon {
		return kernel.Errorf(kernel.ErrDegenerateGeometry, "volume %.3g", vol)
	}
	return nil
}

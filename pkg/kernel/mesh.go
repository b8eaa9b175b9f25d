package kernel

import (
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Mesh is a triangle mesh suitable for rendering and export.
// All arrays are flat: vertices has 3 floats per vertex (x,y,z),
// normals has 3 floats per vertex, indices has 3 uint32s per triangle.
type Mesh struct {
	Vertices []float32 `json:"vertices"` // [x0,y0,z0, x1,y1,z1, ...]
	Normals  []float32 `json:"normals"`  // [nx0,ny0,nz0, ...]
	Indices  []uint32  `json:"indices"`  // [i0,i1,i2, ...] triangles
	Name     string    `json:"name"`     // scene node the mesh came from
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// AddPolygon appends a convex polygon as a triangle fan. Every vertex gets
// the polygon's normal so faces render flat.
func (m *Mesh) AddPolygon(loop []v3.Vec, normal v3.Vec) {
	if len(loop) < 3 {
		return
	}
	base := uint32(m.VertexCount())
	for _, p := range loop {
		m.Vertices = append(m.Vertices, float32(p.X), float32(p.Y), float32(p.Z))
		m.Normals = append(m.Normals, float32(normal.X), float32(normal.Y), float32(normal.Z))
	}
	for i := 1; i+1 < len(loop); i++ {
		m.Indices = append(m.Indices, base, base+uint32(i), base+uint32(i+1))
	}
}

// Append adds all geometry of o to m.
func (m *Mesh) Append(o *Mesh) {
	base := uint32(m.VertexCount())
	m.Vertices = append(m.Vertices, o.Vertices...)
	m.Normals = append(m.Normals, o.Normals...)
	for _, i := range o.Indices {
		m.Indices = append(m.Indices, base+i)
	}
}

// Triangles converts the mesh to sdfx triangles for the STL writer.
func (m *Mesh) Triangles() []*sdf.Triangle3 {
	vertex := func(i uint32) v3.Vec {
		return v3.Vec{
			X: float64(m.Vertices[3*i]),
			Y: float64(m.Vertices[3*i+1]),
			Z: float64(m.Vertices[3*i+2]),
		}
	}
	tris := make([]*sdf.Triangle3, 0, m.TriangleCount())
	for t := 0; t+2 < len(m.Indices); t += 3 {
		tris = append(tris, &sdf.Triangle3{
			vertex(m.Indices[t]),
			vertex(m.Indices[t+1]),
			vertex(m.Indices[t+2]),
		})
	}
	return tris
}

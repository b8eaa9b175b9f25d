// Package sdfx implements the kernel.Kernel interface using the
// github.com/deadsy/sdfx SDF-based CAD library. Convex solids become
// signed distance fields bounded by their planes, which sdfx can union and
// sample into preview meshes.
package sdfx

import (
	"math"

	"github.com/chazu/brushwork/pkg/geom"
	"github.com/chazu/brushwork/pkg/kernel"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Compile-time interface check.
var _ kernel.Kernel = (*SdfxKernel)(nil)

// defaultMeshCells controls marching cubes tessellation resolution.
const defaultMeshCells = 200

// halfSpaces evaluates a convex solid as the largest signed distance to
// any of its planes. The value is exact inside and a lower bound outside.
type halfSpaces struct {
	planes []geom.Plane
	bb     sdf.Box3
}

// Evaluate returns the signed distance bound at p, negative inside.
func (h *halfSpaces) Evaluate(p v3.Vec) float64 {
	d := math.Inf(-1)
	for _, pl := range h.planes {
		d = math.Max(d, pl.SignedDistance(p))
	}
	return d
}

// BoundingBox returns the axis-aligned bounding box.
func (h *halfSpaces) BoundingBox() sdf.Box3 {
	return h.bb
}

// sdfxSolid wraps an sdf.SDF3 built by the kernel to implement kernel.Solid.
type sdfxSolid struct {
	s     sdf.SDF3
	parts []kernel.Solid
}

// Bounds returns the axis-aligned bounding box.
func (s *sdfxSolid) Bounds() sdf.Box3 {
	return s.s.BoundingBox()
}

// Planes returns nil: a union is not an intersection of half-spaces.
func (s *sdfxSolid) Planes() []geom.Plane {
	return nil
}

// Mesh returns the exact meshes of the parts, concatenated.
func (s *sdfxSolid) Mesh() *kernel.Mesh {
	m := &kernel.Mesh{}
	for _, p := range s.parts {
		m.Append(p.Mesh())
	}
	return m
}

// SdfxKernel implements kernel.Kernel using sdfx.
type SdfxKernel struct {
	cells int
}

// New returns a new SdfxKernel.
func New() *SdfxKernel {
	return &SdfxKernel{cells: defaultMeshCells}
}

// WithCells returns a kernel sampling meshes on a grid of n cells along
// the longest axis.
func (k *SdfxKernel) WithCells(n int) *SdfxKernel {
	if n <= 0 {
		n = defaultMeshCells
	}
	return &SdfxKernel{cells: n}
}

// Cells returns the marching cubes resolution.
func (k *SdfxKernel) Cells() int { return k.cells }

// SDF returns the signed distance field of s.
func SDF(s kernel.Solid) sdf.SDF3 {
	if w, ok := s.(*sdfxSolid); ok {
		return w.s
	}
	return &halfSpaces{planes: s.Planes(), bb: s.Bounds()}
}

// Union returns the union of solids, or nil if there are none.
func (k *SdfxKernel) Union(solids ...kernel.Solid) kernel.Solid {
	switch len(solids) {
	case 0:
		return nil
	case 1:
		return solids[0]
	}
	fields := make([]sdf.SDF3, len(solids))
	for i, s := range solids {
		fields[i] = SDF(s)
	}
	return &sdfxSolid{s: sdf.Union3D(fields...), parts: solids}
}

// Distance returns the signed distance from (x, y, z) to s.
func (k *SdfxKernel) Distance(s kernel.Solid, x, y, z float64) float64 {
	return SDF(s).Evaluate(v3.Vec{X: x, Y: y, Z: z})
}

// ToMesh converts a solid to a triangle mesh using marching cubes.
func (k *SdfxKernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	if s == nil {
		return nil, kernel.Errorf(kernel.ErrEmptyResult, "no solid to mesh")
	}
	sdf3 := SDF(s)

	renderer := render.NewMarchingCubesUniform(k.cells)
	triangles := render.ToTriangles(sdf3, renderer)

	numTri := len(triangles)
	numVerts := numTri * 3

	vertices := make([]float32, 0, numVerts*3)
	normals := make([]float32, 0, numVerts*3)
	indices := make([]uint32, 0, numVerts)

	for i, tri := range triangles {
		// Compute face normal.
		n := tri.Normal()
		nx := float32(n.X)
		ny := float32(n.Y)
		nz := float32(n.Z)

		for j := 0; j < 3; j++ {
			v := tri[j]
			vertices = append(vertices, float32(v.X), float32(v.Y), float32(v.Z))
			normals = append(normals, nx, ny, nz)
			indices = append(indices, uint32(i*3+j))
		}
	}

	return &kernel.Mesh{
		Vertices: vertices,
		Normals:  normals,
		Indices:  indices,
	}, nil
}

// Package kernel defines the surface shared by every solid in the editor:
// the Solid interface, the triangle Mesh handed to renderers and exporters,
// and the error taxonomy returned by fallible geometry operations.
package kernel

import (
	"github.com/chazu/brushwork/pkg/geom"
	"github.com/deadsy/sdfx/sdf"
)

// Solid is a convex solid that can be bounded, described as an
// intersection of half-spaces, and tessellated.
type Solid interface {
	// Bounds returns the axis-aligned bounding box.
	Bounds() sdf.Box3
	// Planes returns the outward facing planes whose half-spaces intersect
	// to the solid.
	Planes() []geom.Plane
	// Mesh returns an exact triangulation of the boundary.
	Mesh() *Mesh
}

// Kernel converts solids into derived representations. The sdfx
// implementation evaluates solids as signed distance fields.
type Kernel interface {
	// Union combines solids into one for preview purposes.
	Union(solids ...Solid) Solid
	// Distance returns the signed distance from p to the solid's surface,
	// negative inside.
	Distance(s Solid, x, y, z float64) float64
	// ToMesh samples the solid into a triangle mesh.
	ToMesh(s Solid) (*Mesh, error)
}

// Package builder creates brushes for common shapes: boxes, cylinders,
// cones, spheres and stairs. A Builder is immutable and holds only the map
// format, the world bounds and the default face attributes, so one value can
// be shared freely.
//
// Every factory returns a result.Result. Factories producing several
// brushes fail as a whole when any brush cannot be built.
package builder

import (
	"math"

	"github.com/chazu/brushwork/pkg/brush"
	"github.com/chazu/brushwork/pkg/geom"
	"github.com/chazu/brushwork/pkg/kernel"
	"github.com/chazu/brushwork/pkg/polyhedron"
	"github.com/chazu/brushwork/pkg/result"
	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Builder creates brushes in one map format and world.
type Builder struct {
	format      brush.MapFormat
	worldBounds sdf.Box3
	defaults    brush.Attributes
}

// Option configures a Builder.
type Option func(*Builder)

// WithDefaultAttributes sets the attributes every face starts from. The
// material passed to a factory replaces a.Material.
func WithDefaultAttributes(a brush.Attributes) Option {
	return func(b *Builder) {
		b.defaults = a
	}
}

// New returns a Builder for format whose brushes must fit in worldBounds.
func New(format brush.MapFormat, worldBounds sdf.Box3, opts ...Option) *Builder {
	b := &Builder{
		format:      format,
		worldBounds: worldBounds,
		defaults:    brush.DefaultAttributes(""),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Format returns the builder's map format.
func (b *Builder) Format() brush.MapFormat { return b.format }

// WorldBounds returns the box every brush must fit in.
func (b *Builder) WorldBounds() sdf.Box3 { return b.worldBounds }

// Attributes returns the default attributes with material applied.
func (b *Builder) Attributes(material string) brush.Attributes {
	a := b.defaults
	a.Material = material
	return a
}

// FaceMaterials names the material of each face of a box. Left and right
// face -X and +X, front and back -Y and +Y, bottom and top -Z and +Z.
type FaceMaterials struct {
	Left, Right, Front, Back, Top, Bottom string
}

// Uniform returns FaceMaterials using material on every face.
func Uniform(material string) FaceMaterials {
	return FaceMaterials{material, material, material, material, material, material}
}

// byPlane lists the materials in geom.BoxPlanes order.
func (m FaceMaterials) byPlane() [6]string {
	return [6]string{m.Left, m.Right, m.Front, m.Back, m.Bottom, m.Top}
}

// Cube creates a cube of edge length size centered on the origin.
func (b *Builder) Cube(size float64, material string) result.Result[*brush.Brush] {
	return b.CubeFaces(size, Uniform(material))
}

// CubeFaces is Cube with a material per face.
func (b *Builder) CubeFaces(size float64, materials FaceMaterials) result.Result[*brush.Brush] {
	return b.CuboidFaces(v3.Vec{X: size, Y: size, Z: size}, materials)
}

// Cuboid creates a box of the given size centered on the origin.
func (b *Builder) Cuboid(size v3.Vec, material string) result.Result[*brush.Brush] {
	return b.CuboidFaces(size, Uniform(material))
}

// CuboidFaces is Cuboid with a material per face.
func (b *Builder) CuboidFaces(size v3.Vec, materials FaceMaterials) result.Result[*brush.Brush] {
	half := size.DivScalar(2)
	return b.CuboidBoundsFaces(sdf.Box3{Min: half.Neg(), Max: half}, materials)
}

// CuboidBounds creates the box bounds. Its Bounds reproduce bounds exactly.
func (b *Builder) CuboidBounds(bounds sdf.Box3, material string) result.Result[*brush.Brush] {
	return b.CuboidBoundsFaces(bounds, Uniform(material))
}

// CuboidBoundsFaces is CuboidBounds with a material per face.
func (b *Builder) CuboidBoundsFaces(bounds sdf.Box3, materials FaceMaterials) result.Result[*brush.Brush] {
	if !geom.BoxValid(bounds) {
		return result.Fail[*brush.Brush](kernel.Errorf(kernel.ErrDegenerateGeometry, "box [%v %v]", bounds.Min, bounds.Max))
	}
	planes := geom.BoxPlanes(bounds)
	p, err := polyhedron.FromPlanes(bounds, planes[:]...)
	if err != nil {
		return result.Fail[*brush.Brush](err)
	}
	names := materials.byPlane()
	return brush.New(b.format, b.worldBounds, p, func(f polyhedron.Face) brush.Attributes {
		if f.Tag >= 0 && f.Tag < len(names) {
			return b.Attributes(names[f.Tag])
		}
		return b.defaults
	})
}

// StairStep creates one step: the box spanning position to
// position+stepSize.
func (b *Builder) StairStep(position, stepSize v3.Vec, material string) result.Result[*brush.Brush] {
	return b.CuboidBounds(sdf.Box3{Min: position, Max: position.Add(stepSize)}, material)
}

// FromPoints creates the convex hull of points.
func (b *Builder) FromPoints(points []v3.Vec, material string) result.Result[*brush.Brush] {
	p, err := polyhedron.FromPoints(points)
	if err != nil {
		return result.Fail[*brush.Brush](err)
	}
	return b.FromPolyhedron(p, material)
}

// FromPolyhedron wraps an existing solid.
func (b *Builder) FromPolyhedron(p *polyhedron.Polyhedron, material string) result.Result[*brush.Brush] {
	return brush.NewUniform(b.format, b.worldBounds, p, b.Attributes(material))
}

// fitted builds the hull of points after mapping their bounding box onto
// bounds.
func (b *Builder) fitted(bounds sdf.Box3, points []v3.Vec, material string) result.Result[*brush.Brush] {
	if !geom.BoxValid(bounds) {
		return result.Fail[*brush.Brush](kernel.Errorf(kernel.ErrDegenerateGeometry, "box [%v %v]", bounds.Min, bounds.Max))
	}
	return b.FromPoints(fit(points, bounds), material)
}

// fit maps the bounding box of points onto bounds, axis by axis. Extreme
// points land exactly on the bounds.
func fit(points []v3.Vec, bounds sdf.Box3) []v3.Vec {
	src := geom.BoxOf(points)
	out := make([]v3.Vec, len(points))
	for i, p := range points {
		for axis := 0; axis < 3; axis++ {
			lo, hi := geom.Component(src.Min, axis), geom.Component(src.Max, axis)
			blo, bhi := geom.Component(bounds.Min, axis), geom.Component(bounds.Max, axis)
			c := geom.Component(p, axis)
			var v float64
			switch {
			case hi-lo <= 0:
				v = (blo + bhi) / 2
			case c == lo:
				v = blo
			case c == hi:
				v = bhi
			default:
				v = blo + (c-lo)/(hi-lo)*(bhi-blo)
			}
			p = geom.WithComponent(p, axis, v)
		}
		out[i] = p
	}
	return out
}

// frame returns the component indices of the two cross-section axes and
// the main axis for a shape built along axis, forming a right handed frame.
func frame(axis int) (u, v, w int) {
	return (axis + 1) % 3, (axis + 2) % 3, axis
}

// place builds a point from cross-section coordinates c and the coordinate
// h along axis.
func place(axis int, c v2.Vec, h float64) v3.Vec {
	u, v, w := frame(axis)
	var p v3.Vec
	p = geom.WithComponent(p, u, c.X)
	p = geom.WithComponent(p, v, c.Y)
	return geom.WithComponent(p, w, h)
}

func checkAxis(axis int) error {
	if axis < 0 || axis > 2 {
		return kernel.Errorf(kernel.ErrDegenerateGeometry, "axis %d", axis)
	}
	return nil
}

func checkShape(shape CircleShape) ([]v2.Vec, error) {
	if shape == nil {
		return nil, kernel.Errorf(kernel.ErrDegenerateGeometry, "no circle shape")
	}
	ring := shape.unit()
	if len(ring) < 3 {
		return nil, kernel.Errorf(kernel.ErrDegenerateGeometry, "circle with %d sides", shape.Sides())
	}
	return ring, nil
}

// Cylinder creates a prism with a circular cross-section approximated by
// shape, running along axis and filling bounds.
func (b *Builder) Cylinder(bounds sdf.Box3, shape CircleShape, axis int, material string) result.Result[*brush.Brush] {
	ring, err := checkShape(shape)
	if err == nil {
		err = checkAxis(axis)
	}
	if err != nil {
		return result.Fail[*brush.Brush](err)
	}
	points := make([]v3.Vec, 0, 2*len(ring))
	for _, c := range ring {
		points = append(points, place(axis, c, 0), place(axis, c, 1))
	}
	return b.fitted(bounds, points, material)
}

// ScalableCylinder is Cylinder with a Scalable shape of the given precision.
func (b *Builder) ScalableCylinder(bounds sdf.Box3, precision int, axis int, material string) result.Result[*brush.Brush] {
	if precision < 0 {
		return result.Fail[*brush.Brush](kernel.Errorf(kernel.ErrDegenerateGeometry, "precision %d", precision))
	}
	return b.Cylinder(bounds, Scalable{Precision: precision}, axis, material)
}

// Cone creates a cone along axis with its base at the low end of bounds and
// its apex centered at the high end.
func (b *Builder) Cone(bounds sdf.Box3, shape CircleShape, axis int, material string) result.Result[*brush.Brush] {
	ring, err := checkShape(shape)
	if err == nil {
		err = checkAxis(axis)
	}
	if err != nil {
		return result.Fail[*brush.Brush](err)
	}
	points := make([]v3.Vec, 0, len(ring)+1)
	for _, c := range ring {
		points = append(points, place(axis, c, 0))
	}
	points = append(points, place(axis, v2.Vec{}, 1))
	return b.fitted(bounds, points, material)
}

// UVSphere creates a sphere from rings of latitude around axis, each ring
// sampled by shape, filling bounds. rings is the number of latitude bands
// and must be at least two.
func (b *Builder) UVSphere(bounds sdf.Box3, shape CircleShape, rings int, axis int, material string) result.Result[*brush.Brush] {
	ring, err := checkShape(shape)
	if err == nil {
		err = checkAxis(axis)
	}
	if err == nil && rings < 2 {
		err = kernel.Errorf(kernel.ErrDegenerateGeometry, "%d rings", rings)
	}
	if err != nil {
		return result.Fail[*brush.Brush](err)
	}
	points := []v3.Vec{place(axis, v2.Vec{}, -1), place(axis, v2.Vec{}, 1)}
	for j := 1; j < rings; j++ {
		theta := math.Pi * float64(j) / float64(rings)
		r, h := math.Sin(theta), -math.Cos(theta)
		for _, c := range ring {
			points = append(points, place(axis, c.MulScalar(r), h))
		}
	}
	return b.fitted(bounds, points, material)
}

// IcoSphere creates a sphere by subdividing an icosahedron iterations
// times, filling bounds.
func (b *Builder) IcoSphere(bounds sdf.Box3, iterations int, material string) result.Result[*brush.Brush] {
	if iterations < 0 {
		return result.Fail[*brush.Brush](kernel.Errorf(kernel.ErrDegenerateGeometry, "%d iterations", iterations))
	}
	return b.fitted(bounds, icosphere(iterations), material)
}

package builder

import (
	"fmt"
	"math"

	"github.com/chazu/brushwork/pkg/brush"
	"github.com/chazu/brushwork/pkg/geom"
	"github.com/chazu/brushwork/pkg/kernel"
	"github.com/chazu/brushwork/pkg/result"
	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// many builds n brushes with part and fails as a whole if any part fails.
func many(kind string, n int, part func(i int) result.Result[*brush.Brush]) result.Result[[]*brush.Brush] {
	parts := make([]result.Result[*brush.Brush], 0, n)
	for i := 0; i < n; i++ {
		r := part(i)
		parts = append(parts, r)
		if !r.IsOk() {
			break
		}
	}
	return result.Collect(parts).MapErr(func(err error) error {
		return fmt.Errorf("%s: %w", kind, err)
	})
}

func failMany(err error) result.Result[[]*brush.Brush] {
	return result.Fail[[]*brush.Brush](err)
}

// normalizedRing maps the shape's polygon onto the square [-1,1]^2.
func normalizedRing(ring []v2.Vec) []v2.Vec {
	lo, hi := ring[0], ring[0]
	for _, c := range ring[1:] {
		lo = v2.Vec{X: math.Min(lo.X, c.X), Y: math.Min(lo.Y, c.Y)}
		hi = v2.Vec{X: math.Max(hi.X, c.X), Y: math.Max(hi.Y, c.Y)}
	}
	mid := v2.Vec{X: (lo.X + hi.X) / 2, Y: (lo.Y + hi.Y) / 2}
	half := v2.Vec{X: (hi.X - lo.X) / 2, Y: (hi.Y - lo.Y) / 2}
	out := make([]v2.Vec, len(ring))
	for i, c := range ring {
		out[i] = v2.Vec{X: (c.X - mid.X) / half.X, Y: (c.Y - mid.Y) / half.Y}
	}
	return out
}

// HollowCylinder creates a tube filling bounds along axis whose wall is
// thickness deep. The tube is not convex, so each side of the polygon
// becomes one wall brush.
func (b *Builder) HollowCylinder(bounds sdf.Box3, thickness float64, shape CircleShape, axis int, material string) result.Result[[]*brush.Brush] {
	ring, err := checkShape(shape)
	if err == nil {
		err = checkAxis(axis)
	}
	if err != nil {
		return failMany(err)
	}
	if !geom.BoxValid(bounds) {
		return failMany(kernel.Errorf(kernel.ErrDegenerateGeometry, "box [%v %v]", bounds.Min, bounds.Max))
	}
	u, v, w := frame(axis)
	center := bounds.Center()
	size := bounds.Size()
	outer := v2.Vec{X: geom.Component(size, u) / 2, Y: geom.Component(size, v) / 2}
	if thickness <= 0 || thickness >= math.Min(outer.X, outer.Y) {
		return failMany(kernel.Errorf(kernel.ErrDegenerateGeometry, "wall thickness %g for radii %v", thickness, outer))
	}
	inner := v2.Vec{X: outer.X - thickness, Y: outer.Y - thickness}
	mid := v2.Vec{X: geom.Component(center, u), Y: geom.Component(center, v)}
	lo, hi := geom.Component(bounds.Min, w), geom.Component(bounds.Max, w)

	unit := normalizedRing(ring)
	at := func(c, r v2.Vec) v2.Vec {
		return v2.Vec{X: mid.X + c.X*r.X, Y: mid.Y + c.Y*r.Y}
	}
	return many("hollow cylinder", len(unit), func(i int) result.Result[*brush.Brush] {
		c0, c1 := unit[i], unit[(i+1)%len(unit)]
		section := []v2.Vec{at(c0, outer), at(c1, outer), at(c1, inner), at(c0, inner)}
		points := make([]v3.Vec, 0, 8)
		for _, c := range section {
			points = append(points, place(axis, c, lo), place(axis, c, hi))
		}
		return b.FromPoints(points, material)
	})
}

// Stairs creates a solid staircase filling bounds: stepCount steps, each a
// box standing on the floor of bounds, rising along axis (0 or 1) in the
// given direction (+1 or -1).
func (b *Builder) Stairs(bounds sdf.Box3, stepCount int, axis int, direction int, material string) result.Result[[]*brush.Brush] {
	switch {
	case axis != 0 && axis != 1:
		return failMany(kernel.Errorf(kernel.ErrDegenerateGeometry, "stairs cannot run along axis %d", axis))
	case direction != 1 && direction != -1:
		return failMany(kernel.Errorf(kernel.ErrDegenerateGeometry, "stair direction %d", direction))
	case stepCount < 1:
		return failMany(kernel.Errorf(kernel.ErrDegenerateGeometry, "%d steps", stepCount))
	case !geom.BoxValid(bounds):
		return failMany(kernel.Errorf(kernel.ErrDegenerateGeometry, "box [%v %v]", bounds.Min, bounds.Max))
	}
	a0, a1 := geom.Component(bounds.Min, axis), geom.Component(bounds.Max, axis)
	run := (a1 - a0) / float64(stepCount)
	rise := (bounds.Max.Z - bounds.Min.Z) / float64(stepCount)
	return many("stairs", stepCount, func(i int) result.Result[*brush.Brush] {
		slot := i
		if direction < 0 {
			slot = stepCount - 1 - i
		}
		lo, hi := a0+float64(slot)*run, a0+float64(slot+1)*run
		if slot == stepCount-1 {
			hi = a1
		}
		top := bounds.Min.Z + float64(i+1)*rise
		if i == stepCount-1 {
			top = bounds.Max.Z
		}
		step := bounds
		step.Min = geom.WithComponent(step.Min, axis, lo)
		step.Max = geom.WithComponent(step.Max, axis, hi)
		step.Max.Z = top
		return b.CuboidBounds(step, material)
	})
}

// Arch creates a semi-elliptical arch standing on the floor of bounds. The
// arch is extruded along axis (0 or 1) and spans the other horizontal axis;
// its crown reaches the top of bounds. The shape sets the number of
// segments, half its side count, and each segment is one brush.
func (b *Builder) Arch(bounds sdf.Box3, thickness float64, shape CircleShape, axis int, material string) result.Result[[]*brush.Brush] {
	if shape == nil {
		return failMany(kernel.Errorf(kernel.ErrDegenerateGeometry, "no circle shape"))
	}
	segments := shape.Sides() / 2
	switch {
	case axis != 0 && axis != 1:
		return failMany(kernel.Errorf(kernel.ErrDegenerateGeometry, "arch cannot extrude along axis %d", axis))
	case segments < 2:
		return failMany(kernel.Errorf(kernel.ErrDegenerateGeometry, "arch with %d segments", segments))
	case !geom.BoxValid(bounds):
		return failMany(kernel.Errorf(kernel.ErrDegenerateGeometry, "box [%v %v]", bounds.Min, bounds.Max))
	}
	span := 1 - axis
	cs := geom.Component(bounds.Center(), span)
	rs := geom.Component(bounds.Size(), span) / 2
	rz := bounds.Max.Z - bounds.Min.Z
	if thickness <= 0 || thickness >= math.Min(rs, rz) {
		return failMany(kernel.Errorf(kernel.ErrDegenerateGeometry, "arch thickness %g", thickness))
	}
	d0, d1 := geom.Component(bounds.Min, axis), geom.Component(bounds.Max, axis)
	point := func(theta, shrink, depth float64) v3.Vec {
		p := v3.Vec{Z: bounds.Min.Z + (rz-shrink)*math.Sin(theta)}
		p = geom.WithComponent(p, span, cs+(rs-shrink)*math.Cos(theta))
		return geom.WithComponent(p, axis, depth)
	}
	return many("arch", segments, func(i int) result.Result[*brush.Brush] {
		t0 := math.Pi * float64(i) / float64(segments)
		t1 := math.Pi * float64(i+1) / float64(segments)
		points := make([]v3.Vec, 0, 8)
		for _, depth := range []float64{d0, d1} {
			points = append(points,
				point(t0, 0, depth), point(t1, 0, depth),
				point(t1, thickness, depth), point(t0, thickness, depth))
		}
		return b.FromPoints(points, material)
	})
}

// SpiralStairs creates stepCount wedge shaped steps winding around a
// vertical axis through center. The steps climb height in total and turn
// rotations full turns; negative rotations wind clockwise. Each step is the
// first one rotated about the axis and raised.
func (b *Builder) SpiralStairs(center v3.Vec, innerRadius, outerRadius, height float64, stepCount int, rotations float64, material string) result.Result[[]*brush.Brush] {
	if stepCount < 1 {
		return failMany(kernel.Errorf(kernel.ErrDegenerateGeometry, "%d steps", stepCount))
	}
	sweep := 2 * math.Pi * rotations / float64(stepCount)
	switch {
	case innerRadius < 0 || outerRadius <= innerRadius:
		return failMany(kernel.Errorf(kernel.ErrDegenerateGeometry, "radii %g..%g", innerRadius, outerRadius))
	case height <= 0:
		return failMany(kernel.Errorf(kernel.ErrDegenerateGeometry, "height %g", height))
	case sweep == 0 || math.Abs(sweep) >= math.Pi:
		return failMany(kernel.Errorf(kernel.ErrDegenerateGeometry, "step sweep %g rad", sweep))
	}
	rise := height / float64(stepCount)
	var points []v3.Vec
	for _, a := range []float64{0, sweep} {
		for _, r := range []float64{innerRadius, outerRadius} {
			for _, z := range []float64{0, rise} {
				points = append(points, center.Add(v3.Vec{X: r * math.Cos(a), Y: r * math.Sin(a), Z: z}))
			}
		}
	}
	first := b.FromPoints(points, material)
	if !first.IsOk() {
		return failMany(fmt.Errorf("spiral stairs: %w", first.Err()))
	}
	proto := first.MustGet()
	return many("spiral stairs", stepCount, func(i int) result.Result[*brush.Brush] {
		if i == 0 {
			return first
		}
		m := sdf.Translate3d(center.Add(v3.Vec{Z: float64(i) * rise})).
			Mul(sdf.RotateZ(float64(i) * sweep)).
			Mul(sdf.Translate3d(center.Neg()))
		return proto.Transform(b.worldBounds, m, false)
	})
}

// icosphere returns the vertices of an icosahedron subdivided iterations
// times, projected onto the unit sphere.
func icosphere(iterations int) []v3.Vec {
	t := (1 + math.Sqrt(5)) / 2
	verts := []v3.Vec{
		{X: -1, Y: t}, {X: 1, Y: t}, {X: -1, Y: -t}, {X: 1, Y: -t},
		{Y: -1, Z: t}, {Y: 1, Z: t}, {Y: -1, Z: -t}, {Y: 1, Z: -t},
		{X: t, Z: -1}, {X: t, Z: 1}, {X: -t, Z: -1}, {X: -t, Z: 1},
	}
	for i := range verts {
		verts[i] = verts[i].Normalize()
	}
	tris := [][3]int{
		{0, 11, 5}, {0, 5, 1}, {0, 1, 7}, {0, 7, 10}, {0, 10, 11},
		{1, 5, 9}, {5, 11, 4}, {11, 10, 2}, {10, 7, 6}, {7, 1, 8},
		{3, 9, 4}, {3, 4, 2}, {3, 2, 6}, {3, 6, 8}, {3, 8, 9},
		{4, 9, 5}, {2, 4, 11}, {6, 2, 10}, {8, 6, 7}, {9, 8, 1},
	}
	for ; iterations > 0; iterations-- {
		mids := make(map[[2]int]int)
		midpoint := func(a, b int) int {
			key := [2]int{min(a, b), max(a, b)}
			if m, ok := mids[key]; ok {
				return m
			}
			verts = append(verts, verts[a].Add(verts[b]).Normalize())
			mids[key] = len(verts) - 1
			return len(verts) - 1
		}
		next := make([][3]int, 0, 4*len(tris))
		for _, tri := range tris {
			a := midpoint(tri[0], tri[1])
			b := midpoint(tri[1], tri[2])
			c := midpoint(tri[2], tri[0])
			next = append(next,
				[3]int{tri[0], a, c}, [3]int{tri[1], b, a},
				[3]int{tri[2], c, b}, [3]int{a, b, c})
		}
		tris = next
	}
	return verts
}

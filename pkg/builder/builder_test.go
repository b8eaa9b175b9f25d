package builder

import (
	"math"
	"testing"

	"github.com/chazu/brushwork/pkg/brush"
	"github.com/chazu/brushwork/pkg/geom"
	"github.com/chazu/brushwork/pkg/kernel"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var world = sdf.Box3{
	Min: v3.Vec{X: -4096, Y: -4096, Z: -4096},
	Max: v3.Vec{X: 4096, Y: 4096, Z: 4096},
}

func newBuilder() *Builder {
	return New(brush.FormatStandard, world)
}

func assertValid(t *testing.T, b *brush.Brush) {
	t.Helper()
	assert.Equal(t, 2, b.VertexCount()-b.EdgeCount()+b.FaceCount())
	assert.NoError(t, b.Polyhedron().Validate())
}

func TestCuboidBoundsRoundTrip(t *testing.T) {
	bb := newBuilder()
	tests := []sdf.Box3{
		{Min: v3.Vec{X: -32, Y: -32, Z: -32}, Max: v3.Vec{X: 32, Y: 32, Z: 32}},
		{Min: v3.Vec{X: 0.1, Y: 0.2, Z: 0.3}, Max: v3.Vec{X: 1.7, Y: 100.25, Z: 3.3}},
		{Min: v3.Vec{X: -4096, Y: -4096, Z: -4096}, Max: v3.Vec{X: -4000, Y: 17, Z: 4096}},
	}
	for _, bounds := range tests {
		b := bb.CuboidBounds(bounds, "wall").MustGet()
		assert.Equal(t, bounds, b.Bounds())
		assert.Equal(t, 6, b.FaceCount())
		assertValid(t, b)
	}
}

func TestCuboidFaces(t *testing.T) {
	bb := New(brush.FormatValve, world, WithDefaultAttributes(brush.Attributes{
		Scale: brush.DefaultAttributes("").Scale, Rotation: 15,
	}))
	m := FaceMaterials{Left: "l", Right: "r", Front: "f", Back: "b", Top: "t", Bottom: "u"}
	b := bb.CuboidFaces(v3.Vec{X: 64, Y: 32, Z: 16}, m).MustGet()
	want := map[v3.Vec]string{
		{X: -1}: "l", {X: 1}: "r", {Y: -1}: "f", {Y: 1}: "b", {Z: 1}: "t", {Z: -1}: "u",
	}
	for n, material := range want {
		i, ok := b.FindFace(n)
		require.True(t, ok, "face %v", n)
		assert.Equal(t, material, b.FaceAttributes(i).Material)
		assert.Equal(t, 15.0, b.FaceAttributes(i).Rotation)
	}
	assert.Equal(t, v3.Vec{X: 32, Y: 16, Z: 8}, b.Bounds().Max)
}

func TestCubeAndStep(t *testing.T) {
	bb := newBuilder()
	c := bb.Cube(64, "crate").MustGet()
	assert.Equal(t, v3.Vec{X: -32, Y: -32, Z: -32}, c.Bounds().Min)
	assert.Equal(t, "crate", c.FaceAttributes(0).Material)

	s := bb.StairStep(v3.Vec{X: 8, Y: 0, Z: 16}, v3.Vec{X: 16, Y: 64, Z: 8}, "step").MustGet()
	assert.Equal(t, sdf.Box3{Min: v3.Vec{X: 8, Z: 16}, Max: v3.Vec{X: 24, Y: 64, Z: 24}}, s.Bounds())

	_, err := bb.Cube(0, "x").Get()
	assert.ErrorIs(t, err, kernel.ErrDegenerateGeometry)
	_, err = bb.Cube(10000, "x").Get()
	assert.ErrorIs(t, err, kernel.ErrOutOfWorldBounds)
}

func TestCylinder(t *testing.T) {
	bb := newBuilder()
	bounds := sdf.Box3{Min: v3.Vec{X: -32, Y: -16, Z: 0}, Max: v3.Vec{X: 32, Y: 16, Z: 128}}
	tests := []struct {
		name  string
		shape CircleShape
		axis  int
		faces int
	}{
		{"edge aligned square", EdgeAligned{NumSides: 4}, 2, 6},
		{"edge aligned octagon", EdgeAligned{NumSides: 8}, 2, 10},
		{"vertex aligned hexagon", VertexAligned{NumSides: 6}, 2, 8},
		{"scalable", Scalable{Precision: 1}, 2, 18},
		{"along x", EdgeAligned{NumSides: 12}, 0, 14},
		{"along y", VertexAligned{NumSides: 8}, 1, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := bb.Cylinder(bounds, tt.shape, tt.axis, "pipe").MustGet()
			assert.Equal(t, tt.faces, b.FaceCount())
			assert.Equal(t, 2*tt.shape.Sides(), b.VertexCount())
			assert.True(t, geom.BoxEquals(bounds, b.Bounds(), 1e-9))
			assert.True(t, b.HasFace(geom.AxisVector(tt.axis)))
			assertValid(t, b)
		})
	}

	_, err := bb.Cylinder(bounds, EdgeAligned{NumSides: 2}, 2, "pipe").Get()
	assert.ErrorIs(t, err, kernel.ErrDegenerateGeometry)
	_, err = bb.Cylinder(bounds, EdgeAligned{NumSides: 8}, 3, "pipe").Get()
	assert.ErrorIs(t, err, kernel.ErrDegenerateGeometry)
	_, err = bb.ScalableCylinder(bounds, -1, 2, "pipe").Get()
	assert.ErrorIs(t, err, kernel.ErrDegenerateGeometry)
}

func TestScalableSides(t *testing.T) {
	assert.Equal(t, 8, Scalable{}.Sides())
	assert.Equal(t, 24, Scalable{Precision: 2}.Sides())
}

func TestCone(t *testing.T) {
	bb := newBuilder()
	bounds := sdf.Box3{Min: v3.Vec{X: -16, Y: -16}, Max: v3.Vec{X: 16, Y: 16, Z: 64}}
	b := bb.Cone(bounds, VertexAligned{NumSides: 8}, 2, "spire").MustGet()
	assert.Equal(t, 9, b.VertexCount())
	assert.Equal(t, 9, b.FaceCount())
	assert.True(t, b.HasVertex(v3.Vec{Z: 64}))
	assert.True(t, b.HasFace(v3.Vec{Z: -1}))
	assert.True(t, geom.BoxEquals(bounds, b.Bounds(), 1e-9))
	assertValid(t, b)
}

func TestSpheres(t *testing.T) {
	bb := newBuilder()
	bounds := sdf.Box3{Min: v3.Vec{X: -64, Y: -64, Z: -64}, Max: v3.Vec{X: 64, Y: 64, Z: 64}}

	uv := bb.UVSphere(bounds, VertexAligned{NumSides: 8}, 4, 2, "ball").MustGet()
	assert.Equal(t, 2+3*8, uv.VertexCount())
	assert.True(t, uv.HasVertex(v3.Vec{Z: 64}))
	assert.True(t, uv.HasVertex(v3.Vec{Z: -64}))
	assert.True(t, geom.BoxEquals(bounds, uv.Bounds(), 1e-9))
	assertValid(t, uv)

	_, err := bb.UVSphere(bounds, VertexAligned{NumSides: 8}, 1, 2, "ball").Get()
	assert.ErrorIs(t, err, kernel.ErrDegenerateGeometry)

	for iterations, verts := range []int{12, 42, 162} {
		ico := bb.IcoSphere(bounds, iterations, "ball").MustGet()
		assert.Equal(t, verts, ico.VertexCount(), "iterations %d", iterations)
		assert.Equal(t, 2*verts-4, ico.FaceCount())
		assertValid(t, ico)
	}
}

func TestFromPoints(t *testing.T) {
	bb := newBuilder()
	b := bb.FromPoints([]v3.Vec{{}, {X: 10}, {Y: 10}, {Z: 10}}, "tet").MustGet()
	assert.Equal(t, 4, b.FaceCount())
	_, err := bb.FromPoints([]v3.Vec{{}, {X: 10}, {Y: 10}}, "tet").Get()
	assert.ErrorIs(t, err, kernel.ErrDegenerateGeometry)

	again := bb.FromPolyhedron(b.Polyhedron(), "copy").MustGet()
	assert.Equal(t, "copy", again.FaceAttributes(2).Material)
}

func TestHollowCylinder(t *testing.T) {
	bb := newBuilder()
	bounds := sdf.Box3{Min: v3.Vec{X: -64, Y: -64}, Max: v3.Vec{X: 64, Y: 64, Z: 32}}
	walls := bb.HollowCylinder(bounds, 8, EdgeAligned{NumSides: 8}, 2, "pipe").MustGet()
	require.Len(t, walls, 8)
	union := walls[0].Bounds()
	for _, w := range walls {
		assertValid(t, w)
		assert.Equal(t, 6, w.FaceCount())
		assert.False(t, w.Polyhedron().Contains(v3.Vec{Z: 16}), "the core stays open")
		union = geom.BoxUnion(union, w.Bounds())
	}
	assert.True(t, geom.BoxEquals(bounds, union, 1e-9))

	for _, thickness := range []float64{0, -2, 64, 100} {
		_, err := bb.HollowCylinder(bounds, thickness, EdgeAligned{NumSides: 8}, 2, "pipe").Get()
		assert.ErrorIs(t, err, kernel.ErrDegenerateGeometry, "thickness %g", thickness)
	}
}

func TestStairs(t *testing.T) {
	bb := newBuilder()
	bounds := sdf.Box3{Max: v3.Vec{X: 128, Y: 64, Z: 64}}

	up := bb.Stairs(bounds, 4, 0, 1, "stone").MustGet()
	require.Len(t, up, 4)
	for i, s := range up {
		assert.InDelta(t, float64(i)*32, s.Bounds().Min.X, 1e-9)
		assert.InDelta(t, float64(i+1)*16, s.Bounds().Max.Z, 1e-9)
		assert.Equal(t, 0.0, s.Bounds().Min.Z)
		assert.Equal(t, 64.0, s.Bounds().Max.Y)
	}
	assert.Equal(t, bounds.Max, up[3].Bounds().Max)

	down := bb.Stairs(bounds, 4, 0, -1, "stone").MustGet()
	assert.InDelta(t, 96, down[0].Bounds().Min.X, 1e-9)
	assert.Equal(t, 128.0, down[0].Bounds().Max.X)
	assert.Equal(t, 0.0, down[3].Bounds().Min.X)
	assert.Equal(t, 64.0, down[3].Bounds().Max.Z)

	alongY := bb.Stairs(bounds, 2, 1, 1, "stone").MustGet()
	assert.Equal(t, 32.0, alongY[0].Bounds().Max.Y)

	bad := []struct {
		name             string
		steps, axis, dir int
	}{
		{"vertical", 4, 2, 1},
		{"no steps", 0, 0, 1},
		{"bad direction", 4, 0, 0},
	}
	for _, tt := range bad {
		_, err := bb.Stairs(bounds, tt.steps, tt.axis, tt.dir, "stone").Get()
		assert.ErrorIs(t, err, kernel.ErrDegenerateGeometry, tt.name)
	}
}

func TestStairsAllOrNothing(t *testing.T) {
	small := sdf.Box3{Max: v3.Vec{X: 100, Y: 100, Z: 100}}
	bb := New(brush.FormatStandard, small)
	bounds := sdf.Box3{Max: v3.Vec{X: 128, Y: 64, Z: 64}}
	r := bb.Stairs(bounds, 4, 0, 1, "stone")
	assert.ErrorIs(t, r.Err(), kernel.ErrOutOfWorldBounds)
	assert.Nil(t, r.Value())
}

func TestArch(t *testing.T) {
	bb := newBuilder()
	bounds := sdf.Box3{Min: v3.Vec{X: -64, Y: -8}, Max: v3.Vec{X: 64, Y: 8, Z: 64}}
	parts := bb.Arch(bounds, 8, VertexAligned{NumSides: 16}, 1, "brick").MustGet()
	require.Len(t, parts, 8)
	union := parts[0].Bounds()
	for _, p := range parts {
		assertValid(t, p)
		assert.Equal(t, 6, p.FaceCount())
		union = geom.BoxUnion(union, p.Bounds())
	}
	assert.True(t, geom.BoxEquals(bounds, union, 1e-9))
	assert.InDelta(t, 0, parts[0].Bounds().Min.Z, 1e-9)

	_, err := bb.Arch(bounds, 8, VertexAligned{NumSides: 16}, 2, "brick").Get()
	assert.ErrorIs(t, err, kernel.ErrDegenerateGeometry)
	_, err = bb.Arch(bounds, 64, VertexAligned{NumSides: 16}, 1, "brick").Get()
	assert.ErrorIs(t, err, kernel.ErrDegenerateGeometry)
	_, err = bb.Arch(bounds, 8, VertexAligned{NumSides: 3}, 1, "brick").Get()
	assert.ErrorIs(t, err, kernel.ErrDegenerateGeometry)
}

func TestSpiralStairs(t *testing.T) {
	bb := newBuilder()
	center := v3.Vec{X: 100, Y: 50}
	steps := bb.SpiralStairs(center, 16, 64, 128, 16, 1, "stone").MustGet()
	require.Len(t, steps, 16)

	rise := 128.0 / 16
	sweep := 2 * math.Pi / 16
	for i, s := range steps {
		assertValid(t, s)
		assert.InDelta(t, float64(i)*rise, s.Bounds().Min.Z, 1e-9, "step %d", i)
		assert.InDelta(t, float64(i+1)*rise, s.Bounds().Max.Z, 1e-9, "step %d", i)
		a := float64(i) * sweep
		outer := center.Add(v3.Vec{X: 64 * math.Cos(a), Y: 64 * math.Sin(a), Z: float64(i) * rise})
		assert.True(t, s.HasVertex(outer), "step %d", i)
		assert.InDelta(t, steps[0].Volume(), s.Volume(), 1e-6)
	}

	solid := bb.SpiralStairs(center, 0, 64, 32, 8, 1, "stone").MustGet()
	assert.Equal(t, 6, solid[0].VertexCount(), "a zero inner radius gives a triangular wedge")

	bad := []struct {
		name                 string
		inner, outer, height float64
		count                int
		turns                float64
	}{
		{"inverted radii", 64, 16, 128, 16, 1},
		{"no height", 16, 64, 0, 16, 1},
		{"no steps", 16, 64, 128, 0, 1},
		{"no turn", 16, 64, 128, 16, 0},
		{"step too wide", 16, 64, 128, 2, 1},
	}
	for _, tt := range bad {
		_, err := bb.SpiralStairs(center, tt.inner, tt.outer, tt.height, tt.count, tt.turns, "stone").Get()
		assert.ErrorIs(t, err, kernel.ErrDegenerateGeometry, tt.name)
	}
}

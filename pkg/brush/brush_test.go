package brush

import (
	"math"
	"testing"

	"github.com/chazu/brushwork/pkg/geom"
	"github.com/chazu/brushwork/pkg/kernel"
	"github.com/chazu/brushwork/pkg/polyhedron"
	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var world = sdf.Box3{
	Min: v3.Vec{X: -4096, Y: -4096, Z: -4096},
	Max: v3.Vec{X: 4096, Y: 4096, Z: 4096},
}

func box(h float64) sdf.Box3 {
	return sdf.Box3{Min: v3.Vec{X: -h, Y: -h, Z: -h}, Max: v3.Vec{X: h, Y: h, Z: h}}
}

func cubeBrush(t *testing.T, format MapFormat, h float64) *Brush {
	t.Helper()
	p, err := polyhedron.Box(box(h))
	require.NoError(t, err)
	return NewUniform(format, world, p, DefaultAttributes("rock")).MustGet()
}

func assertEuler(t *testing.T, b *Brush) {
	t.Helper()
	assert.Equal(t, 2, b.VertexCount()-b.EdgeCount()+b.FaceCount())
	assert.NoError(t, b.Polyhedron().Validate())
}

func TestNewRejectsOutOfWorld(t *testing.T) {
	p, err := polyhedron.Box(box(8))
	require.NoError(t, err)
	small := sdf.Box3{Min: v3.Vec{X: -4, Y: -4, Z: -4}, Max: v3.Vec{X: 4, Y: 4, Z: 4}}
	r := NewUniform(FormatStandard, small, p, DefaultAttributes("x"))
	assert.ErrorIs(t, r.Err(), kernel.ErrOutOfWorldBounds)

	r = NewUniform(FormatStandard, world, nil, DefaultAttributes("x"))
	assert.ErrorIs(t, r.Err(), kernel.ErrDegenerateGeometry)
}

func TestQueries(t *testing.T) {
	b := cubeBrush(t, FormatStandard, 32)
	assert.Equal(t, 6, b.FaceCount())
	assert.True(t, b.HasFace(v3.Vec{Z: 1}))
	assert.False(t, b.HasFace(v3.Vec{X: 1, Y: 1}))
	assert.True(t, b.HasEdge(geom.Seg(v3.Vec{X: 32, Y: 32, Z: -32}, v3.Vec{X: 32, Y: 32, Z: 32})))
	assert.True(t, b.HasVertex(v3.Vec{X: -32, Y: 32, Z: 32}))
	assert.True(t, b.FullySpecified())
	assert.Equal(t, box(32), b.Bounds())

	loop, err := b.FaceLoop(geom.Seg(v3.Vec{X: 32, Y: 32, Z: -32}, v3.Vec{X: 32, Y: 32, Z: 32}))
	require.NoError(t, err)
	assert.Len(t, loop, 7)

	_, err = b.FaceLoop(geom.Seg(v3.Vec{}, v3.Vec{X: 1}))
	assert.ErrorIs(t, err, kernel.ErrHandleNotFound)

	unnamed := b.WithMaterial("")
	assert.False(t, unnamed.FullySpecified())
	assert.True(t, b.FullySpecified(), "receiver keeps its materials")

	top, _ := b.FindFace(v3.Vec{Z: 1})
	named := b.WithFaceAttributes(top, DefaultAttributes("sky"))
	assert.Equal(t, "sky", named.FaceAttributes(top).Material)
	assert.Equal(t, "rock", b.FaceAttributes(top).Material)
}

func TestParseFormat(t *testing.T) {
	for _, f := range []MapFormat{FormatStandard, FormatValve, FormatQuake2, FormatQuake3} {
		got, err := ParseFormat(f.String())
		require.NoError(t, err)
		assert.Equal(t, f, got)
	}
	_, err := ParseFormat("doom")
	assert.Error(t, err)
	assert.True(t, FormatValve.ExplicitAxes())
	assert.True(t, FormatQuake2.SurfaceFlags())
	assert.False(t, FormatStandard.SurfaceFlags())
}

func TestValveFacesGetAxes(t *testing.T) {
	b := cubeBrush(t, FormatValve, 16)
	for i := 0; i < b.FaceCount(); i++ {
		a := b.FaceAttributes(i)
		assert.False(t, geom.IsZero(a.UAxis, 0), "face %d", i)
		assert.False(t, geom.IsZero(a.VAxis, 0), "face %d", i)
		assert.InDelta(t, 0, a.UAxis.Dot(b.Face(i).Plane.Normal), 1e-12)
	}
}

func TestTransformInvertible(t *testing.T) {
	b := cubeBrush(t, FormatStandard, 32)
	b = b.BevelEdge(world, geom.Seg(v3.Vec{X: 32, Y: 32, Z: -32}, v3.Vec{X: 32, Y: 32, Z: 32}), 8, false).MustGet()

	m := sdf.Translate3d(v3.Vec{X: 100, Y: -20}).Mul(sdf.RotateZ(0.4)).Mul(sdf.Scale3d(v3.Vec{X: 2, Y: 1, Z: 0.5}))
	moved := b.Transform(world, m, false).MustGet()
	back := moved.Transform(world, m.Inverse(), false).MustGet()
	require.Equal(t, b.VertexCount(), back.VertexCount())
	for i, v := range b.Vertices() {
		assert.True(t, geom.Near(v, back.Vertices()[i], 1e-9))
	}
	assert.Equal(t, b.FaceAttributes(0), moved.FaceAttributes(0), "attributes carried through unlocked")
}

func TestTransformOutOfWorldBounds(t *testing.T) {
	b := cubeBrush(t, FormatStandard, 32)
	r := b.Translate(world, v3.Vec{X: 4090}, false)
	assert.ErrorIs(t, r.Err(), kernel.ErrOutOfWorldBounds)
	assert.Equal(t, box(32), b.Bounds(), "receiver unchanged")
}

func TestTransformLockTextures(t *testing.T) {
	for _, format := range []MapFormat{FormatStandard, FormatValve} {
		t.Run(format.String(), func(t *testing.T) {
			b := cubeBrush(t, format, 16)
			m := sdf.Translate3d(v3.Vec{X: 7, Y: 3, Z: -5}).Mul(sdf.RotateZ(math.Pi / 2))
			moved := b.Transform(world, m, true).MustGet()
			for i := 0; i < b.FaceCount(); i++ {
				before := b.Face(i)
				after := moved.Face(i)
				want := before.Attributes.TexCoords(format, before.Plane.Normal, before.Polygon.Centroid())
				got := after.Attributes.TexCoords(format, after.Plane.Normal, after.Polygon.Centroid())
				assert.InDelta(t, want.X, got.X, 1e-9, "face %d u", i)
				assert.InDelta(t, want.Y, got.Y, 1e-9, "face %d v", i)
			}
			if format == FormatValve {
				top, ok := moved.FindFace(v3.Vec{Z: 1})
				require.True(t, ok)
				assert.True(t, geom.NearComponents(moved.FaceAttributes(top).UAxis, v3.Vec{Y: 1}, 1e-12))
			}
		})
	}
}

func TestTransformWithoutLockShiftsTexture(t *testing.T) {
	b := cubeBrush(t, FormatStandard, 16)
	moved := b.Translate(world, v3.Vec{X: 8}, false).MustGet()
	top, _ := b.FindFace(v3.Vec{Z: 1})
	before := b.Face(top)
	after := moved.Face(top)
	want := before.Attributes.TexCoords(FormatStandard, before.Plane.Normal, before.Polygon.Centroid())
	got := after.Attributes.TexCoords(FormatStandard, after.Plane.Normal, after.Polygon.Centroid())
	assert.InDelta(t, 8, got.X-want.X, 1e-9)
	assert.Equal(t, v2.Vec{}, after.Attributes.Offset)
}

func TestMirror(t *testing.T) {
	b := cubeBrush(t, FormatStandard, 32)
	b = b.BevelEdge(world, geom.Seg(v3.Vec{X: 32, Y: 32, Z: -32}, v3.Vec{X: 32, Y: 32, Z: 32}), 8, false).MustGet()
	m := b.Mirror(world, 0, v3.Vec{}, false).MustGet()
	assertEuler(t, m)
	assert.True(t, m.HasFace(v3.Vec{X: -1, Y: 1}))
	assert.False(t, m.HasFace(v3.Vec{X: 1, Y: 1}))
	assert.InDelta(t, b.Volume(), m.Volume(), 1e-6)
}

func TestClip(t *testing.T) {
	b := cubeBrush(t, FormatStandard, 32)

	t.Run("split", func(t *testing.T) {
		r := b.Clip(world, geom.AxisPlane(2, true, 0), DefaultAttributes("cut"))
		require.NoError(t, r.Err())
		c := r.MustGet()
		assertEuler(t, c)
		top, ok := c.FindFace(v3.Vec{Z: 1})
		require.True(t, ok)
		assert.Equal(t, "cut", c.FaceAttributes(top).Material)
		assert.Equal(t, 0.0, c.Bounds().Max.Z)
	})
	t.Run("entirely inside", func(t *testing.T) {
		c := b.Clip(world, geom.AxisPlane(2, true, 64), DefaultAttributes("cut")).MustGet()
		assert.Equal(t, b.Bounds(), c.Bounds())
		assert.Equal(t, 6, c.FaceCount())
	})
	t.Run("entirely excluded", func(t *testing.T) {
		r := b.Clip(world, geom.AxisPlane(2, false, 64), DefaultAttributes("cut"))
		assert.ErrorIs(t, r.Err(), kernel.ErrEmptyResult)
	})
	t.Run("several planes", func(t *testing.T) {
		planes := []geom.Plane{geom.AxisPlane(0, true, 0), geom.AxisPlane(1, true, 0)}
		c := b.ClipAll(world, planes, DefaultAttributes("cut")).MustGet()
		assert.InDelta(t, b.Volume()/4, c.Volume(), 1e-6)
	})
}

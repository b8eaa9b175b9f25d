package polyhedron

import (
	"math"
	"math/rand"
	"testing"

	"github.com/chazu/brushwork/pkg/geom"
	"github.com/chazu/brushwork/pkg/kernel"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cubeBounds(h float64) sdf.Box3 {
	return sdf.Box3{Min: v3.Vec{X: -h, Y: -h, Z: -h}, Max: v3.Vec{X: h, Y: h, Z: h}}
}

func cube(t *testing.T, h float64) *Polyhedron {
	t.Helper()
	p, err := Box(cubeBounds(h))
	require.NoError(t, err)
	return p
}

func assertCounts(t *testing.T, p *Polyhedron, v, e, f int) {
	t.Helper()
	assert.Equal(t, v, p.VertexCount(), "vertices")
	assert.Equal(t, e, p.EdgeCount(), "edges")
	assert.Equal(t, f, p.FaceCount(), "faces")
	assert.Equal(t, 2, p.VertexCount()-p.EdgeCount()+p.FaceCount(), "euler characteristic")
	assert.NoError(t, p.Validate())
}

func TestBox(t *testing.T) {
	p := cube(t, 32)
	assertCounts(t, p, 8, 12, 6)
	assert.Equal(t, cubeBounds(32), p.Bounds())
	assert.InDelta(t, 64*64*64, p.Volume(), 1e-6)
	assert.InDelta(t, 6*64*64, p.SurfaceArea(), 1e-6)
	assert.Equal(t, 12, p.Mesh().TriangleCount())

	for i, want := range []v3.Vec{{X: -1}, {X: 1}, {Y: -1}, {Y: 1}, {Z: -1}, {Z: 1}} {
		assert.Equal(t, want, p.Face(i).Plane.Normal)
		assert.Equal(t, NoTag, p.Face(i).Tag)
	}

	_, err := Box(sdf.Box3{Max: v3.Vec{X: 1, Y: 1}})
	assert.ErrorIs(t, err, kernel.ErrDegenerateGeometry)
}

func TestFromPointsCube(t *testing.T) {
	corners := geom.BoxCorners(cubeBounds(16))
	pts := append([]v3.Vec{}, corners[:]...)
	// Face centers, edge midpoints, the center and a duplicate corner must
	// all disappear.
	pts = append(pts,
		v3.Vec{Z: 16}, v3.Vec{X: 16}, v3.Vec{},
		v3.Vec{X: 16, Y: 16}, v3.Vec{X: -16, Z: -16},
		v3.Vec{X: 16, Y: 16, Z: 16 + geom.PointEpsilon/10},
	)
	p, err := FromPoints(pts)
	require.NoError(t, err)
	assertCounts(t, p, 8, 12, 6)
	assert.True(t, geom.BoxEquals(cubeBounds(16), p.Bounds(), 1e-9))
	assert.InDelta(t, 32*32*32, p.Volume(), 1e-6)
}

func TestFromPointsTetrahedron(t *testing.T) {
	p, err := FromPoints([]v3.Vec{{}, {X: 10}, {Y: 10}, {Z: 10}})
	require.NoError(t, err)
	assertCounts(t, p, 4, 6, 4)
	assert.InDelta(t, 1000.0/6, p.Volume(), 1e-9)
}

func TestFromPointsDegenerate(t *testing.T) {
	tests := []struct {
		name   string
		points []v3.Vec
	}{
		{"too few", []v3.Vec{{}, {X: 1}, {Y: 1}}},
		{"coincident", []v3.Vec{{}, {}, {X: geom.PointEpsilon / 2}, {}}},
		{"collinear", []v3.Vec{{}, {X: 1}, {X: 2}, {X: 3}, {X: 4}}},
		{"coplanar", []v3.Vec{{}, {X: 1}, {Y: 1}, {X: 1, Y: 1}, {X: 0.5, Y: 2}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromPoints(tt.points)
			assert.ErrorIs(t, err, kernel.ErrDegenerateGeometry)
		})
	}
}

func TestFromPointsSphereSample(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	var pts []v3.Vec
	for i := 0; i < 200; i++ {
		d := v3.Vec{X: rng.NormFloat64(), Y: rng.NormFloat64(), Z: rng.NormFloat64()}.Normalize()
		pts = append(pts, d.MulScalar(50))
	}
	// Interior points never become vertices.
	for i := 0; i < 50; i++ {
		pts = append(pts, v3.Vec{X: rng.Float64() * 10, Y: rng.Float64() * 10, Z: rng.Float64() * 10})
	}
	p, err := FromPoints(pts)
	require.NoError(t, err)
	assert.NoError(t, p.Validate())
	assert.LessOrEqual(t, p.VertexCount(), 200)
	for _, v := range p.Vertices() {
		assert.InDelta(t, 50, v.Length(), 1e-9)
	}
}

func TestClipEmptyResult(t *testing.T) {
	p := cube(t, 32)
	_, _, err := p.Clip(geom.AxisPlane(2, false, 40))
	assert.ErrorIs(t, err, kernel.ErrEmptyResult)

	// A plane touching the solid from outside removes everything but a
	// face, which is empty as well.
	_, _, err = p.Clip(geom.AxisPlane(2, false, 32))
	assert.ErrorIs(t, err, kernel.ErrEmptyResult)
}

func TestClipUnchanged(t *testing.T) {
	p := cube(t, 32)
	q, outcome, err := p.Clip(geom.AxisPlane(2, true, 100))
	require.NoError(t, err)
	assert.Equal(t, ClipUnchanged, outcome)
	assert.Same(t, p, q)

	q, outcome, err = p.ClipTagged(geom.AxisPlane(2, true, 32), 9)
	require.NoError(t, err)
	assert.Equal(t, ClipUnchanged, outcome)
	assertCounts(t, q, 8, 12, 6)
	top, ok := q.FindFace(v3.Vec{Z: 1})
	require.True(t, ok)
	assert.Equal(t, 9, q.Face(top).Tag, "coplanar face takes over the clip tag")
	assert.Equal(t, NoTag, p.Face(top).Tag, "receiver is untouched")
}

func TestClipSplitThroughMiddle(t *testing.T) {
	p := cube(t, 32)
	q, outcome, err := p.ClipTagged(geom.AxisPlane(0, true, 10), 3)
	require.NoError(t, err)
	assert.Equal(t, ClipSplit, outcome)
	assertCounts(t, q, 8, 12, 6)
	assert.InDelta(t, 42*64*64, q.Volume(), 1e-6)
	right, ok := q.FindFace(v3.Vec{X: 1})
	require.True(t, ok)
	assert.Equal(t, 3, q.Face(right).Tag)
	assert.Equal(t, 10.0, q.Bounds().Max.X)
}

func TestClipCornerAddsTriangle(t *testing.T) {
	p := cube(t, 32)
	n := v3.Vec{X: 1, Y: 1, Z: 1}.Normalize()
	pl, _ := geom.NewPlane(n, v3.Vec{X: 24, Y: 24, Z: 24})
	q, outcome, err := p.Clip(pl)
	require.NoError(t, err)
	assert.Equal(t, ClipSplit, outcome)
	assertCounts(t, q, 10, 15, 7)
	capFace, ok := q.FindFace(n)
	require.True(t, ok)
	assert.Len(t, q.Face(capFace).Loop, 3)
	assert.True(t, q.Face(capFace).Plane.Equals(pl, 1e-12))
}

func TestClipThroughVertices(t *testing.T) {
	p := cube(t, 32)
	pl, _ := geom.NewPlane(v3.Vec{X: 1, Y: 1}, v3.Vec{})
	q, _, err := p.Clip(pl)
	require.NoError(t, err)
	// Half a cube cut along its diagonal is a triangular prism.
	assertCounts(t, q, 6, 9, 5)
	assert.InDelta(t, 64*64*64/2, q.Volume(), 1e-6)
	assert.False(t, q.Contains(v3.Vec{X: 30, Y: 30}))
	assert.True(t, q.Contains(v3.Vec{X: -30, Y: -30}))
}

func TestFromPlanesOrderIndependent(t *testing.T) {
	bounds := cubeBounds(100)
	planes := []geom.Plane{
		geom.AxisPlane(2, false, 0),
		geom.AxisPlane(2, true, 40),
	}
	for i := 0; i < 6; i++ {
		a := 2 * math.Pi * float64(i) / 6
		pl, _ := geom.NewPlane(v3.Vec{X: math.Cos(a), Y: math.Sin(a), Z: 0.3}, v3.Vec{X: 30 * math.Cos(a), Y: 30 * math.Sin(a)})
		planes = append(planes, pl)
	}

	ref, err := FromPlanes(bounds, planes...)
	require.NoError(t, err)
	require.NoError(t, ref.Validate())

	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 10; trial++ {
		perm := rng.Perm(len(planes))
		shuffled := make([]geom.Plane, len(planes))
		for i, j := range perm {
			shuffled[i] = planes[j]
		}
		got, err := FromPlanes(bounds, shuffled...)
		require.NoError(t, err)
		assert.Equal(t, ref.VertexCount(), got.VertexCount())
		assert.Equal(t, ref.EdgeCount(), got.EdgeCount())
		assert.Equal(t, ref.FaceCount(), got.FaceCount())
		assert.InDelta(t, ref.Volume(), got.Volume(), 1e-6)
		for _, v := range ref.Vertices() {
			_, ok := got.FindVertex(v, 1e-6)
			assert.True(t, ok, "vertex %v missing after permutation %v", v, perm)
		}
		for i := 0; i < got.FaceCount(); i++ {
			f := got.Face(i)
			if f.Tag == NoTag {
				continue
			}
			assert.True(t, f.Plane.Equals(shuffled[f.Tag], 1e-9), "tag follows its plane")
		}
	}
}

func TestFromPlanesEmpty(t *testing.T) {
	_, err := FromPlanes(cubeBounds(10), geom.AxisPlane(0, true, -1), geom.AxisPlane(0, false, 1))
	assert.ErrorIs(t, err, kernel.ErrEmptyResult)
}

func TestClipSequencesStayValid(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for trial := 0; trial < 25; trial++ {
		p := cube(t, 64)
		for step := 0; step < 12; step++ {
			n := v3.Vec{X: rng.NormFloat64(), Y: rng.NormFloat64(), Z: rng.NormFloat64()}
			pl, ok := geom.NewPlane(n, v3.Vec{X: rng.Float64()*40 - 20, Y: rng.Float64()*40 - 20, Z: rng.Float64()*40 - 20})
			if !ok {
				continue
			}
			q, _, err := p.Clip(pl)
			if err != nil {
				kind := kernel.Kind(err)
				assert.True(t, kind == kernel.ErrEmptyResult || kind == kernel.ErrDegenerateGeometry, "unexpected %v", err)
				continue
			}
			require.NoError(t, q.Validate())
			assert.LessOrEqual(t, q.Volume(), p.Volume()+1e-6)
			for _, v := range q.Vertices() {
				assert.LessOrEqual(t, pl.SignedDistance(v), geom.PointEpsilon)
			}
			p = q
		}
	}
}

func TestTransformInvertible(t *testing.T) {
	p := cube(t, 32)
	n := v3.Vec{X: 1, Y: 2, Z: 3}.Normalize()
	pl, _ := geom.NewPlane(n, v3.Vec{X: 10, Y: 10, Z: 10})
	p, _, err := p.Clip(pl)
	require.NoError(t, err)

	matrices := map[string]sdf.M44{
		"translate": sdf.Translate3d(v3.Vec{X: 5, Y: -7, Z: 100}),
		"rotate":    sdf.Rotate3d(v3.Vec{X: 1, Y: 1}.Normalize(), 0.7),
		"scale":     sdf.Scale3d(v3.Vec{X: 2, Y: 0.5, Z: 3}),
		"mirror":    sdf.Scale3d(v3.Vec{X: -1, Y: 1, Z: 1}),
		"composite": sdf.Translate3d(v3.Vec{X: 3}).Mul(sdf.RotateZ(1.1)).Mul(sdf.Scale3d(v3.Vec{X: 1.5, Y: 1, Z: 0.25})),
	}
	for name, m := range matrices {
		t.Run(name, func(t *testing.T) {
			q, err := p.Transform(m)
			require.NoError(t, err)
			assert.InDelta(t, p.Volume()*math.Abs(Determinant(m)), q.Volume(), 1e-6)

			back, err := q.Transform(m.Inverse())
			require.NoError(t, err)
			require.Equal(t, p.VertexCount(), back.VertexCount())
			for i := 0; i < p.VertexCount(); i++ {
				assert.True(t, geom.Near(p.Vertex(i), back.Vertex(i), 1e-9), "vertex %d: %v vs %v", i, p.Vertex(i), back.Vertex(i))
			}
			for i := 0; i < p.FaceCount(); i++ {
				assert.True(t, back.Face(i).Plane.Equals(p.Face(i).Plane, 1e-9))
			}
		})
	}
}

func TestTransformRederivesNormals(t *testing.T) {
	p := cube(t, 1)
	n := v3.Vec{X: 1, Y: 1}.Normalize()
	pl, _ := geom.NewPlane(n, v3.Vec{X: 0.5, Y: 0.5})
	p, _, err := p.Clip(pl)
	require.NoError(t, err)

	q, err := p.Transform(sdf.Scale3d(v3.Vec{X: 4, Y: 1, Z: 1}))
	require.NoError(t, err)
	// The diagonal face normal under a non-uniform scale follows the
	// inverse transpose, not the scaled normal.
	want := v3.Vec{X: 0.25, Y: 1}.Normalize()
	_, ok := q.FindFace(want)
	assert.True(t, ok)
}

func TestTransformSingular(t *testing.T) {
	_, err := cube(t, 1).Transform(sdf.Scale3d(v3.Vec{X: 1, Y: 0, Z: 1}))
	assert.ErrorIs(t, err, kernel.ErrDegenerateGeometry)
}

func TestLookups(t *testing.T) {
	p := cube(t, 32)
	e, ok := p.FindEdge(geom.Seg(v3.Vec{X: 32, Y: 32, Z: 32.05}, v3.Vec{X: 32, Y: 32, Z: -32}), geom.HandleEpsilon)
	require.True(t, ok)
	f0, f1 := p.EdgeFaces(e)
	normals := []v3.Vec{f0.Plane.Normal, f1.Plane.Normal}
	assert.ElementsMatch(t, []v3.Vec{{X: 1}, {Y: 1}}, normals)

	_, ok = p.FindEdge(geom.Seg(v3.Vec{X: 32, Y: 32, Z: 32}, v3.Vec{X: -32, Y: -32, Z: -32}), geom.HandleEpsilon)
	assert.False(t, ok, "a diagonal is not an edge")

	v, ok := p.FindVertex(v3.Vec{X: -31.95, Y: -32, Z: -32}, geom.HandleEpsilon)
	require.True(t, ok)
	assert.Len(t, p.VertexEdges(v), 3)
	assert.Len(t, p.VertexFaces(v), 3)

	_, ok = p.FindFace(v3.Vec{Z: 5})
	assert.True(t, ok, "normals are normalized before matching")
	_, ok = p.FindFace(v3.Vec{X: 1, Z: 1})
	assert.False(t, ok)
}

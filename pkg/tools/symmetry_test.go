package tools

import (
	"testing"

	"github.com/chazu/brushwork/pkg/scene"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReflect(t *testing.T) {
	s := Symmetry{Axis: 0, Origin: v3.Vec{X: 4}}
	assert.Equal(t, v3.Vec{X: -2, Y: 2, Z: 3}, s.Reflect(v3.Vec{X: 10, Y: 2, Z: 3}))
	assert.Equal(t, v3.Vec{X: -1, Y: 2, Z: 3}, s.ReflectVector(v3.Vec{X: 1, Y: 2, Z: 3}))

	z := Symmetry{Axis: 2}
	p := v3.Vec{X: 1, Y: 2, Z: 3}
	assert.Equal(t, p, z.Reflect(z.Reflect(p)))
}

func TestMirrorSelection(t *testing.T) {
	f := newFixture(t)
	a := f.box("a", boxAt(v3.Vec{X: 66, Y: 5}, 16), scene.NodeID{})

	made, err := Symmetry{Axis: 0}.MirrorSelection(f.doc, []scene.NodeID{a}, false)
	require.NoError(t, err)
	require.Len(t, made, 1)
	assertBox(t, boxAt(v3.Vec{X: -66, Y: 5}, 16), f.bounds(made[0]))
	assert.Equal(t, 6, f.brush(made[0]).FaceCount())
	assert.Greater(t, f.brush(made[0]).Volume(), 0.0)

	_, err = Symmetry{Axis: 4}.MirrorSelection(f.doc, []scene.NodeID{a}, false)
	assert.Error(t, err)
}

func TestSymmetricMove(t *testing.T) {
	f := newFixture(t)
	right := f.box("right", boxAt(v3.Vec{X: 100}, 8), scene.NodeID{})
	left := f.box("left", boxAt(v3.Vec{X: -101}, 8), scene.NodeID{})
	other := f.box("other", boxAt(v3.Vec{Y: 300}, 8), scene.NodeID{})
	s := Symmetry{Axis: 0}

	got, err := s.Counterparts(f.doc, []scene.NodeID{right})
	require.NoError(t, err)
	assert.Equal(t, []scene.NodeID{left}, got)

	require.NoError(t, s.MoveSymmetric(f.doc, []scene.NodeID{right}, v3.Vec{X: 10, Y: 5}))
	assertBox(t, boxAt(v3.Vec{X: 110, Y: 5}, 8), f.bounds(right))
	assertBox(t, boxAt(v3.Vec{X: -111, Y: 5}, 8), f.bounds(left))
	assertBox(t, boxAt(v3.Vec{Y: 300}, 8), f.bounds(other))

	version := f.doc.Version()
	assert.ErrorContains(t, s.MoveSymmetric(f.doc, []scene.NodeID{right}, v3.Vec{X: 5000}), "leave the world")
	assert.Equal(t, version, f.doc.Version())
}

package scene

import (
	"errors"
	"sync"
	"testing"

	"github.com/chazu/brushwork/pkg/brush"
	"github.com/chazu/brushwork/pkg/polyhedron"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var world = sdf.Box3{
	Min: v3.Vec{X: -4096, Y: -4096, Z: -4096},
	Max: v3.Vec{X: 4096, Y: 4096, Z: 4096},
}

func cube(t *testing.T, h float64, material string) *brush.Brush {
	t.Helper()
	p, err := polyhedron.Box(sdf.Box3{Min: v3.Vec{X: -h, Y: -h, Z: -h}, Max: v3.Vec{X: h, Y: h, Z: h}})
	require.NoError(t, err)
	return brush.NewUniform(brush.FormatStandard, world, p, brush.DefaultAttributes(material)).MustGet()
}

// populate builds: layer "main" > group "props" > brush "crate", plus an
// entity "light" at the top level.
func populate(t *testing.T) *Document {
	t.Helper()
	doc := New(world)
	err := doc.Apply(func(tx *Tx) error {
		layer, err := tx.Add(NodeID{}, "main", LayerData{})
		if err != nil {
			return err
		}
		group, err := tx.Add(layer, "props", GroupData{Description: "boxes"})
		if err != nil {
			return err
		}
		if _, err := tx.AddBrush(group, "crate", cube(t, 16, "wood")); err != nil {
			return err
		}
		_, err = tx.Add(NodeID{}, "light", EntityData{Classname: "light", Origin: v3.Vec{Z: 64}})
		return err
	})
	require.NoError(t, err)
	return doc
}

func TestNodeID(t *testing.T) {
	id := NewNodeID()
	assert.False(t, id.IsZero())
	assert.True(t, NodeID{}.IsZero())
	assert.Len(t, id.Short(), 8)

	parsed, err := ParseNodeID(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, parsed)
	_, err = ParseNodeID("nope")
	assert.Error(t, err)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "layer", KindLayer.String())
	assert.Equal(t, "brush", KindBrush.String())
	assert.Equal(t, "unknown", Kind(42).String())
}

func TestApplyCommits(t *testing.T) {
	doc := populate(t)
	assert.Equal(t, uint64(1), doc.Version())
	assert.Equal(t, 4, doc.NodeCount())
	require.Len(t, doc.Roots(), 2)

	crate := doc.MustLookup("crate")
	assert.Equal(t, KindBrush, crate.Kind())
	props := doc.Get(crate.Parent)
	require.NotNil(t, props)
	assert.Equal(t, "props", props.Name)
	assert.Equal(t, []*Node{crate}, doc.Children(props))
	assert.Empty(t, doc.Validate())
}

func TestApplyIsAtomic(t *testing.T) {
	doc := populate(t)
	before := doc.MustLookup("crate")

	boom := errors.New("boom")
	err := doc.Apply(func(tx *Tx) error {
		require.NoError(t, tx.ReplaceBrush(before.ID, cube(t, 32, "stone")))
		_, err := tx.Add(NodeID{}, "extra", LayerData{})
		require.NoError(t, err)
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, uint64(1), doc.Version())
	assert.Nil(t, doc.Lookup("extra"))
	assert.Same(t, before, doc.MustLookup("crate"), "committed nodes are untouched")
	assert.Equal(t, "wood", before.Data.(BrushData).Brush.FaceAttributes(0).Material)
}

func TestReplaceBrush(t *testing.T) {
	doc := populate(t)
	old := doc.MustLookup("crate")
	require.NoError(t, doc.Apply(func(tx *Tx) error {
		return tx.ReplaceBrush(old.ID, cube(t, 32, "stone"))
	}))
	now := doc.MustLookup("crate")
	assert.NotSame(t, old, now)
	assert.Equal(t, old.ID, now.ID)
	assert.Equal(t, "stone", now.Data.(BrushData).Brush.FaceAttributes(0).Material)
	assert.Equal(t, "wood", old.Data.(BrushData).Brush.FaceAttributes(0).Material)

	err := doc.Apply(func(tx *Tx) error {
		return tx.Replace(old.ID, GroupData{})
	})
	assert.Error(t, err, "kind changes are refused")
}

func TestTxErrors(t *testing.T) {
	doc := populate(t)
	crate := doc.MustLookup("crate")
	tests := []struct {
		name string
		fn   func(tx *Tx) error
	}{
		{"duplicate name", func(tx *Tx) error {
			_, err := tx.Add(NodeID{}, "crate", LayerData{})
			return err
		}},
		{"missing parent", func(tx *Tx) error {
			_, err := tx.Add(NewNodeID(), "", LayerData{})
			return err
		}},
		{"child of brush", func(tx *Tx) error {
			_, err := tx.Add(crate.ID, "", GroupData{})
			return err
		}},
		{"nil data", func(tx *Tx) error {
			_, err := tx.Add(NodeID{}, "", nil)
			return err
		}},
		{"remove missing", func(tx *Tx) error { return tx.Remove(NewNodeID()) }},
		{"rename onto taken name", func(tx *Tx) error { return tx.Rename(crate.ID, "light") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, doc.Apply(tt.fn))
			assert.Equal(t, uint64(1), doc.Version())
		})
	}
}

func TestRejectedAddLeavesParentUntouched(t *testing.T) {
	doc := populate(t)
	crate := doc.MustLookup("crate")
	require.NoError(t, doc.Apply(func(tx *Tx) error {
		_, err := tx.Add(crate.ID, "", GroupData{})
		assert.ErrorContains(t, err, "cannot have children")
		_, err = tx.Add(NewNodeID(), "", GroupData{})
		assert.ErrorContains(t, err, "does not exist")
		return nil
	}))
	assert.Equal(t, uint64(1), doc.Version())
	assert.Same(t, crate, doc.Get(crate.ID))
	assert.Empty(t, doc.Get(crate.ID).Children)
}

func TestRemoveSubtree(t *testing.T) {
	doc := populate(t)
	layer := doc.MustLookup("main")
	require.NoError(t, doc.Apply(func(tx *Tx) error { return tx.Remove(layer.ID) }))
	assert.Equal(t, 1, doc.NodeCount())
	assert.Nil(t, doc.Lookup("crate"))
	assert.Nil(t, doc.Lookup("props"))
	assert.Len(t, doc.Roots(), 1)
	assert.Empty(t, doc.Validate())

	require.NoError(t, doc.Apply(func(tx *Tx) error {
		_, err := tx.Add(NodeID{}, "crate", LayerData{})
		return err
	}), "names are freed")
}

func TestRename(t *testing.T) {
	doc := populate(t)
	crate := doc.MustLookup("crate")
	require.NoError(t, doc.Apply(func(tx *Tx) error { return tx.Rename(crate.ID, "box") }))
	assert.Nil(t, doc.Lookup("crate"))
	assert.Equal(t, crate.ID, doc.MustLookup("box").ID)
}

func TestMove(t *testing.T) {
	doc := populate(t)
	main, props, crate := doc.MustLookup("main"), doc.MustLookup("props"), doc.MustLookup("crate")

	require.NoError(t, doc.Apply(func(tx *Tx) error { return tx.Move(crate.ID, main.ID) }))
	assert.Equal(t, main.ID, doc.Get(crate.ID).Parent)
	assert.Contains(t, doc.Get(main.ID).Children, crate.ID)
	assert.NotContains(t, doc.Get(props.ID).Children, crate.ID)
	assert.Empty(t, doc.Validate())

	require.NoError(t, doc.Apply(func(tx *Tx) error { return tx.Move(props.ID, NodeID{}) }))
	assert.Len(t, doc.Roots(), 3)
	assert.True(t, doc.Get(props.ID).Parent.IsZero())

	err := doc.Apply(func(tx *Tx) error { return tx.Move(main.ID, crate.ID) })
	assert.ErrorContains(t, err, "cannot have children")
	require.NoError(t, doc.Apply(func(tx *Tx) error { return tx.Move(props.ID, main.ID) }))
	err = doc.Apply(func(tx *Tx) error { return tx.Move(main.ID, props.ID) })
	assert.ErrorContains(t, err, "own subtree")
	err = doc.Apply(func(tx *Tx) error { return tx.Move(NewNodeID(), main.ID) })
	assert.ErrorContains(t, err, "does not exist")
}

func TestMustLookupPanics(t *testing.T) {
	doc := New(world)
	assert.Panics(t, func() { doc.MustLookup("ghost") })
}

func TestEmptyTransactionDoesNotBumpVersion(t *testing.T) {
	doc := populate(t)
	require.NoError(t, doc.Apply(func(tx *Tx) error {
		assert.NotNil(t, tx.Lookup("crate"))
		return nil
	}))
	assert.Equal(t, uint64(1), doc.Version())
}

func TestWalkOrderAndDispatch(t *testing.T) {
	doc := populate(t)
	var order []string
	v := &recorder{visit: func(n *Node) { order = append(order, n.Kind().String()+":"+n.Name) }}
	require.NoError(t, doc.Walk(v))
	assert.Equal(t, []string{"layer:main", "group:props", "brush:crate", "entity:light"}, order)

	counts := Counter{}
	require.NoError(t, doc.Walk(counts))
	assert.Equal(t, Counter{KindLayer: 1, KindGroup: 1, KindBrush: 1, KindEntity: 1}, counts)

	brushes := doc.Brushes()
	require.Len(t, brushes, 1)
	assert.Equal(t, "crate", brushes[0].Name)

	order = nil
	require.NoError(t, doc.WalkFrom(doc.MustLookup("props").ID, v))
	assert.Equal(t, []string{"group:props", "brush:crate"}, order)
	assert.Error(t, doc.WalkFrom(NewNodeID(), v))
}

func TestWalkSkipChildrenAndErrors(t *testing.T) {
	doc := populate(t)
	var seen []string
	v := &recorder{
		visit: func(n *Node) { seen = append(seen, n.Name) },
		skip:  map[Kind]bool{KindGroup: true},
	}
	require.NoError(t, doc.Walk(v))
	assert.Equal(t, []string{"main", "props", "light"}, seen)

	boom := errors.New("boom")
	err := doc.Walk(&recorder{visit: func(*Node) {}, fail: boom})
	assert.ErrorIs(t, err, boom)
}

func TestValidateFindings(t *testing.T) {
	doc := populate(t)
	require.NoError(t, doc.Apply(func(tx *Tx) error {
		_, err := tx.AddBrush(NodeID{}, "blank", cube(t, 8, ""))
		return err
	}))
	findings := doc.Validate()
	require.Len(t, findings, 1)
	assert.Equal(t, SeverityWarning, findings[0].Severity)
	assert.Contains(t, findings[0].Error(), "without material")

	small := New(sdf.Box3{Min: v3.Vec{X: -8, Y: -8, Z: -8}, Max: v3.Vec{X: 8, Y: 8, Z: 8}})
	err := small.Apply(func(tx *Tx) error {
		_, err := tx.AddBrush(NodeID{}, "", cube(t, 16, "wood"))
		return err
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "world bounds")
	assert.Equal(t, 0, small.NodeCount())

	err = doc.Apply(func(tx *Tx) error {
		_, err := tx.Add(NodeID{}, "", BrushData{})
		return err
	})
	assert.Error(t, err)
}

func TestValidateDetectsCorruption(t *testing.T) {
	a, b := NewNodeID(), NewNodeID()
	s := &state{
		nodes: map[NodeID]*Node{
			a: {ID: a, Name: "a", Children: []NodeID{b}, Data: GroupData{}},
			b: {ID: b, Name: "a", Parent: a, Children: []NodeID{a}, Data: GroupData{}},
		},
		roots: []NodeID{a},
		names: map[string]NodeID{"a": a, "ghost": NewNodeID()},
	}
	msgs := make([]string, 0)
	for _, e := range validate(s, world) {
		msgs = append(msgs, e.Message)
	}
	assert.Contains(t, msgs, "cycle detected: node is its own ancestor")
	assert.Contains(t, msgs, `duplicate name "a"`)
	assert.Contains(t, msgs, `name index entry "ghost" is stale`)
}

func TestConcurrentReaders(t *testing.T) {
	doc := populate(t)
	crate := doc.MustLookup("crate").ID
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				assert.Len(t, doc.Brushes(), 1)
			}
		}()
	}
	for i := 0; i < 20; i++ {
		require.NoError(t, doc.Apply(func(tx *Tx) error {
			return tx.ReplaceBrush(crate, cube(t, float64(8+i), "wood"))
		}))
	}
	wg.Wait()
	assert.Equal(t, uint64(21), doc.Version())
}

// recorder visits every kind the same way.
type recorder struct {
	visit func(*Node)
	skip  map[Kind]bool
	fail  error
}

func (r *recorder) handle(n *Node) error {
	r.visit(n)
	if r.fail != nil {
		return r.fail
	}
	if r.skip[n.Kind()] {
		return SkipChildren
	}
	return nil
}

func (r *recorder) VisitLayer(n *Node, _ LayerData) error   { return r.handle(n) }
func (r *recorder) VisitGroup(n *Node, _ GroupData) error   { return r.handle(n) }
func (r *recorder) VisitEntity(n *Node, _ EntityData) error { return r.handle(n) }
func (r *recorder) VisitBrush(n *Node, _ BrushData) error   { return r.handle(n) }

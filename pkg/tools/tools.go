// Package tools implements the editing tools of the level editor on top of
// the scene document: arrays, alignment, randomization, path extrusion,
// bridges, terrain, measurement, snapping, symmetry and the edge and face
// tools.
//
// Every tool that edits runs inside a single Document.Apply, so it either
// changes the document as a whole or not at all.
package tools

import (
	"errors"
	"fmt"
	"maps"
	"math"

	"github.com/chazu/brushwork/pkg/geom"
	"github.com/chazu/brushwork/pkg/scene"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/samber/lo"
)

// ErrEmptySelection is returned by tools given nothing to work on.
var ErrEmptySelection = errors.New("empty selection")

// reader is the read side shared by scene.Document and scene.Tx.
type reader interface {
	Get(id scene.NodeID) *scene.Node
	Walk(v scene.Visitor) error
}

// nodeCollector gathers every node it visits.
type nodeCollector []*scene.Node

func (c *nodeCollector) VisitLayer(n *scene.Node, _ scene.LayerData) error {
	*c = append(*c, n)
	return nil
}

func (c *nodeCollector) VisitGroup(n *scene.Node, _ scene.GroupData) error {
	*c = append(*c, n)
	return nil
}

func (c *nodeCollector) VisitEntity(n *scene.Node, _ scene.EntityData) error {
	*c = append(*c, n)
	return nil
}

func (c *nodeCollector) VisitBrush(n *scene.Node, _ scene.BrushData) error {
	*c = append(*c, n)
	return nil
}

// transformer computes the transformed payload of one node.
type transformer struct {
	world sdf.Box3
	m     sdf.M44
	lock  bool
	out   scene.NodeData
}

func (t *transformer) VisitLayer(_ *scene.Node, d scene.LayerData) error {
	t.out = d
	return nil
}

func (t *transformer) VisitGroup(_ *scene.Node, d scene.GroupData) error {
	t.out = d
	return nil
}

func (t *transformer) VisitEntity(_ *scene.Node, d scene.EntityData) error {
	d.Origin = t.m.MulPosition(d.Origin)
	d.Properties = maps.Clone(d.Properties)
	t.out = d
	return nil
}

func (t *transformer) VisitBrush(n *scene.Node, d scene.BrushData) error {
	b, err := d.Brush.Transform(t.world, t.m, t.lock).Get()
	if err != nil {
		return fmt.Errorf("brush %s: %w", label(n), err)
	}
	t.out = scene.BrushData{Brush: b}
	return nil
}

func transformData(n *scene.Node, world sdf.Box3, m sdf.M44, lock bool) (scene.NodeData, error) {
	t := &transformer{world: world, m: m, lock: lock}
	if err := n.Accept(t); err != nil {
		return nil, err
	}
	return t.out, nil
}

// duplicate copies the subtree at id under parent, transformed by m.
// Copies are unnamed.
func duplicate(tx *scene.Tx, world sdf.Box3, id, parent scene.NodeID, m sdf.M44, lock bool) (scene.NodeID, error) {
	n := tx.Get(id)
	if n == nil {
		return scene.NodeID{}, fmt.Errorf("node %s does not exist", id.Short())
	}
	data, err := transformData(n, world, m, lock)
	if err != nil {
		return scene.NodeID{}, err
	}
	cp, err := tx.Add(parent, "", data)
	if err != nil {
		return scene.NodeID{}, err
	}
	for _, c := range n.Children {
		if _, err := duplicate(tx, world, c, cp, m, lock); err != nil {
			return scene.NodeID{}, err
		}
	}
	return cp, nil
}

// transformSubtree replaces the subtree at id with its image under m.
func transformSubtree(tx *scene.Tx, world sdf.Box3, id scene.NodeID, m sdf.M44, lock bool) error {
	n := tx.Get(id)
	if n == nil {
		return fmt.Errorf("node %s does not exist", id.Short())
	}
	data, err := transformData(n, world, m, lock)
	if err != nil {
		return err
	}
	if err := tx.Replace(id, data); err != nil {
		return err
	}
	for _, c := range n.Children {
		if err := transformSubtree(tx, world, c, m, lock); err != nil {
			return err
		}
	}
	return nil
}

// nodeBounds returns the bounds of the subtree at id. Entities count as
// their origin; empty containers have no bounds.
func nodeBounds(r reader, id scene.NodeID) (sdf.Box3, bool) {
	n := r.Get(id)
	if n == nil {
		return sdf.Box3{}, false
	}
	var box sdf.Box3
	ok := false
	switch d := n.Data.(type) {
	case scene.BrushData:
		box, ok = d.Brush.Bounds(), true
	case scene.EntityData:
		box, ok = sdf.Box3{Min: d.Origin, Max: d.Origin}, true
	}
	for _, c := range n.Children {
		cb, cok := nodeBounds(r, c)
		switch {
		case !cok:
		case ok:
			box = geom.BoxUnion(box, cb)
		default:
			box, ok = cb, true
		}
	}
	return box, ok
}

// selectionBounds returns the union of the bounds of ids.
func selectionBounds(r reader, ids []scene.NodeID) (sdf.Box3, bool) {
	var box sdf.Box3
	ok := false
	for _, id := range ids {
		b, bok := nodeBounds(r, id)
		switch {
		case !bok:
		case ok:
			box = geom.BoxUnion(box, b)
		default:
			box, ok = b, true
		}
	}
	return box, ok
}

// normalize drops duplicates and nodes whose ancestor is also selected, and
// checks that every node exists.
func normalize(r reader, sel []scene.NodeID) ([]scene.NodeID, error) {
	sel = lo.Uniq(sel)
	if len(sel) == 0 {
		return nil, ErrEmptySelection
	}
	picked := lo.SliceToMap(sel, func(id scene.NodeID) (scene.NodeID, bool) { return id, true })
	var out []scene.NodeID
	for _, id := range sel {
		n := r.Get(id)
		if n == nil {
			return nil, fmt.Errorf("node %s does not exist", id.Short())
		}
		covered := false
		for p := r.Get(n.Parent); p != nil; p = r.Get(p.Parent) {
			if picked[p.ID] {
				covered = true
				break
			}
		}
		if !covered {
			out = append(out, id)
		}
	}
	return out, nil
}

// translation returns the translation by delta along axis.
func translation(axis int, delta float64) sdf.M44 {
	return sdf.Translate3d(geom.WithComponent(v3.Vec{}, axis, delta))
}

// boxCoord returns the min, center or max coordinate of b along axis.
func boxCoord(b sdf.Box3, axis int, mode AlignMode) float64 {
	switch mode {
	case AlignMin:
		return geom.Component(b.Min, axis)
	case AlignMax:
		return geom.Component(b.Max, axis)
	default:
		return geom.Component(b.Center(), axis)
	}
}

func label(n *scene.Node) string {
	if n.Name != "" {
		return fmt.Sprintf("%q", n.Name)
	}
	return n.ID.Short()
}

func checkAxis(axis int) error {
	if axis < 0 || axis > 2 {
		return fmt.Errorf("invalid axis %d", axis)
	}
	return nil
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// roundTo rounds v to the nearest multiple of step.
func roundTo(v, step float64) float64 {
	return math.Round(v/step) * step
}

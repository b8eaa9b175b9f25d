package tools

import (
	"fmt"

	"github.com/chazu/brushwork/pkg/brush"
	"github.com/chazu/brushwork/pkg/geom"
	"github.com/chazu/brushwork/pkg/scene"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// counterpartTolerance is how far a node's center may be from the mirror
// image of a selected node's center for the two to count as symmetric.
const counterpartTolerance = 2.0

// Symmetry mirrors across the plane through Origin perpendicular to Axis.
type Symmetry struct {
	Axis   int
	Origin v3.Vec
}

// Reflect returns the mirror image of point p.
func (s Symmetry) Reflect(p v3.Vec) v3.Vec {
	local := p.Sub(s.Origin)
	return s.ReflectVector(local).Add(s.Origin)
}

// ReflectVector returns the mirror image of the direction v.
func (s Symmetry) ReflectVector(v v3.Vec) v3.Vec {
	return geom.WithComponent(v, s.Axis, -geom.Component(v, s.Axis))
}

func (s Symmetry) matrix() sdf.M44 {
	return brush.MirrorMatrix(s.Axis, s.Origin)
}

// Counterparts returns, for each selected node, the first unselected node
// whose center lies near the mirror image of the selected node's center.
// Selected nodes without a counterpart are skipped.
func (s Symmetry) Counterparts(doc *scene.Document, sel []scene.NodeID) ([]scene.NodeID, error) {
	if err := checkAxis(s.Axis); err != nil {
		return nil, err
	}
	nodes, err := normalize(doc, sel)
	if err != nil {
		return nil, err
	}
	return s.counterparts(doc, nodes), nil
}

func (s Symmetry) counterparts(r reader, nodes []scene.NodeID) []scene.NodeID {
	selected := map[scene.NodeID]bool{}
	for _, n := range subtree(r, nodes) {
		selected[n.ID] = true
	}
	var all nodeCollector
	_ = r.Walk(&all)
	var out []scene.NodeID
	taken := map[scene.NodeID]bool{}
	for _, id := range nodes {
		b, ok := nodeBounds(r, id)
		if !ok {
			continue
		}
		target := s.Reflect(b.Center())
		for _, c := range all {
			if selected[c.ID] || taken[c.ID] || c.Kind() == scene.KindLayer {
				continue
			}
			cb, ok := nodeBounds(r, c.ID)
			if ok && Distance(cb.Center(), target) < counterpartTolerance {
				taken[c.ID] = true
				out = append(out, c.ID)
				break
			}
		}
	}
	return out
}

// MoveSymmetric translates the selection by delta and its counterparts by
// the mirrored delta. The move is refused if the selection would leave the
// world.
func (s Symmetry) MoveSymmetric(doc *scene.Document, sel []scene.NodeID, delta v3.Vec) error {
	if err := checkAxis(s.Axis); err != nil {
		return fmt.Errorf("symmetric move: %w", err)
	}
	world := doc.WorldBounds()
	err := doc.Apply(func(tx *scene.Tx) error {
		nodes, err := normalize(tx, sel)
		if err != nil {
			return err
		}
		if b, ok := selectionBounds(tx, nodes); ok {
			moved := sdf.Box3{Min: b.Min.Add(delta), Max: b.Max.Add(delta)}
			if !geom.BoxContains(world, moved, geom.PointEpsilon) {
				return fmt.Errorf("selection would leave the world")
			}
		}
		mirrored := s.counterparts(tx, nodes)
		for _, id := range nodes {
			if err := transformSubtree(tx, world, id, sdf.Translate3d(delta), true); err != nil {
				return err
			}
		}
		for _, id := range mirrored {
			if err := transformSubtree(tx, world, id, sdf.Translate3d(s.ReflectVector(delta)), true); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("symmetric move: %w", err)
	}
	return nil
}

// MirrorSelection adds a mirrored copy of each selected node next to it and
// returns the copies.
func (s Symmetry) MirrorSelection(doc *scene.Document, sel []scene.NodeID, lockTextures bool) ([]scene.NodeID, error) {
	if err := checkAxis(s.Axis); err != nil {
		return nil, fmt.Errorf("mirror selection: %w", err)
	}
	var made []scene.NodeID
	err := doc.Apply(func(tx *scene.Tx) error {
		nodes, err := normalize(tx, sel)
		if err != nil {
			return err
		}
		for _, id := range nodes {
			cp, err := duplicate(tx, doc.WorldBounds(), id, tx.Get(id).Parent, s.matrix(), lockTextures)
			if err != nil {
				return err
			}
			made = append(made, cp)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("mirror selection: %w", err)
	}
	return made, nil
}

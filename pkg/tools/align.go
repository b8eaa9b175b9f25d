package tools

import (
	"fmt"
	"math"
	"sort"

	"github.com/chazu/brushwork/pkg/geom"
	"github.com/chazu/brushwork/pkg/scene"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// AlignMode selects which side of a bounding box is aligned.
type AlignMode int

const (
	AlignMin AlignMode = iota
	AlignCenter
	AlignMax
)

func (m AlignMode) String() string {
	switch m {
	case AlignMin:
		return "min"
	case AlignCenter:
		return "center"
	case AlignMax:
		return "max"
	default:
		return fmt.Sprintf("AlignMode(%d)", int(m))
	}
}

// moveEpsilon is the smallest displacement the alignment tools apply.
const moveEpsilon = 0.001

// Align moves every selected node along axis so that the mode side of its
// bounds matches the same side of the selection's bounds. With toFirst the
// first selected node is the reference and stays put.
func Align(doc *scene.Document, sel []scene.NodeID, axis int, mode AlignMode, toFirst bool) error {
	if err := checkAxis(axis); err != nil {
		return fmt.Errorf("align: %w", err)
	}
	err := doc.Apply(func(tx *scene.Tx) error {
		nodes, err := normalize(tx, sel)
		if err != nil {
			return err
		}
		if len(nodes) < 2 && !toFirst {
			return nil
		}
		var ref sdf.Box3
		var ok bool
		if toFirst {
			ref, ok = nodeBounds(tx, nodes[0])
			nodes = nodes[1:]
		} else {
			ref, ok = selectionBounds(tx, nodes)
		}
		if !ok {
			return fmt.Errorf("reference has no bounds")
		}
		target := boxCoord(ref, axis, mode)
		for _, id := range nodes {
			b, ok := nodeBounds(tx, id)
			if !ok {
				continue
			}
			if err := shift(tx, doc.WorldBounds(), id, axis, target-boxCoord(b, axis, mode)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("align: %w", err)
	}
	return nil
}

// Distribute spreads the selection along axis. Nodes are ordered by their
// center; the first and last stay put and the ones between are placed at
// even steps, or spacing apart when spacing is positive. Fewer than three
// nodes are left alone.
func Distribute(doc *scene.Document, sel []scene.NodeID, axis int, spacing float64) error {
	if err := checkAxis(axis); err != nil {
		return fmt.Errorf("distribute: %w", err)
	}
	err := doc.Apply(func(tx *scene.Tx) error {
		nodes, err := normalize(tx, sel)
		if err != nil {
			return err
		}
		type placed struct {
			id     scene.NodeID
			center float64
		}
		var items []placed
		for _, id := range nodes {
			if b, ok := nodeBounds(tx, id); ok {
				items = append(items, placed{id, boxCoord(b, axis, AlignCenter)})
			}
		}
		if len(items) < 3 {
			return nil
		}
		sort.SliceStable(items, func(i, j int) bool { return items[i].center < items[j].center })
		start := items[0].center
		step := spacing
		if step <= 0 {
			step = (items[len(items)-1].center - start) / float64(len(items)-1)
		}
		for i := 1; i < len(items)-1; i++ {
			delta := start + step*float64(i) - items[i].center
			if err := shift(tx, doc.WorldBounds(), items[i].id, axis, delta); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("distribute: %w", err)
	}
	return nil
}

// AlignToGrid snaps the mode side of each selected node's bounds to the
// nearest multiple of gridSize along axis, or along every axis when axis
// is -1.
func AlignToGrid(doc *scene.Document, sel []scene.NodeID, axis int, mode AlignMode, gridSize float64) error {
	if gridSize <= 0 {
		return fmt.Errorf("align to grid: grid size %v", gridSize)
	}
	axes := []int{axis}
	if axis == -1 {
		axes = []int{0, 1, 2}
	} else if err := checkAxis(axis); err != nil {
		return fmt.Errorf("align to grid: %w", err)
	}
	err := doc.Apply(func(tx *scene.Tx) error {
		nodes, err := normalize(tx, sel)
		if err != nil {
			return err
		}
		for _, id := range nodes {
			b, ok := nodeBounds(tx, id)
			if !ok {
				continue
			}
			var delta v3.Vec
			for _, a := range axes {
				c := boxCoord(b, a, mode)
				delta = geom.WithComponent(delta, a, roundTo(c, gridSize)-c)
			}
			if geom.IsZero(delta, moveEpsilon) {
				continue
			}
			if err := transformSubtree(tx, doc.WorldBounds(), id, sdf.Translate3d(delta), false); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("align to grid: %w", err)
	}
	return nil
}

// shift moves the subtree at id by delta along axis, ignoring tiny moves.
func shift(tx *scene.Tx, world sdf.Box3, id scene.NodeID, axis int, delta float64) error {
	if math.Abs(delta) <= moveEpsilon {
		return nil
	}
	return transformSubtree(tx, world, id, translation(axis, delta), false)
}

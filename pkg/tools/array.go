package tools

import (
	"fmt"

	"github.com/chazu/brushwork/pkg/geom"
	"github.com/chazu/brushwork/pkg/logging"
	"github.com/chazu/brushwork/pkg/scene"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// ArrayOptions controls how array copies are placed.
type ArrayOptions struct {
	// Group gathers the originals and all copies under a new group.
	Group bool
	// GroupName names the new group. Empty leaves it unnamed.
	GroupName string
	// LockTextures keeps textures fixed to the copied brushes.
	LockTextures bool
}

// LinearArray copies the selection count times, copy i displaced by
// offset*i. It returns the IDs of the copies, or of the new group when
// opts.Group is set.
func LinearArray(doc *scene.Document, sel []scene.NodeID, count int, offset v3.Vec, opts ArrayOptions) ([]scene.NodeID, error) {
	if count < 1 {
		return nil, fmt.Errorf("linear array: count %d", count)
	}
	steps := make([]sdf.M44, count)
	for i := range steps {
		steps[i] = sdf.Translate3d(offset.MulScalar(float64(i + 1)))
	}
	return array(doc, "linear array", sel, steps, opts)
}

// GridArray lays copies of the selection out on a grid of counts cells per
// axis. Cells are the selection's size plus spacing apart; cell (0,0,0)
// holds the originals.
func GridArray(doc *scene.Document, sel []scene.NodeID, counts [3]int, spacing v3.Vec, opts ArrayOptions) ([]scene.NodeID, error) {
	for axis, c := range counts {
		if c < 1 {
			return nil, fmt.Errorf("grid array: count %d on axis %d", c, axis)
		}
	}
	if counts == [3]int{1, 1, 1} {
		return nil, fmt.Errorf("grid array: a 1x1x1 grid makes no copies")
	}
	bounds, ok := selectionBounds(doc, sel)
	if !ok {
		return nil, fmt.Errorf("grid array: %w", ErrEmptySelection)
	}
	step := bounds.Size().Add(spacing)
	var steps []sdf.M44
	for x := 0; x < counts[0]; x++ {
		for y := 0; y < counts[1]; y++ {
			for z := 0; z < counts[2]; z++ {
				if x == 0 && y == 0 && z == 0 {
					continue
				}
				cell := v3.Vec{X: float64(x), Y: float64(y), Z: float64(z)}
				steps = append(steps, sdf.Translate3d(cell.Mul(step)))
			}
		}
	}
	return array(doc, "grid array", sel, steps, opts)
}

// RadialArray copies the selection count times around the line through
// center along axis. Copy i is rotated by totalDegrees/count*i, so a full
// turn of count copies ends on top of the originals.
func RadialArray(doc *scene.Document, sel []scene.NodeID, count int, center v3.Vec, axis int, totalDegrees float64, opts ArrayOptions) ([]scene.NodeID, error) {
	if count < 1 {
		return nil, fmt.Errorf("radial array: count %d", count)
	}
	if err := checkAxis(axis); err != nil {
		return nil, fmt.Errorf("radial array: %w", err)
	}
	inc := radians(totalDegrees) / float64(count)
	steps := make([]sdf.M44, count)
	for i := range steps {
		steps[i] = rotationAbout(center, geom.AxisVector(axis), inc*float64(i+1))
	}
	return array(doc, "radial array", sel, steps, opts)
}

// rotationAbout rotates by angle radians around the line through center
// along dir.
func rotationAbout(center, dir v3.Vec, angle float64) sdf.M44 {
	return sdf.Translate3d(center).Mul(sdf.Rotate3d(dir, angle)).Mul(sdf.Translate3d(center.Neg()))
}

func array(doc *scene.Document, op string, sel []scene.NodeID, steps []sdf.M44, opts ArrayOptions) ([]scene.NodeID, error) {
	var made []scene.NodeID
	err := doc.Apply(func(tx *scene.Tx) error {
		nodes, err := normalize(tx, sel)
		if err != nil {
			return err
		}
		world := doc.WorldBounds()
		for i, m := range steps {
			for _, id := range nodes {
				cp, err := duplicate(tx, world, id, tx.Get(id).Parent, m, opts.LockTextures)
				if err != nil {
					return fmt.Errorf("copy %d: %w", i+1, err)
				}
				made = append(made, cp)
			}
		}
		if !opts.Group {
			return nil
		}
		group, err := tx.Add(tx.Get(nodes[0]).Parent, opts.GroupName, scene.GroupData{Description: op})
		if err != nil {
			return err
		}
		for _, id := range append(nodes, made...) {
			if err := tx.Move(id, group); err != nil {
				return err
			}
		}
		made = []scene.NodeID{group}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	logging.For("tools").Debugf("%s: %d copies", op, len(steps))
	return made, nil
}

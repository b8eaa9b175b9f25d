package tools

import (
	"fmt"
	"math/rand/v2"

	"github.com/chazu/brushwork/pkg/scene"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// RandomizeOptions bounds the random transform applied to each selected
// node. Rotations are in degrees about the X, Y and Z axes. Every range is
// inclusive and Min must not exceed Max.
type RandomizeOptions struct {
	TranslateMin, TranslateMax v3.Vec
	RotateMin, RotateMax       v3.Vec
	ScaleMin, ScaleMax         v3.Vec
	// Seed makes the result reproducible.
	Seed uint64
}

// DefaultRandomizeOptions returns options that leave nodes unchanged.
func DefaultRandomizeOptions() RandomizeOptions {
	one := v3.Vec{X: 1, Y: 1, Z: 1}
	return RandomizeOptions{ScaleMin: one, ScaleMax: one}
}

func (o RandomizeOptions) validate() error {
	pairs := []struct {
		name     string
		min, max v3.Vec
	}{
		{"translate", o.TranslateMin, o.TranslateMax},
		{"rotate", o.RotateMin, o.RotateMax},
		{"scale", o.ScaleMin, o.ScaleMax},
	}
	for _, p := range pairs {
		if p.min.X > p.max.X || p.min.Y > p.max.Y || p.min.Z > p.max.Z {
			return fmt.Errorf("%s range [%v %v] is inverted", p.name, p.min, p.max)
		}
	}
	if o.ScaleMin.X <= 0 || o.ScaleMin.Y <= 0 || o.ScaleMin.Z <= 0 {
		return fmt.Errorf("scale %v must be positive", o.ScaleMin)
	}
	return nil
}

// Randomize moves, rotates and scales each selected node about the center
// of its bounds by amounts drawn from opts. A node's children receive the
// same transform as the node.
func Randomize(doc *scene.Document, sel []scene.NodeID, opts RandomizeOptions) error {
	if err := opts.validate(); err != nil {
		return fmt.Errorf("randomize: %w", err)
	}
	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))
	between := func(lo, hi v3.Vec) v3.Vec {
		return v3.Vec{
			X: lo.X + rng.Float64()*(hi.X-lo.X),
			Y: lo.Y + rng.Float64()*(hi.Y-lo.Y),
			Z: lo.Z + rng.Float64()*(hi.Z-lo.Z),
		}
	}
	err := doc.Apply(func(tx *scene.Tx) error {
		nodes, err := normalize(tx, sel)
		if err != nil {
			return err
		}
		for _, id := range nodes {
			t := between(opts.TranslateMin, opts.TranslateMax)
			r := between(opts.RotateMin, opts.RotateMax)
			s := between(opts.ScaleMin, opts.ScaleMax)
			b, ok := nodeBounds(tx, id)
			if !ok {
				continue
			}
			center := b.Center()
			m := sdf.Translate3d(center.Add(t)).
				Mul(sdf.RotateZ(radians(r.Z))).
				Mul(sdf.RotateY(radians(r.Y))).
				Mul(sdf.RotateX(radians(r.X))).
				Mul(sdf.Scale3d(s)).
				Mul(sdf.Translate3d(center.Neg()))
			if err := transformSubtree(tx, doc.WorldBounds(), id, m, false); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("randomize: %w", err)
	}
	return nil
}

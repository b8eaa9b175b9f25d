package tools

import (
	"fmt"
	"math"

	"github.com/chazu/brushwork/pkg/geom"
	"github.com/chazu/brushwork/pkg/logging"
	"github.com/chazu/brushwork/pkg/scene"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/samber/lo"
)

// minPathScale is the smallest scale PathExtrude applies.
const minPathScale = 0.01

// PathOptions controls PathExtrude.
type PathOptions struct {
	// Segments is the number of copies per span between waypoints.
	Segments int
	// AlignToPath turns each copy so its +Y axis follows the span it sits on.
	AlignToPath bool
	// StartScale and EndScale scale the copies linearly along the path.
	// Zero means 1; smaller values are raised to 0.01.
	StartScale, EndScale float64
	// TwistDegrees rotates copy i about Z by TwistDegrees*i.
	TwistDegrees float64
}

func (o PathOptions) scales() (float64, float64) {
	s := func(v float64) float64 {
		if v == 0 {
			return 1
		}
		return math.Max(v, minPathScale)
	}
	return s(o.StartScale), s(o.EndScale)
}

// PathExtrude places copies of the selected brushes along the polyline
// through waypoints. The brushes are taken about the center of their
// bounds, and the copies are added next to the first brush. The selection
// must hold only brush nodes.
func PathExtrude(doc *scene.Document, sel []scene.NodeID, waypoints []v3.Vec, opts PathOptions) ([]scene.NodeID, error) {
	if len(waypoints) < 2 {
		return nil, fmt.Errorf("path extrude: %d waypoints, need at least 2", len(waypoints))
	}
	if opts.Segments < 1 {
		opts.Segments = 1
	}
	startScale, endScale := opts.scales()
	var made []scene.NodeID
	err := doc.Apply(func(tx *scene.Tx) error {
		nodes, err := normalize(tx, sel)
		if err != nil {
			return err
		}
		for _, id := range nodes {
			if n := tx.Get(id); n.Kind() != scene.KindBrush {
				return fmt.Errorf("%s %s is not a brush", n.Kind(), label(n))
			}
		}
		center := lo.Reduce(nodes, func(acc v3.Vec, id scene.NodeID, _ int) v3.Vec {
			b, _ := nodeBounds(tx, id)
			return acc.Add(b.Center())
		}, v3.Vec{}).DivScalar(float64(len(nodes)))
		parent := tx.Get(nodes[0]).Parent

		spans := len(waypoints) - 1
		total := spans * opts.Segments
		for i := 0; i <= total; i++ {
			t := float64(i) / float64(total)
			span := min(int(t*float64(spans)), spans-1)
			local := t*float64(spans) - float64(span)
			a, b := waypoints[span], waypoints[span+1]
			m := sdf.Translate3d(geom.Lerp(a, b, local))
			if opts.AlignToPath {
				m = m.Mul(alongPath(b.Sub(a)))
			}
			if opts.TwistDegrees != 0 {
				m = m.Mul(sdf.RotateZ(radians(opts.TwistDegrees * float64(i))))
			}
			s := startScale + (endScale-startScale)*t
			m = m.Mul(sdf.Scale3d(v3.Vec{X: s, Y: s, Z: s})).Mul(sdf.Translate3d(center.Neg()))
			for _, id := range nodes {
				cp, err := duplicate(tx, doc.WorldBounds(), id, parent, m, false)
				if err != nil {
					return fmt.Errorf("copy %d: %w", i, err)
				}
				made = append(made, cp)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("path extrude: %w", err)
	}
	logging.For("tools").Debugf("path extrude: %d copies", len(made))
	return made, nil
}

// alongPath returns the rotation taking +Y to the direction of dir while
// keeping +X horizontal. A zero dir gives the identity.
func alongPath(dir v3.Vec) sdf.M44 {
	d, ok := geom.Normalize(dir)
	if !ok {
		return sdf.Identity3d()
	}
	yaw := math.Atan2(-d.X, d.Y)
	pitch := math.Asin(math.Max(-1, math.Min(1, d.Z)))
	return sdf.RotateZ(yaw).Mul(sdf.RotateX(pitch))
}

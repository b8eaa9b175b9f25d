package tools

import (
	"fmt"
	"math"

	"github.com/chazu/brushwork/pkg/builder"
	"github.com/chazu/brushwork/pkg/geom"
	"github.com/chazu/brushwork/pkg/kernel"
	"github.com/chazu/brushwork/pkg/logging"
	"github.com/chazu/brushwork/pkg/scene"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/samber/lo"
)

// FaceRef names one face of a brush node by its outward normal.
type FaceRef struct {
	Node   scene.NodeID
	Normal v3.Vec
}

// resolve returns the face polygon of ref.
func (ref FaceRef) resolve(r reader) (geom.Polygon, error) {
	n := r.Get(ref.Node)
	if n == nil {
		return nil, fmt.Errorf("node %s does not exist", ref.Node.Short())
	}
	d, ok := n.Data.(scene.BrushData)
	if !ok {
		return nil, fmt.Errorf("%s %s is not a brush", n.Kind(), label(n))
	}
	fi, ok := d.Brush.FindFace(ref.Normal)
	if !ok {
		return nil, kernel.Errorf(kernel.ErrHandleNotFound, "brush %s has no face with normal %v", label(n), ref.Normal)
	}
	return d.Brush.Face(fi).Polygon, nil
}

// BridgeOptions controls Bridge.
type BridgeOptions struct {
	// Segments is the number of brushes in the bridge, at least one.
	Segments int
	// Curvature bends the bridge sideways in a parabola whose peak is
	// Curvature times the average face width. It is clamped to [-1, 1].
	Curvature float64
	// Taper narrows the bridge toward its middle, where the cross-section
	// is scaled by 1-|Taper|. It is clamped to [-1, 1].
	Taper float64
	// Material is used for every face of the new brushes.
	Material string
}

// Bridge connects two brush faces with a chain of convex brushes. Each
// brush is the hull of two neighbouring cross-sections. The cross-section
// at t is the Minkowski combination (1-t)*A + t*B of the two faces taken
// about their centroids, so it starts as the first face and ends as the
// second. The brushes are
// added next to the node of from.
func Bridge(doc *scene.Document, b *builder.Builder, from, to FaceRef, opts BridgeOptions) ([]scene.NodeID, error) {
	if opts.Segments < 1 {
		opts.Segments = 1
	}
	curvature := lo.Clamp(opts.Curvature, -1, 1)
	taper := math.Abs(lo.Clamp(opts.Taper, -1, 1))

	var made []scene.NodeID
	err := doc.Apply(func(tx *scene.Tx) error {
		p1, err := from.resolve(tx)
		if err != nil {
			return err
		}
		p2, err := to.resolve(tx)
		if err != nil {
			return err
		}
		c1, c2 := p1.Centroid(), p2.Centroid()
		path := c2.Sub(c1)
		if geom.IsZero(path, geom.PointEpsilon) {
			return kernel.Errorf(kernel.ErrDegenerateGeometry, "bridge faces share a center")
		}
		width := (faceWidth(p1) + faceWidth(p2)) / 2
		side := sideways(path)

		section := func(t float64) []v3.Vec {
			c := geom.Lerp(c1, c2, t).Add(side.MulScalar(curvature * 4 * t * (1 - t) * width))
			s := 1 - taper*(1-2*math.Abs(t-0.5))
			out := make([]v3.Vec, 0, len(p1)*len(p2))
			for _, p := range p1 {
				for _, q := range p2 {
					blend := p.Sub(c1).MulScalar(1 - t).Add(q.Sub(c2).MulScalar(t))
					out = append(out, c.Add(blend.MulScalar(s)))
				}
			}
			return out
		}

		parent := tx.Get(from.Node).Parent
		prev := section(0)
		for i := 1; i <= opts.Segments; i++ {
			next := section(float64(i) / float64(opts.Segments))
			seg, err := b.FromPoints(append(append([]v3.Vec(nil), prev...), next...), opts.Material).Get()
			if err != nil {
				return fmt.Errorf("segment %d: %w", i, err)
			}
			id, err := tx.AddBrush(parent, "", seg)
			if err != nil {
				return err
			}
			made = append(made, id)
			prev = next
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("bridge: %w", err)
	}
	logging.For("tools").Debugf("bridge: %d segments", len(made))
	return made, nil
}

// faceWidth is the larger horizontal extent of p.
func faceWidth(p geom.Polygon) float64 {
	size := p.Bounds().Size()
	return math.Max(size.X, size.Y)
}

// sideways returns the horizontal direction perpendicular to path, or a
// direction perpendicular to a vertical path.
func sideways(path v3.Vec) v3.Vec {
	if s, ok := geom.Normalize(path.Cross(v3.Vec{Z: 1})); ok {
		return s
	}
	d, _ := geom.Normalize(path)
	u, _ := geom.Basis(d)
	return u
}

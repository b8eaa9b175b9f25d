package builder

import (
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"
)

// CircleShape describes how a circular cross-section is approximated by a
// polygon. The variants are EdgeAligned, VertexAligned and Scalable.
type CircleShape interface {
	// Sides is the number of polygon sides.
	Sides() int
	// unit returns the polygon vertices on the unit circle, counter-clockwise.
	unit() []v2.Vec
}

// EdgeAligned places polygon edges, not vertices, on the principal axes, so
// a four sided shape is an axis aligned square.
type EdgeAligned struct {
	NumSides int
}

func (c EdgeAligned) Sides() int { return c.NumSides }

func (c EdgeAligned) unit() []v2.Vec { return circle(c.NumSides, 0.5) }

// VertexAligned places a polygon vertex on each principal axis when the side
// count allows it.
type VertexAligned struct {
	NumSides int
}

func (c VertexAligned) Sides() int { return c.NumSides }

func (c VertexAligned) unit() []v2.Vec { return circle(c.NumSides, 0) }

// Scalable is an edge aligned shape whose side count grows in steps of eight
// so that it always has edges on both the principal axes and the diagonals.
type Scalable struct {
	Precision int
}

func (c Scalable) Sides() int { return 8 * (c.Precision + 1) }

func (c Scalable) unit() []v2.Vec { return circle(c.Sides(), 0.5) }

// circle samples n points on the unit circle, the first at phase*2pi/n.
func circle(n int, phase float64) []v2.Vec {
	if n < 3 {
		return nil
	}
	out := make([]v2.Vec, n)
	step := 2 * math.Pi / float64(n)
	for i := range out {
		a := (float64(i) + phase) * step
		out[i] = v2.Vec{X: math.Cos(a), Y: math.Sin(a)}
	}
	return out
}

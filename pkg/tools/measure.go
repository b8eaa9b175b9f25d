package tools

import (
	"math"

	"github.com/chazu/brushwork/pkg/scene"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/samber/lo"
)

// Measurement summarizes a selection.
type Measurement struct {
	// Size is the extent of the selection's bounds and Diagonal its length.
	Size     v3.Vec
	Diagonal float64

	Brushes, Entities int
	Faces, Vertices   int
	// Volume and Area are the exact volume and surface area of the brushes.
	Volume, Area float64
}

// Measure counts and measures everything in the subtrees of sel. Brushes
// nested in groups and entities are included.
func Measure(doc *scene.Document, sel []scene.NodeID) (Measurement, error) {
	nodes, err := normalize(doc, sel)
	if err != nil {
		return Measurement{}, err
	}
	var m Measurement
	if b, ok := selectionBounds(doc, nodes); ok {
		m.Size = b.Size()
		m.Diagonal = m.Size.Length()
	}
	brushes := brushesUnder(doc, nodes)
	m.Brushes = len(brushes)
	for _, n := range brushes {
		b := n.Data.(scene.BrushData).Brush
		m.Faces += b.FaceCount()
		m.Vertices += b.VertexCount()
		m.Volume += b.Volume()
		m.Area += b.Polyhedron().SurfaceArea()
	}
	m.Entities = lo.CountBy(subtree(doc, nodes), func(n *scene.Node) bool {
		return n.Kind() == scene.KindEntity
	})
	return m, nil
}

// Distance returns the straight line distance between a and b.
func Distance(a, b v3.Vec) float64 {
	return b.Sub(a).Length()
}

// ComponentDistances returns the distance between a and b along each axis.
func ComponentDistances(a, b v3.Vec) v3.Vec {
	d := b.Sub(a)
	return v3.Vec{X: math.Abs(d.X), Y: math.Abs(d.Y), Z: math.Abs(d.Z)}
}

// subtree returns every node in the subtrees at ids, parents first.
func subtree(r reader, ids []scene.NodeID) []*scene.Node {
	var out []*scene.Node
	for _, id := range ids {
		n := r.Get(id)
		if n == nil {
			continue
		}
		out = append(out, n)
		out = append(out, subtree(r, n.Children)...)
	}
	return out
}

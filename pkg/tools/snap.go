package tools

import (
	"fmt"

	"github.com/chazu/brushwork/pkg/scene"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// SnapMode selects the targets SmartSnap considers.
type SnapMode int

const (
	SnapGrid     SnapMode = iota // grid only
	SnapVertices                 // brush vertices and entity origins
	SnapEdges                    // closest points on brush edges
	SnapCenters                  // centers of node bounds
	SnapAll                      // every kind of target
)

func (m SnapMode) String() string {
	switch m {
	case SnapGrid:
		return "grid"
	case SnapVertices:
		return "vertices"
	case SnapEdges:
		return "edges"
	case SnapCenters:
		return "centers"
	case SnapAll:
		return "all"
	default:
		return fmt.Sprintf("SnapMode(%d)", int(m))
	}
}

func (m SnapMode) has(kind SnapMode) bool {
	return m == SnapAll || m == kind
}

// Snap is the outcome of SmartSnap.
type Snap struct {
	Position v3.Vec
	// Kind is the kind of target that won; SnapGrid when nothing was close.
	Kind SnapMode
	// Node is the node owning the target, zero for grid snaps.
	Node     scene.NodeID
	Distance float64
}

// SnapToGrid rounds each coordinate of p to the nearest multiple of
// gridSize. A non-positive grid leaves p unchanged.
func SnapToGrid(p v3.Vec, gridSize float64) v3.Vec {
	if gridSize <= 0 {
		return p
	}
	return v3.Vec{X: roundTo(p.X, gridSize), Y: roundTo(p.Y, gridSize), Z: roundTo(p.Z, gridSize)}
}

// SmartSnap snaps p to the closest geometric target within threshold among
// the candidate nodes, considering the targets mode allows. When no target
// is close enough, or mode is SnapGrid, p snaps to the grid. Missing
// candidates are ignored.
func SmartSnap(doc *scene.Document, candidates []scene.NodeID, p v3.Vec, gridSize float64, mode SnapMode, threshold float64) Snap {
	grid := Snap{Position: SnapToGrid(p, gridSize), Kind: SnapGrid}
	if mode == SnapGrid {
		return grid
	}
	best := Snap{Distance: threshold}
	found := false
	try := func(q v3.Vec, kind SnapMode, id scene.NodeID) {
		if d := Distance(p, q); d < best.Distance {
			best = Snap{Position: q, Kind: kind, Node: id, Distance: d}
			found = true
		}
	}
	for _, id := range candidates {
		n := doc.Get(id)
		if n == nil {
			continue
		}
		switch d := n.Data.(type) {
		case scene.BrushData:
			if mode.has(SnapVertices) {
				for _, v := range d.Brush.Vertices() {
					try(v, SnapVertices, id)
				}
			}
			if mode.has(SnapEdges) {
				for _, e := range d.Brush.Edges() {
					if e.Length() >= moveEpsilon {
						try(e.ClosestPoint(p), SnapEdges, id)
					}
				}
			}
		case scene.EntityData:
			if mode.has(SnapVertices) {
				try(d.Origin, SnapVertices, id)
			}
		}
		if mode.has(SnapCenters) {
			if b, ok := nodeBounds(doc, id); ok {
				try(b.Center(), SnapCenters, id)
			}
		}
	}
	if !found {
		return grid
	}
	return best
}

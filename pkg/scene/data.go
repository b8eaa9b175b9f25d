package scene

import (
	"github.com/chazu/brushwork/pkg/brush"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// NodeData is the kind specific payload of a node. The set of
// implementations is closed: LayerData, GroupData, EntityData and
// BrushData.
type NodeData interface {
	Kind() Kind
	accept(n *Node, v Visitor) error
}

// ---------------------------------------------------------------------------
// Layer
// ---------------------------------------------------------------------------

// LayerData is a top level container that can be hidden or locked.
type LayerData struct {
	Hidden bool
	Locked bool
}

func (LayerData) Kind() Kind { return KindLayer }

func (d LayerData) accept(n *Node, v Visitor) error { return v.VisitLayer(n, d) }

// ---------------------------------------------------------------------------
// Group
// ---------------------------------------------------------------------------

// GroupData groups nodes so they are selected and edited together.
type GroupData struct {
	Description string
}

func (GroupData) Kind() Kind { return KindGroup }

func (d GroupData) accept(n *Node, v Visitor) error { return v.VisitGroup(n, d) }

// ---------------------------------------------------------------------------
// Entity
// ---------------------------------------------------------------------------

// EntityData is a map entity. Point entities have an origin; brush
// entities own brush children.
type EntityData struct {
	Classname  string
	Origin     v3.Vec
	Properties map[string]string
}

func (EntityData) Kind() Kind { return KindEntity }

func (d EntityData) accept(n *Node, v Visitor) error { return v.VisitEntity(n, d) }

// ---------------------------------------------------------------------------
// Brush
// ---------------------------------------------------------------------------

// BrushData holds the current value of a brush.
type BrushData struct {
	Brush *brush.Brush
}

func (BrushData) Kind() Kind { return KindBrush }

func (d BrushData) accept(n *Node, v Visitor) error { return v.VisitBrush(n, d) }

package scene

import (
	"github.com/google/uuid"
)

// NodeID identifies a node for the lifetime of a document.
type NodeID uuid.UUID

// NewNodeID returns a fresh random identifier.
func NewNodeID() NodeID {
	return NodeID(uuid.New())
}

// ParseNodeID parses the canonical string form of an identifier.
func ParseNodeID(s string) (NodeID, error) {
	id, err := uuid.Parse(s)
	return NodeID(id), err
}

// IsZero reports whether id is unset.
func (id NodeID) IsZero() bool {
	return uuid.UUID(id) == uuid.Nil
}

func (id NodeID) String() string {
	return uuid.UUID(id).String()
}

// Short returns the first eight hex digits, for messages.
func (id NodeID) Short() string {
	return id.String()[:8]
}

// Kind enumerates the node kinds of a scene.
type Kind int

const (
	KindLayer  Kind = iota // top level container
	KindGroup              // named grouping of nodes
	KindEntity             // point or brush entity with properties
	KindBrush              // one convex brush
)

func (k Kind) String() string {
	switch k {
	case KindLayer:
		return "layer"
	case KindGroup:
		return "group"
	case KindEntity:
		return "entity"
	case KindBrush:
		return "brush"
	default:
		return "unknown"
	}
}

// Node is one element of the scene tree. Committed nodes are never
// modified; a transaction replaces them with edited copies.
type Node struct {
	ID       NodeID
	Name     string
	Parent   NodeID
	Children []NodeID
	Data     NodeData
}

// Kind returns the kind of the node's payload.
func (n *Node) Kind() Kind {
	return n.Data.Kind()
}

// Accept dispatches n to the visitor method for its kind.
func (n *Node) Accept(v Visitor) error {
	return n.Data.accept(n, v)
}

func (n *Node) clone() *Node {
	c := *n
	c.Children = append([]NodeID(nil), n.Children...)
	return &c
}

package scene

import "errors"

// Visitor has one method per node kind. Adding a kind adds a method, so
// every visitor in the tree stops compiling until it handles the new kind.
type Visitor interface {
	VisitLayer(n *Node, d LayerData) error
	VisitGroup(n *Node, d GroupData) error
	VisitEntity(n *Node, d EntityData) error
	VisitBrush(n *Node, d BrushData) error
}

// SkipChildren returned from a visitor method skips the node's subtree.
var SkipChildren = errors.New("skip children")

func (s *state) walk(v Visitor) error {
	return s.walkIDs(s.roots, v)
}

func (s *state) walkIDs(ids []NodeID, v Visitor) error {
	for _, id := range ids {
		n, ok := s.nodes[id]
		if !ok {
			continue
		}
		err := n.Accept(v)
		if errors.Is(err, SkipChildren) {
			continue
		}
		if err != nil {
			return err
		}
		if err := s.walkIDs(n.Children, v); err != nil {
			return err
		}
	}
	return nil
}

// brushCollector gathers brush nodes.
type brushCollector struct {
	nodes []*Node
}

func (c *brushCollector) VisitLayer(*Node, LayerData) error   { return nil }
func (c *brushCollector) VisitGroup(*Node, GroupData) error   { return nil }
func (c *brushCollector) VisitEntity(*Node, EntityData) error { return nil }

func (c *brushCollector) VisitBrush(n *Node, _ BrushData) error {
	c.nodes = append(c.nodes, n)
	return nil
}

// Counter tallies nodes by kind.
type Counter map[Kind]int

func (c Counter) VisitLayer(*Node, LayerData) error   { c[KindLayer]++; return nil }
func (c Counter) VisitGroup(*Node, GroupData) error   { c[KindGroup]++; return nil }
func (c Counter) VisitEntity(*Node, EntityData) error { c[KindEntity]++; return nil }
func (c Counter) VisitBrush(*Node, BrushData) error   { c[KindBrush]++; return nil }

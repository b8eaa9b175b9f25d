// Package scene is the document layer around the brush kernel: a tree of
// layers, groups, entities and brushes. Committed state is immutable; every
// edit goes through Document.Apply, which stages changes on a copy and
// swaps it in only when the whole transaction succeeds.
package scene

import (
	"fmt"
	"sync"

	"github.com/chazu/brushwork/pkg/logging"
	"github.com/deadsy/sdfx/sdf"
	"github.com/samber/lo"
)

// state is one committed version of the document. It is never modified
// after commit.
type state struct {
	nodes   map[NodeID]*Node
	roots   []NodeID
	names   map[string]NodeID
	version uint64
}

func (s *state) copy() *state {
	c := &state{
		nodes:   make(map[NodeID]*Node, len(s.nodes)),
		roots:   append([]NodeID(nil), s.roots...),
		names:   make(map[string]NodeID, len(s.names)),
		version: s.version,
	}
	for id, n := range s.nodes {
		c.nodes[id] = n
	}
	for name, id := range s.names {
		c.names[name] = id
	}
	return c
}

// Document is a scene tree safe for concurrent readers. Writers are
// serialised by Apply.
type Document struct {
	worldBounds sdf.Box3

	mu  sync.RWMutex
	cur *state
}

// New returns an empty document whose brushes must stay in worldBounds.
func New(worldBounds sdf.Box3) *Document {
	return &Document{
		worldBounds: worldBounds,
		cur: &state{
			nodes: make(map[NodeID]*Node),
			names: make(map[string]NodeID),
		},
	}
}

// WorldBounds returns the box every brush must fit in.
func (d *Document) WorldBounds() sdf.Box3 { return d.worldBounds }

func (d *Document) snapshot() *state {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.cur
}

// Version counts committed transactions.
func (d *Document) Version() uint64 {
	return d.snapshot().version
}

// Get returns the node with the given ID, or nil.
func (d *Document) Get(id NodeID) *Node {
	return d.snapshot().nodes[id]
}

// Lookup returns the node with the given name, or nil.
func (d *Document) Lookup(name string) *Node {
	s := d.snapshot()
	id, ok := s.names[name]
	if !ok {
		return nil
	}
	return s.nodes[id]
}

// MustLookup returns the node with the given name, or panics.
func (d *Document) MustLookup(name string) *Node {
	n := d.Lookup(name)
	if n == nil {
		panic(fmt.Sprintf("scene: no node named %q", name))
	}
	return n
}

// Roots returns the top level nodes in insertion order.
func (d *Document) Roots() []*Node {
	s := d.snapshot()
	return lo.FilterMap(s.roots, func(id NodeID, _ int) (*Node, bool) {
		n, ok := s.nodes[id]
		return n, ok
	})
}

// Children returns the child nodes of n.
func (d *Document) Children(n *Node) []*Node {
	s := d.snapshot()
	return lo.FilterMap(n.Children, func(id NodeID, _ int) (*Node, bool) {
		c, ok := s.nodes[id]
		return c, ok
	})
}

// NodeCount returns the total number of nodes.
func (d *Document) NodeCount() int {
	return len(d.snapshot().nodes)
}

// Walk visits every node reachable from the roots, depth first, parents
// before children. The walk sees one consistent version of the document
// even if a transaction commits meanwhile.
func (d *Document) Walk(v Visitor) error {
	return d.snapshot().walk(v)
}

// WalkFrom is Walk restricted to the subtree rooted at id.
func (d *Document) WalkFrom(id NodeID, v Visitor) error {
	s := d.snapshot()
	if _, ok := s.nodes[id]; !ok {
		return fmt.Errorf("scene: node %s does not exist", id.Short())
	}
	return s.walkIDs([]NodeID{id}, v)
}

// Brushes returns every brush node in walk order.
func (d *Document) Brushes() []*Node {
	var c brushCollector
	_ = d.Walk(&c)
	return c.nodes
}

// Validate checks the committed document. See ValidationError.
func (d *Document) Validate() []ValidationError {
	return validate(d.snapshot(), d.worldBounds)
}

// Apply runs fn against a staged copy of the document. If fn returns nil
// and the staged document has no validation errors, it replaces the
// current version; otherwise the document is left as it was.
func (d *Document) Apply(fn func(tx *Tx) error) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	log := logging.For("scene")
	tx := &Tx{st: d.cur.copy(), owned: make(map[NodeID]bool)}
	if err := fn(tx); err != nil {
		log.Debugf("transaction aborted: %v", err)
		return err
	}
	if !tx.dirty {
		return nil
	}
	errs := lo.Filter(validate(tx.st, d.worldBounds), func(e ValidationError, _ int) bool {
		return e.Severity == SeverityError
	})
	if len(errs) > 0 {
		log.Warnf("transaction rejected: %v", errs[0])
		return fmt.Errorf("scene: %d validation errors, first: %w", len(errs), errs[0])
	}
	tx.st.version++
	d.cur = tx.st
	log.Debugf("committed version %d (%d nodes)", d.cur.version, len(d.cur.nodes))
	return nil
}

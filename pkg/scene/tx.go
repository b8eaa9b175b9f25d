package scene

import (
	"fmt"

	"github.com/chazu/brushwork/pkg/brush"
	"github.com/samber/lo"
)

// Tx stages edits to a document. It is only valid inside the function
// passed to Document.Apply.
type Tx struct {
	st    *state
	owned map[NodeID]bool // nodes already copied in this transaction
	dirty bool
}

// Get returns the staged node with the given ID, or nil.
func (tx *Tx) Get(id NodeID) *Node {
	return tx.st.nodes[id]
}

// Lookup returns the staged node with the given name, or nil.
func (tx *Tx) Lookup(name string) *Node {
	id, ok := tx.st.names[name]
	if !ok {
		return nil
	}
	return tx.st.nodes[id]
}

// Walk visits the staged document like Document.Walk.
func (tx *Tx) Walk(v Visitor) error {
	return tx.st.walk(v)
}

// edit returns a copy of the node owned by this transaction.
func (tx *Tx) edit(id NodeID) (*Node, error) {
	n, ok := tx.st.nodes[id]
	if !ok {
		return nil, fmt.Errorf("scene: node %s does not exist", id.Short())
	}
	if !tx.owned[id] {
		n = n.clone()
		tx.st.nodes[id] = n
		tx.owned[id] = true
	}
	tx.dirty = true
	return n, nil
}

// Add creates a node under parent, or at the top level when parent is the
// zero ID, and returns its ID. Names must be unique; an empty name is
// allowed any number of times. Brushes cannot have children.
func (tx *Tx) Add(parent NodeID, name string, data NodeData) (NodeID, error) {
	if data == nil {
		return NodeID{}, fmt.Errorf("scene: node without data")
	}
	if name != "" {
		if _, taken := tx.st.names[name]; taken {
			return NodeID{}, fmt.Errorf("scene: name %q already in use", name)
		}
	}
	if !parent.IsZero() {
		p, ok := tx.st.nodes[parent]
		if !ok {
			return NodeID{}, fmt.Errorf("scene: node %s does not exist", parent.Short())
		}
		if p.Kind() == KindBrush {
			return NodeID{}, fmt.Errorf("scene: brush %s cannot have children", parent.Short())
		}
	}
	id := NewNodeID()
	if parent.IsZero() {
		tx.st.roots = append(tx.st.roots, id)
	} else {
		p, err := tx.edit(parent)
		if err != nil {
			return NodeID{}, err
		}
		p.Children = append(p.Children, id)
	}
	tx.st.nodes[id] = &Node{ID: id, Name: name, Parent: parent, Data: data}
	tx.owned[id] = true
	if name != "" {
		tx.st.names[name] = id
	}
	tx.dirty = true
	return id, nil
}

// AddBrush adds a brush node under parent.
func (tx *Tx) AddBrush(parent NodeID, name string, b *brush.Brush) (NodeID, error) {
	return tx.Add(parent, name, BrushData{Brush: b})
}

// Replace swaps the payload of a node for one of the same kind.
func (tx *Tx) Replace(id NodeID, data NodeData) error {
	if data == nil {
		return fmt.Errorf("scene: node without data")
	}
	n, err := tx.edit(id)
	if err != nil {
		return err
	}
	if n.Kind() != data.Kind() {
		return fmt.Errorf("scene: cannot replace %s %s with %s", n.Kind(), id.Short(), data.Kind())
	}
	n.Data = data
	return nil
}

// ReplaceBrush swaps the brush held by a brush node.
func (tx *Tx) ReplaceBrush(id NodeID, b *brush.Brush) error {
	return tx.Replace(id, BrushData{Brush: b})
}

// Rename changes a node's name.
func (tx *Tx) Rename(id NodeID, name string) error {
	if other, taken := tx.st.names[name]; taken && other != id && name != "" {
		return fmt.Errorf("scene: name %q already in use", name)
	}
	n, err := tx.edit(id)
	if err != nil {
		return err
	}
	if n.Name != "" {
		delete(tx.st.names, n.Name)
	}
	n.Name = name
	if name != "" {
		tx.st.names[name] = id
	}
	return nil
}

// Move reparents a node, or makes it top level when parent is the zero ID.
// A node cannot move under a brush or into its own subtree.
func (tx *Tx) Move(id, parent NodeID) error {
	n, ok := tx.st.nodes[id]
	if !ok {
		return fmt.Errorf("scene: node %s does not exist", id.Short())
	}
	if n.Parent == parent {
		return nil
	}
	if !parent.IsZero() {
		p, ok := tx.st.nodes[parent]
		if !ok {
			return fmt.Errorf("scene: node %s does not exist", parent.Short())
		}
		if p.Kind() == KindBrush {
			return fmt.Errorf("scene: brush %s cannot have children", parent.Short())
		}
		for cur := p; cur != nil; cur = tx.st.nodes[cur.Parent] {
			if cur.ID == id {
				return fmt.Errorf("scene: cannot move %s into its own subtree", id.Short())
			}
			if cur.Parent.IsZero() {
				break
			}
		}
	}

	if n.Parent.IsZero() {
		tx.st.roots = lo.Without(tx.st.roots, id)
	} else {
		old, err := tx.edit(n.Parent)
		if err != nil {
			return err
		}
		old.Children = lo.Without(old.Children, id)
	}
	if parent.IsZero() {
		tx.st.roots = append(tx.st.roots, id)
	} else {
		p, err := tx.edit(parent)
		if err != nil {
			return err
		}
		p.Children = append(p.Children, id)
	}
	n, err := tx.edit(id)
	if err != nil {
		return err
	}
	n.Parent = parent
	return nil
}

// Remove deletes a node and its subtree.
func (tx *Tx) Remove(id NodeID) error {
	n, ok := tx.st.nodes[id]
	if !ok {
		return fmt.Errorf("scene: node %s does not exist", id.Short())
	}
	if n.Parent.IsZero() {
		tx.st.roots = lo.Without(tx.st.roots, id)
	} else if _, ok := tx.st.nodes[n.Parent]; ok {
		p, err := tx.edit(n.Parent)
		if err != nil {
			return err
		}
		p.Children = lo.Without(p.Children, id)
	}
	tx.removeSubtree(id)
	tx.dirty = true
	return nil
}

func (tx *Tx) removeSubtree(id NodeID) {
	n, ok := tx.st.nodes[id]
	if !ok {
		return
	}
	for _, c := range n.Children {
		tx.removeSubtree(c)
	}
	if n.Name != "" && tx.st.names[n.Name] == id {
		delete(tx.st.names, n.Name)
	}
	delete(tx.st.nodes, id)
	delete(tx.owned, id)
}

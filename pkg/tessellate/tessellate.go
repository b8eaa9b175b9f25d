// Package tessellate walks a scene document and produces triangle meshes:
// one exact mesh per brush for export, or a sampled preview of the whole
// scene through a geometry kernel.
package tessellate

import (
	"fmt"

	"github.com/chazu/brushwork/pkg/kernel"
	"github.com/chazu/brushwork/pkg/logging"
	"github.com/chazu/brushwork/pkg/scene"
	"github.com/deadsy/sdfx/render"
)

// collector gathers the brushes of visible layers.
type collector struct {
	nodes  []*scene.Node
	solids []kernel.Solid
}

func (c *collector) VisitLayer(_ *scene.Node, d scene.LayerData) error {
	if d.Hidden {
		return scene.SkipChildren
	}
	return nil
}

func (c *collector) VisitGroup(*scene.Node, scene.GroupData) error { return nil }

func (c *collector) VisitEntity(*scene.Node, scene.EntityData) error { return nil }

func (c *collector) VisitBrush(n *scene.Node, d scene.BrushData) error {
	if d.Brush == nil {
		return fmt.Errorf("brush node %s has no brush", n.ID.Short())
	}
	c.nodes = append(c.nodes, n)
	c.solids = append(c.solids, d.Brush)
	return nil
}

func collect(doc *scene.Document) (*collector, error) {
	c := &collector{}
	if doc == nil {
		return c, nil
	}
	if err := doc.Walk(c); err != nil {
		return nil, fmt.Errorf("tessellate: %w", err)
	}
	return c, nil
}

// Tessellate returns one exact triangle mesh per brush of the visible
// layers, in walk order. Each mesh is named after its node: the node's
// name, or its short ID. The document is never modified.
func Tessellate(doc *scene.Document) ([]*kernel.Mesh, error) {
	c, err := collect(doc)
	if err != nil {
		return nil, err
	}
	meshes := make([]*kernel.Mesh, len(c.nodes))
	for i, n := range c.nodes {
		m := c.solids[i].Mesh()
		if n.Name != "" {
			m.Name = n.Name
		} else {
			m.Name = n.ID.Short()
		}
		meshes[i] = m
	}
	logging.For("tessellate").Debugf("tessellated %d brushes", len(meshes))
	return meshes, nil
}

// Preview unions every visible brush with k and samples the union into a
// single mesh.
func Preview(doc *scene.Document, k kernel.Kernel) (*kernel.Mesh, error) {
	c, err := collect(doc)
	if err != nil {
		return nil, err
	}
	if len(c.solids) == 0 {
		return nil, kernel.Errorf(kernel.ErrEmptyResult, "scene has no visible brushes")
	}
	m, err := k.ToMesh(k.Union(c.solids...))
	if err != nil {
		return nil, fmt.Errorf("tessellate: preview: %w", err)
	}
	m.Name = "preview"
	return m, nil
}

// Merge concatenates meshes into one.
func Merge(meshes []*kernel.Mesh) *kernel.Mesh {
	out := &kernel.Mesh{}
	for _, m := range meshes {
		out.Append(m)
	}
	return out
}

// WriteSTL writes meshes to path as a single binary STL file.
func WriteSTL(path string, meshes []*kernel.Mesh) error {
	merged := Merge(meshes)
	if merged.IsEmpty() {
		return kernel.Errorf(kernel.ErrEmptyResult, "nothing to write to %s", path)
	}
	if err := render.SaveSTL(path, merged.Triangles()); err != nil {
		return fmt.Errorf("tessellate: write %s: %w", path, err)
	}
	logging.For("tessellate").Infof("wrote %d triangles to %s", merged.TriangleCount(), path)
	return nil
}

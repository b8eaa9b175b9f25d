package tools

import (
	"fmt"

	"github.com/chazu/brushwork/pkg/geom"
	"github.com/chazu/brushwork/pkg/kernel"
	"github.com/chazu/brushwork/pkg/scene"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/samber/lo"
)

// BevelSelectedEdges bevels, on every brush under sel, those of edges the
// brush has. Brushes holding none of the edges are left alone; an edge
// consumed by an earlier bevel on the same brush is skipped. It returns the
// changed brush nodes and fails with kernel.ErrHandleNotFound when no
// brush holds any of the edges.
func BevelSelectedEdges(doc *scene.Document, sel []scene.NodeID, edges []geom.Segment, distance float64, lockTextures bool) ([]scene.NodeID, error) {
	if len(edges) == 0 {
		return nil, fmt.Errorf("bevel: no edges")
	}
	var changed []scene.NodeID
	err := doc.Apply(func(tx *scene.Tx) error {
		nodes, err := normalize(tx, sel)
		if err != nil {
			return err
		}
		for _, n := range brushesUnder(tx, nodes) {
			b := n.Data.(scene.BrushData).Brush
			own := lo.Filter(edges, func(e geom.Segment, _ int) bool { return b.HasEdge(e) })
			if len(own) == 0 {
				continue
			}
			bev, err := b.BevelEdges(doc.WorldBounds(), own, distance, lockTextures).Get()
			if err != nil {
				return fmt.Errorf("brush %s: %w", label(n), err)
			}
			if err := tx.ReplaceBrush(n.ID, bev); err != nil {
				return err
			}
			changed = append(changed, n.ID)
		}
		if len(changed) == 0 {
			return kernel.Errorf(kernel.ErrHandleNotFound, "no selected brush has any of %d edges", len(edges))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("bevel: %w", err)
	}
	return changed, nil
}

// BevelDrag is BevelSelectedEdges with the distance taken from the length
// of a drag.
func BevelDrag(doc *scene.Document, sel []scene.NodeID, edges []geom.Segment, drag v3.Vec, lockTextures bool) ([]scene.NodeID, error) {
	return BevelSelectedEdges(doc, sel, edges, drag.Length(), lockTextures)
}

// InsetDrag insets the face ref as if anchor, a point grabbed on the face,
// were dragged by drag. Only the part of the drag pointing from the anchor
// toward the face centroid counts; dragging toward the centroid shrinks the
// face and dragging away grows it. With lock the faces around it keep their
// textures in place.
func InsetDrag(doc *scene.Document, ref FaceRef, anchor, drag v3.Vec, lock bool) error {
	err := doc.Apply(func(tx *scene.Tx) error {
		poly, err := ref.resolve(tx)
		if err != nil {
			return err
		}
		plane, ok := poly.Plane()
		if !ok {
			return kernel.Errorf(kernel.ErrDegenerateGeometry, "face without a plane")
		}
		inward, ok := geom.Normalize(poly.Centroid().Sub(plane.Project(anchor)))
		if !ok {
			return kernel.Errorf(kernel.ErrDegenerateGeometry, "inset anchor on the face centroid")
		}
		b := tx.Get(ref.Node).Data.(scene.BrushData).Brush
		inset, err := b.InsetFace(doc.WorldBounds(), ref.Normal, anchor, drag.Dot(inward), lock).Get()
		if err != nil {
			return err
		}
		return tx.ReplaceBrush(ref.Node, inset)
	})
	if err != nil {
		return fmt.Errorf("inset: %w", err)
	}
	return nil
}

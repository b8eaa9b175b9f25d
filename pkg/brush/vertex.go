package brush

import (
	"github.com/chazu/brushwork/pkg/geom"
	"github.com/chazu/brushwork/pkg/kernel"
	"github.com/chazu/brushwork/pkg/result"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// resolveVertices maps vertex handles to indices.
func (b *Brush) resolveVertices(positions []v3.Vec) ([]int, error) {
	idx := make([]int, 0, len(positions))
	seen := make(map[int]bool)
	for _, p := range positions {
		i, ok := b.poly.FindVertex(p, geom.HandleEpsilon)
		if !ok {
			return nil, kernel.Errorf(kernel.ErrHandleNotFound, "vertex %v", p)
		}
		if !seen[i] {
			seen[i] = true
			idx = append(idx, i)
		}
	}
	return idx, nil
}

// MoveVertices moves the vertices at positions by delta and rebuilds the
// solid around them. The edit is rejected if a moved vertex would end up
// inside the solid or on one of its faces, since the result would not
// contain it.
func (b *Brush) MoveVertices(worldBounds sdf.Box3, positions []v3.Vec, delta v3.Vec) result.Result[*Brush] {
	idx, err := b.resolveVertices(positions)
	if err != nil {
		return result.Fail[*Brush](err)
	}
	points := b.poly.Vertices()
	for _, i := range idx {
		points[i] = points[i].Add(delta)
	}
	return b.rehull(worldBounds, points).Then(func(nb *Brush) result.Result[*Brush] {
		for _, i := range idx {
			if !nb.HasVertex(points[i]) {
				return result.Fail[*Brush](kernel.Errorf(kernel.ErrDegenerateGeometry, "vertex moved to %v would be absorbed", points[i]))
			}
		}
		return result.Ok(nb)
	})
}

// RemoveVertices drops the vertices at positions and returns the hull of
// the rest.
func (b *Brush) RemoveVertices(worldBounds sdf.Box3, positions []v3.Vec) result.Result[*Brush] {
	idx, err := b.resolveVertices(positions)
	if err != nil {
		return result.Fail[*Brush](err)
	}
	drop := make(map[int]bool, len(idx))
	for _, i := range idx {
		drop[i] = true
	}
	var points []v3.Vec
	for i, p := range b.poly.Vertices() {
		if !drop[i] {
			points = append(points, p)
		}
	}
	return b.rehull(worldBounds, points)
}

// WeldVertices merges the vertices at positions into one vertex at their
// centroid.
func (b *Brush) WeldVertices(worldBounds sdf.Box3, positions []v3.Vec) result.Result[*Brush] {
	idx, err := b.resolveVertices(positions)
	if err != nil {
		return result.Fail[*Brush](err)
	}
	if len(idx) < 2 {
		return result.Ok(b)
	}
	all := b.poly.Vertices()
	var c v3.Vec
	drop := make(map[int]bool, len(idx))
	for _, i := range idx {
		c = c.Add(all[i])
		drop[i] = true
	}
	c = c.DivScalar(float64(len(idx)))
	points := []v3.Vec{c}
	for i, p := range all {
		if !drop[i] {
			points = append(points, p)
		}
	}
	return b.rehull(worldBounds, points).Then(func(nb *Brush) result.Result[*Brush] {
		if !nb.HasVertex(c) {
			return result.Fail[*Brush](kernel.Errorf(kernel.ErrDegenerateGeometry, "welded vertex %v would be absorbed", c))
		}
		return result.Ok(nb)
	})
}

package polyhedron

import (
	"fmt"

	"github.com/chazu/brushwork/pkg/geom"
	"github.com/chazu/brushwork/pkg/kernel"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// ClipOutcome tells a successful clip that changed nothing apart from a
// split that produced a new face.
type ClipOutcome int

const (
	ClipUnchanged ClipOutcome = iota // the solid lies behind the plane
	ClipSplit                        // the plane cut the solid
)

func (o ClipOutcome) String() string {
	switch o {
	case ClipUnchanged:
		return "unchanged"
	case ClipSplit:
		return "split"
	default:
		return "unknown"
	}
}

// Box returns the axis-aligned box b with faces ordered -X, +X, -Y, +Y, -Z,
// +Z and untagged.
func Box(b sdf.Box3) (*Polyhedron, error) {
	if !geom.BoxValid(b) {
		return nil, kernel.Errorf(kernel.ErrDegenerateGeometry, "box %v..%v has no volume", b.Min, b.Max)
	}
	c := geom.BoxCorners(b)
	planes := geom.BoxPlanes(b)
	loops := [6][]int{
		{0, 4, 7, 3}, // -X
		{1, 2, 6, 5}, // +X
		{0, 1, 5, 4}, // -Y
		{3, 7, 6, 2}, // +Y
		{0, 3, 2, 1}, // -Z
		{4, 5, 6, 7}, // +Z
	}
	faces := make([]Face, 6)
	for i := range faces {
		faces[i] = Face{Plane: planes[i], Loop: loops[i], Tag: NoTag}
	}
	return build(c[:], faces)
}

// FromPlanes returns the intersection of bounds with the half-spaces
// behind planes. The face cut by planes[i] carries tag i; what is left of
// the bounding box stays untagged. The result does not depend on the order
// of planes.
func FromPlanes(bounds sdf.Box3, planes ...geom.Plane) (*Polyhedron, error) {
	p, err := Box(bounds)
	if err != nil {
		return nil, err
	}
	for i, pl := range planes {
		p, _, err = p.ClipTagged(pl, i)
		if err != nil {
			return nil, fmt.Errorf("plane %d (%v): %w", i, pl, err)
		}
	}
	return p, nil
}

// Clip keeps the part of the solid behind plane. See ClipTagged.
func (p *Polyhedron) Clip(plane geom.Plane) (*Polyhedron, ClipOutcome, error) {
	return p.ClipTagged(plane, NoTag)
}

// ClipTagged keeps the part of the solid behind plane and tags the face the
// plane produces. Vertices within geom.PointEpsilon of the plane are kept.
//
// If no vertex lies behind the plane the whole solid would be removed and
// kernel.ErrEmptyResult is returned. If no vertex lies in front, the
// geometry is returned unchanged; a face coplanar with the plane takes over
// the plane's tag instead of a duplicate face being created.
func (p *Polyhedron) ClipTagged(plane geom.Plane, tag int) (*Polyhedron, ClipOutcome, error) {
	plane, ok := normalizePlane(plane)
	if !ok {
		return nil, ClipUnchanged, kernel.Errorf(kernel.ErrDegenerateGeometry, "clip plane has no normal")
	}

	status := make([]geom.PointStatus, len(p.vertices))
	dist := make([]float64, len(p.vertices))
	var above, below int
	for i, v := range p.vertices {
		dist[i] = plane.SignedDistance(v)
		status[i] = plane.Classify(v, geom.PointEpsilon)
		switch status[i] {
		case geom.PointAbove:
			above++
		case geom.PointBelow:
			below++
		}
	}
	if below == 0 {
		return nil, ClipUnchanged, kernel.Errorf(kernel.ErrEmptyResult, "plane %v excludes the solid", plane)
	}
	if above == 0 {
		if tag != NoTag {
			for i, f := range p.faces {
				if f.Plane.Equals(plane, geom.PointEpsilon) {
					return p.Retag(i, tag), ClipUnchanged, nil
				}
			}
		}
		return p, ClipUnchanged, nil
	}

	c := &clipper{p: p, plane: plane, status: status, dist: dist, cuts: make(map[[2]int]int)}
	c.vertices = append([]v3.Vec(nil), p.vertices...)
	q, err := c.split(tag)
	if err != nil {
		// Fall back to rebuilding the hull of the surviving points.
		q, err = c.rehull(tag)
		if err != nil {
			return nil, ClipUnchanged, err
		}
	}
	return q, ClipSplit, nil
}

func normalizePlane(pl geom.Plane) (geom.Plane, bool) {
	l := pl.Normal.Length()
	if l < 1e-12 {
		return geom.Plane{}, false
	}
	return geom.Plane{Normal: pl.Normal.DivScalar(l), Distance: pl.Distance / l}, true
}

type clipper struct {
	p        *Polyhedron
	plane    geom.Plane
	status   []geom.PointStatus
	dist     []float64
	vertices []v3.Vec
	cuts     map[[2]int]int // undirected crossing edge -> new vertex
	onPlane  map[int]bool
}

// cut returns the vertex where edge a-b crosses the plane, creating it on
// first use. It is computed from the lower index so both faces sharing the
// edge get the identical point.
func (c *clipper) cut(a, b int) int {
	key := [2]int{min(a, b), max(a, b)}
	if v, ok := c.cuts[key]; ok {
		return v
	}
	lo, hi := key[0], key[1]
	t := c.dist[lo] / (c.dist[lo] - c.dist[hi])
	c.vertices = append(c.vertices, geom.Lerp(c.p.vertices[lo], c.p.vertices[hi], t))
	v := len(c.vertices) - 1
	c.cuts[key] = v
	c.onPlane[v] = true
	return v
}

func crosses(a, b geom.PointStatus) bool {
	return (a == geom.PointBelow && b == geom.PointAbove) || (a == geom.PointAbove && b == geom.PointBelow)
}

// split cuts every face and closes the solid with one cap face whose
// edges are the on-plane edges of the cut faces, reversed.
func (c *clipper) split(tag int) (*Polyhedron, error) {
	c.onPlane = make(map[int]bool)
	for i, s := range c.status {
		if s == geom.PointInside {
			c.onPlane[i] = true
		}
	}

	faces := make([]Face, 0, len(c.p.faces)+1)
	capNext := make(map[int]int)
	for _, f := range c.p.faces {
		n := len(f.Loop)
		loop := make([]int, 0, n+1)
		for j, cur := range f.Loop {
			nxt := f.Loop[(j+1)%n]
			if c.status[cur] != geom.PointAbove {
				loop = append(loop, cur)
			}
			if crosses(c.status[cur], c.status[nxt]) {
				loop = append(loop, c.cut(cur, nxt))
			}
		}
		if len(loop) < 3 || c.allOnPlane(loop) {
			continue
		}
		for j, u := range loop {
			w := loop[(j+1)%len(loop)]
			if !c.onPlane[u] || !c.onPlane[w] {
				continue
			}
			if prev, dup := capNext[w]; dup && prev != u {
				return nil, kernel.Errorf(kernel.ErrDegenerateGeometry, "clip section is not a simple loop")
			}
			capNext[w] = u
		}
		faces = append(faces, Face{Plane: f.Plane, Loop: loop, Tag: f.Tag})
	}

	capLoop, err := chain(capNext)
	if err != nil {
		return nil, err
	}
	faces = append(faces, Face{Plane: c.plane, Loop: capLoop, Tag: tag})
	return build(c.vertices, faces)
}

func (c *clipper) allOnPlane(loop []int) bool {
	for _, v := range loop {
		if !c.onPlane[v] {
			return false
		}
	}
	return true
}

// chain follows next pointers from the smallest key around one loop.
func chain(next map[int]int) ([]int, error) {
	if len(next) < 3 {
		return nil, kernel.Errorf(kernel.ErrDegenerateGeometry, "clip section has %d edges", len(next))
	}
	start := -1
	for v := range next {
		if start < 0 || v < start {
			start = v
		}
	}
	loop := []int{start}
	for v := next[start]; v != start; {
		if len(loop) >= len(next) {
			return nil, kernel.Errorf(kernel.ErrDegenerateGeometry, "clip section does not close")
		}
		loop = append(loop, v)
		w, ok := next[v]
		if !ok {
			return nil, kernel.Errorf(kernel.ErrDegenerateGeometry, "clip section is open")
		}
		v = w
	}
	if len(loop) != len(next) {
		return nil, kernel.Errorf(kernel.ErrDegenerateGeometry, "clip section has several loops")
	}
	return loop, nil
}

// rehull rebuilds the clipped solid as the hull of the kept vertices and
// the crossing points, reusing the original planes and tags.
func (c *clipper) rehull(tag int) (*Polyhedron, error) {
	var pts []v3.Vec
	for i, v := range c.p.vertices {
		if c.status[i] != geom.PointAbove {
			pts = append(pts, v)
		}
	}
	for _, e := range c.p.edges {
		a, b := e.V[0], e.V[1]
		if crosses(c.status[a], c.status[b]) {
			if x, ok := c.plane.IntersectSegment(c.p.vertices[a], c.p.vertices[b]); ok {
				pts = append(pts, x)
			}
		}
	}
	hints := append(c.p.Faces(), Face{Plane: c.plane, Tag: tag})
	return FromPointsWithHints(pts, hints)
}

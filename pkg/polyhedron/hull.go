package polyhedron

import (
	"math"

	"github.com/chazu/brushwork/pkg/geom"
	"github.com/chazu/brushwork/pkg/kernel"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// FromPoints returns the convex hull of points. Points closer than
// geom.PointEpsilon are merged; points inside the hull or on its boundary
// between other vertices are dropped. Fewer than four distinct points, or
// collinear or coplanar input, fail with kernel.ErrDegenerateGeometry.
func FromPoints(points []v3.Vec) (*Polyhedron, error) {
	return FromPointsWithHints(points, nil)
}

// FromPointsWithHints is FromPoints where each resulting face whose plane
// matches a hint face takes over that face's exact plane and tag. Faces
// matching no hint take the tag of the hint with the closest normal.
func FromPointsWithHints(points []v3.Vec, hints []Face) (*Polyhedron, error) {
	pts := dedupe(points)
	if len(pts) < 4 {
		return nil, kernel.Errorf(kernel.ErrDegenerateGeometry, "%d distinct points", len(pts))
	}
	h, err := newHull(pts)
	if err != nil {
		return nil, err
	}
	for i := range pts {
		h.add(i)
	}
	faces, err := h.mergedFaces()
	if err != nil {
		return nil, err
	}
	applyHints(faces, hints)
	return build(pts, faces)
}

func dedupe(points []v3.Vec) []v3.Vec {
	out := make([]v3.Vec, 0, len(points))
next:
	for _, p := range points {
		for _, q := range out {
			if geom.Near(p, q, geom.PointEpsilon) {
				continue next
			}
		}
		out = append(out, p)
	}
	return out
}

// hullTri is one triangle of the incremental hull, wound counter-clockwise
// seen from outside.
type hullTri struct {
	v     [3]int
	plane geom.Plane
	dead  bool
}

type hull struct {
	pts   []v3.Vec
	tris  []hullTri
	edges map[[2]int]int // directed edge -> live triangle owning it
	used  map[int]bool
}

// newHull picks four extreme points spanning a tetrahedron.
func newHull(pts []v3.Vec) (*hull, error) {
	i0 := 0
	i1 := farthest(pts, func(p v3.Vec) float64 { return p.Sub(pts[i0]).Length() })
	if pts[i1].Sub(pts[i0]).Length() <= geom.PointEpsilon {
		return nil, kernel.Errorf(kernel.ErrDegenerateGeometry, "points are coincident")
	}
	line := geom.Seg(pts[i0], pts[i1])
	i2 := farthest(pts, func(p v3.Vec) float64 { return lineDistance(line, p) })
	if lineDistance(line, pts[i2]) <= geom.PointEpsilon {
		return nil, kernel.Errorf(kernel.ErrDegenerateGeometry, "points are collinear")
	}
	base, ok := geom.PlaneFromPoints(pts[i0], pts[i1], pts[i2])
	if !ok {
		return nil, kernel.Errorf(kernel.ErrDegenerateGeometry, "points are collinear")
	}
	i3 := farthest(pts, func(p v3.Vec) float64 { return math.Abs(base.SignedDistance(p)) })
	if math.Abs(base.SignedDistance(pts[i3])) <= geom.PointEpsilon {
		return nil, kernel.Errorf(kernel.ErrDegenerateGeometry, "points are coplanar")
	}
	if base.SignedDistance(pts[i3]) > 0 {
		i1, i2 = i2, i1
	}

	h := &hull{pts: pts, edges: make(map[[2]int]int), used: map[int]bool{i0: true, i1: true, i2: true, i3: true}}
	h.addTri(i0, i1, i2)
	h.addTri(i1, i0, i3)
	h.addTri(i2, i1, i3)
	h.addTri(i0, i2, i3)
	return h, nil
}

func farthest(pts []v3.Vec, measure func(v3.Vec) float64) int {
	best, bestD := 0, -1.0
	for i, p := range pts {
		if d := measure(p); d > bestD {
			best, bestD = i, d
		}
	}
	return best
}

func lineDistance(s geom.Segment, p v3.Vec) float64 {
	d := p.Sub(s.Start)
	dir := s.Direction()
	return d.Sub(dir.MulScalar(d.Dot(dir))).Length()
}

func (h *hull) addTri(a, b, c int) {
	plane, ok := geom.PlaneFromPoints(h.pts[a], h.pts[b], h.pts[c])
	if !ok {
		// A sliver along a horizon edge lies in the plane of the face
		// across that edge.
		if n, found := h.edges[[2]int{b, a}]; found {
			plane = h.tris[n].plane
		}
	}
	idx := len(h.tris)
	h.tris = append(h.tris, hullTri{v: [3]int{a, b, c}, plane: plane})
	h.edges[[2]int{a, b}] = idx
	h.edges[[2]int{b, c}] = idx
	h.edges[[2]int{c, a}] = idx
}

// add inserts point i, replacing the faces it can see by a cone from the
// horizon to the point.
func (h *hull) add(i int) {
	if h.used[i] {
		return
	}
	p := h.pts[i]
	start, startD := -1, geom.PointEpsilon
	for t, tri := range h.tris {
		if tri.dead {
			continue
		}
		if d := tri.plane.SignedDistance(p); d > startD {
			start, startD = t, d
		}
	}
	if start < 0 {
		return
	}
	h.used[i] = true

	// Flood the visible region from the most visible face so it stays
	// connected.
	visible := map[int]bool{start: true}
	stack := []int{start}
	for len(stack) > 0 {
		t := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		tri := h.tris[t]
		for k := 0; k < 3; k++ {
			a, b := tri.v[k], tri.v[(k+1)%3]
			n := h.edges[[2]int{b, a}]
			if visible[n] {
				continue
			}
			if h.tris[n].plane.SignedDistance(p) > geom.PointEpsilon {
				visible[n] = true
				stack = append(stack, n)
			}
		}
	}

	var horizon [][2]int
	for t := range h.tris {
		if !visible[t] {
			continue
		}
		tri := h.tris[t]
		for k := 0; k < 3; k++ {
			a, b := tri.v[k], tri.v[(k+1)%3]
			if !visible[h.edges[[2]int{b, a}]] {
				horizon = append(horizon, [2]int{a, b})
			}
		}
	}
	for t := range visible {
		tri := &h.tris[t]
		tri.dead = true
		for k := 0; k < 3; k++ {
			delete(h.edges, [2]int{tri.v[k], tri.v[(k+1)%3]})
		}
	}
	for _, e := range horizon {
		h.addTri(e[0], e[1], i)
	}
}

// mergedFaces groups adjacent coplanar triangles and returns one face per
// group whose loop is the group's boundary.
func (h *hull) mergedFaces() ([]Face, error) {
	parent := make([]int, len(h.tris))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(x int) int {
		for parent[x] != x {
			parent[x] = parent[parent[x]]
			x = parent[x]
		}
		return x
	}
	for t, tri := range h.tris {
		if tri.dead {
			continue
		}
		for k := 0; k < 3; k++ {
			a, b := tri.v[k], tri.v[(k+1)%3]
			n := h.edges[[2]int{b, a}]
			if n <= t || !h.coplanar(t, n) {
				continue
			}
			parent[find(n)] = find(t)
		}
	}

	groups := make(map[int][]int)
	var order []int
	for t, tri := range h.tris {
		if tri.dead {
			continue
		}
		r := find(t)
		if _, ok := groups[r]; !ok {
			order = append(order, r)
		}
		groups[r] = append(groups[r], t)
	}

	faces := make([]Face, 0, len(order))
	for _, r := range order {
		loop, err := h.boundary(groups[r], find)
		if err != nil {
			return nil, err
		}
		poly := make(geom.Polygon, len(loop))
		for j, v := range loop {
			poly[j] = h.pts[v]
		}
		plane, ok := poly.Plane()
		if !ok {
			plane = h.tris[groups[r][0]].plane
		}
		faces = append(faces, Face{Plane: plane, Loop: loop, Tag: NoTag})
	}
	return faces, nil
}

func (h *hull) coplanar(a, b int) bool {
	ta, tb := h.tris[a], h.tris[b]
	if ta.plane.Normal.Dot(tb.plane.Normal) <= 0 {
		return false
	}
	for k := 0; k < 3; k++ {
		if math.Abs(ta.plane.SignedDistance(h.pts[tb.v[k]])) > geom.PointEpsilon ||
			math.Abs(tb.plane.SignedDistance(h.pts[ta.v[k]])) > geom.PointEpsilon {
			return false
		}
	}
	return true
}

// boundary chains the edges of a triangle group that border other groups.
func (h *hull) boundary(group []int, find func(int) int) ([]int, error) {
	root := find(group[0])
	next := make(map[int]int)
	for _, t := range group {
		tri := h.tris[t]
		for k := 0; k < 3; k++ {
			a, b := tri.v[k], tri.v[(k+1)%3]
			if find(h.edges[[2]int{b, a}]) == root {
				continue
			}
			if _, dup := next[a]; dup {
				return nil, kernel.Errorf(kernel.ErrDegenerateGeometry, "face boundary is not simple")
			}
			next[a] = b
		}
	}
	start := -1
	for a := range next {
		if start < 0 || a < start {
			start = a
		}
	}
	loop := []int{start}
	for v := next[start]; v != start; v = next[v] {
		if len(loop) > len(next) {
			return nil, kernel.Errorf(kernel.ErrDegenerateGeometry, "face boundary does not close")
		}
		loop = append(loop, v)
	}
	if len(loop) != len(next) {
		return nil, kernel.Errorf(kernel.ErrDegenerateGeometry, "face boundary has several loops")
	}
	return loop, nil
}

// applyHints transfers exact planes and tags from hint faces.
func applyHints(faces []Face, hints []Face) {
	if len(hints) == 0 {
		return
	}
	for i := range faces {
		f := &faces[i]
		best, bestDot := -1, -2.0
		for j, hint := range hints {
			if hint.Plane.Equals(f.Plane, validationEpsilon) {
				best = j
				f.Plane = hint.Plane
				break
			}
			if d := hint.Plane.Normal.Dot(f.Plane.Normal); d > bestDot {
				best, bestDot = j, d
			}
		}
		if best >= 0 {
			f.Tag = hints[best].Tag
		}
	}
}

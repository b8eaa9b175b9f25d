package engine

import (
	"fmt"
	"math"

	"github.com/chazu/brushwork/pkg/brush"
	"github.com/chazu/brushwork/pkg/builder"
	"github.com/chazu/brushwork/pkg/geom"
	"github.com/chazu/brushwork/pkg/result"
	"github.com/chazu/brushwork/pkg/scene"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	zygo "github.com/glycerine/zygomys/zygo"
)

// builtin is the signature zygomys calls user functions with.
type builtin = func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error)

// registerBuiltins installs the brush DSL into env. Constructors and edits
// are pure and return brush values; layer and place insert subtrees into
// the scene through tx.
//
// Source must be preprocessed with preprocessSource so :keyword tokens
// arrive as recognizable strings and kebab-case names as snake_case.
func registerBuiltins(env *zygo.Zlisp, tx *scene.Tx, b *builder.Builder) {
	world := b.WorldBounds()
	fns := map[string]builtin{
		"vec3":    vec3Builtin,
		"segment": segmentBuiltin,

		"cuboid":          shape(b, cuboid),
		"cube":            shape(b, cube),
		"cylinder":        shape(b, cylinder),
		"cone":            shape(b, cone),
		"sphere":          shape(b, sphere),
		"icosphere":       shape(b, icosphere),
		"hull":            shape(b, hull),
		"hollow_cylinder": shapes(b, hollowCylinder),
		"stairs":          shapes(b, stairs),
		"arch":            shapes(b, arch),
		"spiral_stairs":   shapes(b, spiralStairs),

		"translate":     edit(world, translate),
		"rotate":        edit(world, rotate),
		"scale":         edit(world, scale),
		"mirror":        edit(world, mirror),
		"clip":          edit(world, clip(b)),
		"bevel":         edit(world, bevel),
		"inset":         edit(world, inset),
		"move_vertices": edit(world, moveVertices),
		"material":      edit(world, material),

		"brush":     brushNode,
		"group":     groupNode,
		"entity":    entityNode,
		"layer":     layerBuiltin(tx),
		"place":     placeBuiltin(tx),
		"find_node": findNodeBuiltin(tx),
	}
	for name, fn := range fns {
		env.AddFunction(name, fn)
	}
}

// ---------------------------------------------------------------------------
// Values
// ---------------------------------------------------------------------------

// (vec3 1 2 3)
func vec3Builtin(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	if len(args) != 3 {
		return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
	}
	var c [3]float64
	for i, a := range args {
		f, err := toFloat64(a)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: %c: %w", "xyz"[i], err)
		}
		c[i] = f
	}
	return &sexpVec3{vec: v3.Vec{X: c[0], Y: c[1], Z: c[2]}}, nil
}

// (segment (vec3 ...) (vec3 ...))
func segmentBuiltin(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	if len(args) != 2 {
		return zygo.SexpNull, fmt.Errorf("segment requires exactly 2 points, got %d", len(args))
	}
	a, err := toVec3(args[0])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("segment: start: %w", err)
	}
	c, err := toVec3(args[1])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("segment: end: %w", err)
	}
	return &sexpSegment{seg: geom.Seg(a, c)}, nil
}

// ---------------------------------------------------------------------------
// Shapes
// ---------------------------------------------------------------------------

// shape adapts a single brush factory to a builtin.
func shape(b *builder.Builder, fn func(*builder.Builder, kwArgs) (result.Result[*brush.Brush], error)) builtin {
	return func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(dslName(name), args)
		r, err := fn(b, pa)
		if err != nil {
			return zygo.SexpNull, err
		}
		br, err := r.Get()
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: %w", pa.fn, err)
		}
		return &sexpBrush{brushes: []*brush.Brush{br}}, nil
	}
}

// shapes adapts a multi brush factory to a builtin.
func shapes(b *builder.Builder, fn func(*builder.Builder, kwArgs) (result.Result[[]*brush.Brush], error)) builtin {
	return func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(dslName(name), args)
		r, err := fn(b, pa)
		if err != nil {
			return zygo.SexpNull, err
		}
		bs, err := r.Get()
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: %w", pa.fn, err)
		}
		return &sexpBrush{brushes: bs}, nil
	}
}

// (cuboid :min v :max v :material "m") or (cuboid :size v :center v)
func cuboid(b *builder.Builder, pa kwArgs) (result.Result[*brush.Brush], error) {
	bounds, err := pa.bounds()
	if err != nil {
		return result.Result[*brush.Brush]{}, err
	}
	mat, err := pa.string("material", "")
	if err != nil {
		return result.Result[*brush.Brush]{}, err
	}
	return b.CuboidBounds(bounds, mat), nil
}

// (cube 64 :center v :material "m")
func cube(b *builder.Builder, pa kwArgs) (result.Result[*brush.Brush], error) {
	if len(pa.positional) != 1 {
		return result.Result[*brush.Brush]{}, fmt.Errorf("cube requires a size")
	}
	size, err := toFloat64(pa.positional[0])
	if err != nil {
		return result.Result[*brush.Brush]{}, fmt.Errorf("cube: size: %w", err)
	}
	center, err := pa.vec("center", v3.Vec{})
	if err != nil {
		return result.Result[*brush.Brush]{}, err
	}
	mat, err := pa.string("material", "")
	if err != nil {
		return result.Result[*brush.Brush]{}, err
	}
	half := v3.Vec{X: size, Y: size, Z: size}.DivScalar(2)
	return b.CuboidBounds(sdf.Box3{Min: center.Sub(half), Max: center.Add(half)}, mat), nil
}

// roundArgs holds the arguments shared by the round shapes.
type roundArgs struct {
	bounds   sdf.Box3
	shape    builder.CircleShape
	axis     int
	material string
}

func parseRound(pa kwArgs) (roundArgs, error) {
	var ra roundArgs
	var err error
	if ra.bounds, err = pa.bounds(); err != nil {
		return ra, err
	}
	if ra.shape, err = pa.circle(); err != nil {
		return ra, err
	}
	if ra.axis, err = pa.axis("axis", 2); err != nil {
		return ra, err
	}
	ra.material, err = pa.string("material", "")
	return ra, err
}

// (cylinder :min v :max v :sides 12 :shape :vertex :axis :z)
func cylinder(b *builder.Builder, pa kwArgs) (result.Result[*brush.Brush], error) {
	ra, err := parseRound(pa)
	if err != nil {
		return result.Result[*brush.Brush]{}, err
	}
	return b.Cylinder(ra.bounds, ra.shape, ra.axis, ra.material), nil
}

// (cone :min v :max v :sides 12 :axis :z)
func cone(b *builder.Builder, pa kwArgs) (result.Result[*brush.Brush], error) {
	ra, err := parseRound(pa)
	if err != nil {
		return result.Result[*brush.Brush]{}, err
	}
	return b.Cone(ra.bounds, ra.shape, ra.axis, ra.material), nil
}

// (sphere :min v :max v :sides 12 :rings 6)
func sphere(b *builder.Builder, pa kwArgs) (result.Result[*brush.Brush], error) {
	ra, err := parseRound(pa)
	if err != nil {
		return result.Result[*brush.Brush]{}, err
	}
	rings, err := pa.int("rings", max(ra.shape.Sides()/2, 2))
	if err != nil {
		return result.Result[*brush.Brush]{}, err
	}
	return b.UVSphere(ra.bounds, ra.shape, rings, ra.axis, ra.material), nil
}

// (icosphere :min v :max v :iterations 1)
func icosphere(b *builder.Builder, pa kwArgs) (result.Result[*brush.Brush], error) {
	bounds, err := pa.bounds()
	if err != nil {
		return result.Result[*brush.Brush]{}, err
	}
	n, err := pa.int("iterations", 1)
	if err != nil {
		return result.Result[*brush.Brush]{}, err
	}
	mat, err := pa.string("material", "")
	if err != nil {
		return result.Result[*brush.Brush]{}, err
	}
	return b.IcoSphere(bounds, n, mat), nil
}

// (hull :points (list v ...) :material "m")
func hull(b *builder.Builder, pa kwArgs) (result.Result[*brush.Brush], error) {
	v, ok := pa.kw["points"]
	if !ok {
		return result.Result[*brush.Brush]{}, fmt.Errorf("hull: missing :points")
	}
	points, err := toVecList(v)
	if err != nil {
		return result.Result[*brush.Brush]{}, pa.errorf("points", err)
	}
	mat, err := pa.string("material", "")
	if err != nil {
		return result.Result[*brush.Brush]{}, err
	}
	return b.FromPoints(points, mat), nil
}

// (hollow-cylinder :min v :max v :thickness 8 :sides 8)
func hollowCylinder(b *builder.Builder, pa kwArgs) (result.Result[[]*brush.Brush], error) {
	ra, err := parseRound(pa)
	if err != nil {
		return result.Result[[]*brush.Brush]{}, err
	}
	thickness, err := pa.requireFloat("thickness")
	if err != nil {
		return result.Result[[]*brush.Brush]{}, err
	}
	return b.HollowCylinder(ra.bounds, thickness, ra.shape, ra.axis, ra.material), nil
}

// (stairs :min v :max v :steps 8 :axis :x :direction -1)
func stairs(b *builder.Builder, pa kwArgs) (result.Result[[]*brush.Brush], error) {
	bounds, err := pa.bounds()
	if err != nil {
		return result.Result[[]*brush.Brush]{}, err
	}
	steps, err := pa.int("steps", 8)
	if err != nil {
		return result.Result[[]*brush.Brush]{}, err
	}
	axis, err := pa.axis("axis", 0)
	if err != nil {
		return result.Result[[]*brush.Brush]{}, err
	}
	dir, err := pa.int("direction", 1)
	if err != nil {
		return result.Result[[]*brush.Brush]{}, err
	}
	mat, err := pa.string("material", "")
	if err != nil {
		return result.Result[[]*brush.Brush]{}, err
	}
	return b.Stairs(bounds, steps, axis, dir, mat), nil
}

// (arch :min v :max v :thickness 16 :sides 16 :axis :x)
func arch(b *builder.Builder, pa kwArgs) (result.Result[[]*brush.Brush], error) {
	bounds, err := pa.bounds()
	if err != nil {
		return result.Result[[]*brush.Brush]{}, err
	}
	shape, err := pa.circle()
	if err != nil {
		return result.Result[[]*brush.Brush]{}, err
	}
	axis, err := pa.axis("axis", 0)
	if err != nil {
		return result.Result[[]*brush.Brush]{}, err
	}
	thickness, err := pa.requireFloat("thickness")
	if err != nil {
		return result.Result[[]*brush.Brush]{}, err
	}
	mat, err := pa.string("material", "")
	if err != nil {
		return result.Result[[]*brush.Brush]{}, err
	}
	return b.Arch(bounds, thickness, shape, axis, mat), nil
}

// (spiral-stairs :center v :inner 16 :outer 64 :height 128 :steps 16 :rotations 1)
func spiralStairs(b *builder.Builder, pa kwArgs) (result.Result[[]*brush.Brush], error) {
	center, err := pa.vec("center", v3.Vec{})
	if err != nil {
		return result.Result[[]*brush.Brush]{}, err
	}
	var inner, outer, height, rotations float64
	for _, f := range []struct {
		name string
		dst  *float64
		def  float64
	}{
		{"inner", &inner, 0},
		{"outer", &outer, -1},
		{"height", &height, -1},
		{"rotations", &rotations, 1},
	} {
		if _, ok := pa.kw[f.name]; !ok && f.def < 0 {
			return result.Result[[]*brush.Brush]{}, fmt.Errorf("%s: missing :%s", pa.fn, f.name)
		}
		if *f.dst, err = pa.float(f.name, f.def); err != nil {
			return result.Result[[]*brush.Brush]{}, err
		}
	}
	steps, err := pa.int("steps", 16)
	if err != nil {
		return result.Result[[]*brush.Brush]{}, err
	}
	mat, err := pa.string("material", "")
	if err != nil {
		return result.Result[[]*brush.Brush]{}, err
	}
	return b.SpiralStairs(center, inner, outer, height, steps, rotations, mat), nil
}

// ---------------------------------------------------------------------------
// Edits
// ---------------------------------------------------------------------------

// editFunc edits one brush. Edits apply to every brush of a multi brush
// value; the first failure fails the call.
type editFunc func(world sdf.Box3, br *brush.Brush, pa kwArgs) result.Result[*brush.Brush]

func edit(world sdf.Box3, fn editFunc) builtin {
	return func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(dslName(name), args)
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("%s requires a brush as first argument", pa.fn)
		}
		in, err := toBrushes(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: %w", pa.fn, err)
		}
		out := make([]*brush.Brush, len(in))
		for i, br := range in {
			if out[i], err = fn(world, br, pa).Get(); err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", pa.fn, err)
			}
		}
		return &sexpBrush{brushes: out}, nil
	}
}

func fail(err error) result.Result[*brush.Brush] {
	return result.Fail[*brush.Brush](err)
}

// second returns the second positional argument as a vector.
func second(pa kwArgs) (v3.Vec, error) {
	if len(pa.positional) < 2 {
		return v3.Vec{}, fmt.Errorf("missing vector argument")
	}
	return toVec3(pa.positional[1])
}

// (translate b (vec3 ...) :lock true)
func translate(world sdf.Box3, br *brush.Brush, pa kwArgs) result.Result[*brush.Brush] {
	delta, err := second(pa)
	if err != nil {
		return fail(err)
	}
	lock, err := pa.bool("lock")
	if err != nil {
		return fail(err)
	}
	return br.Translate(world, delta, lock)
}

// (rotate b :axis :z :degrees 90 :origin v :lock true)
func rotate(world sdf.Box3, br *brush.Brush, pa kwArgs) result.Result[*brush.Brush] {
	axis, err := pa.axis("axis", 2)
	if err != nil {
		return fail(err)
	}
	deg, err := pa.requireFloat("degrees")
	if err != nil {
		return fail(err)
	}
	origin, err := pa.vec("origin", v3.Vec{})
	if err != nil {
		return fail(err)
	}
	lock, err := pa.bool("lock")
	if err != nil {
		return fail(err)
	}
	m := sdf.Translate3d(origin).
		Mul(sdf.Rotate3d(geom.AxisVector(axis), deg*math.Pi/180)).
		Mul(sdf.Translate3d(origin.Neg()))
	return br.Transform(world, m, lock)
}

// (scale b (vec3 2 2 1) :origin v :lock true)
func scale(world sdf.Box3, br *brush.Brush, pa kwArgs) result.Result[*brush.Brush] {
	factor, err := second(pa)
	if err != nil {
		return fail(err)
	}
	origin, err := pa.vec("origin", br.Centroid())
	if err != nil {
		return fail(err)
	}
	lock, err := pa.bool("lock")
	if err != nil {
		return fail(err)
	}
	m := sdf.Translate3d(origin).Mul(sdf.Scale3d(factor)).Mul(sdf.Translate3d(origin.Neg()))
	return br.Transform(world, m, lock)
}

// (mirror b :axis :x :origin v)
func mirror(world sdf.Box3, br *brush.Brush, pa kwArgs) result.Result[*brush.Brush] {
	axis, err := pa.axis("axis", 0)
	if err != nil {
		return fail(err)
	}
	origin, err := pa.vec("origin", v3.Vec{})
	if err != nil {
		return fail(err)
	}
	lock, err := pa.bool("lock")
	if err != nil {
		return fail(err)
	}
	return br.Mirror(world, axis, origin, lock)
}

// (clip b :normal v :point v :material "m") keeps the side behind the plane.
func clip(b *builder.Builder) editFunc {
	return func(world sdf.Box3, br *brush.Brush, pa kwArgs) result.Result[*brush.Brush] {
		n, err := pa.requireVec("normal")
		if err != nil {
			return fail(err)
		}
		p, err := pa.vec("point", v3.Vec{})
		if err != nil {
			return fail(err)
		}
		mat, err := pa.string("material", "")
		if err != nil {
			return fail(err)
		}
		plane, ok := geom.NewPlane(n, p)
		if !ok {
			return fail(fmt.Errorf("zero normal"))
		}
		return br.Clip(world, plane, b.Attributes(mat))
	}
}

// (bevel b :edge (segment ...) :distance 8) or :edges (list ...)
func bevel(world sdf.Box3, br *brush.Brush, pa kwArgs) result.Result[*brush.Brush] {
	d, err := pa.requireFloat("distance")
	if err != nil {
		return fail(err)
	}
	lock, err := pa.bool("lock")
	if err != nil {
		return fail(err)
	}
	if v, ok := pa.kw["edge"]; ok {
		seg, err := toSegment(v)
		if err != nil {
			return fail(pa.errorf("edge", err))
		}
		return br.BevelEdge(world, seg, d, lock)
	}
	v, ok := pa.kw["edges"]
	if !ok {
		return fail(fmt.Errorf("missing :edge or :edges"))
	}
	items, err := sexpListToSlice(v)
	if err != nil {
		return fail(pa.errorf("edges", err))
	}
	segs := make([]geom.Segment, len(items))
	for i, item := range items {
		if segs[i], err = toSegment(item); err != nil {
			return fail(pa.errorf("edges", err))
		}
	}
	return br.BevelEdges(world, segs, d, lock)
}

// (inset b :normal v :anchor v :distance 4 :lock true)
func inset(world sdf.Box3, br *brush.Brush, pa kwArgs) result.Result[*brush.Brush] {
	n, err := pa.requireVec("normal")
	if err != nil {
		return fail(err)
	}
	anchor, err := pa.requireVec("anchor")
	if err != nil {
		return fail(err)
	}
	d, err := pa.requireFloat("distance")
	if err != nil {
		return fail(err)
	}
	lock, err := pa.bool("lock")
	if err != nil {
		return fail(err)
	}
	return br.InsetFace(world, n, anchor, d, lock)
}

// (move-vertices b :vertices (list v ...) :delta v)
func moveVertices(world sdf.Box3, br *brush.Brush, pa kwArgs) result.Result[*brush.Brush] {
	v, ok := pa.kw["vertices"]
	if !ok {
		return fail(fmt.Errorf("missing :vertices"))
	}
	positions, err := toVecList(v)
	if err != nil {
		return fail(pa.errorf("vertices", err))
	}
	delta, err := pa.requireVec("delta")
	if err != nil {
		return fail(err)
	}
	return br.MoveVertices(world, positions, delta)
}

// (material b "name")
func material(world sdf.Box3, br *brush.Brush, pa kwArgs) result.Result[*brush.Brush] {
	if len(pa.positional) < 2 {
		return fail(fmt.Errorf("missing material name"))
	}
	name, err := toString(pa.positional[1])
	if err != nil {
		return fail(err)
	}
	return result.Ok(br.WithMaterial(name))
}

// ---------------------------------------------------------------------------
// Scene structure
// ---------------------------------------------------------------------------

// (brush "name" b) names a single brush.
func brushNode(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	if len(args) != 2 {
		return zygo.SexpNull, fmt.Errorf("brush requires a name and a brush")
	}
	nodeName, err := toString(args[0])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("brush: name: %w", err)
	}
	br, err := toBrush(args[1])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("brush %q: %w", nodeName, err)
	}
	return &sexpNode{node: &pendingNode{name: nodeName, data: scene.BrushData{Brush: br}}}, nil
}

// (group "name" :description "..." children...)
func groupNode(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	pa := parseArgs("group", args)
	nodeName, children, err := namedChildren(pa)
	if err != nil {
		return zygo.SexpNull, err
	}
	desc, err := pa.string("description", "")
	if err != nil {
		return zygo.SexpNull, err
	}
	return &sexpNode{node: &pendingNode{
		name:     nodeName,
		data:     scene.GroupData{Description: desc},
		children: children,
	}}, nil
}

// (entity "light" :name "lamp" :origin v :properties (list "k" "v" ...) children...)
func entityNode(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	pa := parseArgs("entity", args)
	if len(pa.positional) < 1 {
		return zygo.SexpNull, fmt.Errorf("entity requires a classname")
	}
	class, err := toString(pa.positional[0])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("entity: classname: %w", err)
	}
	children, err := toChildren(pa.positional[1:])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("entity %q: %w", class, err)
	}
	nodeName, err := pa.string("name", "")
	if err != nil {
		return zygo.SexpNull, err
	}
	origin, err := pa.vec("origin", v3.Vec{})
	if err != nil {
		return zygo.SexpNull, err
	}
	props := map[string]string{}
	if v, ok := pa.kw["properties"]; ok {
		items, err := sexpListToSlice(v)
		if err != nil {
			return zygo.SexpNull, pa.errorf("properties", err)
		}
		if len(items)%2 != 0 {
			return zygo.SexpNull, fmt.Errorf("entity: properties: odd number of entries")
		}
		for i := 0; i < len(items); i += 2 {
			k, err := toKeywordString(items[i])
			if err != nil {
				return zygo.SexpNull, pa.errorf("properties", err)
			}
			val, err := toString(items[i+1])
			if err != nil {
				return zygo.SexpNull, pa.errorf("properties", err)
			}
			props[k] = val
		}
	}
	return &sexpNode{node: &pendingNode{
		name:     nodeName,
		data:     scene.EntityData{Classname: class, Origin: origin, Properties: props},
		children: children,
	}}, nil
}

// namedChildren reads a leading name and the remaining positional children.
func namedChildren(pa kwArgs) (string, []*pendingNode, error) {
	if len(pa.positional) < 1 {
		return "", nil, fmt.Errorf("%s requires a name argument", pa.fn)
	}
	nodeName, err := toString(pa.positional[0])
	if err != nil {
		return "", nil, fmt.Errorf("%s: name: %w", pa.fn, err)
	}
	children, err := toChildren(pa.positional[1:])
	if err != nil {
		return "", nil, fmt.Errorf("%s %q: %w", pa.fn, nodeName, err)
	}
	return nodeName, children, nil
}

// insert adds n and its subtree under parent.
func insert(tx *scene.Tx, parent scene.NodeID, n *pendingNode) (scene.NodeID, error) {
	id, err := tx.Add(parent, n.name, n.data)
	if err != nil {
		return scene.NodeID{}, err
	}
	for _, c := range n.children {
		if _, err := insert(tx, id, c); err != nil {
			return scene.NodeID{}, err
		}
	}
	return id, nil
}

// (layer "name" :hidden true :locked true children...)
func layerBuiltin(tx *scene.Tx) builtin {
	return func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs("layer", args)
		nodeName, children, err := namedChildren(pa)
		if err != nil {
			return zygo.SexpNull, err
		}
		var d scene.LayerData
		if d.Hidden, err = pa.bool("hidden"); err != nil {
			return zygo.SexpNull, err
		}
		if d.Locked, err = pa.bool("locked"); err != nil {
			return zygo.SexpNull, err
		}
		id, err := insert(tx, scene.NodeID{}, &pendingNode{name: nodeName, data: d, children: children})
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("layer %q: %w", nodeName, err)
		}
		return &sexpNodeRef{id: id, name: nodeName}, nil
	}
}

// (place children...) inserts children at the top level, or under the node
// given by :in.
func placeBuiltin(tx *scene.Tx) builtin {
	return func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs("place", args)
		var parent scene.NodeID
		if v, ok := pa.kw["in"]; ok {
			ref, ok := v.(*sexpNodeRef)
			if !ok {
				return zygo.SexpNull, fmt.Errorf("place: in: expected node reference, got %T (%s)", v, v.SexpString(nil))
			}
			parent = ref.id
		}
		children, err := toChildren(pa.positional)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("place: %w", err)
		}
		var last *sexpNodeRef
		for _, c := range children {
			id, err := insert(tx, parent, c)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("place: %w", err)
			}
			last = &sexpNodeRef{id: id, name: c.name}
		}
		if last == nil {
			return zygo.SexpNull, nil
		}
		return last, nil
	}
}

// (find-node "name") returns the brush of a placed brush node, or a
// reference to any other node.
func findNodeBuiltin(tx *scene.Tx) builtin {
	return func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("find-node requires a name argument")
		}
		nodeName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("find-node: name: %w", err)
		}
		n := tx.Lookup(nodeName)
		if n == nil {
			return zygo.SexpNull, fmt.Errorf("find-node: no node named %q", nodeName)
		}
		if d, ok := n.Data.(scene.BrushData); ok {
			return &sexpBrush{brushes: []*brush.Brush{d.Brush}}, nil
		}
		return &sexpNodeRef{id: n.ID, name: nodeName}, nil
	}
}

// dslName turns a registered name back into its script spelling.
func dslName(name string) string {
	out := []byte(name)
	for i, c := range out {
		if c == '_' {
			out[i] = '-'
		}
	}
	return string(out)
}

package engine

import (
	"fmt"
	"math"
	"strings"

	"github.com/chazu/brushwork/pkg/brush"
	"github.com/chazu/brushwork/pkg/builder"
	"github.com/chazu/brushwork/pkg/geom"
	"github.com/chazu/brushwork/pkg/scene"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Script values
// ---------------------------------------------------------------------------

// sexpVec3 wraps a vector.
type sexpVec3 struct {
	vec v3.Vec
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// sexpSegment wraps an edge handle.
type sexpSegment struct {
	seg geom.Segment
}

func (s *sexpSegment) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(segment %v %v)", s.seg.Start, s.seg.End)
}
func (s *sexpSegment) Type() *zygo.RegisteredType { return nil }

// sexpBrush wraps a brush value that is not yet part of the scene.
type sexpBrush struct {
	brushes []*brush.Brush
}

func (b *sexpBrush) SexpString(ps *zygo.PrintState) string {
	if len(b.brushes) == 1 {
		return b.brushes[0].String()
	}
	return fmt.Sprintf("(brushes %d)", len(b.brushes))
}
func (b *sexpBrush) Type() *zygo.RegisteredType { return nil }

// pendingNode is a subtree that is inserted into the scene when it reaches
// a layer or add form.
type pendingNode struct {
	name     string
	data     scene.NodeData
	children []*pendingNode
}

// sexpNode wraps a pending subtree.
type sexpNode struct {
	node *pendingNode
}

func (n *sexpNode) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(%s %q)", n.node.data.Kind(), n.node.name)
}
func (n *sexpNode) Type() *zygo.RegisteredType { return nil }

// sexpNodeRef refers to a node already in the scene.
type sexpNodeRef struct {
	id   scene.NodeID
	name string
}

func (n *sexpNodeRef) SexpString(ps *zygo.PrintState) string {
	if n.name != "" {
		return fmt.Sprintf("(noderef %q)", n.name)
	}
	return fmt.Sprintf("(noderef %s)", n.id.Short())
}
func (n *sexpNodeRef) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// isKW reports whether s is a preprocessed keyword and returns its name.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok || !strings.HasPrefix(str.S, kwPrefix) {
		return "", false
	}
	return str.S[len(kwPrefix):], true
}

// kwArgs holds a mixed positional and keyword argument list.
type kwArgs struct {
	fn         string
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments. A
// trailing keyword without a value is a flag set to true.
func parseArgs(fn string, args []zygo.Sexp) kwArgs {
	pa := kwArgs{fn: fn, kw: make(map[string]zygo.Sexp)}
	for i := 0; i < len(args); i++ {
		name, ok := isKW(args[i])
		switch {
		case !ok:
			pa.positional = append(pa.positional, args[i])
		case i+1 < len(args):
			pa.kw[name] = args[i+1]
			i++
		default:
			pa.kw[name] = &zygo.SexpBool{Val: true}
		}
	}
	return pa
}

func (pa kwArgs) errorf(arg string, err error) error {
	return fmt.Errorf("%s: %s: %w", pa.fn, arg, err)
}

func (pa kwArgs) float(name string, def float64) (float64, error) {
	v, ok := pa.kw[name]
	if !ok {
		return def, nil
	}
	f, err := toFloat64(v)
	if err != nil {
		return 0, pa.errorf(name, err)
	}
	return f, nil
}

func (pa kwArgs) requireFloat(name string) (float64, error) {
	if _, ok := pa.kw[name]; !ok {
		return 0, fmt.Errorf("%s: missing :%s", pa.fn, name)
	}
	return pa.float(name, 0)
}

func (pa kwArgs) int(name string, def int) (int, error) {
	v, ok := pa.kw[name]
	if !ok {
		return def, nil
	}
	n, err := toInt(v)
	if err != nil {
		return 0, pa.errorf(name, err)
	}
	return n, nil
}

func (pa kwArgs) bool(name string) (bool, error) {
	v, ok := pa.kw[name]
	if !ok {
		return false, nil
	}
	b, err := toBool(v)
	if err != nil {
		return false, pa.errorf(name, err)
	}
	return b, nil
}

func (pa kwArgs) string(name, def string) (string, error) {
	v, ok := pa.kw[name]
	if !ok {
		return def, nil
	}
	s, err := toString(v)
	if err != nil {
		return "", pa.errorf(name, err)
	}
	return s, nil
}

func (pa kwArgs) vec(name string, def v3.Vec) (v3.Vec, error) {
	v, ok := pa.kw[name]
	if !ok {
		return def, nil
	}
	vec, err := toVec3(v)
	if err != nil {
		return v3.Vec{}, pa.errorf(name, err)
	}
	return vec, nil
}

func (pa kwArgs) requireVec(name string) (v3.Vec, error) {
	if _, ok := pa.kw[name]; !ok {
		return v3.Vec{}, fmt.Errorf("%s: missing :%s", pa.fn, name)
	}
	return pa.vec(name, v3.Vec{})
}

func (pa kwArgs) axis(name string, def int) (int, error) {
	v, ok := pa.kw[name]
	if !ok {
		return def, nil
	}
	a, err := toAxis(v)
	if err != nil {
		return 0, pa.errorf(name, err)
	}
	return a, nil
}

// bounds reads :min and :max, or :center (default origin) and :size.
func (pa kwArgs) bounds() (sdf.Box3, error) {
	if _, ok := pa.kw["size"]; ok {
		center, err := pa.vec("center", v3.Vec{})
		if err != nil {
			return sdf.Box3{}, err
		}
		size, err := pa.vec("size", v3.Vec{})
		if err != nil {
			return sdf.Box3{}, err
		}
		half := size.DivScalar(2)
		return sdf.Box3{Min: center.Sub(half), Max: center.Add(half)}, nil
	}
	lo, err := pa.requireVec("min")
	if err != nil {
		return sdf.Box3{}, err
	}
	hi, err := pa.requireVec("max")
	if err != nil {
		return sdf.Box3{}, err
	}
	return sdf.Box3{Min: lo, Max: hi}, nil
}

// circle reads :sides (default 8) with :shape edge or vertex, or :precision
// for a scalable shape.
func (pa kwArgs) circle() (builder.CircleShape, error) {
	if _, ok := pa.kw["precision"]; ok {
		p, err := pa.int("precision", 0)
		if err != nil {
			return nil, err
		}
		return builder.Scalable{Precision: p}, nil
	}
	sides, err := pa.int("sides", 8)
	if err != nil {
		return nil, err
	}
	shape := "edge"
	if v, ok := pa.kw["shape"]; ok {
		if shape, err = toKeywordString(v); err != nil {
			return nil, pa.errorf("shape", err)
		}
	}
	switch shape {
	case "edge":
		return builder.EdgeAligned{NumSides: sides}, nil
	case "vertex":
		return builder.VertexAligned{NumSides: sides}, nil
	}
	return nil, fmt.Errorf("%s: shape: invalid shape %q, expected edge or vertex", pa.fn, shape)
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toInt extracts an integer; floats are accepted when integral.
func toInt(s zygo.Sexp) (int, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return int(v.Val), nil
	case *zygo.SexpFloat:
		if v.Val == math.Trunc(v.Val) {
			return int(v.Val), nil
		}
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

func toBool(s zygo.Sexp) (bool, error) {
	if b, ok := s.(*zygo.SexpBool); ok {
		return b.Val, nil
	}
	return false, fmt.Errorf("expected boolean, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Handles both preprocessed keywords (__kw_z) and plain strings ("z").
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	return strings.TrimPrefix(str.S, kwPrefix), nil
}

// toAxis converts :x, :y or :z to an axis index.
func toAxis(s zygo.Sexp) (int, error) {
	name, err := toKeywordString(s)
	if err != nil {
		return 0, fmt.Errorf("expected axis keyword (:x, :y, :z): %w", err)
	}
	switch name {
	case "x":
		return 0, nil
	case "y":
		return 1, nil
	case "z":
		return 2, nil
	}
	return 0, fmt.Errorf("invalid axis %q, expected x, y, or z", name)
}

func toVec3(s zygo.Sexp) (v3.Vec, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return v3.Vec{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

func toSegment(s zygo.Sexp) (geom.Segment, error) {
	if v, ok := s.(*sexpSegment); ok {
		return v.seg, nil
	}
	return geom.Segment{}, fmt.Errorf("expected segment, got %T (%s)", s, s.SexpString(nil))
}

// toBrushes extracts the brushes of a brush value.
func toBrushes(s zygo.Sexp) ([]*brush.Brush, error) {
	if v, ok := s.(*sexpBrush); ok {
		return v.brushes, nil
	}
	return nil, fmt.Errorf("expected brush, got %T (%s)", s, s.SexpString(nil))
}

// toBrush extracts a single brush.
func toBrush(s zygo.Sexp) (*brush.Brush, error) {
	bs, err := toBrushes(s)
	if err != nil {
		return nil, err
	}
	if len(bs) != 1 {
		return nil, fmt.Errorf("expected one brush, got %d", len(bs))
	}
	return bs[0], nil
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

func toVecList(s zygo.Sexp) ([]v3.Vec, error) {
	items, err := sexpListToSlice(s)
	if err != nil {
		return nil, err
	}
	out := make([]v3.Vec, len(items))
	for i, item := range items {
		if out[i], err = toVec3(item); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
	}
	return out, nil
}

// toChildren flattens brushes, pending nodes and lists of them into
// pending nodes. Unnamed brushes become anonymous brush nodes.
func toChildren(args []zygo.Sexp) ([]*pendingNode, error) {
	var out []*pendingNode
	for _, a := range args {
		switch v := a.(type) {
		case *sexpBrush:
			for _, b := range v.brushes {
				out = append(out, &pendingNode{data: scene.BrushData{Brush: b}})
			}
		case *sexpNode:
			out = append(out, v.node)
		case *zygo.SexpPair, *zygo.SexpArray:
			items, err := sexpListToSlice(v)
			if err != nil {
				return nil, err
			}
			nested, err := toChildren(items)
			if err != nil {
				return nil, err
			}
			out = append(out, nested...)
		default:
			if a == zygo.SexpNull {
				continue
			}
			return nil, fmt.Errorf("expected brush or node, got %T (%s)", a, a.SexpString(nil))
		}
	}
	return out, nil
}

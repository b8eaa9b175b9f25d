package brush

import (
	"fmt"
	"math"
	"strings"

	"github.com/chazu/brushwork/pkg/geom"
	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// MapFormat selects the numeric conventions of the target map format. It
// affects texture projection only, never topology.
type MapFormat int

const (
	FormatStandard MapFormat = iota // Quake, paraxial projection
	FormatValve                     // Valve 220, explicit texture axes
	FormatQuake2                    // paraxial with surface flags
	FormatQuake3                    // paraxial with surface flags
)

func (f MapFormat) String() string {
	switch f {
	case FormatStandard:
		return "standard"
	case FormatValve:
		return "valve"
	case FormatQuake2:
		return "quake2"
	case FormatQuake3:
		return "quake3"
	default:
		return "unknown"
	}
}

// ParseFormat parses a format name as printed by String.
func ParseFormat(s string) (MapFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "standard", "quake", "":
		return FormatStandard, nil
	case "valve", "valve220":
		return FormatValve, nil
	case "quake2":
		return FormatQuake2, nil
	case "quake3":
		return FormatQuake3, nil
	default:
		return 0, fmt.Errorf("unknown map format %q", s)
	}
}

// ExplicitAxes reports whether faces carry their own texture axes.
func (f MapFormat) ExplicitAxes() bool {
	return f == FormatValve
}

// SurfaceFlags reports whether faces carry content and surface flags.
func (f MapFormat) SurfaceFlags() bool {
	return f == FormatQuake2 || f == FormatQuake3
}

// Attributes are the material and texture parameters of one face.
type Attributes struct {
	Material string
	Offset   v2.Vec
	Scale    v2.Vec
	Rotation float64 // degrees

	// Valve format only.
	UAxis v3.Vec
	VAxis v3.Vec

	// Quake 2 and 3 only.
	SurfaceContents int
	SurfaceFlags    int
	SurfaceValue    float64
}

// DefaultAttributes returns unscaled, unrotated attributes for material.
func DefaultAttributes(material string) Attributes {
	return Attributes{Material: material, Scale: v2.Vec{X: 1, Y: 1}}
}

// paraxialAxes returns the Quake base texture axes for a face normal.
func paraxialAxes(n v3.Vec) (u, v v3.Vec, axis int) {
	switch axis = geom.MajorAxis(n); axis {
	case 0:
		return v3.Vec{Y: 1}, v3.Vec{Z: -1}, axis
	case 1:
		return v3.Vec{X: 1}, v3.Vec{Z: -1}, axis
	default:
		return v3.Vec{X: 1}, v3.Vec{Y: -1}, axis
	}
}

// textureAxes returns the axes used to project a face with normal n.
func (a Attributes) textureAxes(format MapFormat, n v3.Vec) (u, v v3.Vec) {
	if format.ExplicitAxes() && !geom.IsZero(a.UAxis, 0) && !geom.IsZero(a.VAxis, 0) {
		return a.UAxis, a.VAxis
	}
	u, v, axis := paraxialAxes(n)
	if a.Rotation != 0 {
		rot := sdf.Rotate3d(geom.AxisVector(axis), a.Rotation*math.Pi/180)
		u = rot.MulPosition(u)
		v = rot.MulPosition(v)
	}
	return u, v
}

// withAxes fills in explicit axes for formats that need them.
func (a Attributes) withAxes(format MapFormat, n v3.Vec) Attributes {
	if format.ExplicitAxes() && (geom.IsZero(a.UAxis, 0) || geom.IsZero(a.VAxis, 0)) {
		a.UAxis, a.VAxis = a.textureAxes(FormatStandard, n)
	}
	if a.Scale.X == 0 {
		a.Scale.X = 1
	}
	if a.Scale.Y == 0 {
		a.Scale.Y = 1
	}
	return a
}

// TexCoords returns the texture coordinates of world point p on a face with
// normal n.
func (a Attributes) TexCoords(format MapFormat, n, p v3.Vec) v2.Vec {
	u, v := a.textureAxes(format, n)
	return v2.Vec{
		X: p.Dot(u)/a.Scale.X + a.Offset.X,
		Y: p.Dot(v)/a.Scale.Y + a.Offset.Y,
	}
}

// locked returns the attributes of a face moved by m from (n, p) to
// (n2, p2) such that the texel at p stays at p2.
func (a Attributes) locked(format MapFormat, m sdf.M44, n, p, n2, p2 v3.Vec) Attributes {
	want := a.TexCoords(format, n, p)
	out := a
	if format.ExplicitAxes() {
		o := m.MulPosition(v3.Vec{})
		if u, ok := geom.Normalize(m.MulPosition(a.UAxis).Sub(o)); ok {
			out.UAxis = u
		}
		if v, ok := geom.Normalize(m.MulPosition(a.VAxis).Sub(o)); ok {
			out.VAxis = v
		}
	}
	out.Offset = v2.Vec{}
	got := out.TexCoords(format, n2, p2)
	out.Offset = v2.Vec{X: want.X - got.X, Y: want.Y - got.Y}
	return out
}

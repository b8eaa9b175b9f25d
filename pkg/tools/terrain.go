package tools

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/chazu/brushwork/pkg/builder"
	"github.com/chazu/brushwork/pkg/geom"
	"github.com/chazu/brushwork/pkg/logging"
	"github.com/chazu/brushwork/pkg/scene"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/samber/lo"
)

const (
	// DefaultTerrainSeed seeds GenerateTerrain when no seed is given.
	DefaultTerrainSeed = 12345
	// DefaultTerrainHeight is the height of a column before noise.
	DefaultTerrainHeight = 64
)

// TerrainOptions controls GenerateTerrain.
type TerrainOptions struct {
	Rows, Cols int
	// BaseHeight is the height every column starts from. Zero means
	// DefaultTerrainHeight.
	BaseHeight float64
	// Chaos is the largest random height added to a column.
	Chaos float64
	// Seed makes the result reproducible. Zero means DefaultTerrainSeed.
	Seed     uint64
	Material string
	// Parent receives the columns. The zero ID adds a new layer, named
	// "terrain" unless that name is taken.
	Parent scene.NodeID
}

// GenerateTerrain covers the XY extent of bounds with rows x cols column
// brushes standing on bounds.Min.Z, each BaseHeight plus a random amount in
// [0, Chaos) tall.
func GenerateTerrain(doc *scene.Document, b *builder.Builder, bounds sdf.Box3, opts TerrainOptions) ([]scene.NodeID, error) {
	if opts.Rows < 1 || opts.Cols < 1 {
		return nil, fmt.Errorf("terrain: %dx%d cells", opts.Rows, opts.Cols)
	}
	if opts.Chaos < 0 {
		return nil, fmt.Errorf("terrain: chaos %v", opts.Chaos)
	}
	size := bounds.Size()
	if size.X <= 0 || size.Y <= 0 {
		return nil, fmt.Errorf("terrain: bounds [%v %v] have no area", bounds.Min, bounds.Max)
	}
	if opts.BaseHeight == 0 {
		opts.BaseHeight = DefaultTerrainHeight
	}
	if opts.Seed == 0 {
		opts.Seed = DefaultTerrainSeed
	}
	rng := rand.New(rand.NewPCG(opts.Seed, 0))
	cellW, cellD := size.X/float64(opts.Cols), size.Y/float64(opts.Rows)

	var made []scene.NodeID
	err := doc.Apply(func(tx *scene.Tx) error {
		parent := opts.Parent
		if parent.IsZero() {
			name := "terrain"
			if tx.Lookup(name) != nil {
				name = ""
			}
			var err error
			if parent, err = tx.Add(scene.NodeID{}, name, scene.LayerData{}); err != nil {
				return err
			}
		}
		for r := 0; r < opts.Rows; r++ {
			for c := 0; c < opts.Cols; c++ {
				h := opts.BaseHeight + rng.Float64()*opts.Chaos
				base := v3.Vec{X: bounds.Min.X + float64(c)*cellW, Y: bounds.Min.Y + float64(r)*cellD, Z: bounds.Min.Z}
				col, err := b.CuboidBounds(sdf.Box3{Min: base, Max: base.Add(v3.Vec{X: cellW, Y: cellD, Z: h})}, opts.Material).Get()
				if err != nil {
					return fmt.Errorf("column %d,%d: %w", r, c, err)
				}
				id, err := tx.AddBrush(parent, "", col)
				if err != nil {
					return err
				}
				made = append(made, id)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("terrain: %w", err)
	}
	logging.For("tools").Infof("terrain: %d columns", len(made))
	return made, nil
}

// Sculpt raises the top face of every selected brush whose top lies within
// radius of center in the XY plane. The rise is intensity at the center and
// falls off linearly to zero at radius; a negative intensity lowers.
func Sculpt(doc *scene.Document, sel []scene.NodeID, center v3.Vec, radius, intensity float64) error {
	if radius <= 0 {
		return fmt.Errorf("sculpt: radius %v", radius)
	}
	up := v3.Vec{Z: 1}
	err := doc.Apply(func(tx *scene.Tx) error {
		nodes, err := normalize(tx, sel)
		if err != nil {
			return err
		}
		for _, n := range brushesUnder(tx, nodes) {
			br := n.Data.(scene.BrushData).Brush
			fi, ok := br.FindFace(up)
			if !ok {
				continue
			}
			top := br.Face(fi).Polygon
			c := top.Centroid()
			d := math.Hypot(c.X-center.X, c.Y-center.Y)
			if d >= radius {
				continue
			}
			rise := intensity * (1 - d/radius)
			if math.Abs(rise) <= moveEpsilon {
				continue
			}
			moved, err := br.MoveVertices(doc.WorldBounds(), top, geom.WithComponent(v3.Vec{}, 2, rise)).Get()
			if err != nil {
				return fmt.Errorf("brush %s: %w", label(n), err)
			}
			if err := tx.ReplaceBrush(n.ID, moved); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("sculpt: %w", err)
	}
	return nil
}

// brushesUnder returns the brush nodes in the subtrees at ids.
func brushesUnder(r reader, ids []scene.NodeID) []*scene.Node {
	return lo.Filter(subtree(r, ids), func(n *scene.Node, _ int) bool {
		return n.Kind() == scene.KindBrush
	})
}

package tessellate_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/chazu/brushwork/pkg/brush"
	"github.com/chazu/brushwork/pkg/builder"
	"github.com/chazu/brushwork/pkg/kernel"
	"github.com/chazu/brushwork/pkg/kernel/sdfx"
	"github.com/chazu/brushwork/pkg/scene"
	"github.com/chazu/brushwork/pkg/tessellate"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

var world = sdf.Box3{
	Min: v3.Vec{X: -4096, Y: -4096, Z: -4096},
	Max: v3.Vec{X: 4096, Y: 4096, Z: 4096},
}

// newScene builds a visible layer with a named cube and an unnamed cone,
// and a hidden layer with one more cube.
func newScene(t *testing.T) *scene.Document {
	t.Helper()
	b := builder.New(brush.FormatStandard, world)
	doc := scene.New(world)
	err := doc.Apply(func(tx *scene.Tx) error {
		visible, err := tx.Add(scene.NodeID{}, "visible", scene.LayerData{})
		if err != nil {
			return err
		}
		if _, err := tx.AddBrush(visible, "crate", b.Cube(32, "wood").MustGet()); err != nil {
			return err
		}
		cone := b.Cone(sdf.Box3{Min: v3.Vec{X: 40}, Max: v3.Vec{X: 72, Y: 32, Z: 32}}, builder.VertexAligned{NumSides: 6}, 2, "stone")
		if _, err := tx.AddBrush(visible, "", cone.MustGet()); err != nil {
			return err
		}
		hidden, err := tx.Add(scene.NodeID{}, "hidden", scene.LayerData{Hidden: true})
		if err != nil {
			return err
		}
		_, err = tx.AddBrush(hidden, "ghost", b.Cube(16, "glass").MustGet())
		return err
	})
	if err != nil {
		t.Fatalf("building scene: %v", err)
	}
	return doc
}

func TestTessellate(t *testing.T) {
	doc := newScene(t)
	meshes, err := tessellate.Tessellate(doc)
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	if len(meshes) != 2 {
		t.Fatalf("got %d meshes, want 2 (hidden layer skipped)", len(meshes))
	}
	if meshes[0].Name != "crate" {
		t.Errorf("first mesh name = %q, want crate", meshes[0].Name)
	}
	if len(meshes[1].Name) != 8 {
		t.Errorf("unnamed brush mesh should use the short ID, got %q", meshes[1].Name)
	}
	// A cube fans into two triangles per face.
	if got := meshes[0].TriangleCount(); got != 12 {
		t.Errorf("cube triangles = %d, want 12", got)
	}
	// A hexagonal cone: a four-triangle base and six sides.
	if got := meshes[1].TriangleCount(); got != 10 {
		t.Errorf("cone triangles = %d, want 10", got)
	}
}

func TestTessellateEmpty(t *testing.T) {
	meshes, err := tessellate.Tessellate(nil)
	if err != nil || len(meshes) != 0 {
		t.Fatalf("nil document: %v, %d meshes", err, len(meshes))
	}
	meshes, err = tessellate.Tessellate(scene.New(world))
	if err != nil || len(meshes) != 0 {
		t.Fatalf("empty document: %v, %d meshes", err, len(meshes))
	}
}

func TestPreview(t *testing.T) {
	doc := newScene(t)
	m, err := tessellate.Preview(doc, sdfx.New().WithCells(32))
	if err != nil {
		t.Fatalf("Preview failed: %v", err)
	}
	if m.IsEmpty() {
		t.Fatal("preview mesh is empty")
	}
	if m.Name != "preview" {
		t.Errorf("preview name = %q", m.Name)
	}

	_, err = tessellate.Preview(scene.New(world), sdfx.New())
	if !errors.Is(err, kernel.ErrEmptyResult) {
		t.Errorf("empty scene preview error = %v, want ErrEmptyResult", err)
	}
}

func TestMergeAndWriteSTL(t *testing.T) {
	doc := newScene(t)
	meshes, err := tessellate.Tessellate(doc)
	if err != nil {
		t.Fatal(err)
	}
	merged := tessellate.Merge(meshes)
	if merged.TriangleCount() != 22 {
		t.Errorf("merged triangles = %d, want 22", merged.TriangleCount())
	}

	path := filepath.Join(t.TempDir(), "scene.stl")
	if err := tessellate.WriteSTL(path, meshes); err != nil {
		t.Fatalf("WriteSTL failed: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	// Binary STL: 80 byte header, 4 byte count, 50 bytes per triangle.
	if want := int64(84 + 50*22); info.Size() != want {
		t.Errorf("STL size = %d, want %d", info.Size(), want)
	}

	if err := tessellate.WriteSTL(filepath.Join(t.TempDir(), "empty.stl"), nil); err == nil {
		t.Error("writing nothing should fail")
	}
}

package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/chazu/brushwork/pkg/config"
	"github.com/chazu/brushwork/pkg/engine"
	"github.com/chazu/brushwork/pkg/kernel"
	"github.com/chazu/brushwork/pkg/kernel/sdfx"
	"github.com/chazu/brushwork/pkg/logging"
	"github.com/chazu/brushwork/pkg/scene"
	"github.com/chazu/brushwork/pkg/tessellate"
	"github.com/chazu/brushwork/pkg/tools"
	"github.com/samber/lo"
)

// App runs scripts through the engine and turns the resulting scene into
// statistics and meshes.
type App struct {
	engine *engine.Engine
	kernel *sdfx.SdfxKernel
}

// Report is the full result of one evaluation.
type Report struct {
	Document *scene.Document
	Meshes   []*kernel.Mesh
	Stats    tools.Measurement
	Errors   []engine.EvalError
	Warnings []engine.EvalWarning
	Fatal    error
}

// OK reports whether the script produced a scene.
func (r Report) OK() bool {
	return r.Fatal == nil && len(r.Errors) == 0 && r.Document != nil
}

// Err folds the fatal error and the script errors into one error.
func (r Report) Err() error {
	if r.Fatal != nil {
		return r.Fatal
	}
	return errors.Join(lo.Map(r.Errors, func(e engine.EvalError, _ int) error { return e })...)
}

// NewApp creates an App configured by cfg.
func NewApp(cfg *config.Config) *App {
	return &App{
		engine: engine.NewEngine(engine.WithTimeout(cfg.Timeout()), engine.WithBuilder(cfg.Builder())),
		kernel: sdfx.New().WithCells(cfg.PreviewCells),
	}
}

// Evaluate runs source and tessellates every visible brush of the scene.
// Cancelling ctx abandons the evaluation.
func (a *App) Evaluate(ctx context.Context, source string) Report {
	res := a.engine.RunContext(ctx, source)
	rep := Report{Document: res.Document, Errors: res.Errors, Warnings: res.Warnings, Fatal: res.Fatal}
	if !rep.OK() {
		return rep
	}

	roots := lo.Map(rep.Document.Roots(), func(n *scene.Node, _ int) scene.NodeID { return n.ID })
	if len(roots) > 0 {
		stats, err := tools.Measure(rep.Document, roots)
		if err != nil {
			rep.Fatal = fmt.Errorf("measure: %w", err)
			return rep
		}
		rep.Stats = stats
	}

	meshes, err := tessellate.Tessellate(rep.Document)
	if err != nil {
		rep.Fatal = err
		return rep
	}
	rep.Meshes = meshes
	logging.For("app").Debug("evaluated", "brushes", rep.Stats.Brushes, "meshes", len(meshes))
	return rep
}

// Preview samples the union of the scene's visible brushes.
func (a *App) Preview(doc *scene.Document) (*kernel.Mesh, error) {
	return tessellate.Preview(doc, a.kernel)
}

// Export writes the report's meshes, or the sampled preview when preview
// is set, to an STL file at path.
func (a *App) Export(path string, rep Report, preview bool) error {
	if !rep.OK() {
		return fmt.Errorf("export %s: %w", path, rep.Err())
	}
	meshes := rep.Meshes
	if preview {
		m, err := a.Preview(rep.Document)
		if err != nil {
			return err
		}
		meshes = []*kernel.Mesh{m}
	}
	return tessellate.WriteSTL(path, meshes)
}

// Package engine evaluates brush scripts. A script is zygomys Lisp with a
// set of builtins that create brushes with the builder, edit them with the
// brush operations and arrange them into a scene document.
//
//	(layer "main"
//	  (brush "floor" (cuboid :min (vec3 -256 -256 -16) :max (vec3 256 256 0) :material "ground"))
//	  (group "pillars"
//	    (cylinder :min (vec3 -16 -16 0) :max (vec3 16 16 128) :sides 12)))
//
// Every evaluation runs in a fresh sandbox and builds its document in a
// single transaction, so a failing script never yields a partial scene.
package engine

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/chazu/brushwork/pkg/brush"
	"github.com/chazu/brushwork/pkg/builder"
	"github.com/chazu/brushwork/pkg/logging"
	"github.com/chazu/brushwork/pkg/scene"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	zygo "github.com/glycerine/zygomys/zygo"
)

// DefaultWorld is the world box used when no builder is configured.
var DefaultWorld = sdf.Box3{
	Min: v3.Vec{X: -4096, Y: -4096, Z: -4096},
	Max: v3.Vec{X: 4096, Y: 4096, Z: 4096},
}

// EvalError is a non-fatal error in user code: a parse error, a runtime
// error, or a builtin rejecting its arguments.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// EvalWarning is a validation warning about a node of the produced scene.
type EvalWarning struct {
	Message string
	NodeID  scene.NodeID
}

// EvalResult bundles the full output of an evaluation.
type EvalResult struct {
	Document *scene.Document
	Errors   []EvalError
	Warnings []EvalWarning
	Fatal    error
}

// OK reports whether the evaluation produced a document.
func (r EvalResult) OK() bool {
	return r.Fatal == nil && len(r.Errors) == 0 && r.Document != nil
}

// Engine evaluates scripts. It is safe for concurrent use; each call to
// Evaluate creates a fresh sandboxed environment.
type Engine struct {
	mu         sync.Mutex
	generation uint64
	timeout    time.Duration
	builder    *builder.Builder
}

// Option configures an Engine.
type Option func(*Engine)

// WithTimeout bounds each evaluation. Non-positive values keep the default.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithBuilder sets the builder that scripts create brushes with. Its world
// bounds also bound the produced document.
func WithBuilder(b *builder.Builder) Option {
	return func(e *Engine) {
		if b != nil {
			e.builder = b
		}
	}
}

// NewEngine creates an Engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		timeout: DefaultEvalTimeout,
		builder: builder.New(brush.FormatStandard, DefaultWorld),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Timeout returns the evaluation time limit.
func (e *Engine) Timeout() time.Duration { return e.timeout }

// Builder returns the builder scripts create brushes with.
func (e *Engine) Builder() *builder.Builder { return e.builder }

// Evaluate runs source and returns the scene it builds.
//
// Return semantics:
//   - On success: returns document + nil errors + nil error
//   - On parse/eval failure: returns nil document + eval errors + nil error
//   - On fatal failure (timeout, panic, superseded): returns nil + nil + error
func (e *Engine) Evaluate(source string) (*scene.Document, []EvalError, error) {
	return e.EvaluateContext(context.Background(), source)
}

// EvaluateContext is Evaluate bounded by ctx as well as the engine timeout.
func (e *Engine) EvaluateContext(ctx context.Context, source string) (*scene.Document, []EvalError, error) {
	gen := e.begin()
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	ch := make(chan evalResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()
		doc, evalErrs, err := e.evaluate(source)
		ch <- evalResult{doc: doc, errors: evalErrs, err: err}
	}()

	doc, evalErrs, err := e.wait(ctx, ch, gen)
	log := logging.For("engine")
	switch {
	case err != nil:
		log.Warn("evaluation failed", "generation", gen, "err", err)
	case len(evalErrs) > 0:
		log.Info("script has errors", "generation", gen, "count", len(evalErrs), "first", evalErrs[0].Error())
	default:
		log.Debug("evaluated script", "generation", gen, "nodes", doc.NodeCount())
	}
	return doc, evalErrs, err
}

// Run is Evaluate bundled into an EvalResult, with validation warnings of
// the produced document attached.
func (e *Engine) Run(source string) EvalResult {
	return e.RunContext(context.Background(), source)
}

// RunContext is Run bounded by ctx.
func (e *Engine) RunContext(ctx context.Context, source string) EvalResult {
	doc, evalErrs, err := e.EvaluateContext(ctx, source)
	res := EvalResult{Document: doc, Errors: evalErrs, Fatal: err}
	if doc != nil {
		for _, v := range doc.Validate() {
			if v.Severity == scene.SeverityWarning {
				res.Warnings = append(res.Warnings, EvalWarning{Message: v.Message, NodeID: v.NodeID})
			}
		}
	}
	return res
}

// evaluate performs the zygomys evaluation in a fresh sandbox, inside one
// document transaction.
func (e *Engine) evaluate(source string) (*scene.Document, []EvalError, error) {
	doc := scene.New(e.builder.WorldBounds())

	// Empty source is a valid program that produces an empty scene.
	if strings.TrimSpace(source) == "" {
		return doc, nil, nil
	}

	// Sandbox mode keeps user code away from the filesystem and syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()

	var scriptErr error
	commitErr := doc.Apply(func(tx *scene.Tx) error {
		registerBuiltins(env, tx, e.builder)
		if err := env.LoadString(preprocessSource(source)); err != nil {
			scriptErr = err
			return err
		}
		if _, err := env.Run(); err != nil {
			scriptErr = err
			return err
		}
		return nil
	})
	if scriptErr != nil {
		return nil, parseZygomysError(scriptErr), nil
	}
	if commitErr != nil {
		return nil, []EvalError{{Message: commitErr.Error()}}, nil
	}
	return doc, nil, nil
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into EvalError values,
// extracting the line number when the message carries one.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	for _, p := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := p.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{
				Line:    line,
				Message: strings.TrimSpace(m[2]),
			}}
		}
	}

	return []EvalError{{Message: strings.TrimSpace(msg)}}
}

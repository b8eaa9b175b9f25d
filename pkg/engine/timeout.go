package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chazu/brushwork/pkg/scene"
)

// DefaultEvalTimeout bounds a single evaluation unless WithTimeout says
// otherwise.
const DefaultEvalTimeout = 5 * time.Second

var (
	// ErrTimeout is returned when a script runs longer than the engine's
	// timeout.
	ErrTimeout = errors.New("evaluation timed out")
	// ErrSuperseded is returned to an evaluation that finished after a newer
	// one was started on the same engine.
	ErrSuperseded = errors.New("evaluation superseded by newer request")
)

// evalResult carries the outcome of one sandboxed run.
type evalResult struct {
	doc    *scene.Document
	errors []EvalError
	err    error
}

// begin starts a new generation and returns its number.
func (e *Engine) begin() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.generation++
	return e.generation
}

func (e *Engine) current(gen uint64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return gen == e.generation
}

// wait blocks until the run of generation gen reports on ch or ctx ends.
// The sandbox goroutine may outlive a timed out wait; ch is buffered so its
// late result is simply dropped.
func (e *Engine) wait(ctx context.Context, ch <-chan evalResult, gen uint64) (*scene.Document, []EvalError, error) {
	select {
	case res := <-ch:
		if !e.current(gen) {
			return nil, nil, ErrSuperseded
		}
		return res.doc, res.errors, res.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, nil, fmt.Errorf("%w after %s", ErrTimeout, e.timeout)
		}
		return nil, nil, fmt.Errorf("evaluation cancelled: %w", ctx.Err())
	}
}

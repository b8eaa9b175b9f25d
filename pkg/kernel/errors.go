package kernel

import (
	"errors"
	"fmt"
)

// Failure kinds. Every fallible kernel operation reports one of these,
// wrapped with context; test with errors.Is. A failed operation never
// modifies its input.
var (
	// ErrDegenerateGeometry reports a result with fewer than four vertices,
	// zero volume, or an otherwise invalid solid.
	ErrDegenerateGeometry = errors.New("degenerate geometry")

	// ErrOutOfWorldBounds reports a result that leaves the world bounds.
	ErrOutOfWorldBounds = errors.New("out of world bounds")

	// ErrEmptyResult reports a clip that removes the whole solid.
	ErrEmptyResult = errors.New("empty result")

	// ErrHandleNotFound reports a vertex, edge or face handle that matches
	// nothing in the current topology.
	ErrHandleNotFound = errors.New("handle not found")
)

// Errorf wraps kind with a formatted message.
func Errorf(kind error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...))
}

// Kind returns the failure kind of err, or nil if err is not a kernel
// failure.
func Kind(err error) error {
	for _, k := range []error{ErrDegenerateGeometry, ErrOutOfWorldBounds, ErrEmptyResult, ErrHandleNotFound} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}

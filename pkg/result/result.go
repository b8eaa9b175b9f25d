// Package result provides Result, the success-or-diagnostic value returned
// by every fallible kernel operation, and the combinators used to chain
// operations without checking errors at every step.
package result

import "fmt"

// Result holds either a value of type T or the error that prevented it.
// The zero Result is a failure with a nil-value error; use Ok or Fail.
type Result[T any] struct {
	value T
	err   error
	ok    bool
}

// Ok returns a successful Result.
func Ok[T any](v T) Result[T] {
	return Result[T]{value: v, ok: true}
}

// Fail returns a failed Result carrying err.
func Fail[T any](err error) Result[T] {
	if err == nil {
		err = errNilFailure
	}
	return Result[T]{err: err}
}

// Of converts a Go (value, error) pair into a Result.
func Of[T any](v T, err error) Result[T] {
	if err != nil {
		return Fail[T](err)
	}
	return Ok(v)
}

var errNilFailure = fmt.Errorf("result: failure without error")

// IsOk reports whether the Result holds a value.
func (r Result[T]) IsOk() bool { return r.ok }

// Err returns the failure, or nil on success.
func (r Result[T]) Err() error {
	if r.ok {
		return nil
	}
	if r.err == nil {
		return errNilFailure
	}
	return r.err
}

// Get returns the value and error as a Go pair.
func (r Result[T]) Get() (T, error) {
	return r.value, r.Err()
}

// Value returns the held value, or the zero value on failure.
func (r Result[T]) Value() T {
	return r.value
}

// MustGet returns the value and panics on failure. Intended for tests and
// for values whose construction cannot fail.
func (r Result[T]) MustGet() T {
	if !r.ok {
		panic(fmt.Sprintf("result: MustGet on failure: %v", r.Err()))
	}
	return r.value
}

// UnwrapOr returns the value, or def on failure.
func (r Result[T]) UnwrapOr(def T) T {
	if r.ok {
		return r.value
	}
	return def
}

// UnwrapOrElse returns the value, or the result of fn applied to the error.
func (r Result[T]) UnwrapOrElse(fn func(error) T) T {
	if r.ok {
		return r.value
	}
	return fn(r.Err())
}

// Then applies fn to the value of a successful Result. Failures pass
// through untouched.
func (r Result[T]) Then(fn func(T) Result[T]) Result[T] {
	if !r.ok {
		return r
	}
	return fn(r.value)
}

// OrElse calls fn with the error of a failed Result to attempt recovery.
func (r Result[T]) OrElse(fn func(error) Result[T]) Result[T] {
	if r.ok {
		return r
	}
	return fn(r.Err())
}

// MapErr rewrites the error of a failed Result.
func (r Result[T]) MapErr(fn func(error) error) Result[T] {
	if r.ok {
		return r
	}
	return Fail[T](fn(r.Err()))
}

// Map transforms the value of a successful Result.
func Map[T, U any](r Result[T], fn func(T) U) Result[U] {
	if !r.ok {
		return Fail[U](r.Err())
	}
	return Ok(fn(r.value))
}

// AndThen chains a fallible operation that changes the value type.
func AndThen[T, U any](r Result[T], fn func(T) Result[U]) Result[U] {
	if !r.ok {
		return Fail[U](r.Err())
	}
	return fn(r.value)
}

// Collect turns a slice of Results into a Result of a slice. The first
// failure wins and no partial slice is returned.
func Collect[T any](rs []Result[T]) Result[[]T] {
	out := make([]T, 0, len(rs))
	for i, r := range rs {
		if !r.ok {
			return Fail[[]T](fmt.Errorf("element %d: %w", i, r.Err()))
		}
		out = append(out, r.value)
	}
	return Ok(out)
}

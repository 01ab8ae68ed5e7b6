// Package foundation provides generic building blocks shared by the pipeline packages.
package foundation

import "fmt"

// Result is the outcome of one step: either a value of type T or an error of type E.
// The protocol driver uses it to decide, per input line, whether to emit a response
// envelope or an error line.
type Result[T any, E error] struct {
	value T
	err   E
	isOk  bool
}

// Ok creates a successful Result.
func Ok[T any, E error](value T) Result[T, E] {
	return Result[T, E]{value: value, isOk: true}
}

// Err creates a failed Result.
func Err[T any, E error](err E) Result[T, E] {
	return Result[T, E]{err: err}
}

// FromTuple lifts the conventional (value, error) pair into a Result.
func FromTuple[T any, E error](value T, err E) Result[T, E] {
	if any(err) != nil {
		return Err[T, E](err)
	}
	return Ok[T, E](value)
}

// IsOk reports whether the Result holds a value.
func (r Result[T, E]) IsOk() bool {
	return r.isOk
}

// IsErr reports whether the Result holds an error.
func (r Result[T, E]) IsErr() bool {
	return !r.isOk
}

// Unwrap returns the value and panics on an Err result.
func (r Result[T, E]) Unwrap() T {
	if !r.isOk {
		panic(fmt.Sprintf("called Unwrap on Err result: %v", r.err))
	}
	return r.value
}

// UnwrapErr returns the error and panics on an Ok result.
func (r Result[T, E]) UnwrapErr() E {
	if r.isOk {
		panic("called UnwrapErr on Ok result")
	}
	return r.err
}

// Match calls onOk or onErr depending on the outcome and returns what the callback returns.
func (r Result[T, E]) Match(onOk func(T) error, onErr func(E) error) error {
	if r.isOk {
		return onOk(r.value)
	}
	return onErr(r.err)
}

// ToTuple converts back to the conventional (value, error) pair.
func (r Result[T, E]) ToTuple() (T, E) {
	if r.isOk {
		var zeroErr E
		return r.value, zeroErr
	}
	var zeroVal T
	return zeroVal, r.err
}

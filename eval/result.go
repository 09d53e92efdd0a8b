package eval

import (
	stderrors "errors"
	"fmt"
)

// ErrNone is returned by Result.Get for a None result.
var ErrNone = stderrors.New("eval: no data available")

// Kind tells the three Result states apart.
type Kind uint8

const (
	KindNone Kind = iota
	KindOk
	KindErr
)

func (k Kind) String() string {
	switch k {
	case KindOk:
		return "Ok"
	case KindErr:
		return "Err"
	default:
		return "None"
	}
}

// Result is Ok(value), Err(error) or None. The zero value is None.
type Result[T any] struct {
	kind  Kind
	value T
	err   error
}

// Ok wraps a value.
func Ok[T any](v T) Result[T] {
	return Result[T]{kind: KindOk, value: v}
}

// Err wraps a failure. A nil err still yields an Err result.
func Err[T any](err error) Result[T] {
	if err == nil {
		err = stderrors.New("eval: unspecified error")
	}
	return Result[T]{kind: KindErr, err: err}
}

// None reports that no data is available yet.
func None[T any]() Result[T] {
	return Result[T]{}
}

// From converts a (value, error) pair. ErrNone maps back to None.
func From[T any](v T, err error) Result[T] {
	switch {
	case err == nil:
		return Ok(v)
	case stderrors.Is(err, ErrNone):
		return None[T]()
	default:
		return Err[T](err)
	}
}

func (r Result[T]) Kind() Kind   { return r.kind }
func (r Result[T]) IsOk() bool   { return r.kind == KindOk }
func (r Result[T]) IsErr() bool  { return r.kind == KindErr }
func (r Result[T]) IsNone() bool { return r.kind == KindNone }

// Value returns the wrapped value, or the zero value unless Ok.
func (r Result[T]) Value() T { return r.value }

// Error returns the wrapped error, or nil unless Err.
func (r Result[T]) Error() error { return r.err }

// Get returns the value with nil, the error, or ErrNone.
func (r Result[T]) Get() (T, error) {
	switch r.kind {
	case KindOk:
		return r.value, nil
	case KindErr:
		return r.value, r.err
	default:
		return r.value, ErrNone
	}
}

// Unwrap returns the value and panics on Err or None.
func (r Result[T]) Unwrap() T {
	switch r.kind {
	case KindOk:
		return r.value
	case KindErr:
		panic(fmt.Sprintf("eval: Unwrap on Err: %v", r.err))
	default:
		panic("eval: Unwrap on None")
	}
}

func (r Result[T]) String() string {
	switch r.kind {
	case KindOk:
		return fmt.Sprintf("Ok(%v)", r.value)
	case KindErr:
		return fmt.Sprintf("Err(%v)", r.err)
	default:
		return "None"
	}
}

// Map applies fn to an Ok value; Err and None pass through.
func Map[T, U any](r Result[T], fn func(T) U) Result[U] {
	switch r.kind {
	case KindOk:
		return Ok(fn(r.value))
	case KindErr:
		return Err[U](r.err)
	default:
		return None[U]()
	}
}

// AndThen chains a fallible step onto an Ok value; Err and None pass through.
func AndThen[T, U any](r Result[T], fn func(T) Result[U]) Result[U] {
	switch r.kind {
	case KindOk:
		return fn(r.value)
	case KindErr:
		return Err[U](r.err)
	default:
		return None[U]()
	}
}

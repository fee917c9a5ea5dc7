// Package options implements the generic functional-option plumbing behind
// archive.Option, the configuration type of archive.Open/OpenBytes.
package options

import "fmt"

// Option is a generic functional option for configuring any type T.
type Option[T any] interface {
	apply(T) error
}

// Func wraps a plain function as an Option[T].
type Func[T any] struct {
	applyFunc func(T) error
}

func (f *Func[T]) apply(target T) error {
	return f.applyFunc(target)
}

// New creates a functional option from a function that can fail validation
// (e.g. a negative solid_block_size, an out-of-range chunk_size_log2).
func New[T any](fn func(T) error) *Func[T] {
	return &Func[T]{applyFunc: fn}
}

// NoError creates a functional option from a function that cannot fail.
func NoError[T any](fn func(T)) *Func[T] {
	return &Func[T]{
		applyFunc: func(target T) error {
			fn(target)
			return nil
		},
	}
}

// Apply applies opts to target in order, stopping at the first error. The
// returned error is annotated with the option's position so a caller
// passing a long chain of options can tell which one was invalid.
func Apply[T any](target T, opts ...Option[T]) error {
	for i, opt := range opts {
		if err := opt.apply(target); err != nil {
			return fmt.Errorf("option %d: %w", i, err)
		}
	}

	return nil
}

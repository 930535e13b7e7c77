package corio

import (
	"context"
	"iter"
)

// Generator[T] is a cold pull-sequence: nothing runs until Next is called.
// Realized directly atop the standard library's range-over-func iterators
// (iter.Seq2 driven via iter.Pull2) instead of a hand-rolled coroutine
// frame — the stdlib's pull function already is the "chain the generator's
// frame as the symmetric-transfer target" continuation the design calls for.
type Generator[T any] struct {
	next  func() (T, error, bool)
	stop  func()
	ended bool
}

// NewGenerator wraps a body that yields values (and optionally an error per
// step) via the supplied yield closure. The body runs lazily, one step per
// Next call, on the calling goroutine.
func NewGenerator[T any](body func(yield func(T, error) bool)) *Generator[T] {
	seq := func(yield func(T, error) bool) {
		defer func() {
			if r := recover(); r != nil {
				var zero T
				yield(zero, &PanicError{Value: r, Stack: captureStack()})
			}
		}()
		body(yield)
	}
	next, stop := iter.Pull2(seq)
	return &Generator[T]{next: next, stop: stop}
}

// Next drives the generator one step. ok is false once the body has
// returned (return_void) or ctx was already done; err carries a panic
// recovered from the body (unhandled_exception) or ctx.Err().
func (g *Generator[T]) Next(ctx context.Context) (v T, ok bool, err error) {
	if g.ended {
		return v, false, nil
	}
	if err = ctx.Err(); err != nil {
		g.Close()
		return v, false, err
	}
	v, stepErr, more := g.next()
	if !more {
		g.ended = true
		g.stop()
		return v, false, stepErr
	}
	return v, true, stepErr
}

// Close releases the generator's underlying iterator early, mirroring
// abandoning a suspended generator frame. Safe to call more than once.
func (g *Generator[T]) Close() {
	if !g.ended {
		g.ended = true
		g.stop()
	}
}

// All ranges over every value the generator yields, stopping early (and
// releasing the underlying iterator) if stepErr != nil or the range body
// returns false — the async_for sugar, realized as a plain Go loop since Go
// has no coroutine-loop macro.
func (g *Generator[T]) All(ctx context.Context) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		defer g.Close()
		for {
			v, ok, err := g.Next(ctx)
			if err != nil {
				yield(v, err)
				return
			}
			if !ok {
				return
			}
			if !yield(v, nil) {
				return
			}
		}
	}
}

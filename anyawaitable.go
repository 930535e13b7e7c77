package corio

import "context"

// erasedAwaitable is the minimal shape AnyAwaitable boxes: await the
// underlying concrete awaitable, yielding a Result[R] and retaining the
// original value for Unwrap.
type erasedAwaitable[R any] interface {
	await(ctx context.Context) Result[R]
	unwrap() any
}

// AnyAwaitable[R] is a type-erased Awaitable: it holds any concrete
// Awaitable[R]-shaped value (Lazy[R], Task[R], a bridge.Awaiter[R], or any
// other type with a matching Await method), boxing it the same way the source's target language
// boxes heterogeneous futures behind a trait object.
type AnyAwaitable[R any] struct {
	inner erasedAwaitable[R]
}

type awaitableBox[R any, A Awaitable[R]] struct {
	value A
}

func (b awaitableBox[R, A]) await(ctx context.Context) Result[R] {
	v, err := b.value.Await(ctx)
	return Result[R]{value: v, err: err}
}

func (b awaitableBox[R, A]) unwrap() any { return b.value }

// NewAnyAwaitable boxes a concrete Awaitable[R] value for storage in
// homogeneous containers (a slice of AnyAwaitable mixing Lazy/Task/bridge
// awaiters) or passing across API boundaries that should not be generic
// over the concrete awaitable type.
func NewAnyAwaitable[R any, A Awaitable[R]](a A) AnyAwaitable[R] {
	return AnyAwaitable[R]{inner: awaitableBox[R, A]{value: a}}
}

// Await drives the boxed awaitable and yields its Result.
func (a AnyAwaitable[R]) Await(ctx context.Context) (R, error) {
	r := a.inner.await(ctx)
	return r.value, r.err
}

// Unwrap returns the original concrete awaitable value passed to
// NewAnyAwaitable, for callers that know (or type-switch on) the closed set
// of concrete awaitable types they boxed.
func (a AnyAwaitable[R]) Unwrap() any { return a.inner.unwrap() }

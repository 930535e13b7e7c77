package corio

import "context"

// Lazy[T] is a coroutine body that does not start running until it is first
// awaited or explicitly Execute()'d: constructing one allocates no
// goroutine. Awaiting a Lazy from inside another coroutine body is a
// direct, synchronous call on the caller's goroutine — symmetric transfer,
// no scheduling hop — so nesting Lazy values costs nothing beyond an
// ordinary function call.
type Lazy[T any] struct {
	body          func(ctx context.Context) (T, error)
	runner        Runner
	result        *Result[T]
	destroyOnExit bool
}

// NewLazy constructs a suspended Lazy[T] running body when first awaited.
func NewLazy[T any](body func(ctx context.Context) (T, error)) *Lazy[T] {
	return &Lazy[T]{body: body}
}

// SetRunner installs the runner this Lazy executes on; it must be called
// before the first Execute/Await unless the Lazy was created by a context
// that already carries one (Await installs the caller's runner implicitly).
func (l *Lazy[T]) SetRunner(r Runner) { l.runner = r }

// GetRunner returns the currently-installed runner, or nil if none yet.
func (l *Lazy[T]) GetRunner() Runner { return l.runner }

// Finished reports whether the body has run to completion.
func (l *Lazy[T]) Finished() bool { return l.result != nil }

// Result returns the recorded outcome; callers must check Finished first.
func (l *Lazy[T]) Result() Result[T] {
	if l.result == nil {
		panic("corio: Result called before Lazy finished")
	}
	return *l.result
}

// Execute runs the body to completion on the calling goroutine, recording
// its Result. Precondition: a runner has been set (directly, or via Await).
// Calling Execute more than once is a no-op after the first call.
func (l *Lazy[T]) Execute(ctx context.Context) {
	if l.result != nil {
		return
	}
	debugAssert(l.runner != nil, "corio: Lazy executed without a runner")
	v, err := runBody(ctx, l.runner, l.body)
	l.result = &Result[T]{value: v, err: err}
}

// Await drives the Lazy to completion, inheriting the calling coroutine's
// runner if none was set yet, and returns its outcome. Realizes operator
// co_await(): ready iff already Finished; otherwise the child runs to its
// own completion on the caller's goroutine before Await returns — no
// scheduling detour.
func (l *Lazy[T]) Await(ctx context.Context) (T, error) {
	if l.result != nil {
		return l.result.value, l.result.err
	}
	if l.runner == nil {
		l.runner = runnerFromContext(ctx)
	}
	l.Execute(ctx)
	return l.result.value, l.result.err
}

// runBody runs body with ctx extended to carry runner as the "current
// runner" this-coroutine awaitables observe, recovering a panic into a
// PanicError so it never escapes as a Go panic across the Await boundary.
func runBody[T any](ctx context.Context, runner Runner, body func(ctx context.Context) (T, error)) (v T, err error) {
	bodyCtx := ctx
	if runner != nil {
		bodyCtx = withRunner(ctx, runner)
	}
	defer func() {
		if r := recover(); r != nil {
			var zero T
			v, err = zero, &PanicError{Value: r, Stack: captureStack()}
		}
	}()
	return body(bodyCtx)
}

package corio

import (
	"context"
	"sync"
)

// waiterSlot is the (at most one) registered Task.Await waiter: a resume
// callback that entry calls directly when the task finishes (waking the
// waiter's own goroutine), and a cancel flag set if the waiting awaiter was
// abandoned (its ctx cancelled) before resume.
type waiterSlot struct {
	resume    func()
	cancelled *bool
}

// sharedState is the control block shared between a Task[T] handle and its
// background entry goroutine: exactly the field set spec'd for a task's
// promise plus abort bookkeeping, guarded by mu.
type sharedState[T any] struct {
	mu           sync.Mutex
	entryRunning bool
	requestedAbort bool
	currRunner   Runner
	result       *Result[T]
	waiter       *waiterSlot

	cancel context.CancelCauseFunc

	// self is the type-erased handle registered in globalTaskRegistry; kept
	// as a field here (rather than only on the stack) so the registry's
	// weak pointer stays paired with this exact state's liveness.
	self *erasedTask
}

// Task[T] is an independently-running coroutine: Spawn starts it on its own
// forked Strand immediately (unlike Lazy, which waits to be awaited). It may
// be awaited for its result, aborted, or detached to run to completion
// unobserved.
type Task[T any] struct {
	state *sharedState[T]
}

// Spawn starts body running concurrently on a Runner forked from dst (dst
// may be an Executor, in which case a fresh Runner is built over it, or a
// Runner directly, in which case it is forked).
func Spawn[T any](dst any, body func(ctx context.Context) (T, error)) Task[T] {
	runner := runnerFor(dst)
	return spawnOn(runner.Fork(), body)
}

// SpawnFrom spawns body on a Runner forked from ctx's current runner — the
// context-bound form used when already inside a coroutine body.
func SpawnFrom[T any](ctx context.Context, body func(ctx context.Context) (T, error)) Task[T] {
	runner := runnerFromContext(ctx)
	debugAssert(runner != nil, "corio: SpawnFrom called outside a coroutine body")
	return spawnOn(runner.Fork(), body)
}

func runnerFor(dst any) Runner {
	switch v := dst.(type) {
	case Runner:
		return v
	case Executor:
		return NewRunner(v)
	default:
		panic("corio: Spawn requires an Executor or Runner")
	}
}

func spawnOn[T any](runner Runner, body func(ctx context.Context) (T, error)) Task[T] {
	ctx, cancel := context.WithCancelCause(context.Background())
	state := &sharedState[T]{
		entryRunning: true,
		currRunner:   runner,
		cancel:       cancel,
	}
	task := Task[T]{state: state}
	state.self = &erasedTask{
		finished: func() bool {
			state.mu.Lock()
			defer state.mu.Unlock()
			return !state.entryRunning
		},
		abort: task.Abort,
	}
	globalTaskRegistry.register(state.self)
	runner.Post(func() {
		entry(ctx, state, runner, body)
	})
	return task
}

// entry is the task's background body: run it to completion (or recover a
// panic), record the Result, wake the waiter if one is registered.
//
// If the body unwinds after an Abort was requested, the result it produced
// (typically derived from ctx.Err(), not ErrCancelled itself) is discarded:
// spec invariant #2 is "cancelled implies no result", and Await special-cases
// requestedAbort to surface ErrCancelled rather than whatever the body
// happened to return on its way out.
func entry[T any](ctx context.Context, state *sharedState[T], runner Runner, body func(ctx context.Context) (T, error)) {
	ctx = withMigrator(ctx, func(ex Executor) Runner {
		newRunner := NewRunner(ex)
		state.mu.Lock()
		state.currRunner = newRunner
		state.mu.Unlock()
		return newRunner
	})
	v, err := runBody(ctx, runner, body)

	state.mu.Lock()
	if !state.requestedAbort {
		state.result = &Result[T]{value: v, err: err}
	}
	state.entryRunning = false
	w := state.waiter
	state.waiter = nil
	state.mu.Unlock()

	if w != nil && (w.cancelled == nil || !*w.cancelled) {
		w.resume()
	}
}

// Await blocks the calling coroutine until the task completes, returning
// its Result. Exactly one concurrent Await per Task is supported; a second
// is a programming error (debug-asserted).
func (t Task[T]) Await(ctx context.Context) (T, error) {
	s := t.state
	s.mu.Lock()
	if !s.entryRunning {
		result := s.result
		s.mu.Unlock()
		if result == nil {
			var zero T
			return zero, ErrCancelled
		}
		return result.value, result.err
	}
	debugAssert(s.waiter == nil, "corio: concurrent Task.Await")

	done := make(chan struct{})
	cancelled := false
	s.waiter = &waiterSlot{
		resume: func() { close(done) },
		cancelled: &cancelled,
	}
	s.mu.Unlock()

	select {
	case <-done:
	case <-ctx.Done():
		s.mu.Lock()
		if s.waiter != nil && s.waiter.cancelled == &cancelled {
			cancelled = true
			s.waiter = nil
		}
		s.mu.Unlock()
		var zero T
		return zero, ctx.Err()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.requestedAbort && s.result == nil {
		var zero T
		return zero, ErrCancelled
	}
	return s.result.value, s.result.err
}

// Abort requests cancellation, returning true on the first successful
// request and false if the task had already finished or already had an
// abort requested. It cancels the task's context directly: cancel is a
// context.CancelCauseFunc, safe to call from any goroutine regardless of
// which runner currently owns the body, so there is no need to route the
// request through the task's own Strand (which would deadlock if the body
// is parked in a blocking await — cancel must reach it without depending on
// the body ever yielding its drainer slot).
func (t Task[T]) Abort() bool {
	s := t.state
	s.mu.Lock()
	if !s.entryRunning || s.requestedAbort {
		s.mu.Unlock()
		return false
	}
	s.requestedAbort = true
	cancel := s.cancel
	s.mu.Unlock()

	cancel(ErrCancelled)
	return true
}

// Detach is a no-op: a Task value holds nothing that aborts the task when
// the value is dropped, so the task keeps running to completion whether or
// not Detach is called. It exists for symmetry with SpawnBackground.
func (t Task[T]) Detach() {}

// AbortHandle returns a lightweight handle safe to call from any goroutine
// to request abort, independent of this Task value's lifetime.
func (t Task[T]) AbortHandle() AbortHandle[T] { return AbortHandle[T]{state: t.state} }

// AbortHandle is a clonable reference to a task's shared state, usable to
// request abort without holding the Task itself.
type AbortHandle[T any] struct {
	state *sharedState[T]
}

// RequestAbort is equivalent to Task.Abort, callable from any goroutine.
func (h AbortHandle[T]) RequestAbort() bool { return Task[T]{state: h.state}.Abort() }

// SpawnBackground spawns body and immediately detaches it: the task runs to
// completion unobserved, and its only external control is the returned
// AbortHandle.
func SpawnBackground[T any](dst any, body func(ctx context.Context) (T, error)) AbortHandle[T] {
	task := Spawn(dst, body)
	task.Detach()
	return task.AbortHandle()
}

// SpawnBackgroundFrom is the context-bound form of SpawnBackground, forking
// the caller's current runner.
func SpawnBackgroundFrom[T any](ctx context.Context, body func(ctx context.Context) (T, error)) AbortHandle[T] {
	task := SpawnFrom(ctx, body)
	task.Detach()
	return task.AbortHandle()
}

// RunOn rebinds the coroutine currently executing under ctx to a new
// Executor: if already running on ex, this is a no-op. Otherwise it builds a
// Runner over ex and installs it as ctx's current runner, so that every
// later this-coroutine call against this same ctx (SpawnFrom, CurrentExecutor,
// a subsequent RunOn) and every Post the body itself performs afterward
// targets ex, not the Runner the body started on. When ctx belongs to a
// Task body, this also updates the task's shared-state currRunner (under its
// mutex), so that bookkeeping — e.g. diagnostics that ask which executor a
// task currently belongs to — stays in sync with the migration too.
//
// RunOn does not move the calling goroutine: Go has no portable way to
// suspend a running stack frame and resume it on a different goroutine the
// way a stackful/C++ coroutine can. The remainder of the task body keeps
// running on whatever OS thread it was already on; only the logical
// "current runner" bookkeeping changes. Code that depends on RunOn actually
// changing which worker goroutine executes the body (as opposed to which
// executor future Posts and nested Spawns/Awaits target) is relying on
// something this runtime does not provide — see DESIGN.md's discussion of
// this limitation.
func RunOn(ctx context.Context, ex Executor) error {
	cur := runnerFromContext(ctx)
	debugAssert(cur != nil, "corio: RunOn called outside a coroutine body")
	if cur != nil && cur.InnerExecutor() == ex {
		return nil
	}

	var newRunner Runner
	if migrate := migratorFromContext(ctx); migrate != nil {
		newRunner = migrate(ex)
	} else {
		newRunner = NewRunner(ex)
	}
	setRunnerInContext(ctx, newRunner)
	return nil
}

// Package corio provides a coroutine-style runtime built on a thread-pool
// Executor and a per-logical-task serialization primitive (a Strand). It
// supplies the core primitives an async program builds on: a lazily-started
// unit of work ([Lazy]), a concurrently-running unit of work with
// cancellation ([Task]), a cold pull-sequence ([Generator]), composition
// combinators ([GatherSlice], [TryGatherSlice], [SelectSlice], [Gather2],
// [Gather3], [TryGather2], [Select2]), a type-erased awaitable
// ([AnyAwaitable]), and a small set of intrinsic awaitables ([Yield],
// [SleepFor], [SleepUntil], [RunOn]).
//
// # Architecture
//
// An [Executor] accepts posted callables for eventual execution — either a
// [ThreadPool] (many worker goroutines) or a [SingleThreadExecutor] (one
// dedicated goroutine, already serial). A [Strand] wraps an Executor so
// that callables posted through it never run concurrently with each other;
// a [Runner] owns either an already-serial Executor or a Strand, and can
// [Runner.Fork] a sibling Runner sharing the same underlying pool.
//
// A [Lazy][T] is constructed suspended and only starts on its first Await;
// awaiting one from inside another coroutine body is a direct, synchronous
// call on the caller's goroutine (symmetric transfer — no scheduling hop).
// [Spawn] starts a coroutine body as a [Task][T] running concurrently on its own
// forked Strand; the caller may later Await its result or call Abort.
//
// # Cancellation
//
// Cancellation is cooperative, propagated via context.Context: Task.Abort
// cancels the task's running context, which every nested awaitable (bridge
// operations, nested Lazy/Task/Generator awaits) observes at its next
// suspension point. [TryGatherSlice], [TryGather2], [SelectSlice] and
// [Select2] cancel their losing children the same way.
//
// # Thread Safety
//
// A coroutine's state (Lazy/Task/Generator promise fields) is touched only
// from the goroutine(s) draining its Strand — the "a frame is polled only
// on its strand" invariant — so no locking is needed around that state
// beyond the Task shared-state mutex, which guards cross-strand fields
// (result, waiter, requestedAbort, currRunner).
//
// # Usage
//
//	result, err := corio.Run(func(ctx context.Context) (int, error) {
//	    left, right := corio.SpawnFrom(ctx, sortHalf(a)), corio.SpawnFrom(ctx, sortHalf(b))
//	    l, err := left.Await(ctx)
//	    if err != nil {
//	        return 0, err
//	    }
//	    r, err := right.Await(ctx)
//	    if err != nil {
//	        return 0, err
//	    }
//	    return merge(l, r), nil
//	}, true)
//
// # Error Types
//
//   - [AssertionError]: a violated precondition (debug builds only, see the corio_debug build tag)
//   - [CancellationError] / [ErrCancelled]: awaiting an aborted Task
//   - [TimeoutError]: a deadline elapsed
//   - [AggregateError]: folds several failures into one error value; no combinator returns it
//   - [PanicError]: wraps a recovered panic from a coroutine body
//
// All error types implement [error] and work with errors.Is/errors.As;
// PanicError, CancellationError, TimeoutError and AggregateError also
// unwrap to their causes, while AssertionError has no Unwrap.
package corio

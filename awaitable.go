package corio

import (
	"context"
	"sync/atomic"
)

// Awaitable is anything that can be awaited to completion from within a
// coroutine body: Lazy[T], Task[T], AnyAwaitable[T], and bridge.Awaiter[T]
// all satisfy it structurally (bridge deliberately does not import corio,
// to avoid a dependency cycle — it just happens to share this method shape).
type Awaitable[T any] interface {
	Await(ctx context.Context) (T, error)
}

// runnerBox holds the "current runner" for a coroutine body as a mutable
// cell: RunOn migrates a task by swapping the cell's contents in place
// rather than threading a new context.Context through the body (Go's
// context values are immutable once attached, but the body already holds
// the one ctx RunOn was called with, so the box is how the change becomes
// visible to later this-coroutine calls against that same ctx).
type runnerBox struct {
	runner atomic.Pointer[Runner]
}

type runnerKey struct{}

type migratorKey struct{}

// withRunner installs r as the current runner for ctx and its descendants.
func withRunner(ctx context.Context, r Runner) context.Context {
	box := &runnerBox{}
	box.runner.Store(&r)
	return context.WithValue(ctx, runnerKey{}, box)
}

// runnerFromContext returns the runner installed by Run/BlockOn/Spawn for
// the coroutine body currently executing, or nil if ctx carries none (e.g.
// a context never threaded through a corio entry point).
func runnerFromContext(ctx context.Context) Runner {
	box, _ := ctx.Value(runnerKey{}).(*runnerBox)
	if box == nil {
		return nil
	}
	p := box.runner.Load()
	if p == nil {
		return nil
	}
	return *p
}

func setRunnerInContext(ctx context.Context, r Runner) {
	box, _ := ctx.Value(runnerKey{}).(*runnerBox)
	if box == nil {
		return
	}
	box.runner.Store(&r)
}

// withMigrator installs the function RunOn calls to perform an executor
// migration for the task currently running under ctx; it returns the new
// Runner it built over the target Executor and recorded for the task.
func withMigrator(ctx context.Context, migrate func(ex Executor) Runner) context.Context {
	return context.WithValue(ctx, migratorKey{}, migrate)
}

func migratorFromContext(ctx context.Context) func(ex Executor) Runner {
	m, _ := ctx.Value(migratorKey{}).(func(ex Executor) Runner)
	return m
}

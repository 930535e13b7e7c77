package corio

import "context"

// BlockOn runs body to completion on executor and blocks the calling
// goroutine for its result: it builds a Runner over executor, posts body
// as a Task, and awaits it from the calling goroutine (which is not itself
// part of any corio runner).
func BlockOn[T any](executor Executor, body func(ctx context.Context) (T, error)) (T, error) {
	runner := NewRunner(executor)
	task := spawnOn(runner, body)
	return task.Await(context.Background())
}

// Run builds a fresh Executor (a ThreadPool if multiThread, otherwise a
// SingleThreadExecutor), runs body to completion on it via BlockOn, and
// shuts the executor down before returning.
func Run[T any](body func(ctx context.Context) (T, error), multiThread bool) (T, error) {
	var executor interface {
		Executor
		Shutdown()
	}
	if multiThread {
		executor = NewThreadPool()
	} else {
		executor = NewSingleThreadExecutor()
	}
	defer executor.Shutdown()
	return BlockOn[T](executor, body)
}

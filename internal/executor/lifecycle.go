package executor

import "sync"

// lifecycleCoordinator encapsulates the Executor shutdown sequence: wait for
// every already-posted callable to finish, then stop the dispatcher.
// Grounded on the teacher's lifecycleCoordinator, trimmed to the two stages
// this Executor actually needs (no results/errors channels to drain here).
//
// Close is safe for concurrent calls; the sequence executes exactly once.
type lifecycleCoordinator struct {
	cancelCh chan struct{}
	inflight *sync.WaitGroup
	once     sync.Once
}

func newLifecycleCoordinator(cancelCh chan struct{}, inflight *sync.WaitGroup) *lifecycleCoordinator {
	return &lifecycleCoordinator{cancelCh: cancelCh, inflight: inflight}
}

// Close waits for in-flight callables to drain, then stops the dispatcher
// loop, so the dispatcher is still running while queued work is handed out.
func (lc *lifecycleCoordinator) Close() {
	lc.once.Do(func() {
		lc.inflight.Wait()
		close(lc.cancelCh)
	})
}

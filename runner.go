package corio

// Runner is the handle a coroutine frame stores to know where it may run:
// either an Executor that is already serial (a SingleThreadExecutor) or a
// Strand wrapping a non-serial Executor (a ThreadPool). Every awaitable's
// Post-continuation goes through a Runner so nested coroutines always
// resume on the same serialization domain they started on.
type Runner interface {
	// Post schedules fn for serialized execution on this runner.
	Post(fn func())

	// InnerExecutor returns the underlying Executor (unwrapping any Strand),
	// the handle Fork uses to build a sibling Runner on the same pool.
	InnerExecutor() Executor

	// Fork returns a new Runner over the same underlying Executor: if that
	// Executor is already serial, Fork returns a Runner sharing it directly
	// (cheap, no new Strand); otherwise it wraps a fresh Strand so the forked
	// runner serializes independently of its parent.
	Fork() Runner
}

// serialRunner implements Runner. When strand is nil, executor is already
// serial and is posted to directly; otherwise strand is the serialization
// point and executor is only retained for Fork/InnerExecutor.
type serialRunner struct {
	executor Executor
	strand   *Strand
}

// NewRunner builds a Runner atop executor: if executor already guarantees
// serial FIFO execution (implements alreadySerialExecutor with
// alreadySerial() == true), it is used directly; otherwise it is wrapped in
// a fresh Strand.
func NewRunner(executor Executor) Runner {
	if as, ok := executor.(alreadySerialExecutor); ok && as.alreadySerial() {
		return &serialRunner{executor: executor}
	}
	return &serialRunner{executor: executor, strand: NewStrand(executor)}
}

// NewRunnerStrand builds a Runner atop an existing Strand.
func NewRunnerStrand(s *Strand) Runner {
	return &serialRunner{executor: s.executor, strand: s}
}

func (r *serialRunner) Post(fn func()) {
	if r.strand != nil {
		r.strand.Post(fn)
		return
	}
	r.executor.Post(fn)
}

func (r *serialRunner) InnerExecutor() Executor { return r.executor }

func (r *serialRunner) Fork() Runner { return NewRunner(r.executor) }

// pendingDrainer is implemented by runners that can drain their own
// already-queued work inline, from within a callable currently running as
// part of that drain. Used by Yield to let queued siblings run without
// blocking the draining goroutine on its own repost.
type pendingDrainer interface {
	yieldPending()
}

func (r *serialRunner) yieldPending() {
	if r.strand != nil {
		r.strand.yieldPending()
		return
	}
	if d, ok := r.executor.(pendingDrainer); ok {
		d.yieldPending()
	}
}

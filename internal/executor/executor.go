// Package executor implements the thread-pool Executor that backs
// corio.Executor: a dispatcher goroutine feeding a pool of reusable workers,
// each draining posted callables until the pool is shut down.
package executor

import (
	"sync"

	"github.com/joeycumines/go-corio/internal/executor/pool"
)

// Pool is a thread-pool Executor: Post enqueues a callable for eventual
// execution on a worker goroutine. Posting never fails; the queue is
// unbounded (a chunked slice queue, see ingress.go).
type Pool struct {
	opts options

	mu       sync.Mutex
	queue    ingress
	notify   chan struct{}
	state    poolState
	inflight sync.WaitGroup

	pool pool.Pool

	lc *lifecycleCoordinator
}

// New constructs a running thread-pool Executor. Call Shutdown to release
// its resources; an Executor not shut down leaks its dispatcher goroutine.
func New(opts ...Option) *Pool {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	p := &Pool{
		opts:   o,
		notify: make(chan struct{}, 1),
	}

	newWorkerFn := func() interface{} { return newWorker(o.onPanic) }
	if o.fixedWorkers > 0 {
		p.pool = pool.NewFixed(o.fixedWorkers, newWorkerFn)
	} else {
		p.pool = pool.NewDynamic(newWorkerFn)
	}

	cancelCh := make(chan struct{})
	p.lc = newLifecycleCoordinator(cancelCh, &p.inflight)

	go p.dispatch(cancelCh)

	return p
}

// Post enqueues fn for eventual execution on a worker goroutine. Post never
// blocks and never fails; fn is dropped (never run) only if the Executor has
// already been shut down, matching the "posting never fails" contract from
// the perspective of the caller — silently dropping after shutdown mirrors
// how an already-torn-down thread pool behaves in the reference runtime.
func (p *Pool) Post(fn func()) {
	if p.state.closed() {
		return
	}
	p.mu.Lock()
	if p.state.closed() {
		p.mu.Unlock()
		return
	}
	p.queue.Push(fn)
	p.inflight.Add(1)
	queued := p.queue.Length()
	p.mu.Unlock()

	select {
	case p.notify <- struct{}{}:
	default:
	}

	if p.opts.overloadThreshold > 0 && queued >= p.opts.overloadThreshold {
		p.reportOverload(queued)
	}
}

func (p *Pool) reportOverload(queued int) {
	if p.opts.limiter == nil {
		p.opts.onOverload(queued)
		return
	}
	if _, ok := p.opts.limiter.Allow("overload"); ok {
		p.opts.onOverload(queued)
	}
}

func (p *Pool) popBatch() []func() {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := p.queue.Length()
	if n == 0 {
		return nil
	}
	batch := make([]func(), 0, n)
	for {
		fn, ok := p.queue.Pop()
		if !ok {
			break
		}
		batch = append(batch, fn)
	}
	return batch
}

// dispatch is the single loop that drains the queue, handing each posted
// callable to a pooled worker goroutine. Grounded on the teacher's
// dispatcher: tasks are tracked via inflight (counted when posted, released
// when they finish) so Shutdown can wait for drainage before tearing down.
func (p *Pool) dispatch(cancelCh <-chan struct{}) {
	for {
		batch := p.popBatch()
		for _, fn := range batch {
			w := p.pool.Get().(*worker)
			go func(fn func()) {
				defer p.inflight.Done()
				defer p.pool.Put(w)
				w.run(fn)
			}(fn)
		}
		if len(batch) != 0 {
			continue
		}
		select {
		case <-cancelCh:
			return
		case <-p.notify:
		}
	}
}

// Shutdown stops accepting new work and blocks until every already-posted
// callable has finished running. Safe to call more than once; only the
// first call performs the shutdown sequence.
func (p *Pool) Shutdown() {
	p.state.tryClose()
	p.lc.Close()
}


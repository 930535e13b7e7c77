package corio

import (
	"runtime"
	"sync"

	internalexecutor "github.com/joeycumines/go-corio/internal/executor"
)

// Executor is a handle accepting posted callables for eventual execution.
// Its only contract: posting never fails (enqueue-unbounded).
type Executor interface {
	Post(fn func())
}

// alreadySerialExecutor is implemented by executors that already guarantee
// FIFO, non-concurrent execution of posted callables (a single-thread
// pool). SerialRunner uses it to decide whether to wrap with a fresh Strand.
type alreadySerialExecutor interface {
	alreadySerial() bool
}

// ThreadPool is a multi-worker Executor backed by a thread pool, grounded on
// the corpus's worker-pool dispatcher pattern (see internal/executor).
type ThreadPool struct {
	inner *internalexecutor.Pool
}

// ThreadPoolOption configures a ThreadPool.
type ThreadPoolOption = internalexecutor.Option

// WithFixedWorkers caps the pool at n reusable worker structs. It does not
// limit how many posted callables run at once: each dispatched callable
// still gets its own goroutine.
func WithFixedWorkers(n uint) ThreadPoolOption { return internalexecutor.WithFixedWorkers(n) }

// WithDynamicWorkers selects a dynamic-size worker pool (the default).
func WithDynamicWorkers() ThreadPoolOption { return internalexecutor.WithDynamicWorkers() }

// WithOverloadThreshold arms a backpressure/telemetry hook once the posted
// queue depth reaches n, rate-limited internally so a sustained backlog
// cannot flood the hook.
func WithOverloadThreshold(n int, onOverload func(queued int)) ThreadPoolOption {
	return internalexecutor.WithOverloadThreshold(n, onOverload)
}

// WithPanicHandler overrides how a panic escaping a posted callable is
// reported; it does not affect Result[T]/Task error propagation, which
// always recovers panics at the coroutine-body boundary regardless.
func WithPanicHandler(fn func(recovered any)) ThreadPoolOption {
	return internalexecutor.WithPanicHandler(fn)
}

// NewThreadPool constructs a running multi-worker Executor. Call Shutdown
// to release its resources.
func NewThreadPool(opts ...ThreadPoolOption) *ThreadPool {
	return &ThreadPool{inner: internalexecutor.New(opts...)}
}

func (e *ThreadPool) Post(fn func()) { e.inner.Post(fn) }

// Shutdown stops accepting new work and blocks until every posted callable
// has run.
func (e *ThreadPool) Shutdown() { e.inner.Shutdown() }

func (e *ThreadPool) alreadySerial() bool { return false }

// SingleThreadExecutor is an already-serial Executor: one dedicated
// goroutine draining a FIFO queue, grounded on the corpus's FIFO
// single-goroutine executor variant. SerialRunner treats it specially: no
// Strand wrapper is needed since it is already serial.
type SingleThreadExecutor struct {
	mu       sync.Mutex
	queue    []func()
	notify   chan struct{}
	closed   bool
	done     chan struct{}
	closeErr chan struct{}
}

// NewSingleThreadExecutor starts a dedicated goroutine executing posted
// callables strictly in FIFO submission order.
func NewSingleThreadExecutor() *SingleThreadExecutor {
	e := &SingleThreadExecutor{
		notify:   make(chan struct{}, 1),
		done:     make(chan struct{}),
		closeErr: make(chan struct{}),
	}
	go e.run()
	return e
}

func (e *SingleThreadExecutor) Post(fn func()) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.queue = append(e.queue, fn)
	e.mu.Unlock()
	select {
	case e.notify <- struct{}{}:
	default:
	}
}

func (e *SingleThreadExecutor) run() {
	defer close(e.done)
	for {
		e.mu.Lock()
		batch := e.queue
		e.queue = nil
		e.mu.Unlock()

		for _, fn := range batch {
			safeRun(fn)
		}
		if len(batch) != 0 {
			continue
		}
		select {
		case <-e.closeErr:
			e.mu.Lock()
			pending := len(e.queue)
			e.mu.Unlock()
			if pending == 0 {
				return
			}
		case <-e.notify:
		}
	}
}

// Shutdown stops accepting new work and waits for the drain goroutine to
// exit after finishing whatever was already queued.
func (e *SingleThreadExecutor) Shutdown() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	e.mu.Unlock()
	close(e.closeErr)
	<-e.done
}

func (e *SingleThreadExecutor) alreadySerial() bool { return true }

// yieldPending runs whatever is queued right now, same contract as
// [Strand.yieldPending]: only safe to call from the run goroutine itself,
// i.e. from within a callable that run's batch loop is currently executing.
func (e *SingleThreadExecutor) yieldPending() {
	for {
		e.mu.Lock()
		if len(e.queue) == 0 {
			e.mu.Unlock()
			return
		}
		fn := e.queue[0]
		e.queue = e.queue[1:]
		e.mu.Unlock()
		safeRun(fn)
	}
}

func safeRun(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logPanic(r)
		}
	}()
	fn()
}

var (
	defaultExecutorOnce sync.Once
	defaultExecutor     *ThreadPool
)

// Default returns the process-wide, lazily-initialised default thread pool,
// built with WithFixedWorkers(runtime.GOMAXPROCS(0)). Nothing in the package
// uses it implicitly: Run builds its own executor and BlockOn takes one
// explicitly. Grounded on the source's "global runtime" design
// note (§9): "express as an atomically-initialised static."
func Default() *ThreadPool {
	defaultExecutorOnce.Do(func() {
		n := runtime.GOMAXPROCS(0)
		if n < 1 {
			n = 1
		}
		defaultExecutor = NewThreadPool(WithFixedWorkers(uint(n)))
	})
	return defaultExecutor
}

package corio

import "sync/atomic"

// Strand serializes execution of callables posted to it: no two callables
// posted through the same Strand ever run concurrently, and they run in
// FIFO submission order, regardless of how many goroutines call Post or how
// many workers the underlying Executor has.
//
// Posting is cheap and never blocks: Post enqueues onto a lock-free MPSC
// ring ([strandRing]) and, only if no drain is already active, posts a
// single drain callable to the underlying Executor. Whichever goroutine is
// draining keeps draining until the queue empties, then releases the
// "active drainer" flag; a racing Post that observes the flag already held
// does nothing further, trusting the active drainer to see its entry.
type Strand struct {
	executor Executor
	queue    *strandRing
	active   atomic.Bool

	// drainerGoroutine is a debug-build-only record of which goroutine is
	// currently the active drainer, asserting the core guarantee (at most
	// one goroutine ever runs this strand's callables at a time) rather
	// than trusting it silently. Zero means no drainer is active.
	drainerGoroutine atomic.Uint64
}

// NewStrand wraps executor with a FIFO serialization guarantee.
func NewStrand(executor Executor) *Strand {
	return &Strand{
		executor: executor,
		queue:    newStrandRing(),
	}
}

// Post enqueues fn to run on the strand. It never runs inline, even when
// called from within a callable already running on this strand: fn is
// always scheduled via the underlying Executor, preserving the "a frame is
// polled only on its strand, as a fresh post" invariant coroutines rely on.
func (s *Strand) Post(fn func()) {
	s.queue.Push(fn)
	s.tryScheduleDrain()
}

func (s *Strand) tryScheduleDrain() {
	if s.active.CompareAndSwap(false, true) {
		s.executor.Post(s.drain)
	}
}

// drain runs on the Executor. It owns the "active drainer" flag for as long
// as it keeps finding work; it must clear the flag before its final empty
// check so a Post racing the moment of emptiness is guaranteed either to see
// the flag still held (and do nothing, trusting this drain to notice the new
// entry) or to win the CAS and schedule a fresh drain.
func (s *Strand) drain() {
	id := currentGoroutineID()
	prev := s.drainerGoroutine.Swap(id)
	debugAssert(prev == 0, "corio: Strand drain entered while another drainer is active")
	defer s.drainerGoroutine.Store(0)

	for {
		fn := s.queue.Pop()
		if fn == nil {
			s.active.Store(false)
			// Re-check: a concurrent Push may have landed between Pop
			// returning nil and the flag clearing above.
			if s.queue.Length() == 0 {
				return
			}
			if !s.active.CompareAndSwap(false, true) {
				return // another Post already took over scheduling
			}
			continue
		}
		safeRun(fn)
	}
}

// alreadySerial reports false: a Strand is a wrapper, never the thing being
// tested for already-serial status.
func (s *Strand) alreadySerial() bool { return false }

// yieldPending runs whatever is queued right now, returning once the queue
// observed at entry is empty. It must only be called from a callable that is
// itself running as part of an active drain (i.e. from inside safeRun,
// called by drain above): that goroutine already owns the "active drainer"
// slot, so recursing into pending work here is safe and keeps it serialized
// with everything else on the strand rather than handing it to a second,
// concurrently-running drain.
//
// This is what backs Yield: work already queued ahead of a yielding
// coroutine gets to run before that coroutine's continuation, without ever
// blocking the drain goroutine on a repost of its own continuation (which
// would deadlock, since nothing else would be left to drain the queue).
func (s *Strand) yieldPending() {
	for {
		fn := s.queue.Pop()
		if fn == nil {
			return
		}
		safeRun(fn)
	}
}

package executor

import "sync/atomic"

// poolState is a lock-free state machine tracking whether a Pool is
// accepting new work, adapted from the corpus's cache-line-padded atomic
// state-machine pattern (there used for a JS event loop's run state; here
// repurposed to a thread pool's two-state accept/closed lifecycle).
type poolState struct { // betteralign:ignore
	_ [64]byte
	v atomic.Uint32
	_ [60]byte
}

const (
	poolOpen uint32 = iota
	poolClosed
)

func (s *poolState) closed() bool {
	return s.v.Load() == poolClosed
}

// tryClose transitions open -> closed, returning true only for the caller
// that performed the transition (so Shutdown's teardown runs exactly once).
func (s *poolState) tryClose() bool {
	return s.v.CompareAndSwap(poolOpen, poolClosed)
}

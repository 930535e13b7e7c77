package corio

import (
	"runtime"
	"sync"
	"weak"
)

// erasedTask is the minimal, type-erased view of a running Task the
// package-wide registry needs: whether it has finished, and a way to abort
// it without the registry knowing its result type. It is held strongly by
// the sharedState it describes (a reference cycle GC collects together),
// so a weak.Pointer to it reports non-nil for exactly as long as the task
// itself is still reachable from somewhere (a retained Task, AbortHandle,
// or its still-running entry goroutine).
type erasedTask struct {
	finished func() bool
	abort    func() bool
}

// taskRegistry tracks live tasks via weak pointers, the way the source's
// promise registry tracks live promises: a ring buffer of IDs scavenged in
// bounded batches so the cost of noticing completed/collected entries never
// grows with the total number of tasks ever spawned.
type taskRegistry struct {
	mu         sync.RWMutex
	data       map[uint64]weak.Pointer[erasedTask]
	ring       []uint64
	head       int
	nextID     uint64
	scavengeMu sync.Mutex
}

func newTaskRegistry() *taskRegistry {
	return &taskRegistry{
		data:   make(map[uint64]weak.Pointer[erasedTask]),
		ring:   make([]uint64, 0, 256),
		nextID: 1,
	}
}

func (r *taskRegistry) register(self *erasedTask) uint64 {
	wp := weak.Make(self)

	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextID
	r.nextID++
	r.data[id] = wp
	r.ring = append(r.ring, id)
	return id
}

// scavenge drops registry entries whose task has either finished or been
// garbage collected, processing at most batchSize ring slots this call.
func (r *taskRegistry) scavenge(batchSize int) {
	if batchSize <= 0 {
		return
	}
	r.scavengeMu.Lock()
	defer r.scavengeMu.Unlock()

	r.mu.RLock()
	ringLen := len(r.ring)
	if ringLen == 0 {
		r.mu.RUnlock()
		return
	}
	start := r.head
	end := min(start+batchSize, ringLen)

	type slot struct {
		id  uint64
		idx int
		wp  weak.Pointer[erasedTask]
	}
	batch := make([]slot, 0, end-start)
	for i := start; i < end; i++ {
		id := r.ring[i]
		if id == 0 {
			continue
		}
		if wp, ok := r.data[id]; ok {
			batch = append(batch, slot{id: id, idx: i, wp: wp})
		}
	}
	nextHead := end
	if nextHead >= ringLen {
		nextHead = 0
	}
	r.mu.RUnlock()

	var dead []slot
	for _, s := range batch {
		task := s.wp.Value()
		if task == nil || task.finished() {
			dead = append(dead, s)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range dead {
		delete(r.data, s.id)
		if s.idx < len(r.ring) && r.ring[s.idx] == s.id {
			r.ring[s.idx] = 0
		}
	}
	r.head = nextHead
	if nextHead == 0 && len(r.ring) > 256 && len(r.data) < len(r.ring)/4 {
		r.compact()
	}
}

// compact rebuilds the ring and map to drop null markers and release the
// backing array; must be called with mu held for writing.
func (r *taskRegistry) compact() {
	newRing := make([]uint64, 0, len(r.data))
	newData := make(map[uint64]weak.Pointer[erasedTask], len(r.data))
	for _, id := range r.ring {
		if id == 0 {
			continue
		}
		if wp, ok := r.data[id]; ok {
			newRing = append(newRing, id)
			newData[id] = wp
		}
	}
	r.ring = newRing
	r.data = newData
	r.head = 0
}

func (r *taskRegistry) liveCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, wp := range r.data {
		if t := wp.Value(); t != nil && !t.finished() {
			n++
		}
	}
	return n
}

func (r *taskRegistry) abortAll() {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, wp := range r.data {
		if t := wp.Value(); t != nil {
			t.abort()
		}
	}
}

var globalTaskRegistry = newTaskRegistry()

// LiveTaskCount reports how many spawned tasks the package believes are
// still reachable and unfinished. It runs a bounded scavenge pass first, so
// the count reflects recently completed or garbage-collected tasks rather
// than every task ever spawned.
func LiveTaskCount() int {
	globalTaskRegistry.scavenge(256)
	return globalTaskRegistry.liveCount()
}

// AbortAll requests abort on every task the registry can still reach. Used
// by shutdown paths that want to stop stragglers rather than leave
// goroutines parked on ctx.Done() forever.
func AbortAll() {
	globalTaskRegistry.abortAll()
}

// currentGoroutineID parses the calling goroutine's ID out of its own stack
// trace header ("goroutine 123 [running]:..."), the same technique the
// teacher's getGoroutineID uses. Debug-build-only diagnostic, never on a
// hot path: used to assert a Strand's "active drainer" is a single
// goroutine at a time, not to make scheduling decisions.
func currentGoroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	var id uint64
	for i := len("goroutine "); i < n; i++ {
		if buf[i] < '0' || buf[i] > '9' {
			break
		}
		id = id*10 + uint64(buf[i]-'0')
	}
	return id
}

// Package executor provides the thread-pool Executor backing corio's
// Executor & Strand component: a dispatcher goroutine draining a chunked
// submission queue onto a dynamic or fixed-size pool of worker goroutines.
//
// Constructors
//   - New(opts ...Option): options-based constructor, the only constructor.
//
// Pools
//   - Dynamic pool (default): grows and shrinks as needed via sync.Pool.
//   - Fixed pool: caps the number of concurrently live worker structs.
//
// Posting never fails while the Executor is running; Post silently drops
// work submitted after Shutdown, matching a torn-down thread pool.
package executor

package corio

import (
	"context"
	"sync"
)

// runAwaitable runs a's Await on its own goroutine, delivering the Result
// over a channel. This is how combinators achieve concurrency over
// arbitrary Awaitable[T] values even though Lazy[T].Await is itself a
// direct synchronous call — grounded on the teacher's All/AllSettled/Race
// implementations, which likewise fan work out across goroutines and
// collect through a shared, mutex-guarded control block.
func runAwaitable[T any](ctx context.Context, a Awaitable[T]) <-chan Result[T] {
	out := make(chan Result[T], 1)
	go func() {
		v, err := a.Await(ctx)
		out <- Result[T]{value: v, err: err}
	}()
	return out
}

// GatherSlice awaits every item to completion (never short-circuiting) and
// returns one Result[T] per item, positionally: result[i] carries Ok(Tᵢ) or
// Err(eᵢ) exactly as child i finished, so a caller can always map a failure
// back to the child that produced it (unlike a flattened aggregate error,
// which would discard that mapping).
func GatherSlice[T any](ctx context.Context, items ...Awaitable[T]) []Result[T] {
	results := make([]Result[T], len(items))
	var wg sync.WaitGroup
	wg.Add(len(items))
	for i, item := range items {
		i, item := i, item
		go func() {
			defer wg.Done()
			v, err := item.Await(ctx)
			if err != nil {
				results[i] = Err[T](err)
			} else {
				results[i] = Ok(v)
			}
		}()
	}
	wg.Wait()
	return results
}

// tryGatherResults is the shared engine behind TryGatherSlice and the
// AndAll builder mode: every child runs to completion unless/until the
// first failure lands, at which point every other still-running child's
// derived context is cancelled and the function returns without waiting for
// them; their slots are reported as Err(ErrCancelled). Unlike
// TryGatherSlice's flattened return, this keeps the full per-child Result[T]
// slot so callers that want it (the builder) can see exactly which index failed.
func tryGatherResults[T any](ctx context.Context, items []Awaitable[T]) ([]Result[T], error) {
	childCtx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	type indexed struct {
		i   int
		res Result[T]
	}
	out := make(chan indexed, len(items))
	for i, item := range items {
		i, item := i, item
		go func() {
			v, err := item.Await(childCtx)
			if err != nil {
				out <- indexed{i: i, res: Err[T](err)}
			} else {
				out <- indexed{i: i, res: Ok(v)}
			}
		}()
	}

	results := make([]Result[T], len(items))
	done := make([]bool, len(items))
	for range items {
		got := <-out
		results[got.i] = got.res
		done[got.i] = true
		if err := got.res.Error(); err != nil {
			cancel(err)
			for i := range done {
				if !done[i] {
					results[i] = Err[T](ErrCancelled)
				}
			}
			return results, err
		}
	}
	return results, nil
}

// TryGatherSlice awaits every item, but on the first failure cancels every
// other still-running child (via a per-child derived context) and returns
// that error immediately without waiting for the losers to unwind. This
// sibling-cancellation behaviour is new relative to the teacher's
// All/AllSettled, which never cancel their children; it is grounded on
// abort.go's signal-propagation idiom instead, applied to context.Context.
func TryGatherSlice[T any](ctx context.Context, items ...Awaitable[T]) ([]T, error) {
	results, err := tryGatherResults(ctx, items)
	values := make([]T, len(results))
	for i, r := range results {
		values[i] = r.Value()
	}
	return values, err
}

// selectResults is the shared engine behind SelectSlice and the Or builder
// mode: whichever child completes first wins; every other child's slot is
// reported as Err(ErrCancelled) since it was abandoned before producing a
// result, not because it actually failed.
func selectResults[T any](ctx context.Context, items []Awaitable[T]) (winnerIndex int, results []Result[T]) {
	childCtx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	type indexed struct {
		i   int
		res Result[T]
	}
	out := make(chan indexed, len(items))
	for i, item := range items {
		i, item := i, item
		go func() {
			v, err := item.Await(childCtx)
			if err != nil {
				out <- indexed{i: i, res: Err[T](err)}
			} else {
				out <- indexed{i: i, res: Ok(v)}
			}
		}()
	}

	winner := <-out
	cancel(ErrCancelled)

	results = make([]Result[T], len(items))
	for i := range results {
		results[i] = Err[T](ErrCancelled)
	}
	results[winner.i] = winner.res
	return winner.i, results
}

// SelectSlice awaits items concurrently and returns the index and value of
// whichever completes first, cancelling every other child.
func SelectSlice[T any](ctx context.Context, items ...Awaitable[T]) (int, T, error) {
	i, results := selectResults(ctx, items)
	v, err := results[i].Unpack()
	return i, v, err
}

// Gather2 awaits two heterogeneously-typed awaitables, returning one
// Result per child; a fixed-arity stand-in for Go's lack of variadic
// heterogeneous generics, matching the original's
// std::tuple<Result<T>...> shape.
func Gather2[A, B any](ctx context.Context, a Awaitable[A], b Awaitable[B]) (Result[A], Result[B]) {
	ach := make(chan Result[A], 1)
	go func() {
		v, err := a.Await(ctx)
		if err != nil {
			ach <- Err[A](err)
		} else {
			ach <- Ok(v)
		}
	}()
	bv, berr := b.Await(ctx)
	br := Ok(bv)
	if berr != nil {
		br = Err[B](berr)
	}
	return <-ach, br
}

// Gather3 is the three-awaitable form of Gather2.
func Gather3[A, B, C any](ctx context.Context, a Awaitable[A], b Awaitable[B], c Awaitable[C]) (Result[A], Result[B], Result[C]) {
	bch := make(chan Result[B], 1)
	cch := make(chan Result[C], 1)
	go func() {
		v, err := b.Await(ctx)
		if err != nil {
			bch <- Err[B](err)
		} else {
			bch <- Ok(v)
		}
	}()
	go func() {
		v, err := c.Await(ctx)
		if err != nil {
			cch <- Err[C](err)
		} else {
			cch <- Ok(v)
		}
	}()
	av, aerr := a.Await(ctx)
	ar := Ok(av)
	if aerr != nil {
		ar = Err[A](aerr)
	}
	return ar, <-bch, <-cch
}

// TryGather2 is the two-awaitable heterogeneous form of TryGatherSlice:
// on the first failure, the other child's context is cancelled and that
// first error is returned. Unlike TryGatherSlice, it returns only after both
// children have returned, so a child that ignores its context is waited for.
func TryGather2[A, B any](ctx context.Context, a Awaitable[A], b Awaitable[B]) (A, B, error) {
	childCtx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	type res struct {
		v   A
		err error
	}
	ach := make(chan res, 1)
	go func() {
		v, err := a.Await(childCtx)
		if err != nil {
			cancel(err)
		}
		ach <- res{v, err}
	}()

	bv, berr := b.Await(childCtx)
	if berr != nil {
		cancel(berr)
	}
	ar := <-ach
	if ar.err != nil || berr != nil {
		return ar.v, bv, context.Cause(childCtx)
	}
	return ar.v, bv, nil
}

// Select2 is the two-awaitable heterogeneous form of SelectSlice: whichever
// of a or b completes first wins, cancelling the other. winner is 0 for a,
// 1 for b.
func Select2[A, B any](ctx context.Context, a Awaitable[A], b Awaitable[B]) (winner int, av A, bv B, err error) {
	childCtx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	type resA struct {
		v   A
		err error
	}
	type resB struct {
		v   B
		err error
	}
	ach := make(chan resA, 1)
	bch := make(chan resB, 1)
	go func() {
		v, err := a.Await(childCtx)
		ach <- resA{v, err}
	}()
	go func() {
		v, err := b.Await(childCtx)
		bch <- resB{v, err}
	}()

	select {
	case ar := <-ach:
		cancel(ErrCancelled)
		return 0, ar.v, bv, ar.err
	case br := <-bch:
		cancel(ErrCancelled)
		return 1, av, br.v, br.err
	}
}

// builder is the homogeneous-slice realization of the source's operator
// sugar (a & b, a && b, a || b): Go has no operator overloading on user
// types, so And/AndAll/Or are chainable constructors instead, each folding
// into the matching Slice combinator on Await.
type builder[T any] struct {
	items []Awaitable[T]
	mode  builderMode
}

type builderMode int

const (
	modeGather builderMode = iota
	modeTryGather
	modeSelect
)

// And starts a builder that behaves like GatherSlice when awaited (waits
// for every child, reporting each child's outcome in its own Result slot).
func And[T any](items ...Awaitable[T]) *builder[T] {
	return &builder[T]{items: items, mode: modeGather}
}

// AndAll starts a builder that behaves like TryGatherSlice when awaited
// (short-circuits and cancels siblings on the first failure).
func AndAll[T any](items ...Awaitable[T]) *builder[T] {
	return &builder[T]{items: items, mode: modeTryGather}
}

// Or starts a builder that behaves like SelectSlice when awaited (first
// completion wins, cancelling the rest).
func Or[T any](items ...Awaitable[T]) *builder[T] {
	return &builder[T]{items: items, mode: modeSelect}
}

// Add appends another awaitable to the builder, returning the same builder
// for chaining (corio.And(a, b).Add(c)).
func (b *builder[T]) Add(item Awaitable[T]) *builder[T] {
	b.items = append(b.items, item)
	return b
}

// Await materializes the builder per its mode, always as one Result[T] per
// child, positionally: modeGather delegates straight to GatherSlice,
// modeTryGather/modeSelect reuse the same engines TryGatherSlice/SelectSlice
// are built on (tryGatherResults/selectResults) so a caller sees the real
// per-child outcome rather than a collapsed value-or-error pair.
func (b *builder[T]) Await(ctx context.Context) ([]Result[T], error) {
	switch b.mode {
	case modeTryGather:
		results, err := tryGatherResults(ctx, b.items)
		return results, err
	case modeSelect:
		_, results := selectResults(ctx, b.items)
		return results, nil
	default:
		return GatherSlice(ctx, b.items...), nil
	}
}

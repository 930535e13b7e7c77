package corio

import (
	"context"
	"sort"
	"testing"
)

// BenchmarkStrand_PostThroughput measures bare Strand.Post/drain overhead,
// the teacher corpus's own post.cpp-equivalent microbenchmark: how many
// trivial callables a single Strand can serialize per second.
func BenchmarkStrand_PostThroughput(b *testing.B) {
	pool := NewThreadPool()
	defer pool.Shutdown()
	s := NewStrand(pool)

	done := make(chan struct{})
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		last := i == b.N-1
		s.Post(func() {
			if last {
				close(done)
			}
		})
	}
	<-done
}

// BenchmarkSpawn_DeepChain measures the cost of a chain of nested Spawn+Await
// calls, each Task awaiting exactly one child before returning — the
// spawn-chain shape the original's bench/spawn.cpp/spawns.cpp exercise.
func BenchmarkSpawn_DeepChain(b *testing.B) {
	pool := NewThreadPool()
	defer pool.Shutdown()

	const depth = 8
	var chain func(ctx context.Context, remaining int) (int, error)
	chain = func(ctx context.Context, remaining int) (int, error) {
		if remaining == 0 {
			return 0, nil
		}
		child := SpawnFrom(ctx, func(ctx context.Context) (int, error) {
			return chain(ctx, remaining-1)
		})
		v, err := child.Await(ctx)
		return v + 1, err
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		got, err := BlockOn(pool, func(ctx context.Context) (int, error) {
			return chain(ctx, depth)
		})
		if err != nil || got != depth {
			b.Fatalf("chain(depth=%d) = (%d, %v)", depth, got, err)
		}
	}
}

// benchMergeInts and benchMergeSort back BenchmarkGather2_MergeSort: the
// same Spawn-per-half/Gather2-to-merge shape as scenario_test.go's S1
// merge sort, sized for repeated benchmark iterations.
func benchMergeInts(a, b []int) []int {
	out := make([]int, 0, len(a)+len(b))
	for len(a) > 0 && len(b) > 0 {
		if a[0] <= b[0] {
			out = append(out, a[0])
			a = a[1:]
		} else {
			out = append(out, b[0])
			b = b[1:]
		}
	}
	out = append(out, a...)
	out = append(out, b...)
	return out
}

func benchMergeSort(ctx context.Context, xs []int) ([]int, error) {
	if len(xs) <= 32 {
		out := append([]int(nil), xs...)
		sort.Ints(out)
		return out, nil
	}
	mid := len(xs) / 2
	left := SpawnFrom(ctx, func(ctx context.Context) ([]int, error) { return benchMergeSort(ctx, xs[:mid]) })
	right := SpawnFrom(ctx, func(ctx context.Context) ([]int, error) { return benchMergeSort(ctx, xs[mid:]) })
	lr, rr := Gather2[[]int, []int](ctx, left, right)
	l, err := lr.Unpack()
	if err != nil {
		return nil, err
	}
	r, err := rr.Unpack()
	if err != nil {
		return nil, err
	}
	return benchMergeInts(l, r), nil
}

func BenchmarkGather2_MergeSort(b *testing.B) {
	data := make([]int, 512)
	for i := range data {
		data[i] = len(data) - i
	}
	pool := NewThreadPool()
	defer pool.Shutdown()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, err := BlockOn(pool, func(ctx context.Context) ([]int, error) {
			return benchMergeSort(ctx, data)
		})
		if err != nil {
			b.Fatal(err)
		}
	}
}

package corio

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func immediate[T any](v T, err error) Awaitable[T] {
	return NewLazyAwaitable(v, err)
}

// lazyAwaitable is a tiny Awaitable[T] test double yielding a fixed value
// after an optional delay, used to drive combinator fan-out deterministically.
type lazyAwaitable[T any] struct {
	v     T
	err   error
	delay time.Duration
}

// NewLazyAwaitable returns an Awaitable[T] that resolves to (v, err)
// immediately once awaited.
func NewLazyAwaitable[T any](v T, err error) Awaitable[T] {
	return lazyAwaitable[T]{v: v, err: err}
}

func (a lazyAwaitable[T]) Await(ctx context.Context) (T, error) {
	if a.delay > 0 {
		select {
		case <-time.After(a.delay):
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		}
	}
	return a.v, a.err
}

func TestGatherSlice_CollectsAllValuesInOrder(t *testing.T) {
	results := GatherSlice[int](context.Background(),
		immediate(1, nil), immediate(2, nil), immediate(3, nil))
	require.Len(t, results, 3)
	for i, want := range []int{1, 2, 3} {
		v, err := results[i].Unpack()
		require.NoError(t, err)
		require.Equal(t, want, v)
	}
}

func TestGatherSlice_PreservesPerChildOutcomeAndIndex(t *testing.T) {
	e1 := errors.New("one")
	e2 := errors.New("two")
	results := GatherSlice[int](context.Background(),
		immediate(0, e1), immediate(2, nil), immediate(0, e2))

	require.Len(t, results, 3)
	require.False(t, results[0].IsOk())
	require.Equal(t, e1, results[0].Error())
	require.True(t, results[1].IsOk())
	require.Equal(t, 2, results[1].Value())
	require.False(t, results[2].IsOk())
	require.Equal(t, e2, results[2].Error())
}

func TestTryGatherSlice_ReturnsFirstErrorAndCancelsRest(t *testing.T) {
	e1 := errors.New("fails fast")
	slow := lazyAwaitable[int]{v: 9, delay: time.Hour}

	start := time.Now()
	_, err := TryGatherSlice[int](context.Background(), immediate(0, e1), slow)
	require.Equal(t, e1, err)
	require.Less(t, time.Since(start), time.Second)
}

func TestSelectSlice_ReturnsFirstCompletion(t *testing.T) {
	fast := lazyAwaitable[int]{v: 1}
	slow := lazyAwaitable[int]{v: 2, delay: time.Hour}

	i, v, err := SelectSlice[int](context.Background(), slow, fast)
	require.NoError(t, err)
	require.Equal(t, 1, i)
	require.Equal(t, 1, v)
}

func TestGather2_ReturnsBothResults(t *testing.T) {
	ra, rb := Gather2[int, string](context.Background(), immediate(1, nil), immediate("x", nil))
	require.True(t, ra.IsOk())
	require.Equal(t, 1, ra.Value())
	require.True(t, rb.IsOk())
	require.Equal(t, "x", rb.Value())
}

func TestGather2_PreservesPerChildFailure(t *testing.T) {
	e1 := errors.New("a")
	e2 := errors.New("b")
	ra, rb := Gather2[int, string](context.Background(), immediate(0, e1), immediate("", e2))
	require.Equal(t, e1, ra.Error())
	require.Equal(t, e2, rb.Error())
}

func TestAndBuilder_BehavesLikeGatherSlice(t *testing.T) {
	results, err := And[int](immediate(1, nil)).Add(immediate(2, nil)).Await(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.Equal(t, 1, results[0].Value())
	require.Equal(t, 2, results[1].Value())
}

func TestOrBuilder_BehavesLikeSelectSlice(t *testing.T) {
	fast := lazyAwaitable[int]{v: 5}
	slow := lazyAwaitable[int]{v: 6, delay: time.Hour}
	results, err := Or[int](slow, fast).Await(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.False(t, results[0].IsOk())
	require.Equal(t, ErrCancelled, results[0].Error())
	require.True(t, results[1].IsOk())
	require.Equal(t, 5, results[1].Value())
}

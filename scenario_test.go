package corio

import (
	"context"
	"io"
	"math/rand"
	"net"
	"sort"
	"testing"
	"time"

	"github.com/joeycumines/go-corio/bridge"
	"github.com/stretchr/testify/require"
)

// TestScenario_S1_MergeSortViaGather is the merge-sort scenario: a recursive
// coroutine spawning two half-sorts and awaiting both via Gather2 yields a
// sorted output equal to sort.Ints of the same input.
func TestScenario_S1_MergeSortViaGather(t *testing.T) {
	pool := NewThreadPool()
	defer pool.Shutdown()

	rnd := rand.New(rand.NewSource(42))
	input := make([]int, 5000)
	for i := range input {
		input[i] = rnd.Intn(1 << 20)
	}

	want := append([]int(nil), input...)
	sort.Ints(want)

	got, err := BlockOn(pool, func(ctx context.Context) ([]int, error) {
		return scenarioMergeSort(ctx, input)
	})
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func scenarioMergeSort(ctx context.Context, xs []int) ([]int, error) {
	if len(xs) <= 32 {
		out := append([]int(nil), xs...)
		sort.Ints(out)
		return out, nil
	}
	mid := len(xs) / 2
	left := SpawnFrom(ctx, func(ctx context.Context) ([]int, error) { return scenarioMergeSort(ctx, xs[:mid]) })
	right := SpawnFrom(ctx, func(ctx context.Context) ([]int, error) { return scenarioMergeSort(ctx, xs[mid:]) })
	lr, rr := Gather2[[]int, []int](ctx, left, right)
	l, err := lr.Unpack()
	if err != nil {
		return nil, err
	}
	r, err := rr.Unpack()
	if err != nil {
		return nil, err
	}
	return scenarioMerge(l, r), nil
}

func scenarioMerge(a, b []int) []int {
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

// TestScenario_S2_TCPEchoOverBridge is the TCP echo scenario: a coroutine
// accepts one real TCP connection, reads up to 1024 bytes via
// corio/bridge, writes them back; a client sends a payload and must
// receive exactly that payload back.
func TestScenario_S2_TCPEchoOverBridge(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	pool := NewThreadPool()
	defer pool.Shutdown()

	accepted := make(chan error, 1)
	Spawn(pool, func(ctx context.Context) (struct{}, error) {
		conn, err := ln.Accept()
		if err != nil {
			accepted <- err
			return struct{}{}, err
		}
		defer conn.Close()

		buf := make([]byte, 1024)
		n, err := bridgeAwaitRead(ctx, conn, buf).Await(ctx)
		if err != nil {
			accepted <- err
			return struct{}{}, err
		}
		_, err = bridgeAwaitWrite(ctx, conn, buf[:n]).Await(ctx)
		accepted <- err
		return struct{}{}, err
	})

	conn, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	defer conn.Close()

	payload := []byte{'a', 'b', 'c', 'd', 'e'}
	_, err = conn.Write(payload)
	require.NoError(t, err)

	got := make([]byte, len(payload))
	_, err = io.ReadFull(conn, got)
	require.NoError(t, err)
	require.Equal(t, payload, got)
	require.NoError(t, <-accepted)
}

func bridgeAwaitRead(ctx context.Context, conn net.Conn, buf []byte) bridge.Awaiter[int] {
	return bridge.Bridge(ctx, func(complete func(int, error)) {
		go func() {
			n, err := conn.Read(buf)
			complete(n, err)
		}()
	}, func() {
		_ = conn.SetReadDeadline(time.Now())
	})
}

func bridgeAwaitWrite(ctx context.Context, conn net.Conn, buf []byte) bridge.Awaiter[int] {
	return bridge.Bridge(ctx, func(complete func(int, error)) {
		go func() {
			n, err := conn.Write(buf)
			complete(n, err)
		}()
	}, func() {
		_ = conn.SetWriteDeadline(time.Now())
	})
}

// TestScenario_S5_RunOnMigratesBookkeeping is the executor-migration
// scenario, adjusted per DESIGN.md's documented limitation: RunOn cannot
// move the executing goroutine (Go has no suspend/resume for an ordinary
// function), so this asserts what RunOn actually guarantees — that
// CurrentExecutor observes each migration in ping-pong order — plus that
// aborting mid-ping-pong completes promptly rather than hanging.
func TestScenario_S5_RunOnMigratesBookkeeping(t *testing.T) {
	poolA := NewThreadPool()
	defer poolA.Shutdown()
	poolB := NewThreadPool()
	defer poolB.Shutdown()

	seen := make(chan Executor, 4)
	task := Spawn(poolA, func(ctx context.Context) (int, error) {
		seen <- CurrentExecutor(ctx)
		if err := RunOn(ctx, poolB); err != nil {
			return 0, err
		}
		seen <- CurrentExecutor(ctx)
		if err := RunOn(ctx, poolA); err != nil {
			return 0, err
		}
		seen <- CurrentExecutor(ctx)
		if err := RunOn(ctx, poolB); err != nil {
			return 0, err
		}
		seen <- CurrentExecutor(ctx)
		<-ctx.Done()
		return 0, ctx.Err()
	})

	require.Equal(t, Executor(poolA), <-seen)
	require.Equal(t, Executor(poolB), <-seen)
	require.Equal(t, Executor(poolA), <-seen)
	require.Equal(t, Executor(poolB), <-seen)

	start := time.Now()
	require.True(t, task.Abort())
	_, err := task.Await(context.Background())
	require.ErrorIs(t, err, ErrCancelled)
	require.Less(t, time.Since(start), 500*time.Millisecond)
}

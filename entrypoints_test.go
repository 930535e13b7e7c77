package corio

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBlockOn_RunsBodyAndReturnsResult(t *testing.T) {
	pool := NewThreadPool()
	defer pool.Shutdown()

	v, err := BlockOn(pool, func(ctx context.Context) (int, error) {
		return 11, nil
	})
	require.NoError(t, err)
	require.Equal(t, 11, v)
}

func TestBlockOn_PropagatesError(t *testing.T) {
	pool := NewThreadPool()
	defer pool.Shutdown()

	wantErr := errors.New("body failed")
	_, err := BlockOn(pool, func(ctx context.Context) (int, error) {
		return 0, wantErr
	})
	require.Equal(t, wantErr, err)
}

func TestRun_MultiThreaded(t *testing.T) {
	v, err := Run(func(ctx context.Context) (string, error) {
		require.NotNil(t, CurrentExecutor(ctx))
		return "done", nil
	}, true)
	require.NoError(t, err)
	require.Equal(t, "done", v)
}

func TestRun_SingleThreaded(t *testing.T) {
	v, err := Run(func(ctx context.Context) (int, error) {
		return 5, nil
	}, false)
	require.NoError(t, err)
	require.Equal(t, 5, v)
}

package corio

import (
	"context"
	"time"
)

// CurrentExecutor returns the Executor backing the runner driving the
// coroutine body currently executing under ctx, or nil if ctx was never
// threaded through a corio entry point.
func CurrentExecutor(ctx context.Context) Executor {
	r := runnerFromContext(ctx)
	if r == nil {
		return nil
	}
	return r.InnerExecutor()
}

// Yield lets any work already queued on the calling coroutine's runner run
// before returning control to the caller. Returns ctx.Err() if ctx is done
// instead of yielding.
//
// Unlike a true stackful coroutine suspend, a Go coroutine body owns its
// goroutine for its entire lifetime, so Yield cannot repost its own
// continuation and block waiting for it: nothing would be left to drain the
// runner's queue and run that repost. Instead Yield drains whatever is
// already queued, inline, on the calling goroutine, which is equivalent in
// observable ordering (everything queued before the yield point runs before
// the code after it) without ever blocking.
func Yield(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r := runnerFromContext(ctx)
	debugAssert(r != nil, "corio: Yield called outside a coroutine body")
	if r == nil {
		return nil
	}
	if d, ok := r.(pendingDrainer); ok {
		d.yieldPending()
	}
	return ctx.Err()
}

// SleepFor suspends the calling coroutine for d, or until ctx is cancelled,
// whichever comes first.
func SleepFor(ctx context.Context, d time.Duration) error {
	return sleepUntilTimer(ctx, time.NewTimer(d))
}

// SleepUntil suspends the calling coroutine until t, or until ctx is
// cancelled, whichever comes first.
func SleepUntil(ctx context.Context, t time.Time) error {
	return sleepUntilTimer(ctx, time.NewTimer(time.Until(t)))
}

func sleepUntilTimer(ctx context.Context, timer *time.Timer) error {
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

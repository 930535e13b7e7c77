package executor

import (
	"log"
	"time"

	"github.com/joeycumines/go-catrate"
)

// Option configures a Pool. Functional-options pattern, grounded on both
// teacher sources (eventloop's LoopOption, ygrebnov-workers' Option).
type Option func(*options)

type options struct {
	fixedWorkers      uint
	overloadThreshold int
	onOverload        func(queued int)
	onPanic           func(recovered any)
	limiter           *catrate.Limiter
}

func defaultOptions() options {
	return options{
		fixedWorkers:      0, // dynamic pool
		overloadThreshold: 0, // disabled unless WithOverloadThreshold is set
		onOverload:        func(queued int) { log.Printf("corio: executor queue depth %d", queued) },
		onPanic:           func(recovered any) { log.Printf("corio: task panic: %v", recovered) },
	}
}

// WithFixedWorkers selects a fixed-size worker pool capped at n worker
// structs. It does not limit how many callables run at once: the dispatcher
// still starts one goroutine per callable. n must be > 0.
func WithFixedWorkers(n uint) Option {
	return func(o *options) {
		if n == 0 {
			panic("executor: WithFixedWorkers requires n > 0")
		}
		o.fixedWorkers = n
	}
}

// WithDynamicWorkers selects a dynamic-size worker pool (the default).
func WithDynamicWorkers() Option {
	return func(o *options) { o.fixedWorkers = 0 }
}

// WithOverloadThreshold arms the overload hook: once the queue depth reaches
// n, onOverload fires (rate-limited to at most one call per window via an
// internal catrate.Limiter, so a sustained backlog doesn't flood the hook).
func WithOverloadThreshold(n int, onOverload func(queued int)) Option {
	return func(o *options) {
		o.overloadThreshold = n
		if onOverload != nil {
			o.onOverload = onOverload
		}
		if o.limiter == nil {
			o.limiter = catrate.NewLimiter(map[time.Duration]int{time.Second: 1})
		}
	}
}

// WithPanicHandler overrides how a panic escaping a posted callable is
// reported. The default logs via the standard library logger.
func WithPanicHandler(fn func(recovered any)) Option {
	return func(o *options) {
		if fn != nil {
			o.onPanic = fn
		}
	}
}

// Package bridge adapts callback-style APIs (a third-party SDK taking a
// completion callback, a legacy C-style async function) into awaitables a
// corio coroutine body can await directly. It deliberately does not import
// corio: Awaiter[T] satisfies corio.Awaitable[T] structurally (same
// Await(context.Context) (T, error) method shape), avoiding an import cycle
// while letting corio and corio/bridge stay independently testable.
//
// Grounded on the teacher's goroutine-launch-plus-single-resolution-race
// pattern (Promisify) and its cancellation-slot idiom (AbortSignal).
package bridge

import (
	"context"
	"fmt"
	"sync"
)

// PanicError wraps a panic value recovered from an initiate function.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string { return fmt.Sprintf("bridge: initiate panicked: %v", e.Value) }

// abortSignal is a minimal, self-contained cancellation slot: Bridge
// allocates one per pending operation, registers a handler that drops a
// late completion, and fires it when the awaiter is abandoned. This is the
// AbortSignal listener idiom named in the package doc, implemented locally
// so this package has no dependency on corio.
type abortSignal struct {
	mu       sync.Mutex
	fired    bool
	handlers []func()
}

func (s *abortSignal) onFire(h func()) {
	s.mu.Lock()
	if s.fired {
		s.mu.Unlock()
		h()
		return
	}
	s.handlers = append(s.handlers, h)
	s.mu.Unlock()
}

func (s *abortSignal) fire() {
	s.mu.Lock()
	if s.fired {
		s.mu.Unlock()
		return
	}
	s.fired = true
	handlers := s.handlers
	s.handlers = nil
	s.mu.Unlock()
	for _, h := range handlers {
		h()
	}
}

// settlement is the one-shot, race-safe completion slot a bridged operation
// resolves exactly once: whichever of the initiate callback or context
// cancellation reaches it first wins; the other is silently dropped,
// matching "operation-aborted sentinel / already locally cancelled -> drop
// silently" from the completion-handler bridge contract.
type settlement[T any] struct {
	once sync.Once
	done chan struct{}
	v    T
	err  error
}

func newSettlement[T any]() *settlement[T] {
	return &settlement[T]{done: make(chan struct{})}
}

func (s *settlement[T]) complete(v T, err error) {
	s.once.Do(func() {
		s.v, s.err = v, err
		close(s.done)
	})
}

// Awaiter[T] is the awaitable handle returned by Bridge: it structurally
// satisfies corio.Awaitable[T].
type Awaiter[T any] struct {
	settle *settlement[T]
	signal *abortSignal
}

// Await blocks until the bridged operation completes or ctx is cancelled.
// On cancellation, the abort signal fires (so Bridge's registered cleanup
// runs) and ctx.Err() is returned; a completion that races in afterward is
// dropped by the settlement's one-shot semantics.
func (a Awaiter[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-a.settle.done:
		return a.settle.v, a.settle.err
	case <-ctx.Done():
		a.signal.fire()
		var zero T
		a.settle.complete(zero, ctx.Err())
		return zero, ctx.Err()
	}
}

// Close abandons the awaiter without awaiting it, firing the abort signal
// so the in-flight operation is told to stop. Safe to call more than once.
func (a Awaiter[T]) Close() { a.signal.fire() }

// Bridge adapts a callback-style operation into an Awaiter[T]. initiate is
// called synchronously with a complete closure: the operation must call
// complete exactly once (subsequent calls are ignored) with either a result
// or an error. If initiate panics, the panic is recovered and delivered as
// a *PanicError.
//
// onCancel, if non-nil, is invoked (at most once) when the awaiter is
// abandoned before completion — the operation's own cancellation hook (e.g.
// calling a context.CancelFunc it was given, or closing a stop channel).
func Bridge[T any](ctx context.Context, initiate func(complete func(T, error)), onCancel func()) Awaiter[T] {
	settle := newSettlement[T]()
	signal := &abortSignal{}
	if onCancel != nil {
		signal.onFire(onCancel)
	}

	if err := ctx.Err(); err != nil {
		var zero T
		settle.complete(zero, err)
		return Awaiter[T]{settle: settle, signal: signal}
	}

	func() {
		defer func() {
			if r := recover(); r != nil {
				var zero T
				settle.complete(zero, &PanicError{Value: r})
			}
		}()
		initiate(func(v T, err error) {
			settle.complete(v, err)
		})
	}()

	return Awaiter[T]{settle: settle, signal: signal}
}

// Bridge0 adapts an operation whose callback carries only an error (or
// none), the "void success" shape.
func Bridge0(ctx context.Context, initiate func(complete func(error)), onCancel func()) Awaiter[struct{}] {
	return Bridge[struct{}](ctx, func(complete func(struct{}, error)) {
		initiate(func(err error) { complete(struct{}{}, err) })
	}, onCancel)
}

// Bridge1 adapts an operation whose callback carries a single value and no
// separate error parameter (errors, if any, are carried via panic or a
// zero/sentinel value the caller interprets itself).
func Bridge1[T any](ctx context.Context, initiate func(complete func(T)), onCancel func()) Awaiter[T] {
	return Bridge[T](ctx, func(complete func(T, error)) {
		initiate(func(v T) { complete(v, nil) })
	}, onCancel)
}

// BridgeErr adapts an operation whose callback carries only an error,
// identical in shape to Bridge0 but named for call sites that want to
// foreground the error-only nature of the callback.
func BridgeErr(ctx context.Context, initiate func(complete func(error)), onCancel func()) Awaiter[struct{}] {
	return Bridge0(ctx, initiate, onCancel)
}

// BridgeErrT adapts the common (value, error) two-argument completion
// signature directly.
func BridgeErrT[T any](ctx context.Context, initiate func(complete func(T, error)), onCancel func()) Awaiter[T] {
	return Bridge[T](ctx, initiate, onCancel)
}

// BridgeN adapts an operation whose callback carries a slice of
// heterogeneous results packed by the caller into T (e.g. a struct), the
// tuple-producing form of the completion-handler protocol.
func BridgeN[T any](ctx context.Context, initiate func(complete func(T, error)), onCancel func()) Awaiter[T] {
	return Bridge[T](ctx, initiate, onCancel)
}

// Package async provides the future type returned by asynchronous
// validators.
package async

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

var (
	// ErrTimeout is returned by AwaitWithTimeout when the future is still
	// pending after the timeout.
	ErrTimeout = errors.New("async: timeout")
	// ErrNoFutures is returned by WaitAny when called without futures.
	ErrNoFutures = errors.New("async: no futures provided")
)

// PanicError wraps a value recovered from a panicking task.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	if err, ok := e.Value.(error); ok {
		return err.Error()
	}
	return fmt.Sprint(e.Value)
}

// Future represents the result of an asynchronous computation.
type Future[T any] struct {
	result T
	err    error
	once   sync.Once
	done   chan struct{}
}

func newFuture[T any]() *Future[T] { return &Future[T]{done: make(chan struct{})} }

func (f *Future[T]) settle(v T, err error) {
	f.once.Do(func() {
		f.result = v
		f.err = err
		close(f.done)
	})
}

// Await waits for the computation and returns its result and error.
func (f *Future[T]) Await() (T, error) {
	<-f.done
	return f.result, f.err
}

// Wait is Await bounded by ctx. When ctx ends first, ctx.Err() is returned
// and the computation keeps running.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.result, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// AwaitWithTimeout waits at most timeout for the computation.
func (f *Future[T]) AwaitWithTimeout(timeout time.Duration) (T, error) {
	select {
	case <-f.done:
		return f.result, f.err
	case <-time.After(timeout):
		var zero T
		return zero, ErrTimeout
	}
}

// Done is closed once the future settles.
func (f *Future[T]) Done() <-chan struct{} { return f.done }

// IsComplete reports whether the future settled, without blocking.
func (f *Future[T]) IsComplete() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Go runs fn in its own goroutine. A panic inside fn rejects the future
// with a *PanicError.
func Go[T any](ctx context.Context, fn func(context.Context) (T, error)) *Future[T] {
	f := newFuture[T]()

	go func() {
		var zero T
		defer func() {
			if r := recover(); r != nil {
				f.settle(zero, &PanicError{Value: r})
			}
		}()

		// Early exit prevents running work for an already canceled caller.
		select {
		case <-ctx.Done():
			f.settle(zero, ctx.Err())
			return
		default:
		}

		res, err := fn(ctx)
		f.settle(res, err)
	}()

	return f
}

// Run is Go for tasks that only report success or failure.
func Run(ctx context.Context, fn func(context.Context) error) *Future[struct{}] {
	return Go(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
}

// Resolved returns an already fulfilled future.
func Resolved[T any](v T) *Future[T] {
	f := newFuture[T]()
	f.settle(v, nil)
	return f
}

// Rejected returns an already failed future.
func Rejected[T any](err error) *Future[T] {
	f := newFuture[T]()
	var zero T
	f.settle(zero, err)
	return f
}

// Resolve returns a fulfilled task future.
func Resolve() *Future[struct{}] { return Resolved(struct{}{}) }

// Reject returns a failed task future.
func Reject(err error) *Future[struct{}] { return Rejected[struct{}](err) }

// Promise is a future settled by hand, for callback-style producers.
type Promise[T any] struct {
	f *Future[T]
}

// NewPromise returns an unsettled promise.
func NewPromise[T any]() *Promise[T] { return &Promise[T]{f: newFuture[T]()} }

// Future returns the read side of the promise.
func (p *Promise[T]) Future() *Future[T] { return p.f }

// Resolve fulfils the promise. Only the first settle call has an effect.
func (p *Promise[T]) Resolve(v T) { p.f.settle(v, nil) }

// Reject fails the promise. Only the first settle call has an effect.
func (p *Promise[T]) Reject(err error) {
	var zero T
	p.f.settle(zero, err)
}

// WaitAll waits for every future and returns their results in order along
// with the first error met in that order.
func WaitAll[T any](futures ...*Future[T]) ([]T, error) {
	results := make([]T, len(futures))
	var first error
	for i, future := range futures {
		result, err := future.Await()
		results[i] = result
		if err != nil && first == nil {
			first = err
		}
	}
	return results, first
}

// WaitAny returns the index, result and error of the first future to settle.
func WaitAny[T any](futures ...*Future[T]) (int, T, error) {
	if len(futures) == 0 {
		var zero T
		return -1, zero, ErrNoFutures
	}

	type settled struct {
		index  int
		result T
		err    error
	}
	// Buffered so the losing goroutines never block.
	done := make(chan settled, len(futures))
	for i, future := range futures {
		go func(index int, f *Future[T]) {
			result, err := f.Await()
			done <- settled{index, result, err}
		}(i, future)
	}

	first := <-done
	return first.index, first.result, first.err
}

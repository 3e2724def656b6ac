/*
Package promise provides a future value which settles exactly once

A Future is either resolved with a value or rejected with an error. Settling a
future a second time is a no-op, which makes it safe to hand resolve and reject
to code that may call both.

The package does not schedule anything itself. New runs the resolver on the
calling goroutine, Go runs a function on a new goroutine, and Then waits for
its source future on a goroutine of its own unless the source is already settled.
*/
package promise

import (
	"context"
	"errors"
	"sync"
)

// ErrNilCallback is returned by Then if no success callback was given
var ErrNilCallback = errors.New("promise: nil success callback")

// Future is a value which becomes available at some point in the future
type Future[T any] struct {
	done  chan struct{}
	once  sync.Once
	value T
	err   error
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

func (f *Future[T]) settle(value T, err error) {
	f.once.Do(func() {
		f.value = value
		f.err = err
		close(f.done)
	})
}

// New creates a future and calls resolver synchronously with functions to settle it.
// Only the first call to resolve or reject has an effect.
func New[T any](resolver func(resolve func(T), reject func(error))) *Future[T] {
	f := newFuture[T]()
	resolver(
		func(value T) { f.settle(value, nil) },
		func(err error) {
			var zero T
			f.settle(zero, err)
		},
	)
	return f
}

// Resolved returns a future which is already resolved with value
func Resolved[T any](value T) *Future[T] {
	f := newFuture[T]()
	f.settle(value, nil)
	return f
}

// Rejected returns a future which is already rejected with err
func Rejected[T any](err error) *Future[T] {
	f := newFuture[T]()
	var zero T
	f.settle(zero, err)
	return f
}

// Go runs fn on a new goroutine and returns a future for its result
func Go[T any](fn func() (T, error)) *Future[T] {
	f := newFuture[T]()
	go func() {
		f.settle(fn())
	}()
	return f
}

// Done returns a channel which is closed once the future has settled
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Settled returns true if the future is resolved or rejected
func (f *Future[T]) Settled() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Await blocks until the future has settled or ctx is done. Giving up on ctx does
// not cancel the work behind the future.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Wait blocks until the future has settled
func (f *Future[T]) Wait() (T, error) {
	<-f.done
	return f.value, f.err
}

// Then returns a future for the result of onSuccess or onFailure, whichever applies
// once f settles. A nil onFailure passes the rejection through unchanged.
func Then[T, U any](f *Future[T], onSuccess func(T) (U, error), onFailure func(error) (U, error)) *Future[U] {
	if onSuccess == nil {
		return Rejected[U](ErrNilCallback)
	}
	next := newFuture[U]()
	chain := func() {
		if f.err != nil {
			if onFailure == nil {
				var zero U
				next.settle(zero, f.err)
				return
			}
			next.settle(onFailure(f.err))
			return
		}
		next.settle(onSuccess(f.value))
	}
	if f.Settled() {
		chain()
		return next
	}
	go func() {
		<-f.done
		chain()
	}()
	return next
}

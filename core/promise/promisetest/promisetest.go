/*
Package promisetest provides controllable futures for unit tests

A Mock is a function double returning a pending future. The future settles only
when the test calls Flush, which lets a test inspect the state between issuing
a request and receiving its response.

	m := promisetest.NewMock(promisetest.Value(42))
	f := m.Call("arg")
	// f is pending here
	m.Flush()
	v, _ := f.Wait() // 42
*/
package promisetest

import (
	"reflect"
	"sync"

	"github.com/relabs-tech/utilities/core/promise"
)

// Result is what a mock resolves with: either a fixed value or a producer
// which computes the value from the arguments of the call.
type Result[T any] struct {
	value    T
	producer func(args ...interface{}) T
}

// Value returns a result which always resolves with v
func Value[T any](v T) Result[T] {
	return Result[T]{value: v}
}

// Producer returns a result which resolves with whatever fn returns for the call arguments
func Producer[T any](fn func(args ...interface{}) T) Result[T] {
	return Result[T]{producer: fn}
}

func (r Result[T]) produce(args []interface{}) T {
	if r.producer != nil {
		return r.producer(args...)
	}
	return r.value
}

// Flusher is anything that can be flushed
type Flusher interface {
	Flush()
}

type request[T any] struct {
	future  *promise.Future[T]
	resolve func(T)
	reject  func(error)
	args    []interface{}
}

// Mock is a spy returning pending futures
type Mock[T any] struct {
	mu        sync.Mutex
	result    Result[T]
	rejected  bool
	rejectErr error
	pending   *request[T]
	calls     [][]interface{}
}

// NewMock returns a mock which resolves with result when flushed
func NewMock[T any](result Result[T]) *Mock[T] {
	return &Mock[T]{result: result}
}

// NewRejectedMock returns a mock which rejects with err when flushed
func NewRejectedMock[T any](err error) *Mock[T] {
	return &Mock[T]{rejected: true, rejectErr: err}
}

// Call records the call and returns the pending future. Calls made before the
// next Flush share the same future and the arguments of the first of them.
func (m *Mock[T]) Call(args ...interface{}) *promise.Future[T] {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, args)
	if m.pending != nil {
		return m.pending.future
	}
	req := &request[T]{args: args}
	req.future = promise.New(func(resolve func(T), reject func(error)) {
		req.resolve = resolve
		req.reject = reject
	})
	m.pending = req
	return req.future
}

// Reject makes the mock reject with err on the next Flush
func (m *Mock[T]) Reject(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rejected = true
	m.rejectErr = err
}

// Rejected returns true if the mock rejects when flushed
func (m *Mock[T]) Rejected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rejected
}

// Flush settles the pending future, if any
func (m *Mock[T]) Flush() {
	m.mu.Lock()
	req := m.pending
	m.pending = nil
	rejected, rejectErr, result := m.rejected, m.rejectErr, m.result
	m.mu.Unlock()

	if req == nil {
		return
	}
	if rejected {
		req.reject(rejectErr)
		return
	}
	req.resolve(result.produce(req.args))
}

// CallCount returns how often the mock has been called
func (m *Mock[T]) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// Calls returns the arguments of all calls in order
func (m *Mock[T]) Calls() [][]interface{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]interface{}{}, m.calls...)
}

// CalledWith returns true if at least one call had exactly args
func (m *Mock[T]) CalledWith(args ...interface{}) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, call := range m.calls {
		if len(call) == 0 && len(args) == 0 {
			return true
		}
		if reflect.DeepEqual(call, args) {
			return true
		}
	}
	return false
}

// FlushAll flushes all given flushers
func FlushAll(flushers ...Flusher) {
	for _, f := range flushers {
		if f != nil {
			f.Flush()
		}
	}
}

// Package future provides a single-assignment asynchronous result. A Future settles exactly once, either
// resolved with a value or rejected with an error, and every later observation sees that same outcome.
package future

import (
	"context"
	"errors"
	"sync"
)

var ErrNotSettled = errors.New("future not settled")

type Future[T any] struct {
	once  sync.Once
	done  chan struct{}
	value T
	err   error
}

func New[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// Returns an already resolved future
func Resolved[T any](value T) *Future[T] {
	f := New[T]()
	f.Resolve(value)
	return f
}

// Returns an already rejected future
func Rejected[T any](err error) *Future[T] {
	f := New[T]()
	f.Reject(err)
	return f
}

// Resolves the future. Returns false if it was already settled.
func (f *Future[T]) Resolve(value T) bool {
	settled := false
	f.once.Do(func() {
		f.value = value
		close(f.done)
		settled = true
	})
	return settled
}

// Rejects the future. Returns false if it was already settled. A nil error is not a rejection and is ignored.
func (f *Future[T]) Reject(err error) bool {
	if err == nil {
		return false
	}
	settled := false
	f.once.Do(func() {
		f.err = err
		close(f.done)
		settled = true
	})
	return settled
}

// Done is closed once the future settles
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

func (f *Future[T]) IsSettled() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Returns the outcome without blocking, or ErrNotSettled
func (f *Future[T]) Result() (T, error) {
	if !f.IsSettled() {
		var zero T
		return zero, ErrNotSettled
	}
	return f.value, f.err
}

// Blocks until the future settles or the context is done
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

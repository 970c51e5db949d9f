package future

import (
	"context"
	"errors"
	"sync"
)

// ErrAlreadyResolved is returned when a future is resolved more than once
var ErrAlreadyResolved = errors.New("future already resolved")

// Future is a single-assignment result slot. The first Resolve or Reject wins,
// later attempts return ErrAlreadyResolved and leave the value untouched.
type Future[T any] struct {
	once  sync.Once
	done  chan struct{}
	value T
	err   error
}

// New creates an unresolved future
func New[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// Resolve sets a successful value
func (f *Future[T]) Resolve(value T) error {
	return f.complete(value, nil)
}

// Reject sets a failure
func (f *Future[T]) Reject(err error) error {
	var zero T
	return f.complete(zero, err)
}

func (f *Future[T]) complete(value T, err error) error {
	resolved := false
	f.once.Do(func() {
		f.value = value
		f.err = err
		resolved = true
		close(f.done)
	})
	if !resolved {
		return ErrAlreadyResolved
	}
	return nil
}

// Await blocks until the future resolves or ctx is done
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

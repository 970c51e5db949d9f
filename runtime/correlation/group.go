package correlation

import (
	"context"
	"sync"
	"time"

	"github.com/viant/storyflow/internal/clock"
)

// Group represents a rendez-vous for a fixed set of asynchronous members
// emitted by one step. The group completes once every member reported. Every
// member owns a slot so outputs keep the launch order regardless of completion order.
type Group[T any] struct {
	ID       string
	Expected int

	mu        sync.Mutex
	completed int
	failed    int
	reported  []bool
	outputs   []T
	errs      []error
	doneAt    *time.Time
	done      chan struct{}
}

// NewGroup creates a group expecting the given number of members
func NewGroup[T any](id string, expected int) *Group[T] {
	g := &Group[T]{
		ID:       id,
		Expected: expected,
		reported: make([]bool, expected),
		outputs:  make([]T, expected),
		errs:     make([]error, expected),
		done:     make(chan struct{}),
	}
	if expected == 0 {
		g.finish()
	}
	return g
}

// MarkDone registers the result of member index and returns true when the
// rendez-vous condition has just been satisfied. Repeated or out-of-range
// reports are ignored.
func (g *Group[T]) MarkDone(index int, output T, err error) (groupComplete bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if index < 0 || index >= g.Expected || g.reported[index] {
		return false
	}
	g.reported[index] = true
	g.completed++
	if err != nil {
		g.failed++
		g.errs[index] = err
	} else {
		g.outputs[index] = output
	}
	if g.doneAt != nil {
		return false
	}
	if g.completed >= g.Expected {
		g.finish()
		return true
	}
	return false
}

func (g *Group[T]) finish() {
	now := clock.Now()
	g.doneAt = &now
	close(g.done)
}

// Wait blocks until the group completes or ctx is done
func (g *Group[T]) Wait(ctx context.Context) error {
	select {
	case <-g.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done returns whether the group has completed.
func (g *Group[T]) Done() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.doneAt != nil
}

// Failed returns true when at least one member reported failure.
func (g *Group[T]) Failed() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.failed > 0
}

// Errors returns member errors in slot order, skipping successful members
func (g *Group[T]) Errors() []error {
	g.mu.Lock()
	defer g.mu.Unlock()
	var result []error
	for _, err := range g.errs {
		if err != nil {
			result = append(result, err)
		}
	}
	return result
}

// Outputs returns member outputs in slot order
func (g *Group[T]) Outputs() []T {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]T(nil), g.outputs...)
}

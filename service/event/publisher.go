package event

import (
	"context"
	"fmt"

	"github.com/viant/storyflow/internal/clock"
	"github.com/viant/storyflow/service/messaging"
)

// Publisher publishes typed events onto a queue
type Publisher[T any] struct {
	queue messaging.Queue[Event[T]]
}

func NewPublisher[T any](queue messaging.Queue[Event[T]]) *Publisher[T] {
	return &Publisher[T]{
		queue: queue,
	}
}

// Queue returns underlying queue
func (p *Publisher[T]) Queue() messaging.Queue[Event[T]] {
	return p.queue
}

func (p *Publisher[T]) Publish(ctx context.Context, event *Event[T]) error {
	if event == nil {
		return fmt.Errorf("event was nil")
	}
	event.CreatedAt = clock.Now()
	return p.queue.Publish(ctx, event)
}

// Consume returns the next event and acknowledges it
func (p *Publisher[T]) Consume(ctx context.Context) (*Event[T], error) {
	msg, err := p.queue.Consume(ctx)
	if err != nil || msg == nil {
		return nil, err
	}
	if err = msg.Ack(); err != nil {
		return nil, err
	}
	return msg.T(), nil
}

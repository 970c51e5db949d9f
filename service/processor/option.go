package processor

import (
	"log/slog"

	"github.com/viant/storyflow/service/messaging"
)

// Option customises processor service
type Option[T any] func(*Service[T])

// WithMessageQueue sets the message queue implementation
func WithMessageQueue[T any](queue messaging.Queue[T]) Option[T] {
	return func(s *Service[T]) {
		s.queue = queue
	}
}

// WithHandler sets the message handler
func WithHandler[T any](handler Handler[T]) Option[T] {
	return func(s *Service[T]) {
		s.handler = handler
	}
}

// WithWorkers sets the number of worker goroutines
func WithWorkers[T any](count int) Option[T] {
	return func(s *Service[T]) {
		s.config.WorkerCount = count
	}
}

// WithLogger sets the logger
func WithLogger[T any](logger *slog.Logger) Option[T] {
	return func(s *Service[T]) {
		s.logger = logger
	}
}

// WithConfig sets the configuration for the service
func WithConfig[T any](config Config) Option[T] {
	return func(s *Service[T]) {
		s.config = config
	}
}

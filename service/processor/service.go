package processor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/viant/storyflow/service/messaging"
)

// Handler processes a single message payload
type Handler[T any] func(ctx context.Context, t *T) error

// Config represents processor configuration
type Config struct {
	// WorkerCount is the number of workers consuming the queue
	WorkerCount int

	// ErrorDelay is the back-off after a consume error
	ErrorDelay time.Duration
}

// DefaultConfig returns the default processor configuration
func DefaultConfig() Config {
	return Config{
		WorkerCount: 4,
		ErrorDelay:  100 * time.Millisecond,
	}
}

// Service drains queue into handler
type Service[T any] struct {
	config  Config
	queue   messaging.Queue[T]
	handler Handler[T]
	logger  *slog.Logger

	mu       sync.Mutex
	workers  []*worker[T]
	workerWg sync.WaitGroup
}

type worker[T any] struct {
	id       int
	service  *Service[T]
	ctx      context.Context
	cancelFn context.CancelFunc
}

// New creates a processor service
func New[T any](options ...Option[T]) (*Service[T], error) {
	s := &Service[T]{config: DefaultConfig()}
	for _, opt := range options {
		opt(s)
	}
	if s.queue == nil {
		return nil, fmt.Errorf("message queue is required")
	}
	if s.handler == nil {
		return nil, fmt.Errorf("handler is required")
	}
	if s.config.WorkerCount <= 0 {
		return nil, fmt.Errorf("worker count must be > 0")
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s, nil
}

// Start launches worker goroutines
func (s *Service[T]) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.workers) > 0 {
		return fmt.Errorf("processor already started")
	}
	for i := 0; i < s.config.WorkerCount; i++ {
		workerCtx, cancel := context.WithCancel(ctx)
		w := &worker[T]{id: i, service: s, ctx: workerCtx, cancelFn: cancel}
		s.workers = append(s.workers, w)
		s.workerWg.Add(1)
		go w.run()
	}
	return nil
}

// Run starts workers and blocks until ctx is done
func (s *Service[T]) Run(ctx context.Context) error {
	if err := s.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	s.Shutdown()
	return nil
}

// Shutdown stops workers and waits for in-flight messages
func (s *Service[T]) Shutdown() {
	s.mu.Lock()
	workers := s.workers
	s.workers = nil
	s.mu.Unlock()
	for _, w := range workers {
		w.cancelFn()
	}
	s.workerWg.Wait()
}

func (w *worker[T]) run() {
	defer w.service.workerWg.Done()
	for {
		msg, err := w.service.queue.Consume(w.ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || w.ctx.Err() != nil {
				return
			}
			w.service.logger.Warn("failed to consume message", "worker", w.id, "error", err)
			time.Sleep(w.service.config.ErrorDelay)
			continue
		}
		if msg == nil {
			continue
		}
		if pErr := w.service.process(w.ctx, msg); pErr != nil {
			w.service.logger.Error("failed to process message", "worker", w.id, "error", pErr)
		}
	}
}

func (s *Service[T]) process(ctx context.Context, msg messaging.Message[T]) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
		if err != nil {
			if nErr := msg.Nack(err); nErr != nil {
				err = fmt.Errorf("%w, and failed to nack: %v", err, nErr)
			}
			return
		}
		err = msg.Ack()
	}()
	return s.handler(ctx, msg.T())
}

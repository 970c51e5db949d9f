package router

import (
	"github.com/viant/storyflow/progress"
	"github.com/viant/storyflow/service/tasklog"
)

// Option customises router
type Option func(s *Service)

// WithLogger sets task logger
func WithLogger(logger *tasklog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithProgress sets routing counters
func WithProgress(tracker *progress.Progress) Option {
	return func(s *Service) {
		s.progress = tracker
	}
}

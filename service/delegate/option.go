package delegate

import (
	"time"

	"github.com/viant/storyflow/service/tasklog"
)

// Option customises delegate service
type Option func(s *Service)

// WithTimeout limits how long a delegate waits for the task outcome, zero waits until ctx is done
func WithTimeout(timeout time.Duration) Option {
	return func(s *Service) {
		s.timeout = timeout
	}
}

// WithLabel sets the agent label used in diagnostics
func WithLabel(label string) Option {
	return func(s *Service) {
		s.label = label
	}
}

// WithLogger sets task logger
func WithLogger(logger *tasklog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

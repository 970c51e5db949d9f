package local

import (
	"log/slog"

	"github.com/viant/storyflow/model"
	"github.com/viant/storyflow/service/dao/step"
	"github.com/viant/storyflow/service/dao/task"
	"github.com/viant/storyflow/service/event"
	"github.com/viant/storyflow/service/messaging"
)

// Option customises the hub
type Option func(h *Hub)

// WithStepDAO sets the step store
func WithStepDAO(dao step.DAO) Option {
	return func(h *Hub) {
		h.steps = dao
	}
}

// WithTaskDAO sets the task store
func WithTaskDAO(dao task.DAO) Option {
	return func(h *Hub) {
		h.tasks = dao
	}
}

// WithQueue sets the step notification queue
func WithQueue(queue messaging.Queue[event.Event[model.StepEvent]]) Option {
	return func(h *Hub) {
		h.queue = queue
	}
}

// WithAgent registers an agent under did
func WithAgent(did string, agent Agent) Option {
	return func(h *Hub) {
		h.agents[did] = agent
	}
}

// WithWorkers sets the number of notification workers used by Subscribe
func WithWorkers(workers int) Option {
	return func(h *Hub) {
		h.workers = workers
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(h *Hub) {
		h.logger = logger
	}
}

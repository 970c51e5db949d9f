package event

import (
	"github.com/viant/storyflow/internal/clock"
	"time"
)

// Event types
const (
	TypeStepReady    = "step.ready"
	TypeStepReplayed = "step.replayed"
)

// Context describes the origin of an event
type Context struct {
	TaskID    string `json:"taskID"`
	StepID    string `json:"stepID,omitempty"`
	EventType string `json:"eventType"`
	Source    string `json:"source,omitempty"`
}

// Event is a typed envelope published on a queue
type Event[T any] struct {
	Context   *Context               `json:"context"`
	CreatedAt time.Time              `json:"createdAt"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Data      T                      `json:"data"`
}

func NewEvent[T any](context *Context, data T) *Event[T] {
	return &Event[T]{
		Context:   context,
		CreatedAt: clock.Now(),
		Metadata:  make(map[string]interface{}),
		Data:      data,
	}
}

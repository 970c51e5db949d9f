package idgen

import "github.com/google/uuid"

const (
	stepPrefix = "step-"
	taskPrefix = "task-"
)

// NewFunc returns a new globally unique identifier as string. It is
// implemented as a variable so tests can stub it.
var NewFunc = func() string { return uuid.New().String() }

func New() string { return NewFunc() }

// NewStepID returns a step identifier
func NewStepID() string { return stepPrefix + NewFunc() }

// NewTaskID returns a task identifier
func NewTaskID() string { return taskPrefix + NewFunc() }

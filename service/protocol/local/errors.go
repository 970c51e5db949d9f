package local

import "errors"

var (
	// ErrTaskMismatch is returned when a step is addressed with a foreign task id
	ErrTaskMismatch = errors.New("step does not belong to task")
	// ErrAgentMismatch is returned when a task is read on behalf of another agent
	ErrAgentMismatch = errors.New("task does not belong to agent")
)

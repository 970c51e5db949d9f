package delegate

import "errors"

var (
	// ErrTaskRejected is returned when the agent refused to create a task
	ErrTaskRejected = errors.New("task rejected")
	// ErrTaskFailed is returned when the agent reported task failure
	ErrTaskFailed = errors.New("sub-agent task failed")
)

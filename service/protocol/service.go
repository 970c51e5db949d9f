// Package protocol defines the agent protocol operations consumed by the
// orchestrator: step records, sub-agent tasks, task logs and step update
// notifications.
package protocol

import (
	"context"
	"net/http"

	"github.com/viant/storyflow/model"
)

// TaskCallback receives sub-agent task progress events, in emission order
type TaskCallback func(ctx context.Context, event *model.TaskEvent)

// StepHandler receives step update notifications
type StepHandler func(ctx context.Context, event *model.StepEvent)

// CreationResult represents the immediate outcome of a task creation request
type CreationResult struct {
	StatusCode int         `json:"status_code"`
	Data       interface{} `json:"data,omitempty"`
}

// Accepted returns true when the remote side created the task
func (r *CreationResult) Accepted() bool {
	return r != nil && r.StatusCode == http.StatusCreated
}

// SubscribeOptions filters step notifications
type SubscribeOptions struct {
	// Did restricts notifications to one agent
	Did string
	// StepNames restricts notifications to listed step names, empty means all
	StepNames []model.StepName
}

// Matches returns true if the step passes the filter
func (o *SubscribeOptions) Matches(step *model.Step) bool {
	if o == nil || step == nil {
		return true
	}
	if o.Did != "" && step.Did != "" && o.Did != step.Did {
		return false
	}
	if len(o.StepNames) == 0 {
		return true
	}
	for _, name := range o.StepNames {
		if name == step.Name {
			return true
		}
	}
	return false
}

// Service represents protocol operations used by the orchestrator
type Service interface {
	// Subscribe delivers step notifications to handler until ctx is done, delivery is at-least-once
	Subscribe(ctx context.Context, handler StepHandler, options *SubscribeOptions) error

	GetStep(ctx context.Context, stepID string) (*model.Step, error)

	// CreateSteps creates steps in one batch
	CreateSteps(ctx context.Context, did, taskID string, steps []*model.Step) error

	UpdateStep(ctx context.Context, did, taskID, stepID string, update *model.StepUpdate) error

	// CreateTask requests a sub-agent task, callback is invoked asynchronously zero or more times
	CreateTask(ctx context.Context, agentDid string, request *model.TaskRequest, callback TaskCallback) (*CreationResult, error)

	GetTaskWithSteps(ctx context.Context, agentDid, taskID string) (*model.TaskWithSteps, error)

	// LogTask records an observability entry against a task
	LogTask(ctx context.Context, entry *model.TaskLog) error
}

package local

import (
	"context"

	"github.com/viant/storyflow/model"
)

// Result represents sub-agent task output
type Result struct {
	Output    string
	Artifacts []interface{}
}

// Agent executes sub-agent tasks
type Agent interface {
	Execute(ctx context.Context, request *model.TaskRequest) (*Result, error)
}

// AgentFunc adapts a function to Agent
type AgentFunc func(ctx context.Context, request *model.TaskRequest) (*Result, error)

// Execute runs the function
func (f AgentFunc) Execute(ctx context.Context, request *model.TaskRequest) (*Result, error) {
	return f(ctx, request)
}

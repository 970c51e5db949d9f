// Package delegate creates one sub-agent task and waits for its artifacts.
package delegate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/viant/storyflow/model"
	"github.com/viant/storyflow/runtime/future"
	"github.com/viant/storyflow/service/protocol"
	"github.com/viant/storyflow/service/tasklog"
	"github.com/viant/storyflow/service/validator"
	"github.com/viant/storyflow/tracing"
)

// Service delegates prompts to an agent
type Service struct {
	protocol  protocol.Service
	validator *validator.Service
	logger    *tasklog.Logger
	label     string
	timeout   time.Duration
}

// New creates a delegate service
func New(protocol protocol.Service, validator *validator.Service, options ...Option) *Service {
	s := &Service{protocol: protocol, validator: validator, label: "agent"}
	for _, opt := range options {
		opt(s)
	}
	if s.logger == nil {
		s.logger = tasklog.New(nil, protocol)
	}
	return s
}

// Delegate creates a task for prompt on behalf of step and returns its validated artifacts.
// Rejected creation fails immediately; only the first terminal event settles the outcome.
func (s *Service) Delegate(ctx context.Context, agentDid, prompt string, step *model.Step) (artifacts []interface{}, err error) {
	ctx, span := tracing.StartSpan(ctx, "storyflow.delegate", tracing.KindClient)
	span.WithAttributes(map[string]string{"agent_did": agentDid, "step_id": step.StepID, "task_id": step.TaskID})
	defer func() { tracing.EndSpan(span, err) }()

	pending := future.New[[]interface{}]()
	callback := func(ctx context.Context, event *model.TaskEvent) {
		var rErr error
		switch event.Status {
		case model.StatusCompleted:
			validated, vErr := s.validator.ValidateImageTask(ctx, agentDid, event.TaskID)
			if vErr != nil {
				rErr = pending.Reject(vErr)
			} else {
				rErr = pending.Resolve(validated)
			}
		case model.StatusFailed:
			s.logger.Log(ctx, &model.TaskLog{TaskID: step.TaskID, Level: model.LogLevelError, Message: event.Message, Status: model.StatusFailed}, "sub_task_id", event.TaskID)
			rErr = pending.Reject(fmt.Errorf("%w: %v", ErrTaskFailed, event.TaskID))
		default:
			s.logger.Info(ctx, step.TaskID, event.Message, "sub_task_id", event.TaskID)
		}
		if errors.Is(rErr, future.ErrAlreadyResolved) {
			s.logger.Slog().Warn("ignoring terminal event of settled task", "sub_task_id", event.TaskID, "task_status", event.Status)
		}
	}
	result, err := s.protocol.CreateTask(ctx, agentDid, model.NewTaskRequest(prompt, step.Name), callback)
	if err != nil {
		return nil, fmt.Errorf("failed to create task for %v: %w", s.label, err)
	}
	span.SetStatusFromHTTPCode(result.StatusCode)
	if !result.Accepted() {
		return nil, fmt.Errorf("%w: error creating task for %v: %v", ErrTaskRejected, s.label, result.Data)
	}
	waitCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	if artifacts, err = pending.Await(waitCtx); err != nil {
		return nil, fmt.Errorf("%v task failed: %w", s.label, err)
	}
	return artifacts, nil
}

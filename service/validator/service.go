// Package validator reads finished sub-agent tasks and turns them into step
// results.
package validator

import (
	"context"
	"fmt"

	"github.com/viant/storyflow/model"
	"github.com/viant/storyflow/service/protocol"
	"github.com/viant/storyflow/service/tasklog"
)

// FallbackOutput is written when an unsuccessful task carries no output
const FallbackOutput = "Error during task execution"

// Service validates sub-agent tasks
type Service struct {
	protocol protocol.Service
	logger   *tasklog.Logger
}

// New creates a validator
func New(protocol protocol.Service, logger *tasklog.Logger) *Service {
	if logger == nil {
		logger = tasklog.New(nil, protocol)
	}
	return &Service{protocol: protocol, logger: logger}
}

// ValidateGeneric copies task outcome onto the parent step, any task status
// other than Completed fails the step.
func (s *Service) ValidateGeneric(ctx context.Context, taskID, agentDid string, parent *model.Step) error {
	record, err := s.task(ctx, agentDid, taskID)
	if err != nil {
		return err
	}
	status := model.StatusFailed
	if record.Task.Status == model.StatusCompleted {
		status = model.StatusCompleted
	}
	output := record.Task.Output
	if output == "" && status != model.StatusCompleted {
		output = FallbackOutput
	}
	artifacts := record.Task.OutputArtifacts
	if artifacts == nil {
		artifacts = []interface{}{}
	}
	if err = s.protocol.UpdateStep(ctx, parent.Did, parent.TaskID, parent.StepID, model.NewStepUpdate(status, output, artifacts)); err != nil {
		return fmt.Errorf("failed to update step %v: %w", parent.StepID, err)
	}
	s.logger.Slog().Debug("step validated", "step_id", parent.StepID, "sub_task_id", taskID, "step_status", status)
	return nil
}

// ValidateImageTask returns output artifacts of a finished image task
func (s *Service) ValidateImageTask(ctx context.Context, agentDid, taskID string) ([]interface{}, error) {
	record, err := s.task(ctx, agentDid, taskID)
	if err != nil {
		return nil, err
	}
	if record.Task.OutputArtifacts == nil {
		return []interface{}{}, nil
	}
	return record.Task.OutputArtifacts, nil
}

func (s *Service) task(ctx context.Context, agentDid, taskID string) (*model.TaskWithSteps, error) {
	record, err := s.protocol.GetTaskWithSteps(ctx, agentDid, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to get task %v: %w", taskID, err)
	}
	if record == nil || record.Task == nil {
		return nil, fmt.Errorf("task %v was empty", taskID)
	}
	return record, nil
}

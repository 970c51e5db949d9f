package handler

import (
	"context"
	"fmt"

	"github.com/viant/storyflow/internal/idgen"
	"github.com/viant/storyflow/model"
	"github.com/viant/storyflow/service/protocol"
	"github.com/viant/storyflow/service/tasklog"
)

// Init materializes the workflow plan after the init step
type Init struct {
	protocol protocol.Service
	logger   *tasklog.Logger
	plan     *model.WorkflowPlan
	newID    func() string
}

// NewInit creates init handler, nil plan uses the default plan
func NewInit(protocol protocol.Service, logger *tasklog.Logger, plan *model.WorkflowPlan) *Init {
	if plan == nil {
		plan = model.DefaultPlan()
	}
	return &Init{protocol: protocol, logger: logger, plan: plan, newID: idgen.NewStepID}
}

// Handle creates successor steps in one batch and completes the init step with its query
func (h *Init) Handle(ctx context.Context, step *model.Step) error {
	steps := h.plan.Materialize(step, h.newID)
	if err := h.protocol.CreateSteps(ctx, step.Did, step.TaskID, steps); err != nil {
		return fmt.Errorf("failed to create steps for task %v: %w", step.TaskID, err)
	}
	h.logger.Info(ctx, step.TaskID, MessageStepsCreated, "steps", len(steps))
	update := model.NewStepUpdate(model.StatusCompleted, step.InputQuery, nil)
	if err := h.protocol.UpdateStep(ctx, step.Did, step.TaskID, step.StepID, update); err != nil {
		return fmt.Errorf("failed to complete step %v: %w", step.StepID, err)
	}
	return nil
}

package handler

import (
	"context"
	"fmt"

	"github.com/viant/storyflow/model"
	"github.com/viant/storyflow/runtime/correlation"
	"github.com/viant/storyflow/service/payments"
	"github.com/viant/storyflow/service/protocol"
	"github.com/viant/storyflow/service/tasklog"
	"github.com/viant/storyflow/service/validator"
)

// Agent delegates a step to a single sub-agent
type Agent struct {
	protocol  protocol.Service
	gate      *payments.Gate
	validator *validator.Service
	logger    *tasklog.Logger
	agentDid  string
	label     string
	planDid   string
	running   *correlation.Store[string]
}

// NewAgent creates a single sub-agent handler
func NewAgent(protocol protocol.Service, gate *payments.Gate, validator *validator.Service, logger *tasklog.Logger, agentDid, label, planDid string) *Agent {
	return &Agent{
		protocol:  protocol,
		gate:      gate,
		validator: validator,
		logger:    logger,
		agentDid:  agentDid,
		label:     label,
		planDid:   planDid,
		running:   correlation.NewStore[string](),
	}
}

// Handle creates the sub-agent task, the step is finalized by the task callback.
// Without plan credit the step is left pending. While a sub-task runs for the
// step, further notifications for it are ignored.
func (h *Agent) Handle(ctx context.Context, step *model.Step) error {
	group, created := h.running.Create(correlation.NewGroup[string](step.StepID, 1))
	if !created {
		h.logger.Slog().Warn("duplicate notification for step with running task", "step_id", step.StepID, "task_id", step.TaskID)
		return nil
	}
	ok, err := h.gate.Ensure(ctx, h.planDid, 1)
	if err != nil {
		h.running.Delete(group.ID)
		return err
	}
	if !ok {
		h.running.Delete(group.ID)
		h.logger.Warning(ctx, step.TaskID, fmt.Sprintf("Insufficient balance for %v, step left pending.", h.label), "step_id", step.StepID)
		return nil
	}
	parent := step.Clone()
	callback := func(ctx context.Context, event *model.TaskEvent) {
		switch event.Status {
		case model.StatusCompleted, model.StatusFailed:
			if !group.MarkDone(0, event.TaskID, nil) {
				h.logger.Slog().Warn("ignoring repeated terminal event", "step_id", parent.StepID, "sub_task_id", event.TaskID)
				return
			}
			defer h.running.Delete(group.ID)
			if vErr := h.validator.ValidateGeneric(ctx, event.TaskID, h.agentDid, parent); vErr != nil {
				h.logger.Log(ctx, &model.TaskLog{TaskID: parent.TaskID, Level: model.LogLevelError, Message: vErr.Error(), Status: model.StatusFailed})
			}
		default:
			h.logger.Info(ctx, parent.TaskID, event.Message, "sub_task_id", event.TaskID)
		}
	}
	result, err := h.protocol.CreateTask(ctx, h.agentDid, model.NewTaskRequest(step.InputQuery, step.Name), callback)
	if err != nil {
		h.running.Delete(group.ID)
		return h.fail(ctx, step, fmt.Sprintf("Error creating task for %v: %v", h.label, err))
	}
	if !result.Accepted() {
		h.running.Delete(group.ID)
		return h.fail(ctx, step, fmt.Sprintf("Error creating task for %v: %v", h.label, result.Data))
	}
	h.logger.Info(ctx, step.TaskID, MessageTaskCreated, "step_id", step.StepID)
	return nil
}

func (h *Agent) fail(ctx context.Context, step *model.Step, message string) error {
	h.logger.Log(ctx, &model.TaskLog{TaskID: step.TaskID, Level: model.LogLevelError, Message: message, Status: model.StatusFailed})
	if err := h.protocol.UpdateStep(ctx, step.Did, step.TaskID, step.StepID, model.NewStepUpdate(model.StatusFailed, message, nil)); err != nil {
		return fmt.Errorf("failed to fail step %v: %w", step.StepID, err)
	}
	return nil
}

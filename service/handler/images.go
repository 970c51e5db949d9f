package handler

import (
	"context"
	"errors"
	"fmt"

	"github.com/viant/storyflow/model"
	"github.com/viant/storyflow/runtime/correlation"
	"github.com/viant/storyflow/service/delegate"
	"github.com/viant/storyflow/service/payments"
	"github.com/viant/storyflow/service/protocol"
	"github.com/viant/storyflow/service/tasklog"
)

var errInFlight = errors.New("step fan-out already in flight")

// Images generates one image per character and joins the results
type Images struct {
	protocol protocol.Service
	gate     *payments.Gate
	delegate *delegate.Service
	logger   *tasklog.Logger
	agentDid string
	planDid  string
	groups   *correlation.Store[[]interface{}]
}

// NewImages creates the fan-out handler
func NewImages(protocol protocol.Service, gate *payments.Gate, delegate *delegate.Service, logger *tasklog.Logger, agentDid, planDid string) *Images {
	return &Images{
		protocol: protocol,
		gate:     gate,
		delegate: delegate,
		logger:   logger,
		agentDid: agentDid,
		planDid:  planDid,
		groups:   correlation.NewStore[[]interface{}](),
	}
}

// Handle completes the step only when every image task succeeded, any failure fails the whole step
func (h *Images) Handle(ctx context.Context, step *model.Step) error {
	artifacts, err := h.generate(ctx, step)
	if errors.Is(err, errInFlight) {
		h.logger.Slog().Warn("duplicate notification for in-flight step", "step_id", step.StepID)
		return nil
	}
	if err != nil {
		if uErr := h.protocol.UpdateStep(ctx, step.Did, step.TaskID, step.StepID, model.NewStepUpdate(model.StatusFailed, MessageImagesFailed, nil)); uErr != nil {
			err = errors.Join(err, uErr)
		}
		h.logger.Log(ctx, &model.TaskLog{TaskID: step.TaskID, Level: model.LogLevelError, Message: fmt.Sprintf("Error during image tasks: %v", err), Status: model.StatusFailed})
		return nil
	}
	h.logger.Log(ctx, &model.TaskLog{TaskID: step.TaskID, Level: model.LogLevelInfo, Message: MessageImagesCompleted, Status: model.StatusCompleted})
	if err = h.protocol.UpdateStep(ctx, step.Did, step.TaskID, step.StepID, model.NewStepUpdate(model.StatusCompleted, MessageImagesCompleted, artifacts)); err != nil {
		return fmt.Errorf("failed to complete step %v: %w", step.StepID, err)
	}
	return nil
}

func (h *Images) generate(ctx context.Context, step *model.Step) ([]interface{}, error) {
	characters, err := model.DecodeCharacters(step.InputArtifacts)
	if err != nil {
		return nil, err
	}
	group, created := h.groups.Create(correlation.NewGroup[[]interface{}](step.StepID, len(characters)))
	if !created {
		return nil, errInFlight
	}
	defer h.groups.Delete(group.ID)

	ok, err := h.gate.Ensure(ctx, h.planDid, len(characters))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInsufficientBalance
	}
	for i, character := range characters {
		go func(index int, name, prompt string) {
			artifacts, dErr := h.delegate.Delegate(ctx, h.agentDid, prompt, step)
			if dErr != nil {
				dErr = fmt.Errorf("image for %v: %w", name, dErr)
			}
			group.MarkDone(index, artifacts, dErr)
		}(i, character.Name(), character.Prompt())
	}
	if err = group.Wait(ctx); err != nil {
		return nil, fmt.Errorf("failed to wait for image tasks: %w", err)
	}
	if group.Failed() {
		return nil, errors.Join(group.Errors()...)
	}
	outputs := group.Outputs()
	result := make([]interface{}, 0, len(outputs))
	for _, artifacts := range outputs {
		result = append(result, artifacts)
	}
	return result, nil
}

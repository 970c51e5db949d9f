// Package router dispatches step notifications to step handlers. Only pending
// steps are dispatched; routing failures are logged and never reach the
// notification source.
package router

import (
	"context"
	"fmt"

	"github.com/viant/storyflow/model"
	"github.com/viant/storyflow/progress"
	"github.com/viant/storyflow/service/handler"
	"github.com/viant/storyflow/service/protocol"
	"github.com/viant/storyflow/service/tasklog"
	"github.com/viant/storyflow/tracing"
)

// Service routes step notifications
type Service struct {
	protocol protocol.Service
	handlers map[model.StepName]handler.Handler
	logger   *tasklog.Logger
	progress *progress.Progress
}

// New creates a router over a static handler table
func New(protocol protocol.Service, handlers map[model.StepName]handler.Handler, options ...Option) *Service {
	s := &Service{protocol: protocol, handlers: make(map[model.StepName]handler.Handler, len(handlers))}
	for name, h := range handlers {
		s.handlers[name] = h
	}
	for _, opt := range options {
		opt(s)
	}
	if s.logger == nil {
		s.logger = tasklog.New(nil, protocol)
	}
	if s.progress == nil {
		s.progress = progress.New(nil)
	}
	return s
}

// Progress returns routing counters
func (s *Service) Progress() *progress.Progress {
	return s.progress
}

// Route loads the notified step and dispatches it when pending
func (s *Service) Route(ctx context.Context, event *model.StepEvent) {
	if event == nil {
		return
	}
	ctx, span := tracing.StartSpan(ctx, "storyflow.route", tracing.KindConsumer)
	span.WithAttributes(map[string]string{"step_id": event.StepID, "task_id": event.TaskID})
	var err error
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("step %v handler panic: %v", event.StepID, r)
			s.logger.Slog().Error("recovered routing panic", "step_id", event.StepID, "error", err)
			s.progress.Update(progress.Delta{Failed: 1})
		}
		tracing.EndSpan(span, err)
	}()
	s.progress.Update(progress.Delta{Received: 1})
	s.logger.Slog().Info("received step event", "step_id", event.StepID, "task_id", event.TaskID)

	step, err := s.protocol.GetStep(ctx, event.StepID)
	if err != nil {
		s.logger.Slog().Error("failed to load step", "step_id", event.StepID, "error", err)
		s.progress.Update(progress.Delta{Failed: 1})
		return
	}
	span.WithAttributes(map[string]string{"step_name": step.Name.String(), "step_status": step.Status.String()})
	s.logger.Log(ctx, &model.TaskLog{
		TaskID:  step.TaskID,
		Level:   model.LogLevelInfo,
		Message: fmt.Sprintf("Processing Step %v [%v]: %v", step.StepID, step.Status, step.InputQuery),
		Status:  model.StatusPending,
	})
	if !step.Status.IsPending() {
		s.logger.Slog().Warn(fmt.Sprintf("%v :: Step %v is not pending. Skipping.", step.TaskID, step.StepID))
		s.progress.Update(progress.Delta{Skipped: 1})
		return
	}
	if !step.Name.Valid() {
		s.logger.Slog().Warn(fmt.Sprintf("Unrecognized step name: %v. Skipping.", step.Name), "step_id", step.StepID)
		s.progress.Update(progress.Delta{Unknown: 1})
		return
	}
	h, ok := s.handlers[step.Name]
	if !ok {
		s.logger.Slog().Warn(fmt.Sprintf("No handler registered for step %v. Skipping.", step.Name), "step_id", step.StepID)
		s.progress.Update(progress.Delta{Unknown: 1})
		return
	}
	s.progress.Update(progress.Delta{Dispatched: 1, Running: 1})
	defer s.progress.Update(progress.Delta{Running: -1})
	if err = h.Handle(ctx, step); err != nil {
		s.logger.Log(ctx, &model.TaskLog{TaskID: step.TaskID, Level: model.LogLevelError, Message: err.Error(), Status: model.StatusFailed}, "step_id", step.StepID)
		s.progress.Update(progress.Delta{Failed: 1})
	}
}

// Package local provides an in-process agent protocol hub. It stores steps and
// tasks, runs registered agents on their own goroutines and delivers step
// notifications through a queue, releasing a successor step once its
// predecessor completes.
package local

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/viant/storyflow/internal/clock"
	"github.com/viant/storyflow/internal/idgen"
	"github.com/viant/storyflow/model"
	"github.com/viant/storyflow/service/dao"
	"github.com/viant/storyflow/service/dao/step"
	stepmemory "github.com/viant/storyflow/service/dao/step/memory"
	"github.com/viant/storyflow/service/dao/task"
	taskmemory "github.com/viant/storyflow/service/dao/task/memory"
	"github.com/viant/storyflow/service/event"
	"github.com/viant/storyflow/service/messaging"
	"github.com/viant/storyflow/service/messaging/memory"
	"github.com/viant/storyflow/service/processor"
	"github.com/viant/storyflow/service/protocol"
)

const source = "local"

// Hub implements protocol.Service in process
type Hub struct {
	steps     step.DAO
	tasks     task.DAO
	queue     messaging.Queue[event.Event[model.StepEvent]]
	publisher *event.Publisher[model.StepEvent]
	workers   int
	logger    *slog.Logger

	mu     sync.RWMutex
	agents map[string]Agent
	logs   map[string][]*model.TaskLog

	stepMu  sync.Mutex
	running sync.WaitGroup
}

// New creates a hub, memory stores and queue are used unless overridden
func New(options ...Option) *Hub {
	h := &Hub{
		agents:  make(map[string]Agent),
		logs:    make(map[string][]*model.TaskLog),
		workers: 1,
	}
	for _, opt := range options {
		opt(h)
	}
	if h.steps == nil {
		h.steps = stepmemory.New()
	}
	if h.tasks == nil {
		h.tasks = taskmemory.New()
	}
	if h.queue == nil {
		h.queue = memory.NewQueue[event.Event[model.StepEvent]](memory.DefaultConfig())
	}
	if h.logger == nil {
		h.logger = slog.Default()
	}
	if h.workers <= 0 {
		h.workers = 1
	}
	h.publisher = event.NewPublisher[model.StepEvent](h.queue)
	return h
}

// RegisterAgent registers or replaces an agent
func (h *Hub) RegisterAgent(did string, agent Agent) {
	h.mu.Lock()
	h.agents[did] = agent
	h.mu.Unlock()
}

func (h *Hub) agent(did string) Agent {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.agents[did]
}

// SubmitTask creates a task for did with its init step and publishes the init step
func (h *Hub) SubmitTask(ctx context.Context, did, query string) (*model.Step, error) {
	now := clock.Now()
	aTask := &model.Task{
		TaskID:    idgen.NewTaskID(),
		AgentDid:  did,
		Name:      "storyboard",
		Query:     query,
		Status:    model.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.tasks.Save(ctx, aTask); err != nil {
		return nil, fmt.Errorf("failed to save task: %w", err)
	}
	initStep := &model.Step{
		StepID:     idgen.NewStepID(),
		TaskID:     aTask.TaskID,
		Did:        did,
		Name:       model.StepInit,
		Status:     model.StatusPending,
		InputQuery: query,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := h.steps.Save(ctx, initStep); err != nil {
		return nil, fmt.Errorf("failed to save init step: %w", err)
	}
	if err := h.publish(ctx, initStep, event.TypeStepReady); err != nil {
		return nil, err
	}
	return initStep, nil
}

// Deliver publishes a notification for an existing step again
func (h *Hub) Deliver(ctx context.Context, stepID string) error {
	aStep, err := h.GetStep(ctx, stepID)
	if err != nil {
		return err
	}
	return h.publish(ctx, aStep, event.TypeStepReplayed)
}

func (h *Hub) publish(ctx context.Context, aStep *model.Step, eventType string) error {
	anEvent := event.NewEvent(&event.Context{
		TaskID:    aStep.TaskID,
		StepID:    aStep.StepID,
		EventType: eventType,
		Source:    source,
	}, model.StepEvent{StepID: aStep.StepID, TaskID: aStep.TaskID, Did: aStep.Did})
	if err := h.publisher.Publish(ctx, anEvent); err != nil {
		return fmt.Errorf("failed to publish step %v: %w", aStep.StepID, err)
	}
	return nil
}

// Subscribe drains step notifications into handler until ctx is done
func (h *Hub) Subscribe(ctx context.Context, handler protocol.StepHandler, options *protocol.SubscribeOptions) error {
	if handler == nil {
		return fmt.Errorf("step handler was nil")
	}
	srv, err := processor.New[event.Event[model.StepEvent]](
		processor.WithMessageQueue[event.Event[model.StepEvent]](h.queue),
		processor.WithWorkers[event.Event[model.StepEvent]](h.workers),
		processor.WithLogger[event.Event[model.StepEvent]](h.logger),
		processor.WithHandler[event.Event[model.StepEvent]](func(ctx context.Context, anEvent *event.Event[model.StepEvent]) error {
			notification := anEvent.Data
			if options != nil {
				if aStep, err := h.steps.Load(ctx, notification.StepID); err == nil && !options.Matches(aStep) {
					return nil
				}
			}
			handler(ctx, &notification)
			return nil
		}),
	)
	if err != nil {
		return err
	}
	return srv.Run(ctx)
}

// GetStep returns a step by id
func (h *Hub) GetStep(ctx context.Context, stepID string) (*model.Step, error) {
	aStep, err := h.steps.Load(ctx, stepID)
	if err != nil {
		return nil, fmt.Errorf("failed to load step %v: %w", stepID, err)
	}
	return aStep, nil
}

// Steps returns steps of a task ordered by predecessor chain
func (h *Hub) Steps(ctx context.Context, taskID string) ([]*model.Step, error) {
	steps, err := h.steps.List(ctx, dao.NewParameter(dao.TaskIDParam, taskID))
	if err != nil {
		return nil, fmt.Errorf("failed to list steps of %v: %w", taskID, err)
	}
	return chainOrder(steps), nil
}

func chainOrder(steps []*model.Step) []*model.Step {
	byID := make(map[string]bool, len(steps))
	for _, aStep := range steps {
		byID[aStep.StepID] = true
	}
	successors := make(map[string][]*model.Step)
	var roots []*model.Step
	for _, aStep := range steps {
		if aStep.Predecessor == "" || !byID[aStep.Predecessor] {
			roots = append(roots, aStep)
			continue
		}
		successors[aStep.Predecessor] = append(successors[aStep.Predecessor], aStep)
	}
	result := make([]*model.Step, 0, len(steps))
	var visit func(aStep *model.Step)
	visit = func(aStep *model.Step) {
		result = append(result, aStep)
		for _, next := range successors[aStep.StepID] {
			visit(next)
		}
	}
	for _, root := range roots {
		visit(root)
	}
	return result
}

// CreateSteps stores steps for a task, a step whose predecessor already completed is published
func (h *Hub) CreateSteps(ctx context.Context, did, taskID string, steps []*model.Step) error {
	now := clock.Now()
	var ready []string
	released := map[string]bool{}
	for _, candidate := range steps {
		if candidate == nil {
			continue
		}
		aStep := candidate.Clone()
		aStep.TaskID = taskID
		if aStep.Did == "" {
			aStep.Did = did
		}
		if aStep.StepID == "" {
			aStep.StepID = idgen.NewStepID()
		}
		if aStep.Status == "" {
			aStep.Status = model.StatusPending
		}
		if aStep.CreatedAt.IsZero() {
			aStep.CreatedAt = now
		}
		aStep.UpdatedAt = now
		if err := h.steps.Save(ctx, aStep); err != nil {
			return fmt.Errorf("failed to save step %v: %w", aStep.StepID, err)
		}
		if aStep.Predecessor == "" || !aStep.Status.IsPending() {
			continue
		}
		if released[aStep.Predecessor] {
			continue
		}
		if predecessor, err := h.steps.Load(ctx, aStep.Predecessor); err == nil && predecessor.Status == model.StatusCompleted {
			released[aStep.Predecessor] = true
			ready = append(ready, aStep.Predecessor)
		}
	}
	for _, predecessorID := range ready {
		if err := h.release(ctx, predecessorID); err != nil {
			return err
		}
	}
	return nil
}

// UpdateStep applies a partial update, completing a step releases its successors
func (h *Hub) UpdateStep(ctx context.Context, did, taskID, stepID string, update *model.StepUpdate) error {
	if update == nil {
		return fmt.Errorf("step update was nil")
	}
	h.stepMu.Lock()
	aStep, err := h.steps.Load(ctx, stepID)
	if err != nil {
		h.stepMu.Unlock()
		return fmt.Errorf("failed to load step %v: %w", stepID, err)
	}
	if aStep.TaskID != taskID {
		h.stepMu.Unlock()
		return fmt.Errorf("%w: step %v, task %v", ErrTaskMismatch, stepID, taskID)
	}
	aStep.Apply(update)
	aStep.UpdatedAt = clock.Now()
	err = h.steps.Save(ctx, aStep)
	h.stepMu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to save step %v: %w", stepID, err)
	}
	switch aStep.Status {
	case model.StatusCompleted:
		if aStep.IsLast {
			return h.finishTask(ctx, aStep)
		}
		return h.release(ctx, aStep.StepID)
	case model.StatusFailed:
		return h.finishTask(ctx, aStep)
	}
	return nil
}

// release hands the predecessor output to pending successors and publishes them
func (h *Hub) release(ctx context.Context, predecessorID string) error {
	h.stepMu.Lock()
	predecessor, err := h.steps.Load(ctx, predecessorID)
	if err != nil {
		h.stepMu.Unlock()
		return fmt.Errorf("failed to load step %v: %w", predecessorID, err)
	}
	successors, err := h.steps.List(ctx,
		dao.NewParameter(dao.TaskIDParam, predecessor.TaskID),
		dao.NewParameter(dao.PredecessorParam, predecessorID),
		dao.NewParameter(dao.StatusParam, string(model.StatusPending)))
	if err != nil {
		h.stepMu.Unlock()
		return fmt.Errorf("failed to list successors of %v: %w", predecessorID, err)
	}
	artifacts, err := json.Marshal(predecessor.OutputArtifacts)
	if err != nil {
		h.stepMu.Unlock()
		return fmt.Errorf("failed to encode artifacts of %v: %w", predecessorID, err)
	}
	for _, successor := range successors {
		successor.InputQuery = predecessor.Output
		if len(predecessor.OutputArtifacts) > 0 {
			successor.InputArtifacts = string(artifacts)
		}
		successor.UpdatedAt = clock.Now()
		if err = h.steps.Save(ctx, successor); err != nil {
			h.stepMu.Unlock()
			return fmt.Errorf("failed to save step %v: %w", successor.StepID, err)
		}
	}
	h.stepMu.Unlock()
	for _, successor := range successors {
		if err = h.publish(ctx, successor, event.TypeStepReady); err != nil {
			return err
		}
	}
	return nil
}

func (h *Hub) finishTask(ctx context.Context, aStep *model.Step) error {
	aTask, err := h.tasks.Load(ctx, aStep.TaskID)
	if err != nil {
		return fmt.Errorf("failed to load task %v: %w", aStep.TaskID, err)
	}
	aTask.Status = aStep.Status
	aTask.Output = aStep.Output
	aTask.OutputArtifacts = aStep.OutputArtifacts
	aTask.UpdatedAt = clock.Now()
	if err = h.tasks.Save(ctx, aTask); err != nil {
		return fmt.Errorf("failed to save task %v: %w", aTask.TaskID, err)
	}
	return nil
}

// CreateTask creates a sub-agent task, an unknown agent yields a 404 creation result
func (h *Hub) CreateTask(ctx context.Context, agentDid string, request *model.TaskRequest, callback protocol.TaskCallback) (*protocol.CreationResult, error) {
	if request == nil {
		return nil, fmt.Errorf("task request was nil")
	}
	agent := h.agent(agentDid)
	if agent == nil {
		return &protocol.CreationResult{StatusCode: http.StatusNotFound, Data: fmt.Sprintf("agent %v not found", agentDid)}, nil
	}
	now := clock.Now()
	aTask := &model.Task{
		TaskID:    idgen.NewTaskID(),
		AgentDid:  agentDid,
		Name:      request.Name,
		Query:     request.Query,
		Status:    model.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.tasks.Save(ctx, aTask); err != nil {
		return nil, fmt.Errorf("failed to save task: %w", err)
	}
	h.running.Add(1)
	go h.execute(context.WithoutCancel(ctx), agent, aTask.Clone(), request, callback)
	return &protocol.CreationResult{StatusCode: http.StatusCreated, Data: aTask.Clone()}, nil
}

func (h *Hub) execute(ctx context.Context, agent Agent, aTask *model.Task, request *model.TaskRequest, callback protocol.TaskCallback) {
	defer h.running.Done()
	notify := func(status model.Status, message string) {
		if callback != nil {
			callback(ctx, &model.TaskEvent{TaskID: aTask.TaskID, Status: status, Message: message})
		}
	}
	aTask.Status = model.StatusInProgress
	h.saveTask(ctx, aTask)
	notify(model.StatusInProgress, "task started")

	result, err := h.run(ctx, agent, request)
	aTask.UpdatedAt = clock.Now()
	if err != nil {
		aTask.Status = model.StatusFailed
		aTask.Output = err.Error()
	} else {
		aTask.Status = model.StatusCompleted
		if result != nil {
			aTask.Output = result.Output
			aTask.OutputArtifacts = result.Artifacts
		}
	}
	h.saveTask(ctx, aTask)
	notify(aTask.Status, aTask.Output)
}

func (h *Hub) run(ctx context.Context, agent Agent, request *model.TaskRequest) (result *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("agent panic: %v", r)
		}
	}()
	return agent.Execute(ctx, request)
}

func (h *Hub) saveTask(ctx context.Context, aTask *model.Task) {
	if err := h.tasks.Save(ctx, aTask.Clone()); err != nil {
		h.logger.Error("failed to save task", "task_id", aTask.TaskID, "error", err)
	}
}

// Wait blocks until all running sub-agent tasks finished
func (h *Hub) Wait() {
	h.running.Wait()
}

// GetTaskWithSteps returns a task with its steps
func (h *Hub) GetTaskWithSteps(ctx context.Context, agentDid, taskID string) (*model.TaskWithSteps, error) {
	aTask, err := h.tasks.Load(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to load task %v: %w", taskID, err)
	}
	if agentDid != "" && aTask.AgentDid != agentDid {
		return nil, fmt.Errorf("%w: task %v, agent %v", ErrAgentMismatch, taskID, agentDid)
	}
	steps, err := h.Steps(ctx, taskID)
	if err != nil {
		return nil, err
	}
	return &model.TaskWithSteps{Task: aTask, Steps: steps}, nil
}

// LogTask records a task log entry
func (h *Hub) LogTask(_ context.Context, entry *model.TaskLog) error {
	if entry == nil {
		return fmt.Errorf("task log was nil")
	}
	logged := *entry
	h.mu.Lock()
	h.logs[entry.TaskID] = append(h.logs[entry.TaskID], &logged)
	h.mu.Unlock()
	return nil
}

// Logs returns recorded entries for a task
func (h *Hub) Logs(taskID string) []*model.TaskLog {
	h.mu.RLock()
	defer h.mu.RUnlock()
	result := make([]*model.TaskLog, 0, len(h.logs[taskID]))
	for _, entry := range h.logs[taskID] {
		logged := *entry
		result = append(result, &logged)
	}
	return result
}

package handler_test

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/storyflow/internal/idgen"
	"github.com/viant/storyflow/model"
	"github.com/viant/storyflow/service/delegate"
	"github.com/viant/storyflow/service/payments"
	"github.com/viant/storyflow/service/payments/memory"
	"github.com/viant/storyflow/service/protocol"
	"github.com/viant/storyflow/service/protocol/local"
	"github.com/viant/storyflow/service/tasklog"
	"github.com/viant/storyflow/service/validator"
)

const (
	storyDid  = "did:story"
	scriptDid = "did:script"
	imageDid  = "did:image"
	plan      = "plan:story"
	imagePlan = "plan:image"
)

// countingHub counts protocol writes
type countingHub struct {
	*local.Hub
	createSteps int32
	createTask  int32
	updateStep  int32
}

func (h *countingHub) CreateSteps(ctx context.Context, did, taskID string, steps []*model.Step) error {
	atomic.AddInt32(&h.createSteps, 1)
	return h.Hub.CreateSteps(ctx, did, taskID, steps)
}

func (h *countingHub) CreateTask(ctx context.Context, agentDid string, request *model.TaskRequest, callback protocol.TaskCallback) (*protocol.CreationResult, error) {
	atomic.AddInt32(&h.createTask, 1)
	return h.Hub.CreateTask(ctx, agentDid, request, callback)
}

func (h *countingHub) UpdateStep(ctx context.Context, did, taskID, stepID string, update *model.StepUpdate) error {
	atomic.AddInt32(&h.updateStep, 1)
	return h.Hub.UpdateStep(ctx, did, taskID, stepID, update)
}

type fixture struct {
	hub       *countingHub
	ledger    *memory.Ledger
	gate      *payments.Gate
	logger    *tasklog.Logger
	validator *validator.Service
	delegate  *delegate.Service
}

func newFixture(agents map[string]local.Agent) *fixture {
	hub := local.New()
	for did, agent := range agents {
		hub.RegisterAgent(did, agent)
	}
	counting := &countingHub{Hub: hub}
	ledger := memory.New(memory.WithBalance(plan, 10), memory.WithBalance(imagePlan, 10))
	logger := tasklog.New(nil, counting)
	aValidator := validator.New(counting, logger)
	return &fixture{
		hub:       counting,
		ledger:    ledger,
		gate:      payments.NewGate(ledger, nil),
		logger:    logger,
		validator: aValidator,
		delegate:  delegate.New(counting, aValidator, delegate.WithLogger(logger), delegate.WithLabel("Image Generator")),
	}
}

func (f *fixture) step(t *testing.T, name model.StepName, query, artifacts string) *model.Step {
	ctx := context.Background()
	initStep, err := f.hub.SubmitTask(ctx, storyDid, query)
	if !assert.NoError(t, err) {
		t.FailNow()
	}
	if name == model.StepInit {
		return initStep
	}
	aStep := &model.Step{StepID: idgen.NewStepID(), Name: name, InputQuery: query, InputArtifacts: artifacts, IsLast: name == model.StepGenerateImagesForCharacters}
	assert.NoError(t, f.hub.Hub.CreateSteps(ctx, storyDid, initStep.TaskID, []*model.Step{aStep}))
	loaded, err := f.hub.GetStep(ctx, aStep.StepID)
	if !assert.NoError(t, err) {
		t.FailNow()
	}
	return loaded
}

func (f *fixture) reload(t *testing.T, aStep *model.Step) *model.Step {
	loaded, err := f.hub.GetStep(context.Background(), aStep.StepID)
	assert.NoError(t, err)
	return loaded
}

func (f *fixture) messages(taskID string, level model.LogLevel) []string {
	var result []string
	for _, entry := range f.hub.Logs(taskID) {
		if entry.Level == level {
			result = append(result, entry.Message)
		}
	}
	return result
}

func echoAgent(prefix string) local.AgentFunc {
	return func(ctx context.Context, request *model.TaskRequest) (*local.Result, error) {
		return &local.Result{Output: prefix + request.Query, Artifacts: []interface{}{prefix + request.Query}}, nil
	}
}

func failingAgent(message string) local.AgentFunc {
	return func(ctx context.Context, request *model.TaskRequest) (*local.Result, error) {
		return nil, errors.New(message)
	}
}

func contains(messages []string, fragment string) bool {
	for _, message := range messages {
		if strings.Contains(message, fragment) {
			return true
		}
	}
	return false
}

package delegate_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/viant/storyflow/model"
	"github.com/viant/storyflow/service/delegate"
	"github.com/viant/storyflow/service/protocol"
	"github.com/viant/storyflow/service/protocol/local"
	"github.com/viant/storyflow/service/validator"
)

// repeatingHub emits extra terminal events after the first one
type repeatingHub struct {
	*local.Hub
}

func (h *repeatingHub) CreateTask(ctx context.Context, agentDid string, request *model.TaskRequest, callback protocol.TaskCallback) (*protocol.CreationResult, error) {
	return h.Hub.CreateTask(ctx, agentDid, request, func(ctx context.Context, event *model.TaskEvent) {
		callback(ctx, event)
		if event.Status == model.StatusCompleted {
			callback(ctx, &model.TaskEvent{TaskID: event.TaskID, Status: model.StatusFailed, Message: "late failure"})
			callback(ctx, event)
		}
	})
}

func newHub(release chan struct{}) *local.Hub {
	return local.New(
		local.WithAgent("did:image", local.AgentFunc(func(ctx context.Context, request *model.TaskRequest) (*local.Result, error) {
			return &local.Result{Output: "done", Artifacts: []interface{}{"img:" + request.Query}}, nil
		})),
		local.WithAgent("did:broken", local.AgentFunc(func(ctx context.Context, request *model.TaskRequest) (*local.Result, error) {
			return nil, errors.New("render failed")
		})),
		local.WithAgent("did:slow", local.AgentFunc(func(ctx context.Context, request *model.TaskRequest) (*local.Result, error) {
			<-release
			return &local.Result{}, nil
		})),
	)
}

func TestService_Delegate(t *testing.T) {
	step := &model.Step{StepID: "step-1", TaskID: "task-1", Did: "did:story", Name: model.StepGenerateImagesForCharacters}
	var testCases = []struct {
		description string
		agent       string
		expect      []interface{}
		expectErr   error
	}{
		{description: "completed", agent: "did:image", expect: []interface{}{"img:red"}},
		{description: "failed", agent: "did:broken", expectErr: delegate.ErrTaskFailed},
		{description: "rejected", agent: "did:unknown", expectErr: delegate.ErrTaskRejected},
	}
	for _, tc := range testCases {
		hub := newHub(nil)
		srv := delegate.New(hub, validator.New(hub, nil), delegate.WithLabel("Image Generator"))
		artifacts, err := srv.Delegate(context.Background(), tc.agent, "red", step)
		hub.Wait()
		if tc.expectErr != nil {
			assert.ErrorIs(t, err, tc.expectErr, tc.description)
			assert.Nil(t, artifacts, tc.description)
			continue
		}
		assert.NoError(t, err, tc.description)
		assert.Equal(t, tc.expect, artifacts, tc.description)
	}
}

func TestService_Delegate_FailureLogged(t *testing.T) {
	hub := newHub(nil)
	srv := delegate.New(hub, validator.New(hub, nil))
	step := &model.Step{StepID: "step-1", TaskID: "task-log", Name: model.StepGenerateImagesForCharacters}
	_, err := srv.Delegate(context.Background(), "did:broken", "p", step)
	assert.Error(t, err)
	hub.Wait()
	var failures []*model.TaskLog
	for _, entry := range hub.Logs("task-log") {
		if entry.Level == model.LogLevelError {
			failures = append(failures, entry)
		}
	}
	if assert.Len(t, failures, 1) {
		assert.Equal(t, "render failed", failures[0].Message)
		assert.Equal(t, model.StatusFailed, failures[0].Status)
	}
}

func TestService_Delegate_FirstTerminalEventWins(t *testing.T) {
	hub := &repeatingHub{Hub: newHub(nil)}
	srv := delegate.New(hub, validator.New(hub, nil))
	step := &model.Step{StepID: "step-1", TaskID: "task-1", Name: model.StepGenerateImagesForCharacters}
	artifacts, err := srv.Delegate(context.Background(), "did:image", "blue", step)
	hub.Wait()
	assert.NoError(t, err)
	assert.Equal(t, []interface{}{"img:blue"}, artifacts)
}

func TestService_Delegate_Timeout(t *testing.T) {
	release := make(chan struct{})
	hub := newHub(release)
	srv := delegate.New(hub, validator.New(hub, nil), delegate.WithTimeout(20*time.Millisecond))
	step := &model.Step{StepID: "step-1", TaskID: "task-1", Name: model.StepGenerateImagesForCharacters}
	_, err := srv.Delegate(context.Background(), "did:slow", "p", step)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	close(release)
	hub.Wait()
}

package fs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/storyflow/model"
	"github.com/viant/storyflow/service/dao"
)

func TestService(t *testing.T) {
	ctx := context.Background()
	srv, err := New(t.TempDir())
	if !assert.NoError(t, err) {
		return
	}

	aStep := &model.Step{
		StepID:          "s1",
		TaskID:          "t1",
		Name:            model.StepGenerateScript,
		Status:          model.StatusCompleted,
		Output:          "script",
		OutputArtifacts: []interface{}{"a1"},
	}
	assert.NoError(t, srv.Save(ctx, aStep))
	assert.NoError(t, srv.Save(ctx, &model.Step{StepID: "s2", TaskID: "t1", Predecessor: "s1", Status: model.StatusPending}))
	assert.NoError(t, srv.Save(ctx, &model.Step{StepID: "s3", TaskID: "t2", Status: model.StatusPending}))

	loaded, err := srv.Load(ctx, "s1")
	assert.NoError(t, err)
	assert.Equal(t, aStep.Output, loaded.Output)
	assert.Equal(t, aStep.OutputArtifacts, loaded.OutputArtifacts)
	assert.Equal(t, model.StepGenerateScript, loaded.Name)

	list, err := srv.List(ctx, dao.NewParameter(dao.TaskIDParam, "t1"))
	assert.NoError(t, err)
	assert.Len(t, list, 2)

	assert.NoError(t, srv.Delete(ctx, "s1"))
	_, err = srv.Load(ctx, "s1")
	assert.ErrorIs(t, err, dao.ErrNotFound)
	assert.ErrorIs(t, srv.Delete(ctx, "s1"), dao.ErrNotFound)
}

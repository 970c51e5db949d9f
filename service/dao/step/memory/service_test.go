package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/storyflow/model"
	"github.com/viant/storyflow/service/dao"
)

func TestService(t *testing.T) {
	ctx := context.Background()
	srv := New()

	assert.ErrorIs(t, srv.Save(ctx, nil), dao.ErrNilEntity)
	assert.ErrorIs(t, srv.Save(ctx, &model.Step{}), dao.ErrInvalidID)

	assert.NoError(t, srv.Save(ctx, &model.Step{StepID: "s1", TaskID: "t1", Status: model.StatusPending}))
	assert.NoError(t, srv.Save(ctx, &model.Step{StepID: "s2", TaskID: "t1", Predecessor: "s1", Status: model.StatusPending}))
	assert.NoError(t, srv.Save(ctx, &model.Step{StepID: "s3", TaskID: "t2", Status: model.StatusCompleted}))

	loaded, err := srv.Load(ctx, "s1")
	assert.NoError(t, err)
	loaded.Status = model.StatusFailed
	again, _ := srv.Load(ctx, "s1")
	assert.Equal(t, model.StatusPending, again.Status, "returned records must be copies")

	list, err := srv.List(ctx, dao.NewParameter(dao.TaskIDParam, "t1"))
	assert.NoError(t, err)
	assert.Len(t, list, 2)

	list, _ = srv.List(ctx, dao.NewParameter(dao.PredecessorParam, "s1"))
	if assert.Len(t, list, 1) {
		assert.Equal(t, "s2", list[0].StepID)
	}

	assert.NoError(t, srv.Delete(ctx, "s3"))
	_, err = srv.Load(ctx, "s3")
	assert.ErrorIs(t, err, dao.ErrNotFound)
}

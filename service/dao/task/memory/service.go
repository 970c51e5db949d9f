package memory

import (
	"github.com/viant/storyflow/model"
	"github.com/viant/storyflow/service/dao"
	"github.com/viant/storyflow/service/dao/criteria"
	"github.com/viant/storyflow/service/dao/store"
	"github.com/viant/storyflow/service/dao/task"
)

// Service implements an in-memory task storage
type Service struct {
	*store.MemoryStore[string, model.Task]
}

var _ task.DAO = (*Service)(nil)

// New constructor.
func New() *Service {
	return &Service{MemoryStore: store.NewMemoryStore[string, model.Task](
		func(t *model.Task) string { return t.TaskID },
		func(t *model.Task) *model.Task { return t.Clone() },
		store.WithFilter[string, model.Task](func(t *model.Task, parameters []*dao.Parameter) bool {
			return criteria.Matches(task.Fields(t), parameters)
		}),
	)}
}

package memory

import (
	"github.com/viant/storyflow/model"
	"github.com/viant/storyflow/service/dao"
	"github.com/viant/storyflow/service/dao/criteria"
	"github.com/viant/storyflow/service/dao/step"
	"github.com/viant/storyflow/service/dao/store"
)

// Service implements an in-memory step storage.  All operations are
// thread-safe and return copies of the underlying records.
type Service struct {
	*store.MemoryStore[string, model.Step]
}

// Compile-time check that Service implements the generic DAO interface.
var _ step.DAO = (*Service)(nil)

// New constructor.
func New() *Service {
	return &Service{MemoryStore: store.NewMemoryStore[string, model.Step](
		func(s *model.Step) string { return s.StepID },
		func(s *model.Step) *model.Step { return s.Clone() },
		store.WithFilter[string, model.Step](func(s *model.Step, parameters []*dao.Parameter) bool {
			return criteria.Matches(step.Fields(s), parameters)
		}),
	)}
}

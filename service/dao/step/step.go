// Package step provides step record stores used by the local protocol hub.
package step

import (
	"github.com/viant/storyflow/model"
	"github.com/viant/storyflow/service/dao"
)

// DAO represents step store
type DAO = dao.Service[string, model.Step]

// Fields returns step fields addressable by list parameters
func Fields(step *model.Step) map[string]string {
	return map[string]string{
		dao.TaskIDParam:      step.TaskID,
		dao.PredecessorParam: step.Predecessor,
		dao.StatusParam:      string(step.Status),
	}
}

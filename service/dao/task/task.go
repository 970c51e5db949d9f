// Package task provides task record stores used by the local protocol hub.
package task

import (
	"github.com/viant/storyflow/model"
	"github.com/viant/storyflow/service/dao"
)

// DAO represents task store
type DAO = dao.Service[string, model.Task]

// Fields returns task fields addressable by list parameters
func Fields(task *model.Task) map[string]string {
	return map[string]string{
		dao.AgentParam:  task.AgentDid,
		dao.StatusParam: string(task.Status),
	}
}

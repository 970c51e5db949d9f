package model

import "time"

// Task represents a unit of work executed by an external agent
type Task struct {
	TaskID          string        `json:"task_id"`
	AgentDid        string        `json:"agent_did"`
	Name            string        `json:"name,omitempty"`
	Query           string        `json:"query"`
	Status          Status        `json:"task_status"`
	Output          string        `json:"output,omitempty"`
	OutputArtifacts []interface{} `json:"output_artifacts,omitempty"`
	CreatedAt       time.Time     `json:"created_at,omitempty"`
	UpdatedAt       time.Time     `json:"updated_at,omitempty"`
}

// Clone returns a copy of the task
func (t *Task) Clone() *Task {
	if t == nil {
		return nil
	}
	ret := *t
	if t.OutputArtifacts != nil {
		ret.OutputArtifacts = make([]interface{}, len(t.OutputArtifacts))
		copy(ret.OutputArtifacts, t.OutputArtifacts)
	}
	return &ret
}

// TaskWithSteps represents getTaskWithSteps response
type TaskWithSteps struct {
	Task  *Task   `json:"task"`
	Steps []*Step `json:"steps,omitempty"`
}

// TaskRequest represents createTask payload
type TaskRequest struct {
	Query            string        `json:"query"`
	Name             string        `json:"name,omitempty"`
	AdditionalParams []interface{} `json:"additional_params"`
	Artifacts        []interface{} `json:"artifacts"`
}

// NewTaskRequest creates a task request for the supplied step
func NewTaskRequest(query string, name StepName) *TaskRequest {
	return &TaskRequest{
		Query:            query,
		Name:             string(name),
		AdditionalParams: []interface{}{},
		Artifacts:        []interface{}{},
	}
}

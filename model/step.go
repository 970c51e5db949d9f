package model

import "time"

// StepName identifies a pipeline step handler
type StepName string

const (
	StepInit                        StepName = "init"
	StepGenerateScript              StepName = "generateScript"
	StepExtractCharacters           StepName = "extractCharacters"
	StepGenerateImagesForCharacters StepName = "generateImagesForCharacters"
)

// StepNames returns all pipeline step names in execution order
func StepNames() []StepName {
	return []StepName{StepInit, StepGenerateScript, StepExtractCharacters, StepGenerateImagesForCharacters}
}

// Valid returns true when the name belongs to the pipeline
func (n StepName) Valid() bool {
	for _, candidate := range StepNames() {
		if candidate == n {
			return true
		}
	}
	return false
}

func (n StepName) String() string {
	return string(n)
}

// Step represents one node of a task pipeline
type Step struct {
	StepID          string        `json:"step_id" yaml:"step_id"`
	TaskID          string        `json:"task_id" yaml:"task_id"`
	Did             string        `json:"did,omitempty" yaml:"did,omitempty"`
	Name            StepName      `json:"name" yaml:"name"`
	Predecessor     string        `json:"predecessor,omitempty" yaml:"predecessor,omitempty"`
	IsLast          bool          `json:"is_last" yaml:"is_last"`
	Status          Status        `json:"step_status" yaml:"step_status"`
	InputQuery      string        `json:"input_query,omitempty" yaml:"input_query,omitempty"`
	InputArtifacts  string        `json:"input_artifacts,omitempty" yaml:"input_artifacts,omitempty"`
	Output          string        `json:"output,omitempty" yaml:"output,omitempty"`
	OutputArtifacts []interface{} `json:"output_artifacts,omitempty" yaml:"output_artifacts,omitempty"`
	CreatedAt       time.Time     `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	UpdatedAt       time.Time     `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
}

// Clone returns a copy of the step; output artifacts slice is copied.
func (s *Step) Clone() *Step {
	if s == nil {
		return nil
	}
	ret := *s
	if s.OutputArtifacts != nil {
		ret.OutputArtifacts = make([]interface{}, len(s.OutputArtifacts))
		copy(ret.OutputArtifacts, s.OutputArtifacts)
	}
	return &ret
}

// Apply merges a partial update into the step
func (s *Step) Apply(update *StepUpdate) {
	if update == nil {
		return
	}
	if update.Status != "" {
		s.Status = update.Status
	}
	if update.Output != nil {
		s.Output = *update.Output
	}
	if update.OutputArtifacts != nil {
		s.OutputArtifacts = update.OutputArtifacts
	}
}

// StepUpdate represents a partial step mutation
type StepUpdate struct {
	Status          Status        `json:"step_status,omitempty"`
	Output          *string       `json:"output,omitempty"`
	OutputArtifacts []interface{} `json:"output_artifacts,omitempty"`
}

// NewStepUpdate creates a status update with output
func NewStepUpdate(status Status, output string, artifacts []interface{}) *StepUpdate {
	return &StepUpdate{Status: status, Output: &output, OutputArtifacts: artifacts}
}

package model

import "github.com/viant/storyflow/internal/clock"

// PlanStep describes a successor step template
type PlanStep struct {
	Name   StepName `json:"name" yaml:"name"`
	IsLast bool     `json:"is_last" yaml:"is_last"`
}

// WorkflowPlan is the static successor chain created by the init step
type WorkflowPlan struct {
	Steps []PlanStep `json:"steps" yaml:"steps"`
}

// DefaultPlan returns generateScript -> extractCharacters -> generateImagesForCharacters
func DefaultPlan() *WorkflowPlan {
	return &WorkflowPlan{Steps: []PlanStep{
		{Name: StepGenerateScript},
		{Name: StepExtractCharacters},
		{Name: StepGenerateImagesForCharacters, IsLast: true},
	}}
}

// Materialize creates pending successor steps chained by predecessor, the
// first successor follows the parent step.
func (p *WorkflowPlan) Materialize(parent *Step, newID func() string) []*Step {
	ret := make([]*Step, 0, len(p.Steps))
	predecessor := parent.StepID
	now := clock.Now()
	for i, template := range p.Steps {
		step := &Step{
			StepID:      newID(),
			TaskID:      parent.TaskID,
			Did:         parent.Did,
			Name:        template.Name,
			Predecessor: predecessor,
			IsLast:      template.IsLast && i == len(p.Steps)-1,
			Status:      StatusPending,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		ret = append(ret, step)
		predecessor = step.StepID
	}
	return ret
}

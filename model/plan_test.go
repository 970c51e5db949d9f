package model

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWorkflowPlan_Materialize(t *testing.T) {
	counter := 0
	newID := func() string {
		counter++
		return fmt.Sprintf("s%d", counter)
	}
	parent := &Step{StepID: "S", TaskID: "T", Did: "did:plan", Name: StepInit, Status: StatusPending}

	steps := DefaultPlan().Materialize(parent, newID)
	if !assert.Len(t, steps, 3) {
		return
	}
	assert.EqualValues(t, []StepName{StepGenerateScript, StepExtractCharacters, StepGenerateImagesForCharacters},
		[]StepName{steps[0].Name, steps[1].Name, steps[2].Name})
	assert.Equal(t, "S", steps[0].Predecessor)
	assert.Equal(t, steps[0].StepID, steps[1].Predecessor)
	assert.Equal(t, steps[1].StepID, steps[2].Predecessor)
	for i, step := range steps {
		assert.Equal(t, i == 2, step.IsLast)
		assert.Equal(t, "T", step.TaskID)
		assert.Equal(t, "did:plan", step.Did)
		assert.Equal(t, StatusPending, step.Status)
	}
}

func TestStepName_Valid(t *testing.T) {
	assert.True(t, StepInit.Valid())
	assert.True(t, StepGenerateImagesForCharacters.Valid())
	assert.False(t, StepName("publishVideo").Valid())
}

func TestStep_Apply(t *testing.T) {
	step := &Step{Status: StatusPending, Output: "x"}
	step.Apply(&StepUpdate{Status: StatusCompleted})
	assert.Equal(t, StatusCompleted, step.Status)
	assert.Equal(t, "x", step.Output)
	step.Apply(NewStepUpdate(StatusFailed, "boom", []interface{}{"a"}))
	assert.Equal(t, "boom", step.Output)
	assert.Equal(t, []interface{}{"a"}, step.OutputArtifacts)
}

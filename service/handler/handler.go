// Package handler implements pipeline step handlers: init creates the
// successor steps, Agent delegates a step to a single sub-agent and Images
// fans a step out to one image task per character.
package handler

import (
	"context"
	"errors"

	"github.com/viant/storyflow/model"
)

// Agent labels used in diagnostics
const (
	LabelScriptGenerator    = "Script Generator"
	LabelCharacterExtractor = "Character Extractor"
	LabelImageGenerator     = "Image Generator"
)

// Step outputs and log messages
const (
	MessageStepsCreated     = "Steps created successfully."
	MessageTaskCreated      = "Task created successfully."
	MessageImagesCompleted  = "All image tasks completed."
	MessageImagesFailed     = "One or more image tasks failed."
	MessageImageBalanceFail = "Insufficient balance for image generation tasks."
)

// ErrInsufficientBalance is returned when plan credit could not be secured
var ErrInsufficientBalance = errors.New(MessageImageBalanceFail)

// Handler handles one pending step
type Handler interface {
	Handle(ctx context.Context, step *model.Step) error
}

// Func adapts a function to Handler
type Func func(ctx context.Context, step *model.Step) error

// Handle calls the function
func (f Func) Handle(ctx context.Context, step *model.Step) error {
	return f(ctx, step)
}

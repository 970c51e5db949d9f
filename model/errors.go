package model

import "errors"

var (
	// ErrInvalidArtifacts is returned when step input artifacts cannot be
	// decoded into the expected payload.
	ErrInvalidArtifacts = errors.New("model: invalid input artifacts")

	// ErrUnknownStep is returned for a step name outside of the pipeline enum.
	ErrUnknownStep = errors.New("model: unknown step name")
)

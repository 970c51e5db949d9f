// Package model contains the records exchanged between the orchestrator and
// its collaborators: pipeline steps, delegated agent tasks, the callback and
// notification payloads and the character artifacts flowing between the
// extractCharacters and generateImagesForCharacters steps.
//
// JSON field names follow the agent protocol wire format (snake case) so the
// same structures can be stored, published and logged without translation.
package model

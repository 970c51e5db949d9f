// Package event defines the envelope used to publish step notifications on a
// messaging queue.
package event

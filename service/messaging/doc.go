// Package messaging defines the generic queue abstraction used to carry
// step-update notifications from the protocol hub to the router workers.
// Delivery is at-least-once: a message that is negatively acknowledged is
// redelivered, so consumers must tolerate duplicates.
package messaging

// Package processor runs a pool of workers draining a messaging queue into a
// handler. A handler error negatively acknowledges the message so the queue
// can redeliver it; a panicking handler is recovered and treated the same way
// so a single bad message never stops a worker.
package processor

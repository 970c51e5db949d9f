// Package tracing wraps OpenTelemetry so that routing and delegation code can
// open and close spans without importing the upstream packages directly.
package tracing

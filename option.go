package storyflow

import (
	"log/slog"

	"github.com/viant/storyflow/model"
	"github.com/viant/storyflow/service/payments"
	"github.com/viant/storyflow/service/protocol"
	"github.com/viant/storyflow/tracing"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Option customises the service
type Option func(s *Service)

// WithConfig sets the configuration
func WithConfig(config *Config) Option {
	return func(s *Service) {
		s.config = config
	}
}

// WithProtocol sets the agent protocol, the local hub is used otherwise
func WithProtocol(protocol protocol.Service) Option {
	return func(s *Service) {
		s.protocol = protocol
	}
}

// WithLedger sets the plan ledger
func WithLedger(ledger payments.Ledger) Option {
	return func(s *Service) {
		s.ledger = ledger
	}
}

// WithLogger sets the process logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithPlan overrides the workflow plan materialized by the init step
func WithPlan(plan *model.WorkflowPlan) Option {
	return func(s *Service) {
		s.plan = plan
	}
}

// WithTracing configures OpenTelemetry tracing for the service. If outputFile is empty the
// stdout exporter is used; otherwise traces are written to the supplied file path.
func WithTracing(serviceName, serviceVersion, outputFile string) Option {
	return func(s *Service) {
		s.tracingErr = tracing.Init(serviceName, serviceVersion, outputFile)
		s.tracing = true
	}
}

// WithTracingExporter configures OpenTelemetry tracing using a custom SpanExporter.
func WithTracingExporter(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) Option {
	return func(s *Service) {
		s.tracingErr = tracing.InitWithExporter(serviceName, serviceVersion, exporter)
		s.tracing = true
	}
}

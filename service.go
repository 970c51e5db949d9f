package storyflow

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/viant/storyflow/model"
	"github.com/viant/storyflow/progress"
	"github.com/viant/storyflow/service/delegate"
	"github.com/viant/storyflow/service/handler"
	"github.com/viant/storyflow/service/payments"
	"github.com/viant/storyflow/service/payments/memory"
	"github.com/viant/storyflow/service/protocol"
	"github.com/viant/storyflow/service/protocol/local"
	"github.com/viant/storyflow/service/router"
	"github.com/viant/storyflow/service/tasklog"
	"github.com/viant/storyflow/service/validator"
	"github.com/viant/storyflow/tracing"
)

// Service wires the orchestrator pipeline
type Service struct {
	config     *Config
	protocol   protocol.Service
	hub        *local.Hub
	ledger     payments.Ledger
	logger     *slog.Logger
	plan       *model.WorkflowPlan
	router     *router.Service
	closers    []io.Closer
	tracing    bool
	tracingErr error
	apiKey     string
}

// New creates the orchestrator service
func New(options ...Option) (*Service, error) {
	s := &Service{}
	for _, option := range options {
		option(s)
	}
	if s.tracingErr != nil {
		return nil, fmt.Errorf("failed to initialise tracing: %w", s.tracingErr)
	}
	if s.config == nil {
		s.config = DefaultConfig()
	}
	if err := s.config.Validate(); err != nil {
		return nil, err
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if err := s.resolveAPIKey(context.Background()); err != nil {
		return nil, err
	}
	if s.ledger == nil {
		s.ledger = memory.New()
	}
	if s.protocol == nil {
		hub, closer, err := NewHub(s.config, s.logger)
		if err != nil {
			return nil, err
		}
		s.hub = hub
		s.protocol = hub
		s.closers = append(s.closers, closer)
	}
	s.router = s.newRouter()
	return s, nil
}

// resolveAPIKey reveals the Nevermined API key, only the local hub runs without one
func (s *Service) resolveAPIKey(ctx context.Context) error {
	apiKey, err := s.config.Secret(ctx)
	if err != nil {
		if errors.Is(err, ErrMissingAPIKey) && s.protocol == nil {
			return nil
		}
		return err
	}
	s.apiKey = apiKey
	return nil
}

func (s *Service) newRouter() *router.Service {
	cfg := s.config
	logger := tasklog.New(s.logger, s.protocol)
	gate := payments.NewGate(s.ledger, s.logger)
	aValidator := validator.New(s.protocol, logger)
	imageDelegate := delegate.New(s.protocol, aValidator,
		delegate.WithLogger(logger),
		delegate.WithLabel(handler.LabelImageGenerator),
		delegate.WithTimeout(cfg.DelegateTimeout))
	handlers := map[model.StepName]handler.Handler{
		model.StepInit:                        handler.NewInit(s.protocol, logger, s.plan),
		model.StepGenerateScript:              handler.NewAgent(s.protocol, gate, aValidator, logger, cfg.ScriptGeneratorDid, handler.LabelScriptGenerator, cfg.PlanDid),
		model.StepExtractCharacters:           handler.NewAgent(s.protocol, gate, aValidator, logger, cfg.CharacterExtractorDid, handler.LabelCharacterExtractor, cfg.PlanDid),
		model.StepGenerateImagesForCharacters: handler.NewImages(s.protocol, gate, imageDelegate, logger, cfg.ImageGeneratorDid, cfg.ImageGeneratorPlanDid),
	}
	return router.New(s.protocol, handlers, router.WithLogger(logger), router.WithProgress(progress.New(nil)))
}

// Config returns service configuration
func (s *Service) Config() *Config {
	return s.config
}

// APIKey returns the revealed Nevermined API key, empty when none was configured
func (s *Service) APIKey() string {
	return s.apiKey
}

// Router returns the step router
func (s *Service) Router() *router.Service {
	return s.router
}

// Protocol returns the agent protocol
func (s *Service) Protocol() protocol.Service {
	return s.protocol
}

// Hub returns the local hub, nil when an external protocol was supplied
func (s *Service) Hub() *local.Hub {
	return s.hub
}

// Progress returns routing counters
func (s *Service) Progress() progress.Snapshot {
	return s.router.Progress().Snapshot()
}

// Run routes step notifications addressed to the orchestrator until ctx is done
func (s *Service) Run(ctx context.Context) error {
	s.logger.Info("orchestrator started", "agent_did", s.config.AgentDid, "environment", s.config.Nevermined.Environment, "api_key", s.apiKey != "")
	err := s.protocol.Subscribe(ctx, s.router.Route, &protocol.SubscribeOptions{Did: s.config.AgentDid})
	s.logger.Info("orchestrator stopped", "agent_did", s.config.AgentDid)
	return err
}

// Close releases stores and flushes traces
func (s *Service) Close() error {
	var errs []error
	if s.hub != nil {
		s.hub.Wait()
	}
	for _, closer := range s.closers {
		if err := closer.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if s.tracing {
		if err := tracing.Shutdown(context.Background()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

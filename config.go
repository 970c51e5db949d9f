package storyflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/viant/afs"
	"github.com/viant/scy"
	"github.com/viant/storyflow/service/meta"
	"github.com/viant/storyflow/service/messaging"
)

// Store types
const (
	StoreMemory = "memory"
	StoreFs     = "fs"
	StoreSqlite = "sqlite"
)

// ErrMissingAPIKey is returned when neither an API key nor its secret URL is configured
var ErrMissingAPIKey = errors.New("nevermined api key is not configured")

// Config is a serialisable representation of the orchestrator configuration.
// It can be populated from YAML, JSON or viper (file and environment).
type Config struct {
	// AgentDid identifies this orchestrator agent, notifications are filtered by it
	AgentDid string `json:"agentDid" yaml:"agentDid" mapstructure:"agentDid"`
	// PlanDid is the plan charged for script and character steps
	PlanDid               string `json:"planDid" yaml:"planDid" mapstructure:"planDid"`
	ScriptGeneratorDid    string `json:"scriptGeneratorDid" yaml:"scriptGeneratorDid" mapstructure:"scriptGeneratorDid"`
	CharacterExtractorDid string `json:"characterExtractorDid" yaml:"characterExtractorDid" mapstructure:"characterExtractorDid"`
	ImageGeneratorDid     string `json:"imageGeneratorDid" yaml:"imageGeneratorDid" mapstructure:"imageGeneratorDid"`
	// ImageGeneratorPlanDid is the plan charged per generated image
	ImageGeneratorPlanDid string `json:"imageGeneratorPlanDid" yaml:"imageGeneratorPlanDid" mapstructure:"imageGeneratorPlanDid"`

	Nevermined NeverminedConfig `json:"nevermined" yaml:"nevermined" mapstructure:"nevermined"`

	Workers         int           `json:"workers" yaml:"workers" mapstructure:"workers"`
	DelegateTimeout time.Duration `json:"delegateTimeout" yaml:"delegateTimeout" mapstructure:"delegateTimeout"`

	Store   StoreConfig   `json:"store" yaml:"store" mapstructure:"store"`
	Queue   QueueConfig   `json:"queue" yaml:"queue" mapstructure:"queue"`
	Tracing TracingConfig `json:"tracing" yaml:"tracing" mapstructure:"tracing"`
	Log     LogConfig     `json:"log" yaml:"log" mapstructure:"log"`
}

// NeverminedConfig holds payment environment settings
type NeverminedConfig struct {
	Environment string `json:"environment" yaml:"environment" mapstructure:"environment"`
	APIKey      string `json:"apiKey,omitempty" yaml:"apiKey,omitempty" mapstructure:"apiKey"`
	// APIKeyURL locates an encrypted API key, revealed with APIKeyCipher (e.g. blowfish://default)
	APIKeyURL    string `json:"apiKeyURL,omitempty" yaml:"apiKeyURL,omitempty" mapstructure:"apiKeyURL"`
	APIKeyCipher string `json:"apiKeyCipher,omitempty" yaml:"apiKeyCipher,omitempty" mapstructure:"apiKeyCipher"`
}

// StoreConfig selects the step store of the local hub
type StoreConfig struct {
	Type     string `json:"type" yaml:"type" mapstructure:"type"`
	Location string `json:"location,omitempty" yaml:"location,omitempty" mapstructure:"location"`
}

// QueueConfig selects the notification queue of the local hub
type QueueConfig struct {
	Vendor     messaging.Vendor `json:"vendor" yaml:"vendor" mapstructure:"vendor"`
	BasePath   string           `json:"basePath,omitempty" yaml:"basePath,omitempty" mapstructure:"basePath"`
	MaxRetries int              `json:"maxRetries" yaml:"maxRetries" mapstructure:"maxRetries"`
}

// TracingConfig controls OpenTelemetry export
type TracingConfig struct {
	Enabled    bool   `json:"enabled" yaml:"enabled" mapstructure:"enabled"`
	OutputFile string `json:"outputFile,omitempty" yaml:"outputFile,omitempty" mapstructure:"outputFile"`
}

// LogConfig controls process logging
type LogConfig struct {
	Level string `json:"level" yaml:"level" mapstructure:"level"`
	File  string `json:"file,omitempty" yaml:"file,omitempty" mapstructure:"file"`
}

// DefaultConfig returns a Config wired for a single process with in-memory stores
func DefaultConfig() *Config {
	return &Config{
		AgentDid:              "did:nv:storyflow-orchestrator",
		PlanDid:               "did:nv:storyflow-plan",
		ScriptGeneratorDid:    "did:nv:script-generator",
		CharacterExtractorDid: "did:nv:character-extractor",
		ImageGeneratorDid:     "did:nv:image-generator",
		ImageGeneratorPlanDid: "did:nv:image-generator-plan",
		Nevermined:            NeverminedConfig{Environment: "testing"},
		Workers:               4,
		DelegateTimeout:       10 * time.Minute,
		Store:                 StoreConfig{Type: StoreMemory},
		Queue:                 QueueConfig{Vendor: messaging.VendorMemory, MaxRetries: 3},
		Log:                   LogConfig{Level: "info"},
	}
}

// Validate returns aggregated error describing invalid settings or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	var errs []error
	required := []struct {
		name  string
		value string
	}{
		{"agentDid", c.AgentDid},
		{"planDid", c.PlanDid},
		{"scriptGeneratorDid", c.ScriptGeneratorDid},
		{"characterExtractorDid", c.CharacterExtractorDid},
		{"imageGeneratorDid", c.ImageGeneratorDid},
		{"imageGeneratorPlanDid", c.ImageGeneratorPlanDid},
	}
	for _, field := range required {
		if field.value == "" {
			errs = append(errs, fmt.Errorf("%v is required", field.name))
		}
	}
	if c.Workers <= 0 {
		errs = append(errs, fmt.Errorf("workers must be > 0"))
	}
	if c.DelegateTimeout < 0 {
		errs = append(errs, fmt.Errorf("delegateTimeout must be >= 0"))
	}
	switch c.Store.Type {
	case StoreMemory:
	case StoreFs, StoreSqlite:
		if c.Store.Location == "" {
			errs = append(errs, fmt.Errorf("store.location is required for %v store", c.Store.Type))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported store.type: %q", c.Store.Type))
	}
	switch c.Queue.Vendor {
	case messaging.VendorMemory:
	case messaging.VendorFs:
		if c.Queue.BasePath == "" {
			errs = append(errs, fmt.Errorf("queue.basePath is required for fs queue"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported queue.vendor: %q", c.Queue.Vendor))
	}
	return errors.Join(errs...)
}

// Secret returns the Nevermined API key, revealing it from APIKeyURL when set
func (c *Config) Secret(ctx context.Context) (string, error) {
	if c.Nevermined.APIKey != "" {
		return c.Nevermined.APIKey, nil
	}
	if c.Nevermined.APIKeyURL == "" {
		return "", ErrMissingAPIKey
	}
	resource := scy.NewResource(nil, c.Nevermined.APIKeyURL, c.Nevermined.APIKeyCipher)
	secret, err := scy.New().Load(ctx, resource)
	if err != nil {
		return "", fmt.Errorf("failed to load api key from %s: %w", c.Nevermined.APIKeyURL, err)
	}
	return secret.String(), nil
}

// LoadConfig reads YAML configuration from any afs URL on top of DefaultConfig,
// ${env.KEY} expressions are expanded before decoding.
func LoadConfig(ctx context.Context, URL string) (*Config, error) {
	cfg := DefaultConfig()
	if err := meta.New(afs.New(), "").Load(ctx, URL, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %v: %w", URL, err)
	}
	return cfg, nil
}

package storyflow

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/viant/scy"
	"github.com/viant/storyflow/model"
	"github.com/viant/storyflow/service/messaging"
	"github.com/viant/storyflow/service/payments/memory"
	"github.com/viant/storyflow/service/protocol/local"
)

const charactersJSON = `[{"name":"Amy","hair":"red"},{"name":"Bo","hair":"black","eyes":"blue"}]`

func registerAgents(hub *local.Hub, cfg *Config, failImage string) {
	hub.RegisterAgent(cfg.ScriptGeneratorDid, local.AgentFunc(func(ctx context.Context, request *model.TaskRequest) (*local.Result, error) {
		return &local.Result{Output: "script for " + request.Query}, nil
	}))
	hub.RegisterAgent(cfg.CharacterExtractorDid, local.AgentFunc(func(ctx context.Context, request *model.TaskRequest) (*local.Result, error) {
		return &local.Result{Output: "characters", Artifacts: []interface{}{charactersJSON}}, nil
	}))
	hub.RegisterAgent(cfg.ImageGeneratorDid, local.AgentFunc(func(ctx context.Context, request *model.TaskRequest) (*local.Result, error) {
		if request.Query == failImage {
			return nil, errors.New("image failed")
		}
		return &local.Result{Output: "image", Artifacts: []interface{}{"img:" + request.Query}}, nil
	}))
}

func awaitTask(t *testing.T, srv *Service, taskID string) *model.TaskWithSteps {
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		record, err := srv.Hub().GetTaskWithSteps(context.Background(), "", taskID)
		if err == nil && record.Task.Status.IsTerminal() {
			return record
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("task %v did not finish", taskID)
	return nil
}

func runPipeline(t *testing.T, cfg *Config, failImage string) (*Service, *model.TaskWithSteps) {
	ledger := memory.New(memory.WithBalance(cfg.PlanDid, 10), memory.WithBalance(cfg.ImageGeneratorPlanDid, 10))
	srv, err := New(WithConfig(cfg), WithLedger(ledger))
	if !assert.NoError(t, err) {
		t.FailNow()
	}
	t.Cleanup(func() { _ = srv.Close() })
	registerAgents(srv.Hub(), cfg, failImage)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	initStep, err := srv.Hub().SubmitTask(ctx, cfg.AgentDid, "a fox and a crow")
	if !assert.NoError(t, err) {
		t.FailNow()
	}
	return srv, awaitTask(t, srv, initStep.TaskID)
}

func TestService_Pipeline(t *testing.T) {
	var testCases = []struct {
		description string
		config      func(t *testing.T) *Config
	}{
		{description: "memory store and queue", config: func(t *testing.T) *Config { return DefaultConfig() }},
		{description: "sqlite store and fs queue", config: func(t *testing.T) *Config {
			cfg := DefaultConfig()
			cfg.Store = StoreConfig{Type: StoreSqlite, Location: filepath.Join(t.TempDir(), "steps.db")}
			cfg.Queue = QueueConfig{Vendor: messaging.VendorFs, BasePath: filepath.Join(t.TempDir(), "queue"), MaxRetries: 1}
			return cfg
		}},
		{description: "fs store", config: func(t *testing.T) *Config {
			cfg := DefaultConfig()
			cfg.Store = StoreConfig{Type: StoreFs, Location: filepath.Join(t.TempDir(), "steps")}
			return cfg
		}},
	}
	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			srv, record := runPipeline(t, tc.config(t), "")
			assert.Equal(t, model.StatusCompleted, record.Task.Status)
			assert.Equal(t, "All image tasks completed.", record.Task.Output)
			assert.Equal(t, []interface{}{[]interface{}{"img:red"}, []interface{}{"img:black, blue"}}, record.Task.OutputArtifacts)
			if assert.Len(t, record.Steps, 4) {
				for _, aStep := range record.Steps {
					assert.Equal(t, model.StatusCompleted, aStep.Status, aStep.Name)
				}
				assert.Equal(t, "script for a fox and a crow", record.Steps[1].Output)
			}
			snapshot := srv.Progress()
			assert.GreaterOrEqual(t, snapshot.Dispatched, 4)
			assert.Equal(t, 0, snapshot.Failed)
		})
	}
}

func TestService_Pipeline_ImageFailure(t *testing.T) {
	srv, record := runPipeline(t, DefaultConfig(), "black, blue")
	assert.Equal(t, model.StatusFailed, record.Task.Status)
	assert.Equal(t, "One or more image tasks failed.", record.Task.Output)
	assert.Empty(t, record.Task.OutputArtifacts)

	var failure bool
	for _, entry := range srv.Hub().Logs(record.Task.TaskID) {
		if entry.Level == model.LogLevelError && strings.Contains(entry.Message, "Error during image tasks") {
			failure = true
		}
	}
	assert.True(t, failure)
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Workers = 0
	_, err := New(WithConfig(cfg))
	assert.Error(t, err)
}

func TestNew_APIKey(t *testing.T) {
	ctx := context.Background()
	secretURL := filepath.Join(t.TempDir(), "nvm-api-key")
	resource := scy.NewResource(nil, secretURL, "blowfish://default")
	if !assert.NoError(t, scy.New().Store(ctx, scy.NewSecret("revealed-key", resource))) {
		return
	}
	var testCases = []struct {
		description string
		nevermined  NeverminedConfig
		options     []Option
		expectKey   string
		expectErr   error
		hasError    bool
	}{
		{description: "local hub without key"},
		{description: "plain key", nevermined: NeverminedConfig{APIKey: "plain-key"}, expectKey: "plain-key"},
		{description: "secret url", nevermined: NeverminedConfig{APIKeyURL: secretURL, APIKeyCipher: "blowfish://default"}, expectKey: "revealed-key"},
		{description: "unreadable secret url", nevermined: NeverminedConfig{APIKeyURL: filepath.Join(t.TempDir(), "missing"), APIKeyCipher: "blowfish://default"}, hasError: true},
		{description: "external protocol requires key", options: []Option{WithProtocol(local.New())}, expectErr: ErrMissingAPIKey},
	}
	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Nevermined = tc.nevermined
			cfg.Nevermined.Environment = "testing"
			srv, err := New(append([]Option{WithConfig(cfg)}, tc.options...)...)
			if tc.expectErr != nil {
				assert.ErrorIs(t, err, tc.expectErr)
				return
			}
			if tc.hasError {
				assert.Error(t, err)
				return
			}
			if !assert.NoError(t, err) {
				return
			}
			defer srv.Close()
			assert.Equal(t, tc.expectKey, srv.APIKey())
		})
	}
}

package storyflow

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/viant/afs"
	"github.com/viant/scy"
	"github.com/viant/storyflow/service/messaging"
)

func TestConfig_Validate(t *testing.T) {
	var testCases = []struct {
		description string
		mutate      func(c *Config)
		expectErr   bool
	}{
		{description: "default config", mutate: func(c *Config) {}},
		{description: "missing agent did", mutate: func(c *Config) { c.ImageGeneratorDid = "" }, expectErr: true},
		{description: "no workers", mutate: func(c *Config) { c.Workers = 0 }, expectErr: true},
		{description: "fs store without location", mutate: func(c *Config) { c.Store.Type = StoreFs }, expectErr: true},
		{description: "sqlite store", mutate: func(c *Config) { c.Store = StoreConfig{Type: StoreSqlite, Location: "steps.db"} }},
		{description: "unknown store", mutate: func(c *Config) { c.Store.Type = "redis" }, expectErr: true},
		{description: "fs queue without base path", mutate: func(c *Config) { c.Queue.Vendor = messaging.VendorFs }, expectErr: true},
		{description: "unknown queue", mutate: func(c *Config) { c.Queue.Vendor = "kafka" }, expectErr: true},
	}
	for _, tc := range testCases {
		cfg := DefaultConfig()
		tc.mutate(cfg)
		err := cfg.Validate()
		if tc.expectErr {
			assert.Error(t, err, tc.description)
			continue
		}
		assert.NoError(t, err, tc.description)
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storyflow.yaml")
	content := `agentDid: did:nv:custom
workers: 2
delegateTimeout: 30s
nevermined:
  environment: staging
  apiKey: ${env.STORYFLOW_TEST_NVM_API_KEY}
store:
  type: sqlite
  location: /tmp/storyflow/steps.db
`
	t.Setenv("STORYFLOW_TEST_NVM_API_KEY", "secret-key")
	ctx := context.Background()
	assert.NoError(t, os.WriteFile(path, []byte(content), 0644))
	cfg, err := LoadConfig(ctx, path)
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, "did:nv:custom", cfg.AgentDid)
	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, 30*time.Second, cfg.DelegateTimeout)
	assert.Equal(t, "staging", cfg.Nevermined.Environment)
	assert.Equal(t, StoreSqlite, cfg.Store.Type)
	assert.Equal(t, DefaultConfig().ScriptGeneratorDid, cfg.ScriptGeneratorDid)

	assert.Equal(t, "secret-key", cfg.Nevermined.APIKey)

	memURL := "mem://localhost/storyflow/config.yaml"
	assert.NoError(t, afs.New().Upload(ctx, memURL, 0644, strings.NewReader("agentDid: did:nv:memory\n")))
	cfg, err = LoadConfig(ctx, memURL)
	if assert.NoError(t, err) {
		assert.Equal(t, "did:nv:memory", cfg.AgentDid)
		assert.Equal(t, DefaultConfig().Workers, cfg.Workers)
	}

	_, err = LoadConfig(ctx, filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	invalid := filepath.Join(t.TempDir(), "invalid.yaml")
	assert.NoError(t, os.WriteFile(invalid, []byte("workers: 0\n"), 0644))
	_, err = LoadConfig(ctx, invalid)
	assert.Error(t, err)
}

func TestConfig_Secret(t *testing.T) {
	ctx := context.Background()
	cfg := DefaultConfig()
	_, err := cfg.Secret(ctx)
	assert.ErrorIs(t, err, ErrMissingAPIKey)

	cfg.Nevermined.APIKey = "plain"
	key, err := cfg.Secret(ctx)
	assert.NoError(t, err)
	assert.Equal(t, "plain", key)

	secretURL := filepath.Join(t.TempDir(), "nvm-api-key")
	resource := scy.NewResource(nil, secretURL, "blowfish://default")
	if !assert.NoError(t, scy.New().Store(ctx, scy.NewSecret("encrypted-key", resource))) {
		return
	}
	cfg.Nevermined = NeverminedConfig{APIKeyURL: secretURL, APIKeyCipher: "blowfish://default"}
	key, err = cfg.Secret(ctx)
	assert.NoError(t, err)
	assert.Equal(t, "encrypted-key", key)
}

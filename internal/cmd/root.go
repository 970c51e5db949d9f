// Package cmd implements the storyflow command line.
package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/viant/afs"
	"github.com/viant/storyflow"
	"github.com/viant/storyflow/service/meta"
)

const envPrefix = "STORYFLOW"

// legacyEnv maps config keys to environment variables used by existing deployments
var legacyEnv = map[string]string{
	"agentDid":               "THIS_AGENT_DID",
	"planDid":                "THIS_PLAN_DID",
	"scriptGeneratorDid":     "SCRIPT_GENERATOR_DID",
	"characterExtractorDid":  "CHARACTER_EXTRACTOR_DID",
	"imageGeneratorDid":      "IMAGE_GENERATOR_DID",
	"imageGeneratorPlanDid":  "IMAGE_GENERATOR_PLAN_DID",
	"nevermined.apiKey":      "NVM_API_KEY",
	"nevermined.environment": "NVM_ENVIRONMENT",
}

// Execute runs the root command
func Execute() error {
	return NewRootCommand().Execute()
}

// NewRootCommand creates the storyflow command tree
func NewRootCommand() *cobra.Command {
	v := viper.New()
	rootCmd := &cobra.Command{
		Use:   "storyflow",
		Short: "Storyboard orchestrator agent",
		Long: `Storyflow turns a story prompt into a script, a character list and
one image per character by delegating each step to a sub-agent.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(cmd.Context(), v)
		},
	}
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file or URL (default is ./storyflow.yaml)")
	rootCmd.PersistentFlags().String("env-file", ".env", "dotenv file exported before configuration is read")
	_ = v.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = v.BindPFlag("envFile", rootCmd.PersistentFlags().Lookup("env-file"))

	rootCmd.AddCommand(newRunCommand(v))
	rootCmd.AddCommand(newConfigCommand(v))
	return rootCmd
}

func initConfig(ctx context.Context, v *viper.Viper) error {
	if err := loadDotEnv(v.GetString("envFile"), v.IsSet("envFile")); err != nil {
		return err
	}
	setDefaults(v)
	v.AutomaticEnv()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for key, env := range legacyEnv {
		_ = v.BindEnv(key, envPrefix+"_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env)
	}
	if cfgURL := v.GetString("config"); cfgURL != "" {
		data, err := meta.New(afs.New(), "").Download(ctx, cfgURL)
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}
		v.SetConfigType(configType(cfgURL))
		if err = v.ReadConfig(bytes.NewReader(data)); err != nil {
			return fmt.Errorf("failed to parse config %v: %w", cfgURL, err)
		}
		return nil
	}
	v.SetConfigName("storyflow")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/storyflow")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}
	return nil
}

func configType(URL string) string {
	if ext := strings.TrimPrefix(path.Ext(URL), "."); ext != "" {
		return ext
	}
	return "yaml"
}

// loadDotEnv exports variables from a dotenv file without overriding variables already set.
// A missing file is an error only when it was requested explicitly.
func loadDotEnv(location string, explicit bool) error {
	if location == "" {
		return nil
	}
	if _, err := os.Stat(location); err != nil {
		if os.IsNotExist(err) && !explicit {
			return nil
		}
		return fmt.Errorf("failed to read env file: %w", err)
	}
	dotenv := viper.New()
	dotenv.SetConfigFile(location)
	dotenv.SetConfigType("env")
	if err := dotenv.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to parse env file %v: %w", location, err)
	}
	for _, key := range dotenv.AllKeys() {
		name := strings.ToUpper(key)
		if os.Getenv(name) != "" {
			continue
		}
		if err := os.Setenv(name, dotenv.GetString(key)); err != nil {
			return err
		}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	defaults := storyflow.DefaultConfig()
	v.SetDefault("agentDid", defaults.AgentDid)
	v.SetDefault("planDid", defaults.PlanDid)
	v.SetDefault("scriptGeneratorDid", defaults.ScriptGeneratorDid)
	v.SetDefault("characterExtractorDid", defaults.CharacterExtractorDid)
	v.SetDefault("imageGeneratorDid", defaults.ImageGeneratorDid)
	v.SetDefault("imageGeneratorPlanDid", defaults.ImageGeneratorPlanDid)
	v.SetDefault("nevermined.environment", defaults.Nevermined.Environment)
	v.SetDefault("nevermined.apiKey", "")
	v.SetDefault("nevermined.apiKeyURL", "")
	v.SetDefault("nevermined.apiKeyCipher", "")
	v.SetDefault("workers", defaults.Workers)
	v.SetDefault("delegateTimeout", defaults.DelegateTimeout)
	v.SetDefault("store.type", defaults.Store.Type)
	v.SetDefault("store.location", defaults.Store.Location)
	v.SetDefault("queue.vendor", string(defaults.Queue.Vendor))
	v.SetDefault("queue.basePath", defaults.Queue.BasePath)
	v.SetDefault("queue.maxRetries", defaults.Queue.MaxRetries)
	v.SetDefault("tracing.enabled", defaults.Tracing.Enabled)
	v.SetDefault("tracing.outputFile", defaults.Tracing.OutputFile)
	v.SetDefault("log.level", defaults.Log.Level)
	v.SetDefault("log.file", defaults.Log.File)
}

// loadConfig reads the configuration from viper into a Config and validates it
func loadConfig(v *viper.Viper) (*storyflow.Config, error) {
	cfg := storyflow.DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

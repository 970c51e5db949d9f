package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/viant/storyflow"
	"github.com/viant/storyflow/internal/logging"
	"github.com/viant/storyflow/model"
	"github.com/viant/storyflow/service/payments/memory"
)

const serviceName = "storyflow"

var version = "dev"

func newRunCommand(v *viper.Viper) *cobra.Command {
	var (
		query   string
		credits int
		demo    bool
		wait    time.Duration
	)
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the orchestrator",
		Long: `Run routes step notifications until interrupted. With --query a task is
submitted to the local hub and the command exits once it finishes.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(v)
			if err != nil {
				return err
			}
			logger, closer, err := logging.Open(cfg.Log.File, cfg.Log.Level)
			if err != nil {
				return err
			}
			defer closer.Close()

			ledger := memory.New(memory.WithBalance(cfg.PlanDid, credits), memory.WithBalance(cfg.ImageGeneratorPlanDid, credits))
			options := []storyflow.Option{storyflow.WithConfig(cfg), storyflow.WithLogger(logger), storyflow.WithLedger(ledger)}
			if cfg.Tracing.Enabled {
				options = append(options, storyflow.WithTracing(serviceName, version, cfg.Tracing.OutputFile))
			}
			srv, err := storyflow.New(options...)
			if err != nil {
				return err
			}
			defer srv.Close()
			if demo || query != "" {
				registerDemoAgents(srv.Hub(), cfg)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			ctx, cancel := context.WithCancel(ctx)
			defer cancel()
			done := make(chan error, 1)
			go func() { done <- srv.Run(ctx) }()

			if query == "" {
				return <-done
			}
			record, err := submit(ctx, srv, query, wait)
			cancel()
			if runErr := <-done; err == nil {
				err = runErr
			}
			if err != nil {
				return err
			}
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			return encoder.Encode(record)
		},
	}
	runCmd.Flags().StringVarP(&query, "query", "q", "", "story prompt to submit")
	runCmd.Flags().IntVar(&credits, "credits", 100, "initial plan balance")
	runCmd.Flags().BoolVar(&demo, "demo", false, "register built-in demo sub-agents")
	runCmd.Flags().DurationVar(&wait, "wait", 5*time.Minute, "maximum time to wait for a submitted task")
	return runCmd
}

func submit(ctx context.Context, srv *storyflow.Service, query string, wait time.Duration) (*model.TaskWithSteps, error) {
	initStep, err := srv.Hub().SubmitTask(ctx, srv.Config().AgentDid, query)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("task %v did not finish: %w", initStep.TaskID, ctx.Err())
		case <-ticker.C:
		}
		record, err := srv.Hub().GetTaskWithSteps(ctx, "", initStep.TaskID)
		if err != nil {
			return nil, err
		}
		if record.Task.Status.IsTerminal() {
			return record, nil
		}
	}
}

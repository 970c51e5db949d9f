// Package storyflow orchestrates the storyboard pipeline. A task submitted to
// the orchestrator agent starts with an init step that creates the script,
// character extraction and character image steps; each step is delegated to a
// sub-agent and advances once the sub-agent reports completion.
//
// End-users typically interact with the orchestrator via the Service facade:
//
//	cfg, _ := storyflow.LoadConfig(ctx, "file:///etc/storyflow/storyflow.yaml")
//	srv, _ := storyflow.New(storyflow.WithConfig(cfg))
//	defer srv.Close()
//	_ = srv.Run(ctx)
//
// Without an explicit protocol the service runs an in-process hub
// (see service/protocol/local) configured from Config.Store and Config.Queue.
package storyflow

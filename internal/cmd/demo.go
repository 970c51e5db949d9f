package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/viant/storyflow"
	"github.com/viant/storyflow/model"
	"github.com/viant/storyflow/service/protocol/local"
)

// registerDemoAgents installs deterministic sub-agents on the hub
func registerDemoAgents(hub *local.Hub, cfg *storyflow.Config) {
	hub.RegisterAgent(cfg.ScriptGeneratorDid, local.AgentFunc(func(ctx context.Context, request *model.TaskRequest) (*local.Result, error) {
		return &local.Result{Output: "Once upon a time: " + request.Query}, nil
	}))
	hub.RegisterAgent(cfg.CharacterExtractorDid, local.AgentFunc(func(ctx context.Context, request *model.TaskRequest) (*local.Result, error) {
		characters := []map[string]string{}
		for _, word := range strings.Fields(request.Query) {
			if len(word) > 1 && strings.ToUpper(word[:1]) == word[:1] {
				characters = append(characters, map[string]string{"name": strings.Trim(word, ".,:;!?"), "description": "a character named " + word})
			}
		}
		data, err := json.Marshal(characters)
		if err != nil {
			return nil, err
		}
		return &local.Result{Output: fmt.Sprintf("%d characters", len(characters)), Artifacts: []interface{}{string(data)}}, nil
	}))
	hub.RegisterAgent(cfg.ImageGeneratorDid, local.AgentFunc(func(ctx context.Context, request *model.TaskRequest) (*local.Result, error) {
		return &local.Result{Output: "image", Artifacts: []interface{}{"https://images.example/" + strings.ReplaceAll(request.Query, " ", "-") + ".png"}}, nil
	}))
}

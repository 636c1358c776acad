package main

import (
	"context"
	"fmt"

	"github.com/radha-ai/radha/internal/assistant"
	"github.com/radha-ai/radha/internal/llm/provider"
	localrt "github.com/radha-ai/radha/internal/llm/runtime/local"
	"github.com/radha-ai/radha/internal/llm/selector"
	"github.com/radha-ai/radha/pkg/config"
	"github.com/radha-ai/radha/pkg/observability"
	"github.com/radha-ai/radha/pkg/session"
)

// app is the composition root: configuration, both adapters, and the
// assistant wired over them.
type app struct {
	cfg       *config.Config
	assistant *assistant.Assistant
	store     *session.Store
	health    *observability.HealthChecker
	local     provider.Adapter
	cloud     provider.Adapter
}

func buildApp(ctx context.Context) (*app, error) {
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		return nil, err
	}
	if modelFlag != "" {
		cfg.DefaultModel = modelFlag
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	local := provider.NewLocalAdapter(provider.LocalConfig{
		ModelPath:  cfg.LocalModelPath,
		RuntimeURL: cfg.LocalRuntimeURL,
		Device:     cfg.PreferredDevice,
	})

	var cloud provider.Adapter
	switch cfg.CloudProvider {
	case "bedrock":
		cloud, err = provider.NewBedrockAdapter(ctx, provider.BedrockConfig{
			Region:  cfg.AWSRegion,
			ModelID: cfg.CloudModel,
		})
		if err != nil {
			return nil, fmt.Errorf("bedrock adapter: %w", err)
		}
	default:
		cloud = provider.NewGroqAdapter(provider.GroqConfig{
			APIKey: cfg.GroqAPIKey,
			Model:  cfg.CloudModel,
		})
	}

	store := session.NewStore()
	a := assistant.New(selector.New(local, cloud), store, assistant.Options{
		HistoryTurns: cfg.HistoryTurns,
		MaxTokens:    cfg.MaxTokens,
		Temperature:  cfg.Temperature,
	})

	runtimeClient, err := localrt.NewClient(cfg.LocalRuntimeURL)
	if err != nil {
		return nil, fmt.Errorf("local runtime client: %w", err)
	}

	health := observability.NewHealthChecker()
	health.RegisterCheck(observability.LocalBackendCheck("local", local.Available, runtimeClient.Reachable))
	health.RegisterCheck(observability.BackendCheck("cloud", cloud.Available))

	return &app{
		cfg:       cfg,
		assistant: a,
		store:     store,
		health:    health,
		local:     local,
		cloud:     cloud,
	}, nil
}

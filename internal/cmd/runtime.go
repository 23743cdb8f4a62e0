package cmd

import (
	"fmt"

	"github.com/foxholm/foxholm/internal/config"
	"github.com/foxholm/foxholm/internal/gateway"
	"github.com/foxholm/foxholm/internal/gateway/gemini"
	"github.com/foxholm/foxholm/internal/gateway/together"
	"github.com/foxholm/foxholm/internal/processing"
	"github.com/foxholm/foxholm/internal/prompt"
	"github.com/foxholm/foxholm/internal/tool"
)

// newGateway builds the provider client named by the configuration.
func newGateway(cfg *config.Config) (gateway.Gateway, error) {
	switch cfg.Gateway.Provider {
	case config.ProviderTogether:
		client := together.NewClient(cfg.Gateway.Together.BaseURL, cfg.Gateway.Together.APIKey)
		client.Timeout = cfg.Gateway.Timeout
		return client, nil
	case config.ProviderGemini:
		client := gemini.NewClient(cfg.Gateway.Gemini.APIKey, cfg.Gateway.Gemini.Model)
		client.Timeout = cfg.Gateway.Timeout
		return client, nil
	default:
		return nil, fmt.Errorf("unsupported gateway provider %q", cfg.Gateway.Provider)
	}
}

// newProcessor wires the registry, prompt generator and gateway.
func newProcessor(cfg *config.Config) (*processing.Processor, error) {
	registry, err := tool.DefaultRegistry()
	if err != nil {
		return nil, fmt.Errorf("load tool registry: %w", err)
	}
	gw, err := newGateway(cfg)
	if err != nil {
		return nil, err
	}
	return processing.New(registry, prompt.New(), gw, cfg.ProcessorConfig()), nil
}

// enableConfiguredTracing turns on provider tracing from the config file
// unless --trace already did.
func enableConfiguredTracing(cfg *config.Config) error {
	if cfg.Gateway.TraceFile == "" || gateway.IsTracingEnabled() {
		return nil
	}
	_, err := gateway.EnableTracing(cfg.Gateway.TraceFile)
	return err
}

package handlers

import (
	"context"
	"fmt"

	"github.com/foxholm/foxholm/internal/tool"
)

// RegistryCheck fails when the registry holds no tools.
type RegistryCheck struct {
	Registry *tool.Registry
}

func (c RegistryCheck) CheckHealth(context.Context) error {
	if c.Registry == nil || len(c.Registry.IDs()) == 0 {
		return fmt.Errorf("no tools registered")
	}
	return nil
}

// ProviderCheck is always healthy but warns when the provider has no
// credentials, matching a service that starts before keys are provisioned.
type ProviderCheck struct {
	Provider   string
	Configured bool
}

func (c ProviderCheck) CheckHealth(context.Context) error { return nil }

func (c ProviderCheck) Warnings() []string {
	if c.Configured {
		return nil
	}
	switch c.Provider {
	case "together":
		return []string{"Together AI API key not configured"}
	default:
		return []string{fmt.Sprintf("%s API key not configured", c.Provider)}
	}
}

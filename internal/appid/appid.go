// Package appid resolves the application identity.
package appid

import (
	"context"
	"os"

	"github.com/fulmenhq/gofulmen/appidentity"
)

// Default is the identity used when no .fulmen/app.yaml is found.
var Default = appidentity.Identity{
	BinaryName:  "foxholm",
	Vendor:      "foxholm",
	EnvPrefix:   "FOXHOLM_",
	ConfigName:  "foxholm",
	Description: "Subdomain-routed AI image tools",
}

// Get returns the identity from .fulmen/app.yaml when one is discoverable,
// falling back to Default. An explicit FULMEN_APP_IDENTITY_PATH stays
// authoritative: if it points nowhere the error is returned.
func Get(ctx context.Context) (*appidentity.Identity, error) {
	identity, err := appidentity.Get(ctx)
	if err == nil && identity != nil {
		return identity, nil
	}
	if os.Getenv(appidentity.EnvIdentityPath) != "" {
		return nil, err
	}
	fallback := Default
	return &fallback, nil
}

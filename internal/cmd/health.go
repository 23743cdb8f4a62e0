package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	errwrap "github.com/foxholm/foxholm/internal/errors"
	"github.com/foxholm/foxholm/internal/observability"
	"github.com/foxholm/foxholm/internal/tool"
)

const remoteHealthTimeout = 5 * time.Second

var healthRemote bool

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Run self-health check",
	Long: `Run a self-health check to verify the application can start successfully.

With --remote, probe /api/health of a running server instead. The host is
taken from HEALTH_CHECK_HOST (default localhost) and the port from the
server configuration.`,
	Run: func(cmd *cobra.Command, args []string) {
		if healthRemote {
			runRemoteHealth(cmd.Context())
			return
		}

		observability.CLILogger.Info("Running health check...")

		if versionInfo.Version == "" {
			observability.CLILogger.Error("❌ FAIL: Version information missing")
			ExitWithCode(observability.CLILogger, foundry.ExitConfigInvalid, "Version information missing", errwrap.NewConfigInvalidError("Version information missing"))
			return
		}
		observability.CLILogger.Debug("Version check passed", zap.String("version", versionInfo.Version))
		observability.CLILogger.Info("✅ Version information available")

		cfg, err := loadConfig()
		if err != nil {
			ExitWithCode(observability.CLILogger, foundry.ExitConfigInvalid, "Configuration invalid", err)
			return
		}
		observability.CLILogger.Info("✅ Configuration valid")

		registry, err := tool.DefaultRegistry()
		if err != nil {
			ExitWithCode(observability.CLILogger, foundry.ExitConfigInvalid, "Tool registry failed to load", err)
			return
		}
		observability.CLILogger.Info("✅ Tool registry loaded", zap.Strings("tools", registry.IDs()))

		if cfg.APIKey() == "" {
			observability.CLILogger.Warn("⚠️  Image provider API key not configured", zap.String("provider", cfg.Gateway.Provider))
		} else {
			observability.CLILogger.Info("✅ Image provider configured", zap.String("provider", cfg.Gateway.Provider))
		}

		observability.CLILogger.Info("")
		observability.CLILogger.Info("✅ All health checks passed")
	},
}

// remoteHealthURL builds the probe URL for a running server.
func remoteHealthURL(port int) string {
	host := os.Getenv("HEALTH_CHECK_HOST")
	if host == "" {
		host = "localhost"
	}
	return fmt.Sprintf("http://%s:%d/api/health", host, port)
}

// probeHealth fetches url and returns the reported status.
func probeHealth(ctx context.Context, client *http.Client, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	var body struct {
		Status string `json:"status"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&body)
	if resp.StatusCode != http.StatusOK {
		return body.Status, fmt.Errorf("health endpoint returned %d", resp.StatusCode)
	}
	return body.Status, nil
}

func runRemoteHealth(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := loadConfig()
	if err != nil {
		ExitWithCode(observability.CLILogger, foundry.ExitConfigInvalid, "Configuration invalid", err)
		return
	}

	url := remoteHealthURL(cfg.Server.Port)
	status, err := probeHealth(ctx, &http.Client{Timeout: remoteHealthTimeout}, url)
	if err != nil {
		ExitWithCode(observability.CLILogger, foundry.ExitFailure, "Remote health check failed", errwrap.WrapInternal(ctx, err, url))
		return
	}
	observability.CLILogger.Info("✅ Server healthy", zap.String("url", url), zap.String("status", status))
}

func init() {
	rootCmd.AddCommand(healthCmd)
	healthCmd.Flags().BoolVar(&healthRemote, "remote", false, "probe a running server instead of checking locally")
}

// Package config loads Foxholm settings through viper and decodes them into
// typed structs.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"

	gfconfig "github.com/fulmenhq/gofulmen/config"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// Supported gateway providers.
const (
	ProviderTogether = "together"
	ProviderGemini   = "gemini"
)

var (
	appConfig *Config
	configMu  sync.RWMutex
)

// legacyEnv maps config keys to the unprefixed variables older deployments
// set. Prefixed variables always win.
var legacyEnv = map[string][]string{
	"server.port":              {"PORT"},
	"site.domain":              {"DOMAIN"},
	"site.environment":         {"NODE_ENV"},
	"gateway.together.api_key": {"TOGETHER_API_KEY"},
	"gateway.gemini.api_key":   {"GEMINI_API_KEY"},
}

// SetDefaults registers every key with its default value. Keys must be known
// to viper for environment variables to reach them.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 3001)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "150s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.max_body_bytes", 15<<20)

	v.SetDefault("site.domain", "foxholm.com")
	v.SetDefault("site.environment", "development")

	v.SetDefault("images.max_bytes", 10<<20)
	v.SetDefault("images.max_dimension", 8192)
	v.SetDefault("images.allowed_types", []string{"image/png", "image/jpeg", "image/webp"})
	v.SetDefault("images.max_source_dimension", 2048)

	v.SetDefault("processing.max_output_dimension", 4096)
	v.SetDefault("processing.steps", 39)

	v.SetDefault("gateway.provider", ProviderTogether)
	v.SetDefault("gateway.timeout", "120s")
	v.SetDefault("gateway.trace_file", "")
	v.SetDefault("gateway.together.api_key", "")
	v.SetDefault("gateway.together.base_url", "https://api.together.xyz/v1")
	v.SetDefault("gateway.gemini.api_key", "")
	v.SetDefault("gateway.gemini.model", "gemini-2.5-flash-image")

	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.max_age", 600)

	v.SetDefault("logging.level", "info")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9090)

	v.SetDefault("health.enabled", true)
}

// BindEnv maps PREFIX_SECTION_KEY variables onto config keys and adds the
// legacy unprefixed names.
func BindEnv(v *viper.Viper, prefix string) error {
	prefix = strings.TrimSuffix(prefix, "_")
	v.SetEnvPrefix(prefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, names := range legacyEnv {
		primary := strings.ToUpper(prefix + "_" + strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(append([]string{key, primary}, names...)...); err != nil {
			return fmt.Errorf("bind %s: %w", key, err)
		}
	}
	return nil
}

// ReadFile loads path, or the first user config found for configName when
// path is empty. A missing user config is not an error.
func ReadFile(v *viper.Viper, path, configName string) (string, error) {
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return "", fmt.Errorf("read config %s: %w", path, err)
		}
		return v.ConfigFileUsed(), nil
	}

	for _, candidate := range UserConfigPaths(configName) {
		v.SetConfigFile(candidate)
		err := v.ReadInConfig()
		if err == nil {
			return v.ConfigFileUsed(), nil
		}
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
			continue
		}
		return "", fmt.Errorf("read config %s: %w", candidate, err)
	}
	return "", nil
}

// UserConfigPaths lists the XDG config files checked for configName.
func UserConfigPaths(configName string) []string {
	var out []string
	for _, p := range gfconfig.GetAppConfigPaths(configName) {
		if filepath.Ext(p) == "" {
			p = filepath.Join(p, "config.yaml")
		}
		out = append(out, p)
	}
	return out
}

// DefaultConfigPath returns the XDG path of the user config file.
func DefaultConfigPath(configName string) string {
	dir := gfconfig.GetAppConfigDir(configName)
	if strings.TrimSpace(dir) == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load decodes the settings held by v, validates them and stores the result
// for GetConfig.
func Load(v *viper.Viper) (*Config, error) {
	cfg, err := Decode(v.AllSettings())
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	setConfig(cfg)
	return cfg, nil
}

// Decode converts a settings map into Config.
func Decode(settings map[string]any) (*Config, error) {
	cfg := &Config{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return nil, fmt.Errorf("create decoder: %w", err)
	}
	if err := decoder.Decode(settings); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.Gateway.Provider = strings.ToLower(strings.TrimSpace(cfg.Gateway.Provider))
	cfg.Site.Domain = strings.ToLower(strings.TrimSpace(cfg.Site.Domain))
	return cfg, nil
}

// GetConfig returns the most recently loaded configuration.
func GetConfig() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return appConfig
}

func setConfig(cfg *Config) {
	configMu.Lock()
	defer configMu.Unlock()
	appConfig = cfg
}

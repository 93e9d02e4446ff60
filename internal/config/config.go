// Package config provides configuration loading for the modcache CLI and
// parsing of the tools config file every registry carries at its root.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"github.com/zalando/go-keyring"
	"gopkg.in/yaml.v3"

	"github.com/nf-core/modcache/internal/telemetry"
)

const (
	// EnvPrefix is the prefix for environment variables read through viper
	EnvPrefix = "MODCACHE"

	// HideProgressEnv hides progress bars whenever it is set, whatever its value
	HideProgressEnv = "HIDE_PROGRESS"

	// KeyringService is the system keyring service holding git passwords
	KeyringService = "modcache"

	// cacheDirName is the directory under the user config dir holding registry caches
	cacheDirName = "nfcore"
)

// Recovery policies for a corrupted local cache
const (
	// RecoveryRetryOnce deletes the cache after confirmation and retries once
	RecoveryRetryOnce = "retry-once"

	// RecoveryFailFast reports the corruption without touching the cache
	RecoveryFailFast = "fail-fast"

	// RecoveryAlwaysDelete deletes the cache without asking and retries once
	RecoveryAlwaysDelete = "always-delete"
)

// Viper keys, shared with the CLI flag names
const (
	KeyCacheDir        = "cache-dir"
	KeyRemote          = "remote"
	KeyBranch          = "branch"
	KeyNoPull          = "no-pull"
	KeyHideProgress    = "hide-progress"
	KeyRecovery        = "recovery"
	KeyNetworkAttempts = "network-attempts"
)

// Option defines the interface for configuration options
type Option func(*loaderConfig) error

// loaderConfig defines the configuration for loading a configuration
type loaderConfig struct {
	path string
	v    *viper.Viper
}

// WithConfigPath loads configuration from a YAML file
func WithConfigPath(path string) Option {
	return func(cfg *loaderConfig) error {
		if path == "" {
			return fmt.Errorf("path is required")
		}

		// Resolve symlinks to prevent symlink attacks.
		// Note that this calls filepath.Clean internally.
		realPath, err := filepath.EvalSymlinks(path)
		if err != nil {
			return fmt.Errorf("failed to evaluate symlinks: %w", err)
		}

		// Validate the path to prevent path traversal attacks
		if !filepath.IsAbs(realPath) {
			if !filepath.IsLocal(realPath) {
				return fmt.Errorf("path is not local or contains invalid traversal: %s", path)
			}
		}

		cfg.path = realPath
		return nil
	}
}

// WithViper overlays values that were explicitly set through flags or
// MODCACHE_* environment variables
func WithViper(v *viper.Viper) Option {
	return func(cfg *loaderConfig) error {
		if v == nil {
			return fmt.Errorf("viper instance is required")
		}
		cfg.v = v
		return nil
	}
}

// Config represents the root configuration structure
type Config struct {
	// CacheDir is the root under which one working copy per registry is kept
	CacheDir string `yaml:"cacheDir,omitempty"`

	// Remote is the registry URL used when none is given on the command line
	Remote string `yaml:"remote,omitempty"`

	// Branch is the registry branch; empty means the remote default
	Branch string `yaml:"branch,omitempty"`

	// NoPull skips fetching registries that are already cached
	NoPull bool `yaml:"noPull,omitempty"`

	// HideProgress disables progress rendering
	HideProgress bool `yaml:"hideProgress,omitempty"`

	// Recovery is the policy applied to a corrupted cache
	Recovery string `yaml:"recovery,omitempty"`

	// NetworkAttempts is how many times clone/fetch/ls-remote are tried
	NetworkAttempts uint `yaml:"networkAttempts,omitempty"`

	// Auth holds optional credentials for private registries
	Auth *AuthConfig `yaml:"auth,omitempty"`

	// Telemetry configures OTLP export of cache metrics and traces
	Telemetry *telemetry.Config `yaml:"telemetry,omitempty"`
}

// AuthConfig defines HTTP basic credentials for registry remotes
type AuthConfig struct {
	Username string `yaml:"username"`

	// PasswordFile is the path to a file containing the password
	PasswordFile string `yaml:"passwordFile,omitempty"`
}

// GetPassword returns the password using the following priority:
// 1. Read from PasswordFile if specified
// 2. Read from MODCACHE_GIT_PASSWORD environment variable
// 3. Look up the username in the system keyring
func (a *AuthConfig) GetPassword() (string, error) {
	if a.PasswordFile != "" {
		cleanPath := filepath.Clean(a.PasswordFile)

		data, err := os.ReadFile(cleanPath)
		if err != nil {
			return "", fmt.Errorf("failed to read password from file %s: %w", a.PasswordFile, err)
		}
		return strings.TrimSpace(string(data)), nil
	}

	if envPassword := os.Getenv(EnvPrefix + "_GIT_PASSWORD"); envPassword != "" {
		return envPassword, nil
	}

	secret, err := keyring.Get(KeyringService, a.Username)
	if err == nil {
		return secret, nil
	}
	if !errors.Is(err, keyring.ErrNotFound) {
		slog.Debug("System keyring unavailable", "service", KeyringService, "error", err)
	}

	return "", fmt.Errorf(
		"no git password configured: set passwordFile, %s_GIT_PASSWORD or a %q keyring entry", EnvPrefix, KeyringService,
	)
}

// Default returns the configuration used when nothing is overridden
func Default() *Config {
	return &Config{
		CacheDir:        DefaultCacheDir(),
		Recovery:        RecoveryRetryOnce,
		NetworkAttempts: 3,
	}
}

// DefaultCacheDir returns $XDG_CONFIG_HOME/nfcore (or the platform equivalent)
func DefaultCacheDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = filepath.Join(os.TempDir(), ".config")
	}
	return filepath.Join(dir, cacheDirName)
}

// NewViper returns a viper instance reading MODCACHE_* environment variables
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	return v
}

// LoadConfig builds the configuration from defaults, an optional YAML file
// and viper overrides, in increasing order of precedence
func LoadConfig(opts ...Option) (*Config, error) {
	loaderCfg := &loaderConfig{}
	for _, opt := range opts {
		if err := opt(loaderCfg); err != nil {
			return nil, err
		}
	}

	config := Default()

	if loaderCfg.path != "" {
		data, err := os.ReadFile(loaderCfg.path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	}

	if loaderCfg.v != nil {
		applyViper(config, loaderCfg.v)
	}

	if _, ok := os.LookupEnv(HideProgressEnv); ok {
		config.HideProgress = true
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

func applyViper(config *Config, v *viper.Viper) {
	if v.IsSet(KeyCacheDir) {
		config.CacheDir = v.GetString(KeyCacheDir)
	}
	if v.IsSet(KeyRemote) {
		config.Remote = v.GetString(KeyRemote)
	}
	if v.IsSet(KeyBranch) {
		config.Branch = v.GetString(KeyBranch)
	}
	if v.IsSet(KeyNoPull) {
		config.NoPull = v.GetBool(KeyNoPull)
	}
	if v.IsSet(KeyHideProgress) {
		config.HideProgress = v.GetBool(KeyHideProgress)
	}
	if v.IsSet(KeyRecovery) {
		config.Recovery = v.GetString(KeyRecovery)
	}
	if v.IsSet(KeyNetworkAttempts) {
		config.NetworkAttempts = v.GetUint(KeyNetworkAttempts)
	}
}

// Validate performs validation on the configuration
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("config cannot be nil")
	}

	if c.CacheDir == "" {
		return fmt.Errorf("cacheDir is required")
	}

	switch c.Recovery {
	case RecoveryRetryOnce, RecoveryFailFast, RecoveryAlwaysDelete:
	default:
		return fmt.Errorf("recovery must be one of %s, %s or %s, got %q",
			RecoveryRetryOnce, RecoveryFailFast, RecoveryAlwaysDelete, c.Recovery)
	}

	if c.NetworkAttempts == 0 {
		return fmt.Errorf("networkAttempts must be at least 1")
	}

	if c.Auth != nil && c.Auth.Username == "" {
		return fmt.Errorf("auth.username is required when auth is configured")
	}

	if err := c.Telemetry.Validate(); err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}

	return nil
}

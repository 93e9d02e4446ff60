package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nf-core/modcache/internal/config"
	"github.com/nf-core/modcache/internal/git"
	"github.com/nf-core/modcache/internal/registry"
	"github.com/nf-core/modcache/internal/session"
	"github.com/nf-core/modcache/internal/telemetry"
	"github.com/nf-core/modcache/internal/tui"
	"github.com/nf-core/modcache/internal/versions"
)

const tracerName = "github.com/nf-core/modcache/registry"

// environment is the state shared by the commands of one invocation
type environment struct {
	v           *viper.Viper
	enableDebug func()

	// interactive decides whether progress bars and prompts are shown
	interactive func() bool
	openURL     func(url string) error

	cfg      *config.Config
	tel      *telemetry.Telemetry
	metrics  *telemetry.CacheMetrics
	client   git.Client
	session  *session.Session
	recovery registry.RecoveryPolicy
}

func newEnvironment(v *viper.Viper, enableDebug func()) *environment {
	return &environment{
		v:           v,
		enableDebug: enableDebug,
		interactive: tui.Interactive,
		openURL:     browser.OpenURL,
	}
}

func (e *environment) init(ctx context.Context) error {
	if e.v.GetBool(flagDebug) && e.enableDebug != nil {
		e.enableDebug()
	}

	opts := []config.Option{config.WithViper(e.v)}
	if path := e.v.GetString(flagConfig); path != "" {
		opts = append(opts, config.WithConfigPath(path))
	}
	cfg, err := config.LoadConfig(opts...)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	recovery, err := registry.ParseRecoveryPolicy(cfg.Recovery)
	if err != nil {
		return err
	}

	clientOpts := []git.ClientOption{git.WithMaxAttempts(cfg.NetworkAttempts)}
	if cfg.Auth != nil {
		password, err := cfg.Auth.GetPassword()
		if err != nil {
			return fmt.Errorf("failed to read registry password: %w", err)
		}
		clientOpts = append(clientOpts, git.WithAuth(&git.AuthConfig{
			Username: cfg.Auth.Username,
			Password: password,
		}))
	}

	sess := session.New()
	tel, err := telemetry.New(ctx,
		telemetry.WithTelemetryConfig(cfg.Telemetry),
		telemetry.WithRun(telemetry.RunInfo{
			SessionID: sess.ID(),
			Version:   versions.Version,
			Remote:    cfg.Remote,
			CacheDir:  cfg.CacheDir,
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	metrics, err := tel.CacheMetrics()
	if err != nil {
		_ = tel.Shutdown(ctx)
		return fmt.Errorf("failed to create cache metrics: %w", err)
	}

	slog.Debug("Loaded configuration",
		"cache_dir", cfg.CacheDir,
		"remote", cfg.Remote,
		"branch", cfg.Branch,
		"recovery", cfg.Recovery,
	)

	e.cfg = cfg
	e.tel = tel
	e.metrics = metrics
	e.recovery = recovery
	e.client = git.NewDefaultGitClient(clientOpts...)
	e.session = sess
	return nil
}

func (e *environment) shutdown(ctx context.Context) error {
	if e.tel == nil {
		return nil
	}
	err := e.tel.Shutdown(ctx)
	e.tel = nil
	return err
}

// openRegistry opens the configured registry for cmd
func (e *environment) openRegistry(cmd *cobra.Command) (*registry.Handle, error) {
	if e.cfg == nil {
		return nil, errors.New("configuration not loaded")
	}

	opts := registry.Options{
		Session:      e.session,
		Client:       e.client,
		CacheDir:     e.cfg.CacheDir,
		Branch:       e.cfg.Branch,
		NoPull:       e.cfg.NoPull,
		HideProgress: e.cfg.HideProgress,
		Recovery:     e.recovery,
		Metrics:      e.metrics,
		Tracer:       e.tel.Tracer(tracerName),
		Confirm:      declineDeletion,
	}
	if e.interactive() {
		opts.Progress = tui.NewTracker(cmd.ErrOrStderr())
		opts.Confirm = tui.CacheDeletionConfirm(cmd.InOrStdin(), cmd.ErrOrStderr())
	}

	return registry.New(cmd.Context(), e.cfg.Remote, opts)
}

// declineDeletion answers the cache deletion question when nobody can be asked
func declineDeletion(localDir string, _ error) bool {
	slog.Warn("Not deleting the local cache without confirmation, use --recovery always-delete to allow it",
		"path", localDir)
	return false
}

func writeLines(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// wrap shuts telemetry down when fn fails, since cobra skips post-run hooks then
func (e *environment) wrap(fn func(*cobra.Command, []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := fn(cmd, args)
		if err != nil {
			if shutdownErr := e.shutdown(cmd.Context()); shutdownErr != nil {
				slog.Warn("Failed to shut down telemetry", "error", shutdownErr)
			}
		}
		return err
	}
}

// parseKindArg parses the optional component type argument, which defaults to modules
func parseKindArg(args []string) (registry.Kind, error) {
	if len(args) == 0 {
		return registry.Module, nil
	}
	return registry.ParseKind(args[0])
}

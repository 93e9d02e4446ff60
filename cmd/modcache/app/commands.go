// Package app provides the commands of the modcache CLI.
package app

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/nf-core/modcache/internal/config"
	"github.com/nf-core/modcache/internal/versions"
)

const (
	flagConfig = "config"
	flagDebug  = "debug"
	flagSHA    = "sha"
)

// NewRootCmd creates the modcache root command. enableDebug is called
// when --debug is given and may be nil.
func NewRootCmd(enableDebug func()) *cobra.Command {
	return newRootCmd(newEnvironment(config.NewViper(), enableDebug))
}

func newRootCmd(env *environment) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:               "modcache",
		DisableAutoGenTag: true,
		SilenceUsage:      true,
		Short:             "Local cache of nf-core style module registries",
		Long: `modcache keeps one git working copy per module registry under the cache
directory and answers questions about the modules and subworkflows it holds:
which exist, their commit history, installing them into a pipeline and
comparing installed copies with the registry.`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return env.init(cmd.Context())
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return env.shutdown(cmd.Context())
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	defaults := config.Default()
	flags := rootCmd.PersistentFlags()
	flags.String(flagConfig, "", "Path to configuration file (YAML format)")
	flags.Bool(flagDebug, false, "Enable debug logging")
	flags.String(config.KeyCacheDir, defaults.CacheDir, "Directory holding one working copy per registry")
	flags.StringP(config.KeyRemote, "g", "", "Remote registry URL (default: the nf-core modules registry)")
	flags.StringP(config.KeyBranch, "b", "", "Registry branch (default: the remote's default branch)")
	flags.BoolP(config.KeyNoPull, "N", false, "Do not fetch registries that are already cached")
	flags.Bool(config.KeyHideProgress, false, "Do not render clone and fetch progress")
	flags.String(config.KeyRecovery, defaults.Recovery, "What to do with a corrupted cache: retry-once, fail-fast or always-delete")
	flags.Uint(config.KeyNetworkAttempts, defaults.NetworkAttempts, "How many times clone, fetch and ls-remote are attempted")

	for _, key := range []string{
		flagConfig, flagDebug,
		config.KeyCacheDir, config.KeyRemote, config.KeyBranch, config.KeyNoPull,
		config.KeyHideProgress, config.KeyRecovery, config.KeyNetworkAttempts,
	} {
		if err := env.v.BindPFlag(key, flags.Lookup(key)); err != nil {
			slog.Error("Error binding flag", "flag", key, "error", err)
		}
	}

	rootCmd.AddCommand(
		newListCmd(env),
		newInfoCmd(env),
		newVersionsCmd(env),
		newInstallCmd(env),
		newDiffCmd(env),
		newBranchesCmd(env),
		newVersionCmd(),
	)
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		// version needs no configuration
		PersistentPreRunE:  func(*cobra.Command, []string) error { return nil },
		PersistentPostRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := versions.GetVersionInfo()
			format, err := cmd.Flags().GetString("format")
			if err != nil {
				return err
			}

			if format == "json" {
				output, err := json.MarshalIndent(info, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to format version info as JSON: %w", err)
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(output))
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(),
				"modcache %s\n  commit:        %s\n  built:         %s\n  go:            %s\n  platform:      %s\n  tools version: %s\n",
				info.Version, info.Commit, info.BuildDate, info.GoVersion, info.Platform, info.ToolsVersion)
			return err
		},
	}
	cmd.Flags().String("format", "", "Output format (json)")
	return cmd
}

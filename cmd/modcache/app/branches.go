package app

import (
	"github.com/spf13/cobra"

	"github.com/nf-core/modcache/internal/registry"
)

func newBranchesCmd(env *environment) *cobra.Command {
	return &cobra.Command{
		Use:   "branches [remote]",
		Short: "List the branches of a remote registry",
		Long: `List the branches advertised by a remote registry without cloning it.
The remote defaults to the configured one.`,
		Args: cobra.MaximumNArgs(1),
		RunE: env.wrap(func(cmd *cobra.Command, args []string) error {
			remote := env.cfg.Remote
			if len(args) == 1 {
				remote = args[0]
			}

			branches, err := registry.RemoteBranches(cmd.Context(), env.client, remote)
			if err != nil {
				return err
			}
			return writeLines(cmd.OutOrStdout(), branches)
		}),
	}
}

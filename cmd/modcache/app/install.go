package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nf-core/modcache/internal/registry"
)

func newInstallCmd(env *environment) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "install <modules|subworkflows> <name> <directory>",
		Short: "Copy a component into <directory>/<name>",
		Long: `Copy a component from the registry into <directory>/<name>.

Without --sha the latest commit that changed the component is installed.
The destination must not exist yet.`,
		Args: cobra.ExactArgs(3),
		RunE: env.wrap(func(cmd *cobra.Command, args []string) error {
			kind, err := registry.ParseKind(args[0])
			if err != nil {
				return err
			}
			name, dir := args[1], args[2]

			sha, err := cmd.Flags().GetString(flagSHA)
			if err != nil {
				return err
			}

			h, err := env.openRegistry(cmd)
			if err != nil {
				return err
			}

			if !h.VerifySHA(false, sha) {
				return fmt.Errorf("commit '%s' is not on branch '%s' of '%s'", sha, h.Branch, h.FullName)
			}

			commit := sha
			if commit == "" {
				latest, err := h.LatestVersion(cmd.Context(), name, kind)
				if err != nil {
					return err
				}
				commit = latest.SHA
			}

			ok, err := h.Install(cmd.Context(), name, kind, commit, dir)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("failed to install %s '%s' at %s", kind.Singular(), name, commit)
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Installed %s '%s' at %s\n", kind.Singular(), name, commit)
			return err
		}),
	}
	cmd.Flags().String(flagSHA, "", "Install the component as of this commit")
	return cmd
}

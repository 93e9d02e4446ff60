package app

import (
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/nf-core/modcache/internal/registry"
)

func newDiffCmd(env *environment) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diff <module> <installed-dir>",
		Short: "Compare an installed module with the registry",
		Long: `Compare the main.nf and meta.yml of the module installed at <installed-dir>
with the registry copy at the branch tip, or at --sha.`,
		Args: cobra.ExactArgs(2),
		RunE: env.wrap(func(cmd *cobra.Command, args []string) error {
			name, dir := args[0], args[1]

			sha, err := cmd.Flags().GetString(flagSHA)
			if err != nil {
				return err
			}
			exitCode, err := cmd.Flags().GetBool("exit-code")
			if err != nil {
				return err
			}

			h, err := env.openRegistry(cmd)
			if err != nil {
				return err
			}

			identical, err := h.FilesIdentical(cmd.Context(), name, dir, sha)
			if err != nil {
				return err
			}

			changed := 0
			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.Header("File", "Status")
			for _, file := range registry.DiffFiles {
				status := "identical"
				if !identical[file] {
					status = "changed"
					changed++
				}
				if err := table.Append([]string{file, status}); err != nil {
					return err
				}
			}
			if err := table.Render(); err != nil {
				return err
			}

			if exitCode && changed > 0 {
				return fmt.Errorf("%d file(s) of module '%s' differ from '%s'", changed, name, h.FullName)
			}
			return nil
		}),
	}
	cmd.Flags().String(flagSHA, "", "Compare against this commit instead of the branch tip")
	cmd.Flags().Bool("exit-code", false, "Fail when any file differs")
	return cmd
}

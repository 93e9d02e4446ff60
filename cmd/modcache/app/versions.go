package app

import (
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/nf-core/modcache/internal/registry"
)

func newVersionsCmd(env *environment) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "versions <modules|subworkflows> <name>",
		Short: "Show the commits that changed a component, newest first",
		Args:  cobra.ExactArgs(2),
		RunE: env.wrap(func(cmd *cobra.Command, args []string) error {
			kind, err := registry.ParseKind(args[0])
			if err != nil {
				return err
			}
			name := args[1]

			depth, err := cmd.Flags().GetInt("depth")
			if err != nil {
				return err
			}

			h, err := env.openRegistry(cmd)
			if err != nil {
				return err
			}

			records, err := h.CommitHistory(cmd.Context(), name, kind, depth)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				return fmt.Errorf("%s '%s' has no history on branch '%s' of '%s'", kind.Singular(), name, h.Branch, h.FullName)
			}

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.Header("SHA", "Date", "Message")
			for _, record := range records {
				if err := table.Append([]string{
					record.SHA,
					record.Date.Format(registry.CommitDateLayout),
					record.Message,
				}); err != nil {
					return err
				}
			}
			return table.Render()
		}),
	}
	cmd.Flags().Int("depth", 0, "Maximum number of commits per layout (0 = all)")
	return cmd
}

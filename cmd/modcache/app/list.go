package app

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/nf-core/modcache/internal/filtering"
)

func newListCmd(env *environment) *cobra.Command {
	var include, exclude []string

	cmd := &cobra.Command{
		Use:   "list [modules|subworkflows]",
		Short: "List the components available in the registry",
		Args:  cobra.MaximumNArgs(1),
		RunE: env.wrap(func(cmd *cobra.Command, args []string) error {
			kind, err := parseKindArg(args)
			if err != nil {
				return err
			}
			if err := filtering.ValidatePatterns(append(append([]string{}, include...), exclude...)...); err != nil {
				return err
			}

			h, err := env.openRegistry(cmd)
			if err != nil {
				return err
			}

			names, err := h.ListComponents(kind, false)
			if err != nil {
				return fmt.Errorf("failed to list %s: %w", kind, err)
			}
			names, err = filtering.Apply(filtering.NewDefaultNameFilter(), names, include, exclude)
			if err != nil {
				return err
			}
			if len(names) == 0 {
				slog.Info("No components found", "type", kind, "registry", h.FullName, "branch", h.Branch)
				return nil
			}
			return writeLines(cmd.OutOrStdout(), names)
		}),
	}

	cmd.Flags().StringSliceVar(&include, "include", nil, "Only list components matching these glob patterns")
	cmd.Flags().StringSliceVar(&exclude, "exclude", nil, "Skip components matching these glob patterns")
	return cmd
}

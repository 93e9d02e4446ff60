package app

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/nf-core/modcache/internal/registry"
)

func newInfoCmd(env *environment) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info <modules|subworkflows> <name>",
		Short: "Print the meta.yml of a component",
		Long: `Print the meta.yml of a component at the branch tip.

With --validate the file is checked against the schema the registry ships
for the component type. With --web the component page is opened in a browser.`,
		Args: cobra.ExactArgs(2),
		RunE: env.wrap(func(cmd *cobra.Command, args []string) error {
			kind, err := registry.ParseKind(args[0])
			if err != nil {
				return err
			}
			name := args[1]

			validate, err := cmd.Flags().GetBool("validate")
			if err != nil {
				return err
			}
			web, err := cmd.Flags().GetBool("web")
			if err != nil {
				return err
			}

			h, err := env.openRegistry(cmd)
			if err != nil {
				return err
			}

			if web {
				url, err := h.ComponentURL(kind, name)
				if err != nil {
					return err
				}
				slog.Info("Opening component page", "url", url)
				return env.openURL(url)
			}

			meta, err := h.MetaYAML(kind, name)
			if err != nil {
				return err
			}
			if meta == nil {
				return fmt.Errorf("%s '%s' has no %s in '%s'", kind.Singular(), name, registry.MetaFile, h.FullName)
			}
			if _, err := cmd.OutOrStdout().Write(meta); err != nil {
				return err
			}

			if !validate {
				return nil
			}
			issues, err := h.ValidateMetaYAML(kind, name)
			if errors.Is(err, registry.ErrNoMetaSchema) {
				slog.Warn("Registry has no schema to validate against", "registry", h.FullName, "type", kind)
				return nil
			}
			if err != nil {
				return err
			}
			for _, issue := range issues {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", registry.MetaFile, issue)
			}
			if len(issues) > 0 {
				return fmt.Errorf("%s of %s '%s' has %d schema violation(s)", registry.MetaFile, kind.Singular(), name, len(issues))
			}
			return nil
		}),
	}
	cmd.Flags().Bool("validate", false, "Validate meta.yml against the registry schema")
	cmd.Flags().Bool("web", false, "Open the component page in a browser instead")
	return cmd
}

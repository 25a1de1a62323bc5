package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"murmax-onboarding/pkg/registry"
)

func newRegistryCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "registry",
		Short: "Check the activity registry of the job workers",
	}
	cmd.PersistentFlags().StringVar(&app.RegistryPath, "path", app.RegistryPath, "path to the registry file")
	cmd.AddCommand(
		&cobra.Command{
			Use:   "validate",
			Short: "Validate the registry file",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				reg, err := registry.LoadRegistry(app.RegistryPath)
				if err != nil {
					return fmt.Errorf("failed to load registry: %w", err)
				}
				if err := reg.Validate(); err != nil {
					fmt.Fprintln(cmd.OutOrStdout(), app.Styles.Fail.Render("registry validation failed: "+err.Error()))
					return NewExitError(1)
				}
				fmt.Fprintln(cmd.OutOrStdout(), app.Styles.OK.Render(
					fmt.Sprintf("Registry validation passed. Found %d activities.", len(reg.Activities))))
				return nil
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List registered activities",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				reg, err := registry.LoadRegistry(app.RegistryPath)
				if err != nil {
					return fmt.Errorf("failed to load registry: %w", err)
				}
				for _, a := range reg.Activities {
					fmt.Fprintf(cmd.OutOrStdout(), "%-28s %-24s %s\n", a.TaskType, a.ID, a.ImplementationStatus)
				}
				return nil
			},
		},
	)
	return cmd
}

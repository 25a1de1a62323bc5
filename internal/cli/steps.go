package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"murmax-onboarding/internal/onboarding"
)

func newStepsCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "steps <role>",
		Short: "Print the step table of a role",
		Long: `Print the ordered wizard steps of a role with the fields each step
requires and how they are combined.

Example:
  murmaxctl steps driver`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			role, err := onboarding.ParseRole(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			steps := onboarding.StepsFor(role)
			fmt.Fprintln(out, app.Styles.Title.Render(fmt.Sprintf("%s onboarding (%d steps)", role, len(steps))))
			for _, step := range steps {
				fields := strings.Join(step.Fields, ", ")
				if fields == "" {
					fields = "-"
				}
				fmt.Fprintf(out, "  %d. %-22s %-5s %s\n",
					step.Position+1, step.Title, step.Policy, app.Styles.Muted.Render(fields))
			}
			return nil
		},
	}
}

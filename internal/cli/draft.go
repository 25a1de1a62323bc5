package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"murmax-onboarding/internal/onboarding"
)

func newDraftCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "draft",
		Short: "Inspect saved drafts",
	}
	cmd.AddCommand(newDraftShowCommand(app), newDraftFinalizedCommand(app))
	return cmd
}

func newDraftShowCommand(app *App) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show <role>",
		Short: "Show the saved draft of a role and its step completion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			role, err := onboarding.ParseRole(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			d, err := app.Store.Load(cmd.Context(), role)
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), app.Styles.Fail.Render("draft could not be loaded: "+err.Error()))
			}

			if asJSON {
				data, err := json.MarshalIndent(d, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(data))
				return nil
			}

			fmt.Fprintln(out, app.Styles.Title.Render(fmt.Sprintf("%s draft", role)))
			for _, step := range onboarding.StepsFor(role) {
				fmt.Fprintf(out, "  %d. %-22s %s\n", step.Position+1, step.Title, app.Styles.check(step.Valid(d)))
			}
			if err := onboarding.ValidateAttachments(d, app.UploadLimitMB); err != nil {
				fmt.Fprintln(out, app.Styles.Fail.Render("  attachments: "+err.Error()))
			}
			if step, incomplete := onboarding.FirstInvalidStep(d); incomplete {
				fmt.Fprintf(out, "Next step: %s\n", step.Title)
			} else {
				fmt.Fprintln(out, app.Styles.OK.Render("Ready to finish"))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the draft fields as JSON")
	return cmd
}

func newDraftFinalizedCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "finalized <role>",
		Short: "Show the last finalized application of a role",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			role, err := onboarding.ParseRole(args[0])
			if err != nil {
				return err
			}
			finalized, ok, err := app.Store.LoadFinalized(cmd.Context(), role)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !ok {
				fmt.Fprintln(out, app.Styles.Muted.Render(fmt.Sprintf("no %s application has been finalized", role)))
				return NewExitError(2)
			}
			fmt.Fprintf(out, "%s  %s\n", finalized.ID(), finalized.FinalizedAt().UTC().Format(time.RFC3339))
			return nil
		},
	}
}

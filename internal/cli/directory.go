package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"murmax-onboarding/internal/directory"
	"murmax-onboarding/internal/onboarding"
)

func newDirectoryCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "directory",
		Short: "List or seed marketplace directory records",
	}
	cmd.AddCommand(newDirectoryListCommand(app), newDirectorySeedCommand(app))
	return cmd
}

func newDirectoryListCommand(app *App) *cobra.Command {
	var (
		role, search, from, to string
		asJSON                 bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List directory records",
		Long: `List directory records, newest first.

Example:
  murmaxctl directory list --role driver --from 2026-01-01 --search dry`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := directory.ParseQuery(role, search, from, to)
			if err != nil {
				return err
			}
			records, err := app.Store.List(cmd.Context())
			if err != nil {
				return err
			}
			matched := directory.Filter(records, q)

			out := cmd.OutOrStdout()
			if asJSON {
				data, err := json.MarshalIndent(matched, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(data))
				return nil
			}
			if len(matched) == 0 {
				fmt.Fprintln(out, app.Styles.Muted.Render("no records"))
				return nil
			}

			t := table.New().
				Border(lipgloss.NormalBorder()).
				Headers("ID", "ROLE", "NAME", "CREATED")
			for _, rec := range matched {
				name := rec.DisplayName()
				if rec.Test {
					name += " (test)"
				}
				t.Row(rec.ID, string(rec.Role), name, rec.Created().Format(time.RFC3339))
			}
			fmt.Fprintln(out, t.String())
			fmt.Fprintln(out, app.Styles.Muted.Render(fmt.Sprintf("%d of %d records", len(matched), len(records))))
			return nil
		},
	}
	cmd.Flags().StringVar(&role, "role", "", "only records of this role")
	cmd.Flags().StringVar(&search, "search", "", "case-insensitive text match")
	cmd.Flags().StringVar(&from, "from", "", "created on or after this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "created on or before this date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print records as JSON")
	return cmd
}

func newDirectorySeedCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "seed [role]",
		Short: "Append test records, one per role unless a role is given",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			roles := onboarding.AllRoles()
			if len(args) == 1 {
				role, err := onboarding.ParseRole(args[0])
				if err != nil {
					return err
				}
				roles = []onboarding.Role{role}
			}
			for _, role := range roles {
				rec, err := directory.TestRecord(role, app.Now())
				if err != nil {
					return err
				}
				if err := app.Store.Append(cmd.Context(), rec); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), app.Styles.OK.Render("seeded "+rec.ID))
			}
			return nil
		},
	}
}

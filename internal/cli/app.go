// Package cli implements murmaxctl, the operator tool for inspecting step
// tables, saved drafts, the marketplace directory and the load board.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/spf13/cobra"

	"murmax-onboarding/internal/draftstore"
)

// App holds the dependencies shared by all commands.
type App struct {
	Store         draftstore.Store
	UploadLimitMB int
	RegistryPath  string
	Now           func() time.Time
	Styles        Styles
}

// NewRootCommand builds the command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	if app.Now == nil {
		app.Now = time.Now
	}
	root := &cobra.Command{
		Use:           "murmaxctl",
		Short:         "Inspect MurMax onboarding state",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newStepsCommand(app),
		newDraftCommand(app),
		newDirectoryCommand(app),
		newRegistryCommand(app),
		newMarketplaceCommand(app),
	)
	return root
}

// ExecuteResult is the outcome of a command run.
type ExecuteResult struct {
	ExitCode int
	Err      error
}

// Run executes the command line in args against app.
func Run(ctx context.Context, app *App, args []string, out, errOut io.Writer) ExecuteResult {
	cmd := NewRootCommand(app)
	cmd.SetArgs(args)
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	if err := cmd.ExecuteContext(ctx); err != nil {
		if code, ok := IsExitError(err); ok {
			return ExecuteResult{ExitCode: code, Err: err}
		}
		_, _ = io.WriteString(errOut, app.Styles.Fail.Render("error: "+err.Error())+"\n")
		return ExecuteResult{ExitCode: 1, Err: err}
	}
	return ExecuteResult{}
}


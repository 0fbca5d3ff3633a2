package main

import (
	"context"

	"github.com/charmbracelet/fang"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/petr-muller/jironimo/internal/flagutil"
)

var jiraOptions flagutil.JiraOptions

func main() {
	rootCmd := &cobra.Command{
		Use:   "jironimo",
		Short: "Work with JIRA issues from the terminal",
		Long: `jironimo shows JIRA issues of saved queries (workspaces) on a board and
lets you act on them: open them in the browser, track the time you work on them,
log the work and move them through the workflow.

Without a subcommand, the board of the active workspace is shown.`,
		Args: cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return jiraOptions.Validate()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBoard(cmd.Context())
		},
	}

	jiraOptions.AddPFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(
		newBoardCmd(),
		newSearchCmd(),
		newSessionCmd(),
		newWorkspacesCmd(),
		newTransitionCmd(),
		newAssignCmd(),
		newWorklogCmd(),
		newColorsCmd(),
		newCallCmd(),
	)

	if err := fang.Execute(context.Background(), rootCmd); err != nil {
		logrus.WithError(err).Fatal("command failed")
	}
}

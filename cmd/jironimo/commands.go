package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/petr-muller/jironimo/internal/config"
	"github.com/petr-muller/jironimo/internal/jironimo/service"
	"github.com/petr-muller/jironimo/internal/jironimo/workspace"
	"github.com/petr-muller/jironimo/internal/mappings"
)

func newSearchCmd() *cobra.Command {
	var offset, limit int

	cmd := &cobra.Command{
		Use:   "search [workspace-index]",
		Short: "Print one page of issues of a workspace",
		Long: `Print one page of issues matching the query of a workspace. Without an
index, the active workspace is used. Workspace indices start at 1.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index := -1
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid workspace index %q: %w", args[0], err)
				}
				index = n - 1
			}
			return runSearch(cmd.Context(), index, offset, limit)
		},
	}

	cmd.Flags().IntVar(&offset, "offset", 0, "Index of the first issue to show")
	cmd.Flags().IntVar(&limit, "limit", 0, "Number of issues to show (default search.max_results)")

	return cmd
}

func runSearch(ctx context.Context, index, offset, limit int) error {
	a, err := newApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	workspaces, err := a.store.Load()
	if err != nil {
		return err
	}
	if index < 0 {
		index = workspaces.Active()
	}
	if index >= len(workspaces.Entries) {
		return fmt.Errorf("workspace %d does not exist", index+1)
	}
	if limit <= 0 {
		limit = a.cfg.Search.MaxResults
	}
	ws := workspaces.Entries[index]

	page, err := a.service.RunSearch(ctx, ws.Query, max(0, offset), limit)
	if err != nil {
		return fmt.Errorf("cannot search workspace %q: %w", ws.Title, err)
	}

	printPage(ws.Title, page)
	pager := workspace.Pager{StartAt: page.StartAt, MaxResults: limit, Total: page.Total}
	if pager.HasNext() {
		fmt.Printf("\nNext page: --offset %d\n", pager.ForwardOffset())
	}
	return nil
}

func printPage(title string, page *service.Page) {
	fmt.Printf("=== %s: issues %d-%d of %d ===\n\n", title, page.StartAt+min(1, len(page.Issues)), page.StartAt+len(page.Issues), page.Total)

	tabw := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	_, _ = tabw.Write([]byte("KEY\tSIZE\tPRIORITY\tSTATUS\tESTIMATE\tASSIGNEE\tSUMMARY\n"))
	for _, record := range page.Issues {
		_, _ = fmt.Fprintf(tabw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			record.Key,
			record.SizeClass,
			record.PriorityName(),
			record.StatusName(),
			record.TimeEstimateHuman,
			record.AssigneeName(),
			record.Summary(),
		)
	}
	_ = tabw.Flush()
}

func newSessionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "session",
		Short: "Check the configured credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(false)
			if err != nil {
				return err
			}
			defer a.Close()

			session, err := a.client.CheckSession(cmd.Context())
			if err != nil {
				return fmt.Errorf("session check failed: %w", err)
			}
			fmt.Printf("Logged in to %s as %s\n", a.client.Account().BaseURL, session.Name)
			return nil
		},
	}
}

func newTransitionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "transition <issue> [transition-id]",
		Short: "Move an issue through a workflow transition",
		Long: `Move an issue through a workflow transition. Without a transition ID,
the transitions available for the issue are listed.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(false)
			if err != nil {
				return err
			}
			defer a.Close()

			if len(args) == 1 {
				transitions, err := a.service.Transitions(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				tabw := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
				_, _ = tabw.Write([]byte("ID\tNAME\tTO\n"))
				for _, transition := range transitions {
					_, _ = fmt.Fprintf(tabw, "%s\t%s\t%s\n", transition.ID, transition.Name, transition.To.Name)
				}
				return tabw.Flush()
			}

			if err := a.service.Transition(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Printf("%s transitioned\n", args[0])
			return nil
		},
	}
}

func newAssignCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "assign <issue> [login]",
		Short: "Assign an issue, to yourself when no login is given",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(false)
			if err != nil {
				return err
			}
			defer a.Close()

			login := ""
			if len(args) == 2 {
				login = args[1]
			}
			if err := a.service.AssignTo(cmd.Context(), args[0], login); err != nil {
				return err
			}
			if login == "" {
				login = "you"
			}
			fmt.Printf("%s assigned to %s\n", args[0], login)
			return nil
		},
	}
}

func newWorklogCmd() *cobra.Command {
	var comment string

	cmd := &cobra.Command{
		Use:   "worklog <issue> <duration>",
		Short: "Log work on an issue",
		Long: `Log work on an issue. The duration uses Go syntax, e.g. 1h30m, and is
rounded up to whole minutes.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			spent, err := time.ParseDuration(args[1])
			if err != nil {
				return fmt.Errorf("invalid duration %q: %w", args[1], err)
			}
			if spent <= 0 {
				return fmt.Errorf("duration must be positive")
			}

			a, err := newApp(false)
			if err != nil {
				return err
			}
			defer a.Close()

			worklog, err := a.service.LogWork(cmd.Context(), args[0], spent, comment)
			if err != nil {
				return err
			}
			fmt.Printf("Logged %s on %s\n", time.Duration(worklog.TimeSpentSeconds)*time.Second, args[0])
			return nil
		},
	}

	cmd.Flags().StringVarP(&comment, "comment", "m", "", "Worklog comment")

	return cmd
}

func newColorsCmd() *cobra.Command {
	var write bool

	cmd := &cobra.Command{
		Use:   "colors",
		Short: "Show the priority colors and issue type sizes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if write {
				dir := config.MustJironimoConfigDir()
				if err := mappings.DefaultMappings().SaveMappings(dir); err != nil {
					return err
				}
				fmt.Printf("Default tables written to %s\n", dir)
				return nil
			}

			colors, err := mappings.LoadMappings()
			if err != nil {
				return err
			}
			tabw := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
			_, _ = tabw.Write([]byte("PRIORITY ID\tCOLOR\n"))
			for _, entry := range colors.PriorityColors {
				_, _ = fmt.Fprintf(tabw, "%s\t%s\n", entry.ID, entry.Class)
			}
			_, _ = tabw.Write([]byte("\nISSUE TYPE\tSIZE\n"))
			for _, issueType := range colors.Types() {
				_, _ = fmt.Fprintf(tabw, "%s\t%s\n", issueType, colors.TypeSizes[issueType])
			}
			return tabw.Flush()
		},
	}

	cmd.Flags().BoolVar(&write, "init", false, "Write the default tables to the config directory")

	return cmd
}

package main

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/petr-muller/jironimo/internal/jironimo/storage"
	"github.com/petr-muller/jironimo/internal/jironimo/ui"
	"github.com/petr-muller/jironimo/internal/jironimo/workspace"
)

func newBoardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "board",
		Short: "Show the board of the active workspace",
		Long: `Show the issues of the active workspace on an interactive board.
When timer.workspace is set, the current page is refreshed every
timer.workspace minutes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBoard(cmd.Context())
		},
	}
}

func runBoard(ctx context.Context) error {
	a, err := newApp(true)
	if err != nil {
		return err
	}
	defer a.Close()

	workspaces, err := a.store.Load()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := ui.NewEvents()
	defer events.Close()
	unsubscribe := a.client.Notifier().Subscribe(events.Failure)
	defer unsubscribe()

	board := workspace.NewBoard(a.service, workspaces,
		workspace.WithPageSize(a.cfg.Search.MaxResults),
		workspace.WithPollInterval(time.Duration(a.cfg.Timer.Workspace)*time.Minute),
		workspace.WithUpdateHandler(events.Snapshot),
		workspace.WithPersist(func(w *storage.Workspaces) error {
			return a.store.Save(w)
		}),
	)
	defer board.Close()

	logrus.WithField("workspaces", len(workspaces.Entries)).Info("Starting board")
	model := ui.NewModel(ctx, board, a.service, events, a.client.Account(), workspaces.Entries)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("cannot run TUI: %w", err)
	}

	if tracking := a.service.Tracker().Tracking(); len(tracking) > 0 {
		logrus.WithField("issues", tracking).Warn("Work tracking was not stopped, the time was not logged")
		fmt.Printf("Work on %v was not logged\n", tracking)
	}

	return nil
}

package main

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/petr-muller/jironimo/internal/jironimo/storage"
)

func newWorkspacesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workspaces",
		Short: "Manage workspaces (saved queries)",
	}

	cmd.AddCommand(
		newWorkspacesListCmd(),
		newWorkspacesAddCmd(),
		newWorkspacesRemoveCmd(),
		newWorkspacesDefaultCmd(),
		newWorkspacesImportCmd(),
	)

	return cmd
}

func newWorkspacesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List workspaces",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, workspaces, err := loadWorkspaces()
			if err != nil {
				return err
			}

			active := workspaces.Active()
			fmt.Printf("Workspaces in %s:\n\n", store.GetDataDir())
			tabw := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
			_, _ = tabw.Write([]byte("#\tTITLE\tICON\tFLAGS\tQUERY\n"))
			for i, ws := range workspaces.Entries {
				var flags string
				if i == active {
					flags += "active "
				}
				if ws.IsDefault {
					flags += "default "
				}
				if storage.WatchEligible(ws.Query) {
					flags += "by-update"
				}
				_, _ = fmt.Fprintf(tabw, "%d\t%s\t%s\t%s\t%s\n", i+1, ws.Title, ws.Icon, flags, ws.Query)
			}
			return tabw.Flush()
		},
	}
}

func newWorkspacesAddCmd() *cobra.Command {
	var icon string

	cmd := &cobra.Command{
		Use:   "add <title> <jql>",
		Short: "Add a workspace",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, workspaces, err := loadWorkspaces()
			if err != nil {
				return err
			}

			if err := workspaces.Add(storage.Workspace{Title: args[0], Query: args[1], Icon: icon}); err != nil {
				return err
			}
			if err := store.Save(workspaces); err != nil {
				return err
			}

			fmt.Printf("Workspace %q added as #%d\n", args[0], len(workspaces.Entries))
			return nil
		},
	}

	cmd.Flags().StringVar(&icon, "icon", storage.DefaultIcon, "Workspace icon")

	return cmd
}

func newWorkspacesRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <index>",
		Short: "Remove a workspace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return updateWorkspace(args[0], func(workspaces *storage.Workspaces, index int) error {
				title := workspaces.Entries[index].Title
				if err := workspaces.Remove(index); err != nil {
					return err
				}
				fmt.Printf("Workspace %q removed\n", title)
				return nil
			})
		},
	}
}

func newWorkspacesDefaultCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "default <index>",
		Short: "Make a workspace the default one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return updateWorkspace(args[0], func(workspaces *storage.Workspaces, index int) error {
				if err := workspaces.SetDefault(index); err != nil {
					return err
				}
				fmt.Printf("Workspace %q is the default\n", workspaces.Entries[index].Title)
				return nil
			})
		},
	}
}

func newWorkspacesImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import",
		Short: "Add a workspace for every favourite filter",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(false)
			if err != nil {
				return err
			}
			defer a.Close()

			workspaces, err := a.store.Load()
			if err != nil {
				return err
			}

			added, err := a.service.ImportFavourites(cmd.Context(), workspaces)
			if err != nil {
				return err
			}
			if len(added) == 0 {
				fmt.Println("All favourite filters already have a workspace")
				return nil
			}
			if err := a.store.Save(workspaces); err != nil {
				return err
			}
			for _, ws := range added {
				fmt.Printf("Imported %q\n", ws.Title)
			}
			return nil
		},
	}
}

func loadWorkspaces() (*storage.Store, *storage.Workspaces, error) {
	dataDir, err := storage.JironimoDataDir()
	if err != nil {
		return nil, nil, fmt.Errorf("cannot determine data directory: %w", err)
	}
	store := storage.NewStore(dataDir)
	workspaces, err := store.Load()
	if err != nil {
		return nil, nil, err
	}
	return store, workspaces, nil
}

// updateWorkspace applies change to the workspace with the given 1-based index and saves the result
func updateWorkspace(arg string, change func(*storage.Workspaces, int) error) error {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return fmt.Errorf("invalid workspace index %q: %w", arg, err)
	}

	store, workspaces, err := loadWorkspaces()
	if err != nil {
		return err
	}
	index := n - 1
	if index < 0 || index >= len(workspaces.Entries) {
		return fmt.Errorf("workspace %d: %w", n, storage.ErrNoSuchWorkspace)
	}

	if err := change(workspaces, index); err != nil {
		return err
	}
	return store.Save(workspaces)
}

package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// NewFolderCmd groups the folder management subcommands.
func NewFolderCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "folder",
		Short: "Manage folders",
	}

	cmd.AddCommand(
		newFolderListCmd(app),
		newFolderAddCmd(app),
		newFolderRenameCmd(app),
		newFolderRemoveCmd(app),
	)

	return cmd
}

func newFolderListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Short:   "List folders in display order",
		Aliases: []string{"ls"},
		RunE: func(cmd *cobra.Command, args []string) error {
			folders := app.Store.Folders()

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "FOLDER\tNOTES")
			for _, folder := range folders {
				count := len(app.Store.ListActive(folder.Name))
				if folder.Name == "Trash" {
					count = len(app.Store.ListTrash())
				}
				fmt.Fprintf(w, "%s\t%d\n", folder.Name, count)
			}
			return w.Flush()
		},
	}
}

func newFolderAddCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "add <name>",
		Short: "Create a folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Store.CreateFolder(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created folder %s\n", args[0])
			return nil
		},
	}
}

func newFolderRenameCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <old> <new>",
		Short: "Rename a folder and move its notes with it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Store.RenameFolder(args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Renamed folder %s to %s\n", args[0], args[1])
			return nil
		},
	}
}

func newFolderRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <name>",
		Short:   "Delete a folder, moving its notes to the trash",
		Aliases: []string{"rm"},
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Store.DeleteFolder(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted folder %s, its notes are in the trash\n", args[0])
			return nil
		},
	}
}

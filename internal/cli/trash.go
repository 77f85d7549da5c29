package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewDeleteCmd soft-deletes a note into Trash.
func NewDeleteCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "delete <note-id>",
		Short:   "Move a note to the trash",
		Aliases: []string{"rm"},
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := app.Store.DeleteNote(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Moved note %s to trash\n", args[0])
			return nil
		},
	}
	return cmd
}

// NewRestoreCmd returns a trashed note to the Default folder.
func NewRestoreCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restore <note-id>",
		Short: "Restore a note from the trash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Store.RestoreNote(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Restored note %s\n", args[0])
			return nil
		},
	}
	return cmd
}

// NewPurgeCmd permanently deletes a trashed note.
func NewPurgeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "purge <note-id>",
		Short: "Permanently delete a trashed note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			note, err := app.Store.GetNote(args[0])
			if err != nil {
				return err
			}
			if note.DeletedAt == nil {
				return fmt.Errorf("note %s is not in the trash, delete it first", args[0])
			}
			if err := app.Store.PurgeNote(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Permanently deleted note %s\n", args[0])
			return nil
		},
	}
	return cmd
}

// NewTrashCmd lists trashed notes.
func NewTrashCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trash",
		Short: "List notes in the trash",
		RunE: func(cmd *cobra.Command, args []string) error {
			notes := app.Store.ListTrash()
			if len(notes) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Trash is empty.")
				return nil
			}
			printNotes(cmd.OutOrStdout(), notes, true)
			return nil
		},
	}
	return cmd
}

// NewCleanupCmd purges expired trash immediately.
func NewCleanupCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Purge trashed notes past the retention window",
		RunE: func(cmd *cobra.Command, args []string) error {
			count, err := app.Store.CleanupTrash()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Purged %d expired notes\n", count)
			return nil
		},
	}
	return cmd
}

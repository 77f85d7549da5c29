package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewBackupCmd groups the backup subcommands. The commands fail with a
// clear message when no backup key is configured.
func NewBackupCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Manage encrypted database backups",
	}

	cmd.AddCommand(
		newBackupCreateCmd(app),
		newBackupVerifyCmd(app),
		newBackupRestoreCmd(app),
	)

	return cmd
}

func requireBackup(app *App) error {
	if app.Backup == nil {
		return fmt.Errorf("backups are not configured, set STUCK_BACKUP_KEY")
	}
	return nil
}

func newBackupCreateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "create",
		Short: "Create an encrypted backup now",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireBackup(app); err != nil {
				return err
			}
			// Pending writes must be on disk before the snapshot
			if err := app.Store.Flush(cmd.Context()); err != nil {
				return err
			}
			path, err := app.Backup.CreateBackup()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Backup written to %s\n", path)
			return nil
		},
	}
}

func newBackupVerifyCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <path>",
		Short: "Verify a backup file's checksum",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireBackup(app); err != nil {
				return err
			}
			if err := app.Backup.VerifyBackup(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Backup %s verified\n", args[0])
			return nil
		},
	}
}

func newBackupRestoreCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <backup-path> <dest-path>",
		Short: "Decrypt a backup into a plain database file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireBackup(app); err != nil {
				return err
			}
			if err := app.Backup.RestoreBackup(args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Restored %s to %s\n", args[0], args[1])
			return nil
		},
	}
}

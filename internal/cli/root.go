package cli

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/stucknotes/stuck/internal/audit"
	"github.com/stucknotes/stuck/internal/backup"
	"github.com/stucknotes/stuck/internal/store"
)

// App bundles the wired services the commands operate on.
type App struct {
	Store   *store.Store
	Backup  *backup.Manager
	Auditor *audit.Logger
	Log     zerolog.Logger
}

// NewRootCmd assembles the command tree.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "stuck",
		Short:         "A folder-organized note store with trash and full-text search",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		NewAddCmd(app),
		NewListCmd(app),
		NewSearchCmd(app),
		NewEditCmd(app),
		NewMoveCmd(app),
		NewDeleteCmd(app),
		NewRestoreCmd(app),
		NewPurgeCmd(app),
		NewTrashCmd(app),
		NewCleanupCmd(app),
		NewFolderCmd(app),
		NewBackupCmd(app),
		NewHistoryCmd(app),
	)

	return root
}

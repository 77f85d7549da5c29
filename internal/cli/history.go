package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/stucknotes/stuck/internal/audit"
)

// NewHistoryCmd shows the recent activity log.
func NewHistoryCmd(app *App) *cobra.Command {
	var (
		noteID string
		action string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent note and folder activity",
		RunE: func(cmd *cobra.Command, args []string) error {
			events, err := app.Auditor.QueryLogs(audit.QueryFilters{
				NoteID: noteID,
				Action: action,
				Limit:  limit,
			})
			if err != nil {
				return err
			}
			if len(events) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No activity recorded.")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TIME\tACTION\tNOTE\tFOLDER\tOK")
			for _, event := range events {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%t\n",
					event.Timestamp.Local().Format(time.DateTime),
					event.Action,
					event.NoteID,
					event.Folder,
					event.Success,
				)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&noteID, "note", "", "only show activity for this note id")
	cmd.Flags().StringVar(&action, "action", "", "only show this action type")
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "maximum number of entries")
	return cmd
}

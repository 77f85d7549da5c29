package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/stucknotes/stuck/internal/models"
)

// NewAddCmd creates a note from arguments or stdin.
func NewAddCmd(app *App) *cobra.Command {
	var folder string

	cmd := &cobra.Command{
		Use:   "add [text...]",
		Short: "Create a new note",
		Long: `Create a new note. The text comes from the arguments, or from
stdin when no arguments are given. The first line becomes the title.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var body string
			if len(args) > 0 {
				body = strings.Join(args, " ")
			} else {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				body = string(data)
			}

			if strings.TrimSpace(body) == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "Not saving empty note.")
				return nil
			}

			note, err := app.Store.CreateNote(folder, body)
			if err != nil {
				return err
			}

			title := firstLine(body)
			if err := app.Store.UpdateNote(note.ID, models.NotePatch{Title: &title}); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created note %s in %s\n", note.ID, note.Folder)
			return nil
		},
	}

	cmd.Flags().StringVarP(&folder, "folder", "f", "", "folder to create the note in")
	return cmd
}

// NewListCmd lists active notes.
func NewListCmd(app *App) *cobra.Command {
	var folder string

	cmd := &cobra.Command{
		Use:     "list",
		Short:   "List active notes",
		Aliases: []string{"ls"},
		RunE: func(cmd *cobra.Command, args []string) error {
			notes := app.Store.ListActive(folder)
			if len(notes) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No notes found.")
				return nil
			}
			printNotes(cmd.OutOrStdout(), notes, false)
			return nil
		},
	}

	cmd.Flags().StringVarP(&folder, "folder", "f", "", "only list notes in this folder")
	return cmd
}

// NewSearchCmd queries the full-text index.
func NewSearchCmd(app *App) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search notes by title and body",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			notes, err := app.Store.Search(strings.Join(args, " "), limit)
			if err != nil {
				return err
			}
			if len(notes) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No matches.")
				return nil
			}
			printNotes(cmd.OutOrStdout(), notes, false)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "maximum number of results")
	return cmd
}

// NewEditCmd patches a note's title or body.
func NewEditCmd(app *App) *cobra.Command {
	var title, body string

	cmd := &cobra.Command{
		Use:   "edit <note-id>",
		Short: "Edit a note's title or body",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch := models.NotePatch{}
			if cmd.Flags().Changed("title") {
				patch.Title = &title
			}
			if cmd.Flags().Changed("body") {
				patch.Body = &body
			}
			if patch.Empty() {
				return fmt.Errorf("nothing to change, pass --title or --body")
			}

			if err := app.Store.UpdateNote(args[0], patch); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Updated note %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "new title")
	cmd.Flags().StringVarP(&body, "body", "b", "", "new body")
	return cmd
}

// NewMoveCmd reassigns a note's folder.
func NewMoveCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "move <note-id> <folder>",
		Short:   "Move a note to another folder",
		Aliases: []string{"mv"},
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Store.MoveNote(args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Moved note %s to %s\n", args[0], args[1])
			return nil
		},
	}
	return cmd
}

// printNotes renders a note table. trash adds the deletion column.
func printNotes(out io.Writer, notes []*models.Note, trash bool) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	if trash {
		fmt.Fprintln(w, "ID\tTITLE\tDELETED")
	} else {
		fmt.Fprintln(w, "ID\tTITLE\tFOLDER\tEDITED")
	}

	for _, note := range notes {
		title := note.Title
		if title == "" {
			title = "Untitled"
		}
		if trash {
			deleted := ""
			if note.DeletedAt != nil {
				deleted = note.DeletedAt.Local().Format(time.DateTime)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", note.ID, title, deleted)
		} else {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", note.ID, title, note.Folder, note.LastEdited.Local().Format(time.DateTime))
		}
	}
	w.Flush()
}

// firstLine derives a title the way the editor does on save.
func firstLine(body string) string {
	line := body
	if idx := strings.IndexByte(body, '\n'); idx >= 0 {
		line = body[:idx]
	}
	line = strings.TrimSpace(line)
	if len(line) > 255 {
		line = line[:255]
	}
	return line
}

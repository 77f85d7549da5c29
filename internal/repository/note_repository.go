package repository

import (
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/stucknotes/stuck/internal/models"
	"github.com/stucknotes/stuck/pkg/errors"
)

// Columns the store may patch through UpdateColumns.
var patchableColumns = map[string]bool{
	"title":       true,
	"body":        true,
	"folder":      true,
	"last_edited": true,
	"deleted_at":  true,
}

type NoteRepository struct {
	db     *sql.DB
	useFTS bool
}

// NewNoteRepository creates a new note repository. useFTS reports whether
// the FTS5 search index was installed by the migrations.
func NewNoteRepository(db *sql.DB, useFTS bool) *NoteRepository {
	return &NoteRepository{db: db, useFTS: useFTS}
}

// Insert persists a new note row
func (r *NoteRepository) Insert(note *models.Note) error {
	query := `
        INSERT INTO notes (id, title, body, created_at, last_edited, folder, deleted_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)
    `

	_, err := r.db.Exec(query,
		note.ID,
		note.Title,
		note.Body,
		note.CreatedAt.UTC().Format(time.RFC3339Nano),
		note.LastEdited.UTC().Format(time.RFC3339Nano),
		note.Folder,
		formatDeletedAt(note.DeletedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert note: %w", err)
	}

	return nil
}

// UpdateColumns writes only the changed columns for a note. Unknown
// column names are rejected before touching the store.
func (r *NoteRepository) UpdateColumns(id string, cols map[string]any) error {
	if len(cols) == 0 {
		return nil
	}

	names := make([]string, 0, len(cols))
	for name := range cols {
		if !patchableColumns[name] {
			return fmt.Errorf("column %q is not patchable", name)
		}
		names = append(names, name)
	}
	sort.Strings(names)

	sets := make([]string, 0, len(names))
	args := make([]any, 0, len(names)+1)
	for _, name := range names {
		sets = append(sets, name+" = ?")
		args = append(args, cols[name])
	}
	args = append(args, id)

	query := "UPDATE notes SET " + strings.Join(sets, ", ") + " WHERE id = ?"

	result, err := r.db.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("failed to update note: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if rows == 0 {
		return errors.ErrNotFound
	}

	return nil
}

// GetByID retrieves a note by ID
func (r *NoteRepository) GetByID(id string) (*models.Note, error) {
	query := `
        SELECT id, title, body, created_at, last_edited, folder, deleted_at
        FROM notes
        WHERE id = ?
    `

	note, err := scanNote(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, errors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get note: %w", err)
	}

	return note, nil
}

// List retrieves notes with filters, ordered by last_edited descending
func (r *NoteRepository) List(filters models.NoteListFilters) ([]*models.Note, error) {
	query := `
        SELECT id, title, body, created_at, last_edited, folder, deleted_at
        FROM notes
        WHERE 1=1
    `

	args := []any{}

	if !filters.IncludeDeleted {
		query += " AND deleted_at IS NULL"
	}

	if filters.Folder != "" {
		query += " AND folder = ?"
		args = append(args, filters.Folder)
	}

	query += " ORDER BY last_edited DESC"

	if filters.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filters.Limit)

		if filters.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, filters.Offset)
		}
	}

	return r.queryNotes(query, args...)
}

// ListAll retrieves every note row, trash included. Used to warm the
// entity store cache at startup.
func (r *NoteRepository) ListAll() ([]*models.Note, error) {
	query := `
        SELECT id, title, body, created_at, last_edited, folder, deleted_at
        FROM notes
        ORDER BY last_edited DESC
    `

	return r.queryNotes(query)
}

// Purge hard-deletes a note row; the index triggers retract its text.
func (r *NoteRepository) Purge(id string) error {
	result, err := r.db.Exec("DELETE FROM notes WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to purge note: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if rows == 0 {
		return errors.ErrNotFound
	}

	return nil
}

// PurgeExpired removes trashed notes whose deleted_at is older than cutoff
func (r *NoteRepository) PurgeExpired(cutoff time.Time) (int64, error) {
	result, err := r.db.Exec(
		"DELETE FROM notes WHERE deleted_at IS NOT NULL AND deleted_at < ?",
		cutoff.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired notes: %w", err)
	}

	return result.RowsAffected()
}

// Search performs a full-text search over titles and bodies
func (r *NoteRepository) Search(query string, limit int) ([]*models.Note, error) {
	if limit <= 0 {
		limit = 50
	}

	if r.useFTS {
		return r.searchWithFTS(query, limit)
	}
	return r.searchWithoutFTS(query, limit)
}

// searchWithFTS queries the derived index, prefix-matching the last term
func (r *NoteRepository) searchWithFTS(query string, limit int) ([]*models.Note, error) {
	ftsQuery := buildMatchQuery(query)

	searchQuery := `
        SELECT n.id, n.title, n.body, n.created_at, n.last_edited, n.folder, n.deleted_at
        FROM notes_fts f
        JOIN notes n ON f.rowid = n.rowid
        WHERE notes_fts MATCH ?
        ORDER BY rank
        LIMIT ?
    `

	return r.queryNotes(searchQuery, ftsQuery, limit)
}

// searchWithoutFTS falls back to LIKE matching when FTS5 is unavailable
func (r *NoteRepository) searchWithoutFTS(query string, limit int) ([]*models.Note, error) {
	pattern := "%" + strings.ReplaceAll(query, " ", "%") + "%"

	searchQuery := `
        SELECT id, title, body, created_at, last_edited, folder, deleted_at
        FROM notes
        WHERE (title LIKE ? OR body LIKE ?)
        ORDER BY last_edited DESC
        LIMIT ?
    `

	return r.queryNotes(searchQuery, pattern, pattern, limit)
}

// buildMatchQuery quotes each term and prefix-matches the final one,
// so a raw user string cannot break the MATCH expression syntax.
func buildMatchQuery(query string) string {
	terms := strings.Fields(query)
	if len(terms) == 0 {
		return `""`
	}

	quoted := make([]string, len(terms))
	for i, term := range terms {
		quoted[i] = `"` + strings.ReplaceAll(term, `"`, `""`) + `"`
	}
	quoted[len(quoted)-1] += "*"

	return strings.Join(quoted, " ")
}

func (r *NoteRepository) queryNotes(query string, args ...any) ([]*models.Note, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query notes: %w", err)
	}
	defer rows.Close()

	var notes []*models.Note
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		notes = append(notes, note)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return notes, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNote(row rowScanner) (*models.Note, error) {
	note := &models.Note{}
	var createdAt, lastEdited string
	var deletedAt sql.NullString

	err := row.Scan(
		&note.ID,
		&note.Title,
		&note.Body,
		&createdAt,
		&lastEdited,
		&note.Folder,
		&deletedAt,
	)
	if err != nil {
		return nil, err
	}

	note.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	note.LastEdited, _ = time.Parse(time.RFC3339Nano, lastEdited)
	if deletedAt.Valid {
		t, _ := time.Parse(time.RFC3339Nano, deletedAt.String)
		note.DeletedAt = &t
	}

	return note, nil
}

func formatDeletedAt(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// FormatTime renders a timestamp the way note rows store them.
func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

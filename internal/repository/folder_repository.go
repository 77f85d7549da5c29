package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/stucknotes/stuck/internal/database"
	"github.com/stucknotes/stuck/internal/models"
	"github.com/stucknotes/stuck/pkg/errors"
)

type FolderRepository struct {
	db *sql.DB
	tm *database.TransactionManager
}

// NewFolderRepository creates a new folder repository
func NewFolderRepository(db *sql.DB) *FolderRepository {
	return &FolderRepository{
		db: db,
		tm: database.NewTransactionManager(db),
	}
}

// List retrieves all folders in display order
func (r *FolderRepository) List() ([]models.Folder, error) {
	rows, err := r.db.Query("SELECT name, order_idx FROM folders ORDER BY order_idx, name")
	if err != nil {
		return nil, fmt.Errorf("failed to list folders: %w", err)
	}
	defer rows.Close()

	var folders []models.Folder
	for rows.Next() {
		var folder models.Folder
		if err := rows.Scan(&folder.Name, &folder.OrderIdx); err != nil {
			return nil, fmt.Errorf("failed to scan folder: %w", err)
		}
		folders = append(folders, folder)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return folders, nil
}

// Exists reports whether a folder row is present (case-sensitive match)
func (r *FolderRepository) Exists(name string) (bool, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM folders WHERE name = ?", name).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check folder: %w", err)
	}
	return count > 0, nil
}

// Create inserts a new folder row
func (r *FolderRepository) Create(folder models.Folder) error {
	_, err := r.db.Exec(
		"INSERT INTO folders (name, order_idx) VALUES (?, ?)",
		folder.Name, folder.OrderIdx,
	)
	if err != nil {
		return fmt.Errorf("failed to create folder: %w", err)
	}

	return nil
}

// Rename rewrites a folder name and every note referencing it in one
// transaction, so no note is ever left pointing at a missing folder.
func (r *FolderRepository) Rename(ctx context.Context, oldName, newName string) error {
	return r.tm.Execute(ctx, func(tx *sql.Tx) error {
		result, err := tx.Exec("UPDATE folders SET name = ? WHERE name = ?", newName, oldName)
		if err != nil {
			return fmt.Errorf("failed to rename folder: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get affected rows: %w", err)
		}
		if rows == 0 {
			return errors.ErrNotFound
		}

		if _, err := tx.Exec("UPDATE notes SET folder = ? WHERE folder = ?", newName, oldName); err != nil {
			return fmt.Errorf("failed to cascade rename to notes: %w", err)
		}

		return nil
	})
}

// Delete removes a folder, trashing its notes in the same transaction.
func (r *FolderRepository) Delete(ctx context.Context, name string, deletedAt time.Time) error {
	stamp := deletedAt.UTC().Format(time.RFC3339Nano)

	return r.tm.Execute(ctx, func(tx *sql.Tx) error {
		_, err := tx.Exec(
			"UPDATE notes SET folder = ?, deleted_at = ? WHERE folder = ?",
			models.FolderTrash, stamp, name,
		)
		if err != nil {
			return fmt.Errorf("failed to trash folder notes: %w", err)
		}

		result, err := tx.Exec("DELETE FROM folders WHERE name = ?", name)
		if err != nil {
			return fmt.Errorf("failed to delete folder: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get affected rows: %w", err)
		}
		if rows == 0 {
			return errors.ErrNotFound
		}

		return nil
	})
}

// Count returns the total number of folders
func (r *FolderRepository) Count() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM folders").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count folders: %w", err)
	}

	return count, nil
}

package database

import (
	"database/sql"
	"fmt"
)

// Migrate runs database migrations. It is safe to run on every startup:
// all statements are idempotent and pre-folder installations gain the
// folder/deleted_at columns without data loss. The returned flag reports
// whether the FTS5 search index is available in this build.
func Migrate(db *sql.DB) (bool, error) {
	notesSchema := `
    CREATE TABLE IF NOT EXISTS notes (
        id          TEXT PRIMARY KEY,
        title       TEXT NOT NULL,
        body        TEXT NOT NULL,
        created_at  TEXT NOT NULL,
        last_edited TEXT NOT NULL,
        folder      TEXT DEFAULT 'Default',
        deleted_at  TEXT
    );

    CREATE INDEX IF NOT EXISTS idx_notes_last_edited ON notes(last_edited DESC);
    CREATE INDEX IF NOT EXISTS idx_notes_folder ON notes(folder);
    CREATE INDEX IF NOT EXISTS idx_notes_deleted ON notes(deleted_at);
    `

	if _, err := db.Exec(notesSchema); err != nil {
		return false, fmt.Errorf("failed to create notes table: %w", err)
	}

	foldersSchema := `
    CREATE TABLE IF NOT EXISTS folders (
        name      TEXT PRIMARY KEY,
        order_idx INTEGER
    );

    INSERT OR IGNORE INTO folders (name, order_idx) VALUES ('Default', 0);
    INSERT OR IGNORE INTO folders (name, order_idx) VALUES ('Trash', 999);
    `

	if _, err := db.Exec(foldersSchema); err != nil {
		return false, fmt.Errorf("failed to create folders table: %w", err)
	}

	// Add folder and deleted_at columns to installations that predate
	// folders and soft delete. Errors are ignored as the columns may
	// already exist.
	_, _ = db.Exec("ALTER TABLE notes ADD COLUMN folder TEXT DEFAULT 'Default'")
	_, _ = db.Exec("ALTER TABLE notes ADD COLUMN deleted_at TEXT")

	useFTS := checkFTS5Support(db)
	if useFTS {
		if err := migrateSearchIndex(db); err != nil {
			// A build without usable FTS5 falls back to LIKE search
			useFTS = false
		}
	}

	return useFTS, nil
}

// migrateSearchIndex creates the external-content FTS table and the
// triggers that keep it in lock-step with the notes table. The triggers
// run inside the same transaction as the row mutation, so the index
// never observes uncommitted state.
func migrateSearchIndex(db *sql.DB) error {
	ftsSchema := `
    CREATE VIRTUAL TABLE IF NOT EXISTS notes_fts
        USING fts5(title, body, content='notes');

    CREATE TRIGGER IF NOT EXISTS notes_ai AFTER INSERT ON notes BEGIN
        INSERT INTO notes_fts(rowid, title, body)
            VALUES (new.rowid, new.title, new.body);
    END;

    CREATE TRIGGER IF NOT EXISTS notes_ad AFTER DELETE ON notes BEGIN
        INSERT INTO notes_fts(notes_fts, rowid, title, body)
            VALUES('delete', old.rowid, old.title, old.body);
    END;

    CREATE TRIGGER IF NOT EXISTS notes_au AFTER UPDATE ON notes BEGIN
        INSERT INTO notes_fts(notes_fts, rowid, title, body)
            VALUES('delete', old.rowid, old.title, old.body);
        INSERT INTO notes_fts(rowid, title, body)
            VALUES (new.rowid, new.title, new.body);
    END;
    `

	if _, err := db.Exec(ftsSchema); err != nil {
		return fmt.Errorf("failed to create search index: %w", err)
	}

	return nil
}

// checkFTS5Support checks if the FTS5 module is available
func checkFTS5Support(db *sql.DB) bool {
	_, err := db.Exec("CREATE VIRTUAL TABLE IF NOT EXISTS fts5_test USING fts5(content)")
	if err != nil {
		return false
	}

	_, _ = db.Exec("DROP TABLE IF EXISTS fts5_test")
	return true
}

package database

import (
	"database/sql"
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := Connect(Config{Path: filepath.Join(t.TempDir(), "notes.db")})
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return db
}

func TestMigrateCreatesSchema(t *testing.T) {
	db := openTestDB(t)

	if _, err := Migrate(db); err != nil {
		t.Fatalf("Migration failed: %v", err)
	}

	for _, table := range []string{"notes", "folders"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		if err != nil {
			t.Errorf("Table %s missing after migration: %v", table, err)
		}
	}
}

func TestMigrateSeedsReservedFolders(t *testing.T) {
	db := openTestDB(t)

	if _, err := Migrate(db); err != nil {
		t.Fatalf("Migration failed: %v", err)
	}

	rows := map[string]int{}
	result, err := db.Query(`SELECT name, order_idx FROM folders`)
	if err != nil {
		t.Fatalf("Failed to query folders: %v", err)
	}
	defer result.Close()
	for result.Next() {
		var name string
		var idx int
		if err := result.Scan(&name, &idx); err != nil {
			t.Fatalf("Scan failed: %v", err)
		}
		rows[name] = idx
	}

	if idx, ok := rows["Default"]; !ok || idx != 0 {
		t.Errorf("Default folder not seeded at order 0, got %v (present=%v)", idx, ok)
	}
	if idx, ok := rows["Trash"]; !ok || idx != 999 {
		t.Errorf("Trash folder not seeded at order 999, got %v (present=%v)", idx, ok)
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := openTestDB(t)

	first, err := Migrate(db)
	if err != nil {
		t.Fatalf("First migration failed: %v", err)
	}
	second, err := Migrate(db)
	if err != nil {
		t.Fatalf("Second migration failed: %v", err)
	}
	if first != second {
		t.Errorf("FTS availability changed between runs: %v then %v", first, second)
	}

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM folders WHERE name IN ('Default','Trash')`).Scan(&count); err != nil {
		t.Fatalf("Failed to count folders: %v", err)
	}
	if count != 2 {
		t.Errorf("Reserved folders duplicated or missing, count = %d", count)
	}
}

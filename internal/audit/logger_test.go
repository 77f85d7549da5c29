package audit

import (
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/stucknotes/stuck/internal/database"
)

func setupLogger(t *testing.T, async bool) *Logger {
	t.Helper()

	db, err := database.Connect(database.Config{Path: filepath.Join(t.TempDir(), "notes.db")})
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	logger, err := NewLogger(db, zerolog.Nop(), async)
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	t.Cleanup(func() { logger.Close() })

	return logger
}

func TestLogAndQuerySync(t *testing.T) {
	logger := setupLogger(t, false)

	event := &Event{
		Action:  ActionNoteCreated,
		NoteID:  "n1",
		Folder:  "Default",
		Success: true,
	}
	if err := logger.Log(event); err != nil {
		t.Fatalf("Log failed: %v", err)
	}

	events, err := logger.QueryLogs(QueryFilters{NoteID: "n1"})
	if err != nil {
		t.Fatalf("QueryLogs failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(events))
	}
	if events[0].Action != ActionNoteCreated || !events[0].Success {
		t.Errorf("Event mismatch: %+v", events[0])
	}
}

func TestQueryLogsFiltersByAction(t *testing.T) {
	logger := setupLogger(t, false)

	for _, action := range []string{ActionNoteCreated, ActionNoteTrashed, ActionNoteCreated} {
		if err := logger.Log(&Event{Action: action, NoteID: "n1", Success: true}); err != nil {
			t.Fatalf("Log failed: %v", err)
		}
	}

	events, err := logger.QueryLogs(QueryFilters{Action: ActionNoteCreated})
	if err != nil {
		t.Fatalf("QueryLogs failed: %v", err)
	}
	if len(events) != 2 {
		t.Errorf("Expected 2 created events, got %d", len(events))
	}
}

func TestAsyncLoggerDrainsOnClose(t *testing.T) {
	logger := setupLogger(t, true)

	for i := 0; i < 10; i++ {
		if err := logger.Log(&Event{Action: ActionNoteUpdated, NoteID: "n1", Success: true}); err != nil {
			t.Fatalf("Log failed: %v", err)
		}
	}

	// Close drains the queue before returning
	if err := logger.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	events, err := logger.QueryLogs(QueryFilters{NoteID: "n1"})
	if err != nil {
		t.Fatalf("QueryLogs failed: %v", err)
	}
	if len(events) != 10 {
		t.Errorf("Expected 10 events after drain, got %d", len(events))
	}
}

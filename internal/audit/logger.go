package audit

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Logger records store mutations in a durable activity log. In async
// mode events flow through a buffered channel and a worker goroutine,
// so logging never blocks the mutation path.
type Logger struct {
	db         *sql.DB
	log        zerolog.Logger
	asyncMode  bool
	eventQueue chan *Event
	wg         sync.WaitGroup
	ctx        context.Context
	cancel     context.CancelFunc
	closeOnce  sync.Once
}

// NewLogger creates a new activity logger
func NewLogger(db *sql.DB, log zerolog.Logger, asyncMode bool) (*Logger, error) {
	schema := `
    CREATE TABLE IF NOT EXISTS activity_log (
        id        INTEGER PRIMARY KEY AUTOINCREMENT,
        timestamp TEXT NOT NULL,
        action    TEXT NOT NULL,
        note_id   TEXT,
        folder    TEXT,
        success   BOOLEAN NOT NULL,
        error_msg TEXT,
        metadata  TEXT
    );

    CREATE INDEX IF NOT EXISTS idx_activity_timestamp ON activity_log(timestamp);
    CREATE INDEX IF NOT EXISTS idx_activity_note_id ON activity_log(note_id);
    CREATE INDEX IF NOT EXISTS idx_activity_action ON activity_log(action);
    `

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to create activity log table: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	logger := &Logger{
		db:        db,
		log:       log,
		asyncMode: asyncMode,
		ctx:       ctx,
		cancel:    cancel,
	}

	if asyncMode {
		logger.eventQueue = make(chan *Event, 1000)
		logger.startAsyncLogger()
	}

	return logger, nil
}

// Log records an activity event
func (al *Logger) Log(event *Event) error {
	event.Timestamp = time.Now()

	if al.asyncMode {
		select {
		case al.eventQueue <- event:
			return nil
		default:
			return fmt.Errorf("activity log queue is full")
		}
	}

	return al.writeEvent(event)
}

// writeEvent writes the event to the database and the structured log
func (al *Logger) writeEvent(event *Event) error {
	query := `
        INSERT INTO activity_log (timestamp, action, note_id, folder, success, error_msg, metadata)
        VALUES (?, ?, ?, ?, ?, ?, ?)
    `

	result, err := al.db.Exec(query,
		event.Timestamp.UTC().Format(time.RFC3339Nano),
		event.Action,
		event.NoteID,
		event.Folder,
		event.Success,
		event.ErrorMsg,
		event.Metadata,
	)
	if err != nil {
		al.log.Error().Err(err).Str("action", event.Action).Msg("failed to write activity log")
	} else {
		event.ID, _ = result.LastInsertId()
	}

	entry := al.log.Debug()
	if !event.Success {
		entry = al.log.Warn()
	}
	entry.
		Str("action", event.Action).
		Str("note_id", event.NoteID).
		Str("folder", event.Folder).
		Bool("success", event.Success).
		Str("error", event.ErrorMsg).
		Msg("activity")

	return nil
}

// startAsyncLogger starts the async logging worker
func (al *Logger) startAsyncLogger() {
	al.wg.Add(1)
	go func() {
		defer al.wg.Done()
		for {
			select {
			case event := <-al.eventQueue:
				al.writeEvent(event)
			case <-al.ctx.Done():
				// Drain remaining events
				for len(al.eventQueue) > 0 {
					event := <-al.eventQueue
					al.writeEvent(event)
				}
				return
			}
		}
	}()
}

// QueryLogs queries activity events with filters
func (al *Logger) QueryLogs(filters QueryFilters) ([]*Event, error) {
	query := `
        SELECT id, timestamp, action, note_id, folder, success, error_msg, metadata
        FROM activity_log
        WHERE 1=1
    `

	args := []any{}

	if filters.StartTime != nil {
		query += " AND timestamp >= ?"
		args = append(args, filters.StartTime.UTC().Format(time.RFC3339Nano))
	}

	if filters.EndTime != nil {
		query += " AND timestamp <= ?"
		args = append(args, filters.EndTime.UTC().Format(time.RFC3339Nano))
	}

	if filters.NoteID != "" {
		query += " AND note_id = ?"
		args = append(args, filters.NoteID)
	}

	if filters.Action != "" {
		query += " AND action = ?"
		args = append(args, filters.Action)
	}

	query += " ORDER BY timestamp DESC LIMIT ?"
	if filters.Limit <= 0 {
		filters.Limit = 100
	}
	args = append(args, filters.Limit)

	rows, err := al.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query activity log: %w", err)
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		event := &Event{}
		var ts string
		err := rows.Scan(
			&event.ID,
			&ts,
			&event.Action,
			&event.NoteID,
			&event.Folder,
			&event.Success,
			&event.ErrorMsg,
			&event.Metadata,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan activity event: %w", err)
		}
		event.Timestamp, _ = time.Parse(time.RFC3339Nano, ts)
		events = append(events, event)
	}

	return events, rows.Err()
}

// Close stops the worker after draining queued events. Safe to call
// more than once.
func (al *Logger) Close() error {
	al.closeOnce.Do(func() {
		if al.asyncMode {
			al.cancel()
			al.wg.Wait()
			close(al.eventQueue)
		}
	})

	return nil
}

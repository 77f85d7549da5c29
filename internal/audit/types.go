package audit

import "time"

// Actions recorded in the activity log.
const (
	ActionNoteCreated   = "NOTE_CREATED"
	ActionNoteUpdated   = "NOTE_UPDATED"
	ActionNoteTrashed   = "NOTE_TRASHED"
	ActionNoteRestored  = "NOTE_RESTORED"
	ActionNotePurged    = "NOTE_PURGED"
	ActionNoteMoved     = "NOTE_MOVED"
	ActionFolderCreated = "FOLDER_CREATED"
	ActionFolderRenamed = "FOLDER_RENAMED"
	ActionFolderDeleted = "FOLDER_DELETED"
	ActionWriteFailed   = "WRITE_FAILED"
	ActionTrashCleaned  = "TRASH_CLEANED"
)

type Event struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Action    string    `json:"action"`
	NoteID    string    `json:"note_id,omitempty"`
	Folder    string    `json:"folder,omitempty"`
	Success   bool      `json:"success"`
	ErrorMsg  string    `json:"error_msg,omitempty"`
	Metadata  string    `json:"metadata,omitempty"`
}

type QueryFilters struct {
	StartTime *time.Time
	EndTime   *time.Time
	NoteID    string
	Action    string
	Limit     int
}

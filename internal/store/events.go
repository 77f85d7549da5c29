package store

// EventType identifies a store mutation reported to observers.
type EventType string

const (
	EventNoteCreated   EventType = "note_created"
	EventNoteUpdated   EventType = "note_updated"
	EventNoteDeleted   EventType = "note_deleted"
	EventNoteRestored  EventType = "note_restored"
	EventNotePurged    EventType = "note_purged"
	EventNoteMoved     EventType = "note_moved"
	EventFolderCreated EventType = "folder_created"
	EventFolderRenamed EventType = "folder_renamed"
	EventFolderDeleted EventType = "folder_deleted"
	EventWriteFailed   EventType = "write_failed"
)

// Event is delivered to subscribers after the cache has been mutated.
// UI layers re-render from it instead of re-deriving state. Err is set
// only for EventWriteFailed and unwraps to errors.ErrPersistence.
type Event struct {
	Type   EventType
	NoteID string
	Folder string
	Err    error
}

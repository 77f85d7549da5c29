package session

import (
	"sync"

	"github.com/stucknotes/stuck/internal/models"
	"github.com/stucknotes/stuck/internal/store"
)

// NoteLister is the read surface the selection controller needs.
type NoteLister interface {
	ListActive(folder string) []*models.Note
}

// Selection tracks which folder and note the user is looking at. It
// keeps the selection valid across deletions, moves and folder
// switches without ever mutating notes itself.
type Selection struct {
	mu sync.Mutex

	lister        NoteLister
	currentFolder string
	currentNoteID string
}

func NewSelection(lister NoteLister) *Selection {
	return &Selection{
		lister:        lister,
		currentFolder: models.FolderDefault,
	}
}

// CurrentFolder returns the folder whose notes are displayed.
func (s *Selection) CurrentFolder() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentFolder
}

// CurrentNoteID returns the selected note id, or "" when nothing is
// selected.
func (s *Selection) CurrentNoteID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentNoteID
}

// Select makes a note the current one.
func (s *Selection) Select(noteID string) {
	s.mu.Lock()
	s.currentNoteID = noteID
	s.mu.Unlock()
}

// SwitchFolder changes the displayed folder. The selection is reseated
// to the folder's first note only when the current note is not visible
// there; switching back and forth never loses a selection that is
// still on screen.
func (s *Selection) SwitchFolder(folder string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.currentFolder = folder

	notes := s.lister.ListActive(folder)
	for _, note := range notes {
		if note.ID == s.currentNoteID {
			return
		}
	}

	if len(notes) > 0 {
		s.currentNoteID = notes[0].ID
	} else {
		s.currentNoteID = ""
	}
}

// NoteRemoved reseats the selection after the current note leaves the
// visible list. remaining is the post-removal ordering of the folder;
// removedIndex is where the note sat before removal. The replacement
// is the note now at the same index, else the previous one, else none.
func (s *Selection) NoteRemoved(removedID string, removedIndex int, remaining []*models.Note) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.currentNoteID != removedID {
		return
	}

	if len(remaining) == 0 {
		s.currentNoteID = ""
		return
	}

	if removedIndex >= len(remaining) {
		removedIndex = len(remaining) - 1
	}
	if removedIndex < 0 {
		removedIndex = 0
	}
	s.currentNoteID = remaining[removedIndex].ID
}

// Observe wires the selection to store events so deletions, moves and
// folder removals performed elsewhere keep the selection consistent.
// Register it with the store via Subscribe.
func (s *Selection) Observe(event store.Event) {
	switch event.Type {
	case store.EventNoteDeleted, store.EventNoteMoved, store.EventNotePurged:
		if s.CurrentNoteID() != event.NoteID {
			return
		}
	case store.EventFolderDeleted, store.EventFolderRenamed:
		// Fall through to the visibility check below
	default:
		return
	}

	s.mu.Lock()
	folder := s.currentFolder
	noteID := s.currentNoteID
	s.mu.Unlock()

	notes := s.lister.ListActive(folder)
	for _, note := range notes {
		if note.ID == noteID {
			return
		}
	}
	// Position is unknown here, so the fallback seats at the top
	s.NoteRemoved(noteID, 0, notes)
}

package session

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stucknotes/stuck/internal/models"
	"github.com/stucknotes/stuck/internal/store"
)

// fakeLister serves canned per-folder note lists.
type fakeLister struct {
	byFolder map[string][]*models.Note
}

func (f *fakeLister) ListActive(folder string) []*models.Note {
	return f.byFolder[folder]
}

func note(id string) *models.Note {
	return &models.Note{ID: id, Folder: models.FolderDefault}
}

func TestSelectionStartsInDefaultFolder(t *testing.T) {
	sel := NewSelection(&fakeLister{byFolder: map[string][]*models.Note{}})

	assert.Equal(t, models.FolderDefault, sel.CurrentFolder())
	assert.Empty(t, sel.CurrentNoteID())
}

func TestSwitchFolderSeatsFirstNote(t *testing.T) {
	lister := &fakeLister{byFolder: map[string][]*models.Note{
		"Work": {note("w1"), note("w2")},
	}}
	sel := NewSelection(lister)

	sel.SwitchFolder("Work")

	assert.Equal(t, "Work", sel.CurrentFolder())
	assert.Equal(t, "w1", sel.CurrentNoteID())
}

func TestSwitchFolderKeepsVisibleSelection(t *testing.T) {
	lister := &fakeLister{byFolder: map[string][]*models.Note{
		"Work": {note("w1"), note("w2")},
	}}
	sel := NewSelection(lister)

	sel.SwitchFolder("Work")
	sel.Select("w2")
	sel.SwitchFolder("Work")

	assert.Equal(t, "w2", sel.CurrentNoteID())
}

func TestSwitchFolderToEmptyClearsSelection(t *testing.T) {
	lister := &fakeLister{byFolder: map[string][]*models.Note{
		"Work": {note("w1")},
	}}
	sel := NewSelection(lister)

	sel.SwitchFolder("Work")
	assert.Equal(t, "w1", sel.CurrentNoteID())

	sel.SwitchFolder("Empty")
	assert.Empty(t, sel.CurrentNoteID())
}

func TestNoteRemovedPicksSameIndex(t *testing.T) {
	sel := NewSelection(&fakeLister{})
	sel.Select("b")

	// b sat at index 1; c now occupies that slot
	remaining := []*models.Note{note("a"), note("c"), note("d")}
	sel.NoteRemoved("b", 1, remaining)

	assert.Equal(t, "c", sel.CurrentNoteID())
}

func TestNoteRemovedFallsBackToPrevious(t *testing.T) {
	sel := NewSelection(&fakeLister{})
	sel.Select("c")

	// c was the last entry; the previous note takes over
	remaining := []*models.Note{note("a"), note("b")}
	sel.NoteRemoved("c", 2, remaining)

	assert.Equal(t, "b", sel.CurrentNoteID())
}

func TestNoteRemovedClearsWhenListEmpty(t *testing.T) {
	sel := NewSelection(&fakeLister{})
	sel.Select("only")

	sel.NoteRemoved("only", 0, nil)

	assert.Empty(t, sel.CurrentNoteID())
}

func TestObserveReseatsAfterExternalDelete(t *testing.T) {
	lister := &fakeLister{byFolder: map[string][]*models.Note{
		models.FolderDefault: {note("a"), note("b")},
	}}
	sel := NewSelection(lister)
	sel.Select("gone")

	sel.Observe(store.Event{Type: store.EventNoteDeleted, NoteID: "gone"})

	assert.Equal(t, "a", sel.CurrentNoteID())
}

func TestObserveKeepsSelectionWhenStillVisible(t *testing.T) {
	lister := &fakeLister{byFolder: map[string][]*models.Note{
		models.FolderDefault: {note("a"), note("b")},
	}}
	sel := NewSelection(lister)
	sel.Select("b")

	sel.Observe(store.Event{Type: store.EventNoteMoved, NoteID: "b"})

	assert.Equal(t, "b", sel.CurrentNoteID())
}

func TestObserveIgnoresUnrelatedNotes(t *testing.T) {
	lister := &fakeLister{byFolder: map[string][]*models.Note{
		models.FolderDefault: {note("keep")},
	}}
	sel := NewSelection(lister)
	sel.Select("keep")

	sel.Observe(store.Event{Type: store.EventNoteDeleted, NoteID: "other"})

	assert.Equal(t, "keep", sel.CurrentNoteID())
}

func TestNoteRemovedIgnoresOtherNotes(t *testing.T) {
	sel := NewSelection(&fakeLister{})
	sel.Select("keep")

	sel.NoteRemoved("other", 0, []*models.Note{note("a")})

	assert.Equal(t, "keep", sel.CurrentNoteID())
}

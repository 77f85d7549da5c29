package cli

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stucknotes/stuck/internal/database"
	"github.com/stucknotes/stuck/internal/repository"
	"github.com/stucknotes/stuck/internal/store"
)

func newTestApp(t *testing.T) *App {
	t.Helper()

	db, err := database.Connect(database.Config{Path: filepath.Join(t.TempDir(), "notes.db")})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	useFTS, err := database.Migrate(db)
	require.NoError(t, err)

	s, err := store.New(
		repository.NewNoteRepository(db, useFTS),
		repository.NewFolderRepository(db),
		nil, zerolog.Nop(), store.Options{AutosaveRPS: 1000, AutosaveBurst: 1000},
	)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	return &App{Store: s, Log: zerolog.Nop()}
}

func runCmd(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()

	root := NewRootCmd(app)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)

	err := root.Execute()
	return out.String(), err
}

func TestAddAndList(t *testing.T) {
	app := newTestApp(t)

	out, err := runCmd(t, app, "add", "shopping list\nmilk and eggs")
	require.NoError(t, err)
	assert.Contains(t, out, "Created note")

	out, err = runCmd(t, app, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "shopping list")
	assert.Contains(t, out, "Default")
}

func TestAddRefusesEmptyNote(t *testing.T) {
	app := newTestApp(t)

	out, err := runCmd(t, app, "add", "   ")
	require.NoError(t, err)
	assert.Contains(t, out, "Not saving empty note.")

	assert.Empty(t, app.Store.ListActive(""))
}

func TestAddIntoFolder(t *testing.T) {
	app := newTestApp(t)

	_, err := runCmd(t, app, "folder", "add", "Work")
	require.NoError(t, err)

	_, err = runCmd(t, app, "add", "--folder", "Work", "standup notes")
	require.NoError(t, err)

	notes := app.Store.ListActive("Work")
	require.Len(t, notes, 1)
	assert.Equal(t, "standup notes", notes[0].Title)
}

func TestDeleteAndTrashAndRestore(t *testing.T) {
	app := newTestApp(t)

	_, err := runCmd(t, app, "add", "doomed note")
	require.NoError(t, err)
	id := app.Store.ListActive("")[0].ID

	_, err = runCmd(t, app, "delete", id)
	require.NoError(t, err)

	out, err := runCmd(t, app, "trash")
	require.NoError(t, err)
	assert.Contains(t, out, "doomed note")

	_, err = runCmd(t, app, "restore", id)
	require.NoError(t, err)

	out, err = runCmd(t, app, "trash")
	require.NoError(t, err)
	assert.Contains(t, out, "Trash is empty.")
}

func TestPurgeRequiresTrashedNote(t *testing.T) {
	app := newTestApp(t)

	_, err := runCmd(t, app, "add", "still alive")
	require.NoError(t, err)
	id := app.Store.ListActive("")[0].ID

	_, err = runCmd(t, app, "purge", id)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not in the trash")
}

func TestFolderListShowsCounts(t *testing.T) {
	app := newTestApp(t)

	_, err := runCmd(t, app, "folder", "add", "Work")
	require.NoError(t, err)
	_, err = runCmd(t, app, "add", "--folder", "Work", "one")
	require.NoError(t, err)

	out, err := runCmd(t, app, "folder", "list")
	require.NoError(t, err)

	assert.Contains(t, out, "Work")
	assert.Contains(t, out, "Default")
	assert.Contains(t, out, "Trash")
}

func TestMoveCommand(t *testing.T) {
	app := newTestApp(t)

	_, err := runCmd(t, app, "folder", "add", "Plan")
	require.NoError(t, err)
	_, err = runCmd(t, app, "add", "roaming note")
	require.NoError(t, err)
	id := app.Store.ListActive("")[0].ID

	_, err = runCmd(t, app, "move", id, "Plan")
	require.NoError(t, err)

	assert.Empty(t, app.Store.ListActive("Default"))
	require.Len(t, app.Store.ListActive("Plan"), 1)
}

func TestSearchCommand(t *testing.T) {
	app := newTestApp(t)

	_, err := runCmd(t, app, "add", "meeting agenda\ndiscuss roadmap")
	require.NoError(t, err)
	_, err = runCmd(t, app, "add", "grocery run\nmilk")
	require.NoError(t, err)

	out, err := runCmd(t, app, "search", "roadmap")
	require.NoError(t, err)
	assert.Contains(t, out, "meeting agenda")
	assert.False(t, strings.Contains(out, "grocery run"))
}

func TestEditCommand(t *testing.T) {
	app := newTestApp(t)

	_, err := runCmd(t, app, "add", "typo titel")
	require.NoError(t, err)
	id := app.Store.ListActive("")[0].ID

	_, err = runCmd(t, app, "edit", id, "--title", "fixed title")
	require.NoError(t, err)

	note, err := app.Store.GetNote(id)
	require.NoError(t, err)
	assert.Equal(t, "fixed title", note.Title)
}

func TestBackupCommandsWithoutKey(t *testing.T) {
	app := newTestApp(t)

	_, err := runCmd(t, app, "backup", "create")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STUCK_BACKUP_KEY")
}

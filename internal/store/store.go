package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/stucknotes/stuck/internal/audit"
	"github.com/stucknotes/stuck/internal/models"
	"github.com/stucknotes/stuck/internal/ratelimit"
	"github.com/stucknotes/stuck/internal/repository"
	"github.com/stucknotes/stuck/pkg/errors"
	"github.com/stucknotes/stuck/pkg/validator"
)

// Store is the in-memory authoritative cache of notes and folders for
// the session. Every mutation validates first, updates the cache
// synchronously under the lock, then schedules durable writes through
// the per-note write queue. Reads never touch the database.
type Store struct {
	mu      sync.RWMutex
	notes   map[string]*models.Note
	folders []models.Folder

	repo       *repository.NoteRepository
	folderRepo *repository.FolderRepository
	writer     *writer
	auditor    *audit.Logger
	validator  *validator.Validator
	log        zerolog.Logger

	obsMu     sync.Mutex
	observers []func(Event)

	retention time.Duration
	now       func() time.Time
}

type Options struct {
	TrashRetentionDays int
	AutosaveRPS        int
	AutosaveBurst      int
}

// New creates the entity store and warms its cache from the durable
// store. It is the only component that may mutate the cache.
func New(noteRepo *repository.NoteRepository, folderRepo *repository.FolderRepository, auditor *audit.Logger, log zerolog.Logger, opts Options) (*Store, error) {
	if opts.TrashRetentionDays <= 0 {
		opts.TrashRetentionDays = 30
	}
	if opts.AutosaveRPS <= 0 {
		opts.AutosaveRPS = 4
	}
	if opts.AutosaveBurst <= 0 {
		opts.AutosaveBurst = 8
	}

	s := &Store{
		notes:      make(map[string]*models.Note),
		repo:       noteRepo,
		folderRepo: folderRepo,
		auditor:    auditor,
		validator:  validator.New(),
		log:        log,
		retention:  time.Duration(opts.TrashRetentionDays) * 24 * time.Hour,
		now:        time.Now,
	}

	limiter := ratelimit.NewLimiter(opts.AutosaveRPS, opts.AutosaveBurst)
	s.writer = newWriter(noteRepo, limiter, log, s.handleWriteError)

	if err := s.load(); err != nil {
		return nil, err
	}

	return s, nil
}

// load warms the cache with every note and folder row
func (s *Store) load() error {
	notes, err := s.repo.ListAll()
	if err != nil {
		return fmt.Errorf("failed to load notes: %w", err)
	}

	folders, err := s.folderRepo.List()
	if err != nil {
		return fmt.Errorf("failed to load folders: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, note := range notes {
		s.notes[note.ID] = note
	}
	s.folders = folders

	return nil
}

// Subscribe registers an observer called after every mutation. UI
// layers re-render from events instead of re-deriving state.
func (s *Store) Subscribe(fn func(Event)) {
	s.obsMu.Lock()
	s.observers = append(s.observers, fn)
	s.obsMu.Unlock()
}

func (s *Store) emit(event Event) {
	s.obsMu.Lock()
	observers := make([]func(Event), len(s.observers))
	copy(observers, s.observers)
	s.obsMu.Unlock()

	for _, fn := range observers {
		fn(event)
	}
}

func (s *Store) handleWriteError(noteID string, err error) {
	s.audit(&audit.Event{Action: audit.ActionWriteFailed, NoteID: noteID, Success: false, ErrorMsg: err.Error()})
	s.emit(Event{Type: EventWriteFailed, NoteID: noteID, Err: err})
}

func (s *Store) audit(event *audit.Event) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Log(event); err != nil {
		s.log.Warn().Err(err).Str("action", event.Action).Msg("failed to record activity")
	}
}

// CreateNote allocates a new note in the given folder. The body is the
// caller-supplied current editor content and may be empty. An empty or
// Trash folder falls back to Default; an unknown folder is ErrNotFound.
func (s *Store) CreateNote(folder, body string) (*models.Note, error) {
	if err := s.validator.ValidateNoteBody(body); err != nil {
		return nil, err
	}

	s.mu.Lock()
	if folder == "" || folder == models.FolderTrash {
		folder = models.FolderDefault
	}
	if !s.folderExistsLocked(folder) {
		s.mu.Unlock()
		return nil, errors.NewAppError(errors.ErrNotFound, fmt.Sprintf("folder %q does not exist", folder))
	}

	now := s.now()
	note := &models.Note{
		ID:         uuid.NewString(),
		Title:      "",
		Body:       body,
		Folder:     folder,
		CreatedAt:  now,
		LastEdited: now,
	}
	s.notes[note.ID] = note
	clone := note.Clone()
	s.mu.Unlock()

	// Optimistic: the cache entry stays even if this write later fails
	s.writer.enqueueInsert(clone)

	s.audit(&audit.Event{Action: audit.ActionNoteCreated, NoteID: note.ID, Folder: folder, Success: true})
	s.emit(Event{Type: EventNoteCreated, NoteID: note.ID, Folder: folder})

	return note.Clone(), nil
}

// UpdateNote merges a patch into the note, bumps last_edited and
// schedules a durable update of only the patched columns. Updates for
// one note never interleave on the durable store.
func (s *Store) UpdateNote(id string, patch models.NotePatch) error {
	if patch.Empty() {
		return nil
	}

	if patch.Title != nil {
		if err := s.validator.ValidateNoteTitle(*patch.Title); err != nil {
			return err
		}
	}
	if patch.Body != nil {
		if err := s.validator.ValidateNoteBody(*patch.Body); err != nil {
			return err
		}
	}

	s.mu.Lock()
	note, ok := s.notes[id]
	if !ok {
		s.mu.Unlock()
		return errors.ErrNotFound
	}

	if patch.Folder != nil && !s.folderExistsLocked(*patch.Folder) {
		s.mu.Unlock()
		return errors.NewAppError(errors.ErrNotFound, fmt.Sprintf("folder %q does not exist", *patch.Folder))
	}

	now := s.now()
	cols := map[string]any{"last_edited": repository.FormatTime(now)}

	if patch.Title != nil {
		note.Title = *patch.Title
		cols["title"] = note.Title
	}
	if patch.Body != nil {
		note.Body = *patch.Body
		cols["body"] = note.Body
	}
	if patch.Folder != nil {
		note.Folder = *patch.Folder
		cols["folder"] = note.Folder
	}
	note.LastEdited = now
	folder := note.Folder
	s.mu.Unlock()

	s.writer.enqueueUpdate(id, cols)

	s.audit(&audit.Event{Action: audit.ActionNoteUpdated, NoteID: id, Folder: folder, Success: true})
	s.emit(Event{Type: EventNoteUpdated, NoteID: id, Folder: folder})

	return nil
}

// DeleteNote soft-deletes: the note moves to Trash and gets a deletion
// stamp. It returns the post-delete active ordering of the vacated
// folder so the caller can pick a fallback selection.
func (s *Store) DeleteNote(id string) ([]*models.Note, error) {
	s.mu.Lock()
	note, ok := s.notes[id]
	if !ok {
		s.mu.Unlock()
		return nil, errors.ErrNotFound
	}

	vacated := note.Folder
	if note.DeletedAt == nil {
		now := s.now()
		note.Folder = models.FolderTrash
		note.DeletedAt = &now

		s.mu.Unlock()
		s.writer.enqueueUpdate(id, map[string]any{
			"folder":     models.FolderTrash,
			"deleted_at": repository.FormatTime(now),
		})

		s.audit(&audit.Event{Action: audit.ActionNoteTrashed, NoteID: id, Folder: vacated, Success: true})
		s.emit(Event{Type: EventNoteDeleted, NoteID: id, Folder: vacated})
	} else {
		s.mu.Unlock()
	}

	s.mu.RLock()
	remaining := s.listActiveLocked(vacated)
	s.mu.RUnlock()

	return remaining, nil
}

// RestoreNote clears the deletion stamp and returns the note to Default.
func (s *Store) RestoreNote(id string) error {
	s.mu.Lock()
	note, ok := s.notes[id]
	if !ok {
		s.mu.Unlock()
		return errors.ErrNotFound
	}
	if note.DeletedAt == nil {
		s.mu.Unlock()
		return nil
	}

	note.DeletedAt = nil
	note.Folder = models.FolderDefault
	s.mu.Unlock()

	s.writer.enqueueUpdate(id, map[string]any{
		"folder":     models.FolderDefault,
		"deleted_at": nil,
	})

	s.audit(&audit.Event{Action: audit.ActionNoteRestored, NoteID: id, Folder: models.FolderDefault, Success: true})
	s.emit(Event{Type: EventNoteRestored, NoteID: id, Folder: models.FolderDefault})

	return nil
}

// PurgeNote hard-deletes a note from the cache and the durable store.
// Callers enforce the Trash-only policy.
func (s *Store) PurgeNote(id string) error {
	s.mu.Lock()
	note, ok := s.notes[id]
	if !ok {
		s.mu.Unlock()
		return errors.ErrNotFound
	}
	folder := note.Folder
	delete(s.notes, id)
	s.mu.Unlock()

	s.writer.enqueuePurge(id)

	s.audit(&audit.Event{Action: audit.ActionNotePurged, NoteID: id, Folder: folder, Success: true})
	s.emit(Event{Type: EventNotePurged, NoteID: id, Folder: folder})

	return nil
}

// MoveNote reassigns a note's folder without treating it as a content
// edit: last_edited is left alone. Moving into Trash stamps the
// deletion time and moving out clears it, so the Trash-folder/
// deleted-at invariant holds in both directions.
func (s *Store) MoveNote(id, destFolder string) error {
	s.mu.Lock()
	note, ok := s.notes[id]
	if !ok {
		s.mu.Unlock()
		return errors.ErrNotFound
	}
	if !s.folderExistsLocked(destFolder) {
		s.mu.Unlock()
		return errors.NewAppError(errors.ErrNotFound, fmt.Sprintf("folder %q does not exist", destFolder))
	}
	if note.Folder == destFolder {
		s.mu.Unlock()
		return nil
	}

	cols := map[string]any{"folder": destFolder}

	if destFolder == models.FolderTrash && note.DeletedAt == nil {
		now := s.now()
		note.DeletedAt = &now
		cols["deleted_at"] = repository.FormatTime(now)
	} else if destFolder != models.FolderTrash && note.DeletedAt != nil {
		note.DeletedAt = nil
		cols["deleted_at"] = nil
	}

	note.Folder = destFolder
	s.mu.Unlock()

	s.writer.enqueueUpdate(id, cols)

	s.audit(&audit.Event{Action: audit.ActionNoteMoved, NoteID: id, Folder: destFolder, Success: true})
	s.emit(Event{Type: EventNoteMoved, NoteID: id, Folder: destFolder})

	return nil
}

// GetNote returns a copy of a cached note.
func (s *Store) GetNote(id string) (*models.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	note, ok := s.notes[id]
	if !ok {
		return nil, errors.ErrNotFound
	}

	return note.Clone(), nil
}

// ListActive returns the active notes, optionally filtered by folder,
// ordered by last_edited descending. The result is a snapshot; callers
// re-query after mutations.
func (s *Store) ListActive(folder string) []*models.Note {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.listActiveLocked(folder)
}

func (s *Store) listActiveLocked(folder string) []*models.Note {
	var notes []*models.Note
	for _, note := range s.notes {
		if !note.Active() {
			continue
		}
		if folder != "" && note.Folder != folder {
			continue
		}
		notes = append(notes, note.Clone())
	}

	sortNotes(notes)
	return notes
}

// ListTrash returns trashed notes, most recently deleted first.
func (s *Store) ListTrash() []*models.Note {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var notes []*models.Note
	for _, note := range s.notes {
		if note.Active() {
			continue
		}
		notes = append(notes, note.Clone())
	}

	sort.Slice(notes, func(i, j int) bool {
		if !notes[i].DeletedAt.Equal(*notes[j].DeletedAt) {
			return notes[i].DeletedAt.After(*notes[j].DeletedAt)
		}
		return notes[i].ID < notes[j].ID
	})

	return notes
}

// Search queries the derived full-text index. Pending writes are
// flushed first so just-typed text is already indexed.
func (s *Store) Search(query string, limit int) ([]*models.Note, error) {
	if err := s.writer.flush(context.Background()); err != nil {
		return nil, err
	}
	return s.repo.Search(query, limit)
}

// Folders returns the folder list in display order.
func (s *Store) Folders() []models.Folder {
	s.mu.RLock()
	defer s.mu.RUnlock()

	folders := make([]models.Folder, len(s.folders))
	copy(folders, s.folders)
	return folders
}

// CreateFolder appends a folder with the next order index.
func (s *Store) CreateFolder(name string) error {
	name = s.validator.SanitizeString(name)
	if err := s.validator.ValidateFolderName(name); err != nil {
		return err
	}

	s.mu.Lock()
	if s.folderExistsLocked(name) {
		s.mu.Unlock()
		return errors.ErrDuplicateFolder
	}
	folder := models.Folder{Name: name, OrderIdx: s.nextOrderIdxLocked()}
	s.mu.Unlock()

	// Structural change: written synchronously, cache updated on success
	if err := s.folderRepo.Create(folder); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrPersistence, err)
	}

	s.mu.Lock()
	s.folders = append(s.folders, folder)
	s.sortFoldersLocked()
	s.mu.Unlock()

	s.audit(&audit.Event{Action: audit.ActionFolderCreated, Folder: name, Success: true})
	s.emit(Event{Type: EventFolderCreated, Folder: name})

	return nil
}

// RenameFolder rewrites a folder name and every referencing note in one
// transaction. Reserved folders refuse the rename.
func (s *Store) RenameFolder(oldName, newName string) error {
	if oldName == models.FolderDefault || oldName == models.FolderTrash {
		return errors.ErrProtectedFolder
	}
	newName = s.validator.SanitizeString(newName)
	if err := s.validator.ValidateFolderName(newName); err != nil {
		return err
	}

	s.mu.Lock()
	if !s.folderExistsLocked(oldName) {
		s.mu.Unlock()
		return errors.ErrNotFound
	}
	if s.folderExistsLocked(newName) {
		s.mu.Unlock()
		return errors.ErrDuplicateFolder
	}
	s.mu.Unlock()

	// Queued note writes still naming the old folder must land first
	if err := s.writer.flush(context.Background()); err != nil {
		return err
	}

	if err := s.folderRepo.Rename(context.Background(), oldName, newName); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrPersistence, err)
	}

	s.mu.Lock()
	for i := range s.folders {
		if s.folders[i].Name == oldName {
			s.folders[i].Name = newName
		}
	}
	s.sortFoldersLocked()
	for _, note := range s.notes {
		if note.Folder == oldName {
			note.Folder = newName
		}
	}
	s.mu.Unlock()

	s.audit(&audit.Event{Action: audit.ActionFolderRenamed, Folder: newName, Success: true, Metadata: "from=" + oldName})
	s.emit(Event{Type: EventFolderRenamed, Folder: newName})

	return nil
}

// DeleteFolder removes a folder, trashing its notes in the same
// transaction. Default and Trash refuse deletion.
func (s *Store) DeleteFolder(name string) error {
	if name == models.FolderDefault || name == models.FolderTrash {
		return errors.ErrProtectedFolder
	}

	s.mu.Lock()
	if !s.folderExistsLocked(name) {
		s.mu.Unlock()
		return errors.ErrNotFound
	}
	s.mu.Unlock()

	if err := s.writer.flush(context.Background()); err != nil {
		return err
	}

	now := s.now()
	if err := s.folderRepo.Delete(context.Background(), name, now); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrPersistence, err)
	}

	s.mu.Lock()
	folders := s.folders[:0]
	for _, folder := range s.folders {
		if folder.Name != name {
			folders = append(folders, folder)
		}
	}
	s.folders = folders
	for _, note := range s.notes {
		if note.Folder == name {
			note.Folder = models.FolderTrash
			stamp := now
			note.DeletedAt = &stamp
		}
	}
	s.mu.Unlock()

	s.audit(&audit.Event{Action: audit.ActionFolderDeleted, Folder: name, Success: true})
	s.emit(Event{Type: EventFolderDeleted, Folder: name})

	return nil
}

// CleanupTrash purges notes deleted longer ago than the retention
// window. Returns the number of notes removed.
func (s *Store) CleanupTrash() (int64, error) {
	cutoff := s.now().Add(-s.retention)

	count, err := s.repo.PurgeExpired(cutoff)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", errors.ErrPersistence, err)
	}

	s.mu.Lock()
	for id, note := range s.notes {
		if note.DeletedAt != nil && note.DeletedAt.Before(cutoff) {
			delete(s.notes, id)
		}
	}
	s.mu.Unlock()

	if count > 0 {
		s.audit(&audit.Event{Action: audit.ActionTrashCleaned, Success: true, Metadata: fmt.Sprintf("count=%d", count)})
	}

	return count, nil
}

// Flush waits for every scheduled durable write to land and reports the
// first persistence failure, if any.
func (s *Store) Flush(ctx context.Context) error {
	return s.writer.flush(ctx)
}

// Close drains pending writes. The database handle itself is owned by
// the caller.
func (s *Store) Close() error {
	return s.writer.flush(context.Background())
}

// nextOrderIdxLocked picks the display slot for a new folder: right
// after the last user folder. Trash's sentinel index keeps it pinned to
// the bottom and must not inflate the sequence.
func (s *Store) nextOrderIdxLocked() int {
	next := 1
	for _, folder := range s.folders {
		if folder.Name == models.FolderTrash {
			continue
		}
		if folder.OrderIdx >= next {
			next = folder.OrderIdx + 1
		}
	}
	return next
}

func (s *Store) folderExistsLocked(name string) bool {
	for _, folder := range s.folders {
		if folder.Name == name {
			return true
		}
	}
	return false
}

func (s *Store) sortFoldersLocked() {
	sort.Slice(s.folders, func(i, j int) bool {
		if s.folders[i].OrderIdx != s.folders[j].OrderIdx {
			return s.folders[i].OrderIdx < s.folders[j].OrderIdx
		}
		return s.folders[i].Name < s.folders[j].Name
	})
}

// sortNotes orders by last_edited descending with a stable tiebreak.
func sortNotes(notes []*models.Note) {
	sort.Slice(notes, func(i, j int) bool {
		if !notes[i].LastEdited.Equal(notes[j].LastEdited) {
			return notes[i].LastEdited.After(notes[j].LastEdited)
		}
		return notes[i].ID < notes[j].ID
	})
}

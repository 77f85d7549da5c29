package store

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/stucknotes/stuck/internal/models"
	"github.com/stucknotes/stuck/internal/ratelimit"
	"github.com/stucknotes/stuck/internal/repository"
	"github.com/stucknotes/stuck/pkg/errors"
)

type opKind int

const (
	opInsert opKind = iota
	opUpdate
	opPurge
)

type writeOp struct {
	kind opKind
	note *models.Note   // opInsert
	cols map[string]any // opUpdate
}

// writer applies durable writes asynchronously. Each dirty note gets its
// own FIFO queue drained by a lazily spawned worker, so writes for one
// note id land in program order while different notes proceed
// independently. Consecutive queued updates for a note coalesce into a
// single write, and flushes are paced per note by the limiter so
// per-keystroke autosave does not turn into one disk write per event.
type writer struct {
	repo    *repository.NoteRepository
	limiter *ratelimit.Limiter
	log     zerolog.Logger
	onError func(noteID string, err error)

	mu     sync.Mutex
	queues map[string][]writeOp
	active map[string]bool
	wg     sync.WaitGroup

	errMu    sync.Mutex
	firstErr error
}

func newWriter(repo *repository.NoteRepository, limiter *ratelimit.Limiter, log zerolog.Logger, onError func(string, error)) *writer {
	return &writer{
		repo:    repo,
		limiter: limiter,
		log:     log,
		onError: onError,
		queues:  make(map[string][]writeOp),
		active:  make(map[string]bool),
	}
}

func (w *writer) enqueueInsert(note *models.Note) {
	w.enqueue(note.ID, writeOp{kind: opInsert, note: note})
}

func (w *writer) enqueueUpdate(id string, cols map[string]any) {
	w.enqueue(id, writeOp{kind: opUpdate, cols: cols})
}

func (w *writer) enqueuePurge(id string) {
	w.enqueue(id, writeOp{kind: opPurge})
}

func (w *writer) enqueue(id string, op writeOp) {
	w.mu.Lock()

	queue := w.queues[id]
	if op.kind == opUpdate && len(queue) > 0 && queue[len(queue)-1].kind == opUpdate {
		// Coalesce: merge into the pending update, last writer wins per column
		prev := queue[len(queue)-1]
		for name, value := range op.cols {
			prev.cols[name] = value
		}
		w.mu.Unlock()
		return
	}

	w.queues[id] = append(queue, op)
	if !w.active[id] {
		w.active[id] = true
		w.wg.Add(1)
		go w.drain(id)
	}

	w.mu.Unlock()
}

// drain applies a note's queued ops in order, then exits.
func (w *writer) drain(id string) {
	defer w.wg.Done()

	for {
		w.mu.Lock()
		queue := w.queues[id]
		if len(queue) == 0 {
			w.active[id] = false
			delete(w.queues, id)
			w.mu.Unlock()
			w.limiter.Forget(id)
			return
		}
		op := queue[0]
		w.queues[id] = queue[1:]
		w.mu.Unlock()

		if op.kind == opUpdate {
			// Pace autosave; more updates coalesce while we wait
			if err := w.limiter.Wait(context.Background(), id); err != nil {
				w.fail(id, err)
				continue
			}
		}

		if err := w.apply(op, id); err != nil {
			if stderrors.Is(err, errors.ErrNotFound) {
				// The row vanished under a concurrent purge or cleanup;
				// there is nothing left to write and nothing to report
				w.log.Debug().Str("note_id", id).Msg("write target gone, skipping")
				continue
			}
			w.fail(id, err)
		}
	}
}

func (w *writer) apply(op writeOp, id string) error {
	switch op.kind {
	case opInsert:
		return w.repo.Insert(op.note)
	case opUpdate:
		return w.repo.UpdateColumns(id, op.cols)
	case opPurge:
		return w.repo.Purge(id)
	}
	return nil
}

// fail records and reports a durable write failure. The cache is never
// rolled back here: the user's text stays intact and the error surfaces
// as a retryable persistence failure.
func (w *writer) fail(id string, err error) {
	wrapped := fmt.Errorf("%w: note %s: %v", errors.ErrPersistence, id, err)

	w.errMu.Lock()
	if w.firstErr == nil {
		w.firstErr = wrapped
	}
	w.errMu.Unlock()

	w.log.Error().Err(err).Str("note_id", id).Msg("durable write failed")

	if w.onError != nil {
		w.onError(id, wrapped)
	}
}

// flush waits until every queued write has been applied, then reports
// the first persistence error seen since the previous flush. The error
// is cleared on read so a transient failure does not poison unrelated
// work after the writes start succeeding again.
func (w *writer) flush(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
	}

	w.errMu.Lock()
	defer w.errMu.Unlock()
	err := w.firstErr
	w.firstErr = nil
	return err
}

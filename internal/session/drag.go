package session

import (
	"sync"

	"github.com/stucknotes/stuck/pkg/errors"
)

// NoteMover is the single mutation the drag coordinator may perform.
type NoteMover interface {
	MoveNote(id, destFolder string) error
}

// DragState is the coordinator's phase.
type DragState int

const (
	DragIdle DragState = iota
	DragActive
)

// DragCoordinator runs the drag-a-note-to-a-folder gesture. A drag
// holds no locks and performs no mutations while in flight; the one
// and only MoveNote call happens at End, and Cancel performs none.
// The expanded-folder snapshot taken at Start is handed back through
// restore on both outcomes so hover-expansion during the drag does not
// stick.
type DragCoordinator struct {
	mu sync.Mutex

	mover   NoteMover
	restore func(snapshot []string)

	state      DragState
	noteID     string
	fromFolder string
	destFolder string
	snapshot   []string
}

func NewDragCoordinator(mover NoteMover, restore func(snapshot []string)) *DragCoordinator {
	return &DragCoordinator{
		mover:   mover,
		restore: restore,
	}
}

// State reports the current phase.
func (d *DragCoordinator) State() DragState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Start begins a drag for a note, snapshotting the caller's expanded
// folder state. Starting while a drag is active is an error.
func (d *DragCoordinator) Start(noteID, fromFolder string, expanded []string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state != DragIdle {
		return errors.NewAppError(errors.ErrInvalidInput, "drag already in progress")
	}

	d.state = DragActive
	d.noteID = noteID
	d.fromFolder = fromFolder
	d.destFolder = ""
	d.snapshot = append([]string(nil), expanded...)

	return nil
}

// Update records the folder currently hovered as the drop destination.
// It mutates nothing; an empty name clears the destination.
func (d *DragCoordinator) Update(destFolder string) {
	d.mu.Lock()
	if d.state == DragActive {
		d.destFolder = destFolder
	}
	d.mu.Unlock()
}

// End completes the drag. A valid destination different from the
// source triggers exactly one move; dropping nowhere or back on the
// source folder is a no-op. The expansion snapshot is restored either
// way.
func (d *DragCoordinator) End() error {
	d.mu.Lock()
	if d.state != DragActive {
		d.mu.Unlock()
		return nil
	}

	noteID := d.noteID
	dest := d.destFolder
	from := d.fromFolder
	snapshot := d.snapshot
	d.reset()
	d.mu.Unlock()

	if d.restore != nil {
		d.restore(snapshot)
	}

	if dest == "" || dest == from {
		return nil
	}

	return d.mover.MoveNote(noteID, dest)
}

// Cancel abandons the drag with zero mutations and restores the
// expansion snapshot.
func (d *DragCoordinator) Cancel() {
	d.mu.Lock()
	if d.state != DragActive {
		d.mu.Unlock()
		return
	}
	snapshot := d.snapshot
	d.reset()
	d.mu.Unlock()

	if d.restore != nil {
		d.restore(snapshot)
	}
}

func (d *DragCoordinator) reset() {
	d.state = DragIdle
	d.noteID = ""
	d.fromFolder = ""
	d.destFolder = ""
	d.snapshot = nil
}

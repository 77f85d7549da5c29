package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeMover records every move request.
type fakeMover struct {
	moves [][2]string
	err   error
}

func (f *fakeMover) MoveNote(id, destFolder string) error {
	f.moves = append(f.moves, [2]string{id, destFolder})
	return f.err
}

func TestDragEndMovesExactlyOnce(t *testing.T) {
	mover := &fakeMover{}
	drag := NewDragCoordinator(mover, nil)

	require.NoError(t, drag.Start("n1", "Default", nil))
	drag.Update("Work")
	drag.Update("Plan")
	require.NoError(t, drag.End())

	require.Len(t, mover.moves, 1)
	assert.Equal(t, [2]string{"n1", "Plan"}, mover.moves[0])
	assert.Equal(t, DragIdle, drag.State())
}

func TestDragUpdateMutatesNothing(t *testing.T) {
	mover := &fakeMover{}
	drag := NewDragCoordinator(mover, nil)

	require.NoError(t, drag.Start("n1", "Default", nil))
	drag.Update("Work")

	assert.Empty(t, mover.moves)
	assert.Equal(t, DragActive, drag.State())
	drag.Cancel()
}

func TestDragCancelMutatesNothing(t *testing.T) {
	mover := &fakeMover{}
	drag := NewDragCoordinator(mover, nil)

	require.NoError(t, drag.Start("n1", "Default", nil))
	drag.Update("Work")
	drag.Cancel()

	assert.Empty(t, mover.moves)
	assert.Equal(t, DragIdle, drag.State())
}

func TestDragDropOnSourceFolderIsNoop(t *testing.T) {
	mover := &fakeMover{}
	drag := NewDragCoordinator(mover, nil)

	require.NoError(t, drag.Start("n1", "Default", nil))
	drag.Update("Default")
	require.NoError(t, drag.End())

	assert.Empty(t, mover.moves)
}

func TestDragDropNowhereIsNoop(t *testing.T) {
	mover := &fakeMover{}
	drag := NewDragCoordinator(mover, nil)

	require.NoError(t, drag.Start("n1", "Default", nil))
	require.NoError(t, drag.End())

	assert.Empty(t, mover.moves)
}

func TestDragRestoresSnapshotOnBothOutcomes(t *testing.T) {
	var restored [][]string
	restore := func(snapshot []string) {
		restored = append(restored, snapshot)
	}
	drag := NewDragCoordinator(&fakeMover{}, restore)

	require.NoError(t, drag.Start("n1", "Default", []string{"Work", "Plan"}))
	drag.Update("Work")
	require.NoError(t, drag.End())

	require.NoError(t, drag.Start("n2", "Default", []string{"Plan"}))
	drag.Cancel()

	require.Len(t, restored, 2)
	assert.Equal(t, []string{"Work", "Plan"}, restored[0])
	assert.Equal(t, []string{"Plan"}, restored[1])
}

func TestDragStartWhileActiveFails(t *testing.T) {
	drag := NewDragCoordinator(&fakeMover{}, nil)

	require.NoError(t, drag.Start("n1", "Default", nil))
	assert.Error(t, drag.Start("n2", "Default", nil))
	drag.Cancel()
}

func TestDragEndWhileIdleIsNoop(t *testing.T) {
	mover := &fakeMover{}
	drag := NewDragCoordinator(mover, nil)

	require.NoError(t, drag.End())
	assert.Empty(t, mover.moves)
}

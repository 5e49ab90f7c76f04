package sync_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/our-cpg/planogram-backend/internal/sync"
)

func TestStatusLifecycle(t *testing.T) {
	t.Run("starts idle", func(t *testing.T) {
		status := sync.NewStatus()
		snap := status.Snapshot()
		assert.Equal(t, sync.StateIdle, snap.State)
		assert.False(t, snap.IsProcessing)
	})

	t.Run("refuses a second start while running", func(t *testing.T) {
		status := sync.NewStatus()

		runID, ok := status.TryStart()
		require.True(t, ok)
		require.NotEmpty(t, runID)

		_, ok = status.TryStart()
		assert.False(t, ok, "second start must be refused, not queued")
		assert.True(t, status.Snapshot().IsProcessing)
	})

	t.Run("finish clears running and records summary", func(t *testing.T) {
		status := sync.NewStatus()
		_, ok := status.TryStart()
		require.True(t, ok)

		status.Finish("full: 3 orders, 7 items")

		snap := status.Snapshot()
		assert.Equal(t, sync.StateIdle, snap.State)
		assert.False(t, snap.IsProcessing)
		assert.Equal(t, "full: 3 orders, 7 items", snap.LastSummary)
		assert.False(t, snap.LastCompletedAt.IsZero())
	})

	t.Run("fail clears running so the engine cannot wedge", func(t *testing.T) {
		status := sync.NewStatus()
		_, ok := status.TryStart()
		require.True(t, ok)

		status.Fail(errors.New("remote exploded"))

		snap := status.Snapshot()
		assert.Equal(t, sync.StateFailed, snap.State)
		assert.False(t, snap.IsProcessing)
		assert.Equal(t, "remote exploded", snap.LastError)

		// A new run may start after a failure.
		_, ok = status.TryStart()
		assert.True(t, ok)
	})
}

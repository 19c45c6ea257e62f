package bulk

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppm/backend/internal/domain/shared"
)

func newRunningProgress(t *testing.T, total int) *JobProgress {
	t.Helper()
	p, err := NewJobProgress(uuid.New(), uuid.New(), JobKindCategoryBulkDelete, "42")
	require.NoError(t, err)
	require.NoError(t, p.Start(total))
	return p
}

func assertInvalidState(t *testing.T, err error) {
	t.Helper()
	var derr *shared.DomainError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, "INVALID_STATE", derr.Code)
}

func TestNewJobProgress(t *testing.T) {
	t.Run("creates pending record", func(t *testing.T) {
		p, err := NewJobProgress(uuid.New(), uuid.New(), JobKindCategoryBulkDelete, "42")
		require.NoError(t, err)
		assert.Equal(t, JobStatusPending, p.Status)
		assert.False(t, p.IsTerminal())
		assert.Zero(t, p.ProcessedCount)
	})

	t.Run("rejects nil job ID", func(t *testing.T) {
		_, err := NewJobProgress(uuid.New(), uuid.Nil, JobKindCategoryBulkDelete, "")
		assert.Error(t, err)
	})

	t.Run("rejects unknown kind", func(t *testing.T) {
		_, err := NewJobProgress(uuid.New(), uuid.New(), "reindex", "")
		assert.Error(t, err)
	})
}

func TestJobProgress_Start(t *testing.T) {
	p, err := NewJobProgress(uuid.New(), uuid.New(), JobKindCategoryBulkDelete, "42")
	require.NoError(t, err)

	require.NoError(t, p.Start(10))
	assert.Equal(t, JobStatusRunning, p.Status)
	assert.Equal(t, 10, p.TotalCount)
	require.NotNil(t, p.StartedAt)

	t.Run("cannot start twice", func(t *testing.T) {
		assertInvalidState(t, p.Start(10))
	})
}

func TestJobProgress_UpdateProgress(t *testing.T) {
	t.Run("advances counter", func(t *testing.T) {
		p := newRunningProgress(t, 10)
		require.NoError(t, p.UpdateProgress(4, nil))
		assert.Equal(t, 4, p.ProcessedCount)
	})

	t.Run("counter is monotonic", func(t *testing.T) {
		p := newRunningProgress(t, 10)
		require.NoError(t, p.UpdateProgress(6, nil))
		require.NoError(t, p.UpdateProgress(3, nil))
		assert.Equal(t, 6, p.ProcessedCount)
	})

	t.Run("counter is capped at total", func(t *testing.T) {
		p := newRunningProgress(t, 10)
		require.NoError(t, p.UpdateProgress(25, nil))
		assert.Equal(t, 10, p.ProcessedCount)
	})

	t.Run("accumulates error details", func(t *testing.T) {
		p := newRunningProgress(t, 10)
		require.NoError(t, p.UpdateProgress(1, []ProgressErrorDetail{{ItemID: "5", Code: "SYNC_FAILED", Message: "boom"}}))
		require.NoError(t, p.UpdateProgress(2, []ProgressErrorDetail{{ItemID: "6", Code: "SYNC_FAILED", Message: "boom"}}))
		assert.Len(t, p.ErrorDetails, 2)
	})

	t.Run("rejected when not running", func(t *testing.T) {
		p, err := NewJobProgress(uuid.New(), uuid.New(), JobKindCategoryBulkDelete, "")
		require.NoError(t, err)
		assertInvalidState(t, p.UpdateProgress(1, nil))
	})
}

func TestJobProgress_TerminalTransitions(t *testing.T) {
	t.Run("complete fills counter and is final", func(t *testing.T) {
		p := newRunningProgress(t, 10)
		require.NoError(t, p.UpdateProgress(7, nil))
		require.NoError(t, p.Complete(`{"deleted":10}`))

		assert.Equal(t, JobStatusCompleted, p.Status)
		assert.Equal(t, 10, p.ProcessedCount)
		assert.InDelta(t, 100.0, p.Percentage(), 0.01)
		require.NotNil(t, p.CompletedAt)

		assertInvalidState(t, p.Complete(`{}`))
		assertInvalidState(t, p.Fail("late", nil))
	})

	t.Run("fail keeps reported progress", func(t *testing.T) {
		p := newRunningProgress(t, 10)
		require.NoError(t, p.UpdateProgress(4, nil))
		require.NoError(t, p.Fail("target unreachable", nil))

		assert.Equal(t, JobStatusFailed, p.Status)
		assert.Equal(t, 4, p.ProcessedCount)
		assert.Equal(t, "target unreachable", p.ErrorMessage)

		assertInvalidState(t, p.Fail("again", nil))
		assertInvalidState(t, p.Complete(`{}`))
	})

	t.Run("pending job can fail directly", func(t *testing.T) {
		p, err := NewJobProgress(uuid.New(), uuid.New(), JobKindCategoryBulkDelete, "")
		require.NoError(t, err)
		require.NoError(t, p.Fail("could not enqueue", nil))
		assert.Equal(t, JobStatusFailed, p.Status)
	})

	t.Run("pending job cannot complete", func(t *testing.T) {
		p, err := NewJobProgress(uuid.New(), uuid.New(), JobKindCategoryBulkDelete, "")
		require.NoError(t, err)
		assertInvalidState(t, p.Complete(`{}`))
	})
}

func TestJobProgress_ErrorDetailsJSON(t *testing.T) {
	p := newRunningProgress(t, 2)
	require.NoError(t, p.UpdateProgress(1, []ProgressErrorDetail{{ItemID: "9", Code: "NOT_FOUND", Message: "gone"}}))

	encoded, err := p.ErrorDetailsJSON()
	require.NoError(t, err)

	restored := newRunningProgress(t, 2)
	require.NoError(t, restored.SetErrorDetailsFromJSON(encoded))
	assert.Equal(t, p.ErrorDetails, restored.ErrorDetails)

	t.Run("empty round trip", func(t *testing.T) {
		fresh := newRunningProgress(t, 2)
		encoded, err := fresh.ErrorDetailsJSON()
		require.NoError(t, err)
		assert.Equal(t, "[]", encoded)
	})
}

package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ppm/backend/internal/domain/bulk"
)

func newMockJobProgressRepository(t *testing.T) (*GormJobProgressRepository, sqlmock.Sqlmock, *sql.DB) {
	gormDB, mock, mockDB := newMockDB(t)
	return NewGormJobProgressRepository(gormDB), mock, mockDB
}

func jobProgressColumns() []string {
	return []string{
		"id", "tenant_id", "job_id", "kind", "scope_id",
		"total_count", "processed_count", "error_details", "status",
		"result", "error_message", "started_at", "completed_at",
		"version", "created_at", "updated_at",
	}
}

func TestGormJobProgressRepository_FindByJobID(t *testing.T) {
	t.Run("finds progress record with error details", func(t *testing.T) {
		repo, mock, mockDB := newMockJobProgressRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		jobID := uuid.New()
		now := time.Now()
		details := `[{"item_id":"15","code":"DELETE_FAILED","message":"category in use"}]`

		rows := sqlmock.NewRows(jobProgressColumns()).
			AddRow(int64(4), tenantID, jobID, "category_bulk_delete", "15",
				10, 7, details, "running", "", "", &now, nil, 3, now, now)

		mock.ExpectQuery(`SELECT \* FROM "job_progress" WHERE tenant_id = \$1 AND job_id = \$2 ORDER BY .* LIMIT .*`).
			WithArgs(tenantID, jobID, 1).
			WillReturnRows(rows)

		progress, err := repo.FindByJobID(context.Background(), tenantID, jobID)

		assert.NoError(t, err)
		require.NotNil(t, progress)
		assert.Equal(t, bulk.JobKindCategoryBulkDelete, progress.Kind)
		assert.Equal(t, bulk.JobStatusRunning, progress.Status)
		assert.Equal(t, 7, progress.ProcessedCount)
		require.Len(t, progress.ErrorDetails, 1)
		assert.Equal(t, "DELETE_FAILED", progress.ErrorDetails[0].Code)
		assert.InDelta(t, 70.0, progress.Percentage(), 0.01)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns ErrJobProgressNotFound for missing row", func(t *testing.T) {
		repo, mock, mockDB := newMockJobProgressRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "job_progress"`).
			WillReturnError(gorm.ErrRecordNotFound)

		progress, err := repo.FindByJobID(context.Background(), uuid.New(), uuid.New())

		assert.Nil(t, progress)
		assert.ErrorIs(t, err, bulk.ErrJobProgressNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormJobProgressRepository_Save(t *testing.T) {
	t.Run("creates new record and backfills the ID", func(t *testing.T) {
		repo, mock, mockDB := newMockJobProgressRepository(t)
		defer mockDB.Close()

		progress, err := bulk.NewJobProgress(uuid.New(), uuid.New(), bulk.JobKindCategoryBulkDelete, "15")
		require.NoError(t, err)

		mock.ExpectQuery(`INSERT INTO "job_progress" .*RETURNING "id"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(21)))

		err = repo.Save(context.Background(), progress)

		assert.NoError(t, err)
		assert.Equal(t, int64(21), progress.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/ppm/backend/internal/domain/catalog"
	"github.com/ppm/backend/internal/infrastructure/persistence/models"
)

func setupUnitOfWorkTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.CategoryModel{}))
	return db
}

func TestGormCategoryUnitOfWork_Execute(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("commits on success", func(t *testing.T) {
		db := setupUnitOfWorkTestDB(t)
		uow := NewGormCategoryUnitOfWork(db)

		err := uow.Execute(ctx, func(repo catalog.CategoryRepository) error {
			root, err := catalog.NewCategory(tenantID, "root", "Root", nil)
			if err != nil {
				return err
			}
			if err := repo.Save(ctx, root); err != nil {
				return err
			}
			child, err := catalog.NewCategory(tenantID, "child", "Child", &root.ID)
			if err != nil {
				return err
			}
			return repo.Save(ctx, child)
		})
		require.NoError(t, err)

		repo := NewGormCategoryRepository(db)
		all, err := repo.FindAll(ctx, tenantID)
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})

	t.Run("rolls back when fn fails", func(t *testing.T) {
		db := setupUnitOfWorkTestDB(t)
		repo := NewGormCategoryRepository(db)

		root, err := catalog.NewCategory(tenantID, "root", "Root", nil)
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, root))

		uow := NewGormCategoryUnitOfWork(db)
		boom := errors.New("boom")
		err = uow.Execute(ctx, func(txRepo catalog.CategoryRepository) error {
			if err := txRepo.Delete(ctx, tenantID, root.ID); err != nil {
				return err
			}
			return boom
		})
		require.ErrorIs(t, err, boom)

		// the delete inside the failed transaction must not stick
		found, err := repo.FindByID(ctx, tenantID, root.ID)
		require.NoError(t, err)
		assert.Equal(t, "root", found.Code)
	})
}

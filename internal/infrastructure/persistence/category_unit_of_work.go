package persistence

import (
	"context"

	"gorm.io/gorm"

	"github.com/ppm/backend/internal/domain/catalog"
)

// GormCategoryUnitOfWork runs category writes inside one gorm transaction
type GormCategoryUnitOfWork struct {
	db *gorm.DB
}

// NewGormCategoryUnitOfWork creates a new GormCategoryUnitOfWork
func NewGormCategoryUnitOfWork(db *gorm.DB) *GormCategoryUnitOfWork {
	return &GormCategoryUnitOfWork{db: db}
}

// Execute invokes fn with a repository bound to a transaction. An error from
// fn rolls the whole transaction back.
func (u *GormCategoryUnitOfWork) Execute(ctx context.Context, fn func(repo catalog.CategoryRepository) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewGormCategoryRepository(tx))
	})
}

// Package repository provides generic persistence for domain entities and the
// decorator that routes their mutations through the action log.
package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"datalog/internal/datalog"
	"datalog/internal/pagination"
)

// Repository persists entities of type T keyed by an int64 identifier.
type Repository[T any] interface {
	// Save inserts entity when it has no identifier yet and updates it otherwise.
	Save(ctx context.Context, entity *T) (*T, error)
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*T, error)
	List(ctx context.Context, page pagination.PageRequest) ([]T, int64, error)
}

type gormRepository[T any] struct {
	db *gorm.DB
}

// NewGormRepository creates a Repository for the GORM model T. Missing rows are
// reported as datalog.ErrEntityNotFound.
func NewGormRepository[T any](db *gorm.DB) Repository[T] {
	return &gormRepository[T]{db: db}
}

func (r *gormRepository[T]) Save(ctx context.Context, entity *T) (*T, error) {
	if err := r.db.WithContext(ctx).Save(entity).Error; err != nil {
		return nil, fmt.Errorf("saving %T: %w", entity, err)
	}
	return entity, nil
}

func (r *gormRepository[T]) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(new(T), id)
	if result.Error != nil {
		return fmt.Errorf("deleting %T %d: %w", new(T), id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("deleting %T %d: %w", new(T), id, datalog.ErrEntityNotFound)
	}
	return nil
}

func (r *gormRepository[T]) FindByID(ctx context.Context, id int64) (*T, error) {
	entity := new(T)
	if err := r.db.WithContext(ctx).First(entity, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("finding %T %d: %w", entity, id, datalog.ErrEntityNotFound)
		}
		return nil, fmt.Errorf("finding %T %d: %w", entity, id, err)
	}
	return entity, nil
}

func (r *gormRepository[T]) List(ctx context.Context, page pagination.PageRequest) ([]T, int64, error) {
	page.Defaults()

	var total int64
	if err := r.db.WithContext(ctx).Model(new(T)).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("counting %T: %w", new(T), err)
	}

	var items []T
	if err := r.db.WithContext(ctx).Scopes(pagination.Paginate(page)).Order("id ASC").Find(&items).Error; err != nil {
		return nil, 0, fmt.Errorf("listing %T: %w", new(T), err)
	}
	return items, total, nil
}

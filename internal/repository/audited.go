package repository

import (
	"context"

	"datalog/internal/datalog"
	"datalog/internal/pagination"
)

// Method names under which repository calls are presented to the interceptor.
const (
	MethodSave   = "Save"
	MethodDelete = "Delete"
)

// Methods lists every method name an audited repository presents.
func Methods() []string { return []string{MethodSave, MethodDelete} }

// audited routes Save and Delete through an Interceptor. The wrapped
// repository doubles as the entity loader for baselines and post-states.
type audited[T any] struct {
	inner       Repository[T]
	interceptor *datalog.Interceptor
}

// NewAudited decorates inner so that every audited mutation produces an Action.
// Reads are served by inner directly.
func NewAudited[T any](inner Repository[T], interceptor *datalog.Interceptor) Repository[T] {
	return &audited[T]{inner: inner, interceptor: interceptor}
}

// LoadByID implements datalog.Loader.
func (r *audited[T]) LoadByID(ctx context.Context, id int64) (any, error) {
	entity, err := r.inner.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return entity, nil
}

func (r *audited[T]) Save(ctx context.Context, entity *T) (*T, error) {
	result, err := r.interceptor.Intercept(ctx, r, MethodSave, []any{entity}, func(ctx context.Context) (any, error) {
		return r.inner.Save(ctx, entity)
	})
	if err != nil {
		return nil, err
	}
	saved, _ := result.(*T)
	return saved, nil
}

func (r *audited[T]) Delete(ctx context.Context, id int64) error {
	_, err := r.interceptor.Intercept(ctx, r, MethodDelete, []any{id}, func(ctx context.Context) (any, error) {
		return nil, r.inner.Delete(ctx, id)
	})
	return err
}

func (r *audited[T]) FindByID(ctx context.Context, id int64) (*T, error) {
	return r.inner.FindByID(ctx, id)
}

func (r *audited[T]) List(ctx context.Context, page pagination.PageRequest) ([]T, int64, error) {
	return r.inner.List(ctx, page)
}

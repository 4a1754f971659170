// Package actionstore persists and queries completed action records.
package actionstore

import (
	"context"
	"errors"

	"datalog/internal/models"
	"datalog/internal/pagination"
)

// ErrNotFound is returned when no action has the requested id.
var ErrNotFound = errors.New("actionstore: action not found")

// Filter narrows an action listing. Zero fields do not filter.
type Filter struct {
	ObjectClass string
	ObjectID    *int64
	ActionType  models.ActionType
	Operator    string
}

// Store appends actions and reads them back, newest first. Changes are
// returned in the order they were appended.
type Store interface {
	Append(ctx context.Context, action *models.Action) error
	List(ctx context.Context, filter Filter, page pagination.PageRequest) ([]models.Action, int64, error)
	Get(ctx context.Context, id string) (*models.Action, error)
}

package services

import (
	"context"
	"errors"

	"datalog/internal/actionstore"
	apperrors "datalog/internal/errors"
	"datalog/internal/models"
	"datalog/internal/pagination"
)

// actionService reads the action log.
type actionService struct {
	store actionstore.Store
}

// NewActionService creates a new ActionServicer.
func NewActionService(store actionstore.Store) ActionServicer {
	return &actionService{store: store}
}

// ListActions retrieves actions matching filter, newest first.
func (s *actionService) ListActions(ctx context.Context, filter actionstore.Filter, page pagination.PageRequest) (*pagination.PageResponse[models.Action], error) {
	if filter.ActionType != "" && !filter.ActionType.Valid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid action type")
	}

	page.Defaults()
	actions, total, err := s.store.List(ctx, filter, page)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	resp := pagination.NewPageResponse(actions, page.Page, page.PageSize, total)
	return &resp, nil
}

// GetActionByID retrieves a single action with its changes.
func (s *actionService) GetActionByID(ctx context.Context, id string) (*models.Action, error) {
	action, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, actionstore.ErrNotFound) {
			return nil, apperrors.ErrActionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return action, nil
}

// GetObjectHistory retrieves every action recorded for one entity.
func (s *actionService) GetObjectHistory(ctx context.Context, objectClass string, objectID int64, page pagination.PageRequest) (*pagination.PageResponse[models.Action], error) {
	if objectClass == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "object class is required")
	}
	return s.ListActions(ctx, actionstore.Filter{ObjectClass: objectClass, ObjectID: &objectID}, page)
}

package actionstore

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"datalog/internal/models"
	"datalog/internal/pagination"
)

// gormStore keeps actions in the actions and change_items tables.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a Store backed by a SQL database.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// Append inserts the action and its change items in one transaction. The
// caller's change items are left untouched; only action.ID is filled in.
func (s *gormStore) Append(ctx context.Context, action *models.Action) error {
	row := *action
	row.Changes = make([]models.ChangeItem, len(action.Changes))
	for i, c := range action.Changes {
		c.Seq = i
		row.Changes[i] = c
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("inserting action: %w", err)
	}
	action.ID = row.ID
	return nil
}

func (s *gormStore) List(ctx context.Context, filter Filter, page pagination.PageRequest) ([]models.Action, int64, error) {
	page.Defaults()

	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Action{}).Scopes(filterScope(filter)).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("counting actions: %w", err)
	}

	var actions []models.Action
	err := s.db.WithContext(ctx).
		Scopes(filterScope(filter), pagination.Paginate(page)).
		Preload("Changes", orderedChanges).
		Order("operate_time DESC, id DESC").
		Find(&actions).Error
	if err != nil {
		return nil, 0, fmt.Errorf("listing actions: %w", err)
	}
	return actions, total, nil
}

func (s *gormStore) Get(ctx context.Context, id string) (*models.Action, error) {
	var action models.Action
	err := s.db.WithContext(ctx).Preload("Changes", orderedChanges).First(&action, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("loading action %s: %w", id, err)
	}
	return &action, nil
}

func orderedChanges(db *gorm.DB) *gorm.DB {
	return db.Order("seq ASC")
}

// filterScope returns a GORM scope applying the non-zero fields of f.
func filterScope(f Filter) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f.ObjectClass != "" {
			db = db.Where("object_class = ?", f.ObjectClass)
		}
		if f.ObjectID != nil {
			db = db.Where("object_id = ?", *f.ObjectID)
		}
		if f.ActionType != "" {
			db = db.Where("action_type = ?", f.ActionType)
		}
		if f.Operator != "" {
			db = db.Where("operator = ?", f.Operator)
		}
		return db
	}
}

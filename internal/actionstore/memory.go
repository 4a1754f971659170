package actionstore

import (
	"context"
	"sort"
	"sync"

	"datalog/internal/models"
	"datalog/internal/pagination"
	"datalog/internal/uuid"
)

// MemoryStore is an append-only in-memory Store for tests and local runs.
type MemoryStore struct {
	mu      sync.Mutex
	actions []models.Action
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (s *MemoryStore) Append(_ context.Context, action *models.Action) error {
	if action.ID == "" {
		action.ID = uuid.New()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.actions = append(s.actions, clone(*action))
	return nil
}

func (s *MemoryStore) List(_ context.Context, filter Filter, page pagination.PageRequest) ([]models.Action, int64, error) {
	page.Defaults()

	s.mu.Lock()
	var matched []models.Action
	for _, a := range s.actions {
		if matches(a, filter) {
			matched = append(matched, clone(a))
		}
	}
	s.mu.Unlock()

	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].OperateTime.Equal(matched[j].OperateTime) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].OperateTime.After(matched[j].OperateTime)
	})

	total := int64(len(matched))
	start := min(max(page.Offset(), 0), len(matched))
	end := min(start+page.PageSize, len(matched))
	return matched[start:end], total, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*models.Action, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.actions {
		if a.ID == id {
			out := clone(a)
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

// Actions returns a copy of every appended action in append order.
func (s *MemoryStore) Actions() []models.Action {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Action, len(s.actions))
	for i, a := range s.actions {
		out[i] = clone(a)
	}
	return out
}

func matches(a models.Action, f Filter) bool {
	if f.ObjectClass != "" && a.ObjectClass != f.ObjectClass {
		return false
	}
	if f.ObjectID != nil && (a.ObjectID == nil || *a.ObjectID != *f.ObjectID) {
		return false
	}
	if f.ActionType != "" && a.ActionType != f.ActionType {
		return false
	}
	if f.Operator != "" && a.Operator != f.Operator {
		return false
	}
	return true
}

func clone(a models.Action) models.Action {
	a.Changes = append([]models.ChangeItem(nil), a.Changes...)
	return a
}

package datalog

import (
	"context"
	"errors"
	"sync"
	"time"

	"datalog/internal/models"
)

type widget struct {
	ID    int64
	Name  string
	Price float64
}

func (w *widget) AuditFields() []models.Field {
	return []models.Field{
		models.FieldOf("id", w.ID),
		models.FieldOf("name", w.Name),
		models.FieldOf("price", w.Price),
	}
}

// widgetRepo is an in-memory widget table that hands out sequential ids.
type widgetRepo struct {
	mu   sync.Mutex
	rows map[int64]widget
	next int64
}

func newWidgetRepo(next int64, rows ...widget) *widgetRepo {
	r := &widgetRepo{rows: map[int64]widget{}, next: next}
	for _, w := range rows {
		r.rows[w.ID] = w
	}
	return r
}

func (r *widgetRepo) LoadByID(_ context.Context, id int64) (any, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.rows[id]
	if !ok {
		return nil, ErrEntityNotFound
	}
	return &w, nil
}

func (r *widgetRepo) save(w *widget) *widget {
	r.mu.Lock()
	defer r.mu.Unlock()
	if w.ID == 0 {
		r.next++
		w.ID = r.next
	}
	r.rows[w.ID] = *w
	out := *w
	return &out
}

func (r *widgetRepo) remove(id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, id)
}

type recordingStore struct {
	mu      sync.Mutex
	err     error
	actions []*models.Action
}

func (s *recordingStore) Append(_ context.Context, a *models.Action) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.actions = append(s.actions, a)
	return nil
}

func (s *recordingStore) recorded() []*models.Action {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*models.Action(nil), s.actions...)
}

var errBoom = errors.New("boom")

var fixedTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func str(s string) *string { return &s }

func item(field string, oldValue, newValue *string) models.ChangeItem {
	return models.NewChangeItem(field, oldValue, newValue)
}

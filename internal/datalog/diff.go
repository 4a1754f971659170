package datalog

import (
	"go.uber.org/zap"

	"datalog/internal/models"
)

// Differ turns entity snapshots into ordered change lists. The identifier
// property is never part of a change list; it travels on the Action instead.
type Differ struct {
	idField string
	log     *zap.SugaredLogger
}

// NewDiffer creates a Differ that excludes idField from every change list.
func NewDiffer(idField string, log *zap.SugaredLogger) *Differ {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Differ{idField: idField, log: log}
}

// snapshot is the set of property values of an entity captured at one point
// in time, in declared order.
type snapshot struct {
	names  []string
	values map[string]*string
	failed map[string]bool
}

func (d *Differ) snapshot(entity any) snapshot {
	snap := snapshot{values: map[string]*string{}, failed: map[string]bool{}}
	for _, f := range fieldsOf(entity) {
		if f.Name == d.idField {
			continue
		}
		if _, seen := snap.values[f.Name]; seen || snap.failed[f.Name] {
			continue
		}
		v, err := readValue(f)
		if err != nil {
			d.log.Warnw("skipping unreadable field",
				"object_class", ClassName(entity),
				"field", f.Name,
				"error", err,
			)
			snap.failed[f.Name] = true
			continue
		}
		snap.names = append(snap.names, f.Name)
		snap.values[f.Name] = normalize(v)
	}
	return snap
}

// ChangesForInsert lists every property of entity with only the new value set.
func (d *Differ) ChangesForInsert(entity any) []models.ChangeItem {
	snap := d.snapshot(entity)
	items := make([]models.ChangeItem, 0, len(snap.names))
	for _, name := range snap.names {
		items = append(items, models.NewChangeItem(name, nil, snap.values[name]))
	}
	return items
}

// ChangesForDelete lists every property of entity with only the old value set.
func (d *Differ) ChangesForDelete(entity any) []models.ChangeItem {
	snap := d.snapshot(entity)
	items := make([]models.ChangeItem, 0, len(snap.names))
	for _, name := range snap.names {
		items = append(items, models.NewChangeItem(name, snap.values[name], nil))
	}
	return items
}

// ChangesForUpdate lists the properties whose values differ between oldEntity
// and newEntity. Properties of oldEntity come first in declared order, followed
// by properties only newEntity has. A property present on one side only counts
// as changed; a property that failed to read on either side is skipped.
func (d *Differ) ChangesForUpdate(oldEntity, newEntity any) []models.ChangeItem {
	before := d.snapshot(oldEntity)
	after := d.snapshot(newEntity)

	var items []models.ChangeItem
	for _, name := range before.names {
		if after.failed[name] {
			continue
		}
		oldValue := before.values[name]
		newValue, ok := after.values[name]
		if ok && equalValues(oldValue, newValue) {
			continue
		}
		items = append(items, models.NewChangeItem(name, oldValue, newValue))
	}
	for _, name := range after.names {
		if _, ok := before.values[name]; ok || before.failed[name] {
			continue
		}
		items = append(items, models.NewChangeItem(name, nil, after.values[name]))
	}
	return items
}

func equalValues(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

package datalog

import (
	"context"
	"errors"
	"fmt"

	"datalog/internal/models"
)

var (
	// ErrEntityNotFound is returned by loaders when no entity has the requested identifier.
	ErrEntityNotFound = errors.New("datalog: entity not found")
	// ErrNotAudited is returned when a method has no entry in the routes table.
	ErrNotAudited = errors.New("datalog: method is not audited")
	// ErrMissingArgument is returned when an audited call carries no argument to inspect.
	ErrMissingArgument = errors.New("datalog: missing argument")
	// ErrNoIdentifier is returned when a required identifier cannot be resolved.
	ErrNoIdentifier = errors.New("datalog: no identifier")

	errNoStore = errors.New("datalog: no action store configured")
)

// Loader fetches the currently persisted entity for an identifier. It must read
// from the same table the wrapped operation writes to.
type Loader interface {
	LoadByID(ctx context.Context, id int64) (any, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(ctx context.Context, id int64) (any, error)

func (f LoaderFunc) LoadByID(ctx context.Context, id int64) (any, error) { return f(ctx, id) }

// Classification is the outcome of inspecting an intercepted call before it runs.
type Classification struct {
	Type     models.ActionType
	ObjectID *int64
	Class    string
	// Entity is the save argument of an INSERT.
	Entity any
	// Baseline is the persisted state before an UPDATE or DELETE.
	Baseline any
	// Changes are the change items known before the call runs: all of them
	// for INSERT and DELETE, none for UPDATE.
	Changes []models.ChangeItem
}

// Classifier decides whether an intercepted call is an insert, an update or a delete.
type Classifier struct {
	routes  Routes
	idField string
	differ  *Differ
}

// NewClassifier creates a Classifier over the given routes table.
func NewClassifier(routes Routes, idField string, differ *Differ) *Classifier {
	return &Classifier{routes: routes, idField: idField, differ: differ}
}

// Classify inspects method and args. For a save-style method the identifier of
// args[0] decides between INSERT (absent) and UPDATE (present, baseline loaded
// through loader). For a delete-style method args[0] is the identifier of the
// entity to load.
func (c *Classifier) Classify(ctx context.Context, method string, args []any, loader Loader) (*Classification, error) {
	kind, ok := c.routes.Lookup(method)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotAudited, method)
	}
	if len(args) == 0 || isNil(args[0]) {
		return nil, fmt.Errorf("%w: %s", ErrMissingArgument, method)
	}

	switch kind {
	case OperationSave:
		entity := args[0]
		id, ok := ReadID(entity, c.idField)
		if !ok {
			return &Classification{
				Type:    models.ActionTypeInsert,
				Class:   ClassName(entity),
				Entity:  entity,
				Changes: c.differ.ChangesForInsert(entity),
			}, nil
		}
		baseline, err := load(ctx, loader, id)
		if err != nil {
			return nil, err
		}
		return &Classification{
			Type:     models.ActionTypeUpdate,
			ObjectID: &id,
			Class:    ClassName(baseline),
			Baseline: baseline,
		}, nil

	case OperationDelete:
		id, ok := IDFromArg(args[0], c.idField)
		if !ok {
			return nil, fmt.Errorf("%w: %v", ErrNoIdentifier, args[0])
		}
		existing, err := load(ctx, loader, id)
		if err != nil {
			return nil, err
		}
		return &Classification{
			Type:     models.ActionTypeDelete,
			ObjectID: &id,
			Class:    ClassName(existing),
			Baseline: existing,
			Changes:  c.differ.ChangesForDelete(existing),
		}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNotAudited, method)
}

func load(ctx context.Context, loader Loader, id int64) (any, error) {
	if loader == nil {
		return nil, fmt.Errorf("loading id %d: no loader", id)
	}
	entity, err := loader.LoadByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading id %d: %w", id, err)
	}
	if isNil(entity) {
		return nil, fmt.Errorf("loading id %d: %w", id, ErrEntityNotFound)
	}
	return entity, nil
}

// Package datalog records an Action for every audited create, update or
// delete call without the business code knowing about it.
//
// A call routed through Interceptor.Intercept moves through the stages
// pre → classified → executed → diffed → persisted. Any failure in the audit
// stages aborts the record only; the wrapped operation always runs and its
// result and error reach the caller unchanged.
package datalog

import (
	"context"
	"time"

	"go.uber.org/zap"

	"datalog/internal/logger"
	"datalog/internal/models"
)

// Store durably persists completed actions.
type Store interface {
	Append(ctx context.Context, action *models.Action) error
}

// Proceed performs the wrapped operation.
type Proceed func(ctx context.Context) (any, error)

// Config holds the collaborators of an Interceptor. Zero fields get defaults.
type Config struct {
	Store    Store
	Routes   Routes
	IDField  string
	Operator OperatorFunc
	Logger   *zap.SugaredLogger
	Clock    func() time.Time
}

// Interceptor orchestrates classification, snapshots, diffing and persistence
// around a wrapped operation. It keeps no per-call state and is safe for
// concurrent use as long as its Store is.
type Interceptor struct {
	store      Store
	routes     Routes
	idField    string
	operator   OperatorFunc
	log        *zap.SugaredLogger
	clock      func() time.Time
	differ     *Differ
	classifier *Classifier
}

// NewInterceptor creates an Interceptor from cfg.
func NewInterceptor(cfg Config) *Interceptor {
	if cfg.Routes == nil {
		cfg.Routes = DefaultRoutes()
	}
	if cfg.IDField == "" {
		cfg.IDField = DefaultIDField
	}
	if cfg.Operator == nil {
		cfg.Operator = ContextOperator(DefaultOperator)
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Get()
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}

	differ := NewDiffer(cfg.IDField, cfg.Logger)
	return &Interceptor{
		store:      cfg.Store,
		routes:     cfg.Routes,
		idField:    cfg.IDField,
		operator:   cfg.Operator,
		log:        cfg.Logger,
		clock:      cfg.Clock,
		differ:     differ,
		classifier: NewClassifier(cfg.Routes, cfg.IDField, differ),
	}
}

// Differ returns the diff engine used by the interceptor.
func (i *Interceptor) Differ() *Differ { return i.differ }

type stage string

const (
	stagePre        stage = "pre"
	stageClassified stage = "classified"
	stageExecuted   stage = "executed"
	stageDiffed     stage = "diffed"
	stagePersisted  stage = "persisted"
	stageAborted    stage = "aborted"
)

// invocation is the state of a single intercepted call.
type invocation struct {
	method string
	args   []any
	stage  stage
	class  *Classification
	action *models.Action
}

// Intercept runs proceed and records an Action describing its effect. Methods
// missing from the routes table are passed straight through. The result and
// error of proceed are returned unchanged; failures while building or storing
// the Action are logged and never reach the caller.
func (i *Interceptor) Intercept(ctx context.Context, loader Loader, method string, args []any, proceed Proceed) (any, error) {
	if _, ok := i.routes.Lookup(method); !ok {
		return proceed(ctx)
	}

	inv := &invocation{method: method, args: args, stage: stagePre}
	i.classify(ctx, inv, loader)

	result, err := proceed(ctx)
	if err != nil {
		if inv.stage != stageAborted {
			i.log.Debugw("wrapped operation failed, no action recorded",
				"method", method,
				"error", err,
			)
		}
		return result, err
	}

	if inv.stage == stageClassified {
		inv.stage = stageExecuted
		i.complete(ctx, inv, loader, result)
	}
	return result, nil
}

func (i *Interceptor) classify(ctx context.Context, inv *invocation, loader Loader) {
	defer i.recoverStage(inv)

	c, err := i.classifier.Classify(ctx, inv.method, inv.args, loader)
	if err != nil {
		i.abort(inv, err)
		return
	}
	inv.class = c
	inv.action = &models.Action{
		ObjectID:    c.ObjectID,
		ObjectClass: c.Class,
		ActionType:  c.Type,
		Changes:     c.Changes,
	}
	inv.stage = stageClassified
}

func (i *Interceptor) complete(ctx context.Context, inv *invocation, loader Loader, result any) {
	defer i.recoverStage(inv)

	action := inv.action
	switch action.ActionType {
	case models.ActionTypeInsert:
		id, ok := ReadID(result, i.idField)
		if !ok {
			// The entity argument is usually updated in place by the store.
			id, ok = ReadID(inv.class.Entity, i.idField)
		}
		if !ok {
			i.abort(inv, ErrNoIdentifier)
			return
		}
		action.ObjectID = &id

	case models.ActionTypeUpdate:
		after, err := load(ctx, loader, *action.ObjectID)
		if err != nil {
			i.abort(inv, err)
			return
		}
		action.Changes = append(action.Changes, i.differ.ChangesForUpdate(inv.class.Baseline, after)...)
	}
	inv.stage = stageDiffed

	action.Operator = i.operator(ctx)
	action.OperateTime = i.clock()

	if i.store == nil {
		i.abort(inv, errNoStore)
		return
	}
	if err := i.store.Append(ctx, action); err != nil {
		i.log.Errorw("failed to append action",
			"method", inv.method,
			"action_type", action.ActionType,
			"object_class", action.ObjectClass,
			"object_id", action.ObjectID,
			"error", err,
		)
		inv.stage = stageAborted
		return
	}
	inv.stage = stagePersisted
}

func (i *Interceptor) abort(inv *invocation, err error) {
	i.log.Warnw("audit aborted",
		"method", inv.method,
		"stage", inv.stage,
		"error", err,
	)
	inv.stage = stageAborted
}

func (i *Interceptor) recoverStage(inv *invocation) {
	if r := recover(); r != nil {
		i.log.Errorw("audit pipeline panicked",
			"method", inv.method,
			"stage", inv.stage,
			"panic", r,
		)
		inv.stage = stageAborted
	}
}

package models

import (
	"fmt"
	"time"

	"datalog/internal/uuid"

	"gorm.io/gorm"
)

// ActionType is the kind of mutation an Action records.
type ActionType string

const (
	ActionTypeInsert ActionType = "INSERT"
	ActionTypeUpdate ActionType = "UPDATE"
	ActionTypeDelete ActionType = "DELETE"
)

// Valid reports whether t is one of the known action types.
func (t ActionType) Valid() bool {
	switch t {
	case ActionTypeInsert, ActionTypeUpdate, ActionTypeDelete:
		return true
	}
	return false
}

func (t ActionType) String() string { return string(t) }

// ParseActionType converts s into an ActionType.
func ParseActionType(s string) (ActionType, error) {
	t := ActionType(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown action type %q", s)
	}
	return t, nil
}

// Action is one completed audit record for a single intercepted mutation.
type Action struct {
	ID          string       `gorm:"type:uuid;primaryKey" json:"id" bson:"_id"`
	ObjectID    *int64       `gorm:"index:idx_actions_object" json:"object_id" bson:"object_id"`
	ObjectClass string       `gorm:"not null;index:idx_actions_object" json:"object_class" bson:"object_class"`
	ActionType  ActionType   `gorm:"not null;size:16" json:"action_type" bson:"action_type"`
	Changes     []ChangeItem `gorm:"foreignKey:ActionID;constraint:OnDelete:CASCADE" json:"changes" bson:"changes"`
	Operator    string       `gorm:"not null" json:"operator" bson:"operator"`
	OperateTime time.Time    `gorm:"not null;index" json:"operate_time" bson:"operate_time"`
}

// BeforeCreate hook generates a UUIDv7 for new records.
func (a *Action) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New()
	}
	return nil
}

// ChangeItem is one field-level before/after pair within an Action. Seq keeps
// the order in which the items were produced when stored in a table.
type ChangeItem struct {
	ID        uint    `gorm:"primaryKey" json:"-" bson:"-"`
	ActionID  string  `gorm:"type:uuid;not null;index" json:"-" bson:"-"`
	Seq       int     `gorm:"not null" json:"-" bson:"-"`
	FieldName string  `gorm:"not null" json:"field_name" bson:"field_name"`
	OldValue  *string `json:"old_value" bson:"old_value"`
	NewValue  *string `json:"new_value" bson:"new_value"`
}

// NewChangeItem builds a change item. A nil value means the side is absent.
func NewChangeItem(field string, oldValue, newValue *string) ChangeItem {
	return ChangeItem{FieldName: field, OldValue: oldValue, NewValue: newValue}
}

package models

// Field is one named, top-level property of an entity as seen by the change
// log. Value is evaluated lazily so a failing getter only affects its own field.
type Field struct {
	Name  string
	Value func() (any, error)
}

// FieldOf returns a Field holding an already captured value.
func FieldOf(name string, v any) Field {
	return Field{Name: name, Value: func() (any, error) { return v, nil }}
}

// Auditable is implemented by entities that list their own properties for
// change tracking. The order of the returned fields is the order in which
// change items are produced.
type Auditable interface {
	AuditFields() []Field
}

package datalog

import (
	"context"
	"database/sql/driver"
	"fmt"
	"reflect"
	"strconv"
	"sync"
	"time"

	"gorm.io/gorm/schema"

	"datalog/internal/models"
)

// schemaCache holds parsed GORM schemas for entities that do not implement
// models.Auditable.
var schemaCache sync.Map

// ReadField returns the normalized value of the named property of entity.
// present is false when the entity has no such property or it cannot be read;
// a property that exists but holds nil yields (nil, true).
func ReadField(entity any, name string) (value *string, present bool) {
	for _, f := range fieldsOf(entity) {
		if f.Name != name {
			continue
		}
		v, err := readValue(f)
		if err != nil {
			return nil, false
		}
		return normalize(v), true
	}
	return nil, false
}

// ReadID returns the identifier stored in the named property. Missing, nil,
// zero and non-numeric identifiers are all reported as absent.
func ReadID(entity any, name string) (int64, bool) {
	v, ok := ReadField(entity, name)
	if !ok || v == nil {
		return 0, false
	}
	return parseID(*v)
}

// IDFromArg interprets the argument of a delete-style call as an identifier.
// An entity argument is accepted too, in which case its identifier property is used.
func IDFromArg(arg any, name string) (int64, bool) {
	if s := normalize(arg); s != nil {
		if id, ok := parseID(*s); ok {
			return id, true
		}
	}
	return ReadID(arg, name)
}

func parseID(s string) (int64, bool) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

// ClassName returns the runtime type name of entity without pointer indirection,
// e.g. "models.Product".
func ClassName(entity any) string {
	if entity == nil {
		return ""
	}
	t := reflect.TypeOf(entity)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.String()
}

// fieldsOf lists the top-level properties of entity in declared order.
func fieldsOf(entity any) []models.Field {
	if isNil(entity) {
		return nil
	}
	if a, ok := entity.(models.Auditable); ok {
		return a.AuditFields()
	}
	return schemaFields(entity)
}

// schemaFields derives the property list of a GORM model from its parsed
// schema. Relations and bookkeeping timestamps are not comparable properties.
func schemaFields(entity any) []models.Field {
	s, err := schema.Parse(entity, &schemaCache, schema.NamingStrategy{})
	if err != nil {
		return nil
	}
	rv := reflect.ValueOf(entity)
	fields := make([]models.Field, 0, len(s.Fields))
	for _, sf := range s.Fields {
		if sf.DBName == "" || sf.AutoCreateTime != 0 || sf.AutoUpdateTime != 0 || sf.Name == "DeletedAt" {
			continue
		}
		sf := sf
		fields = append(fields, models.Field{
			Name: sf.DBName,
			Value: func() (any, error) {
				v, _ := sf.ValueOf(context.Background(), rv)
				return v, nil
			},
		})
	}
	return fields
}

// readValue calls the getter of f, turning a panic into an error.
func readValue(f models.Field) (v any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("reading field %q: %v", f.Name, r)
		}
	}()
	if f.Value == nil {
		return nil, fmt.Errorf("field %q has no getter", f.Name)
	}
	return f.Value()
}

// normalize renders a property value the way it is stored in a ChangeItem.
// nil and nil pointers map to nil.
func normalize(v any) *string {
	if isNil(v) {
		return nil
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	v = rv.Interface()

	var s string
	switch x := v.(type) {
	case string:
		s = x
	case []byte:
		s = string(x)
	case time.Time:
		s = x.UTC().Format(time.RFC3339Nano)
	case float64:
		s = strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		s = strconv.FormatFloat(float64(x), 'f', -1, 32)
	case bool:
		s = strconv.FormatBool(x)
	case driver.Valuer:
		dv, err := x.Value()
		if err != nil || dv == nil {
			return nil
		}
		return normalize(dv)
	case fmt.Stringer:
		s = x.String()
	default:
		s = fmt.Sprint(x)
	}
	return &s
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func:
		return rv.IsNil()
	}
	return false
}

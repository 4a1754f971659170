package datalog

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultIDField is the property that carries an entity's identifier.
const DefaultIDField = "id"

// OperationKind tells the interceptor how to treat an audited method.
type OperationKind int

const (
	// OperationSave inserts or updates depending on whether the entity has an identifier.
	OperationSave OperationKind = iota + 1
	// OperationDelete removes the entity whose identifier is the sole argument.
	OperationDelete
)

func (k OperationKind) String() string {
	switch k {
	case OperationSave:
		return "save"
	case OperationDelete:
		return "delete"
	}
	return "unknown"
}

// Routes is the static table of audited repository methods. Methods that are
// not listed pass through the interceptor untouched.
type Routes map[string]OperationKind

// DefaultRoutes audits the Save and Delete methods of a repository.
func DefaultRoutes() Routes {
	return Routes{
		"Save":   OperationSave,
		"Delete": OperationDelete,
	}
}

// Lookup returns the operation kind registered for method.
func (r Routes) Lookup(method string) (OperationKind, bool) {
	k, ok := r[method]
	return k, ok
}

// Table is the audit configuration read from a YAML file.
type Table struct {
	Routes  Routes
	IDField string
}

type tableFile struct {
	Save    []string `yaml:"save"`
	Delete  []string `yaml:"delete"`
	IDField string   `yaml:"id_field"`
}

// LoadTable reads a YAML audit table from path.
func LoadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading audit table: %w", err)
	}
	return ParseTable(data)
}

// ParseTable parses and validates a YAML audit table, for example:
//
//	save: [Save, SaveAll]
//	delete: [Delete]
//	id_field: id
func ParseTable(data []byte) (*Table, error) {
	var f tableFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing audit table YAML: %w", err)
	}

	t := &Table{Routes: Routes{}, IDField: strings.TrimSpace(f.IDField)}
	if t.IDField == "" {
		t.IDField = DefaultIDField
	}
	if err := t.add(f.Save, OperationSave); err != nil {
		return nil, err
	}
	if err := t.add(f.Delete, OperationDelete); err != nil {
		return nil, err
	}
	if len(t.Routes) == 0 {
		return nil, fmt.Errorf("validating audit table: no audited methods")
	}
	return t, nil
}

// Check verifies the table against what a decorator can actually present:
// every routed method must be one of methods, and the identifier field must
// be a property of entity.
func (t *Table) Check(methods []string, entity any) error {
	presented := make(map[string]bool, len(methods))
	for _, m := range methods {
		presented[m] = true
	}
	for m := range t.Routes {
		if !presented[m] {
			return fmt.Errorf("validating audit table: method %q is never presented (known: %s)", m, strings.Join(methods, ", "))
		}
	}

	for _, f := range fieldsOf(entity) {
		if f.Name == t.IDField {
			return nil
		}
	}
	return fmt.Errorf("validating audit table: %s has no field %q", ClassName(entity), t.IDField)
}

func (t *Table) add(methods []string, kind OperationKind) error {
	for _, m := range methods {
		m = strings.TrimSpace(m)
		if m == "" {
			return fmt.Errorf("validating audit table: empty %s method name", kind)
		}
		if prev, ok := t.Routes[m]; ok {
			return fmt.Errorf("validating audit table: method %q listed as both %s and %s", m, prev, kind)
		}
		t.Routes[m] = kind
	}
	return nil
}

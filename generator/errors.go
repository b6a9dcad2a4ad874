package generator

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrTableNotFound   = errors.New("table not found")
	ErrAmbiguousTable  = errors.New("ambiguous table")
	ErrUntypedField    = errors.New("field has no supported type")
	ErrIncompleteTable = errors.New("table schema not introspected")
	ErrFieldCollision  = errors.New("field names collide")
)

// TableNotFoundError reports a requested table absent from the schema.
type TableNotFoundError struct {
	Name      string
	Available []string
}

func (e *TableNotFoundError) Error() string {
	if len(e.Available) == 0 {
		return fmt.Sprintf("table %q not found: no tables are defined", e.Name)
	}
	return fmt.Sprintf("table %q not found (defined tables: %s)", e.Name, strings.Join(e.Available, ", "))
}

func (e *TableNotFoundError) Is(target error) bool { return target == ErrTableNotFound }

// AmbiguousTableError reports a name matching several tables when case is
// ignored.
type AmbiguousTableError struct {
	Name    string
	Matches []string
}

func (e *AmbiguousTableError) Error() string {
	return fmt.Sprintf("table name %q is ambiguous, it matches %s", e.Name, strings.Join(e.Matches, ", "))
}

func (e *AmbiguousTableError) Is(target error) bool { return target == ErrAmbiguousTable }

// UntypedFieldError reports a field whose kind cannot be mapped to a Go
// type. Kind is empty when the field declares no type at all.
type UntypedFieldError struct {
	Table string
	Field string
	Kind  string
}

func (e *UntypedFieldError) Error() string {
	if e.Kind == "" {
		return fmt.Sprintf("field %s on %s has no type; add a TYPE clause", e.Field, e.Table)
	}
	return fmt.Sprintf("field %s on %s has unsupported type %s (supported: bool, float, int, string)", e.Field, e.Table, e.Kind)
}

func (e *UntypedFieldError) Is(target error) bool { return target == ErrUntypedField }

// IncompleteTableError reports a table whose fields were never read.
type IncompleteTableError struct {
	Table string
}

func (e *IncompleteTableError) Error() string {
	return fmt.Sprintf("table %s has not been introspected", e.Table)
}

func (e *IncompleteTableError) Is(target error) bool { return target == ErrIncompleteTable }

// FieldCollisionError reports two fields that map to the same Go name, or
// a field whose Go name is taken by a generated method.
type FieldCollisionError struct {
	Table    string
	GoName   string
	Fields   []string
	Reserved bool
}

func (e *FieldCollisionError) Error() string {
	if e.Reserved {
		return fmt.Sprintf("field %s on %s maps to Go field %s, which clashes with the generated %s method", strings.Join(e.Fields, ", "), e.Table, e.GoName, e.GoName)
	}
	return fmt.Sprintf("fields %s on %s all map to Go field %s", strings.Join(e.Fields, ", "), e.Table, e.GoName)
}

func (e *FieldCollisionError) Is(target error) bool { return target == ErrFieldCollision }

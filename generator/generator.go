package generator

import (
	"sort"
	"strings"

	"github.com/ridoystarlord/blackbird/schema"
	"github.com/ridoystarlord/blackbird/surql"
)

// ReservedFieldName is the Go name taken by the generated TableName method.
const ReservedFieldName = "TableName"

// RecordType is a Go struct generated for one table.
type RecordType struct {
	TypeName  string
	TableName string
	Fields    []RecordField
}

// RecordField is one struct field.
type RecordField struct {
	Name     string // Go field name
	Column   string // field name in the schema
	Type     string // Go type without the optional wrapper
	Optional bool
}

// GoType returns the field's Go type, as a pointer when optional.
func (f RecordField) GoType() string {
	if f.Optional {
		return "*" + f.Type
	}
	return f.Type
}

// Option adjusts Generate.
type Option func(*options)

type options struct {
	typeName string
}

// WithTypeName sets the generated type's name instead of deriving it from
// the table name.
func WithTypeName(name string) Option {
	return func(o *options) { o.typeName = name }
}

// Generate builds the record type for tableName, which is matched against
// tables ignoring case.
func Generate(tableName string, tables []schema.TableSchema, opts ...Option) (*RecordType, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	table, err := Lookup(tableName, tables)
	if err != nil {
		return nil, err
	}
	if !table.Introspected {
		return nil, &IncompleteTableError{Table: table.Name}
	}

	typeName := o.typeName
	if typeName == "" {
		typeName = ToPascalCase(table.Name)
	}
	rec := &RecordType{TypeName: typeName, TableName: table.Name}

	seen := make(map[string][]string)
	for _, f := range table.Fields {
		goType, err := fieldType(table.Name, f)
		if err != nil {
			return nil, err
		}
		name := ToPascalCase(f.Name)
		if name == ReservedFieldName {
			return nil, &FieldCollisionError{Table: table.Name, GoName: name, Fields: []string{f.Name}, Reserved: true}
		}
		seen[name] = append(seen[name], f.Name)
		rec.Fields = append(rec.Fields, RecordField{
			Name:     name,
			Column:   f.Name,
			Type:     goType,
			Optional: f.Nullable,
		})
	}
	if err := checkCollisions(table.Name, seen); err != nil {
		return nil, err
	}
	return rec, nil
}

// Lookup finds the single table named name, ignoring case.
func Lookup(name string, tables []schema.TableSchema) (*schema.TableSchema, error) {
	var matches []*schema.TableSchema
	for i := range tables {
		if strings.EqualFold(tables[i].Name, name) {
			matches = append(matches, &tables[i])
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		available := make([]string, len(tables))
		for i, t := range tables {
			available[i] = t.Name
		}
		return nil, &TableNotFoundError{Name: name, Available: available}
	default:
		names := make([]string, len(matches))
		for i, m := range matches {
			names[i] = m.Name
		}
		return nil, &AmbiguousTableError{Name: name, Matches: names}
	}
}

// MapKind returns the Go type for a declared kind. Kinds without a Go
// mapping return ok == false.
func MapKind(k surql.Kind) (goType string, ok bool) {
	switch k.Name {
	case surql.KindBool:
		return "bool", true
	case surql.KindFloat:
		return "float64", true
	case surql.KindInt:
		return "int64", true
	case surql.KindString:
		return "string", true
	case surql.KindAny, surql.KindDatetime, surql.KindDecimal, surql.KindDuration,
		surql.KindNumber, surql.KindObject, surql.KindRecord, surql.KindGeometry, surql.KindArray:
		return "", false
	}
	return "", false
}

func fieldType(table string, f schema.FieldSchema) (string, error) {
	if f.Kind == nil {
		return "", &UntypedFieldError{Table: table, Field: f.Name}
	}
	goType, ok := MapKind(*f.Kind)
	if !ok {
		return "", &UntypedFieldError{Table: table, Field: f.Name, Kind: f.Kind.String()}
	}
	return goType, nil
}

func checkCollisions(table string, seen map[string][]string) error {
	names := make([]string, 0, len(seen))
	for name, fields := range seen {
		if len(fields) > 1 {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return nil
	}
	sort.Strings(names)
	return &FieldCollisionError{Table: table, GoName: names[0], Fields: seen[names[0]]}
}

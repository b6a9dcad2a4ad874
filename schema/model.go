package schema

import (
	"strings"

	"github.com/ridoystarlord/blackbird/surql"
)

// TableSchema is the introspected shape of one table.
type TableSchema struct {
	Name       string
	Definition *surql.DefineTable
	Fields     []FieldSchema

	// Introspected is set once the table's own catalog entry has been read.
	// A table with Introspected set and no Fields really has no fields.
	Introspected bool
}

// FieldSchema is one field of a table. Definition is shared, read-only
// data and must not be modified.
type FieldSchema struct {
	Name       string
	Kind       *surql.Kind // nil when the field declares no type
	Nullable   bool
	Assert     surql.Expr
	Definition *surql.DefineField
}

// NewField builds a FieldSchema from its definition.
func NewField(def *surql.DefineField) FieldSchema {
	return FieldSchema{
		Name:       def.Name,
		Kind:       def.Kind,
		Nullable:   IsNullable(def),
		Assert:     def.Assert,
		Definition: def,
	}
}

// Field returns the field called name.
func (t TableSchema) Field(name string) (FieldSchema, bool) {
	for _, f := range t.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSchema{}, false
}

// String renders the table definition followed by its field definitions,
// one statement per line.
func (t TableSchema) String() string {
	var b strings.Builder
	if t.Definition != nil {
		b.WriteString(t.Definition.String())
	} else {
		b.WriteString((&surql.DefineTable{Name: t.Name}).String())
	}
	b.WriteString(";\n")
	for _, f := range t.Fields {
		if f.Definition == nil {
			continue
		}
		b.WriteString(f.Definition.String())
		b.WriteString(";\n")
	}
	return b.String()
}

// KindString returns the declared kind, or "" when there is none.
func (f FieldSchema) KindString() string {
	if f.Kind == nil {
		return ""
	}
	return f.Kind.String()
}

// Clone returns a copy of tables whose slices can be changed without
// affecting the original. Definitions are shared.
func Clone(tables []TableSchema) []TableSchema {
	if tables == nil {
		return nil
	}
	out := make([]TableSchema, len(tables))
	for i, t := range tables {
		out[i] = t
		out[i].Fields = append([]FieldSchema(nil), t.Fields...)
	}
	return out
}

// Render joins the String form of every table.
func Render(tables []TableSchema) string {
	var b strings.Builder
	for i, t := range tables {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(t.String())
	}
	return b.String()
}

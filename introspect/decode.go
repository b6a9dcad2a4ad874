package introspect

import (
	"fmt"

	"github.com/ridoystarlord/blackbird/schema"
	"github.com/ridoystarlord/blackbird/surql"
)

// DecodeTable turns a catalog table entry back into its definition.
func DecodeTable(v any) (*surql.DefineTable, error) {
	st, err := decodeDefinition(v, "table definition")
	if err != nil {
		return nil, err
	}
	tb, ok := st.(*surql.DefineTable)
	if !ok {
		return nil, &schema.UnexpectedTypeError{Expected: "Table", Got: statementKind(st)}
	}
	return tb, nil
}

// DecodeField turns a catalog field entry back into its definition.
func DecodeField(v any) (*surql.DefineField, error) {
	st, err := decodeDefinition(v, "field definition")
	if err != nil {
		return nil, err
	}
	fd, ok := st.(*surql.DefineField)
	if !ok {
		return nil, &schema.UnexpectedTypeError{Expected: "Field", Got: statementKind(st)}
	}
	return fd, nil
}

// decodeDefinition parses a catalog value, which must be the text of
// exactly one statement.
func decodeDefinition(v any, source string) (surql.Statement, error) {
	text, ok := v.(string)
	if !ok {
		return nil, &schema.UnexpectedTypeError{Expected: "String", Got: valueKind(v)}
	}
	stmts, err := surql.Parse(text)
	if err != nil {
		return nil, &schema.ParseError{Source: fmt.Sprintf("%s %q", source, text), Err: err}
	}
	if len(stmts) != 1 {
		return nil, &schema.ResultCountError{Expected: 1, Got: len(stmts)}
	}
	return stmts[0], nil
}

func statementKind(st surql.Statement) string {
	switch st.(type) {
	case *surql.DefineNamespace:
		return "Namespace"
	case *surql.DefineDatabase:
		return "Database"
	case *surql.DefineTable:
		return "Table"
	case *surql.DefineField:
		return "Field"
	case *surql.RemoveTable, *surql.RemoveField:
		return "Remove"
	case *surql.Info:
		return "Info"
	}
	return fmt.Sprintf("%T", st)
}

func valueKind(v any) string {
	switch v.(type) {
	case nil:
		return "None"
	case string:
		return "String"
	case bool:
		return "Bool"
	case int, int64, float64:
		return "Number"
	case map[string]any:
		return "Object"
	case []any:
		return "Array"
	}
	return fmt.Sprintf("%T", v)
}

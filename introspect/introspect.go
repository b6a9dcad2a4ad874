package introspect

import (
	"context"
	"fmt"
	"sort"

	"github.com/ridoystarlord/blackbird/engine"
	"github.com/ridoystarlord/blackbird/logging"
	"github.com/ridoystarlord/blackbird/runner"
	"github.com/ridoystarlord/blackbird/schema"
	"github.com/ridoystarlord/blackbird/surql"
)

// Introspect reads every table and field definition back from the catalog
// of the database sess is scoped to. Tables and fields are ordered by name.
// Any failure aborts the whole result.
func Introspect(ctx context.Context, exec runner.Executor, sess engine.Session) ([]schema.TableSchema, error) {
	logger := logging.FromContext(ctx)

	v, err := runner.RunStatement(ctx, exec, sess, &surql.Info{Level: surql.InfoDB})
	if err != nil {
		return nil, fmt.Errorf("querying database info: %w", err)
	}
	tb, err := entries(v, "tb")
	if err != nil {
		return nil, err
	}

	tables := make([]schema.TableSchema, 0, len(tb))
	for _, name := range sortedKeys(tb) {
		def, err := DecodeTable(tb[name])
		if err != nil {
			return nil, fmt.Errorf("decoding table %s: %w", name, err)
		}
		tables = append(tables, schema.TableSchema{Name: def.Name, Definition: def})
	}
	if len(tables) == 0 {
		logger.Debug("no tables defined")
		return tables, nil
	}

	queries := make([]surql.Statement, len(tables))
	for i, t := range tables {
		queries[i] = &surql.Info{Level: surql.InfoTable, Table: t.Name}
	}
	results := runner.RunStatements(ctx, exec, sess, queries)
	if len(results) != len(tables) {
		return nil, &schema.ResultCountError{Expected: len(tables), Got: len(results)}
	}

	for i, r := range results {
		t := &tables[i]
		if r.Err != nil {
			return nil, fmt.Errorf("querying table %s: %w", t.Name, r.Err)
		}
		fd, err := entries(r.Value, "fd")
		if err != nil {
			return nil, fmt.Errorf("table %s: %w", t.Name, err)
		}
		t.Fields = make([]schema.FieldSchema, 0, len(fd))
		for _, name := range sortedKeys(fd) {
			def, err := DecodeField(fd[name])
			if err != nil {
				return nil, fmt.Errorf("decoding field %s on %s: %w", name, t.Name, err)
			}
			t.Fields = append(t.Fields, schema.NewField(def))
		}
		t.Introspected = true
		logger.Debug("table introspected", "table", t.Name, "fields", len(t.Fields))
	}
	return tables, nil
}

// entries extracts the definition mapping stored under key in an INFO
// result.
func entries(v any, key string) (map[string]any, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, &schema.UnexpectedTypeError{Expected: "Object", Got: valueKind(v)}
	}
	inner, ok := m[key]
	if !ok {
		return nil, &schema.MissingKeyError{Key: key}
	}
	defs, ok := inner.(map[string]any)
	if !ok {
		return nil, &schema.UnexpectedTypeError{Expected: "Object", Got: valueKind(inner)}
	}
	return defs, nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

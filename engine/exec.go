package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/ridoystarlord/blackbird/database"
	"github.com/ridoystarlord/blackbird/surql"
)

type executor struct {
	tx   database.Tx
	sess Session
}

func (x *executor) execute(ctx context.Context, st surql.Statement) (any, error) {
	switch s := st.(type) {
	case *surql.DefineNamespace:
		return nil, x.tx.Set(ctx, nsKey(s.Name), []byte(s.String()))
	case *surql.DefineDatabase:
		if err := x.requireNS(ctx); err != nil {
			return nil, err
		}
		return nil, x.tx.Set(ctx, dbKey(x.sess.NS, s.Name), []byte(s.String()))
	case *surql.DefineTable:
		if err := x.requireDB(ctx); err != nil {
			return nil, err
		}
		return nil, x.tx.Set(ctx, x.tableKey(s.Name), []byte(s.String()))
	case *surql.DefineField:
		return nil, x.defineField(ctx, s)
	case *surql.RemoveTable:
		return nil, x.removeTable(ctx, s)
	case *surql.RemoveField:
		return nil, x.removeField(ctx, s)
	case *surql.Info:
		return x.info(ctx, s)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, st)
}

func (x *executor) tableKey(tb string) string {
	return tbKey(x.sess.NS, x.sess.DB, tb)
}

func (x *executor) fieldKey(tb, fd string) string {
	return fdKey(x.sess.NS, x.sess.DB, tb, fd)
}

func (x *executor) exists(ctx context.Context, key string) (bool, error) {
	_, ok, err := x.tx.Get(ctx, key)
	return ok, err
}

func (x *executor) requireNS(ctx context.Context) error {
	if x.sess.NS == "" {
		return ErrNoNamespace
	}
	ok, err := x.exists(ctx, nsKey(x.sess.NS))
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrNamespaceNotFound, x.sess.NS)
	}
	return nil
}

func (x *executor) requireDB(ctx context.Context) error {
	if err := x.requireNS(ctx); err != nil {
		return err
	}
	if x.sess.DB == "" {
		return ErrNoDatabase
	}
	ok, err := x.exists(ctx, dbKey(x.sess.NS, x.sess.DB))
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrDatabaseNotFound, x.sess.DB)
	}
	return nil
}

func (x *executor) requireTable(ctx context.Context, tb string) error {
	ok, err := x.exists(ctx, x.tableKey(tb))
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrTableNotFound, tb)
	}
	return nil
}

// defineField stores the field, defining its table as schemaless first if
// the table does not exist yet.
func (x *executor) defineField(ctx context.Context, s *surql.DefineField) error {
	if err := x.requireDB(ctx); err != nil {
		return err
	}
	ok, err := x.exists(ctx, x.tableKey(s.Table))
	if err != nil {
		return err
	}
	if !ok {
		tb := &surql.DefineTable{Name: s.Table}
		if err := x.tx.Set(ctx, x.tableKey(s.Table), []byte(tb.String())); err != nil {
			return err
		}
	}
	return x.tx.Set(ctx, x.fieldKey(s.Table, s.Name), []byte(s.String()))
}

func (x *executor) removeTable(ctx context.Context, s *surql.RemoveTable) error {
	if err := x.requireDB(ctx); err != nil {
		return err
	}
	if err := x.requireTable(ctx, s.Name); err != nil {
		return err
	}
	fields, err := x.tx.Scan(ctx, fdPrefix(x.sess.NS, x.sess.DB, s.Name))
	if err != nil {
		return err
	}
	for _, kv := range fields {
		if err := x.tx.Delete(ctx, kv.Key); err != nil {
			return err
		}
	}
	return x.tx.Delete(ctx, x.tableKey(s.Name))
}

func (x *executor) removeField(ctx context.Context, s *surql.RemoveField) error {
	if err := x.requireDB(ctx); err != nil {
		return err
	}
	key := x.fieldKey(s.Table, s.Name)
	ok, err := x.exists(ctx, key)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s on %s", ErrFieldNotFound, s.Name, s.Table)
	}
	return x.tx.Delete(ctx, key)
}

func (x *executor) info(ctx context.Context, s *surql.Info) (any, error) {
	var (
		label  string
		prefix string
	)
	switch s.Level {
	case surql.InfoKV:
		label, prefix = "ns", nsPrefix()
	case surql.InfoNS:
		if err := x.requireNS(ctx); err != nil {
			return nil, err
		}
		label, prefix = "db", dbPrefix(x.sess.NS)
	case surql.InfoDB:
		if err := x.requireDB(ctx); err != nil {
			return nil, err
		}
		label, prefix = "tb", tbPrefix(x.sess.NS, x.sess.DB)
	case surql.InfoTable:
		if err := x.requireDB(ctx); err != nil {
			return nil, err
		}
		if err := x.requireTable(ctx, s.Table); err != nil {
			return nil, err
		}
		label, prefix = "fd", fdPrefix(x.sess.NS, x.sess.DB, s.Table)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, s)
	}

	entries, err := x.tx.Scan(ctx, prefix)
	if err != nil {
		return nil, err
	}
	defs := make(map[string]any, len(entries))
	for _, kv := range entries {
		defs[strings.TrimPrefix(kv.Key, prefix)] = string(kv.Value)
	}
	return map[string]any{label: defs}, nil
}

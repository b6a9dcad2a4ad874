package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// dialect holds the statements a database/sql backend needs for its KV
// table. Each format string takes the table name.
type dialect struct {
	backend string
	create  string
	upsert  string
	get     string
	del     string
	scan    string
	scanAll string
	drop    string
}

// sqlStore keeps the KV entries of one store instance in its own table.
type sqlStore struct {
	db      *sql.DB
	table   string
	dialect dialect
}

func newSQLStore(ctx context.Context, db *sql.DB, d dialect) (*sqlStore, error) {
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("unable to ping %s: %w", d.backend, err)
	}
	s := &sqlStore{db: db, table: instanceTable(), dialect: d}
	if _, err := db.ExecContext(ctx, s.stmt(d.create)); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating %s kv table: %w", d.backend, err)
	}
	return s, nil
}

func (s *sqlStore) stmt(format string) string {
	return fmt.Sprintf(format, s.table)
}

func (s *sqlStore) Backend() string { return s.dialect.backend }

func (s *sqlStore) Begin(ctx context.Context, writable bool) (Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		if errors.Is(err, sql.ErrConnDone) {
			return nil, ErrClosed
		}
		return nil, fmt.Errorf("begin %s transaction: %w", s.dialect.backend, err)
	}
	return &sqlTx{store: s, tx: tx, writable: writable}, nil
}

// Close drops the instance table and closes the connection pool.
func (s *sqlStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, dropErr := s.db.ExecContext(ctx, s.stmt(s.dialect.drop))
	closeErr := s.db.Close()
	if dropErr != nil {
		return fmt.Errorf("dropping %s kv table: %w", s.dialect.backend, dropErr)
	}
	return closeErr
}

type sqlTx struct {
	store    *sqlStore
	tx       *sql.Tx
	writable bool
}

func (t *sqlTx) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var v []byte
	err := t.tx.QueryRowContext(ctx, t.store.stmt(t.store.dialect.get), key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, t.wrap(err)
	}
	return v, true, nil
}

func (t *sqlTx) Set(ctx context.Context, key string, value []byte) error {
	if !t.writable {
		return ErrReadOnly
	}
	if _, err := t.tx.ExecContext(ctx, t.store.stmt(t.store.dialect.upsert), key, value); err != nil {
		return t.wrap(err)
	}
	return nil
}

func (t *sqlTx) Delete(ctx context.Context, key string) error {
	if !t.writable {
		return ErrReadOnly
	}
	if _, err := t.tx.ExecContext(ctx, t.store.stmt(t.store.dialect.del), key); err != nil {
		return t.wrap(err)
	}
	return nil
}

func (t *sqlTx) Scan(ctx context.Context, prefix string) ([]KeyValue, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if end := prefixEnd(prefix); end != "" {
		rows, err = t.tx.QueryContext(ctx, t.store.stmt(t.store.dialect.scan), prefix, end)
	} else {
		rows, err = t.tx.QueryContext(ctx, t.store.stmt(t.store.dialect.scanAll))
	}
	if err != nil {
		return nil, t.wrap(err)
	}
	defer rows.Close()

	var out []KeyValue
	for rows.Next() {
		var kv KeyValue
		if err := rows.Scan(&kv.Key, &kv.Value); err != nil {
			return nil, t.wrap(err)
		}
		out = append(out, kv)
	}
	if err := rows.Err(); err != nil {
		return nil, t.wrap(err)
	}
	return out, nil
}

func (t *sqlTx) Commit(_ context.Context) error {
	return t.wrap(t.tx.Commit())
}

func (t *sqlTx) Cancel(_ context.Context) error {
	return t.wrap(t.tx.Rollback())
}

func (t *sqlTx) wrap(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrTxDone):
		return ErrTxDone
	case errors.Is(err, sql.ErrConnDone):
		return ErrClosed
	}
	return fmt.Errorf("%s: %w", t.store.dialect.backend, err)
}

package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresStore struct {
	pool  *pgxpool.Pool
	table string
}

// OpenPostgres opens a store in the PostgreSQL database at connStr. The
// store's entries live in a table created for this instance and dropped
// by Close.
func OpenPostgres(ctx context.Context, connStr string) (Store, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	// Test the connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	s := &postgresStore{pool: pool, table: instanceTable()}
	_, err = pool.Exec(ctx, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (k TEXT COLLATE "C" PRIMARY KEY, v BYTEA NOT NULL)`, s.table))
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("creating postgres kv table: %w", err)
	}
	return s, nil
}

func (s *postgresStore) Backend() string { return BackendPostgres }

func (s *postgresStore) Begin(ctx context.Context, writable bool) (Tx, error) {
	mode := pgx.ReadWrite
	if !writable {
		mode = pgx.ReadOnly
	}
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{AccessMode: mode})
	if err != nil {
		return nil, fmt.Errorf("begin postgres transaction: %w", err)
	}
	return &postgresTx{store: s, tx: tx, writable: writable}, nil
}

// Close drops the instance table and closes the pool.
func (s *postgresStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, err := s.pool.Exec(ctx, fmt.Sprintf(`DROP TABLE IF EXISTS %s`, s.table))
	s.pool.Close()
	if err != nil {
		return fmt.Errorf("dropping postgres kv table: %w", err)
	}
	return nil
}

type postgresTx struct {
	store    *postgresStore
	tx       pgx.Tx
	writable bool
}

func (t *postgresTx) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var v []byte
	err := t.tx.QueryRow(ctx, fmt.Sprintf(`SELECT v FROM %s WHERE k = $1`, t.store.table), key).Scan(&v)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, wrapPostgres(err)
	}
	return v, true, nil
}

func (t *postgresTx) Set(ctx context.Context, key string, value []byte) error {
	if !t.writable {
		return ErrReadOnly
	}
	_, err := t.tx.Exec(ctx, fmt.Sprintf(
		`INSERT INTO %s (k, v) VALUES ($1, $2) ON CONFLICT (k) DO UPDATE SET v = EXCLUDED.v`, t.store.table),
		key, value)
	return wrapPostgres(err)
}

func (t *postgresTx) Delete(ctx context.Context, key string) error {
	if !t.writable {
		return ErrReadOnly
	}
	_, err := t.tx.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE k = $1`, t.store.table), key)
	return wrapPostgres(err)
}

func (t *postgresTx) Scan(ctx context.Context, prefix string) ([]KeyValue, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if end := prefixEnd(prefix); end != "" {
		rows, err = t.tx.Query(ctx, fmt.Sprintf(`SELECT k, v FROM %s WHERE k >= $1 AND k < $2 ORDER BY k`, t.store.table), prefix, end)
	} else {
		rows, err = t.tx.Query(ctx, fmt.Sprintf(`SELECT k, v FROM %s ORDER BY k`, t.store.table))
	}
	if err != nil {
		return nil, wrapPostgres(err)
	}
	defer rows.Close()

	var out []KeyValue
	for rows.Next() {
		var kv KeyValue
		if err := rows.Scan(&kv.Key, &kv.Value); err != nil {
			return nil, wrapPostgres(err)
		}
		out = append(out, kv)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapPostgres(err)
	}
	return out, nil
}

func (t *postgresTx) Commit(ctx context.Context) error {
	return wrapPostgres(t.tx.Commit(ctx))
}

func (t *postgresTx) Cancel(ctx context.Context) error {
	return wrapPostgres(t.tx.Rollback(ctx))
}

func wrapPostgres(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, pgx.ErrTxClosed):
		return ErrTxDone
	}
	return fmt.Errorf("postgres: %w", err)
}

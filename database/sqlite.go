package database

import (
	"context"
	"database/sql"
	"fmt"
)

var sqliteDialect = dialect{
	backend: BackendSQLite,
	create:  `CREATE TABLE IF NOT EXISTS %s (k TEXT PRIMARY KEY, v BLOB NOT NULL)`,
	upsert:  `INSERT INTO %s (k, v) VALUES (?, ?) ON CONFLICT(k) DO UPDATE SET v = excluded.v`,
	get:     `SELECT v FROM %s WHERE k = ?`,
	del:     `DELETE FROM %s WHERE k = ?`,
	scan:    `SELECT k, v FROM %s WHERE k >= ? AND k < ? ORDER BY k`,
	scanAll: `SELECT k, v FROM %s ORDER BY k`,
	drop:    `DROP TABLE IF EXISTS %s`,
}

// OpenSQLite opens a store backed by the SQLite file at path, or by a
// private in-memory database when path is empty. The driver is chosen at
// build time: pure Go by default, mattn/go-sqlite3 with -tags cgo_sqlite.
func OpenSQLite(ctx context.Context, path string) (Store, error) {
	dsn := path
	if dsn == "" {
		dsn = ":memory:"
	}
	db, err := sql.Open(sqliteDriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("unable to open sqlite database: %w", err)
	}
	// One connection: every connection to ":memory:" would otherwise see a
	// different database, and SQLite serialises writers anyway.
	db.SetMaxOpenConns(1)
	return newSQLStore(ctx, db, sqliteDialect)
}

// SQLiteDriver reports which SQLite driver this binary was built with.
func SQLiteDriver() string {
	return sqliteDriverType
}

package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/go-sql-driver/mysql"
)

var mysqlDialect = dialect{
	backend: BackendMySQL,
	create:  `CREATE TABLE IF NOT EXISTS %s (k VARBINARY(767) NOT NULL PRIMARY KEY, v LONGBLOB NOT NULL)`,
	upsert:  `INSERT INTO %s (k, v) VALUES (?, ?) ON DUPLICATE KEY UPDATE v = VALUES(v)`,
	get:     `SELECT v FROM %s WHERE k = ?`,
	del:     `DELETE FROM %s WHERE k = ?`,
	scan:    `SELECT k, v FROM %s WHERE k >= ? AND k < ? ORDER BY k`,
	scanAll: `SELECT k, v FROM %s ORDER BY k`,
	drop:    `DROP TABLE IF EXISTS %s`,
}

// OpenMySQL opens a store in the MySQL database named by dsn, in the Go
// driver's user:pass@tcp(host:port)/db form.
func OpenMySQL(ctx context.Context, dsn string) (Store, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid mysql dsn: %w", err)
	}
	if cfg.DBName == "" {
		return nil, fmt.Errorf("invalid mysql dsn: database name is required")
	}
	db, err := sql.Open("mysql", cfg.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("unable to open mysql database: %w", err)
	}
	return newSQLStore(ctx, db, mysqlDialect)
}

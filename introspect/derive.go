package introspect

import (
	"context"

	"github.com/ridoystarlord/blackbird/loader"
	"github.com/ridoystarlord/blackbird/logging"
	"github.com/ridoystarlord/blackbird/runner"
	"github.com/ridoystarlord/blackbird/schema"
	"github.com/ridoystarlord/blackbird/surql"
)

// FromStatements applies stmts to a disposable datastore and returns the
// resulting schema. The datastore is closed before returning.
func FromStatements(ctx context.Context, stmts []surql.Statement, opts runner.Options) ([]schema.TableSchema, error) {
	ds, sess, err := runner.ApplyMigrations(ctx, stmts, opts)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := ds.Close(); err != nil {
			logging.FromContext(ctx).Warn("closing datastore", "error", err)
		}
	}()
	return Introspect(ctx, ds, sess)
}

// FromDirectory loads the migrations in dir and derives their schema.
func FromDirectory(ctx context.Context, dir string, opts runner.Options, exts ...string) ([]schema.TableSchema, error) {
	migrations, err := loader.LoadMigrations(dir, exts...)
	if err != nil {
		return nil, err
	}
	logging.FromContext(ctx).Debug("migrations loaded", "dir", dir, "files", len(migrations))
	return FromStatements(ctx, loader.Statements(migrations), opts)
}

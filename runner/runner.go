package runner

import (
	"context"
	"errors"
	"fmt"

	"github.com/ridoystarlord/blackbird/engine"
	"github.com/ridoystarlord/blackbird/logging"
	"github.com/ridoystarlord/blackbird/schema"
	"github.com/ridoystarlord/blackbird/surql"
)

const (
	DefaultNamespace = "test_namespace"
	DefaultDatabase  = "test_database"
	DefaultBackend   = "memory"
)

// Options configures a provisioned datastore. Zero values select the
// defaults above.
type Options struct {
	Backend   string
	Namespace string
	Database  string
}

func (o Options) withDefaults() Options {
	if o.Backend == "" {
		o.Backend = DefaultBackend
	}
	if o.Namespace == "" {
		o.Namespace = DefaultNamespace
	}
	if o.Database == "" {
		o.Database = DefaultDatabase
	}
	return o
}

// Executor runs a batch of statements. *engine.Datastore implements it.
type Executor interface {
	Process(ctx context.Context, sess engine.Session, stmts []surql.Statement) ([]engine.Response, error)
}

// Result is the outcome of one statement.
type Result struct {
	Value any
	Err   error
}

// Provision creates a fresh datastore and defines its namespace and
// database. The returned session is scoped to both. The caller owns the
// datastore and must close it.
func Provision(ctx context.Context, opts Options) (*engine.Datastore, engine.Session, error) {
	opts = opts.withDefaults()
	ds, err := engine.New(ctx, opts.Backend)
	if err != nil {
		return nil, engine.Session{}, &schema.EngineError{Err: err}
	}

	steps := []struct {
		sess engine.Session
		stmt surql.Statement
	}{
		{engine.ForKV(), &surql.DefineNamespace{Name: opts.Namespace}},
		{engine.ForNS(opts.Namespace), &surql.DefineDatabase{Name: opts.Database}},
	}
	for _, step := range steps {
		if _, err := RunStatement(ctx, ds, step.sess, step.stmt); err != nil {
			ds.Close()
			return nil, engine.Session{}, err
		}
	}

	logging.FromContext(ctx).Debug("datastore provisioned",
		"backend", ds.Backend(),
		"namespace", opts.Namespace,
		"database", opts.Database)
	return ds, engine.ForDB(opts.Namespace, opts.Database), nil
}

// RunStatements executes stmts as one batch and returns a result per
// statement. When the engine rejects the whole batch, every result carries
// that same failure.
func RunStatements(ctx context.Context, exec Executor, sess engine.Session, stmts []surql.Statement) []Result {
	responses, err := exec.Process(ctx, sess, stmts)
	if err != nil {
		failure := &schema.EngineError{Err: err}
		results := make([]Result, len(stmts))
		for i := range results {
			results[i] = Result{Err: failure}
		}
		return results
	}

	results := make([]Result, len(responses))
	for i, r := range responses {
		results[i] = Result{Value: r.Result}
		if r.Err != nil {
			text := ""
			if i < len(stmts) {
				text = stmts[i].String()
			}
			results[i].Err = &schema.EngineError{Statement: text, Err: r.Err}
		}
	}
	return results
}

// RunStatement executes a single statement and returns its value.
func RunStatement(ctx context.Context, exec Executor, sess engine.Session, stmt surql.Statement) (any, error) {
	return single(RunStatements(ctx, exec, sess, []surql.Statement{stmt}))
}

// single unwraps a batch that must have produced exactly one result.
func single(results []Result) (any, error) {
	if len(results) != 1 {
		return nil, &schema.ResultCountError{Expected: 1, Got: len(results)}
	}
	return results[0].Value, results[0].Err
}

// Apply executes stmts in order and stops at the first failure.
func Apply(ctx context.Context, exec Executor, sess engine.Session, stmts []surql.Statement) error {
	if len(stmts) == 0 {
		return nil
	}
	results := RunStatements(ctx, exec, sess, stmts)
	if len(results) != len(stmts) {
		return &schema.ResultCountError{Expected: len(stmts), Got: len(results)}
	}
	// A failed batch reports ErrNotExecuted for every statement except the
	// one that failed, so look for that one first.
	var skipped error
	for i, r := range results {
		switch {
		case r.Err == nil:
		case errors.Is(r.Err, engine.ErrNotExecuted):
			if skipped == nil {
				skipped = r.Err
			}
		default:
			return fmt.Errorf("applying statement %d of %d: %w", i+1, len(stmts), r.Err)
		}
	}
	return skipped
}

// ApplyMigrations provisions a datastore and applies stmts to it. On
// failure the datastore is closed before returning.
func ApplyMigrations(ctx context.Context, stmts []surql.Statement, opts Options) (*engine.Datastore, engine.Session, error) {
	ds, sess, err := Provision(ctx, opts)
	if err != nil {
		return nil, engine.Session{}, err
	}
	if err := Apply(ctx, ds, sess, stmts); err != nil {
		ds.Close()
		return nil, engine.Session{}, err
	}
	logging.FromContext(ctx).Debug("migrations applied", "statements", len(stmts))
	return ds, sess, nil
}

package runner

import (
	"context"
	"errors"
	"testing"

	"github.com/ridoystarlord/blackbird/engine"
	"github.com/ridoystarlord/blackbird/schema"
	"github.com/ridoystarlord/blackbird/surql"
)

type fakeExecutor struct {
	responses []engine.Response
	err       error
}

func (f fakeExecutor) Process(context.Context, engine.Session, []surql.Statement) ([]engine.Response, error) {
	return f.responses, f.err
}

func TestProvision(t *testing.T) {
	ctx := context.Background()
	ds, sess, err := Provision(ctx, Options{})
	if err != nil {
		t.Fatalf("Provision() error = %v", err)
	}
	defer ds.Close()

	if sess.NS != DefaultNamespace || sess.DB != DefaultDatabase {
		t.Errorf("session = %+v", sess)
	}
	v, err := RunStatement(ctx, ds, engine.ForKV(), &surql.Info{Level: surql.InfoKV})
	if err != nil {
		t.Fatalf("INFO FOR KV error = %v", err)
	}
	ns := v.(map[string]any)["ns"].(map[string]any)
	if ns[DefaultNamespace] != "DEFINE NAMESPACE test_namespace" {
		t.Errorf("ns = %v", ns)
	}
}

func TestProvisionUnknownBackend(t *testing.T) {
	_, _, err := Provision(context.Background(), Options{Backend: "redis://x"})
	if !errors.Is(err, schema.ErrEngine) {
		t.Errorf("Provision() error = %v, want ErrEngine", err)
	}
}

func TestRunStatementsBatchFailure(t *testing.T) {
	boom := errors.New("boom")
	stmts := surql.MustParse("INFO FOR DB; INFO FOR KV")
	results := RunStatements(context.Background(), fakeExecutor{err: boom}, engine.ForKV(), stmts)
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	for i, r := range results {
		if !errors.Is(r.Err, schema.ErrEngine) || !errors.Is(r.Err, boom) {
			t.Errorf("results[%d].Err = %v", i, r.Err)
		}
	}
	if results[0].Err != results[1].Err {
		t.Error("batch failure should be shared by every result")
	}
}

func TestRunStatementCountMismatch(t *testing.T) {
	tests := []struct {
		name      string
		responses []engine.Response
		got       int
	}{
		{"none", nil, 0},
		{"two", []engine.Response{{}, {}}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := RunStatement(context.Background(), fakeExecutor{responses: tt.responses}, engine.ForKV(), &surql.Info{})
			var rc *schema.ResultCountError
			if !errors.As(err, &rc) {
				t.Fatalf("error = %v, want ResultCountError", err)
			}
			if rc.Expected != 1 || rc.Got != tt.got {
				t.Errorf("ResultCountError = %+v", rc)
			}
		})
	}
}

func TestApplyMigrations(t *testing.T) {
	ctx := context.Background()
	stmts := surql.MustParse(`
		DEFINE TABLE person SCHEMAFULL;
		DEFINE FIELD name ON person TYPE string;
	`)
	ds, sess, err := ApplyMigrations(ctx, stmts, Options{})
	if err != nil {
		t.Fatalf("ApplyMigrations() error = %v", err)
	}
	defer ds.Close()

	v, err := RunStatement(ctx, ds, sess, &surql.Info{Level: surql.InfoTable, Table: "person"})
	if err != nil {
		t.Fatalf("INFO FOR TABLE error = %v", err)
	}
	if fd := v.(map[string]any)["fd"].(map[string]any); len(fd) != 1 {
		t.Errorf("fd = %v", fd)
	}
}

func TestApplyReportsFailingStatement(t *testing.T) {
	stmts := surql.MustParse(`
		DEFINE TABLE person;
		REMOVE FIELD nope ON person;
	`)
	_, _, err := ApplyMigrations(context.Background(), stmts, Options{})
	if !errors.Is(err, schema.ErrEngine) {
		t.Fatalf("error = %v, want ErrEngine", err)
	}
	if !errors.Is(err, engine.ErrFieldNotFound) {
		t.Errorf("error = %v, want the failing statement's cause", err)
	}
}

package loader

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ridoystarlord/blackbird/schema"
)

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestMigrationFilesOrderAndFilter(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"2_add_username.surql":   "",
		"1_create_table.surql":   "",
		"10_late.sql":            "",
		"README.md":              "# notes",
		"nested/3_ignored.surql": "",
	})

	files, err := MigrationFiles(dir)
	if err != nil {
		t.Fatalf("MigrationFiles() error = %v", err)
	}
	var names []string
	for _, f := range files {
		names = append(names, filepath.Base(f))
	}
	want := "10_late.sql,1_create_table.surql,2_add_username.surql"
	if got := strings.Join(names, ","); got != want {
		t.Errorf("files = %s, want %s", got, want)
	}

	files, err = MigrationFiles(dir, ".sql")
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 {
		t.Errorf("files with .sql only = %v", files)
	}
}

func TestLoadMigrations(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"1_create_table.surql": "DEFINE TABLE person SCHEMAFULL;\nDEFINE FIELD name ON person TYPE string;",
		"2_add_username.surql": "-- usernames are required\nDEFINE FIELD username ON person TYPE string ASSERT $value != NONE;",
	})

	migrations, err := LoadMigrations(dir)
	if err != nil {
		t.Fatalf("LoadMigrations() error = %v", err)
	}
	if len(migrations) != 2 {
		t.Fatalf("got %d migrations", len(migrations))
	}
	if migrations[0].Name != "1_create_table.surql" || len(migrations[0].Statements) != 2 {
		t.Errorf("first migration = %+v", migrations[0])
	}
	if len(migrations[0].Checksum) != 64 {
		t.Errorf("checksum = %q, want 64 hex chars", migrations[0].Checksum)
	}
	if migrations[0].Checksum == migrations[1].Checksum {
		t.Error("different files share a checksum")
	}

	stmts := Statements(migrations)
	if len(stmts) != 3 {
		t.Fatalf("got %d statements", len(stmts))
	}
	if got := stmts[2].String(); got != "DEFINE FIELD username ON person TYPE string ASSERT $value != NONE" {
		t.Errorf("last statement = %q", got)
	}

	again, err := ReadMigrations(dir)
	if err != nil {
		t.Fatal(err)
	}
	for i := range again {
		if again[i].String() != stmts[i].String() {
			t.Errorf("statement %d differs between loads", i)
		}
	}
}

func TestLoadMigrationsParseFailure(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"1_ok.surql":  "DEFINE TABLE person;",
		"2_bad.surql": "DEFINE TABLE;",
		"3_ok.surql":  "DEFINE TABLE pet;",
	})

	_, err := LoadMigrations(dir)
	if !errors.Is(err, schema.ErrParse) {
		t.Fatalf("error = %v, want ErrParse", err)
	}
	var perr *schema.ParseError
	if !errors.As(err, &perr) || filepath.Base(perr.Path) != "2_bad.surql" {
		t.Errorf("parse error does not name the file: %v", err)
	}
}

func TestLoadMigrationsMissingDir(t *testing.T) {
	_, err := LoadMigrations(filepath.Join(t.TempDir(), "absent"))
	if !errors.Is(err, schema.ErrIO) {
		t.Errorf("error = %v, want ErrIO", err)
	}
}

func TestLoadMigrationsEmptyDir(t *testing.T) {
	stmts, err := ReadMigrations(t.TempDir())
	if err != nil {
		t.Fatalf("ReadMigrations() error = %v", err)
	}
	if len(stmts) != 0 {
		t.Errorf("got %d statements from empty dir", len(stmts))
	}
}

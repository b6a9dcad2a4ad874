package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ridoystarlord/blackbird/config"
	"github.com/ridoystarlord/blackbird/database"
	"github.com/ridoystarlord/blackbird/generator"
	"github.com/ridoystarlord/blackbird/introspect"
	"github.com/ridoystarlord/blackbird/runner"
	"github.com/ridoystarlord/blackbird/schema"
	"github.com/ridoystarlord/blackbird/validator"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"BLACKBIRD_MIGRATIONS", "BLACKBIRD_BACKEND", "DATABASE_URL", "BLACKBIRD_LOG_LEVEL", "BLACKBIRD_LOG_FORMAT", "GOFILE", "GOLINE"} {
		t.Setenv(key, "")
	}
}

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

func personTables(t *testing.T) []schema.TableSchema {
	t.Helper()
	dir := t.TempDir()
	if err := scaffold(&bytes.Buffer{}, dir); err != nil {
		t.Fatal(err)
	}
	tables, err := introspect.FromDirectory(context.Background(), filepath.Join(dir, "migrations"), runner.Options{})
	if err != nil {
		t.Fatalf("FromDirectory() error = %v", err)
	}
	return tables
}

func TestScaffold(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer
	if err := scaffold(&out, dir); err != nil {
		t.Fatalf("scaffold() error = %v", err)
	}
	if _, err := config.Load(filepath.Join(dir, config.DefaultFile)); err != nil {
		t.Errorf("scaffolded config does not load: %v", err)
	}
	if !strings.Contains(out.String(), "1_create_person.surql") {
		t.Errorf("output = %q", out.String())
	}
	if err := scaffold(&out, dir); err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Errorf("second scaffold() error = %v", err)
	}
}

func TestScaffoldedMigrationGenerates(t *testing.T) {
	tables := personTables(t)
	rec, err := generator.Generate("person", tables)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(rec.Fields) != 2 || rec.Fields[0].GoType() != "*string" || rec.Fields[1].GoType() != "string" {
		t.Errorf("fields = %+v", rec.Fields)
	}
	if result := validator.ValidateSchemas(tables); !result.Valid {
		t.Errorf("validation errors = %+v", result.Errors)
	}
}

func TestGenerateTargets(t *testing.T) {
	tables := []schema.TableSchema{{Name: "person"}, {Name: "pet"}}
	configured := []config.TableConfig{{Name: "person", Type: "User"}}

	tests := []struct {
		name       string
		args       []string
		configured []config.TableConfig
		override   string
		want       []config.TableConfig
		wantErr    bool
	}{
		{name: "arguments win", args: []string{"pet"}, configured: configured, want: []config.TableConfig{{Name: "pet"}}},
		{name: "configured tables", configured: configured, want: configured},
		{name: "all tables", want: []config.TableConfig{{Name: "person"}, {Name: "pet"}}},
		{name: "type override", args: []string{"pet"}, override: "Animal", want: []config.TableConfig{{Name: "pet", Type: "Animal"}}},
		{name: "type override needs one table", override: "Animal", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := generateTargets(tt.args, tt.configured, tables, tt.override)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if len(got) != len(tt.want) {
				t.Fatalf("targets = %+v, want %+v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("target %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}

	if _, err := generateTargets(nil, nil, nil, ""); err == nil {
		t.Error("generateTargets() with no tables succeeded")
	}
}

func TestWriteSchema(t *testing.T) {
	tables := personTables(t)

	var text bytes.Buffer
	if err := writeSchema(&text, tables, "text"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(text.String(), "DEFINE FIELD username ON person TYPE string ASSERT $value != NONE;") {
		t.Errorf("text output = %q", text.String())
	}

	var js bytes.Buffer
	if err := writeSchema(&js, tables, "json"); err != nil {
		t.Fatal(err)
	}
	var docs []tableDoc
	if err := json.Unmarshal(js.Bytes(), &docs); err != nil {
		t.Fatalf("json output does not decode: %v", err)
	}
	if len(docs) != 1 || !docs[0].Schemafull || len(docs[0].Fields) != 2 || docs[0].Fields[1].Nullable {
		t.Errorf("docs = %+v", docs)
	}

	var md bytes.Buffer
	if err := writeSchema(&md, tables, "markdown"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(md.String(), "| username | `string` | no | `$value != NONE` |") {
		t.Errorf("markdown output = %q", md.String())
	}

	if err := writeSchema(&bytes.Buffer{}, tables, "xml"); err == nil {
		t.Error("writeSchema() accepted an unknown format")
	}
}

func TestSelectTables(t *testing.T) {
	tables := []schema.TableSchema{{Name: "person"}, {Name: "pet"}}
	got, err := selectTables(tables, []string{"PET"})
	if err != nil || len(got) != 1 || got[0].Name != "pet" {
		t.Errorf("selectTables() = %+v, %v", got, err)
	}
	if _, err := selectTables(tables, []string{"owner"}); !errors.Is(err, generator.ErrTableNotFound) {
		t.Errorf("selectTables() error = %v", err)
	}
}

func TestMigrationStatus(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"1_person.surql": "DEFINE TABLE person SCHEMAFULL;",
		"2_broken.surql": "DEFINE FIELD name ON person TYPE string; INFO FOR TABLE missing;",
		"3_pet.surql":    "DEFINE TABLE pet SCHEMAFULL;",
	})

	report, err := migrationStatus(context.Background(), dir, runner.Options{})
	if err != nil {
		t.Fatalf("migrationStatus() error = %v", err)
	}
	if len(report.Applied) != 1 || report.Applied[0].Name != "1_person.surql" {
		t.Errorf("applied = %+v", report.Applied)
	}
	if report.Failed == nil || report.Failed.Migration.Name != "2_broken.surql" {
		t.Fatalf("failed = %+v", report.Failed)
	}
	if len(report.Pending) != 1 || report.Pending[0].Name != "3_pet.surql" {
		t.Errorf("pending = %+v", report.Pending)
	}

	var out bytes.Buffer
	printStatus(&out, report)
	if !strings.Contains(out.String(), "2_broken.surql") {
		t.Errorf("status output = %q", out.String())
	}
}

func TestOutputText(t *testing.T) {
	result := validator.ValidateSchemas([]schema.TableSchema{{Name: "person"}})
	var out bytes.Buffer
	if err := outputText(&out, result); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Schema check failed", "[person]", "Errors: 1"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestDiagnostic(t *testing.T) {
	err := errors.New("table \"pet\" not found")
	t.Setenv("GOFILE", "")
	t.Setenv("GOLINE", "")
	if got := diagnostic(err); got != err.Error() {
		t.Errorf("diagnostic() = %q", got)
	}
	t.Setenv("GOFILE", "models.go")
	t.Setenv("GOLINE", "7")
	if got := diagnostic(err); got != "models.go:7: table \"pet\" not found" {
		t.Errorf("diagnostic() = %q", got)
	}
}

func TestGenerateCommand(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Chdir(dir)
	if err := scaffold(&bytes.Buffer{}, "."); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"generate", "-o", "-", "-p", "entities"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("generate error = %v", err)
	}
	for _, want := range []string{"package entities", "type Person struct {", "Username string"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestExampleModelsUpToDate(t *testing.T) {
	tables, err := introspect.FromDirectory(context.Background(), "../examples/migrations", runner.Options{})
	if err != nil {
		t.Fatalf("FromDirectory() error = %v", err)
	}
	var records []*generator.RecordType
	for _, name := range []string{"person", "pet"} {
		rec, err := generator.Generate(name, tables)
		if err != nil {
			t.Fatalf("Generate(%s) error = %v", name, err)
		}
		records = append(records, rec)
	}
	var buf bytes.Buffer
	if err := generator.Render(&buf, generator.File{Package: "models", Source: "../migrations", Records: records}); err != nil {
		t.Fatal(err)
	}
	want, err := os.ReadFile("../examples/models/schema_gen.go")
	if err != nil {
		t.Fatal(err)
	}
	if buf.String() != string(want) {
		t.Errorf("examples/models/schema_gen.go is stale, regenerate it:\n%s", buf.String())
	}
}

func TestDiagrams(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"1.surql": `DEFINE TABLE person SCHEMAFULL;
DEFINE FIELD name ON person TYPE string ASSERT $value != NONE;
DEFINE TABLE pet SCHEMAFULL;
DEFINE FIELD owner ON pet TYPE record<person>;
DEFINE FIELD friends ON pet TYPE array<record<pet>>;`,
	})
	tables, err := introspect.FromDirectory(context.Background(), dir, runner.Options{})
	if err != nil {
		t.Fatal(err)
	}

	var mermaid strings.Builder
	generateMermaid(&mermaid, tables)
	for _, want := range []string{
		"erDiagram",
		`string name "required"`,
		"record_person owner",
		"pet |o--o| person : owner",
		"pet |o--o{ pet : friends",
	} {
		if !strings.Contains(mermaid.String(), want) {
			t.Errorf("mermaid output missing %q:\n%s", want, mermaid.String())
		}
	}

	var uml strings.Builder
	generatePlantUML(&uml, tables)
	for _, want := range []string{"@startuml", "entity person {", "* name : string", "pet }o--|| person : owner", "@enduml"} {
		if !strings.Contains(uml.String(), want) {
			t.Errorf("plantuml output missing %q:\n%s", want, uml.String())
		}
	}
}

func TestCheckBackendHealth(t *testing.T) {
	for _, spec := range []string{"memory", "sqlite"} {
		backend, err := checkBackendHealth(context.Background(), spec)
		if err != nil {
			t.Fatalf("checkBackendHealth(%s) error = %v", spec, err)
		}
		if backend != spec {
			t.Errorf("backend = %q, want %q", backend, spec)
		}
	}
	if _, err := checkBackendHealth(context.Background(), "redis://localhost"); err == nil {
		t.Error("checkBackendHealth() accepted an unknown backend")
	}
}

func TestPrintHealth(t *testing.T) {
	var out bytes.Buffer
	printHealth(&out, database.BackendSQLite, 3*time.Millisecond)
	want := fmt.Sprintf("✅ sqlite (%s driver) backend is healthy", database.SQLiteDriver())
	if !strings.Contains(out.String(), want) {
		t.Errorf("output = %q, want it to contain %q", out.String(), want)
	}

	out.Reset()
	printHealth(&out, database.BackendMemory, time.Millisecond)
	if strings.Contains(out.String(), "driver") {
		t.Errorf("memory backend output mentions a driver: %q", out.String())
	}
}

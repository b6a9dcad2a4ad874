package validator

import (
	"testing"

	"github.com/ridoystarlord/blackbird/schema"
	"github.com/ridoystarlord/blackbird/surql"
)

func mustTable(t *testing.T, script string) schema.TableSchema {
	t.Helper()
	stmts, err := surql.Parse(script)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	var ts schema.TableSchema
	for _, stmt := range stmts {
		switch s := stmt.(type) {
		case *surql.DefineTable:
			ts.Name = s.Name
			ts.Definition = s
			ts.Introspected = true
		case *surql.DefineField:
			ts.Fields = append(ts.Fields, schema.NewField(s))
		}
	}
	return ts
}

func types(list []ValidationError) []string {
	out := make([]string, len(list))
	for i, e := range list {
		out[i] = e.Type
	}
	return out
}

func contains(list []ValidationError, kind string) bool {
	for _, e := range list {
		if e.Type == kind {
			return true
		}
	}
	return false
}

func TestValidateSchemasValid(t *testing.T) {
	tables := []schema.TableSchema{mustTable(t, `
		DEFINE TABLE person SCHEMAFULL;
		DEFINE FIELD name ON person TYPE string;
		DEFINE FIELD age ON person TYPE int ASSERT $value != NONE;
	`)}
	result := ValidateSchemas(tables)
	if !result.Valid {
		t.Fatalf("errors = %v", types(result.Errors))
	}
	if len(result.Warnings) != 0 || len(result.Info) != 0 {
		t.Errorf("warnings = %v, info = %v", types(result.Warnings), types(result.Info))
	}
	if err := result.Err(); err != nil {
		t.Errorf("Err() = %v", err)
	}
}

func TestValidateSchemasFindings(t *testing.T) {
	tests := []struct {
		name     string
		script   string
		severity string
		kind     string
	}{
		{
			name:     "untyped field",
			script:   "DEFINE TABLE person SCHEMAFULL; DEFINE FIELD meta ON person;",
			severity: "error",
			kind:     "untyped_field",
		},
		{
			name:     "unsupported type",
			script:   "DEFINE TABLE person SCHEMAFULL; DEFINE FIELD born ON person TYPE datetime;",
			severity: "error",
			kind:     "unsupported_type",
		},
		{
			name:     "field collision",
			script:   "DEFINE TABLE person SCHEMAFULL; DEFINE FIELD user_name ON person TYPE string; DEFINE FIELD userName ON person TYPE string;",
			severity: "error",
			kind:     "field_collision",
		},
		{
			name:     "field named like the TableName method",
			script:   "DEFINE TABLE audit SCHEMAFULL; DEFINE FIELD table_name ON audit TYPE string;",
			severity: "error",
			kind:     "reserved_field",
		},
		{
			name:     "empty table",
			script:   "DEFINE TABLE audit SCHEMAFULL;",
			severity: "warning",
			kind:     "no_fields",
		},
		{
			name:     "schemaless table",
			script:   "DEFINE TABLE note SCHEMALESS; DEFINE FIELD body ON note TYPE string;",
			severity: "info",
			kind:     "schemaless",
		},
		{
			name:     "assertion that allows NONE",
			script:   "DEFINE TABLE person SCHEMAFULL; DEFINE FIELD age ON person TYPE int ASSERT $value > 0;",
			severity: "info",
			kind:     "nullable_assert",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateSchemas([]schema.TableSchema{mustTable(t, tt.script)})
			var list []ValidationError
			switch tt.severity {
			case "error":
				list = result.Errors
			case "warning":
				list = result.Warnings
			case "info":
				list = result.Info
			}
			if !contains(list, tt.kind) {
				t.Fatalf("%s findings %v do not include %s", tt.severity, types(list), tt.kind)
			}
			if wantValid := tt.severity != "error"; result.Valid != wantValid {
				t.Errorf("Valid = %v, want %v", result.Valid, wantValid)
			}
			if (result.Err() == nil) != result.Valid {
				t.Errorf("Err() = %v with Valid = %v", result.Err(), result.Valid)
			}
		})
	}
}

func TestValidateSchemasIncomplete(t *testing.T) {
	result := ValidateSchemas([]schema.TableSchema{{Name: "person"}})
	if result.Valid || !contains(result.Errors, "incomplete_table") {
		t.Errorf("errors = %v", types(result.Errors))
	}
}

func TestValidateSchemasTypeCollision(t *testing.T) {
	result := ValidateSchemas([]schema.TableSchema{
		mustTable(t, "DEFINE TABLE user_account SCHEMAFULL;"),
		mustTable(t, "DEFINE TABLE userAccount SCHEMAFULL;"),
	})
	if !contains(result.Warnings, "type_collision") {
		t.Errorf("warnings = %v", types(result.Warnings))
	}
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"person", false},
		{"user_id", false},
		{"2fa", false},
		{"", true},
		{"___", true},
	}
	for _, tt := range tests {
		err := validateName("field", tt.name)
		if (err != nil) != tt.wantErr {
			t.Errorf("validateName(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
		}
	}
}

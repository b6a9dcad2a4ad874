package schema

import (
	"testing"

	"github.com/ridoystarlord/blackbird/surql"
)

func parseField(t *testing.T, text string) *surql.DefineField {
	t.Helper()
	stmts, err := surql.Parse(text)
	if err != nil {
		t.Fatalf("Parse(%q) error = %v", text, err)
	}
	fd, ok := stmts[0].(*surql.DefineField)
	if !ok {
		t.Fatalf("statement is %T, want *surql.DefineField", stmts[0])
	}
	return fd
}

func TestIsNullable(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"no assertion", "DEFINE FIELD name ON person TYPE string", true},
		{"value not none", "DEFINE FIELD name ON person TYPE string ASSERT $value != NONE", false},
		{"none not value", "DEFINE FIELD name ON person TYPE string ASSERT NONE != $value", false},
		{"is not none", "DEFINE FIELD name ON person TYPE string ASSERT $value IS NOT NONE", false},
		{"none not none", "DEFINE FIELD name ON person ASSERT NONE != NONE", true},
		{"value equals none", "DEFINE FIELD name ON person ASSERT $value = NONE", true},
		{"not null is not none", "DEFINE FIELD name ON person ASSERT $value != NULL", true},
		{"other comparison", "DEFINE FIELD age ON person TYPE int ASSERT $value > 0", true},
		{"combined with and", "DEFINE FIELD name ON person ASSERT $value != NONE AND $value != ''", true},
		{"function assertion", "DEFINE FIELD email ON person ASSERT string::is::email($value)", true},
		{"parenthesised", "DEFINE FIELD name ON person ASSERT ($value != NONE)", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNullable(parseField(t, tt.text)); got != tt.want {
				t.Errorf("IsNullable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsNullableNil(t *testing.T) {
	if !IsNullable(nil) {
		t.Error("IsNullable(nil) = false, want true")
	}
}

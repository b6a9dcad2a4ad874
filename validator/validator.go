package validator

import (
	"errors"
	"fmt"
	"go/token"
	"sort"

	"github.com/ridoystarlord/blackbird/generator"
	"github.com/ridoystarlord/blackbird/schema"
)

// ValidationError represents a validation finding with details
type ValidationError struct {
	Type     string `json:"type"`
	Table    string `json:"table,omitempty"`
	Field    string `json:"field,omitempty"`
	Message  string `json:"message"`
	Severity string `json:"severity"` // "error", "warning", "info"
}

// ValidationResult contains all validation results
type ValidationResult struct {
	Valid    bool              `json:"valid"`
	Errors   []ValidationError `json:"errors"`
	Warnings []ValidationError `json:"warnings"`
	Info     []ValidationError `json:"info"`
}

func (r *ValidationResult) addError(kind, table, field, msg string) {
	r.Errors = append(r.Errors, ValidationError{Type: kind, Table: table, Field: field, Message: msg, Severity: "error"})
}

func (r *ValidationResult) addWarning(kind, table, field, msg string) {
	r.Warnings = append(r.Warnings, ValidationError{Type: kind, Table: table, Field: field, Message: msg, Severity: "warning"})
}

func (r *ValidationResult) addInfo(kind, table, field, msg string) {
	r.Info = append(r.Info, ValidationError{Type: kind, Table: table, Field: field, Message: msg, Severity: "info"})
}

// ValidateSchemas checks that every table can be turned into a Go record
// type. It never fails; findings are collected in the result.
func ValidateSchemas(tables []schema.TableSchema) *ValidationResult {
	result := &ValidationResult{
		Valid:    true,
		Errors:   []ValidationError{},
		Warnings: []ValidationError{},
		Info:     []ValidationError{},
	}

	for _, table := range tables {
		validateTable(table, result)
	}
	validateTypeNames(tables, result)

	result.Valid = len(result.Errors) == 0
	return result
}

func validateTable(table schema.TableSchema, result *ValidationResult) {
	if err := validateName("table", table.Name); err != nil {
		result.addError("table_name", table.Name, "", err.Error())
	}

	if !table.Introspected {
		result.addError("incomplete_table", table.Name, "",
			fmt.Sprintf("Table '%s' was never introspected", table.Name))
		return
	}

	if table.Definition != nil && !table.Definition.Schemafull {
		result.addInfo("schemaless", table.Name, "",
			fmt.Sprintf("Table '%s' is schemaless; only declared fields are generated", table.Name))
	}

	if len(table.Fields) == 0 {
		result.addWarning("no_fields", table.Name, "",
			fmt.Sprintf("Table '%s' has no fields; its record type will be empty", table.Name))
		return
	}

	goNames := make(map[string][]string)
	for _, field := range table.Fields {
		if err := validateName("field", field.Name); err != nil {
			result.addError("field_name", table.Name, field.Name, err.Error())
		}

		switch {
		case field.Kind == nil:
			result.addError("untyped_field", table.Name, field.Name,
				fmt.Sprintf("Field '%s' has no TYPE clause", field.Name))
		default:
			if _, ok := generator.MapKind(*field.Kind); !ok {
				result.addError("unsupported_type", table.Name, field.Name,
					fmt.Sprintf("Field '%s' has type %s, which has no Go mapping", field.Name, field.Kind))
			}
		}

		if field.Nullable && field.Assert != nil {
			result.addInfo("nullable_assert", table.Name, field.Name,
				fmt.Sprintf("Field '%s' has an assertion that does not exclude NONE; it is generated as optional", field.Name))
		}

		name := generator.ToPascalCase(field.Name)
		if name == generator.ReservedFieldName {
			result.addError("reserved_field", table.Name, field.Name,
				fmt.Sprintf("Field '%s' maps to Go field %s, which clashes with the generated %s method", field.Name, name, name))
		}
		goNames[name] = append(goNames[name], field.Name)
	}

	for _, name := range sortedKeys(goNames) {
		if fields := goNames[name]; len(fields) > 1 {
			result.addError("field_collision", table.Name, fields[0],
				fmt.Sprintf("Fields %v all map to Go field %s", fields, name))
		}
	}
}

// validateTypeNames reports tables whose default type names collide, since
// they cannot be generated into the same package.
func validateTypeNames(tables []schema.TableSchema, result *ValidationResult) {
	typeNames := make(map[string][]string)
	for _, table := range tables {
		name := generator.ToPascalCase(table.Name)
		typeNames[name] = append(typeNames[name], table.Name)
	}
	for _, name := range sortedKeys(typeNames) {
		if names := typeNames[name]; len(names) > 1 {
			result.addWarning("type_collision", names[0], "",
				fmt.Sprintf("Tables %v all map to type %s; use --type to rename one", names, name))
		}
	}
}

// validateName checks that a table or field name yields a usable Go
// identifier.
func validateName(what, name string) error {
	if name == "" {
		return fmt.Errorf("%s name cannot be empty", what)
	}
	goName := generator.ToPascalCase(name)
	if goName == "" {
		return fmt.Errorf("%s name '%s' has no letters or digits to build a Go name from", what, name)
	}
	if !token.IsIdentifier(goName) {
		return fmt.Errorf("%s name '%s' maps to '%s', which is not a valid Go identifier", what, name, goName)
	}
	return nil
}

// Err summarizes the errors of an invalid result, or returns nil.
func (r *ValidationResult) Err() error {
	if r.Valid {
		return nil
	}
	errs := make([]error, len(r.Errors))
	for i, e := range r.Errors {
		errs[i] = errors.New(e.Message)
	}
	return errors.Join(errs...)
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/ridoystarlord/blackbird/validator"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that every table can be generated",
	Long: `Apply the migrations to a throwaway database and check the resulting
schema for problems that would stop code generation.

Errors:   fields without a type, types with no Go mapping, fields whose Go
          names collide, names that cannot become Go identifiers
Warnings: tables without fields, tables whose Go type names collide
Info:     schemaless tables, assertions that still allow NONE

Examples:
  blackbird check                    # Colored report
  blackbird check --format json      # JSON report
  blackbird check --timeout 10s      # Give up after 10 seconds
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), checkTimeout)
		defer cancel()

		tables, err := deriveSchema(ctx)
		if err != nil {
			return fmt.Errorf("schema check failed: %w", err)
		}
		result := validator.ValidateSchemas(tables)

		w := cmd.OutOrStdout()
		if checkFormat == "json" {
			err = outputJSON(w, result)
		} else {
			err = outputText(w, result)
		}
		if err != nil {
			return err
		}
		if !result.Valid {
			return fmt.Errorf("schema has %d error(s)", len(result.Errors))
		}
		return nil
	},
}

var (
	checkTimeout time.Duration
	checkFormat  string
)

func init() {
	checkCmd.Flags().DurationVarP(&checkTimeout, "timeout", "t", 30*time.Second, "Timeout for deriving the schema")
	checkCmd.Flags().StringVarP(&checkFormat, "format", "f", "text", "Output format (text, json)")
}

func outputJSON(w io.Writer, result *validator.ValidationResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

func outputText(w io.Writer, result *validator.ValidationResult) error {
	if result.Valid {
		fmt.Fprintln(w, color.GreenString("✅ Schema check passed!"))
	} else {
		fmt.Fprintln(w, color.RedString("❌ Schema check failed!"))
	}

	printFindings(w, "🔴 Errors", result.Errors)
	printFindings(w, "🟡 Warnings", result.Warnings)
	printFindings(w, "🔵 Info", result.Info)

	fmt.Fprintf(w, "\n📊 Summary:\n")
	fmt.Fprintf(w, "  • Errors: %d\n", len(result.Errors))
	fmt.Fprintf(w, "  • Warnings: %d\n", len(result.Warnings))
	fmt.Fprintf(w, "  • Info: %d\n", len(result.Info))

	if result.Valid {
		fmt.Fprintf(w, "\n🎉 Every table is ready for code generation!\n")
	} else {
		fmt.Fprintf(w, "\n💡 Fix the errors above before generating code.\n")
	}
	return nil
}

func printFindings(w io.Writer, title string, findings []validator.ValidationError) {
	if len(findings) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s (%d):\n", title, len(findings))
	for i, f := range findings {
		fmt.Fprintf(w, "  %d. ", i+1)
		if f.Table != "" {
			fmt.Fprintf(w, "[%s]", f.Table)
		}
		if f.Field != "" {
			fmt.Fprintf(w, ".%s", f.Field)
		}
		fmt.Fprintf(w, ": %s\n", f.Message)
	}
}

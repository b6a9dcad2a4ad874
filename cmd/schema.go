package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/ridoystarlord/blackbird/generator"
	"github.com/ridoystarlord/blackbird/schema"
	"github.com/spf13/cobra"
)

var schemaFormat string

var schemaCmd = &cobra.Command{
	Use:   "schema [table...]",
	Short: "Print the schema produced by the migrations",
	Long: `Apply all migrations to a throwaway database and print the tables and
fields it ends up with.

Examples:
  blackbird schema                    # All tables as SurrealQL definitions
  blackbird schema person             # Only the person table
  blackbird schema --format json      # Machine-readable output
  blackbird schema --format markdown  # Documentation tables
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		tables, err := deriveSchema(cmd.Context())
		if err != nil {
			return fmt.Errorf("deriving schema: %w", err)
		}
		tables, err = selectTables(tables, args)
		if err != nil {
			return err
		}
		return writeSchema(cmd.OutOrStdout(), tables, schemaFormat)
	},
}

func init() {
	schemaCmd.Flags().StringVarP(&schemaFormat, "format", "f", "text", "Output format (text, json, markdown)")
}

func selectTables(tables []schema.TableSchema, names []string) ([]schema.TableSchema, error) {
	if len(names) == 0 {
		return tables, nil
	}
	selected := make([]schema.TableSchema, 0, len(names))
	for _, name := range names {
		t, err := generator.Lookup(name, tables)
		if err != nil {
			return nil, err
		}
		selected = append(selected, *t)
	}
	return selected, nil
}

type tableDoc struct {
	Name       string     `json:"name"`
	Schemafull bool       `json:"schemafull"`
	Definition string     `json:"definition"`
	Fields     []fieldDoc `json:"fields"`
}

type fieldDoc struct {
	Name       string `json:"name"`
	Type       string `json:"type,omitempty"`
	Nullable   bool   `json:"nullable"`
	Assert     string `json:"assert,omitempty"`
	Definition string `json:"definition"`
}

func documentTables(tables []schema.TableSchema) []tableDoc {
	docs := make([]tableDoc, 0, len(tables))
	for _, t := range tables {
		doc := tableDoc{Name: t.Name, Fields: []fieldDoc{}}
		if t.Definition != nil {
			doc.Schemafull = t.Definition.Schemafull
			doc.Definition = t.Definition.String()
		}
		for _, f := range t.Fields {
			fd := fieldDoc{Name: f.Name, Type: f.KindString(), Nullable: f.Nullable}
			if f.Assert != nil {
				fd.Assert = f.Assert.String()
			}
			if f.Definition != nil {
				fd.Definition = f.Definition.String()
			}
			doc.Fields = append(doc.Fields, fd)
		}
		docs = append(docs, doc)
	}
	return docs
}

func writeSchema(w io.Writer, tables []schema.TableSchema, format string) error {
	switch strings.ToLower(format) {
	case "text", "":
		_, err := io.WriteString(w, schema.Render(tables))
		return err
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(documentTables(tables))
	case "markdown", "md":
		return writeMarkdown(w, documentTables(tables))
	}
	return fmt.Errorf("unknown format %q (use text, json or markdown)", format)
}

func writeMarkdown(w io.Writer, docs []tableDoc) error {
	var b strings.Builder
	for i, t := range docs {
		if i > 0 {
			b.WriteString("\n")
		}
		mode := "schemaless"
		if t.Schemafull {
			mode = "schemafull"
		}
		fmt.Fprintf(&b, "## %s\n\n_%s_\n\n", t.Name, mode)
		if len(t.Fields) == 0 {
			b.WriteString("No fields.\n")
			continue
		}
		b.WriteString("| Field | Type | Nullable | Assert |\n")
		b.WriteString("|---|---|---|---|\n")
		for _, f := range t.Fields {
			fmt.Fprintf(&b, "| %s | %s | %s | %s |\n",
				f.Name, orDash(f.Type), yesNo(f.Nullable), orDash(strings.ReplaceAll(f.Assert, "|", `\|`)))
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return "`" + s + "`"
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ridoystarlord/blackbird/schema"
	"github.com/ridoystarlord/blackbird/surql"
	"github.com/spf13/cobra"
)

var (
	docsFormat string
	docsOutput string
)

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Generate ERD diagrams from the schema",
	Long: `Generate entity relationship diagrams from the schema your migrations
produce. Fields of type record<table> become relationships.

Supported formats:
  - mermaid: Mermaid ERD diagram
  - plantuml: PlantUML ERD diagram

Examples:
  blackbird docs                                 # Mermaid to stdout
  blackbird docs --format plantuml -o erd.puml   # PlantUML file
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		tables, err := deriveSchema(cmd.Context())
		if err != nil {
			return fmt.Errorf("deriving schema: %w", err)
		}
		if len(tables) == 0 {
			return fmt.Errorf("no tables found in %s", cfg.Migrations)
		}

		var b strings.Builder
		switch docsFormat {
		case "mermaid":
			generateMermaid(&b, tables)
		case "plantuml":
			generatePlantUML(&b, tables)
		default:
			return fmt.Errorf("unsupported format %q (use mermaid or plantuml)", docsFormat)
		}

		if docsOutput == "" || docsOutput == "-" {
			_, err := io.WriteString(cmd.OutOrStdout(), b.String())
			return err
		}
		if err := os.WriteFile(docsOutput, []byte(b.String()), 0644); err != nil {
			return fmt.Errorf("writing %s: %w", docsOutput, err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "✅ Generated %s diagram in %s\n", docsFormat, docsOutput)
		return nil
	},
}

func init() {
	docsCmd.Flags().StringVarP(&docsFormat, "format", "f", "mermaid", "Diagram format (mermaid, plantuml)")
	docsCmd.Flags().StringVarP(&docsOutput, "output", "o", "", "Output file (default stdout)")
}

type relation struct {
	From, To, Field string
	Many, Optional  bool
}

// relations finds record<...> fields, including arrays of records.
func relations(tables []schema.TableSchema) []relation {
	var rels []relation
	for _, t := range tables {
		for _, f := range t.Fields {
			if f.Kind == nil {
				continue
			}
			kind, many := *f.Kind, false
			if kind.Name == surql.KindArray && len(kind.Args) > 0 {
				kind, many = kind.Args[0], true
			}
			if kind.Name != surql.KindRecord {
				continue
			}
			for _, target := range kind.Ident {
				rels = append(rels, relation{From: t.Name, To: target, Field: f.Name, Many: many, Optional: f.Nullable})
			}
		}
	}
	return rels
}

func diagramType(f schema.FieldSchema) string {
	if f.Kind == nil {
		return "any"
	}
	// Diagram syntaxes do not allow spaces or angle brackets in types.
	r := strings.NewReplacer("<", "_", ">", "", " | ", "_or_", ", ", "_", " ", "")
	return r.Replace(f.Kind.String())
}

func generateMermaid(b *strings.Builder, tables []schema.TableSchema) {
	b.WriteString("erDiagram\n")
	for _, t := range tables {
		fmt.Fprintf(b, "    %s {\n", t.Name)
		for _, f := range t.Fields {
			comment := ""
			if !f.Nullable {
				comment = ` "required"`
			}
			fmt.Fprintf(b, "        %s %s%s\n", diagramType(f), f.Name, comment)
		}
		b.WriteString("    }\n")
	}
	for _, r := range relations(tables) {
		left := "||"
		if r.Optional {
			left = "|o"
		}
		right := "o|"
		if r.Many {
			right = "o{"
		}
		fmt.Fprintf(b, "    %s %s--%s %s : %s\n", r.From, left, right, r.To, r.Field)
	}
}

func generatePlantUML(b *strings.Builder, tables []schema.TableSchema) {
	b.WriteString("@startuml\n")
	for _, t := range tables {
		fmt.Fprintf(b, "entity %s {\n", t.Name)
		for _, f := range t.Fields {
			marker := ""
			if !f.Nullable {
				marker = "* "
			}
			fmt.Fprintf(b, "  %s%s : %s\n", marker, f.Name, diagramType(f))
		}
		b.WriteString("}\n")
	}
	for _, r := range relations(tables) {
		arrow := "}o--||"
		if r.Many {
			arrow = "}o--o{"
		}
		fmt.Fprintf(b, "%s %s %s : %s\n", r.From, arrow, r.To, r.Field)
	}
	b.WriteString("@enduml\n")
}

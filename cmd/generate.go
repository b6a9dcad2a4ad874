package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/ridoystarlord/blackbird/config"
	"github.com/ridoystarlord/blackbird/generator"
	"github.com/ridoystarlord/blackbird/logging"
	"github.com/ridoystarlord/blackbird/schema"
	"github.com/spf13/cobra"
)

var (
	outputFile  string
	packageName string
	typeName    string
)

func init() {
	generateCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file, - for stdout (default from config)")
	generateCmd.Flags().StringVarP(&packageName, "package", "p", "", "Package name for generated code (default from config)")
	generateCmd.Flags().StringVar(&typeName, "type", "", "Go type name, only with a single table")
}

var generateCmd = &cobra.Command{
	Use:   "generate [table...]",
	Short: "Generate Go record types for tables",
	Long: `Generate Go structs whose fields match the fields your migrations define.
Fields without an assertion excluding NONE become pointers.

Tables come from the arguments, then from the tables list in blackbird.yaml,
and otherwise every table is generated.

Examples:
  blackbird generate person                 # Person struct in models/schema_gen.go
  blackbird generate person --type User     # Custom type name
  blackbird generate -o - -p entities       # All tables to stdout

  //go:generate blackbird generate person -o person_gen.go -p models
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		output := cfg.Output
		if cmd.Flags().Changed("output") {
			output = outputFile
		}
		pkg := cfg.Package
		if cmd.Flags().Changed("package") {
			pkg = packageName
		}

		tables, err := deriveSchema(cmd.Context())
		if err != nil {
			return fmt.Errorf("deriving schema: %w", err)
		}
		targets, err := generateTargets(args, cfg.Tables, tables, typeName)
		if err != nil {
			return err
		}

		records := make([]*generator.RecordType, 0, len(targets))
		typeNames := make(map[string]string)
		for _, target := range targets {
			var opts []generator.Option
			if target.Type != "" {
				opts = append(opts, generator.WithTypeName(target.Type))
			}
			rec, err := generator.Generate(target.Name, tables, opts...)
			if err != nil {
				return err
			}
			if prev, ok := typeNames[rec.TypeName]; ok {
				return fmt.Errorf("tables %s and %s both generate type %s", prev, rec.TableName, rec.TypeName)
			}
			typeNames[rec.TypeName] = rec.TableName
			records = append(records, rec)
		}

		var buf bytes.Buffer
		if err := generator.Render(&buf, generator.File{Package: pkg, Source: cfg.Migrations, Records: records}); err != nil {
			return err
		}

		if output == "-" {
			_, err := cmd.OutOrStdout().Write(buf.Bytes())
			return err
		}
		if dir := filepath.Dir(output); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("creating output directory: %w", err)
			}
		}
		if err := os.WriteFile(output, buf.Bytes(), 0644); err != nil {
			return fmt.Errorf("writing %s: %w", output, err)
		}
		logging.FromContext(cmd.Context()).Debug("generated record types", "output", output, "records", len(records))

		green := color.New(color.FgGreen).SprintFunc()
		fmt.Fprintf(cmd.ErrOrStderr(), "%s Generated %d record type(s) in %s\n", green("✅"), len(records), output)
		return nil
	},
}

// generateTargets decides which tables to generate and under which names.
func generateTargets(args []string, configured []config.TableConfig, tables []schema.TableSchema, typeOverride string) ([]config.TableConfig, error) {
	var targets []config.TableConfig
	switch {
	case len(args) > 0:
		for _, name := range args {
			targets = append(targets, config.TableConfig{Name: name})
		}
	case len(configured) > 0:
		targets = append(targets, configured...)
	default:
		for _, t := range tables {
			targets = append(targets, config.TableConfig{Name: t.Name})
		}
	}
	if len(targets) == 0 {
		return nil, errors.New("no tables to generate: the migrations define none")
	}
	if typeOverride != "" {
		if len(targets) != 1 {
			return nil, fmt.Errorf("--type needs exactly one table, got %d", len(targets))
		}
		targets[0].Type = typeOverride
	}
	return targets, nil
}

package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ridoystarlord/blackbird/config"
	"github.com/spf13/cobra"
)

var initDir string

const initConfig = `# blackbird configuration. Environment variables override these values:
# BLACKBIRD_MIGRATIONS, BLACKBIRD_BACKEND (or DATABASE_URL),
# BLACKBIRD_LOG_LEVEL and BLACKBIRD_LOG_FORMAT.
migrations: migrations
backend: memory
package: models
output: models/schema_gen.go
tables:
  - name: person
    type: Person
log_level: warn
`

const initMigration = `-- Fields without an ASSERT excluding NONE are generated as pointers.
DEFINE TABLE person SCHEMAFULL;
DEFINE FIELD name ON person TYPE string;
DEFINE FIELD username ON person TYPE string ASSERT $value != NONE;
`

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new blackbird project",
	Long: `Create blackbird.yaml and a first migration in the current directory.

Examples:
  blackbird init              # Scaffold in the current directory
  blackbird init --dir app    # Scaffold in ./app
`,
	// init must work before any configuration exists.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		return scaffold(cmd.OutOrStdout(), initDir)
	},
}

func init() {
	initCmd.Flags().StringVar(&initDir, "dir", ".", "Project directory")
}

func scaffold(w io.Writer, dir string) error {
	configPath := filepath.Join(dir, config.DefaultFile)
	migrationPath := filepath.Join(dir, "migrations", "1_create_person.surql")

	for _, path := range []string{configPath, migrationPath} {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists", path)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(migrationPath), 0755); err != nil {
		return fmt.Errorf("creating migrations directory: %w", err)
	}
	if err := os.WriteFile(configPath, []byte(initConfig), 0644); err != nil {
		return fmt.Errorf("creating %s: %w", configPath, err)
	}
	if err := os.WriteFile(migrationPath, []byte(initMigration), 0644); err != nil {
		return fmt.Errorf("creating %s: %w", migrationPath, err)
	}

	fmt.Fprintln(w, "✅ Created", configPath)
	fmt.Fprintln(w, "✅ Created", migrationPath)
	fmt.Fprintln(w, "📝 Add migrations to define your tables")
	fmt.Fprintln(w, "🚀 Run 'blackbird generate' to create Go types from them")
	return nil
}

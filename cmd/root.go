package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/ridoystarlord/blackbird/cache"
	"github.com/ridoystarlord/blackbird/config"
	"github.com/ridoystarlord/blackbird/introspect"
	"github.com/ridoystarlord/blackbird/logging"
	"github.com/ridoystarlord/blackbird/schema"
	"github.com/ridoystarlord/blackbird/utils"
	"github.com/spf13/cobra"
)

var (
	cfgFile       string
	migrationsDir string
	backendSpec   string
	logLevel      string

	cfg         config.Config
	schemaCache = cache.New()
)

var rootCmd = &cobra.Command{
	Use:   "blackbird",
	Short: "Generate Go record types from SurrealQL migrations",
	Long: `blackbird applies your migrations to a throwaway database, reads the
resulting schema back and generates Go types for your tables.

Examples:

  blackbird init
  blackbird schema
  blackbird generate person
  blackbird check
`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

// Execute runs the CLI
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "❌", diagnostic(err))
		os.Exit(1)
	}
}

// Register subcommands
func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default blackbird.yaml when present)")
	rootCmd.PersistentFlags().StringVarP(&migrationsDir, "migrations", "m", "", "Migrations directory")
	rootCmd.PersistentFlags().StringVar(&backendSpec, "backend", "", "Storage backend: memory, sqlite, sqlite://path, postgres://..., mysql://...")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(docsCmd)
	rootCmd.AddCommand(healthCmd)
}

// setup loads the configuration, applies flag overrides and attaches a
// logger to the command context.
func setup(cmd *cobra.Command, args []string) error {
	if _, err := utils.LoadEnv(); err != nil {
		return fmt.Errorf("loading .env: %w", err)
	}
	loaded, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("migrations") {
		loaded.Migrations = migrationsDir
	}
	if flags.Changed("backend") {
		loaded.Backend = backendSpec
	}
	if flags.Changed("log-level") {
		loaded.LogLevel = logLevel
	}
	if err := loaded.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	cfg = loaded

	logger := logging.New(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(logging.ContextWithLogger(ctx, logger))
	return nil
}

// deriveSchema returns the schema of the configured migrations directory,
// computing it at most once per process.
func deriveSchema(ctx context.Context) ([]schema.TableSchema, error) {
	return schemaCache.GetOrCompute(ctx, cfg.Migrations, introspectDir)
}

// introspectDir is the cache.ComputeFunc behind every derivation.
func introspectDir(ctx context.Context, dir string) ([]schema.TableSchema, error) {
	return introspect.FromDirectory(ctx, dir, cfg.Options(), cfg.Extensions...)
}

// diagnostic prefixes err with the go:generate request site when running
// under go generate.
func diagnostic(err error) string {
	file, line := os.Getenv("GOFILE"), os.Getenv("GOLINE")
	if file == "" || line == "" {
		return err.Error()
	}
	return fmt.Sprintf("%s:%s: %v", file, line, err)
}

package cmd

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/ridoystarlord/blackbird/database"
	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the storage backend is usable",
	Long: `Open a store on the configured backend, write, read and delete a probe
key, and drop the store again. Use it to check a postgres or mysql backend
before deriving schemas with it.

Examples:
  blackbird health                                  # Check the configured backend
  blackbird health --backend postgres://localhost/db
  blackbird health --timeout 10s                    # Set custom timeout
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), healthTimeout)
		defer cancel()

		start := time.Now()
		backend, err := checkBackendHealth(ctx, cfg.Backend)
		if err != nil {
			return fmt.Errorf("backend health check failed: %w", err)
		}
		printHealth(cmd.OutOrStdout(), backend, time.Since(start))
		return nil
	},
}

var healthTimeout time.Duration

func init() {
	healthCmd.Flags().DurationVarP(&healthTimeout, "timeout", "t", 5*time.Second, "Timeout for health check")
}

func checkBackendHealth(ctx context.Context, spec string) (backend string, err error) {
	store, err := database.Open(ctx, spec)
	if err != nil {
		return "", err
	}
	defer func() {
		if cerr := store.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("closing store: %w", cerr)
		}
	}()

	tx, err := store.Begin(ctx, true)
	if err != nil {
		return "", fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Cancel(ctx)

	probe := []byte("ok")
	if err := tx.Set(ctx, "/health", probe); err != nil {
		return "", fmt.Errorf("writing probe: %w", err)
	}
	got, ok, err := tx.Get(ctx, "/health")
	if err != nil {
		return "", fmt.Errorf("reading probe: %w", err)
	}
	if !ok || !bytes.Equal(got, probe) {
		return "", fmt.Errorf("probe read back as %q", got)
	}
	if err := tx.Delete(ctx, "/health"); err != nil {
		return "", fmt.Errorf("deleting probe: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("committing: %w", err)
	}
	return store.Backend(), nil
}

func printHealth(w io.Writer, backend string, elapsed time.Duration) {
	if backend == database.BackendSQLite {
		backend = fmt.Sprintf("%s (%s driver)", backend, database.SQLiteDriver())
	}
	fmt.Fprintf(w, "✅ %s backend is healthy\n", backend)
	fmt.Fprintf(w, "📊 Probe round trip took %s\n", elapsed.Round(time.Millisecond))
}

package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/ridoystarlord/blackbird/loader"
	"github.com/ridoystarlord/blackbird/runner"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which migrations apply cleanly",
	Long: `Apply the migrations one file at a time to a throwaway database and list
which applied, which failed and which were never reached. Each file is shown
with its statement count and checksum.
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		report, err := migrationStatus(cmd.Context(), cfg.Migrations, cfg.Options(), cfg.Extensions...)
		if err != nil {
			return fmt.Errorf("status error: %w", err)
		}
		printStatus(cmd.OutOrStdout(), report)
		if report.Failed != nil {
			return fmt.Errorf("migration %s failed", report.Failed.Migration.Name)
		}
		return nil
	},
}

type failedMigration struct {
	Migration loader.Migration
	Err       error
}

type statusReport struct {
	Applied []loader.Migration
	Failed  *failedMigration
	Pending []loader.Migration
}

func migrationStatus(ctx context.Context, dir string, opts runner.Options, exts ...string) (*statusReport, error) {
	migrations, err := loader.LoadMigrations(dir, exts...)
	if err != nil {
		return nil, err
	}
	ds, sess, err := runner.Provision(ctx, opts)
	if err != nil {
		return nil, err
	}
	defer ds.Close()

	report := &statusReport{}
	for _, m := range migrations {
		if report.Failed != nil {
			report.Pending = append(report.Pending, m)
			continue
		}
		if err := runner.Apply(ctx, ds, sess, m.Statements); err != nil {
			report.Failed = &failedMigration{Migration: m, Err: err}
			continue
		}
		report.Applied = append(report.Applied, m)
	}
	return report, nil
}

func printStatus(w io.Writer, report *statusReport) {
	fmt.Fprintln(w, "✅ Applied migrations:")
	for _, m := range report.Applied {
		fmt.Fprintf(w, "   - %s (%d statements, %s)\n", m.Name, len(m.Statements), shortChecksum(m.Checksum))
	}

	if report.Failed != nil {
		fmt.Fprintln(w, color.RedString("\n❌ Failed migrations:"))
		fmt.Fprintf(w, "   - %s: %v\n", report.Failed.Migration.Name, report.Failed.Err)
	}

	fmt.Fprintln(w, "\n🕒 Pending migrations:")
	for _, m := range report.Pending {
		fmt.Fprintln(w, "   -", m.Name)
	}
}

func shortChecksum(sum string) string {
	if len(sum) > 12 {
		return sum[:12]
	}
	return sum
}

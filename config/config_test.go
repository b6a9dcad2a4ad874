package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"BLACKBIRD_MIGRATIONS", "BLACKBIRD_BACKEND", "DATABASE_URL", "BLACKBIRD_LOG_LEVEL", "BLACKBIRD_LOG_FORMAT"} {
		t.Setenv(key, "")
	}
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "blackbird.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	want := Default()
	if cfg.Migrations != want.Migrations || cfg.Backend != "memory" || cfg.Package != "models" {
		t.Errorf("Load() = %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, `
migrations: db/migrations
backend: sqlite
package: entities
tables:
  - name: person
    type: Person
  - name: pet
log_level: debug
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Migrations != "db/migrations" || cfg.Backend != "sqlite" || cfg.Package != "entities" {
		t.Errorf("Load() = %+v", cfg)
	}
	if len(cfg.Tables) != 2 || cfg.Tables[0].Type != "Person" || cfg.Tables[1].Name != "pet" {
		t.Errorf("Tables = %+v", cfg.Tables)
	}
	// Unset keys keep their defaults.
	if cfg.Namespace != Default().Namespace || len(cfg.Extensions) != 2 {
		t.Errorf("defaults lost: %+v", cfg)
	}
	if opts := cfg.Options(); opts.Backend != "sqlite" || opts.Database != Default().Database {
		t.Errorf("Options() = %+v", opts)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "migrations: from-file\nbackend: memory\n")
	t.Setenv("BLACKBIRD_MIGRATIONS", "from-env")
	t.Setenv("DATABASE_URL", "postgres://localhost/app")
	t.Setenv("BLACKBIRD_LOG_FORMAT", "json")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Migrations != "from-env" || cfg.Backend != "postgres://localhost/app" || cfg.LogFormat != "json" {
		t.Errorf("Load() = %+v", cfg)
	}

	t.Setenv("BLACKBIRD_BACKEND", "sqlite")
	cfg, err = Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Backend != "sqlite" {
		t.Errorf("BLACKBIRD_BACKEND did not take precedence over DATABASE_URL: %s", cfg.Backend)
	}
}

func TestLoadErrors(t *testing.T) {
	clearEnv(t)
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load() of an explicit missing file succeeded")
	}
	if _, err := Load(writeFile(t, "tables: [oops")); err == nil {
		t.Error("Load() of malformed YAML succeeded")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		want   string
	}{
		{"empty migrations", func(c *Config) { c.Migrations = " " }, "migrations"},
		{"unknown backend", func(c *Config) { c.Backend = "redis://x" }, "backend"},
		{"bad extension", func(c *Config) { c.Extensions = []string{"surql"} }, "dot"},
		{"bad package", func(c *Config) { c.Package = "my-models" }, "package"},
		{"unnamed table", func(c *Config) { c.Tables = []TableConfig{{Type: "X"}} }, "name"},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }, "log level"},
		{"bad format", func(c *Config) { c.LogFormat = "xml" }, "log format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Validate() error = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ridoystarlord/blackbird/database"
	"github.com/ridoystarlord/blackbird/generator"
	"github.com/ridoystarlord/blackbird/loader"
	"github.com/ridoystarlord/blackbird/logging"
	"github.com/ridoystarlord/blackbird/runner"
	"github.com/ridoystarlord/blackbird/utils"
	"gopkg.in/yaml.v3"
)

// DefaultFile is read when no config path is given and it exists.
const DefaultFile = "blackbird.yaml"

// Config holds the project settings shared by all commands.
type Config struct {
	Migrations string        `yaml:"migrations"`
	Backend    string        `yaml:"backend"`
	Namespace  string        `yaml:"namespace"`
	Database   string        `yaml:"database"`
	Extensions []string      `yaml:"extensions"`
	Package    string        `yaml:"package"`
	Output     string        `yaml:"output"`
	Tables     []TableConfig `yaml:"tables"`
	LogLevel   string        `yaml:"log_level"`
	LogFormat  string        `yaml:"log_format"`
}

// TableConfig names a table to generate and, optionally, its Go type name.
type TableConfig struct {
	Name string `yaml:"name"`
	Type string `yaml:"type,omitempty"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Migrations: "migrations",
		Backend:    runner.DefaultBackend,
		Namespace:  runner.DefaultNamespace,
		Database:   runner.DefaultDatabase,
		Extensions: append([]string(nil), loader.DefaultExtensions...),
		Package:    "models",
		Output:     "models/schema_gen.go",
		LogLevel:   "warn",
		LogFormat:  "text",
	}
}

// Load builds the configuration from defaults, the YAML file at path and
// the environment, in that order. An empty path reads DefaultFile when it
// exists.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return Config{}, fmt.Errorf("reading %s: %w", path, err)
	}

	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Migrations = utils.GetEnv("BLACKBIRD_MIGRATIONS", cfg.Migrations)
	cfg.Backend = utils.GetEnv("BLACKBIRD_BACKEND", utils.GetEnv("DATABASE_URL", cfg.Backend))
	cfg.LogLevel = utils.GetEnv("BLACKBIRD_LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = utils.GetEnv("BLACKBIRD_LOG_FORMAT", cfg.LogFormat)
}

// Options returns the runner options for this configuration.
func (c Config) Options() runner.Options {
	return runner.Options{Backend: c.Backend, Namespace: c.Namespace, Database: c.Database}
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Migrations) == "" {
		errs = append(errs, errors.New("migrations directory must be set"))
	}
	if _, err := database.BackendOf(c.Backend); err != nil {
		errs = append(errs, err)
	}
	if c.Namespace == "" || c.Database == "" {
		errs = append(errs, errors.New("namespace and database must be set"))
	}
	for _, ext := range c.Extensions {
		if !strings.HasPrefix(ext, ".") {
			errs = append(errs, fmt.Errorf("extension %q must start with a dot", ext))
		}
	}
	if c.Package != "" && !generator.ValidPackageName(c.Package) {
		errs = append(errs, fmt.Errorf("invalid package name %q", c.Package))
	}
	for _, t := range c.Tables {
		if t.Name == "" {
			errs = append(errs, errors.New("table entries need a name"))
		}
	}
	if err := logging.ValidLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("invalid log format %q (use text or json)", c.LogFormat))
	}
	return errors.Join(errs...)
}

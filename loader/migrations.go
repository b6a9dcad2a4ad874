package loader

import (
	"encoding/hex"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/zeebo/blake3"

	"github.com/ridoystarlord/blackbird/schema"
	"github.com/ridoystarlord/blackbird/surql"
)

// DefaultExtensions are the file extensions treated as migrations.
var DefaultExtensions = []string{".surql", ".sql"}

// Migration is one parsed migration file.
type Migration struct {
	Name       string
	Path       string
	Checksum   string // hex BLAKE3 of the file contents
	Statements []surql.Statement
}

// MigrationFiles lists the migration files directly inside dir, ordered by
// full path. Subdirectories and files with other extensions are ignored.
func MigrationFiles(dir string, exts ...string) ([]string, error) {
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &schema.IOError{Op: "read directory", Path: dir, Err: err}
	}

	var files []string
	for _, e := range entries {
		if !e.Type().IsRegular() && e.Type()&os.ModeSymlink == 0 {
			continue
		}
		if !hasExtension(e.Name(), exts) {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if e.Type()&os.ModeSymlink != 0 {
			info, err := os.Stat(path)
			if err != nil {
				return nil, &schema.IOError{Op: "stat", Path: path, Err: err}
			}
			if !info.Mode().IsRegular() {
				continue
			}
		}
		files = append(files, path)
	}
	sort.Strings(files)
	return files, nil
}

func hasExtension(name string, exts []string) bool {
	ext := filepath.Ext(name)
	for _, want := range exts {
		if strings.EqualFold(ext, want) {
			return true
		}
	}
	return false
}

// LoadMigrations reads and parses every migration file in dir, in order.
// The first unreadable or unparsable file aborts the load.
func LoadMigrations(dir string, exts ...string) ([]Migration, error) {
	files, err := MigrationFiles(dir, exts...)
	if err != nil {
		return nil, err
	}

	migrations := make([]Migration, 0, len(files))
	for _, path := range files {
		m, err := LoadMigration(path)
		if err != nil {
			return nil, err
		}
		migrations = append(migrations, m)
	}
	return migrations, nil
}

// LoadMigration reads and parses a single migration file.
func LoadMigration(path string) (Migration, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Migration{}, &schema.IOError{Op: "read", Path: path, Err: err}
	}
	stmts, err := surql.Parse(string(content))
	if err != nil {
		return Migration{}, &schema.ParseError{Path: path, Err: err}
	}
	sum := blake3.Sum256(content)
	return Migration{
		Name:       filepath.Base(path),
		Path:       path,
		Checksum:   hex.EncodeToString(sum[:]),
		Statements: stmts,
	}, nil
}

// ReadMigrations returns the statements of every migration in dir,
// concatenated in file order.
func ReadMigrations(dir string, exts ...string) ([]surql.Statement, error) {
	migrations, err := LoadMigrations(dir, exts...)
	if err != nil {
		return nil, err
	}
	return Statements(migrations), nil
}

// Statements flattens migrations into one ordered statement list.
func Statements(migrations []Migration) []surql.Statement {
	var out []surql.Statement
	for _, m := range migrations {
		out = append(out, m.Statements...)
	}
	return out
}

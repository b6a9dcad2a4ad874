package utils

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// LoadEnv loads .env (or the given files) into the process environment
// without overriding variables that are already set. Missing files are not
// an error; it reports whether anything was loaded.
func LoadEnv(files ...string) (bool, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	var present []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			present = append(present, f)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return false, err
		}
	}
	if len(present) == 0 {
		return false, nil
	}
	if err := godotenv.Load(present...); err != nil {
		return false, err
	}
	return true, nil
}

// GetEnv returns the trimmed value of key, or fallback when it is unset or
// blank.
func GetEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

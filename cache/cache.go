// Package cache memoises derived schemas per migration directory.
package cache

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/ridoystarlord/blackbird/logging"
	"github.com/ridoystarlord/blackbird/schema"
)

// ComputeFunc derives the schema of the migration directory dir.
type ComputeFunc func(ctx context.Context, dir string) ([]schema.TableSchema, error)

// Stats counts cache activity.
type Stats struct {
	Hits     int64 `json:"hits"`
	Misses   int64 `json:"misses"`
	Computes int64 `json:"computes"`
	Entries  int   `json:"entries"`
}

// SchemaCache maps canonical directory paths to derived schemas. Entries
// are never evicted and failed derivations are never stored. Safe for
// concurrent use.
type SchemaCache struct {
	mu      sync.RWMutex
	entries map[string][]schema.TableSchema

	hits     atomic.Int64
	misses   atomic.Int64
	computes atomic.Int64
}

// New returns an empty cache.
func New() *SchemaCache {
	return &SchemaCache{entries: make(map[string][]schema.TableSchema)}
}

// Canonicalize returns the absolute, symlink-free form of path. A path that
// does not exist yet is returned in absolute form.
func Canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", &schema.IOError{Op: "resolve", Path: path, Err: err}
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return abs, nil
		}
		return "", &schema.IOError{Op: "resolve", Path: path, Err: err}
	}
	return resolved, nil
}

// Get returns a copy of the schema cached for path, if any.
func (c *SchemaCache) Get(path string) ([]schema.TableSchema, bool) {
	key, err := Canonicalize(path)
	if err != nil {
		return nil, false
	}
	return c.lookup(key)
}

func (c *SchemaCache) lookup(key string) ([]schema.TableSchema, bool) {
	c.mu.RLock()
	tables, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return schema.Clone(tables), true
}

// GetOrCompute returns the schema for path, computing and storing it on a
// miss. Concurrent misses for the same path may each compute; the last
// store wins and all results are equivalent. compute receives the
// canonical path.
func (c *SchemaCache) GetOrCompute(ctx context.Context, path string, compute ComputeFunc) ([]schema.TableSchema, error) {
	key, err := Canonicalize(path)
	if err != nil {
		return nil, err
	}
	logger := logging.FromContext(ctx)

	if tables, ok := c.lookup(key); ok {
		c.hits.Add(1)
		logger.Debug("schema cache hit", "dir", key)
		return tables, nil
	}
	c.misses.Add(1)

	c.computes.Add(1)
	tables, err := compute(ctx, key)
	if err != nil {
		return nil, err
	}
	if tables == nil {
		tables = []schema.TableSchema{}
	}

	c.mu.Lock()
	c.entries[key] = schema.Clone(tables)
	c.mu.Unlock()
	logger.Debug("schema cached", "dir", key, "tables", len(tables))

	return schema.Clone(tables), nil
}

// Len returns the number of cached directories.
func (c *SchemaCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats returns a snapshot of the cache counters.
func (c *SchemaCache) Stats() Stats {
	return Stats{
		Hits:     c.hits.Load(),
		Misses:   c.misses.Load(),
		Computes: c.computes.Load(),
		Entries:  c.Len(),
	}
}

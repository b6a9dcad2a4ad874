package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ridoystarlord/blackbird/database"
	"github.com/ridoystarlord/blackbird/logging"
	"github.com/ridoystarlord/blackbird/surql"
)

var (
	ErrClosed            = errors.New("datastore is closed")
	ErrEmptyBatch        = errors.New("no statements to process")
	ErrNotExecuted       = errors.New("the query was not executed due to a failed transaction")
	ErrNoNamespace       = errors.New("specify a namespace to use")
	ErrNoDatabase        = errors.New("specify a database to use")
	ErrNamespaceNotFound = errors.New("namespace does not exist")
	ErrDatabaseNotFound  = errors.New("database does not exist")
	ErrTableNotFound     = errors.New("table does not exist")
	ErrFieldNotFound     = errors.New("field does not exist")
	ErrUnsupported       = errors.New("unsupported statement")
)

// Response is the outcome of one statement of a batch.
type Response struct {
	Result any
	Err    error
	Time   time.Duration
}

// Datastore executes statements against a catalog kept in a KV store.
type Datastore struct {
	store database.Store

	mu     sync.RWMutex
	closed bool
}

// New provisions a datastore on a fresh store opened from backend (see
// database.BackendOf).
func New(ctx context.Context, backend string) (*Datastore, error) {
	store, err := database.Open(ctx, backend)
	if err != nil {
		return nil, fmt.Errorf("opening datastore: %w", err)
	}
	logging.FromContext(ctx).Debug("datastore opened", "backend", store.Backend())
	return NewWithStore(store), nil
}

// NewWithStore wraps an already open store. The datastore takes ownership
// of it.
func NewWithStore(store database.Store) *Datastore {
	return &Datastore{store: store}
}

// Backend names the underlying storage engine.
func (ds *Datastore) Backend() string { return ds.store.Backend() }

// Close releases the store. Later calls to Process fail with ErrClosed.
func (ds *Datastore) Close() error {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	if ds.closed {
		return nil
	}
	ds.closed = true
	return ds.store.Close()
}

// Process runs stmts in order inside one transaction and returns one
// Response per statement. If any statement fails the transaction is
// rolled back: the failing statement keeps its error and every other
// statement reports ErrNotExecuted. The returned error is set only when the
// batch as a whole could not run.
func (ds *Datastore) Process(ctx context.Context, sess Session, stmts []surql.Statement) ([]Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	if ds.closed {
		return nil, ErrClosed
	}
	if len(stmts) == 0 {
		return nil, ErrEmptyBatch
	}

	logger := logging.FromContext(ctx)
	start := time.Now()

	tx, err := ds.store.Begin(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}

	x := &executor{tx: tx, sess: sess}
	responses := make([]Response, len(stmts))
	failed := -1
	for i, st := range stmts {
		if failed >= 0 {
			responses[i].Err = ErrNotExecuted
			continue
		}
		began := time.Now()
		res, err := x.execute(ctx, st)
		responses[i] = Response{Result: res, Err: err, Time: time.Since(began)}
		if err != nil {
			failed = i
		}
	}

	if failed >= 0 {
		if err := tx.Cancel(ctx); err != nil {
			logger.Warn("rollback failed", "error", err)
		}
		for i := 0; i < failed; i++ {
			responses[i] = Response{Err: ErrNotExecuted, Time: responses[i].Time}
		}
		logger.Debug("batch rolled back",
			"session", sess.String(),
			"statement", stmts[failed].String(),
			"error", responses[failed].Err)
		return responses, nil
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	logger.Debug("batch executed",
		"session", sess.String(),
		"statements", len(stmts),
		"elapsed", time.Since(start))
	return responses, nil
}

// Package database owns the MySQL connection pool.  All statements go through
// Executor, which rebuilds the pool once when a statement fails on a dead
// connection.
package database

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Opener builds a new, unprobed pool.
type Opener func(ctx context.Context) (*sql.DB, error)

const probeTimeout = 3 * time.Second

// Executor runs parameterized statements against the current pool.  On a
// transient connection failure it replaces the pool process-wide and retries
// the same statement exactly once.  Statements in flight on the old pool are
// left to finish or fail on their own.
type Executor struct {
	mu   sync.RWMutex
	db   *sql.DB
	open Opener
	log  zerolog.Logger
}

// NewExecutor opens the initial pool and probes it.  A failed probe is logged
// but not fatal: the pool is kept and the first statement gets the
// rebuild-and-retry treatment.
func NewExecutor(ctx context.Context, open Opener, logger zerolog.Logger) (*Executor, error) {
	if open == nil {
		return nil, errors.New("database: nil opener")
	}
	db, err := open(ctx)
	if err != nil {
		return nil, err
	}
	e := &Executor{db: db, open: open, log: logger.With().Str("component", "executor").Logger()}
	if err := e.probe(ctx, db); err != nil {
		e.log.Error().Err(err).Msg("initial database ping failed, keeping pool and retrying on demand")
	} else {
		e.log.Info().Msg("database pool created")
	}
	return e, nil
}

// Exec runs a statement that returns no rows.
func (e *Executor) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return run(ctx, e, query, args, func(db *sql.DB) (sql.Result, error) {
		return db.ExecContext(ctx, query, args...)
	})
}

// Query runs a statement that returns rows.  The caller must close them.
func (e *Executor) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return run(ctx, e, query, args, func(db *sql.DB) (*sql.Rows, error) {
		return db.QueryContext(ctx, query, args...)
	})
}

// Ping probes the current pool.
func (e *Executor) Ping(ctx context.Context) error {
	return e.probe(ctx, e.current())
}

// Close tears down the current pool.
func (e *Executor) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.db == nil {
		return nil
	}
	err := e.db.Close()
	e.db = nil
	e.log.Info().Msg("database pool closed")
	return err
}

func (e *Executor) current() *sql.DB {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.db
}

func run[T any](ctx context.Context, e *Executor, query string, args []any, fn func(*sql.DB) (T, error)) (T, error) {
	var zero T
	if err := checkBinds(query, args); err != nil {
		return zero, err
	}
	db := e.current()
	if db == nil {
		return zero, sql.ErrConnDone
	}

	res, err := fn(db)
	if err == nil || !IsTransient(err) {
		return res, err
	}

	e.log.Warn().Err(err).Msg("database connection error, recreating pool and retrying once")
	fresh, rerr := e.replace(ctx, db)
	if rerr != nil {
		e.log.Error().Err(rerr).Msg("recreating pool failed")
		return zero, rerr
	}
	res, err = fn(fresh)
	if err != nil {
		e.log.Error().Err(err).Msg("retry after recreating pool failed")
	}
	return res, err
}

// replace swaps failed for a new pool.  When another caller already replaced
// it, the current pool is returned and no second rebuild happens.
func (e *Executor) replace(ctx context.Context, failed *sql.DB) (*sql.DB, error) {
	e.mu.Lock()
	if e.db != failed {
		cur := e.db
		e.mu.Unlock()
		if cur == nil {
			return nil, sql.ErrConnDone
		}
		return cur, nil
	}
	fresh, err := e.open(ctx)
	if err != nil {
		e.mu.Unlock()
		return nil, err
	}
	e.db = fresh
	e.mu.Unlock()

	// sql.DB.Close waits for in-flight statements; do not block the retry on it.
	go func() {
		if err := failed.Close(); err != nil {
			e.log.Debug().Err(err).Msg("closing replaced pool")
		}
	}()

	if err := e.probe(ctx, fresh); err != nil {
		e.log.Warn().Err(err).Msg("replacement pool failed liveness probe")
	}
	return fresh, nil
}

func (e *Executor) probe(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return sql.ErrConnDone
	}
	pctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	return db.PingContext(pctx)
}

// checkBinds rejects a statement whose '?' placeholders (outside quoted
// literals) do not match the argument count.
func checkBinds(query string, args []any) error {
	n := 0
	var quote rune
	for _, r := range query {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '\'' || r == '"' || r == '`':
			quote = r
		case r == '?':
			n++
		}
	}
	if n != len(args) {
		return ErrUnboundParam
	}
	return nil
}


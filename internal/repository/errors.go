// Package repository holds the parameterized-SQL data access for principals
// and positions.  Every statement runs through a Querier, normally the
// resilient database.Executor.
package repository

import (
	"context"
	"database/sql"
	"errors"
)

// ErrNotFound is returned when no row matches a lookup or update.  Handlers
// should translate it into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrNoOpUpdate is returned when an update names no field to change.
// Handlers should translate it into an HTTP 400 response.
var ErrNoOpUpdate = errors.New("no fields to update")

// Querier is the statement capability the repositories need.
// *database.Executor satisfies it.
type Querier interface {
	Exec(ctx context.Context, query string, args ...any) (sql.Result, error)
	Query(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/positions-api/internal/database"
)

// newExecutor wires a sqlmock pool behind the real executor so the bind
// guard and error propagation are exercised too.
func newExecutor(t *testing.T) (*database.Executor, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	exec, err := database.NewExecutor(context.Background(),
		func(context.Context) (*sql.DB, error) { return db, nil }, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = exec.Close() })
	return exec, mock
}

var created = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

package database

import (
	"context"
	"database/sql"
	"errors"
	"net"
	"regexp"
	"syscall"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// scriptedOpener hands out pre-built sqlmock pools in order and counts calls.
type scriptedOpener struct {
	pools []*sql.DB
	calls int
}

func (o *scriptedOpener) open(context.Context) (*sql.DB, error) {
	if o.calls >= len(o.pools) {
		return nil, errors.New("no more pools")
	}
	db := o.pools[o.calls]
	o.calls++
	return db, nil
}

func newMockPool(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return db, mock
}

func resetErr() error {
	return &net.OpError{Op: "read", Net: "tcp", Err: syscall.ECONNRESET}
}

const updateSQL = "UPDATE users SET refresh_token = ? WHERE id = ?"

func TestExecutor_RetriesOnceAfterTransientError(t *testing.T) {
	first, firstMock := newMockPool(t)
	second, secondMock := newMockPool(t)
	t.Cleanup(func() { _ = second.Close() })

	firstMock.ExpectExec(regexp.QuoteMeta(updateSQL)).
		WithArgs("digest", 7).
		WillReturnError(resetErr())
	secondMock.ExpectExec(regexp.QuoteMeta(updateSQL)).
		WithArgs("digest", 7).
		WillReturnResult(sqlmock.NewResult(0, 1))

	opener := &scriptedOpener{pools: []*sql.DB{first, second}}
	exec, err := NewExecutor(context.Background(), opener.open, zerolog.Nop())
	require.NoError(t, err)

	res, err := exec.Exec(context.Background(), updateSQL, "digest", 7)
	require.NoError(t, err)
	n, err := res.RowsAffected()
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	require.Equal(t, 2, opener.calls, "exactly one rebuild after the initial pool")
	require.NoError(t, firstMock.ExpectationsWereMet())
	require.NoError(t, secondMock.ExpectationsWereMet())
	require.Same(t, second, exec.current())
}

func TestExecutor_SurfacesSecondTransientFailure(t *testing.T) {
	first, firstMock := newMockPool(t)
	second, secondMock := newMockPool(t)
	third, _ := newMockPool(t)
	t.Cleanup(func() { _ = second.Close(); _ = third.Close() })

	firstMock.ExpectExec(regexp.QuoteMeta(updateSQL)).WillReturnError(resetErr())
	secondMock.ExpectExec(regexp.QuoteMeta(updateSQL)).WillReturnError(mysql.ErrInvalidConn)

	opener := &scriptedOpener{pools: []*sql.DB{first, second, third}}
	exec, err := NewExecutor(context.Background(), opener.open, zerolog.Nop())
	require.NoError(t, err)

	_, err = exec.Exec(context.Background(), updateSQL, "digest", 7)
	require.ErrorIs(t, err, mysql.ErrInvalidConn)
	require.Equal(t, 2, opener.calls, "no second rebuild")
	require.NoError(t, secondMock.ExpectationsWereMet())
}

func TestExecutor_NonTransientErrorIsNotRetried(t *testing.T) {
	first, firstMock := newMockPool(t)
	t.Cleanup(func() { _ = first.Close() })

	dup := &mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'alice' for key 'username'"}
	firstMock.ExpectExec("INSERT INTO users").WillReturnError(dup)

	opener := &scriptedOpener{pools: []*sql.DB{first}}
	exec, err := NewExecutor(context.Background(), opener.open, zerolog.Nop())
	require.NoError(t, err)

	_, err = exec.Exec(context.Background(), "INSERT INTO users (username) VALUES (?)", "alice")
	require.Same(t, dup, err, "driver error surfaces unmodified")
	require.Equal(t, 1, opener.calls)
}

func TestExecutor_QueryRetry(t *testing.T) {
	first, firstMock := newMockPool(t)
	second, secondMock := newMockPool(t)
	t.Cleanup(func() { _ = second.Close() })

	const q = "SELECT id FROM users WHERE username = ?"
	firstMock.ExpectQuery(regexp.QuoteMeta(q)).WillReturnError(&mysql.MySQLError{Number: 2013, Message: "Lost connection"})
	secondMock.ExpectQuery(regexp.QuoteMeta(q)).WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))

	opener := &scriptedOpener{pools: []*sql.DB{first, second}}
	exec, err := NewExecutor(context.Background(), opener.open, zerolog.Nop())
	require.NoError(t, err)

	rows, err := exec.Query(context.Background(), q, "alice")
	require.NoError(t, err)
	defer rows.Close()
	require.True(t, rows.Next())
	var id int64
	require.NoError(t, rows.Scan(&id))
	require.Equal(t, int64(42), id)
}

func TestExecutor_RebuildFailureSurfaces(t *testing.T) {
	first, firstMock := newMockPool(t)
	firstMock.ExpectExec("DELETE").WillReturnError(resetErr())

	opener := &scriptedOpener{pools: []*sql.DB{first}}
	exec, err := NewExecutor(context.Background(), opener.open, zerolog.Nop())
	require.NoError(t, err)

	_, err = exec.Exec(context.Background(), "DELETE FROM users WHERE id = ?", 1)
	require.EqualError(t, err, "no more pools")
}

func TestExecutor_UnboundParamNeverReachesPool(t *testing.T) {
	first, firstMock := newMockPool(t)
	t.Cleanup(func() { _ = first.Close() })

	opener := &scriptedOpener{pools: []*sql.DB{first}}
	exec, err := NewExecutor(context.Background(), opener.open, zerolog.Nop())
	require.NoError(t, err)

	_, err = exec.Query(context.Background(), "SELECT id FROM users WHERE username = ? AND role = ?", "alice")
	require.ErrorIs(t, err, ErrUnboundParam)
	require.NoError(t, firstMock.ExpectationsWereMet())
}

func TestExecutor_ClosedExecutor(t *testing.T) {
	first, firstMock := newMockPool(t)
	firstMock.ExpectClose()

	opener := &scriptedOpener{pools: []*sql.DB{first}}
	exec, err := NewExecutor(context.Background(), opener.open, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, exec.Close())

	_, err = exec.Exec(context.Background(), "DELETE FROM users WHERE id = ?", 1)
	require.ErrorIs(t, err, sql.ErrConnDone)
	require.Error(t, exec.Ping(context.Background()))
}

func TestCheckBinds(t *testing.T) {
	require.NoError(t, checkBinds("SELECT 1", nil))
	require.NoError(t, checkBinds("SELECT * FROM t WHERE a = ? AND b = '?'", []any{1}))
	require.ErrorIs(t, checkBinds("UPDATE t SET a = ?, b = ? WHERE id = ?", []any{1, 2}), ErrUnboundParam)
}

func TestIsTransient(t *testing.T) {
	require.True(t, IsTransient(resetErr()))
	require.True(t, IsTransient(&net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED}))
	require.True(t, IsTransient(mysql.ErrInvalidConn))
	require.True(t, IsTransient(&mysql.MySQLError{Number: 2006}))
	require.False(t, IsTransient(&mysql.MySQLError{Number: 1062}))
	require.False(t, IsTransient(sql.ErrNoRows))
	require.False(t, IsTransient(nil))

	require.True(t, IsDuplicateKey(&mysql.MySQLError{Number: 1062}))
	require.False(t, IsDuplicateKey(resetErr()))
}

func TestMySQLOptions_DSN(t *testing.T) {
	dsn := MySQLOptions{User: "app", Pass: "pw", Addr: "db:3306", Name: "positions"}.DSN()
	cfg, err := mysql.ParseDSN(dsn)
	require.NoError(t, err)
	require.Equal(t, "app", cfg.User)
	require.Equal(t, "db:3306", cfg.Addr)
	require.True(t, cfg.ParseTime)
	require.True(t, cfg.ClientFoundRows)
}

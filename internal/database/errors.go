package database

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"syscall"

	"github.com/go-sql-driver/mysql"
)

// ErrUnboundParam is returned when a statement's placeholders and arguments
// disagree.  It never reaches the pool.
var ErrUnboundParam = errors.New("database: placeholder/argument count mismatch")

// MySQL error numbers that mean the session is gone rather than the statement
// being wrong.
const (
	erServerShutdown   = 1053
	erConnectionKilled = 1927
	crServerGone       = 2006
	crServerLost       = 2013
	erDupEntry         = 1062
)

// IsTransient reports whether err is a connection-level failure that a fresh
// pool may cure: peer reset, lost connection, refused connection.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	switch {
	case errors.Is(err, driver.ErrBadConn),
		errors.Is(err, mysql.ErrInvalidConn),
		errors.Is(err, sql.ErrConnDone),
		errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, syscall.ECONNREFUSED),
		errors.Is(err, syscall.ECONNABORTED),
		errors.Is(err, syscall.EPIPE),
		errors.Is(err, io.ErrUnexpectedEOF):
		return true
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case erServerShutdown, erConnectionKilled, crServerGone, crServerLost:
			return true
		}
	}
	return false
}

// IsDuplicateKey reports a unique-constraint violation.
func IsDuplicateKey(err error) bool {
	var myErr *mysql.MySQLError
	return errors.As(err, &myErr) && myErr.Number == erDupEntry
}

package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/go-sql-driver/mysql"
)

// MySQLOptions are the connection parameters for a MySQL pool.
type MySQLOptions struct {
	User      string
	Pass      string
	Addr      string // host:port
	Name      string
	ConnLimit int
}

// DSN renders the options as a go-sql-driver DSN.  parseTime maps DATETIME to
// time.Time, loc=UTC keeps times consistent, and clientFoundRows makes UPDATE
// report matched rows so an unchanged-but-present row is not taken for a miss.
func (o MySQLOptions) DSN() string {
	c := mysql.NewConfig()
	c.User = o.User
	c.Passwd = o.Pass
	c.Net = "tcp"
	c.Addr = o.Addr
	c.DBName = o.Name
	c.ParseTime = true
	c.Loc = time.UTC
	c.ClientFoundRows = true
	c.Timeout = 5 * time.Second
	c.Params = map[string]string{"charset": "utf8mb4"}
	return c.FormatDSN()
}

// MySQLOpener returns an Opener that builds a fresh pool from opts.  It does
// not dial; the executor probes liveness after every (re)build.
func MySQLOpener(opts MySQLOptions) Opener {
	limit := opts.ConnLimit
	if limit <= 0 {
		limit = 10
	}
	dsn := opts.DSN()
	return func(context.Context) (*sql.DB, error) {
		db, err := sql.Open("mysql", dsn)
		if err != nil {
			return nil, err
		}
		db.SetMaxOpenConns(limit)
		db.SetMaxIdleConns(limit)
		db.SetConnMaxLifetime(30 * time.Minute)
		return db, nil
	}
}

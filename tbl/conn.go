package tbl

import (
	"context"

	"github.com/georgysavva/scany/dbscan"

	"dbkit/dbi"
	"dbkit/dialect"
)

// Conn adapts a single dbi.Conn to Executor, for use without a pool.
func Conn(conn dbi.Conn) Executor {
	return connExecutor{conn}
}

type connExecutor struct {
	conn dbi.Conn
}

func (e connExecutor) Select(ctx context.Context, dest interface{}, sql string, args ...interface{}) error {
	rows, err := e.conn.Query(ctx, sql, args...)
	if err != nil {
		return err
	}
	return dbscan.ScanAll(dest, rows)
}

func (e connExecutor) Dialect() dialect.Dialect {
	return e.conn.Dialect()
}

// Package bridge adapts any registered database/sql driver to the dbi
// interface. Backends like ODBC and sqlite get the full dbi surface
// (and the pool) from a driver name and a DSN builder, without writing
// a native driver.
//
// Every dbi.Conn opened through the bridge owns a dedicated underlying
// connection: the wrapped sql.DB is capped at one open conn and a
// sql.Conn is pinned from it, so pooling stays the caller's concern
// rather than database/sql's.
package bridge

import (
	"context"
	"database/sql"
	"fmt"

	"dbkit/dbi"
	"dbkit/dialect"
)

// DSNFunc renders a dbi config into the backend's DSN syntax.
type DSNFunc func(*dbi.Config) (string, error)

// Driver implements dbi.Driver on top of a database/sql driver.
type Driver struct {
	name      string
	sqlDriver string
	dialect   dialect.Dialect
	dsn       DSNFunc
}

// New builds a bridge driver. name is the dbi driver name, sqlDriver
// the name the backend registered with database/sql.
func New(name, sqlDriver string, d dialect.Dialect, dsn DSNFunc) *Driver {
	return &Driver{name: name, sqlDriver: sqlDriver, dialect: d, dsn: dsn}
}

func (drv *Driver) Name() string { return drv.name }

func (drv *Driver) Open(ctx context.Context, config *dbi.Config) (dbi.Conn, error) {
	dsn, err := drv.dsn(config)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(drv.sqlDriver, dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if config.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, config.ConnectTimeout)
		defer cancel()
	}

	sc, err := db.Conn(ctx)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("bridge %s: %w", drv.name, err)
	}

	return &conn{db: db, sc: sc, dialect: drv.dialect}, nil
}

type conn struct {
	db      *sql.DB
	sc      *sql.Conn
	dialect dialect.Dialect
	stmts   map[string]*sql.Stmt
}

func (c *conn) Query(ctx context.Context, query string, args ...interface{}) (dbi.Rows, error) {
	// *sql.Rows satisfies dbi.Rows as-is.
	return c.sc.QueryContext(ctx, query, args...)
}

func (c *conn) Exec(ctx context.Context, query string, args ...interface{}) (dbi.Result, error) {
	res, err := c.sc.ExecContext(ctx, query, args...)
	if err != nil {
		return dbi.Result{}, err
	}
	// Not every ODBC backend reports affected rows.
	n, err := res.RowsAffected()
	if err != nil {
		n = 0
	}
	return dbi.Result{RowsAffected: n}, nil
}

func (c *conn) Prepare(ctx context.Context, name, query string) error {
	stmt, err := c.sc.PrepareContext(ctx, query)
	if err != nil {
		return err
	}
	if c.stmts == nil {
		c.stmts = make(map[string]*sql.Stmt)
	}
	if old, ok := c.stmts[name]; ok {
		old.Close()
	}
	c.stmts[name] = stmt
	return nil
}

func (c *conn) QueryPrepared(ctx context.Context, name string, args ...interface{}) (dbi.Rows, error) {
	stmt, ok := c.stmts[name]
	if !ok {
		return nil, fmt.Errorf("bridge: statement %q not prepared on this connection", name)
	}
	return stmt.QueryContext(ctx, args...)
}

func (c *conn) Ping(ctx context.Context) error {
	return c.sc.PingContext(ctx)
}

func (c *conn) Close(ctx context.Context) error {
	for _, stmt := range c.stmts {
		stmt.Close()
	}
	c.stmts = nil
	err := c.sc.Close()
	if cerr := c.db.Close(); err == nil {
		err = cerr
	}
	return err
}

func (c *conn) Dialect() dialect.Dialect { return c.dialect }

// Package dbi defines the standardized database interface every backend
// implements: connect, query, execute, table verbs, disconnect. Each
// backend registers a Driver under a unique name and is selected by the
// driver part of a connection string, so application code is written
// once against this package and runs against any registered backend.
package dbi

import (
	"context"

	"dbkit/dialect"
	"dbkit/internal/cfg"
)

// Config is the parsed connection configuration handed to drivers.
type Config = cfg.Config

// Driver opens connections for one backend.
type Driver interface {
	Name() string
	Open(ctx context.Context, config *Config) (Conn, error)
}

// Conn is a single database connection. A Conn is not safe for
// concurrent use; the pool serializes access by giving each worker its
// own Conn.
type Conn interface {
	Query(ctx context.Context, sql string, args ...interface{}) (Rows, error)
	Exec(ctx context.Context, sql string, args ...interface{}) (Result, error)
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
	Dialect() dialect.Dialect
}

// Preparer is implemented by connections that support named prepared
// statements. Callers must not assume it: check with a type assertion
// and fall back to Query.
type Preparer interface {
	Prepare(ctx context.Context, name, sql string) error
	QueryPrepared(ctx context.Context, name string, args ...interface{}) (Rows, error)
}

// Rows is a forward-only row iterator. It satisfies scany's dbscan.Rows
// so results scan straight into structs and slices.
type Rows interface {
	Columns() ([]string, error)
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
	Close() error
}

// Result reports the outcome of a statement that returns no rows.
type Result struct {
	RowsAffected int64
}

// ParseConfig parses a connection string without opening anything.
func ParseConfig(connString string) (*Config, error) {
	var c Config
	if err := c.ParseConfig(connString); err != nil {
		return nil, err
	}
	return &c, nil
}

// Connect parses connString, resolves the driver it names and opens a
// single connection. Pooled access lives in the root package.
func Connect(ctx context.Context, connString string) (Conn, error) {
	config, err := ParseConfig(connString)
	if err != nil {
		return nil, err
	}
	driver, err := Lookup(config.Driver)
	if err != nil {
		return nil, err
	}
	return driver.Open(ctx, config)
}

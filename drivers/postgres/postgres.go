// Package postgres registers the native "postgres" driver, built on
// jackc/pgconn. Parameters travel in text format through the extended
// query protocol; results are read whole into dbi.RowSets with values
// decoded by type OID.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgconn"

	"dbkit/dbi"
	"dbkit/dialect"
)

func init() {
	dbi.Register(driver{})
}

type driver struct{}

func (driver) Name() string { return "postgres" }

func (driver) Open(ctx context.Context, config *dbi.Config) (dbi.Conn, error) {
	pgConfig, err := pgconn.ParseConfig(config.DriverDSN())
	if err != nil {
		return nil, err
	}

	pg, err := pgconn.ConnectConfig(ctx, pgConfig)
	if err != nil {
		return nil, err
	}
	return &conn{pg: pg}, nil
}

type conn struct {
	pg *pgconn.PgConn
}

func (c *conn) Query(ctx context.Context, sql string, args ...interface{}) (dbi.Rows, error) {
	paramValues, err := encodeParams(args)
	if err != nil {
		return nil, err
	}
	rr := c.pg.ExecParams(ctx, sql, paramValues, nil, nil, nil)
	return readResult(rr)
}

func (c *conn) Exec(ctx context.Context, sql string, args ...interface{}) (dbi.Result, error) {
	paramValues, err := encodeParams(args)
	if err != nil {
		return dbi.Result{}, err
	}
	rr := c.pg.ExecParams(ctx, sql, paramValues, nil, nil, nil)
	tag, err := rr.Close()
	if err != nil {
		return dbi.Result{}, err
	}
	return dbi.Result{RowsAffected: tag.RowsAffected()}, nil
}

func (c *conn) Prepare(ctx context.Context, name, sql string) error {
	_, err := c.pg.Prepare(ctx, name, sql, nil)
	return err
}

func (c *conn) QueryPrepared(ctx context.Context, name string, args ...interface{}) (dbi.Rows, error) {
	paramValues, err := encodeParams(args)
	if err != nil {
		return nil, err
	}
	rr := c.pg.ExecPrepared(ctx, name, paramValues, nil, nil)
	return readResult(rr)
}

func (c *conn) Ping(ctx context.Context) error {
	_, err := c.pg.Exec(ctx, "select 1").ReadAll()
	return err
}

func (c *conn) Close(ctx context.Context) error {
	return c.pg.Close(ctx)
}

func (c *conn) Dialect() dialect.Dialect { return dialect.Postgres }

// readResult drains a ResultReader into a materialized RowSet.
func readResult(rr *pgconn.ResultReader) (*dbi.RowSet, error) {
	fields := rr.FieldDescriptions()
	cols := make([]string, len(fields))
	oids := make([]uint32, len(fields))
	for i := range fields {
		cols[i] = string(fields[i].Name)
		oids[i] = fields[i].DataTypeOID
	}

	rs := dbi.NewRowSet(cols)
	for rr.NextRow() {
		raw := rr.Values()
		row := make([]interface{}, len(raw))
		for i := range raw {
			v, err := decodeValue(oids[i], raw[i])
			if err != nil {
				rr.Close()
				return nil, fmt.Errorf("postgres: column %q: %w", cols[i], err)
			}
			row[i] = v
		}
		rs.Append(row)
	}
	if _, err := rr.Close(); err != nil {
		return nil, err
	}
	return rs, nil
}

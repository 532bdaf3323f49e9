package dbkit

import (
	"context"
	"strconv"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v3"

	"dbkit/dbi"
)

// preparedStatements assigns a stable statement name per SQL text for
// the whole pool. Statements are actually prepared lazily, per
// connection, the first time that connection executes the SQL.
type preparedStatements struct {
	names *xsync.MapOf[string, string]
	seq   uint64
}

func newPreparedStatements() preparedStatements {
	return preparedStatements{names: xsync.NewMapOf[string, string]()}
}

func (p *Pool) statementName(sql string) string {
	if name, ok := p.ps.names.Load(sql); ok {
		return name
	}
	name := "dbkit_ps_" + strconv.FormatUint(atomic.AddUint64(&p.ps.seq, 1), 10)
	actual, _ := p.ps.names.LoadOrStore(sql, name)
	return actual
}

// prepareOnConn prepares the request's statement on one connection.
// The per-connection set is touched only by that connection's worker.
func (p *Pool) prepareOnConn(ctx context.Context, preparer dbi.Preparer, i int, req *request) error {
	c := &p.conns.list[i]
	if c.prepared == nil {
		c.prepared = make(map[string]struct{})
	}
	if _, ok := c.prepared[req.stmt]; ok {
		return nil
	}
	if err := preparer.Prepare(ctx, req.stmt, req.sql); err != nil {
		return err
	}
	c.prepared[req.stmt] = struct{}{}
	return nil
}

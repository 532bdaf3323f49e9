package dbkit

import (
	"context"
	"sync"
	"time"

	"dbkit/dbi"
)

const (
	connStatusOffline = iota
	connStatusOnline
)

const (
	cmdConnect = iota
	cmdQuery
	cmdPing
	cmdClose
)

type command struct {
	kind int
	req  *request
	done chan error
}

type connections struct {
	mutex sync.RWMutex
	list  []connection
}

type connection struct {
	commandChan chan command
	status      int

	// statements prepared on this connection; worker-owned
	prepared map[string]struct{}
}

func (p *Pool) setStatus(i, status int) {
	p.conns.mutex.Lock()
	p.conns.list[i].status = status
	p.conns.mutex.Unlock()
}

// worker owns one driver connection. It consumes commands and signals
// readiness for more work by pushing its index into connReadyChan:
// exactly one readiness token exists per online worker, either in the
// channel or held by the dispatcher.
func (p *Pool) worker(i int, commandChan chan command) {
	var conn dbi.Conn

	for cmd := range commandChan {
		switch cmd.kind {
		case cmdConnect:
			if conn != nil {
				cmd.done <- nil
				continue
			}
			c, err := p.open()
			if err != nil {
				p.log.Error().Err(err).Int("conn", i).Msg("connect failed")
				cmd.done <- err
				continue
			}
			conn = c
			p.conns.list[i].prepared = nil
			p.setStatus(i, connStatusOnline)
			p.log.Debug().Int("conn", i).Msg("connected")
			cmd.done <- nil
			p.connReadyChan <- i

		case cmdQuery:
			p.execute(conn, i, cmd.req)
			cmd.req.finish()
			p.connReadyChan <- i

		case cmdPing:
			ctx, cancel := context.WithTimeout(context.Background(), p.config.QueryTimeout)
			err := conn.Ping(ctx)
			cancel()
			if err == nil {
				p.connReadyChan <- i
				continue
			}
			p.log.Warn().Err(err).Int("conn", i).Msg("health check failed, reconnecting")
			conn.Close(context.Background())
			conn = nil
			p.setStatus(i, connStatusOffline)
			c, err := p.open()
			if err != nil {
				p.log.Error().Err(err).Int("conn", i).Msg("reconnect failed")
				continue
			}
			reconnectsTotal.Inc()
			conn = c
			p.conns.list[i].prepared = nil
			p.setStatus(i, connStatusOnline)
			p.connReadyChan <- i

		case cmdClose:
			if conn != nil {
				ctx, cancel := context.WithTimeout(context.Background(), time.Second)
				conn.Close(ctx)
				cancel()
				conn = nil
			}
			p.setStatus(i, connStatusOffline)
			// answer whatever is queued behind the close so no caller
			// blocks on a dead worker
			for {
				select {
				case pending := <-commandChan:
					if pending.req != nil {
						pending.req.err = ErrPoolClosed
						pending.req.finish()
					}
					if pending.done != nil {
						pending.done <- nil
					}
				default:
					cmd.done <- nil
					return
				}
			}
		}
	}
}

func (p *Pool) open() (dbi.Conn, error) {
	timeout := p.config.ConnectTimeout
	if timeout <= 0 {
		timeout = p.config.QueryTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return p.driver.Open(ctx, &p.config)
}

// execute runs one request on a connection, materializing rows into the
// request's recycled RowSet. Prepared statements are used when the
// driver supports them, prepared lazily on each connection the first
// time it sees the SQL.
func (p *Pool) execute(conn dbi.Conn, i int, req *request) {
	ctx, cancel := context.WithTimeout(context.Background(), p.config.QueryTimeout)
	defer cancel()

	queriesTotal.Inc()

	if req.exec {
		res, err := conn.Exec(ctx, req.sql, req.args...)
		if err != nil {
			queryErrorsTotal.Inc()
			req.err = err
			return
		}
		req.result = res
		return
	}

	var rows dbi.Rows
	var err error
	if preparer, ok := conn.(dbi.Preparer); ok && req.stmt != "" {
		if err = p.prepareOnConn(ctx, preparer, i, req); err == nil {
			rows, err = preparer.QueryPrepared(ctx, req.stmt, req.args...)
		}
	} else {
		rows, err = conn.Query(ctx, req.sql, req.args...)
	}
	if err != nil {
		queryErrorsTotal.Inc()
		req.err = err
		return
	}
	req.err = fillRowSet(&req.rs, rows)
	if req.err != nil {
		queryErrorsTotal.Inc()
	}
}

// fillRowSet drains rows into rs.
func fillRowSet(rs *dbi.RowSet, rows dbi.Rows) error {
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return err
	}
	rs.Reset(cols)

	for rows.Next() {
		row := make([]interface{}, len(cols))
		dest := make([]interface{}, len(cols))
		for i := range row {
			dest[i] = &row[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return err
		}
		rs.Append(row)
	}
	return rows.Err()
}

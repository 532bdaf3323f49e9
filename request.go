package dbkit

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/georgysavva/scany/dbscan"

	"dbkit/dbi"
)

var ErrResultNotActual = errors.New("result not actual")
var ErrArgsLimit = errors.New("args limit")
var ErrPoolClosed = errors.New("pool closed")

// ResultFunc collects the outcome of an asynchronous query. dest must
// be a pointer to a slice of structs (scanned by scany's rules) or nil
// to discard the rows. It may be called once; afterwards the underlying
// slot is recycled.
type ResultFunc func(dest interface{}) error

// request lifecycle, advanced with atomics so the reclaimer and a late
// ResultFunc cannot both recycle a slot.
const (
	stateIdle int32 = iota
	stateQueued
	stateDone
	stateCollecting
)

// request is a preallocated query slot cycling between the empty
// channel, the dispatcher and a worker. The mutex is locked from
// dispatch until the worker finishes, so collecting blocks until the
// result is in place. gen guards ResultFuncs that outlived their slot.
type request struct {
	sql  string
	args []interface{}
	stmt string
	exec bool

	rs     dbi.RowSet
	result dbi.Result
	err    error

	gen       uint64
	startTime int64
	state     int32
	mutex     sync.Mutex

	emptyRequestChan chan *request
}

func newRequest(emptyRequestChan chan *request) *request {
	return &request{
		args:             make([]interface{}, 0, 16),
		emptyRequestChan: emptyRequestChan,
	}
}

func (r *request) start(sql string, args ...interface{}) {
	r.sql = sql
	r.args = append(r.args[:0], args...)
	r.stmt = ""
	r.exec = false
	r.err = nil
	r.result = dbi.Result{}
	r.gen++
	r.startTime = time.Now().UnixNano()
	atomic.StoreInt32(&r.state, stateQueued)
}

func (r *request) actual(ttl time.Duration) bool {
	return time.Now().UnixNano()-r.startTime < int64(ttl)
}

// finish publishes the result: called by the worker (or by shutdown)
// exactly once per dispatched request.
func (r *request) finish() {
	atomic.StoreInt32(&r.state, stateDone)
	r.mutex.Unlock()
}

// recycle resets the slot and hands it back. Callers must have won the
// stateDone -> stateCollecting transition.
func (r *request) recycle() {
	r.rs.Reset(nil)
	r.sql = ""
	r.args = r.args[:0]
	atomic.StoreInt32(&r.state, stateIdle)
	r.emptyRequestChan <- r
}

// QueryAsync queues sql for execution on the next free connection and
// returns a ResultFunc that blocks until the result is available. The
// result must be collected within the pool's query TTL or the slot is
// reclaimed and the ResultFunc reports ErrResultNotActual.
func (p *Pool) QueryAsync(sql string, args ...interface{}) ResultFunc {
	return p.queryAsync(sql, args, false)
}

// ExecAsync is QueryAsync for statements without a result set; the
// returned ResultFunc ignores dest.
func (p *Pool) ExecAsync(sql string, args ...interface{}) ResultFunc {
	return p.queryAsync(sql, args, true)
}

func (p *Pool) queryAsync(sql string, args []interface{}, exec bool) ResultFunc {
	if !checkArgs(len(args)) {
		return errFunc(ErrArgsLimit)
	}
	if p.isClosed() {
		return errFunc(ErrPoolClosed)
	}

	req := <-p.emptyRequestChan
	req.mutex.Lock()
	req.start(sql, args...)
	req.exec = exec
	if !exec {
		req.stmt = p.statementName(sql)
	}
	gen := req.gen

	p.requestChan <- req

	return func(dest interface{}) error {
		req.mutex.Lock()
		if req.gen != gen || !atomic.CompareAndSwapInt32(&req.state, stateDone, stateCollecting) {
			req.mutex.Unlock()
			return ErrResultNotActual
		}
		defer func() {
			req.recycle()
			req.mutex.Unlock()
		}()

		if !req.actual(p.config.QueryTTL) {
			return ErrResultNotActual
		}
		if req.err != nil {
			return req.err
		}
		if dest == nil || req.exec {
			return nil
		}
		return dbscan.ScanAll(dest, &req.rs)
	}
}

// Select runs sql synchronously and scans all rows into dest, a pointer
// to a slice. ctx is checked before dispatch; in-flight queries are
// bounded by the pool's query timeout, not by ctx.
func (p *Pool) Select(ctx context.Context, dest interface{}, sql string, args ...interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return p.QueryAsync(sql, args...)(dest)
}

// Query runs sql synchronously and returns the rows as a materialized
// RowSet independent of the pool's recycled slots.
func (p *Pool) Query(ctx context.Context, sql string, args ...interface{}) (*dbi.RowSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !checkArgs(len(args)) {
		return nil, ErrArgsLimit
	}
	if p.isClosed() {
		return nil, ErrPoolClosed
	}

	req := <-p.emptyRequestChan
	req.mutex.Lock()
	req.start(sql, args...)
	req.stmt = p.statementName(sql)
	gen := req.gen
	p.requestChan <- req

	req.mutex.Lock()
	if req.gen != gen || !atomic.CompareAndSwapInt32(&req.state, stateDone, stateCollecting) {
		req.mutex.Unlock()
		return nil, ErrResultNotActual
	}
	var rs *dbi.RowSet
	err := req.err
	if err == nil {
		rs = req.rs.Clone()
	}
	req.recycle()
	req.mutex.Unlock()
	return rs, err
}

// Exec runs a statement synchronously and reports rows affected.
func (p *Pool) Exec(ctx context.Context, sql string, args ...interface{}) (dbi.Result, error) {
	if err := ctx.Err(); err != nil {
		return dbi.Result{}, err
	}
	if !checkArgs(len(args)) {
		return dbi.Result{}, ErrArgsLimit
	}
	if p.isClosed() {
		return dbi.Result{}, ErrPoolClosed
	}

	req := <-p.emptyRequestChan
	req.mutex.Lock()
	req.start(sql, args...)
	req.exec = true
	gen := req.gen
	p.requestChan <- req

	req.mutex.Lock()
	if req.gen != gen || !atomic.CompareAndSwapInt32(&req.state, stateDone, stateCollecting) {
		req.mutex.Unlock()
		return dbi.Result{}, ErrResultNotActual
	}
	res, err := req.result, req.err
	req.recycle()
	req.mutex.Unlock()
	return res, err
}

func errFunc(err error) ResultFunc {
	return func(interface{}) error {
		return err
	}
}

// driver parameter counts are a uint16 on most wire protocols
func checkArgs(len int) bool {
	return len>>16 == 0
}

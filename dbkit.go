// Package dbkit pools connections to a relational database behind the
// dbi driver interface. A long-lived server process shares one Pool
// across all of its requests instead of paying connection setup per
// request or trusting a single long-lived connection.
//
// Results are preallocated and recycled: QueryAsync hands back a
// closure that must be consumed before the pool's query TTL passes,
// after which the slot is reclaimed and the closure reports
// ErrResultNotActual.
package dbkit

import (
	"sync"

	"github.com/rs/zerolog"

	"dbkit/dbi"
	"dbkit/dialect"
	"dbkit/internal/cfg"
)

// request slots per configured connection
const requestSlotsPerConn = 8

type Pool struct {
	config cfg.Config
	driver dbi.Driver
	d      dialect.Dialect
	log    zerolog.Logger

	conns    *connections
	requests *requests

	requestChan      chan *request
	emptyRequestChan chan *request
	connReadyChan    chan int

	ps preparedStatements

	quit         chan struct{}
	dispatchDone chan struct{}
	closeOnce    sync.Once
	closeErr     error
}

// Dialect returns the SQL dialect of the pool's driver.
func (p *Pool) Dialect() dialect.Dialect { return p.d }

// Stat is a point-in-time snapshot of pool state.
type Stat struct {
	TotalConns   int
	OnlineConns  int
	IdleRequests int
}

func (p *Pool) Stat() Stat {
	p.conns.mutex.RLock()
	online := 0
	for i := range p.conns.list {
		if p.conns.list[i].status == connStatusOnline {
			online++
		}
	}
	total := len(p.conns.list)
	p.conns.mutex.RUnlock()

	return Stat{
		TotalConns:   total,
		OnlineConns:  online,
		IdleRequests: len(p.emptyRequestChan),
	}
}

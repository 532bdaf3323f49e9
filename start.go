package dbkit

import (
	"fmt"
	"time"

	"dbkit/dbi"
	"dbkit/dialect"
	"dbkit/internal/cfg"
)

// Start parses connString, resolves its driver and brings the pool up
// with the configured minimum of connections. It fails when not a
// single connection can be established.
func Start(connString string, opts ...Option) (*Pool, error) {
	var config cfg.Config
	if err := config.ParseConfig(connString); err != nil {
		return nil, err
	}

	driver, err := dbi.Lookup(config.Driver)
	if err != nil {
		return nil, err
	}

	p := &Pool{
		config: config,
		driver: driver,
		d:      dialect.ByName(config.Driver),
		log:    nopLogger(),
		quit:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}

	slots := requestSlotsPerConn * config.MaxConns
	emptyRequestChan := make(chan *request, slots)
	p.emptyRequestChan = emptyRequestChan

	p.requests = newRequests(slots, config.QueryTTL, emptyRequestChan, p.quit)
	for i := range p.requests.list {
		emptyRequestChan <- p.requests.list[i]
	}

	p.requestChan = make(chan *request, config.MaxConns)
	p.connReadyChan = make(chan int, config.MaxConns)

	conns := make([]connection, config.MaxConns)
	for i := range conns {
		cChan := make(chan command, 16)
		conns[i].commandChan = cChan
	}
	p.conns = &connections{list: conns}
	for i := range conns {
		go p.worker(i, conns[i].commandChan)
	}

	p.ps = newPreparedStatements()

	p.dispatchDone = make(chan struct{})
	go p.dispatch()

	if online := p.connect(config.MinConns); online == 0 {
		p.Close()
		return nil, fmt.Errorf("dbkit: no connection could be established (driver %s)", config.Driver)
	}

	p.log.Info().
		Str("driver", config.Driver).
		Int("min_conns", config.MinConns).
		Int("max_conns", config.MaxConns).
		Msg("pool started")

	return p, nil
}

// dispatch pairs queued requests with ready connections and drives the
// health checks. When demand outruns the online connections it asks an
// offline worker to connect, growing the pool toward its maximum.
func (p *Pool) dispatch() {
	defer close(p.dispatchDone)

	health := time.NewTicker(p.config.HealthCheckPeriod)
	defer health.Stop()

	for {
		select {
		case <-p.quit:
			return

		case req := <-p.requestChan:
			if len(p.connReadyChan) == 0 {
				go p.connect(1)
			}
			select {
			case <-p.quit:
				req.err = ErrPoolClosed
				req.finish()
				return
			case cr := <-p.connReadyChan:
				p.conns.list[cr].commandChan <- command{kind: cmdQuery, req: req}
			}

		case <-health.C:
			p.revive()
			// ping one idle connection per tick, without stealing a
			// token a queued request is waiting for
			select {
			case cr := <-p.connReadyChan:
				p.conns.list[cr].commandChan <- command{kind: cmdPing}
			default:
			}
		}
	}
}

func (p *Pool) isClosed() bool {
	select {
	case <-p.quit:
		return true
	default:
		return false
	}
}

// Close stops the dispatcher, fails queued requests with ErrPoolClosed
// and closes every connection. It is safe to call more than once.
func (p *Pool) Close() error {
	p.closeOnce.Do(func() {
		close(p.quit)

		// the dispatcher is the only sender of query commands: once it
		// has returned, nothing can land on a worker behind its close
		<-p.dispatchDone

		// fail everything queued so waiting ResultFuncs return; keep a
		// drainer for requests racing Close on their way in
		go func() {
			for req := range p.requestChan {
				req.err = ErrPoolClosed
				req.finish()
			}
		}()

		p.conns.mutex.RLock()
		workers := len(p.conns.list)
		dones := make([]chan error, workers)
		for i := range p.conns.list {
			dones[i] = make(chan error, 1)
			p.conns.list[i].commandChan <- command{kind: cmdClose, done: dones[i]}
		}
		p.conns.mutex.RUnlock()

		for _, done := range dones {
			<-done
		}

		p.log.Info().Msg("pool closed")
	})
	return p.closeErr
}

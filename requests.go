package dbkit

import (
	"sync/atomic"
	"time"
)

// requests holds the preallocated request slots and reclaims the ones
// whose results were produced but never collected, so abandoned
// ResultFuncs cannot starve the pool.
type requests struct {
	ticker           *time.Ticker
	emptyRequestChan chan *request
	list             []*request
}

func newRequests(count int, ttl time.Duration, emptyRequestChan chan *request, quit chan struct{}) *requests {
	var rq requests
	rq.emptyRequestChan = emptyRequestChan
	rq.list = make([]*request, count)
	for i := range rq.list {
		rq.list[i] = newRequest(emptyRequestChan)
	}
	rq.ticker = time.NewTicker(ttl)
	go rq.reclaim(ttl, quit)
	return &rq
}

func (rq *requests) reclaim(ttl time.Duration, quit chan struct{}) {
	defer rq.ticker.Stop()
	for {
		select {
		case <-quit:
			return
		case <-rq.ticker.C:
		}
		if len(rq.emptyRequestChan) >= len(rq.list)/4 {
			continue
		}
		for _, r := range rq.list {
			if atomic.LoadInt32(&r.state) == stateDone &&
				!r.actual(ttl) &&
				atomic.CompareAndSwapInt32(&r.state, stateDone, stateCollecting) {
				resultsExpiredTotal.Inc()
				r.recycle()
			}
		}
	}
}

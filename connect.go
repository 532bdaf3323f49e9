package dbkit

// connect asks up to count offline workers to open their connection and
// waits for the outcomes. It returns the number that came online.
func (p *Pool) connect(count int) int {
	if p.isClosed() {
		return 0
	}
	p.conns.mutex.Lock()
	var asked []chan error
	for i := 0; i < len(p.conns.list) && len(asked) < count; i++ {
		if p.conns.list[i].status == connStatusOffline {
			done := make(chan error, 1)
			p.conns.list[i].commandChan <- command{kind: cmdConnect, done: done}
			asked = append(asked, done)
		}
	}
	p.conns.mutex.Unlock()

	online := 0
	for _, done := range asked {
		if err := <-done; err == nil {
			online++
		}
	}
	return online
}

// revive retries offline workers in the background. Called from the
// health ticker; outcomes surface through worker logs and metrics.
func (p *Pool) revive() {
	p.conns.mutex.RLock()
	var idle []int
	for i := range p.conns.list {
		if p.conns.list[i].status == connStatusOffline {
			idle = append(idle, i)
		}
	}
	p.conns.mutex.RUnlock()

	for _, i := range idle {
		done := make(chan error, 1)
		select {
		case p.conns.list[i].commandChan <- command{kind: cmdConnect, done: done}:
			go func() { <-done }()
		default:
		}
	}
}

package testutil

import "sync"

// ManualPoster queues posted work until Run is called, so tests control
// exactly when deferred work executes.
type ManualPoster struct {
	Closed bool

	mu      sync.Mutex
	pending []func()
}

func (p *ManualPoster) Post(fn func()) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Closed {
		return false
	}
	p.pending = append(p.pending, fn)
	return true
}

// Len returns the number of queued units.
func (p *ManualPoster) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pending)
}

// Run executes queued units in order, including any they post.
func (p *ManualPoster) Run() {
	for {
		p.mu.Lock()
		if len(p.pending) == 0 {
			p.mu.Unlock()
			return
		}
		fn := p.pending[0]
		p.pending = p.pending[1:]
		p.mu.Unlock()
		fn()
	}
}

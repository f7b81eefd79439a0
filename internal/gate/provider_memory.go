package gate

import (
	"context"
	"sync"
)

// MemoryProvider is a session provider backed by in-process state, used by
// tests and local development. Production wires the hosted backend's session
// client behind the same Provider interface.
type MemoryProvider struct {
	mu       sync.Mutex
	s        Session
	onChange func()
}

// NewMemoryProvider starts in the loading state, matching a real provider
// with an in-flight session check.
func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{s: Session{Loading: true}}
}

// Initialize completes the bootstrap session check.
func (p *MemoryProvider) Initialize(ctx context.Context) error {
	p.mu.Lock()
	p.s.Loading = false
	fn := p.onChange
	p.mu.Unlock()
	if fn != nil {
		fn()
	}
	return nil
}

func (p *MemoryProvider) Session() Session {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.s
}

// SetSession replaces the session and fires the change hook.
func (p *MemoryProvider) SetSession(s Session) {
	p.mu.Lock()
	p.s = s
	fn := p.onChange
	p.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// OnChange installs the change hook; typically the gatekeeper's
// SessionChanged.
func (p *MemoryProvider) OnChange(fn func()) {
	p.mu.Lock()
	p.onChange = fn
	p.mu.Unlock()
}

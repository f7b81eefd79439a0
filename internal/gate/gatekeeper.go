package gate

import (
	"sync"

	"github.com/rs/zerolog"
)

// Navigator performs an imperative client-side navigation.
type Navigator func(target string)

// Gatekeeper recomputes the gate decision on every relevant state change and
// issues redirects through an idempotent sink: the same redirect decided
// twice within one session revision navigates once, while a session change
// (expiry mid-visit) re-gates the current screen immediately.
type Gatekeeper struct {
	mu       sync.Mutex
	provider Provider
	navigate Navigator
	log      zerolog.Logger

	rev        uint64
	lastRev    uint64
	lastTarget string

	current    Policy
	hasCurrent bool
}

// New constructs a Gatekeeper. nav may be nil when redirects are carried by
// the transport (HTTP 302) rather than an imperative router.
func New(provider Provider, nav Navigator, log zerolog.Logger) *Gatekeeper {
	return &Gatekeeper{provider: provider, navigate: nav, log: log}
}

// Evaluate computes the decision for a policy against the live session and,
// for redirects, drives the idempotent navigation sink. It also remembers the
// policy as the current route so session changes can re-gate it.
func (g *Gatekeeper) Evaluate(p Policy) Decision {
	g.mu.Lock()
	g.current = p
	g.hasCurrent = true
	g.mu.Unlock()
	d := Decide(g.provider.Session(), p)
	decisionsTotal.WithLabelValues(string(d.Action)).Inc()
	if d.Action == ActionRedirect {
		g.redirect(d.Target)
	}
	return d
}

// SessionChanged bumps the revision and re-evaluates the current route, so an
// expired session redirects the screen the user is already on.
func (g *Gatekeeper) SessionChanged() {
	g.mu.Lock()
	g.rev++
	p, ok := g.current, g.hasCurrent
	g.mu.Unlock()
	if ok {
		g.Evaluate(p)
	}
}

// redirect navigates at most once per (revision, target) pair.
func (g *Gatekeeper) redirect(target string) {
	g.mu.Lock()
	if g.lastRev == g.rev && g.lastTarget == target {
		g.mu.Unlock()
		return
	}
	g.lastRev = g.rev
	g.lastTarget = target
	nav := g.navigate
	g.mu.Unlock()
	g.log.Debug().Str("target", target).Msg("gate redirect")
	if nav != nil {
		nav(target)
	}
}

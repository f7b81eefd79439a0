// Package gate decides, for every navigation, whether a screen may render or
// must redirect, from the authentication session and the route's declared
// policy. It is independent of the lifecycle controller; the two are composed
// only at the HTTP boundary.
package gate

import "context"

// Session is the authentication state read from the session collaborator.
// The gatekeeper only reads it; issuance and validation live elsewhere.
type Session struct {
	Authenticated bool
	Loading       bool
	Subject       string
}

// Provider exposes the authentication collaborator.
type Provider interface {
	// Initialize bootstraps the session check. Loading stays true until it
	// completes.
	Initialize(ctx context.Context) error
	Session() Session
}

// Policy declares a route's auth requirement.
type Policy struct {
	RequireAuth         bool
	ForbidAuthenticated bool
	// SignInTarget receives unauthenticated visitors of RequireAuth routes.
	SignInTarget string
	// LandingTarget receives authenticated visitors of ForbidAuthenticated
	// routes.
	LandingTarget string
}

// Action is the gatekeeper's verdict for a route.
type Action string

const (
	// ActionRender lets the route's children render.
	ActionRender Action = "render"
	// ActionLoading renders a neutral loading state; no redirect may be
	// issued while the session check is in flight.
	ActionLoading Action = "loading"
	// ActionRedirect navigates to Target instead of rendering.
	ActionRedirect Action = "redirect"
)

// Decision is derived, never stored: a pure function of session and policy.
type Decision struct {
	Action Action
	Target string
}

// Decide computes the gate decision. While the session is loading it always
// renders the neutral state, avoiding redirect races against the in-flight
// session check.
func Decide(s Session, p Policy) Decision {
	if s.Loading {
		return Decision{Action: ActionLoading}
	}
	if p.RequireAuth && !s.Authenticated {
		return Decision{Action: ActionRedirect, Target: p.SignInTarget}
	}
	if p.ForbidAuthenticated && s.Authenticated {
		return Decision{Action: ActionRedirect, Target: p.LandingTarget}
	}
	return Decision{Action: ActionRender}
}

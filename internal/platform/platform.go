// Package platform abstracts the browser-side capabilities the lifecycle
// controller consumes: reachability transitions, the one-shot install prompt
// capability, worker registration/update signals, and the notification
// permission API. The daemon never talks to a browser directly; a connected
// client forwards its platform events over HTTP and receives directives back
// on the event stream (see Bridge).
package platform

import (
	"context"
	"errors"

	"vaultd/pkg/types"
)

// ErrUnsupported is returned when the connected platform lacks a capability.
// Callers degrade silently; this is never surfaced to the user.
var ErrUnsupported = errors.New("platform: capability unsupported")

// Capabilities is the typed record produced by the startup probe. It is
// consulted thereafter instead of repeated feature checks at call sites.
type Capabilities struct {
	Reachability  bool
	InstallPrompt bool
	Worker        bool
	Notifications bool
}

// InstallPrompt is the captured one-shot install capability. Show replays it
// exactly once; a second call fails with ErrPromptConsumed.
type InstallPrompt interface {
	Token() string
	// Show presents the prompt and resolves with the user's binary decision.
	// The capability is spent regardless of outcome.
	Show(ctx context.Context) (accepted bool, err error)
}

// ErrPromptConsumed signals a replay of an already-spent install capability.
var ErrPromptConsumed = errors.New("platform: install prompt already consumed")

// ErrBacklog signals that an inbound event was rejected because its channel
// buffer is full, typically because no run loop is consuming yet. The client
// retries after attaching.
var ErrBacklog = errors.New("platform: event backlog full")

// WorkerEvent reports that a new worker version finished installing.
// HasController distinguishes an update (controller already active) from a
// first install.
type WorkerEvent struct {
	HasController bool
}

// Platform is the capability surface consumed by the lifecycle controller.
// Event channels deliver signals in platform order; each channel has exactly
// one consumer (the controller's run loop).
type Platform interface {
	// Probe reports the capability record. Read once at controller startup.
	Probe() Capabilities
	// Online reads the live reachability flag synchronously.
	Online() bool
	// Standalone reports whether the app already runs in installed
	// display mode. Read once at startup to seed the installed flag.
	Standalone() bool

	ReachabilityEvents() <-chan bool
	InstallPromptEvents() <-chan InstallPrompt
	InstalledEvents() <-chan struct{}
	WorkerEvents() <-chan WorkerEvent
	InteractionEvents() <-chan struct{}

	// RegisterWorker registers the background worker and reports whether a
	// new version is already waiting. Returns ErrUnsupported when the
	// platform has no worker capability.
	RegisterWorker(ctx context.Context) (waiting bool, err error)
	// SkipWaiting promotes the waiting worker and resolves once the active
	// controller has changed.
	SkipWaiting(ctx context.Context) error
	// Reload issues the page reload that completes an activation.
	Reload() error

	// RequestPermission presents the notification permission prompt and
	// resolves with the user's tri-state answer.
	RequestPermission(ctx context.Context) (types.Permission, error)
	// Notify displays a notification. Best effort; ErrUnsupported when the
	// capability is absent.
	Notify(title, body string) error
}

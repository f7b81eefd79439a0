package platform

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"vaultd/pkg/types"
)

// eventBuf bounds each inbound event channel. Platform events are small and
// ordered; the buffer only absorbs bursts within one client round-trip.
const eventBuf = 16

// Bridge is the Platform implementation backing the daemon: a connected
// client forwards browser events via Apply and receives Directive commands
// on the Directives channel. Tests drive it the same way the HTTP layer does.
type Bridge struct {
	mu            sync.Mutex
	caps          Capabilities
	online        bool
	standalone    bool
	workerWaiting bool
	registered    bool
	registerErr   error

	reach        chan bool
	prompts      chan InstallPrompt
	installed    chan struct{}
	worker       chan WorkerEvent
	interactions chan struct{}
	directives   chan types.Directive

	promptWaiters map[string]chan promptResult
	permWaiter    chan types.Permission
	ctrlWaiter    chan struct{}

	// reachSubs counts how many times the reachability channel was handed
	// out; the controller must subscribe exactly once per process.
	reachSubs int
}

type promptResult struct {
	accepted bool
}

// NewBridge constructs a detached bridge. Capabilities arrive via Hello.
func NewBridge() *Bridge {
	return &Bridge{
		reach:         make(chan bool, eventBuf),
		prompts:       make(chan InstallPrompt, eventBuf),
		installed:     make(chan struct{}, eventBuf),
		worker:        make(chan WorkerEvent, eventBuf),
		interactions:  make(chan struct{}, eventBuf),
		directives:    make(chan types.Directive, eventBuf),
		promptWaiters: make(map[string]chan promptResult),
	}
}

// Hello records the attaching client's declared capabilities and seed state.
func (b *Bridge) Hello(req types.HelloRequest) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.caps = Capabilities{
		Reachability:  req.Reachability,
		InstallPrompt: req.InstallPrompt,
		Worker:        req.Worker,
		Notifications: req.Notifications,
	}
	b.online = req.Online
	b.standalone = req.Standalone
}

func (b *Bridge) Probe() Capabilities {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.caps
}

func (b *Bridge) Online() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.online
}

func (b *Bridge) Standalone() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.standalone
}

func (b *Bridge) ReachabilityEvents() <-chan bool {
	b.mu.Lock()
	b.reachSubs++
	b.mu.Unlock()
	return b.reach
}

// ReachabilitySubscriptions reports how many times the reachability channel
// was requested. Used by tests to assert single registration.
func (b *Bridge) ReachabilitySubscriptions() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.reachSubs
}

func (b *Bridge) InstallPromptEvents() <-chan InstallPrompt { return b.prompts }
func (b *Bridge) InstalledEvents() <-chan struct{}          { return b.installed }
func (b *Bridge) WorkerEvents() <-chan WorkerEvent          { return b.worker }
func (b *Bridge) InteractionEvents() <-chan struct{}        { return b.interactions }

// Directives is the outbound command stream consumed by the client's event
// stream handler.
func (b *Bridge) Directives() <-chan types.Directive { return b.directives }

// Navigate pushes an imperative client-side navigation. Used as the
// gatekeeper's redirect sink.
func (b *Bridge) Navigate(target string) {
	b.push(types.Directive{Kind: "navigate", Target: target})
}

// SetRegisterError forces RegisterWorker to fail. Test hook mirroring a
// registration rejection from the platform.
func (b *Bridge) SetRegisterError(err error) {
	b.mu.Lock()
	b.registerErr = err
	b.mu.Unlock()
}

func (b *Bridge) RegisterWorker(ctx context.Context) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.caps.Worker {
		return false, ErrUnsupported
	}
	if b.registerErr != nil {
		return false, b.registerErr
	}
	b.registered = true
	return b.workerWaiting, nil
}

func (b *Bridge) SkipWaiting(ctx context.Context) error {
	b.mu.Lock()
	if !b.caps.Worker {
		b.mu.Unlock()
		return ErrUnsupported
	}
	wait := make(chan struct{}, 1)
	b.ctrlWaiter = wait
	b.mu.Unlock()
	b.push(types.Directive{Kind: "skip_waiting"})
	select {
	case <-wait:
		return nil
	case <-ctx.Done():
		b.mu.Lock()
		b.ctrlWaiter = nil
		b.mu.Unlock()
		return ctx.Err()
	}
}

func (b *Bridge) Reload() error {
	b.push(types.Directive{Kind: "reload"})
	return nil
}

func (b *Bridge) RequestPermission(ctx context.Context) (types.Permission, error) {
	b.mu.Lock()
	if !b.caps.Notifications {
		b.mu.Unlock()
		return types.PermissionDenied, ErrUnsupported
	}
	wait := make(chan types.Permission, 1)
	b.permWaiter = wait
	b.mu.Unlock()
	b.push(types.Directive{Kind: "request_permission"})
	select {
	case p := <-wait:
		return p, nil
	case <-ctx.Done():
		b.mu.Lock()
		b.permWaiter = nil
		b.mu.Unlock()
		return types.PermissionDefault, ctx.Err()
	}
}

func (b *Bridge) Notify(title, body string) error {
	b.mu.Lock()
	ok := b.caps.Notifications
	b.mu.Unlock()
	if !ok {
		return ErrUnsupported
	}
	b.push(types.Directive{Kind: "show_notification", Title: title, Body: body})
	return nil
}

// relay sends an event without blocking. The inbound channels are drained by
// the controller's run loop; with no consumer attached the buffer absorbs a
// burst and anything past it is rejected rather than wedging the caller.
func relay[T any](ch chan<- T, v T) error {
	select {
	case ch <- v:
		return nil
	default:
		return ErrBacklog
	}
}

// Apply dispatches one forwarded platform event. Events are applied in the
// order received; unknown kinds are rejected, and a full event buffer is
// reported as ErrBacklog instead of blocking the caller.
func (b *Bridge) Apply(ev types.PlatformEvent) error {
	switch ev.Kind {
	case "online":
		b.setOnline(true)
		return relay(b.reach, true)
	case "offline":
		b.setOnline(false)
		return relay(b.reach, false)
	case "install_prompt":
		token := ev.Token
		if token == "" {
			token = uuid.NewString()
		}
		return relay[InstallPrompt](b.prompts, &bridgePrompt{b: b, token: token})
	case "installed":
		return relay(b.installed, struct{}{})
	case "worker_installed":
		return relay(b.worker, WorkerEvent{HasController: ev.HasController})
	case "worker_waiting":
		b.mu.Lock()
		registered := b.registered
		b.workerWaiting = true
		b.mu.Unlock()
		// A worker waiting after registration is an update with an active
		// controller; before registration it is reported via RegisterWorker.
		if registered {
			return relay(b.worker, WorkerEvent{HasController: true})
		}
	case "controller_change":
		b.mu.Lock()
		wait := b.ctrlWaiter
		b.ctrlWaiter = nil
		b.mu.Unlock()
		if wait != nil {
			wait <- struct{}{}
		}
	case "prompt_result":
		b.mu.Lock()
		wait := b.promptWaiters[ev.Token]
		delete(b.promptWaiters, ev.Token)
		b.mu.Unlock()
		if wait == nil {
			return fmt.Errorf("no pending prompt for token %q", ev.Token)
		}
		wait <- promptResult{accepted: ev.Accepted}
	case "permission_result":
		b.mu.Lock()
		wait := b.permWaiter
		b.permWaiter = nil
		b.mu.Unlock()
		if wait == nil {
			return fmt.Errorf("no pending permission request")
		}
		wait <- ev.Permission
	case "interaction":
		return relay(b.interactions, struct{}{})
	default:
		return fmt.Errorf("unknown platform event kind %q", ev.Kind)
	}
	return nil
}

func (b *Bridge) setOnline(v bool) {
	b.mu.Lock()
	b.online = v
	b.mu.Unlock()
}

// push sends a directive without blocking. A detached client resynchronizes
// from the snapshot stream, so dropping under backpressure is safe.
func (b *Bridge) push(d types.Directive) {
	select {
	case b.directives <- d:
	default:
	}
}

// bridgePrompt is the affine install capability handed to the tracker.
type bridgePrompt struct {
	b        *Bridge
	token    string
	mu       sync.Mutex
	consumed bool
}

func (p *bridgePrompt) Token() string { return p.token }

func (p *bridgePrompt) Show(ctx context.Context) (bool, error) {
	p.mu.Lock()
	if p.consumed {
		p.mu.Unlock()
		return false, ErrPromptConsumed
	}
	p.consumed = true
	p.mu.Unlock()

	wait := make(chan promptResult, 1)
	p.b.mu.Lock()
	p.b.promptWaiters[p.token] = wait
	p.b.mu.Unlock()
	p.b.push(types.Directive{Kind: "show_install_prompt", Token: p.token})
	select {
	case res := <-wait:
		return res.accepted, nil
	case <-ctx.Done():
		p.b.mu.Lock()
		delete(p.b.promptWaiters, p.token)
		p.b.mu.Unlock()
		return false, ctx.Err()
	}
}

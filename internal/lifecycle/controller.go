package lifecycle

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"vaultd/internal/platform"
	"vaultd/pkg/types"
)

// Controller is the process-wide lifecycle state. One instance per process;
// UI consumers share it read-only via Subscribe/Snapshot, and only the run
// loop and the imperative actions mutate it, each owning its own slice of
// state.
type Controller struct {
	mu        sync.RWMutex
	cfg       Config
	platform  platform.Platform
	log       zerolog.Logger
	publisher EventPublisher

	caps    platform.Capabilities
	started bool

	// connectivity slice
	online bool

	// installability slice
	installed        bool
	pending          platform.InstallPrompt
	installDismissed bool

	// update slice
	phase          UpdatePhase
	critical       bool
	progress       int
	updateMuted    bool
	postponedUntil time.Time
	dismissSeq     uint64
	postponeTimer  *time.Timer
	autoTimer      *time.Timer

	// permission slice
	permission    types.Permission
	permInFlight  bool
	permAutoFired bool
	permTimer     *time.Timer

	// orchestration
	subs      map[int]chan types.Snapshot
	nextSub   int
	startOnce sync.Once
	runCancel context.CancelFunc
	lastErr   string
	startTime time.Time

	activationsTotal uint64
	dismissalsTotal  uint64
}

// Start probes the platform, seeds initial state, registers the worker and
// launches the run loop. Idempotent: repeated calls (one per attaching UI
// scope) initialize exactly once.
func (c *Controller) Start(ctx context.Context) {
	c.startOnce.Do(func() {
		runCtx, cancel := context.WithCancel(ctx)

		c.mu.Lock()
		c.caps = c.platform.Probe()
		// Without a reachability capability there is no offline signal to
		// honor; assume online rather than wedging offline-aware screens.
		c.online = true
		if c.caps.Reachability {
			c.online = c.platform.Online()
		}
		c.installed = c.platform.Standalone()
		c.runCancel = cancel
		c.started = true
		c.mu.Unlock()

		c.publisher.Publish(Event{Name: "start", Fields: map[string]any{
			"online": c.online, "installed": c.installed,
		}})

		c.registerWorker(runCtx)
		c.armPermissionDelay(runCtx)
		go c.run(runCtx)
	})
}

// Ready reports whether the controller has completed its startup probe and
// has not been closed.
func (c *Controller) Ready() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.started
}

// Close stops the run loop, timers and subscriber channels. The controller
// cannot be restarted.
func (c *Controller) Close() error {
	c.mu.Lock()
	c.started = false
	if c.runCancel != nil {
		c.runCancel()
		c.runCancel = nil
	}
	for _, t := range []*time.Timer{c.postponeTimer, c.autoTimer, c.permTimer} {
		if t != nil {
			t.Stop()
		}
	}
	subs := c.subs
	c.subs = make(map[int]chan types.Snapshot)
	c.mu.Unlock()
	for _, ch := range subs {
		close(ch)
	}
	return nil
}

func (c *Controller) setLastErr(err error) {
	c.mu.Lock()
	c.lastErr = err.Error()
	c.mu.Unlock()
}

package lifecycle

import (
	"context"

	"vaultd/pkg/types"
)

// run is the single consumer of every platform event channel. Each channel is
// requested exactly once here, regardless of how many UI scopes attach and
// detach, and mutations are applied in platform delivery order.
func (c *Controller) run(ctx context.Context) {
	reach := c.platform.ReachabilityEvents()
	prompts := c.platform.InstallPromptEvents()
	installed := c.platform.InstalledEvents()
	worker := c.platform.WorkerEvents()
	interactions := c.platform.InteractionEvents()

	for {
		select {
		case v := <-reach:
			c.applyOnline(v)
		case p := <-prompts:
			c.capturePrompt(p)
		case <-installed:
			c.applyInstalled()
		case we := <-worker:
			c.workerInstalled(ctx, we)
		case <-interactions:
			c.onInteraction(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// Subscribe attaches a snapshot consumer. The returned channel is primed with
// the current state and receives every subsequent change; cancel detaches it.
// Attaching and detaching never touches platform listeners.
func (c *Controller) Subscribe() (<-chan types.Snapshot, func()) {
	ch := make(chan types.Snapshot, 8)
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = ch
	snap := c.snapshotLocked()
	c.mu.Unlock()
	ch <- snap
	subscribersGauge.Set(float64(c.Subscribers()))
	cancel := func() {
		c.mu.Lock()
		sub, ok := c.subs[id]
		delete(c.subs, id)
		c.mu.Unlock()
		if ok {
			close(sub)
		}
		subscribersGauge.Set(float64(c.Subscribers()))
	}
	return ch, cancel
}

// Subscribers reports the number of attached snapshot consumers.
func (c *Controller) Subscribers() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.subs)
}

// broadcast fans the current snapshot out to all subscribers. Sends never
// block: a slow subscriber misses intermediate states and catches up on the
// next change. Callers must not hold mu.
func (c *Controller) broadcast() {
	c.mu.RLock()
	snap := c.snapshotLocked()
	for _, ch := range c.subs {
		select {
		case ch <- snap:
		default:
		}
	}
	c.mu.RUnlock()
}

// activePromptLocked decides which prompt the UI may surface. Update takes
// priority over install; a suppressed update prompt (muted or within its
// postpone window) yields the slot to install.
func (c *Controller) activePromptLocked() string {
	if c.phase == PhaseUpdateDetected && !c.updateSuppressedLocked() {
		return "update"
	}
	if c.phase == PhaseActivating {
		return ""
	}
	if c.pending != nil && !c.installed && !c.installDismissed {
		return "install"
	}
	return ""
}

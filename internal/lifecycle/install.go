package lifecycle

import (
	"context"
	"errors"

	"vaultd/internal/platform"
)

// capturePrompt stores the one-shot install capability. The platform requires
// explicit preservation before the prompt can be replayed; holding it here is
// what makes the app installable.
func (c *Controller) capturePrompt(p platform.InstallPrompt) {
	c.mu.Lock()
	if c.installed {
		// Already installed; a stray capability has nothing to offer.
		c.mu.Unlock()
		return
	}
	c.pending = p
	c.mu.Unlock()
	signalsTotal.WithLabelValues("install_prompt").Inc()
	c.publisher.Publish(Event{Name: "install_capability", Fields: map[string]any{"token": p.Token()}})
	c.broadcast()
}

// takePrompt consumes the capability slot atomically: the caller gets the
// capability and the slot is cleared in one step, so the same token can never
// be replayed twice.
func (c *Controller) takePrompt() platform.InstallPrompt {
	c.mu.Lock()
	defer c.mu.Unlock()
	p := c.pending
	c.pending = nil
	return p
}

// TriggerInstall replays the captured install capability exactly once and
// awaits the user's binary decision. The capability is invalidated regardless
// of outcome; a new one must be captured before another attempt.
func (c *Controller) TriggerInstall(ctx context.Context) (bool, error) {
	p := c.takePrompt()
	if p == nil {
		return false, ErrNoCapability()
	}
	c.broadcast() // installable flipped false the moment the slot was consumed
	c.publisher.Publish(Event{Name: "install_prompt_show", Fields: map[string]any{"token": p.Token()}})

	accepted, err := p.Show(ctx)
	if err != nil {
		if errors.Is(err, platform.ErrPromptConsumed) {
			// Cannot happen while the slot discipline holds; warn, don't crash.
			c.log.Warn().Str("token", p.Token()).Msg("install prompt replayed after consumption")
			return false, nil
		}
		// A rejected prompt promise is indistinguishable from a dismissal.
		accepted = false
	}
	c.mu.Lock()
	if !accepted {
		c.installDismissed = true
	}
	c.mu.Unlock()
	outcome := "dismissed"
	if accepted {
		outcome = "accepted"
	}
	promptOutcomes.WithLabelValues("install", outcome).Inc()
	c.publisher.Publish(Event{Name: "install_prompt_result", Fields: map[string]any{"accepted": accepted}})
	c.broadcast()
	return accepted, nil
}

// applyInstalled handles the platform's installed confirmation: installed is
// monotonic and any pending capability is cleared.
func (c *Controller) applyInstalled() {
	c.mu.Lock()
	c.installed = true
	c.pending = nil
	c.mu.Unlock()
	signalsTotal.WithLabelValues("installed").Inc()
	c.publisher.Publish(Event{Name: "installed", Fields: map[string]any{}})
	c.log.Info().Msg("app installed")
	c.broadcast()
}

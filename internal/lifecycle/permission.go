package lifecycle

import (
	"context"
	"errors"
	"time"

	"vaultd/internal/platform"
	"vaultd/pkg/types"
)

// RequestNotificationPermission asks the platform for notification
// authorization. A cached denial is terminal: the user is never re-prompted
// automatically. Without the capability it returns denied immediately and
// silently.
func (c *Controller) RequestNotificationPermission(ctx context.Context) (types.Permission, error) {
	c.mu.Lock()
	if c.permission == types.PermissionDenied {
		c.mu.Unlock()
		return types.PermissionDenied, nil
	}
	if !c.caps.Notifications {
		c.permission = types.PermissionDenied
		c.mu.Unlock()
		return types.PermissionDenied, nil
	}
	if c.permInFlight {
		// One prompt at a time; the concurrent caller reads the current value.
		p := c.permission
		c.mu.Unlock()
		return p, nil
	}
	c.permInFlight = true
	c.mu.Unlock()

	p, err := c.platform.RequestPermission(ctx)
	c.mu.Lock()
	c.permInFlight = false
	if err != nil {
		if errors.Is(err, platform.ErrUnsupported) {
			c.permission = types.PermissionDenied
		}
		// A rejected prompt promise stays at default: the user neither
		// granted nor denied.
		p = c.permission
		c.mu.Unlock()
		c.broadcast()
		return p, nil
	}
	c.permission = p
	c.mu.Unlock()
	promptOutcomes.WithLabelValues("permission", string(p)).Inc()
	c.publisher.Publish(Event{Name: "permission_result", Fields: map[string]any{"permission": string(p)}})
	c.broadcast()
	return p, nil
}

// armPermissionDelay schedules the deferred automatic permission prompt:
// whichever comes first of a first user interaction or the configured delay,
// never before, so the user has context for the ask.
func (c *Controller) armPermissionDelay(ctx context.Context) {
	if !c.caps.Notifications {
		return
	}
	c.mu.Lock()
	c.permTimer = time.AfterFunc(c.cfg.PermissionDelay, func() {
		c.autoRequestPermission(ctx)
	})
	c.mu.Unlock()
}

// onInteraction fires the deferred permission prompt on the first user
// interaction, ahead of the delay timer.
func (c *Controller) onInteraction(ctx context.Context) {
	signalsTotal.WithLabelValues("interaction").Inc()
	c.autoRequestPermission(ctx)
}

func (c *Controller) autoRequestPermission(ctx context.Context) {
	c.mu.Lock()
	if c.permAutoFired || c.permission != types.PermissionDefault {
		c.mu.Unlock()
		return
	}
	c.permAutoFired = true
	if c.permTimer != nil {
		c.permTimer.Stop()
	}
	c.mu.Unlock()
	go func() {
		if _, err := c.RequestNotificationPermission(ctx); err != nil {
			c.log.Debug().Err(err).Msg("deferred permission request failed")
		}
	}()
}

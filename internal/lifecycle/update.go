package lifecycle

import (
	"context"
	"errors"
	"time"

	"vaultd/internal/platform"
)

// activationSteps is the scripted progress sequence shown while a new worker
// activates. UI feedback only; the authoritative completion signal is the
// issued reload.
var activationSteps = []int{10, 25, 40, 60, 80, 95}

// registerWorker drives Unregistered → Registering → Registered. Registration
// is skipped without a worker capability and suppressed outside production
// builds; a registration error is logged and the app stays usable without
// update capability.
func (c *Controller) registerWorker(ctx context.Context) {
	if !c.caps.Worker {
		return
	}
	if !c.cfg.Production {
		c.log.Debug().Msg("worker registration suppressed outside production")
		return
	}
	c.setPhase(PhaseRegistering)
	waiting, err := c.platform.RegisterWorker(ctx)
	if err != nil {
		c.setPhase(PhaseUnregistered)
		c.setLastErr(err)
		c.publisher.Publish(Event{Name: "register_failed", Fields: map[string]any{"err": err.Error()}})
		c.log.Error().Err(err).Msg("worker registration failed")
		return
	}
	c.setPhase(PhaseRegistered)
	c.publisher.Publish(Event{Name: "registered", Fields: map[string]any{"waiting": waiting}})
	if waiting {
		// A worker was already waiting at registration time; the tab was
		// likely backgrounded while it installed.
		c.detectUpdate(ctx)
	}
}

// workerInstalled handles a newly installed worker version. With an active
// controller present this is an update; otherwise it is the first install and
// there is nothing to prompt for.
func (c *Controller) workerInstalled(ctx context.Context, we platform.WorkerEvent) {
	signalsTotal.WithLabelValues("worker").Inc()
	if !we.HasController {
		c.log.Debug().Msg("worker installed for the first time")
		return
	}
	c.detectUpdate(ctx)
}

// detectUpdate transitions to UpdateDetected and, under the auto-update
// preference, schedules activation after the grace delay.
func (c *Controller) detectUpdate(ctx context.Context) {
	c.mu.Lock()
	if c.phase != PhaseRegistered {
		// Either a duplicate detection (the pending update already covers
		// it) or a worker signal without a registered worker, such as a
		// stale event in a build where registration is suppressed.
		c.mu.Unlock()
		return
	}
	c.phase = PhaseUpdateDetected
	c.critical = c.cfg.CriticalUpdates
	c.progress = 0
	auto := c.cfg.AutoUpdate
	if auto {
		c.autoTimer = time.AfterFunc(c.cfg.AutoUpdateGrace, func() {
			if err := c.ApplyUpdate(ctx); err != nil {
				c.log.Error().Err(err).Msg("auto update activation failed")
			}
		})
	}
	c.mu.Unlock()
	phaseTransitions.WithLabelValues(string(PhaseUpdateDetected)).Inc()
	c.publisher.Publish(Event{Name: "update_detected", Fields: map[string]any{
		"critical": c.cfg.CriticalUpdates, "auto": auto,
	}})
	c.log.Info().Bool("auto", auto).Msg("update detected")
	c.broadcast()
}

// ApplyUpdate runs UpdateDetected → Activating → Activated: the scripted
// progress steps, the skip-waiting handshake, and the reload. The whole
// sequence is bounded by the activation timeout; on failure the phase reverts
// to UpdateDetected and the error is retryable.
func (c *Controller) ApplyUpdate(ctx context.Context) error {
	c.mu.Lock()
	if c.phase != PhaseUpdateDetected {
		phase := c.phase
		c.mu.Unlock()
		return noUpdateError{phase: phase}
	}
	c.phase = PhaseActivating
	c.progress = 0
	c.activationsTotal++
	c.mu.Unlock()
	phaseTransitions.WithLabelValues(string(PhaseActivating)).Inc()
	c.publisher.Publish(Event{Name: "activate_start", Fields: map[string]any{}})
	c.broadcast()

	actCtx, cancel := context.WithTimeout(ctx, c.cfg.ActivationTimeout)
	defer cancel()
	if err := c.runActivation(actCtx); err != nil {
		c.mu.Lock()
		c.phase = PhaseUpdateDetected
		c.progress = 0
		c.lastErr = err.Error()
		c.mu.Unlock()
		promptOutcomes.WithLabelValues("update", "failed").Inc()
		c.publisher.Publish(Event{Name: "activate_failed", Fields: map[string]any{"err": err.Error()}})
		c.log.Error().Err(err).Msg("update activation failed")
		// Retryable failure toast; silently skipped without the capability.
		if nerr := c.platform.Notify("Update failed", "The update could not be applied. Try again."); nerr != nil && !errors.Is(nerr, platform.ErrUnsupported) {
			c.log.Debug().Err(nerr).Msg("failure notification not shown")
		}
		c.broadcast()
		return activationTimeoutError{cause: err}
	}

	c.mu.Lock()
	c.phase = PhaseActivated
	c.progress = 100
	c.mu.Unlock()
	phaseTransitions.WithLabelValues(string(PhaseActivated)).Inc()
	promptOutcomes.WithLabelValues("update", "activated").Inc()
	c.publisher.Publish(Event{Name: "activate_done", Fields: map[string]any{}})
	c.log.Info().Msg("update activated, reload issued")
	c.broadcast()
	return nil
}

func (c *Controller) runActivation(ctx context.Context) error {
	for _, pct := range activationSteps {
		select {
		case <-time.After(c.cfg.ActivationStep):
		case <-ctx.Done():
			return ctx.Err()
		}
		c.mu.Lock()
		c.progress = pct
		c.mu.Unlock()
		c.broadcast()
	}
	if err := c.platform.SkipWaiting(ctx); err != nil {
		return err
	}
	return c.platform.Reload()
}

// DismissUpdate postpones or mutes the pending update prompt. Critical
// updates cannot be dismissed. A postponed prompt re-arms after the
// configured interval unless a newer dismissal supersedes it; the
// postponement itself is session-scoped (see PostponeReset).
func (c *Controller) DismissUpdate(mode DismissMode) error {
	c.mu.Lock()
	if c.phase != PhaseUpdateDetected {
		phase := c.phase
		c.mu.Unlock()
		return noUpdateError{phase: phase}
	}
	if c.critical {
		c.mu.Unlock()
		return criticalUpdateError{}
	}
	switch mode {
	case DismissMute:
		c.updateMuted = true
	case DismissPostpone:
		c.dismissSeq++
		seq := c.dismissSeq
		c.postponedUntil = time.Now().Add(c.cfg.PostponeInterval)
		if c.postponeTimer != nil {
			c.postponeTimer.Stop()
		}
		c.postponeTimer = time.AfterFunc(c.cfg.PostponeInterval, func() {
			c.rearmUpdatePrompt(seq)
		})
	default:
		c.mu.Unlock()
		return noUpdateError{phase: PhaseUpdateDetected}
	}
	c.dismissalsTotal++
	c.mu.Unlock()
	promptOutcomes.WithLabelValues("update", string(mode)).Inc()
	c.publisher.Publish(Event{Name: "update_dismissed", Fields: map[string]any{"mode": string(mode)}})
	c.broadcast()
	return nil
}

// rearmUpdatePrompt re-surfaces a postponed prompt, but only if no newer
// dismissal happened in the interim and the update is still pending.
func (c *Controller) rearmUpdatePrompt(seq uint64) {
	c.mu.Lock()
	if c.dismissSeq != seq || c.phase != PhaseUpdateDetected || c.updateMuted {
		c.mu.Unlock()
		return
	}
	c.postponedUntil = time.Time{}
	c.mu.Unlock()
	c.publisher.Publish(Event{Name: "update_reprompt", Fields: map[string]any{}})
	c.broadcast()
}

// updateSuppressedLocked reports whether the update prompt is currently
// quiet: muted for the session or inside its postpone window.
func (c *Controller) updateSuppressedLocked() bool {
	if c.updateMuted {
		return true
	}
	return time.Now().Before(c.postponedUntil)
}

func (c *Controller) setPhase(p UpdatePhase) {
	c.mu.Lock()
	c.phase = p
	c.mu.Unlock()
	phaseTransitions.WithLabelValues(string(p)).Inc()
	c.broadcast()
}

package lifecycle

import (
	"context"
	"errors"
	"testing"
	"time"

	"vaultd/internal/platform"
	"vaultd/pkg/types"
)

func TestRegistrationFlow(t *testing.T) {
	c, _ := newTestController(t, allCaps(), nil)
	c.Start(startCtx(t))
	if got := c.Phase(); got != PhaseRegistered {
		t.Fatalf("phase=%s, want registered", got)
	}
}

func TestRegistrationSuppressedOutsideProduction(t *testing.T) {
	c, _ := newTestController(t, allCaps(), func(cfg *Config) { cfg.Production = false })
	c.Start(startCtx(t))
	if got := c.Phase(); got != PhaseUnregistered {
		t.Fatalf("phase=%s, want unregistered", got)
	}
}

func TestRegistrationFailureIsNonFatal(t *testing.T) {
	c, b := newTestController(t, allCaps(), nil)
	b.SetRegisterError(errors.New("registration rejected"))
	c.Start(startCtx(t))
	if got := c.Phase(); got != PhaseUnregistered {
		t.Fatalf("phase=%s, want unregistered after failed registration", got)
	}
	if c.Status().LastError == "" {
		t.Fatalf("expected last error recorded")
	}
	// Gating-independent surfaces keep working.
	if !c.Ready() {
		t.Fatalf("controller must stay ready without a worker")
	}
}

func TestWaitingWorkerAtRegistrationDetectsUpdate(t *testing.T) {
	c, b := newTestController(t, allCaps(), nil)
	_ = b.Apply(types.PlatformEvent{Kind: "worker_waiting"})
	c.Start(startCtx(t))
	waitFor(t, "update detected", func() bool { return c.Phase() == PhaseUpdateDetected })
	if !c.Snapshot().UpdateAvailable {
		t.Fatalf("snapshot should expose the pending update")
	}
}

func TestWorkerSignalWithoutRegistrationIgnored(t *testing.T) {
	c, b := newTestController(t, allCaps(), func(cfg *Config) { cfg.Production = false })
	c.Start(startCtx(t))
	if got := c.Phase(); got != PhaseUnregistered {
		t.Fatalf("phase=%s, want unregistered", got)
	}
	// No registered worker to update; the signal must not skip the
	// registered stage of the state machine.
	_ = b.Apply(types.PlatformEvent{Kind: "worker_installed", HasController: true})
	time.Sleep(20 * time.Millisecond)
	if got := c.Phase(); got != PhaseUnregistered {
		t.Fatalf("phase=%s after stray worker signal, want unregistered", got)
	}
	if c.Snapshot().UpdateAvailable {
		t.Fatalf("update advertised without a registered worker")
	}
}

func TestFirstInstallDoesNotPrompt(t *testing.T) {
	c, b := newTestController(t, allCaps(), nil)
	c.Start(startCtx(t))
	_ = b.Apply(types.PlatformEvent{Kind: "worker_installed", HasController: false})
	// Give the run loop a beat; the phase must not move.
	time.Sleep(20 * time.Millisecond)
	if got := c.Phase(); got != PhaseRegistered {
		t.Fatalf("phase=%s, first install is not an update", got)
	}
}

func detectUpdateFor(t *testing.T, c *Controller, b *platform.Bridge) {
	t.Helper()
	if err := b.Apply(types.PlatformEvent{Kind: "worker_installed", HasController: true}); err != nil {
		t.Fatalf("worker event: %v", err)
	}
	waitFor(t, "update detected", func() bool { return c.Phase() == PhaseUpdateDetected })
}

func TestApplyUpdateHappyPath(t *testing.T) {
	c, b := newTestController(t, allCaps(), nil)
	answerSkipWaiting(t, b)
	c.Start(startCtx(t))
	detectUpdateFor(t, c, b)

	if err := c.ApplyUpdate(context.Background()); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if got := c.Phase(); got != PhaseActivated {
		t.Fatalf("phase=%s, want activated", got)
	}
	snap := c.Snapshot()
	if snap.UpdateAvailable || snap.Activating {
		t.Fatalf("activated snapshot still advertises the update: %+v", snap)
	}
	if snap.ProgressPercent != 100 {
		t.Fatalf("progress=%d, want 100", snap.ProgressPercent)
	}
}

func TestApplyUpdateWithoutDetection(t *testing.T) {
	c, _ := newTestController(t, allCaps(), nil)
	c.Start(startCtx(t))
	err := c.ApplyUpdate(context.Background())
	if !IsNoUpdate(err) {
		t.Fatalf("expected NoUpdate from phase %s, got %v", c.Phase(), err)
	}
}

func TestActivationTimeoutRevertsAndRetries(t *testing.T) {
	c, b := newTestController(t, allCaps(), func(cfg *Config) {
		cfg.ActivationTimeout = 50 * time.Millisecond
	})
	// No skip_waiting responder: the handshake stalls until the bound.
	c.Start(startCtx(t))
	detectUpdateFor(t, c, b)

	err := c.ApplyUpdate(context.Background())
	if !IsActivationTimeout(err) {
		t.Fatalf("expected ActivationTimeout, got %v", err)
	}
	if got := c.Phase(); got != PhaseUpdateDetected {
		t.Fatalf("phase=%s, want update_detected after failure", got)
	}
	if c.Snapshot().Activating {
		t.Fatalf("snapshot stuck in activating")
	}

	// The failure is retryable.
	answerSkipWaiting(t, b)
	c.mu.Lock()
	c.cfg.ActivationTimeout = 2 * time.Second
	c.mu.Unlock()
	if err := c.ApplyUpdate(context.Background()); err != nil {
		t.Fatalf("retry: %v", err)
	}
}

func TestAutoUpdateActivatesAfterGrace(t *testing.T) {
	c, b := newTestController(t, allCaps(), func(cfg *Config) { cfg.AutoUpdate = true })
	answerSkipWaiting(t, b)
	c.Start(startCtx(t))
	detectUpdateFor(t, c, b)
	waitFor(t, "auto activation", func() bool { return c.Phase() == PhaseActivated })
}

func TestNoActivationWithoutExplicitApply(t *testing.T) {
	c, b := newTestController(t, allCaps(), nil)
	c.Start(startCtx(t))
	detectUpdateFor(t, c, b)
	// Longer than the auto-update grace would have been.
	time.Sleep(50 * time.Millisecond)
	if got := c.Phase(); got != PhaseUpdateDetected {
		t.Fatalf("phase=%s, update must wait for ApplyUpdate", got)
	}
}

func TestDismissPostponeAndRearm(t *testing.T) {
	c, b := newTestController(t, allCaps(), nil)
	c.Start(startCtx(t))
	detectUpdateFor(t, c, b)
	if got := c.Snapshot().ActivePrompt; got != "update" {
		t.Fatalf("active prompt=%q, want update", got)
	}

	if err := c.DismissUpdate(DismissPostpone); err != nil {
		t.Fatalf("dismiss: %v", err)
	}
	if got := c.Snapshot().ActivePrompt; got == "update" {
		t.Fatalf("prompt still shown inside postpone window")
	}
	// Re-arms no earlier than the interval, and does re-arm after it.
	waitFor(t, "reprompt", func() bool { return c.Snapshot().ActivePrompt == "update" })
}

func TestNewerDismissalSupersedesRearm(t *testing.T) {
	c, b := newTestController(t, allCaps(), func(cfg *Config) {
		cfg.PostponeInterval = 40 * time.Millisecond
	})
	c.Start(startCtx(t))
	detectUpdateFor(t, c, b)

	if err := c.DismissUpdate(DismissPostpone); err != nil {
		t.Fatalf("dismiss: %v", err)
	}
	time.Sleep(20 * time.Millisecond)
	if err := c.DismissUpdate(DismissPostpone); err != nil {
		t.Fatalf("second dismiss: %v", err)
	}
	// The first timer fires around t=40ms; the newer dismissal holds until ~60ms.
	time.Sleep(30 * time.Millisecond)
	if got := c.Snapshot().ActivePrompt; got == "update" {
		t.Fatalf("superseded re-arm resurfaced the prompt early")
	}
	waitFor(t, "second reprompt", func() bool { return c.Snapshot().ActivePrompt == "update" })
}

func TestDismissMuteSilencesForSession(t *testing.T) {
	c, b := newTestController(t, allCaps(), nil)
	c.Start(startCtx(t))
	detectUpdateFor(t, c, b)
	if err := c.DismissUpdate(DismissMute); err != nil {
		t.Fatalf("mute: %v", err)
	}
	if c.Snapshot().UpdateAvailable {
		t.Fatalf("snapshot still advertises a permanently dismissed update")
	}
	time.Sleep(50 * time.Millisecond) // past any postpone interval
	snap := c.Snapshot()
	if snap.ActivePrompt == "update" {
		t.Fatalf("muted prompt resurfaced")
	}
	if snap.UpdateAvailable {
		t.Fatalf("mute must clear the update flag for the session")
	}
	// The pending worker survives for an explicit apply; only the exposed
	// flag is cleared.
	if got := c.Status().UpdatePhase; got != string(PhaseUpdateDetected) {
		t.Fatalf("phase=%s after mute, want update_detected", got)
	}
}

func TestCriticalUpdateCannotBeDismissed(t *testing.T) {
	c, b := newTestController(t, allCaps(), func(cfg *Config) { cfg.CriticalUpdates = true })
	c.Start(startCtx(t))
	detectUpdateFor(t, c, b)
	for _, mode := range []DismissMode{DismissPostpone, DismissMute} {
		if err := c.DismissUpdate(mode); !IsCriticalUpdate(err) {
			t.Fatalf("mode %s: expected CriticalUpdate, got %v", mode, err)
		}
	}
}

func TestEventPublisherSeesUpdateLifecycle(t *testing.T) {
	pub := NewMemoryPublisher()
	c, b := newTestController(t, allCaps(), func(cfg *Config) { cfg.Publisher = pub })
	answerSkipWaiting(t, b)
	c.Start(startCtx(t))
	detectUpdateFor(t, c, b)
	if err := c.ApplyUpdate(context.Background()); err != nil {
		t.Fatalf("apply: %v", err)
	}
	want := map[string]bool{
		"start":           false,
		"registered":      false,
		"update_detected": false,
		"activate_start":  false,
		"activate_done":   false,
	}
	for _, e := range pub.Events() {
		if _, ok := want[e.Name]; ok {
			want[e.Name] = true
		}
	}
	for k, seen := range want {
		if !seen {
			t.Fatalf("expected event %q; got %+v", k, pub.Events())
		}
	}
}

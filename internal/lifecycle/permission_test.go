package lifecycle

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"vaultd/internal/platform"
	"vaultd/pkg/types"
)

// helper: answer request_permission directives with the given outcome and
// count how many prompts the client was shown.
func answerPermission(t *testing.T, b *platform.Bridge, perm types.Permission) *atomic.Int64 {
	t.Helper()
	var prompts atomic.Int64
	done := make(chan struct{})
	t.Cleanup(func() { close(done) })
	go func() {
		for {
			select {
			case d := <-b.Directives():
				if d.Kind == "request_permission" {
					prompts.Add(1)
					_ = b.Apply(types.PlatformEvent{Kind: "permission_result", Permission: perm})
				}
			case <-done:
				return
			}
		}
	}()
	return &prompts
}

func TestPermissionGranted(t *testing.T) {
	c, b := newTestController(t, allCaps(), nil)
	answerPermission(t, b, types.PermissionGranted)
	c.Start(startCtx(t))

	p, err := c.RequestNotificationPermission(context.Background())
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if p != types.PermissionGranted {
		t.Fatalf("permission=%s, want granted", p)
	}
	if got := c.Snapshot().Permission; got != types.PermissionGranted {
		t.Fatalf("snapshot permission=%s, want granted", got)
	}
}

func TestDeniedPermissionIsCached(t *testing.T) {
	c, b := newTestController(t, allCaps(), nil)
	prompts := answerPermission(t, b, types.PermissionDenied)
	c.Start(startCtx(t))

	if p, _ := c.RequestNotificationPermission(context.Background()); p != types.PermissionDenied {
		t.Fatalf("permission=%s, want denied", p)
	}
	// A cached denial short-circuits: no second platform prompt.
	if p, _ := c.RequestNotificationPermission(context.Background()); p != types.PermissionDenied {
		t.Fatalf("repeat permission=%s, want denied", p)
	}
	if got := prompts.Load(); got != 1 {
		t.Fatalf("platform prompted %d times, want 1", got)
	}
}

func TestNoNotificationCapabilityDeniesSilently(t *testing.T) {
	hello := allCaps()
	hello.Notifications = false
	c, _ := newTestController(t, hello, nil)
	c.Start(startCtx(t))

	p, err := c.RequestNotificationPermission(context.Background())
	if err != nil {
		t.Fatalf("request without capability must not error: %v", err)
	}
	if p != types.PermissionDenied {
		t.Fatalf("permission=%s, want denied", p)
	}
}

func TestInteractionFiresDeferredPrompt(t *testing.T) {
	c, b := newTestController(t, allCaps(), nil)
	answerPermission(t, b, types.PermissionGranted)
	c.Start(startCtx(t))

	// Helper config defers the timer far out; the interaction is what fires.
	if err := b.Apply(types.PlatformEvent{Kind: "interaction"}); err != nil {
		t.Fatalf("interaction: %v", err)
	}
	waitFor(t, "deferred prompt outcome", func() bool {
		return c.Snapshot().Permission == types.PermissionGranted
	})
}

func TestDeferredPromptFiresOnce(t *testing.T) {
	c, b := newTestController(t, allCaps(), nil)
	prompts := answerPermission(t, b, types.PermissionGranted)
	c.Start(startCtx(t))

	for i := 0; i < 3; i++ {
		if err := b.Apply(types.PlatformEvent{Kind: "interaction"}); err != nil {
			t.Fatalf("interaction: %v", err)
		}
	}
	waitFor(t, "prompt outcome", func() bool {
		return c.Snapshot().Permission == types.PermissionGranted
	})
	time.Sleep(20 * time.Millisecond)
	if got := prompts.Load(); got != 1 {
		t.Fatalf("platform prompted %d times, want 1", got)
	}
}

func TestDelayTimerFiresDeferredPrompt(t *testing.T) {
	c, b := newTestController(t, allCaps(), func(cfg *Config) {
		cfg.PermissionDelay = 10 * time.Millisecond
	})
	answerPermission(t, b, types.PermissionGranted)
	c.Start(startCtx(t))
	// No interaction at all; the delay alone triggers the ask.
	waitFor(t, "delayed prompt outcome", func() bool {
		return c.Snapshot().Permission == types.PermissionGranted
	})
}

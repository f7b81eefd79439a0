package lifecycle

import (
	"context"
	"testing"
	"time"

	"vaultd/internal/platform"
	"vaultd/pkg/types"
)

// helper: a bridge-backed controller with fast timings for tests.
func newTestController(t *testing.T, hello types.HelloRequest, mut func(*Config)) (*Controller, *platform.Bridge) {
	t.Helper()
	b := platform.NewBridge()
	b.Hello(hello)
	cfg := Config{
		Platform:          b,
		Production:        true,
		AutoUpdateGrace:   10 * time.Millisecond,
		PostponeInterval:  30 * time.Millisecond,
		ActivationTimeout: 2 * time.Second,
		ActivationStep:    time.Millisecond,
		PermissionDelay:   time.Hour, // tests trigger interaction explicitly
	}
	if mut != nil {
		mut(&cfg)
	}
	c := NewWithConfig(cfg)
	t.Cleanup(func() { _ = c.Close() })
	return c, b
}

func allCaps() types.HelloRequest {
	return types.HelloRequest{
		Reachability:  true,
		Online:        true,
		InstallPrompt: true,
		Worker:        true,
		Notifications: true,
	}
}

// helper: poll until cond holds or the deadline passes.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

// helper: answer skip_waiting directives with a controller change, so
// activations can complete.
func answerSkipWaiting(t *testing.T, b *platform.Bridge) {
	t.Helper()
	done := make(chan struct{})
	t.Cleanup(func() { close(done) })
	go func() {
		for {
			select {
			case d := <-b.Directives():
				if d.Kind == "skip_waiting" {
					_ = b.Apply(types.PlatformEvent{Kind: "controller_change"})
				}
			case <-done:
				return
			}
		}
	}()
}

func startCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return ctx
}

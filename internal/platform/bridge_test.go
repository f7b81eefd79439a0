package platform

import (
	"context"
	"errors"
	"testing"
	"time"

	"vaultd/pkg/types"
)

func helloAll() types.HelloRequest {
	return types.HelloRequest{
		Reachability:  true,
		Online:        true,
		InstallPrompt: true,
		Worker:        true,
		Notifications: true,
	}
}

func recvDirective(t *testing.T, b *Bridge) types.Directive {
	t.Helper()
	select {
	case d := <-b.Directives():
		return d
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for directive")
		return types.Directive{}
	}
}

func TestApplyUnknownKind(t *testing.T) {
	b := NewBridge()
	if err := b.Apply(types.PlatformEvent{Kind: "telepathy"}); err == nil {
		t.Fatal("expected error for unknown event kind")
	}
}

func TestApplyRejectsWhenBufferFull(t *testing.T) {
	b := NewBridge()
	b.Hello(helloAll())
	// No run loop consuming; the buffer absorbs a burst and the overflow is
	// rejected instead of blocking the caller.
	for i := 0; i < eventBuf; i++ {
		if err := b.Apply(types.PlatformEvent{Kind: "offline"}); err != nil {
			t.Fatalf("event %d: %v", i, err)
		}
	}
	if err := b.Apply(types.PlatformEvent{Kind: "offline"}); !errors.Is(err, ErrBacklog) {
		t.Fatalf("overflow err=%v, want ErrBacklog", err)
	}
	// Draining one slot re-admits events.
	<-b.ReachabilityEvents()
	if err := b.Apply(types.PlatformEvent{Kind: "online"}); err != nil {
		t.Fatalf("after drain: %v", err)
	}
}

func TestHelloSeedsCapabilitiesAndState(t *testing.T) {
	b := NewBridge()
	hello := helloAll()
	hello.Standalone = true
	b.Hello(hello)

	caps := b.Probe()
	if !caps.Reachability || !caps.InstallPrompt || !caps.Worker || !caps.Notifications {
		t.Fatalf("caps=%+v", caps)
	}
	if !b.Online() || !b.Standalone() {
		t.Fatalf("online=%v standalone=%v", b.Online(), b.Standalone())
	}
}

func TestPromptShowConsumesOnce(t *testing.T) {
	b := NewBridge()
	b.Hello(helloAll())
	if err := b.Apply(types.PlatformEvent{Kind: "install_prompt", Token: "tok-1"}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	p := <-b.InstallPromptEvents()
	if p.Token() != "tok-1" {
		t.Fatalf("token=%q", p.Token())
	}

	go func() {
		d := <-b.Directives()
		if d.Kind == "show_install_prompt" {
			_ = b.Apply(types.PlatformEvent{Kind: "prompt_result", Token: d.Token, Accepted: true})
		}
	}()
	accepted, err := p.Show(context.Background())
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	if !accepted {
		t.Fatal("prompt should report accepted")
	}

	if _, err := p.Show(context.Background()); !errors.Is(err, ErrPromptConsumed) {
		t.Fatalf("second show: %v, want ErrPromptConsumed", err)
	}
}

func TestPromptTokenGeneratedWhenMissing(t *testing.T) {
	b := NewBridge()
	b.Hello(helloAll())
	if err := b.Apply(types.PlatformEvent{Kind: "install_prompt"}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	p := <-b.InstallPromptEvents()
	if p.Token() == "" {
		t.Fatal("expected a generated token")
	}
}

func TestPromptResultWithoutPendingPrompt(t *testing.T) {
	b := NewBridge()
	if err := b.Apply(types.PlatformEvent{Kind: "prompt_result", Token: "ghost"}); err == nil {
		t.Fatal("expected error for unmatched prompt result")
	}
}

func TestRegisterWorkerWithoutCapability(t *testing.T) {
	b := NewBridge()
	b.Hello(types.HelloRequest{})
	if _, err := b.RegisterWorker(context.Background()); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("err=%v, want ErrUnsupported", err)
	}
}

func TestWorkerWaitingBeforeRegistration(t *testing.T) {
	b := NewBridge()
	b.Hello(helloAll())
	if err := b.Apply(types.PlatformEvent{Kind: "worker_waiting"}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	// Before registration the waiting worker is reported through
	// RegisterWorker, not the event channel.
	select {
	case we := <-b.WorkerEvents():
		t.Fatalf("unexpected worker event %+v", we)
	default:
	}
	waiting, err := b.RegisterWorker(context.Background())
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if !waiting {
		t.Fatal("register should report the waiting worker")
	}
}

func TestWorkerWaitingAfterRegistration(t *testing.T) {
	b := NewBridge()
	b.Hello(helloAll())
	if _, err := b.RegisterWorker(context.Background()); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := b.Apply(types.PlatformEvent{Kind: "worker_waiting"}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	select {
	case we := <-b.WorkerEvents():
		if !we.HasController {
			t.Fatalf("event=%+v, want controller present", we)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for worker event")
	}
}

func TestSkipWaitingHandshake(t *testing.T) {
	b := NewBridge()
	b.Hello(helloAll())
	go func() {
		d := <-b.Directives()
		if d.Kind == "skip_waiting" {
			_ = b.Apply(types.PlatformEvent{Kind: "controller_change"})
		}
	}()
	if err := b.SkipWaiting(context.Background()); err != nil {
		t.Fatalf("skip waiting: %v", err)
	}
}

func TestSkipWaitingHonorsContext(t *testing.T) {
	b := NewBridge()
	b.Hello(helloAll())
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := b.SkipWaiting(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err=%v, want deadline exceeded", err)
	}
}

func TestNotifyRequiresCapability(t *testing.T) {
	b := NewBridge()
	b.Hello(types.HelloRequest{})
	if err := b.Notify("t", "b"); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("err=%v, want ErrUnsupported", err)
	}

	b.Hello(helloAll())
	if err := b.Notify("Update failed", "Try again."); err != nil {
		t.Fatalf("notify: %v", err)
	}
	d := recvDirective(t, b)
	if d.Kind != "show_notification" || d.Title != "Update failed" {
		t.Fatalf("directive=%+v", d)
	}
}

func TestNavigateEmitsDirective(t *testing.T) {
	b := NewBridge()
	b.Navigate("/signin")
	d := recvDirective(t, b)
	if d.Kind != "navigate" || d.Target != "/signin" {
		t.Fatalf("directive=%+v", d)
	}
}

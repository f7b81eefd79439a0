package lifecycle

import (
	"testing"

	"vaultd/pkg/types"
)

func TestOnlineSeededFromPlatform(t *testing.T) {
	hello := allCaps()
	hello.Online = false
	c, _ := newTestController(t, hello, nil)
	c.Start(startCtx(t))
	if c.Online() {
		t.Fatalf("expected offline seed")
	}
}

func TestOnlineFollowsLastReportedTransition(t *testing.T) {
	c, b := newTestController(t, allCaps(), nil)
	c.Start(startCtx(t))

	seq := []bool{false, true, false, false, true}
	for _, v := range seq {
		kind := "online"
		if !v {
			kind = "offline"
		}
		if err := b.Apply(types.PlatformEvent{Kind: kind}); err != nil {
			t.Fatalf("apply %s: %v", kind, err)
		}
	}
	waitFor(t, "last transition applied", func() bool { return c.Online() == true })
	if !c.Snapshot().Online {
		t.Fatalf("snapshot disagrees with monitor")
	}
}

func TestNoReachabilityCapabilityAssumesOnline(t *testing.T) {
	hello := allCaps()
	hello.Reachability = false
	hello.Online = false
	c, _ := newTestController(t, hello, nil)
	c.Start(startCtx(t))
	if !c.Online() {
		t.Fatalf("expected online without a reachability signal")
	}
}

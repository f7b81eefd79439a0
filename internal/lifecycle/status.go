package lifecycle

import (
	"time"

	"vaultd/pkg/types"
)

// Snapshot returns the read-only lifecycle state.
func (c *Controller) Snapshot() types.Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() types.Snapshot {
	return types.Snapshot{
		Online:      c.online,
		Installed:   c.installed,
		Installable: c.pending != nil,
		// A muted update is permanently dismissed for the session; the
		// snapshot stops advertising it even though the phase keeps the
		// pending worker for an explicit apply.
		UpdateAvailable: c.phase == PhaseUpdateDetected && !c.updateMuted,
		Activating:      c.phase == PhaseActivating,
		ProgressPercent: c.progress,
		Permission:      c.permission,
		ActivePrompt:    c.activePromptLocked(),
	}
}

// Status builds the detailed status response for GET /status.
func (c *Controller) Status() types.StatusResponse {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return types.StatusResponse{
		Snapshot:    c.snapshotLocked(),
		UpdatePhase: string(c.phase),
		Critical:    c.critical,
		AutoUpdate:  c.cfg.AutoUpdate,
		Capabilities: types.CapabilitiesInfo{
			Reachability:  c.caps.Reachability,
			InstallPrompt: c.caps.InstallPrompt,
			Worker:        c.caps.Worker,
			Notifications: c.caps.Notifications,
		},
		Subscribers:      len(c.subs),
		ActivationsTotal: c.activationsTotal,
		DismissalsTotal:  c.dismissalsTotal,
		LastError:        c.lastErr,
		UptimeSeconds:    int64(time.Since(c.startTime).Seconds()),
		ServerTimeUnix:   time.Now().Unix(),
	}
}

// Phase reads the update coordinator's current phase.
func (c *Controller) Phase() UpdatePhase {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.phase
}

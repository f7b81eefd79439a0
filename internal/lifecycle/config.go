package lifecycle

import (
	"time"

	"github.com/rs/zerolog"

	"vaultd/internal/platform"
	"vaultd/pkg/types"
)

// Defaults applied when corresponding Config fields are unset.
const (
	defaultAutoUpdateGrace   = 5 * time.Second
	defaultPostponeInterval  = 4 * time.Hour
	defaultActivationTimeout = 15 * time.Second
	defaultActivationStep    = 300 * time.Millisecond
	defaultPermissionDelay   = 30 * time.Second
)

// Config encapsulates all tunables for Controller construction.
type Config struct {
	Platform platform.Platform
	// Production gates worker registration; suppressed otherwise to avoid
	// caching interference during iteration.
	Production bool
	// AutoUpdate activates detected updates after AutoUpdateGrace without a
	// per-update confirmation.
	AutoUpdate bool
	// CriticalUpdates classifies detected updates as critical, disabling
	// the mute and postpone paths.
	CriticalUpdates bool
	// AutoUpdateGrace is the delay between detection and auto activation,
	// leaving the user time to read the notification.
	AutoUpdateGrace time.Duration
	// PostponeInterval is how long a postponed update prompt stays quiet.
	PostponeInterval time.Duration
	// ActivationTimeout bounds the whole activation sequence; past it the
	// operation is treated as failed, not hung.
	ActivationTimeout time.Duration
	// ActivationStep is the pacing between scripted progress steps.
	ActivationStep time.Duration
	// PermissionDelay defers the automatic notification permission prompt
	// when no user interaction arrives first.
	PermissionDelay time.Duration
	// PostponeReset names the postponement reset policy.
	PostponeReset PostponeReset

	Logger    zerolog.Logger
	Publisher EventPublisher
}

// NewWithConfig constructs a Controller from Config, applying defaults.
func NewWithConfig(cfg Config) *Controller {
	if cfg.AutoUpdateGrace <= 0 {
		cfg.AutoUpdateGrace = defaultAutoUpdateGrace
	}
	if cfg.PostponeInterval <= 0 {
		cfg.PostponeInterval = defaultPostponeInterval
	}
	if cfg.ActivationTimeout <= 0 {
		cfg.ActivationTimeout = defaultActivationTimeout
	}
	if cfg.ActivationStep <= 0 {
		cfg.ActivationStep = defaultActivationStep
	}
	if cfg.PermissionDelay <= 0 {
		cfg.PermissionDelay = defaultPermissionDelay
	}
	if cfg.PostponeReset == "" {
		cfg.PostponeReset = PostponeResetSession
	}
	if cfg.Publisher == nil {
		cfg.Publisher = noopPublisher{}
	}
	return &Controller{
		cfg:        cfg,
		platform:   cfg.Platform,
		log:        cfg.Logger,
		publisher:  cfg.Publisher,
		phase:      PhaseUnregistered,
		permission: types.PermissionDefault,
		subs:       make(map[int]chan types.Snapshot),
		startTime:  time.Now(),
	}
}

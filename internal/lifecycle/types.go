package lifecycle

// UpdatePhase is the worker update coordinator's lifecycle state.
type UpdatePhase string

const (
	PhaseUnregistered   UpdatePhase = "unregistered"
	PhaseRegistering    UpdatePhase = "registering"
	PhaseRegistered     UpdatePhase = "registered"
	PhaseUpdateDetected UpdatePhase = "update_detected"
	PhaseActivating     UpdatePhase = "activating"
	PhaseActivated      UpdatePhase = "activated"
)

// DismissMode selects how an update prompt is dismissed.
type DismissMode string

const (
	// DismissPostpone re-arms the prompt after the configured interval,
	// unless superseded by a newer dismissal.
	DismissPostpone DismissMode = "postpone"
	// DismissMute suppresses the prompt for the remainder of the session.
	DismissMute DismissMode = "mute"
)

// PostponeReset names the policy for forgetting a postponement. Only
// session-scoped reset is implemented; the knob exists so the behavior is an
// explicit choice rather than an accident of not persisting timers.
type PostponeReset string

const (
	// PostponeResetSession forgets a pending postponement on process
	// restart: a reload within the window re-offers the prompt.
	PostponeResetSession PostponeReset = "session"
)

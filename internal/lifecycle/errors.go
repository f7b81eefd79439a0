package lifecycle

// noCapabilityError signals TriggerInstall without a held capability (409 mapping).
type noCapabilityError struct{}

func (noCapabilityError) Error() string { return "no install capability held" }

// ErrNoCapability constructs a noCapabilityError.
func ErrNoCapability() error { return noCapabilityError{} }

// IsNoCapability reports whether err indicates a missing install capability.
func IsNoCapability(err error) bool {
	_, ok := err.(noCapabilityError)
	return ok
}

// noUpdateError signals an update operation outside the update_detected phase.
type noUpdateError struct{ phase UpdatePhase }

func (e noUpdateError) Error() string { return "no update pending (phase: " + string(e.phase) + ")" }

// ErrNoUpdate constructs a noUpdateError for the given phase.
func ErrNoUpdate(phase UpdatePhase) error { return noUpdateError{phase: phase} }

// IsNoUpdate reports whether err indicates there is no pending update.
func IsNoUpdate(err error) bool {
	_, ok := err.(noUpdateError)
	return ok
}

// activationTimeoutError signals that the activation sequence exceeded its
// bound or failed mid-flight; the coordinator has already reverted to
// update_detected and the operation is retryable.
type activationTimeoutError struct{ cause error }

func (e activationTimeoutError) Error() string { return "update activation failed: " + e.cause.Error() }
func (e activationTimeoutError) Unwrap() error { return e.cause }

// ErrActivationTimeout constructs an activationTimeoutError wrapping cause.
func ErrActivationTimeout(cause error) error { return activationTimeoutError{cause: cause} }

// IsActivationTimeout reports whether err indicates a retryable activation failure.
func IsActivationTimeout(err error) bool {
	_, ok := err.(activationTimeoutError)
	return ok
}

// criticalUpdateError signals a dismissal attempt on a critical update.
type criticalUpdateError struct{}

func (criticalUpdateError) Error() string { return "critical update cannot be dismissed" }

// ErrCriticalUpdate constructs a criticalUpdateError.
func ErrCriticalUpdate() error { return criticalUpdateError{} }

// IsCriticalUpdate reports whether err indicates a non-dismissible update.
func IsCriticalUpdate(err error) bool {
	_, ok := err.(criticalUpdateError)
	return ok
}

// capabilityUnavailableError signals an operation on a capability the
// platform lacks, so the HTTP layer can return 503 instead of 500.
type capabilityUnavailableError struct{ what string }

func (e capabilityUnavailableError) Error() string { return "capability unavailable: " + e.what }

// ErrCapabilityUnavailable constructs a capabilityUnavailableError.
func ErrCapabilityUnavailable(what string) error { return capabilityUnavailableError{what: what} }

// IsCapabilityUnavailable reports whether err indicates a missing platform capability.
func IsCapabilityUnavailable(err error) bool {
	_, ok := err.(capabilityUnavailableError)
	return ok
}

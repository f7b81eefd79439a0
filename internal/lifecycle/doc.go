// Package lifecycle reconciles asynchronous, order-independent platform
// signals (reachability, installability, worker updates, notification
// permission) into one consistent snapshot and owns the install/update
// prompt sequencing. It is structured into small files by concern:
//
//   - controller.go: core Controller type, constructor, Start/Close/Ready.
//   - config.go: Config and package defaults; NewWithConfig applies defaults.
//   - types.go: internal state types (UpdatePhase, phase constants).
//   - errors.go: error types and helpers (IsNoCapability, IsActivationTimeout, ...).
//   - connectivity.go: reachability seeding and transitions.
//   - install.go: affine install-prompt capability slot and TriggerInstall.
//   - update.go: worker registration and the update activation state machine.
//   - permission.go: notification permission requests and deferred prompting.
//   - orchestrator.go: run loop, subscriber fan-out, prompt sequencing.
//   - events.go: EventPublisher interface; eventpub_memory.go for tests.
//   - status.go: Snapshot/Status reporting helpers.
//   - metrics.go: Prometheus collectors for signal and prompt accounting.
//
// The controller's run loop is the single consumer of every platform event
// channel; state mutations are applied in platform delivery order. UI-facing
// consumers attach and detach freely via Subscribe without touching platform
// listeners. External packages should treat this package as the orchestration
// layer and use public methods only (NewWithConfig, Start, Subscribe,
// Snapshot, Status, TriggerInstall, ApplyUpdate, DismissUpdate,
// RequestNotificationPermission). Internal types are subject to change.
package lifecycle

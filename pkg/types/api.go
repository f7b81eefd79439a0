package types

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// Current lifecycle snapshot.
	Snapshot Snapshot `json:"snapshot"`
	// Worker update phase (unregistered, registering, registered,
	// update_detected, activating, activated).
	// example: registered
	UpdatePhase string `json:"update_phase" example:"registered"`
	// Whether this update is classified critical (mute/postpone disabled).
	// example: false
	Critical bool `json:"critical" example:"false"`
	// Whether auto-update is enabled.
	// example: false
	AutoUpdate bool `json:"auto_update" example:"false"`
	// Platform capabilities discovered by the startup probe.
	Capabilities CapabilitiesInfo `json:"capabilities"`
	// Number of attached snapshot subscribers.
	// example: 1
	Subscribers int `json:"subscribers" example:"1"`
	// Total activation attempts, including failed ones.
	// example: 2
	ActivationsTotal uint64 `json:"activations_total" example:"2"`
	// Total update prompt dismissals this session.
	// example: 1
	DismissalsTotal uint64 `json:"dismissals_total" example:"1"`
	// Last error observed by the controller (if any).
	LastError string `json:"last_error,omitempty"`
	// Uptime of the daemon in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Server time in unix seconds.
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
}

// CapabilitiesInfo reports the typed capability record from the startup probe.
type CapabilitiesInfo struct {
	Reachability  bool `json:"reachability"`
	InstallPrompt bool `json:"install_prompt"`
	Worker        bool `json:"worker"`
	Notifications bool `json:"notifications"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: no install capability held
	Error string `json:"error" example:"no install capability held"`
	// HTTP status code.
	// example: 409
	Code int `json:"code" example:"409"`
}

// PlatformEvent is one browser-delivered signal posted to /platform/events.
// Exactly one payload field is meaningful per kind.
type PlatformEvent struct {
	// Kind: online, offline, install_prompt, installed, worker_installed,
	// worker_waiting, controller_change, prompt_result, permission_result,
	// interaction.
	// example: online
	Kind string `json:"kind" example:"online"`
	// Capability token for install_prompt and prompt_result events.
	// example: 6a1f0c1e-8f2b-4f0a-9c60-5b8f4a2f9d11
	Token string `json:"token,omitempty"`
	// User decision for prompt_result events.
	// example: true
	Accepted bool `json:"accepted,omitempty"`
	// Whether an active controller was present for worker_installed events.
	// example: true
	HasController bool `json:"has_controller,omitempty"`
	// Permission for permission_result events: granted or denied.
	// example: granted
	Permission Permission `json:"permission,omitempty"`
}

// HelloRequest declares the client platform's capabilities at attach time.
type HelloRequest struct {
	Reachability  bool `json:"reachability"`
	Online        bool `json:"online"`
	Standalone    bool `json:"standalone"`
	InstallPrompt bool `json:"install_prompt"`
	Worker        bool `json:"worker"`
	Notifications bool `json:"notifications"`
}

// Directive is a command pushed to the client over the event stream.
type Directive struct {
	// Kind: show_install_prompt, skip_waiting, reload, request_permission,
	// show_notification, navigate.
	// example: reload
	Kind string `json:"kind" example:"reload"`
	// Token for show_install_prompt directives.
	Token string `json:"token,omitempty"`
	// Navigation target for navigate directives.
	// example: /signin
	Target string `json:"target,omitempty"`
	// Notification title/body for show_notification directives.
	Title string `json:"title,omitempty"`
	Body  string `json:"body,omitempty"`
}

// DismissRequest is the body for POST /update/dismiss.
type DismissRequest struct {
	// Mode: postpone or mute.
	// example: postpone
	Mode string `json:"mode" example:"postpone"`
}

// GateDecision is the gatekeeper's answer for a route and session pair.
type GateDecision struct {
	// Action: render, loading or redirect.
	// example: redirect
	Action string `json:"action" example:"redirect"`
	// Redirect target when action is redirect.
	// example: /signin
	Target string `json:"target,omitempty" example:"/signin"`
}

package types

// Permission is the tri-state notification authorization result.
type Permission string

const (
	PermissionDefault Permission = "default"
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
)

// Snapshot is the read-only lifecycle state exposed to UI consumers.
type Snapshot struct {
	// True when the platform last reported network reachability.
	// example: true
	Online bool `json:"online" example:"true"`
	// True once the app is running (or confirmed) as an installed app.
	// example: false
	Installed bool `json:"installed" example:"false"`
	// True while an unconsumed install-prompt capability is held.
	// example: true
	Installable bool `json:"installable" example:"true"`
	// True while a new worker version is waiting to activate.
	// example: false
	UpdateAvailable bool `json:"update_available" example:"false"`
	// True while update activation is in progress.
	// example: false
	Activating bool `json:"activating" example:"false"`
	// Activation progress, 0..100. UI feedback only.
	// example: 0
	ProgressPercent int `json:"progress_percent" example:"0"`
	// Notification permission state: default, granted or denied.
	// example: default
	Permission Permission `json:"permission" example:"default"`
	// Which prompt the UI should surface right now: "", "install" or "update".
	// example: update
	ActivePrompt string `json:"active_prompt,omitempty" example:"update"`
}

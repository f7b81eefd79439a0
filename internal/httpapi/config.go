package httpapi

// maxBodyBytes controls the maximum allowed request body size for JSON
// endpoints. Platform events are tiny; 64 KiB leaves headroom.
var maxBodyBytes int64 = 64 << 10

// SetMaxBodyBytes allows configuring the maximum request body size.
func SetMaxBodyBytes(n int64) {
	if n <= 0 {
		maxBodyBytes = 64 << 10
		return
	}
	maxBodyBytes = n
}

// CORS configuration (opt-in). If disabled, no CORS middleware is added.
var (
	corsEnabled        bool
	corsAllowedOrigins []string
	corsAllowedMethods []string
	corsAllowedHeaders []string
)

// SetCORSOptions configures CORS behavior for the HTTP server.
func SetCORSOptions(enabled bool, origins, methods, headers []string) {
	corsEnabled = enabled
	corsAllowedOrigins = append([]string(nil), origins...)
	corsAllowedMethods = append([]string(nil), methods...)
	corsAllowedHeaders = append([]string(nil), headers...)
}

// Gate redirect targets used by the app-shell routes.
var (
	gateSignInTarget  = "/signin"
	gateLandingTarget = "/app"
)

// SetGateTargets configures where gated routes redirect to.
func SetGateTargets(signIn, landing string) {
	if signIn != "" {
		gateSignInTarget = signIn
	}
	if landing != "" {
		gateLandingTarget = landing
	}
}

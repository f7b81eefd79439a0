package httpapi

import (
	"encoding/json"
	"net/http"

	"vaultd/internal/lifecycle"
	"vaultd/pkg/types"
)

// HTTPError allows services to provide an HTTP status code for an error.
type HTTPError interface {
	error
	StatusCode() int
}

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: msg, Code: status})
}

// writeLifecycleError maps well-known controller errors to HTTP status codes.
// State conflicts (no capability, no pending update, critical update) map to
// 409, a missing platform capability to 503, and a timed-out activation to
// 504 so clients know a retry is legitimate.
func writeLifecycleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case lifecycle.IsNoCapability(err), lifecycle.IsNoUpdate(err), lifecycle.IsCriticalUpdate(err):
		writeJSONError(w, http.StatusConflict, err.Error())
	case lifecycle.IsCapabilityUnavailable(err):
		writeJSONError(w, http.StatusServiceUnavailable, err.Error())
	case lifecycle.IsActivationTimeout(err):
		writeJSONError(w, http.StatusGatewayTimeout, err.Error())
	default:
		if he, ok := err.(HTTPError); ok {
			writeJSONError(w, he.StatusCode(), he.Error())
			return
		}
		writeJSONError(w, http.StatusInternalServerError, err.Error())
	}
	logError(r, err)
}

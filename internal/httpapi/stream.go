package httpapi

import (
	"encoding/json"
	"net/http"
)

// streamSnapshots serves the lifecycle snapshot stream as server-sent events.
// The first event carries the current state; each subsequent change produces
// one event. Detaching never touches the controller's platform listeners.
func streamSnapshots(w http.ResponseWriter, r *http.Request, svc Service) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSONError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}
	setSSEHeaders(w)
	ch, cancel := svc.Subscribe()
	defer cancel()
	streamClients.WithLabelValues("snapshots").Inc()
	defer streamClients.WithLabelValues("snapshots").Dec()

	ctx, cancelCtx := joinContexts(serverBaseCtx, r.Context())
	defer cancelCtx()
	for {
		select {
		case snap, open := <-ch:
			if !open {
				return
			}
			if !writeSSE(w, flusher, "state", snap) {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// streamDirectives serves controller commands (show prompt, skip waiting,
// reload, navigate) to the connected client.
func streamDirectives(w http.ResponseWriter, r *http.Request, bridge PlatformBridge) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSONError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}
	setSSEHeaders(w)
	flusher.Flush()
	streamClients.WithLabelValues("directives").Inc()
	defer streamClients.WithLabelValues("directives").Dec()

	ctx, cancelCtx := joinContexts(serverBaseCtx, r.Context())
	defer cancelCtx()
	ch := bridge.Directives()
	for {
		select {
		case d := <-ch:
			if !writeSSE(w, flusher, "directive", d) {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func setSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
}

func writeSSE(w http.ResponseWriter, flusher http.Flusher, event string, v any) bool {
	payload, err := json.Marshal(v)
	if err != nil {
		return false
	}
	if _, err := w.Write([]byte("event: " + event + "\ndata: " + string(payload) + "\n\n")); err != nil {
		return false
	}
	flusher.Flush()
	return true
}

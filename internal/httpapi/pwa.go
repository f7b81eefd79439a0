package httpapi

import (
	"embed"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
)

//go:embed static/sw.js static/manifest.webmanifest
var pwaFS embed.FS

// mountPWA serves the manifest and the service worker from root paths: the
// worker must be served from the origin root so its scope covers the entire
// application. PWA files have fixed names, so the immutable caching used for
// hashed assets does not apply.
func mountPWA(r chi.Router) {
	r.Get("/sw.js", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/javascript")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Service-Worker-Allowed", "/")
		servePWAFile(w, "static/sw.js")
	})
	r.Get("/manifest.webmanifest", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/manifest+json")
		w.Header().Set("Cache-Control", "no-cache")
		servePWAFile(w, "static/manifest.webmanifest")
	})
}

func servePWAFile(w http.ResponseWriter, name string) {
	f, err := pwaFS.Open(name)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "missing asset: "+name)
		return
	}
	defer f.Close()
	io.Copy(w, f)
}

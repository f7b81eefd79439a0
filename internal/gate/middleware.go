package gate

import (
	"io"
	"net/http"
)

// Middleware wraps a route subtree with a gate policy. Loading sessions get a
// neutral 200 with no redirect; failed gates get a 302. A lifecycle failure
// elsewhere in the daemon never blocks this path.
func (g *Gatekeeper) Middleware(p Policy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch d := g.Evaluate(p); d.Action {
			case ActionLoading:
				w.Header().Set("Cache-Control", "no-store")
				w.Header().Set("Retry-After", "1")
				w.WriteHeader(http.StatusOK)
				io.WriteString(w, "loading")
			case ActionRedirect:
				http.Redirect(w, r, d.Target, http.StatusFound)
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}

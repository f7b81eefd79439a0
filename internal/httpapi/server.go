package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"vaultd/internal/gate"
	"vaultd/internal/lifecycle"
	"vaultd/internal/platform"
	"vaultd/pkg/types"
)

// Service defines the controller methods required by the HTTP API layer.
type Service interface {
	Start(ctx context.Context)
	Ready() bool
	Snapshot() types.Snapshot
	Status() types.StatusResponse
	Subscribe() (<-chan types.Snapshot, func())
	TriggerInstall(ctx context.Context) (bool, error)
	ApplyUpdate(ctx context.Context) error
	DismissUpdate(mode lifecycle.DismissMode) error
	RequestNotificationPermission(ctx context.Context) (types.Permission, error)
}

// PlatformBridge is the inbound side of the platform event relay.
type PlatformBridge interface {
	Hello(types.HelloRequest)
	Apply(types.PlatformEvent) error
	Directives() <-chan types.Directive
}

// serverBaseCtx is a process-level context that can be canceled on shutdown.
// Defaults to Background if not set.
var serverBaseCtx = context.Background()

// SetBaseContext sets the process-level base context used by handlers.
func SetBaseContext(ctx context.Context) {
	if ctx == nil {
		serverBaseCtx = context.Background()
		return
	}
	serverBaseCtx = ctx
}

// joinContexts returns a context that is canceled when either a or b is done.
// The returned cancel func must be called to release the goroutine when the
// handler ends.
func joinContexts(a, b context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		select {
		case <-a.Done():
			cancel()
		case <-b.Done():
			cancel()
		}
	}()
	return ctx, cancel
}

// NewMux builds the daemon's HTTP surface: lifecycle state and actions, the
// platform event relay, gate-checked app routes, PWA assets, and operational
// endpoints.
func NewMux(svc Service, bridge PlatformBridge, gk *gate.Gatekeeper) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(MetricsMiddleware)
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
		}))
	}
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	r.Get("/state", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, svc.Snapshot())
	})

	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, svc.Status())
	})

	r.Post("/platform/hello", func(w http.ResponseWriter, r *http.Request) {
		var req types.HelloRequest
		if !decodeBody(w, r, &req) {
			return
		}
		bridge.Hello(req)
		// The controller initializes lazily, on the first attaching client.
		svc.Start(serverBaseCtx)
		logInfo(r, "platform attached")
		w.WriteHeader(http.StatusNoContent)
	})

	r.Post("/platform/events", func(w http.ResponseWriter, r *http.Request) {
		var ev types.PlatformEvent
		if !decodeBody(w, r, &ev) {
			return
		}
		if err := bridge.Apply(ev); err != nil {
			if errors.Is(err, platform.ErrBacklog) {
				backpressureTotal.Inc()
				writeJSONError(w, http.StatusTooManyRequests, err.Error())
				return
			}
			writeJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		w.WriteHeader(http.StatusAccepted)
	})

	r.Get("/platform/directives", func(w http.ResponseWriter, r *http.Request) {
		streamDirectives(w, r, bridge)
	})

	r.Get("/events", func(w http.ResponseWriter, r *http.Request) {
		streamSnapshots(w, r, svc)
	})

	r.Post("/install", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := joinContexts(serverBaseCtx, r.Context())
		defer cancel()
		accepted, err := svc.TriggerInstall(ctx)
		if err != nil {
			writeLifecycleError(w, r, err)
			return
		}
		writeJSON(w, map[string]any{"accepted": accepted})
	})

	r.Post("/update/apply", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := joinContexts(serverBaseCtx, r.Context())
		defer cancel()
		if err := svc.ApplyUpdate(ctx); err != nil {
			writeLifecycleError(w, r, err)
			return
		}
		writeJSON(w, map[string]any{"activated": true})
	})

	r.Post("/update/dismiss", func(w http.ResponseWriter, r *http.Request) {
		var req types.DismissRequest
		if !decodeBody(w, r, &req) {
			return
		}
		mode := lifecycle.DismissMode(req.Mode)
		if mode != lifecycle.DismissPostpone && mode != lifecycle.DismissMute {
			writeJSONError(w, http.StatusBadRequest, "mode must be postpone or mute")
			return
		}
		if err := svc.DismissUpdate(mode); err != nil {
			writeLifecycleError(w, r, err)
			return
		}
		writeJSON(w, map[string]any{"dismissed": true})
	})

	r.Post("/notifications/request", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := joinContexts(serverBaseCtx, r.Context())
		defer cancel()
		p, err := svc.RequestNotificationPermission(ctx)
		if err != nil {
			writeLifecycleError(w, r, err)
			return
		}
		writeJSON(w, map[string]any{"permission": p})
	})

	// Gate-checked UI shells. The real screens come from the hosted app;
	// these routes exist so gating is exercised end to end.
	r.Group(func(r chi.Router) {
		r.Use(gk.Middleware(gate.Policy{
			RequireAuth:   true,
			SignInTarget:  gateSignInTarget,
			LandingTarget: gateLandingTarget,
		}))
		r.Get("/app", serveShell("app"))
		r.Get("/app/*", serveShell("app"))
	})
	r.Group(func(r chi.Router) {
		r.Use(gk.Middleware(gate.Policy{
			ForbidAuthenticated: true,
			SignInTarget:        gateSignInTarget,
			LandingTarget:       gateLandingTarget,
		}))
		r.Get("/signin", serveShell("signin"))
	})

	mountPWA(r)
	MountSwagger(r)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("waiting for platform"))
	})

	r.Get("/metrics", promHandler())

	return r
}

func serveShell(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte("<!doctype html><title>vault</title><div id=\"" + name + "\"></div>"))
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
	}
}

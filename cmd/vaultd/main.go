package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"vaultd/internal/config"
	"vaultd/internal/gate"
	"vaultd/internal/httpapi"
	"vaultd/internal/lifecycle"
	"vaultd/internal/platform"
)

func main() {
	// Flags with environment variable defaults
	defaultAddr := ":8090"
	if v := os.Getenv("VAULTD_ADDR"); v != "" {
		defaultAddr = v
	}
	addr := flag.String("addr", defaultAddr, "HTTP listen address, e.g. :8090")
	configPath := flag.String("config", "", "Optional config file (.toml/.yaml/.json)")
	production := flag.Bool("production", os.Getenv("VAULTD_ENV") == "production", "Production build: enables worker registration")
	autoUpdate := flag.Bool("auto-update", false, "Activate detected updates after a grace delay")
	flag.Parse()

	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	var cfg config.Config
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			logger.Fatal().Err(err).Str("path", *configPath).Msg("failed to load config")
		}
	}
	if cfg.Addr == "" {
		cfg.Addr = *addr
	}
	if *production {
		cfg.Production = true
	}
	if *autoUpdate {
		cfg.AutoUpdate = true
	}

	grace, err := config.Duration(cfg.AutoUpdateGrace)
	if err != nil {
		logger.Fatal().Err(err).Msg("bad auto_update_grace")
	}
	postpone, err := config.Duration(cfg.PostponeInterval)
	if err != nil {
		logger.Fatal().Err(err).Msg("bad postpone_interval")
	}
	actTimeout, err := config.Duration(cfg.ActivationTimeout)
	if err != nil {
		logger.Fatal().Err(err).Msg("bad activation_timeout")
	}
	permDelay, err := config.Duration(cfg.PermissionDelay)
	if err != nil {
		logger.Fatal().Err(err).Msg("bad permission_delay")
	}

	bridge := platform.NewBridge()
	ctrl := lifecycle.NewWithConfig(lifecycle.Config{
		Platform:          bridge,
		Production:        cfg.Production,
		AutoUpdate:        cfg.AutoUpdate,
		CriticalUpdates:   cfg.CriticalUpdates,
		AutoUpdateGrace:   grace,
		PostponeInterval:  postpone,
		ActivationTimeout: actTimeout,
		PermissionDelay:   permDelay,
		PostponeReset:     lifecycle.PostponeReset(cfg.PostponeReset),
		Logger:            logger.With().Str("component", "lifecycle").Logger(),
	})
	defer ctrl.Close()

	provider := gate.NewMemoryProvider()
	// Imperative navigations ride the directive stream to the client.
	gk := gate.New(provider, bridge.Navigate, logger.With().Str("component", "gate").Logger())
	provider.OnChange(gk.SessionChanged)
	go func() {
		if err := provider.Initialize(context.Background()); err != nil {
			logger.Error().Err(err).Msg("session bootstrap failed")
		}
	}()

	baseCtx, cancelBase := context.WithCancel(context.Background())
	defer cancelBase()
	httpapi.SetBaseContext(baseCtx)
	httpapi.SetLogger(logger.With().Str("component", "http").Logger())
	httpapi.SetGateTargets(cfg.SignInTarget, cfg.LandingTarget)
	if len(cfg.CORSOrigins) > 0 {
		httpapi.SetCORSOptions(true, cfg.CORSOrigins,
			[]string{"GET", "POST", "OPTIONS"},
			[]string{"Content-Type", "X-Log-Level"})
	}

	mux := httpapi.NewMux(ctrl, bridge, gk)
	srv := &http.Server{Addr: cfg.Addr, Handler: mux}

	go func() {
		logger.Info().Str("addr", cfg.Addr).Bool("production", cfg.Production).Msg("vaultd listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	// Graceful shutdown (Ctrl+C / SIGTERM)
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	cancelBase()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown error")
	}
}

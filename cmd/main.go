package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/mergington/signup/internal/adapters/remote"
	"github.com/mergington/signup/internal/adapters/web"
	service "github.com/mergington/signup/internal/app"
	"github.com/mergington/signup/internal/config"
	"github.com/mergington/signup/internal/feedback"
	"github.com/mergington/signup/internal/render"
	"github.com/mergington/signup/pkg/logger"
	"github.com/mergington/signup/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout           = 10 * time.Second
	writeTimeout          = 10 * time.Second
	idleTimeout           = 60 * time.Second
	readHeaderTimeout     = 5 * time.Second
	shutdownTimeout       = 30 * time.Second
	systemMetricsInterval = 10 * time.Second
	csrfKeyLen            = 32
)

func main() {
	// Disable default Go metrics collection to avoid duplicate metrics
	// We collect our own custom system metrics instead
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Initialize logging
	if err := logger.Init(nil); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}

	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	// Upstream client for the activities service.
	client := remote.New(
		remote.WithBaseURL(cfg.UpstreamURL),
		remote.WithTimeout(cfg.UpstreamTimeout()),
	)

	// Create and start the sync controller.
	svc := service.New(
		service.WithRemote(client),
		service.WithBanner(feedback.New(feedback.WithTTL(cfg.BannerTTL()))),
		service.WithLogger(log),
		service.WithQueueSize(cfg.CommandQueueSize),
	)
	if err := svc.Start(ctx); err != nil {
		os.Stderr.WriteString("failed to start service: " + err.Error() + "\n")
		return
	}
	defer svc.Stop()

	// Start system metrics updater
	go startSystemMetricsUpdater(ctx)

	renderer, err := render.New()
	if err != nil {
		os.Stderr.WriteString("failed to build renderer: " + err.Error() + "\n")
		return
	}

	csrfKey, err := loadCSRFKey(ctx, cfg, log)
	if err != nil {
		os.Stderr.WriteString("failed to load csrf key: " + err.Error() + "\n")
		return
	}

	gateway, err := web.New(
		web.WithApp(svc),
		web.WithRenderer(renderer),
		web.WithCSRFKey(csrfKey),
		web.WithSecureCookies(cfg.SecureCookies),
		web.WithLogger(log.Named("web")),
	)
	if err != nil {
		os.Stderr.WriteString("failed to build web server: " + err.Error() + "\n")
		return
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           gateway.Handler(),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	// Start the HTTP server
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr), logger.String("upstream", cfg.UpstreamURL))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
			return
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	log.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
}

// loadCSRFKey decodes the configured hex key, or generates a per-start random
// key when none is set. Sessions will not survive a restart without a
// configured key.
func loadCSRFKey(ctx context.Context, cfg *config.Config, log logger.Logger) ([]byte, error) {
	if cfg.CSRFKey != "" {
		key, err := hex.DecodeString(cfg.CSRFKey)
		if err != nil {
			return nil, err
		}
		return key, nil
	}

	key := make([]byte, csrfKeyLen)
	if _, err := rand.Read(key); err != nil {
		return nil, err
	}
	log.Warn(ctx, "using random csrf key; set csrf_key to survive restarts")
	return key, nil
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
}

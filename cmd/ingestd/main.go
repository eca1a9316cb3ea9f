package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ingestguard/ingestguard/internal/config"
	"github.com/ingestguard/ingestguard/internal/ingest"
	"github.com/ingestguard/ingestguard/internal/logger"
	"github.com/ingestguard/ingestguard/internal/metrics"
	"github.com/ingestguard/ingestguard/internal/session"
	"github.com/ingestguard/ingestguard/internal/telemetry"
	"github.com/ingestguard/ingestguard/internal/wiring"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	flags := flag.NewFlagSet("ingestd", flag.ExitOnError)
	configFile := flags.String("config", "", "Path to config file (default: $XDG_CONFIG_HOME/ingestguard/config.yaml)")
	showVersion := flags.Bool("version", false, "Print version and exit")
	if err := flags.Parse(os.Args[1:]); err != nil {
		log.Fatalf("failed to parse flags: %v", err)
	}

	if *showVersion {
		fmt.Printf("ingestd %s (commit: %s, built: %s)\n", version, commit, date)
		return
	}

	cfg, err := config.MustLoad(*configFile)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	if err := logger.Init(logger.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format, Output: cfg.Logging.Output}); err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	telemetryShutdown, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    "ingestd",
		ServiceVersion: version,
		Endpoint:       cfg.Telemetry.Endpoint,
		Insecure:       cfg.Telemetry.Insecure,
		SampleRate:     cfg.Telemetry.SampleRate,
	})
	if err != nil {
		log.Fatalf("failed to initialize telemetry: %v", err)
	}
	defer func() {
		if err := telemetryShutdown(ctx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}()

	profilingShutdown, err := telemetry.InitProfiling(telemetry.ProfilingConfig{
		Enabled:        cfg.Telemetry.Profiling.Enabled,
		ServiceName:    "ingestd",
		ServiceVersion: version,
		Endpoint:       cfg.Telemetry.Profiling.ServerAddr,
		ProfileTypes:   cfg.Telemetry.Profiling.ProfileTypes,
	})
	if err != nil {
		log.Fatalf("failed to initialize profiling: %v", err)
	}
	defer func() {
		if err := profilingShutdown(); err != nil {
			logger.Error("profiling shutdown error", "error", err)
		}
	}()

	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
	}

	masterKey, err := wiring.MasterKey(cfg.Crypto)
	if err != nil {
		log.Fatalf("failed to load master key: %v", err)
	}

	objectStore, err := wiring.ObjectStore(ctx, cfg.ObjectStore, metrics.NewObjectStoreMetrics())
	if err != nil {
		log.Fatalf("failed to initialize object store: %v", err)
	}

	bus, err := wiring.EventBus(cfg.EventBus, metrics.NewEventBusMetrics())
	if err != nil {
		log.Fatalf("failed to initialize event bus: %v", err)
	}

	credentials, err := wiring.CredentialStore(cfg.Credential)
	if err != nil {
		log.Fatalf("failed to initialize credential store: %v", err)
	}

	if err := os.MkdirAll(cfg.Ingest.ScratchDir, 0o750); err != nil {
		log.Fatalf("failed to create scratch directory: %v", err)
	}

	sessions := session.NewRegistry(cfg.Session.IdleTimeout, cfg.Session.SweepInterval)
	defer sessions.Stop()

	pipeline := ingest.New(ingest.Config{
		MasterKey:        masterKey,
		VerifyOuterLayer: cfg.Crypto.VerifyOuterLayer,
		ScratchDir:       cfg.Ingest.ScratchDir,
		MaxUploadBytes:   int64(cfg.Ingest.MaxUploadBytes),
		Bucket:           cfg.ObjectStore.S3.Bucket,
	}, credentials, objectStore, bus, metrics.NewIngestMetrics())

	handlers := ingest.NewHandlers(pipeline, credentials, sessions)
	router := ingest.NewRouter(handlers, sessions)

	srv := &http.Server{
		Addr:         cfg.Ingest.Addr,
		Handler:      router,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 5 * time.Minute, // multipart uploads can be large
	}

	if cfg.Metrics.Enabled {
		go serveMetrics(cfg.Metrics.Addr)
	}

	serverDone := make(chan error, 1)
	go func() {
		logger.Info("ingestd listening", "addr", cfg.Ingest.Addr)
		err := srv.ListenAndServe()
		if err == http.ErrServerClosed {
			err = nil
		}
		serverDone <- err
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigChan:
		signal.Stop(sigChan)
		logger.Info("shutdown signal received, draining connections")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", "error", err)
			os.Exit(1)
		}
		<-serverDone
		logger.Info("ingestd stopped gracefully")

	case err := <-serverDone:
		signal.Stop(sigChan)
		if err != nil {
			logger.Error("ingestd server error", "error", err)
			os.Exit(1)
		}
	}
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
		logger.Error("metrics server error", "error", err)
	}
}

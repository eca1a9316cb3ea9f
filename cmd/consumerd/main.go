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

	"github.com/ingestguard/ingestguard/internal/config"
	"github.com/ingestguard/ingestguard/internal/consumer"
	"github.com/ingestguard/ingestguard/internal/logger"
	"github.com/ingestguard/ingestguard/internal/metrics"
	"github.com/ingestguard/ingestguard/internal/telemetry"
	"github.com/ingestguard/ingestguard/internal/wiring"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	flags := flag.NewFlagSet("consumerd", flag.ExitOnError)
	configFile := flags.String("config", "", "Path to config file (default: $XDG_CONFIG_HOME/ingestguard/config.yaml)")
	showVersion := flags.Bool("version", false, "Print version and exit")
	if err := flags.Parse(os.Args[1:]); err != nil {
		log.Fatalf("failed to parse flags: %v", err)
	}

	if *showVersion {
		fmt.Printf("consumerd %s (commit: %s, built: %s)\n", version, commit, date)
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
		ServiceName:    "consumerd",
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
		ServiceName:    "consumerd",
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
	defer bus.Close()

	if err := os.MkdirAll(cfg.Ingest.ScratchDir, 0o750); err != nil {
		log.Fatalf("failed to create scratch directory: %v", err)
	}

	sink, err := buildSink(cfg.Sink)
	if err != nil {
		log.Fatalf("failed to initialize sink: %v", err)
	}

	pipeline := consumer.New(consumer.Config{
		MasterKey:      masterKey,
		ScratchDir:     cfg.Ingest.ScratchDir,
		MaxObjectBytes: int64(cfg.Ingest.MaxUploadBytes),
		Workers:        cfg.Consumer.Workers,
	}, bus, objectStore, sink, metrics.NewConsumerMetrics())

	pipeline.Start(ctx)
	logger.Info("consumerd running", "workers", cfg.Consumer.Workers, "sink", cfg.Sink.Kind)

	if cfg.Metrics.Enabled {
		go serveMetrics(cfg.Metrics.Addr)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	signal.Stop(sigChan)

	logger.Info("shutdown signal received, draining workers")
	pipeline.Stop()
	logger.Info("consumerd stopped gracefully")
}

func buildSink(cfg config.SinkConfig) (consumer.Sink, error) {
	switch cfg.Kind {
	case "file":
		return consumer.NewFileSink(cfg.OutputDir)
	case "log":
		return consumer.NewLogSink(), nil
	default:
		return nil, fmt.Errorf("unknown sink.kind %q", cfg.Kind)
	}
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
		logger.Error("metrics server error", "error", err)
	}
}

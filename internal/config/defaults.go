package config

import (
	"strings"
	"time"

	"github.com/ingestguard/ingestguard/internal/bytesize"
)

// GetDefaultConfig returns a Config populated entirely with defaults. Load
// returns it as-is when no config file is found; environment variables are
// not applied on that path.
func GetDefaultConfig() *Config {
	cfg := &Config{Crypto: CryptoConfig{VerifyOuterLayer: true}}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills any zero-valued fields with sensible defaults.
// Explicit values from file/env are preserved.
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyTelemetryDefaults(&cfg.Telemetry)
	applyMetricsDefaults(&cfg.Metrics)
	applyCryptoDefaults(&cfg.Crypto)
	applyObjectStoreDefaults(&cfg.ObjectStore)
	applyEventBusDefaults(&cfg.EventBus)
	applyCredentialDefaults(&cfg.Credential)
	applySessionDefaults(&cfg.Session)
	applyIngestDefaults(&cfg.Ingest)
	applyConsumerDefaults(&cfg.Consumer)
	applySinkDefaults(&cfg.Sink)

	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 15 * time.Second
	}
}

func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

func applyTelemetryDefaults(cfg *TelemetryConfig) {
	if cfg.ServiceName == "" {
		cfg.ServiceName = "ingestguard"
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = "localhost:4317"
	}
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 1.0
	}

	if cfg.Profiling.ServerAddr == "" {
		cfg.Profiling.ServerAddr = "http://localhost:4040"
	}
	if len(cfg.Profiling.ProfileTypes) == 0 {
		cfg.Profiling.ProfileTypes = []string{"cpu", "alloc_objects", "alloc_space", "inuse_objects", "inuse_space", "goroutines"}
	}
}

func applyMetricsDefaults(cfg *MetricsConfig) {
	if cfg.Addr == "" {
		cfg.Addr = ":9090"
	}
}

func applyCryptoDefaults(cfg *CryptoConfig) {
	// VerifyOuterLayer defaults to true: the ingest pipeline derives the
	// outer key from the passphrase and trial-decrypts the outer layer before
	// committing the object. A false here cannot be told apart from an
	// explicit false, so the default is set by Load (viper default) and by
	// GetDefaultConfig rather than here.
}

func applyObjectStoreDefaults(cfg *ObjectStoreConfig) {
	if cfg.Kind == "" {
		cfg.Kind = "s3"
	}
	if cfg.S3.Region == "" {
		cfg.S3.Region = "us-east-1"
	}
	if cfg.Memory.MaxTotalBytes == 0 {
		cfg.Memory.MaxTotalBytes = 1 * bytesize.GiB
	}
}

func applyEventBusDefaults(cfg *EventBusConfig) {
	if cfg.Kind == "" {
		cfg.Kind = "nats"
	}
	if cfg.NATS.URL == "" {
		cfg.NATS.URL = "nats://localhost:4222"
	}
	if cfg.NATS.Stream == "" {
		cfg.NATS.Stream = "FILE_UPLOADS"
	}
	if cfg.NATS.Subject == "" {
		cfg.NATS.Subject = "file.uploads"
	}
	if cfg.NATS.DurableConsumer == "" {
		cfg.NATS.DurableConsumer = "file_processor"
	}
	if cfg.NATS.AckWait == 0 {
		cfg.NATS.AckWait = 30 * time.Second
	}
	if cfg.NATS.MaxAge == 0 {
		cfg.NATS.MaxAge = 168 * time.Hour
	}
}

func applyCredentialDefaults(cfg *CredentialConfig) {
	if cfg.Kind == "" {
		cfg.Kind = "postgres"
	}
}

func applySessionDefaults(cfg *SessionConfig) {
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = 30 * time.Minute
	}
	if cfg.SweepInterval == 0 {
		cfg.SweepInterval = 5 * time.Minute
	}
}

func applyIngestDefaults(cfg *IngestConfig) {
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.MaxUploadBytes == 0 {
		cfg.MaxUploadBytes = 100 * bytesize.MiB
	}
	if cfg.ScratchDir == "" {
		cfg.ScratchDir = "/tmp/ingestguard"
	}
}

func applyConsumerDefaults(cfg *ConsumerConfig) {
	if cfg.Workers == 0 {
		cfg.Workers = 4
	}
}

func applySinkDefaults(cfg *SinkConfig) {
	if cfg.Kind == "" {
		cfg.Kind = "log"
	}
}

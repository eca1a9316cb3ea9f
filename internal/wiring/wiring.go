// Package wiring builds the collaborators shared by ingestd and consumerd
// (CryptoCore's master key, ObjectStore, EventBus, CredentialStore) from a
// loaded config.Config, so each daemon's main only has to assemble its own
// pipeline.
package wiring

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/ingestguard/ingestguard/internal/config"
	"github.com/ingestguard/ingestguard/internal/credential"
	"github.com/ingestguard/ingestguard/internal/eventbus"
	"github.com/ingestguard/ingestguard/internal/logger"
	"github.com/ingestguard/ingestguard/internal/metrics"
	"github.com/ingestguard/ingestguard/internal/objectstore"
)

// MasterKey decodes and length-checks the configured master key. A missing
// or malformed key is ConfigFatal: the caller should log.Fatal on error.
func MasterKey(cfg config.CryptoConfig) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(cfg.MasterKeyB64)
	if err != nil {
		return nil, fmt.Errorf("crypto.master_key_b64 is not valid base64: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("crypto.master_key_b64 must decode to 32 bytes, got %d", len(key))
	}
	return key, nil
}

// ObjectStore builds the configured ObjectStore backend.
func ObjectStore(ctx context.Context, cfg config.ObjectStoreConfig, m *metrics.ObjectStoreMetrics) (objectstore.Store, error) {
	switch cfg.Kind {
	case "s3":
		store, err := objectstore.NewS3Store(ctx, objectstore.S3Config{
			Endpoint:        cfg.S3.Endpoint,
			Region:          cfg.S3.Region,
			Bucket:          cfg.S3.Bucket,
			ForcePathStyle:  cfg.S3.ForcePathStyle,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
		}, m)
		if err != nil {
			return nil, fmt.Errorf("failed to build S3 object store: %w", err)
		}
		return store, nil
	case "memory":
		logger.Warn("object store running in-memory; data does not persist across restarts")
		return objectstore.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown object_store.kind %q", cfg.Kind)
	}
}

// EventBus builds the configured EventBus backend.
func EventBus(cfg config.EventBusConfig, m *metrics.EventBusMetrics) (eventbus.Bus, error) {
	switch cfg.Kind {
	case "nats":
		bus, err := eventbus.NewNATSBus(eventbus.NATSConfig{
			URL:             cfg.NATS.URL,
			Stream:          cfg.NATS.Stream,
			Subject:         cfg.NATS.Subject,
			DurableConsumer: cfg.NATS.DurableConsumer,
			AckWait:         cfg.NATS.AckWait,
			MaxAge:          cfg.NATS.MaxAge,
		}, m)
		if err != nil {
			return nil, fmt.Errorf("failed to build NATS event bus: %w", err)
		}
		return bus, nil
	case "memory":
		logger.Warn("event bus running in-memory; events do not survive a restart")
		return eventbus.NewMemoryBus(256), nil
	default:
		return nil, fmt.Errorf("unknown event_bus.kind %q", cfg.Kind)
	}
}

// CredentialStore builds the configured CredentialStore backend.
func CredentialStore(cfg config.CredentialConfig) (credential.Store, error) {
	switch cfg.Kind {
	case "postgres":
		store, err := credential.NewPostgresStore(cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("failed to build postgres credential store: %w", err)
		}
		return store, nil
	case "memory":
		logger.Warn("credential store running in-memory; bootstrapped principals do not survive a restart")
		return credential.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown credential.kind %q", cfg.Kind)
	}
}

package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks cfg against its struct tags and the few cross-field
// constraints struct tags can't express.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if cfg.ObjectStore.Kind == "s3" && cfg.ObjectStore.S3.Bucket == "" {
		return fmt.Errorf("object_store.s3.bucket is required when object_store.kind is \"s3\"")
	}

	if cfg.Credential.Kind == "postgres" && cfg.Credential.DSN == "" {
		return fmt.Errorf("credential.dsn is required when credential.kind is \"postgres\"")
	}

	if cfg.Sink.Kind == "file" && cfg.Sink.OutputDir == "" {
		return fmt.Errorf("sink.output_dir is required when sink.kind is \"file\"")
	}

	return nil
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/ingestguard/ingestguard/internal/bytesize"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config is the static configuration shared by ingestd and consumerd.
//
// Both processes load the same file/env shape; each only consults the
// sections relevant to its role (ingestd: Ingest, Crypto, Session,
// Credential, ObjectStore, EventBus; consumerd: Consumer, Sink, Crypto,
// ObjectStore, EventBus, plus Ingest's scratch_dir and max_upload_bytes).
//
// Configuration sources, in order of precedence:
//  1. Environment variables (INGESTGUARD_*)
//  2. Configuration file (YAML)
//  3. Default values
type Config struct {
	Logging     LoggingConfig     `mapstructure:"logging" yaml:"logging"`
	Telemetry   TelemetryConfig   `mapstructure:"telemetry" yaml:"telemetry"`
	Metrics     MetricsConfig     `mapstructure:"metrics" yaml:"metrics"`
	Crypto      CryptoConfig      `mapstructure:"crypto" yaml:"crypto"`
	ObjectStore ObjectStoreConfig `mapstructure:"object_store" yaml:"object_store"`
	EventBus    EventBusConfig    `mapstructure:"event_bus" yaml:"event_bus"`
	Credential  CredentialConfig  `mapstructure:"credential" yaml:"credential"`
	Session     SessionConfig     `mapstructure:"session" yaml:"session"`
	Ingest      IngestConfig      `mapstructure:"ingest" yaml:"ingest"`
	Consumer    ConsumerConfig    `mapstructure:"consumer" yaml:"consumer"`
	Sink        SinkConfig        `mapstructure:"sink" yaml:"sink"`

	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required,gt=0" yaml:"shutdown_timeout"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error" yaml:"level"`
	Format string `mapstructure:"format" validate:"required,oneof=text json" yaml:"format"`
	Output string `mapstructure:"output" validate:"required" yaml:"output"`
}

// TelemetryConfig controls OpenTelemetry distributed tracing and Pyroscope profiling.
type TelemetryConfig struct {
	Enabled     bool            `mapstructure:"enabled" yaml:"enabled"`
	ServiceName string          `mapstructure:"service_name" yaml:"service_name"`
	Endpoint    string          `mapstructure:"endpoint" yaml:"endpoint"`
	Insecure    bool            `mapstructure:"insecure" yaml:"insecure"`
	SampleRate  float64         `mapstructure:"sample_rate" validate:"omitempty,gte=0,lte=1" yaml:"sample_rate"`
	Profiling   ProfilingConfig `mapstructure:"profiling" yaml:"profiling"`
}

// ProfilingConfig controls Pyroscope continuous profiling.
type ProfilingConfig struct {
	Enabled      bool     `mapstructure:"enabled" yaml:"enabled"`
	ServerAddr   string   `mapstructure:"server_address" yaml:"server_address"`
	ProfileTypes []string `mapstructure:"profile_types" yaml:"profile_types"`
}

// MetricsConfig configures the Prometheus metrics HTTP server.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Addr    string `mapstructure:"addr" validate:"omitempty" yaml:"addr"`
}

// CryptoConfig configures the envelope-encryption master key.
type CryptoConfig struct {
	// MasterKeyB64 is the base64 encoding of the 32-byte AES-256 master key
	// used to wrap/unwrap per-object data keys. Read from
	// INGESTGUARD_CRYPTO_MASTER_KEY_B64, or from MASTER_KEY when that is
	// unset; never written to the config file.
	// A missing or malformed value is ConfigFatal (process exits at boot).
	MasterKeyB64 string `mapstructure:"master_key_b64" validate:"required" yaml:"-"`

	// VerifyOuterLayer, when true, derives the outer key from the passphrase
	// and the body's salt and trial-decrypts the outer layer before the
	// payload is re-encrypted and handed to ObjectStore. Defaults to true.
	// When false, verification_status is always NOT_VERIFIED.
	VerifyOuterLayer bool `mapstructure:"verify_outer_layer" yaml:"verify_outer_layer"`
}

// ObjectStoreConfig selects and configures the ciphertext/sidecar backend.
type ObjectStoreConfig struct {
	// Kind selects the backend: "s3" or "memory".
	Kind   string           `mapstructure:"kind" validate:"required,oneof=s3 memory" yaml:"kind"`
	S3     S3Config         `mapstructure:"s3" yaml:"s3"`
	Memory MemoryStoreConfig `mapstructure:"memory" yaml:"memory"`
}

// S3Config configures the S3-compatible object store backend.
type S3Config struct {
	Bucket         string `mapstructure:"bucket" yaml:"bucket"`
	Region         string `mapstructure:"region" yaml:"region"`
	Endpoint       string `mapstructure:"endpoint" yaml:"endpoint"`
	ForcePathStyle bool   `mapstructure:"force_path_style" yaml:"force_path_style"`
	// AccessKeyID and SecretAccessKey are read from
	// INGESTGUARD_OBJECT_STORE_S3_ACCESS_KEY_ID / _SECRET_ACCESS_KEY and
	// never written to the config file.
	AccessKeyID     string `mapstructure:"access_key_id" yaml:"-"`
	SecretAccessKey string `mapstructure:"secret_access_key" yaml:"-"`
}

// MemoryStoreConfig configures the in-memory object store used for tests
// and single-node evaluation.
type MemoryStoreConfig struct {
	MaxTotalBytes bytesize.ByteSize `mapstructure:"max_total_bytes" yaml:"max_total_bytes,omitempty"`
}

// EventBusConfig selects and configures the upload-event transport.
type EventBusConfig struct {
	// Kind selects the backend: "nats" or "memory".
	Kind string     `mapstructure:"kind" validate:"required,oneof=nats memory" yaml:"kind"`
	NATS NATSConfig `mapstructure:"nats" yaml:"nats"`
}

// NATSConfig configures the NATS JetStream stream and durable consumer.
type NATSConfig struct {
	URL             string        `mapstructure:"url" yaml:"url"`
	Stream          string        `mapstructure:"stream" yaml:"stream"`
	Subject         string        `mapstructure:"subject" yaml:"subject"`
	DurableConsumer string        `mapstructure:"durable_consumer" yaml:"durable_consumer"`
	AckWait         time.Duration `mapstructure:"ack_wait" yaml:"ack_wait"`
	MaxAge          time.Duration `mapstructure:"max_age" yaml:"max_age"`
}

// CredentialConfig configures the principal/passphrase-hash store.
type CredentialConfig struct {
	// Kind selects the backend: "postgres" or "memory".
	Kind string `mapstructure:"kind" validate:"required,oneof=postgres memory" yaml:"kind"`
	DSN  string `mapstructure:"dsn" yaml:"-"`
}

// SessionConfig configures the in-memory opaque-token session registry.
type SessionConfig struct {
	IdleTimeout   time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout"`
	SweepInterval time.Duration `mapstructure:"sweep_interval" yaml:"sweep_interval"`
}

// IngestConfig configures the HTTP ingest pipeline (ingestd).
type IngestConfig struct {
	Addr           string            `mapstructure:"addr" validate:"required" yaml:"addr"`
	MaxUploadBytes bytesize.ByteSize `mapstructure:"max_upload_bytes" yaml:"max_upload_bytes"`
	ScratchDir     string            `mapstructure:"scratch_dir" yaml:"scratch_dir"`
}

// ConsumerConfig configures the background consumer pipeline (consumerd).
type ConsumerConfig struct {
	Workers int `mapstructure:"workers" validate:"omitempty,min=1" yaml:"workers"`
}

// SinkConfig configures where the consumer pipeline delivers decrypted payloads.
type SinkConfig struct {
	// Kind selects the backend: "file" or "log".
	Kind      string `mapstructure:"kind" validate:"required,oneof=file log" yaml:"kind"`
	OutputDir string `mapstructure:"output_dir" yaml:"output_dir"`
}

// Load loads configuration from file, environment, and defaults.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setupViper(v, configPath)
	v.SetDefault("crypto.verify_outer_layer", true)

	found, err := readConfigFile(v)
	if err != nil {
		return nil, err
	}

	if !found {
		cfg := GetDefaultConfig()
		return cfg, nil
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(configDecodeHooks())); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// MustLoad loads configuration with user-friendly error messages when the
// file is missing, the way an operator-facing CLI should fail.
func MustLoad(configPath string) (*Config, error) {
	if configPath == "" {
		if !DefaultConfigExists() {
			return nil, fmt.Errorf("no configuration file found at default location: %s\n\n"+
				"Please create a YAML config file there first.\n\n"+
				"Or specify a custom config file:\n"+
				"  ingestd --config /path/to/config.yaml",
				GetDefaultConfigPath())
		}
		configPath = GetDefaultConfigPath()
	} else if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	}

	cfg, err := Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	return cfg, nil
}

// SaveConfig writes cfg to path in YAML, honoring yaml tags (so secrets
// tagged yaml:"-" are never persisted).
func SaveConfig(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func setupViper(v *viper.Viper, configPath string) {
	v.SetEnvPrefix("INGESTGUARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Secrets are tagged yaml:"-" and so never appear in a saved config
	// file; AutomaticEnv alone only covers keys Unmarshal already knows
	// about, so bind them explicitly.
	_ = v.BindEnv("crypto.master_key_b64", "INGESTGUARD_CRYPTO_MASTER_KEY_B64", "MASTER_KEY")
	_ = v.BindEnv("object_store.s3.access_key_id")
	_ = v.BindEnv("object_store.s3.secret_access_key")
	_ = v.BindEnv("credential.dsn")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		configDir := getConfigDir()
		v.AddConfigPath(configDir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
}

func readConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return false, nil
		}
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read config file: %w", err)
	}

	return true, nil
}

// configDecodeHooks returns the combined mapstructure decode hook for
// ByteSize and time.Duration fields.
func configDecodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		byteSizeDecodeHook(),
		durationDecodeHook(),
	)
}

func byteSizeDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(bytesize.ByteSize(0)) {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			return bytesize.ParseByteSize(v)
		case int:
			return bytesize.ByteSize(v), nil
		case int64:
			return bytesize.ByteSize(v), nil
		case uint64:
			return bytesize.ByteSize(v), nil
		case float64:
			return bytesize.ByteSize(v), nil
		default:
			return data, nil
		}
	}
}

func durationDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			return time.ParseDuration(v)
		case int:
			return time.Duration(v), nil
		case int64:
			return time.Duration(v), nil
		case float64:
			return time.Duration(v), nil
		default:
			return data, nil
		}
	}
}

func getConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "ingestguard")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	return filepath.Join(home, ".config", "ingestguard")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}

// DefaultConfigExists reports whether a config file exists at the default location.
func DefaultConfigExists() bool {
	_, err := os.Stat(GetDefaultConfigPath())
	return err == nil
}

// GetConfigDir returns the configuration directory path (exposed for ingestctl).
func GetConfigDir() string {
	return getConfigDir()
}

// WatchLevel re-reads logging.level from configPath whenever the file
// changes on disk and invokes onChange with the new level. Only the log
// level is hot-reloadable; every other setting requires a process restart.
func WatchLevel(configPath string, onChange func(level string)) error {
	v := viper.New()
	setupViper(v, configPath)

	if _, err := readConfigFile(v); err != nil {
		return err
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		level := strings.ToUpper(v.GetString("logging.level"))
		if level != "" {
			onChange(level)
		}
	})
	v.WatchConfig()

	return nil
}

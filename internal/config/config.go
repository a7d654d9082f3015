package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Adjuster backends.
const (
	BackendExec   = "exec"
	BackendRemote = "remote"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	DataDir          string
	HTTPAddr         string
	HTTPWriteTimeout time.Duration
	LogLevel         string
	LogFormat        string
	ShutdownTimeout  time.Duration

	// Adjustment routine configuration.
	AdjustBackend string
	AdjustCommand []string
	AdjustURL     string
	AdjustTimeout time.Duration // 0 means no timeout

	// Audit events; disabled when KafkaBrokers is empty.
	KafkaBrokers []string
	KafkaTopic   string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	writeTimeout, err := parseNonNegativeDuration("HTTP_WRITE_TIMEOUT", "5m")
	if err != nil {
		return nil, err
	}

	adjustTimeout, err := parseNonNegativeDuration("ADJUST_TIMEOUT", "0")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DataDir:          os.Getenv("DATA_DIR"),
		HTTPAddr:         sharedcfg.EnvOrDefault("HTTP_ADDR", ":5000"),
		HTTPWriteTimeout: writeTimeout,
		LogLevel:         sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:        sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:  shutdownTimeout,

		AdjustBackend: strings.ToLower(sharedcfg.EnvOrDefault("ADJUST_BACKEND", BackendExec)),
		AdjustCommand: strings.Fields(sharedcfg.EnvOrDefault("ADJUST_COMMAND", "python3 scripts/pylt_bridge.py")),
		AdjustURL:     os.Getenv("ADJUST_URL"),
		AdjustTimeout: adjustTimeout,

		KafkaBrokers: sharedcfg.ParseBrokers(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:   sharedcfg.EnvOrDefault("KAFKA_TOPIC", "ylt-adjustments"),
	}

	if err := validateDataDir(cfg.DataDir); err != nil {
		return nil, err
	}

	switch cfg.AdjustBackend {
	case BackendExec:
		if len(cfg.AdjustCommand) == 0 {
			return nil, errors.New("ADJUST_COMMAND is required when ADJUST_BACKEND is exec")
		}
	case BackendRemote:
		if cfg.AdjustURL == "" {
			return nil, errors.New("ADJUST_URL is required when ADJUST_BACKEND is remote")
		}
	default:
		return nil, fmt.Errorf("invalid ADJUST_BACKEND %q (want exec or remote)", cfg.AdjustBackend)
	}

	if len(cfg.KafkaBrokers) > 0 && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TOPIC is required when KAFKA_BROKERS is set")
	}

	return cfg, nil
}

// AuditEnabled reports whether adjustment audit events should be published.
func (c *Config) AuditEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

func validateDataDir(dir string) error {
	if dir == "" {
		return errors.New("DATA_DIR is required")
	}
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("invalid DATA_DIR: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("invalid DATA_DIR: %s is not a directory", dir)
	}
	return nil
}

func parseNonNegativeDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

package config

import (
	"strings"
	"time"
)

// DefaultFacilities is the facility list seeded when none is configured.
var DefaultFacilities = []string{
	"Meeting Room A",
	"Lecture Theatre 1",
	"Conference Hall",
	"Seminar Room B",
}

// ApplyDefaults sets default values for any unspecified configuration
// fields. Zero values are replaced; explicit values are preserved.
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyTelemetryDefaults(&cfg.Telemetry)
	applyServerDefaults(&cfg.Server)
	applyAdminDefaults(&cfg.Admin)
	applyClientDefaults(&cfg.Client)
}

// GetDefaultConfig returns a configuration with every field at its default.
func GetDefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
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
	// Enabled defaults to false (opt-in)
	if cfg.Endpoint == "" {
		cfg.Endpoint = "localhost:4317"
		cfg.Insecure = true
	}
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 1.0
	}
}

func applyServerDefaults(cfg *ServerConfig) {
	if len(cfg.Facilities) == 0 {
		cfg.Facilities = append([]string(nil), DefaultFacilities...)
	}
	if cfg.HistoryTTL == 0 {
		cfg.HistoryTTL = 5 * time.Minute
	}
}

func applyAdminDefaults(cfg *AdminConfig) {
	// Enabled defaults to false; the admin surface is opt-in
	if cfg.Port == 0 {
		cfg.Port = 9090
	}
}

func applyClientDefaults(cfg *ClientConfig) {
	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = 3
	}
}

package config

import (
	"fmt"
	"time"

	redisstore "github.com/vietddude/rotor/internal/infra/storage/redis"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server   ServerConfig      `yaml:"server"`
	Worker   WorkerConfig      `yaml:"worker"`
	VPN      VPNConfig         `yaml:"vpn"`
	Rotation RotationConfig    `yaml:"rotation"`
	Retry    RetryConfig       `yaml:"retry"`
	State    StateConfig       `yaml:"state"`
	Redis    redisstore.Config `yaml:"redis"`
	Logging  LoggingConfig     `yaml:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// WorkerConfig describes the scraper subprocess.
type WorkerConfig struct {
	Command string   `yaml:"command"`
	Args    []string `yaml:"args"`
	Dir     string   `yaml:"dir"`
	Timeout Duration `yaml:"timeout"` // 0 = no deadline
}

// VPNConfig holds the egress control-plane settings.
type VPNConfig struct {
	Binary         string   `yaml:"binary"`
	DomainSuffix   string   `yaml:"domain_suffix"`
	DaemonService  string   `yaml:"daemon_service"`
	CommandTimeout Duration `yaml:"command_timeout"`
	RestartDelay   Duration `yaml:"restart_delay"`
}

// RotationConfig bounds a single rotation.
type RotationConfig struct {
	MaxAttempts  int      `yaml:"max_attempts"`
	SettleDelay  Duration `yaml:"settle_delay"`
	AttemptDelay Duration `yaml:"attempt_delay"`
}

// RetryConfig drives the outer retry loop.
type RetryConfig struct {
	Mode             string   `yaml:"mode"` // bounded or unattended
	MaxAttempts      int      `yaml:"max_attempts"`
	BlockedBackoff   Duration `yaml:"blocked_backoff"`
	TransientBackoff Duration `yaml:"transient_backoff"`
	AmnestyInterval  int      `yaml:"amnesty_interval"`
}

// StateConfig locates the run-scoped state files. An empty dir keeps
// everything in memory.
type StateConfig struct {
	Dir string `yaml:"dir"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// Duration wraps time.Duration so YAML values like "5s" parse.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw string
	if err := unmarshal(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

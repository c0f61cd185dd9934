package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// Load reads configuration from a YAML file. Environment references in the
// file ($VAR or ${VAR}) are expanded before parsing.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg AppConfig
	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.VPN.Binary == "" {
		cfg.VPN.Binary = "nordvpn"
	}
	if cfg.VPN.DomainSuffix == "" {
		cfg.VPN.DomainSuffix = "nordvpn.com"
	}
	if cfg.VPN.DaemonService == "" {
		cfg.VPN.DaemonService = "nordvpnd"
	}
	if cfg.VPN.CommandTimeout == 0 {
		cfg.VPN.CommandTimeout = Duration(60 * time.Second)
	}
	if cfg.VPN.RestartDelay == 0 {
		cfg.VPN.RestartDelay = Duration(5 * time.Second)
	}
	if cfg.Rotation.MaxAttempts == 0 {
		cfg.Rotation.MaxAttempts = 20
	}
	if cfg.Rotation.SettleDelay == 0 {
		cfg.Rotation.SettleDelay = Duration(3 * time.Second)
	}
	if cfg.Rotation.AttemptDelay == 0 {
		cfg.Rotation.AttemptDelay = Duration(2 * time.Second)
	}
	if cfg.Retry.Mode == "" {
		cfg.Retry.Mode = "bounded"
	}
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry.MaxAttempts = 10
	}
	if cfg.Retry.BlockedBackoff == 0 {
		cfg.Retry.BlockedBackoff = Duration(5 * time.Second)
	}
	if cfg.Retry.TransientBackoff == 0 {
		cfg.Retry.TransientBackoff = Duration(10 * time.Second)
	}
	if cfg.Retry.AmnestyInterval == 0 {
		cfg.Retry.AmnestyInterval = 50
	}
}

package app

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/sp1rit/smcli/internal/credential"
	"github.com/sp1rit/smcli/internal/vault"
)

// LogFormat represents the logging output format.
type LogFormat string

const (
	LogFormatText LogFormat = "text"
	LogFormatJSON LogFormat = "json"
	LogFormatOTel LogFormat = "otel"
)

// Default configuration values
const (
	DefaultConfigLogFormat    = LogFormatText
	DefaultConfigVaultService = vault.DefaultService
	DefaultConfigVaultTimeout = vault.DefaultTimeout
)

// VaultConfig holds secret store configuration.
type VaultConfig struct {
	// Service is the name entries are stored under in the OS secret store.
	Service string `json:"service" validate:"required"`
	// Timeout bounds a single secret store call.
	Timeout time.Duration `json:"timeout" validate:"gt=0"`
	// Disabled replaces the OS secret store with one that is always unavailable.
	Disabled bool `json:"disabled"`
}

// NewVault creates the vault described by the configuration.
func (v *VaultConfig) NewVault() (vault.Vault, error) {
	if v.Disabled {
		return vault.Disabled{}, nil
	}
	return vault.NewKeyring(v.Service, vault.WithTimeout(v.Timeout))
}

// Config holds the application's settings. Credentials are not part of it.
type Config struct {
	// LogLevel for logging output (defaults to Info if unset).
	LogLevel  slog.Level `json:"log_level"`
	LogFormat LogFormat  `json:"log_format" validate:"oneof=text json otel"`
	// ConfigDir is the directory holding credential.yaml.
	ConfigDir string      `json:"config_dir" validate:"required"`
	Vault     VaultConfig `json:"vault"`
}

// Default creates a new Config with default values applied.
func Default() (*Config, error) {
	cfg := &Config{}
	if err := cfg.ApplyDefaults(); err != nil {
		return nil, fmt.Errorf("failed to apply defaults: %w", err)
	}
	return cfg, nil
}

// ApplyDefaults fills unset config fields with sensible defaults.
func (c *Config) ApplyDefaults() error {
	if c.LogFormat == "" {
		c.LogFormat = DefaultConfigLogFormat
	}
	if c.Vault.Service == "" {
		c.Vault.Service = DefaultConfigVaultService
	}
	if c.Vault.Timeout == 0 {
		c.Vault.Timeout = DefaultConfigVaultTimeout
	}
	if c.ConfigDir == "" {
		dir, err := credential.DefaultDir()
		if err != nil {
			return fmt.Errorf("config_dir required (auto-detect failed: %w)", err)
		}
		c.ConfigDir = dir
	}

	return nil
}

// Validate validates the configuration using struct tags.
func (c *Config) Validate() error {
	return validator.New().Struct(c)
}

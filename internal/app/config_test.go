package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sp1rit/smcli/internal/vault"
)

func TestConfig_ApplyDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Default()
	require.NoError(t, err)
	assert.Equal(t, LogFormatText, cfg.LogFormat)
	assert.Equal(t, vault.DefaultService, cfg.Vault.Service)
	assert.Equal(t, vault.DefaultTimeout, cfg.Vault.Timeout)
	assert.NotEmpty(t, cfg.ConfigDir)
	require.NoError(t, cfg.Validate())
}

func TestConfig_ApplyDefaultsKeepsValues(t *testing.T) {
	cfg := &Config{
		LogFormat: LogFormatJSON,
		ConfigDir: "/tmp/smcli",
		Vault:     VaultConfig{Service: "other", Timeout: time.Second},
	}
	require.NoError(t, cfg.ApplyDefaults())
	assert.Equal(t, LogFormatJSON, cfg.LogFormat)
	assert.Equal(t, "/tmp/smcli", cfg.ConfigDir)
	assert.Equal(t, "other", cfg.Vault.Service)
	assert.Equal(t, time.Second, cfg.Vault.Timeout)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			LogFormat: LogFormatText,
			ConfigDir: "/tmp/smcli",
			Vault:     VaultConfig{Service: "smcli", Timeout: time.Second},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad log format", func(c *Config) { c.LogFormat = "xml" }},
		{"missing config dir", func(c *Config) { c.ConfigDir = "" }},
		{"missing vault service", func(c *Config) { c.Vault.Service = "" }},
		{"negative vault timeout", func(c *Config) { c.Vault.Timeout = -time.Second }},
	}

	require.NoError(t, valid().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestVaultConfig_NewVault(t *testing.T) {
	v, err := (&VaultConfig{Disabled: true}).NewVault()
	require.NoError(t, err)
	assert.Equal(t, vault.Disabled{}, v)

	v, err = (&VaultConfig{Service: "smcli", Timeout: time.Second}).NewVault()
	require.NoError(t, err)
	k, ok := v.(*vault.Keyring)
	require.True(t, ok)
	assert.Equal(t, "smcli", k.Service())

	_, err = (&VaultConfig{Service: "", Timeout: time.Second}).NewVault()
	require.Error(t, err)
}

package commands

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/urfave/cli/v3"

	"github.com/sp1rit/smcli/internal/app"
)

// envPrefix is stripped from environment variables during settings loading (e.g., SMCLI_VAULT__TIMEOUT → vault.timeout)
const envPrefix = "SMCLI_"

// Settings layers, lowest precedence first.
const (
	layerFile = "file"
	layerEnv  = "env"
	layerFlag = "flag"
)

// settingsFlags are the flags that map onto app.Config. Credential flags are resolved separately.
var settingsFlags = map[string]bool{
	"log-level":       true,
	"log-format":      true,
	"config-dir":      true,
	"vault--service":  true,
	"vault--timeout":  true,
	"vault--disabled": true,
}

// knownSettings are the keys app.Config understands.
var knownSettings = map[string]bool{
	"log_level":      true,
	"log_format":     true,
	"config_dir":     true,
	"vault.service":  true,
	"vault.timeout":  true,
	"vault.disabled": true,
}

// settingSources maps each explicitly set settings key to the layer that won.
type settingSources map[string]string

// unknown returns the keys app.Config does not understand, sorted.
func (s settingSources) unknown() []string {
	var keys []string
	for _, key := range slices.Sorted(maps.Keys(s)) {
		if !knownSettings[key] {
			keys = append(keys, key)
		}
	}
	return keys
}

// loadConfig loads application settings from various sources with precedence:
// settings file → environment variables → CLI flags → defaults.
// Keys absent from the returned sources were left to defaults.
func loadConfig(settingsPath string, cmd *cli.Command, environFunc func() []string) (*app.Config, settingSources, error) {
	k := koanf.New(".")
	sources := make(settingSources)

	// each layer is loaded on its own so the keys it sets can be attributed
	merge := func(layer string, p koanf.Provider, pa koanf.Parser) error {
		lk := koanf.New(".")
		if err := lk.Load(p, pa); err != nil {
			return err
		}
		for _, key := range lk.Keys() {
			sources[key] = layer
		}
		return k.Merge(lk)
	}

	if settingsPath != "" {
		if err := merge(layerFile, file.Provider(settingsPath), toml.Parser()); err != nil {
			return nil, nil, fmt.Errorf("loading settings file: %w", err)
		}
	}

	envProvider := env.Provider(".", env.Opt{
		Prefix: envPrefix,
		TransformFunc: func(key, value string) (string, any) {
			stripped := strings.TrimPrefix(key, envPrefix)
			nested := strings.ToLower(strings.ReplaceAll(stripped, "__", "."))
			return nested, value
		},
		EnvironFunc: environFunc,
	})
	if err := merge(layerEnv, envProvider, nil); err != nil {
		return nil, nil, fmt.Errorf("loading environment variables: %w", err)
	}

	if cmd != nil {
		flagValues := extractSettingsFlags(cmd)
		if err := merge(layerFlag, confmap.Provider(flagValues, "."), nil); err != nil {
			return nil, nil, fmt.Errorf("loading CLI flags: %w", err)
		}
	}

	config := &app.Config{}
	if err := k.UnmarshalWithConf("", config, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, nil, fmt.Errorf("unmarshaling settings: %w", err)
	}

	if err := config.ApplyDefaults(); err != nil {
		return nil, nil, fmt.Errorf("applying defaults: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid settings: %w", err)
	}

	return config, sources, nil
}

// extractSettingsFlags transforms explicitly set settings flags to match the config
// structure. Examples: --vault--timeout → vault.timeout, --log-level → log_level
func extractSettingsFlags(cmd *cli.Command) map[string]any {
	values := make(map[string]any)

	for _, name := range cmd.FlagNames() {
		if !settingsFlags[name] || !cmd.IsSet(name) {
			continue
		}

		if value := cmd.Value(name); value != nil {
			key := strings.ReplaceAll(name, "--", ".")
			key = strings.ReplaceAll(key, "-", "_")
			values[key] = value
		}
	}

	return values
}

package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/gridsim/pvdispatch/infra/metrics"
	"github.com/gridsim/pvdispatch/infra/mqtt"
)

// Config is the root configuration of a simulation run.
type Config struct {
	Site    SiteConfig     `json:"site"`
	Input   InputConfig    `json:"input"`
	Output  OutputConfig   `json:"output"`
	Metrics metrics.Config `json:"metrics"`
	MQTT    mqtt.Config    `json:"mqtt"`
}

// Load reads the configuration file (yaml or json by extension), applies
// PV_-prefixed environment overrides, defaults and validation.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides: PV_SITE__POLICY=B sets site.policy.
	if err := k.Load(env.Provider("PV_", ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "pv_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.Site.SetDefaults()
	cfg.Metrics.SetDefaults()
	cfg.MQTT.SetDefaults()
	if err := cfg.Site.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Input.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Metrics.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.MQTT.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// InputConfig names the input time series files.
type InputConfig struct {
	LoadCSV  string `json:"load_csv"`
	SolarCSV string `json:"solar_csv"`
}

// Validate checks mandatory fields.
func (c InputConfig) Validate() error {
	if c.LoadCSV == "" {
		return fmt.Errorf("input.load_csv is required")
	}
	if c.SolarCSV == "" {
		return fmt.Errorf("input.solar_csv is required")
	}
	return nil
}

// OutputConfig names the result artifacts.
type OutputConfig struct {
	// LedgerCSV receives the per-interval results. Empty disables the file.
	LedgerCSV string `json:"ledger_csv"`
}

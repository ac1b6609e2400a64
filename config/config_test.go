package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validYAML = `
site:
  solar_capacity_mwp: 8
  battery_capacity_mwh: 16
  inverter_mva: 8
  allow_export: true
input:
  load_csv: load.csv
  solar_csv: solar.csv
output:
  ledger_csv: ledger.csv
metrics:
  prometheus_enabled: true
`

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadYAML(t *testing.T) {
	cfg, err := Load(writeConfig(t, "config.yaml", validYAML))
	require.NoError(t, err)

	assert.Equal(t, 8.0, cfg.Site.SolarCapacityMWp)
	assert.Equal(t, 16.0, cfg.Site.BatteryCapacityMWh)
	assert.True(t, cfg.Site.AllowExport)
	assert.Equal(t, "load.csv", cfg.Input.LoadCSV)
	assert.Equal(t, "ledger.csv", cfg.Output.LedgerCSV)
	assert.True(t, cfg.Metrics.PrometheusEnabled)

	// Study defaults fill the gaps.
	assert.Equal(t, "A", cfg.Site.Policy)
	assert.Equal(t, 17, cfg.Site.PeakWindowStart)
	assert.Equal(t, 19, cfg.Site.PeakWindowEnd)
	assert.Equal(t, 23, cfg.Site.DrainDeadline)
	assert.Equal(t, 0.9, cfg.Site.RoundTripEfficiency)
	assert.Equal(t, 0.5, cfg.Site.BatteryCRate)

	// C-rate power (8 MW) is capped by the inverter rating (8 MVA).
	assert.Equal(t, 8000.0, cfg.Site.BatteryPowerKW())
	assert.Equal(t, 8000.0, cfg.Site.SolarACLimitKW())
	assert.Equal(t, ":2112", cfg.Metrics.PrometheusAddr)
}

func TestLoadJSON(t *testing.T) {
	cfg, err := Load(writeConfig(t, "config.json", `{
		"site": {"solar_capacity_mwp": 4},
		"input": {"load_csv": "l.csv", "solar_csv": "s.csv"}
	}`))
	require.NoError(t, err)
	assert.Equal(t, 4.0, cfg.Site.SolarCapacityMWp)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("PV_SITE__POLICY", "B")
	cfg, err := Load(writeConfig(t, "config.yaml", validYAML))
	require.NoError(t, err)
	assert.Equal(t, "B", cfg.Site.Policy)
}

func TestLoadErrors(t *testing.T) {
	t.Run("unsupported extension", func(t *testing.T) {
		_, err := Load(writeConfig(t, "config.toml", "x = 1"))
		assert.ErrorContains(t, err, "unsupported config format")
	})
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.Error(t, err)
	})
	t.Run("missing input files", func(t *testing.T) {
		_, err := Load(writeConfig(t, "config.yaml", "site:\n  solar_capacity_mwp: 1\n"))
		assert.ErrorContains(t, err, "load_csv")
	})
	t.Run("undrainable battery", func(t *testing.T) {
		yaml := `
site:
  battery_capacity_mwh: 40
  inverter_mva: 5
input:
  load_csv: l.csv
  solar_csv: s.csv
`
		_, err := Load(writeConfig(t, "config.yaml", yaml))
		assert.ErrorContains(t, err, "cannot be emptied")
	})
}

func TestSiteConfigValidate(t *testing.T) {
	base := SiteConfig{}
	base.SetDefaults()
	require.NoError(t, base.Validate())

	t.Run("negative solar", func(t *testing.T) {
		c := base
		c.SolarCapacityMWp = -1
		assert.Error(t, c.Validate())
	})
	t.Run("battery from c-rate alone", func(t *testing.T) {
		c := base
		c.BatteryCapacityMWh = 10
		// 10 MWh at C/2 gives 5 MW; drainable within the 4 h slot.
		assert.NoError(t, c.Validate())
	})
	t.Run("battery without power", func(t *testing.T) {
		c := base
		c.BatteryCapacityMWh = 10
		c.BatteryCRate = -1
		assert.Error(t, c.Validate())
	})
	t.Run("bad efficiency", func(t *testing.T) {
		c := base
		c.RoundTripEfficiency = 1.5
		assert.Error(t, c.Validate())
	})
	t.Run("inverted window", func(t *testing.T) {
		c := base
		c.PeakWindowStart = 19
		c.PeakWindowEnd = 17
		assert.Error(t, c.Validate())
	})
	t.Run("deadline before window end", func(t *testing.T) {
		c := base
		c.DrainDeadline = 18
		assert.Error(t, c.Validate())
	})
	t.Run("unknown policy", func(t *testing.T) {
		c := base
		c.Policy = "C"
		assert.Error(t, c.Validate())
	})
	t.Run("policy B skips drain check", func(t *testing.T) {
		c := base
		c.Policy = "B"
		c.BatteryCapacityMWh = 40
		c.InverterMVA = 5
		assert.NoError(t, c.Validate())
	})
}

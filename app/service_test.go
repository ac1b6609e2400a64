package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridsim/pvdispatch/config"
	"github.com/gridsim/pvdispatch/core/sim"
	"github.com/gridsim/pvdispatch/dataset"
	"github.com/gridsim/pvdispatch/infra/mqtt"
)

// testConfig writes a week of synthetic inputs into a temp dir and returns a
// ready-to-run configuration pointing at them.
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	loadPath := filepath.Join(dir, "load.csv")
	solarPath := filepath.Join(dir, "solar.csv")

	series := dataset.Generate(dataset.SiteProfile{
		LoadBaseKW:       500,
		LoadVariationKW:  300,
		SolarCapacityMWp: 8,
		WeekendFactor:    0.7,
	}, time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC), 7, 42)
	require.NoError(t, dataset.WriteSeriesCSV(loadPath, solarPath, series))

	cfg := &config.Config{
		Site: config.SiteConfig{
			SolarCapacityMWp:   8,
			BatteryCapacityMWh: 16,
			InverterMVA:        8,
			AllowExport:        true,
		},
		Input: config.InputConfig{
			LoadCSV:  loadPath,
			SolarCSV: solarPath,
		},
		Output: config.OutputConfig{
			LedgerCSV: filepath.Join(dir, "ledger.csv"),
		},
	}
	cfg.Site.SetDefaults()
	cfg.Metrics.SetDefaults()
	cfg.MQTT.SetDefaults()
	require.NoError(t, cfg.Site.Validate())
	return cfg
}

func TestServiceRun(t *testing.T) {
	cfg := testConfig(t)
	svc, err := New(cfg)
	require.NoError(t, err)
	defer svc.Close()

	pub := &mqtt.MockPublisher{}
	svc.publisher = pub

	res, err := svc.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "fixed-window", res.Scenario)
	assert.Positive(t, res.Totals.GridImportKWh)
	assert.Positive(t, res.Totals.DischargeKWh)
	assert.Len(t, res.Intervals, 7*48)

	// Ledger written alongside the run.
	info, err := os.Stat(cfg.Output.LedgerCSV)
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	require.Len(t, pub.Published, 1)
	assert.Equal(t, "fixed-window", pub.Published[0].Policy)
	assert.NotEmpty(t, pub.Published[0].RunID)
}

func TestServiceRunPolicyB(t *testing.T) {
	cfg := testConfig(t)
	cfg.Site.Policy = "B"
	cfg.Site.AllowGridCharge = true
	cfg.Output.LedgerCSV = ""

	svc, err := New(cfg)
	require.NoError(t, err)
	defer svc.Close()

	res, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "rate-seeking", res.Scenario)
	assert.Positive(t, res.Totals.GridChargeKWh)
}

func TestServiceRunMissingInput(t *testing.T) {
	cfg := testConfig(t)
	cfg.Input.LoadCSV = filepath.Join(t.TempDir(), "absent.csv")

	svc, err := New(cfg)
	require.NoError(t, err)
	defer svc.Close()

	_, err = svc.Run(context.Background())
	assert.ErrorIs(t, err, sim.ErrInput)
}

func TestServiceRunAll(t *testing.T) {
	cfg := testConfig(t)
	svc, err := New(cfg)
	require.NoError(t, err)
	defer svc.Close()

	baseline, solarOnly, policyA, policyB, err := svc.RunAll(context.Background())
	require.NoError(t, err)

	// Solar can only reduce import; the battery policies reduce it further.
	assert.Greater(t, baseline.Totals.GridImportKWh, solarOnly.Totals.GridImportKWh)
	assert.GreaterOrEqual(t, solarOnly.Totals.GridImportKWh, policyA.Totals.GridImportKWh)
	assert.Less(t, policyA.Totals.Cost, baseline.Totals.Cost)
	assert.Less(t, policyB.Totals.Cost, baseline.Totals.Cost)
}

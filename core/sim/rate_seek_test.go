package sim

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridsim/pvdispatch/core/model"
)

func rateSeekCtx(t *testing.T, hour int, tier model.TariffTier, soc, peakKWh, eff float64) Context {
	t.Helper()
	b, err := model.NewBattery(model.BatteryParams{
		CapacityKWh:    10,
		MaxChargeKW:    10,
		MaxDischargeKW: 10,
		RoundTripEff:   eff,
	})
	require.NoError(t, err)
	b.SoC = soc
	return Context{
		Interval: model.Interval{
			Start: time.Date(2025, 1, 1, hour, 0, 0, 0, time.UTC),
			Tier:  tier,
		},
		Battery:          b,
		SoC:              soc,
		RemainingPeakKWh: peakKWh,
	}
}

func TestRateSeekDecide(t *testing.T) {
	pol := RateSeek{StartHour: 17, EndHour: 19, AllowGridCharge: true}

	t.Run("peak window discharges unlimited", func(t *testing.T) {
		d := pol.Decide(rateSeekCtx(t, 18, model.TierPeak, 5, 0, 1))
		assert.True(t, d.AllowDischarge)
		assert.True(t, math.IsInf(d.DischargeCapKWh, 1))
	})
	t.Run("peak tier outside window discharges too", func(t *testing.T) {
		d := pol.Decide(rateSeekCtx(t, 8, model.TierPeak, 5, 0, 1))
		assert.True(t, d.AllowDischarge)
	})
	t.Run("day tier discharges above reserve", func(t *testing.T) {
		// Reserve 4, stored 10: 6 kWh of headroom may be delivered.
		d := pol.Decide(rateSeekCtx(t, 10, model.TierDay, 10, 4, 1))
		assert.True(t, d.AllowDischarge)
		assert.InDelta(t, 6, d.DischargeCapKWh, 1e-9)
	})
	t.Run("day tier reserve scales with efficiency", func(t *testing.T) {
		// Reserve = 4.5/0.9 = 5 stored; head = (10-5)*0.9 = 4.5 delivered.
		d := pol.Decide(rateSeekCtx(t, 10, model.TierDay, 10, 4.5, 0.9))
		assert.True(t, d.AllowDischarge)
		assert.InDelta(t, 4.5, d.DischargeCapKWh, 1e-9)
	})
	t.Run("day tier holds the reserve", func(t *testing.T) {
		d := pol.Decide(rateSeekCtx(t, 10, model.TierDay, 3, 4, 1))
		assert.False(t, d.AllowDischarge)
		assert.Zero(t, d.GridChargeKWh)
	})
	t.Run("night tier tops up to the reserve", func(t *testing.T) {
		d := pol.Decide(rateSeekCtx(t, 2, model.TierNight, 1, 4, 1))
		assert.False(t, d.AllowDischarge)
		assert.InDelta(t, 3, d.GridChargeKWh, 1e-9)
	})
	t.Run("night tier reserve capped at capacity", func(t *testing.T) {
		// 20 kWh of peak demand cannot be reserved in a 10 kWh battery.
		d := pol.Decide(rateSeekCtx(t, 2, model.TierNight, 2, 20, 1))
		assert.InDelta(t, 8, d.GridChargeKWh, 1e-9)
	})
	t.Run("night tier full battery idles", func(t *testing.T) {
		d := pol.Decide(rateSeekCtx(t, 2, model.TierNight, 10, 4, 1))
		assert.Zero(t, d.GridChargeKWh)
	})
	t.Run("grid charging disabled", func(t *testing.T) {
		off := RateSeek{StartHour: 17, EndHour: 19}
		d := off.Decide(rateSeekCtx(t, 2, model.TierNight, 1, 4, 1))
		assert.Zero(t, d.GridChargeKWh)
	})
}

// A full rate-seeking day with three tariff blocks, unit efficiency and no
// solar. The battery buys 4 kWh at night and spends it across the high tiers.
func TestRateSeekFullDay(t *testing.T) {
	series := make(model.Series, 0, 48)
	for i := 0; i < 48; i++ {
		ts := day1.Add(time.Duration(i) * model.IntervalDuration)
		iv := model.Interval{Start: ts, LoadKW: 2}
		switch h := ts.Hour(); {
		case h < 8 || h >= 23:
			iv.Tariff, iv.Tier = 0.08, model.TierNight
		case h >= 17 && h < 19:
			iv.Tariff, iv.Tier = 0.25, model.TierPeak
		default:
			iv.Tariff, iv.Tier = 0.15, model.TierDay
		}
		series = append(series, iv)
	}

	b, err := model.NewBattery(model.BatteryParams{
		CapacityKWh:    10,
		MaxChargeKW:    10,
		MaxDischargeKW: 10,
		RoundTripEff:   1,
	})
	require.NoError(t, err)

	pol := RateSeek{StartHour: 17, EndHour: 19, AllowGridCharge: true}
	res, err := New(nil).Run(series, b, pol, Options{})
	require.NoError(t, err)

	// Peak window demand is 4 intervals * 1 kWh, bought in the first night
	// interval and delivered back during the window.
	assert.InDelta(t, 4, res.Totals.GridChargeKWh, 1e-9)
	assert.InDelta(t, 4*0.08, res.Totals.GridChargeCost, 1e-9)
	assert.InDelta(t, 4, res.Totals.DischargeKWh, 1e-9)

	for _, r := range res.Intervals {
		if r.Tier == model.TierPeak {
			assert.Zero(t, r.GridImportKWh, "peak import at %s", r.Start)
		}
	}

	// All 48 kWh of load are imported or pre-bought; none at the peak rate.
	// 18 night intervals plus the 4 kWh top-up at 0.08, 26 day intervals at 0.15.
	assert.InDelta(t, 48, res.Totals.GridImportKWh, 1e-9)
	wantCost := 18*0.08 + 4*0.08 + 26*0.15
	assert.InDelta(t, wantCost, res.Totals.Cost, 1e-9)
}

package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatteryParamsValidate(t *testing.T) {
	valid := BatteryParams{CapacityKWh: 16000, MaxChargeKW: 8000, MaxDischargeKW: 8000, RoundTripEff: 0.9}
	require.NoError(t, valid.Validate())

	t.Run("negative capacity", func(t *testing.T) {
		p := valid
		p.CapacityKWh = -1
		assert.Error(t, p.Validate())
	})
	t.Run("zero discharge power", func(t *testing.T) {
		p := valid
		p.MaxDischargeKW = 0
		assert.Error(t, p.Validate())
	})
	t.Run("efficiency out of range", func(t *testing.T) {
		p := valid
		p.RoundTripEff = 1.1
		assert.Error(t, p.Validate())
		p.RoundTripEff = 0
		assert.Error(t, p.Validate())
	})
	t.Run("zero capacity battery is valid", func(t *testing.T) {
		assert.NoError(t, BatteryParams{RoundTripEff: 1}.Validate())
	})
}

func TestBatteryCharge(t *testing.T) {
	b, err := NewBattery(BatteryParams{CapacityKWh: 10, MaxChargeKW: 4, MaxDischargeKW: 4, RoundTripEff: 1})
	require.NoError(t, err)

	// Power limit: 4 kW over half an hour stores at most 2 kWh.
	assert.InDelta(t, 2, b.Charge(5, 0), 1e-9)
	assert.InDelta(t, 2, b.SoC, 1e-9)

	// Residual power after energy already moved this interval.
	assert.InDelta(t, 0.5, b.Charge(5, 1.5), 1e-9)

	// Headroom limit.
	b.SoC = 9.5
	assert.InDelta(t, 0.5, b.Charge(5, 0), 1e-9)
	assert.InDelta(t, 10, b.SoC, 1e-9)
	assert.Zero(t, b.Charge(5, 0))
}

func TestBatteryDischarge(t *testing.T) {
	b, err := NewBattery(BatteryParams{CapacityKWh: 10, MaxChargeKW: 8, MaxDischargeKW: 8, RoundTripEff: 0.9})
	require.NoError(t, err)
	b.SoC = 10

	// Demand fully covered: withdrawn reflects the efficiency penalty.
	delivered, withdrawn := b.Discharge(0.9, math.Inf(1))
	assert.InDelta(t, 0.9, delivered, 1e-9)
	assert.InDelta(t, 1.0, withdrawn, 1e-9)
	assert.InDelta(t, 9.0, b.SoC, 1e-9)

	// Power limit: 8 kW * 0.5 h = 4 kWh withdrawn, 3.6 kWh delivered.
	delivered, withdrawn = b.Discharge(100, math.Inf(1))
	assert.InDelta(t, 3.6, delivered, 1e-9)
	assert.InDelta(t, 4.0, withdrawn, 1e-9)

	// Policy cap on delivered energy.
	delivered, withdrawn = b.Discharge(100, 0.45)
	assert.InDelta(t, 0.45, delivered, 1e-9)
	assert.InDelta(t, 0.5, withdrawn, 1e-9)

	// Empty battery delivers nothing.
	b.SoC = 0
	delivered, withdrawn = b.Discharge(1, math.Inf(1))
	assert.Zero(t, delivered)
	assert.Zero(t, withdrawn)
}

func TestBatteryDrain(t *testing.T) {
	b, err := NewBattery(BatteryParams{CapacityKWh: 10, MaxChargeKW: 8, MaxDischargeKW: 8, RoundTripEff: 1})
	require.NoError(t, err)
	b.SoC = 3

	toLoad, spilled, withdrawn := b.Drain(1)
	assert.InDelta(t, 1, toLoad, 1e-9)
	assert.InDelta(t, 2, spilled, 1e-9)
	assert.InDelta(t, 3, withdrawn, 1e-9)
	assert.Zero(t, b.SoC)

	toLoad, spilled, withdrawn = b.Drain(1)
	assert.Zero(t, toLoad+spilled+withdrawn)
}

func TestBatteryZeroCapacity(t *testing.T) {
	b, err := NewBattery(BatteryParams{RoundTripEff: 1})
	require.NoError(t, err)
	assert.Zero(t, b.Charge(10, 0))
	delivered, withdrawn := b.Discharge(10, math.Inf(1))
	assert.Zero(t, delivered)
	assert.Zero(t, withdrawn)
}

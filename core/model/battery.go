package model

import (
	"fmt"
	"math"
)

// BatteryParams defines the physical parameters of the storage system.
// Power limits are already reduced to the tighter of the C-rate and the
// inverter rating.
type BatteryParams struct {
	CapacityKWh    float64
	MaxChargeKW    float64
	MaxDischargeKW float64
	RoundTripEff   float64 // applied on discharge: delivered = withdrawn * eff
}

// Validate checks that the parameters describe a feasible battery. A zero
// capacity battery is valid and behaves as if no storage were installed.
func (p BatteryParams) Validate() error {
	if p.CapacityKWh < 0 {
		return fmt.Errorf("capacity must be >= 0, got %.3f", p.CapacityKWh)
	}
	if p.CapacityKWh > 0 {
		if p.MaxChargeKW <= 0 {
			return fmt.Errorf("charge power must be > 0 for a %.1f kWh battery", p.CapacityKWh)
		}
		if p.MaxDischargeKW <= 0 {
			return fmt.Errorf("discharge power must be > 0 for a %.1f kWh battery", p.CapacityKWh)
		}
	}
	if p.RoundTripEff <= 0 || p.RoundTripEff > 1 {
		return fmt.Errorf("round-trip efficiency must be in (0,1], got %.3f", p.RoundTripEff)
	}
	return nil
}

// Battery tracks the state of charge across interval steps.
type Battery struct {
	Params BatteryParams
	SoC    float64 // stored energy in kWh, bounded [0, CapacityKWh]
}

// NewBattery creates a battery with an empty initial state of charge.
func NewBattery(p BatteryParams) (*Battery, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Battery{Params: p}, nil
}

// MaxChargeKWh returns the charge energy limit for one interval.
func (b *Battery) MaxChargeKWh() float64 { return b.Params.MaxChargeKW * IntervalHours }

// MaxDischargeKWh returns the discharge energy limit for one interval,
// measured at the battery terminals before efficiency losses.
func (b *Battery) MaxDischargeKWh() float64 { return b.Params.MaxDischargeKW * IntervalHours }

// Headroom returns the energy the battery can still absorb.
func (b *Battery) Headroom() float64 { return b.Params.CapacityKWh - b.SoC }

// Charge stores up to availableKWh, bounded by the per-interval power limit
// less powerUsedKWh already consumed this interval, and by remaining headroom.
// It returns the energy actually stored.
func (b *Battery) Charge(availableKWh, powerUsedKWh float64) float64 {
	if availableKWh <= 0 {
		return 0
	}
	limit := b.MaxChargeKWh() - powerUsedKWh
	if limit <= 0 {
		return 0
	}
	stored := math.Min(availableKWh, math.Min(limit, b.Headroom()))
	if stored <= 0 {
		return 0
	}
	b.SoC += stored
	return stored
}

// Discharge serves up to demandKWh of load, bounded by the stored energy,
// the per-interval power limit and capKWh (a policy-imposed ceiling on
// delivered energy; pass math.Inf(1) for no ceiling). It returns the energy
// delivered to the load and the energy withdrawn from the battery, which
// differ by the round-trip efficiency.
func (b *Battery) Discharge(demandKWh, capKWh float64) (delivered, withdrawn float64) {
	if demandKWh <= 0 || b.SoC <= 0 {
		return 0, 0
	}
	possible := math.Min(b.SoC, b.MaxDischargeKWh())
	out := possible * b.Params.RoundTripEff
	if out > capKWh {
		out = capKWh
	}
	if out <= 0 {
		return 0, 0
	}
	if out >= demandKWh {
		delivered = demandKWh
		withdrawn = demandKWh / b.Params.RoundTripEff
	} else {
		delivered = out
		withdrawn = out / b.Params.RoundTripEff
	}
	if withdrawn > b.SoC {
		withdrawn = b.SoC
	}
	b.SoC -= withdrawn
	return delivered, withdrawn
}

// Drain withdraws as much energy as the power limit allows regardless of
// load, serving demandKWh first and spilling the remainder. It returns the
// energy delivered to load, the energy spilled past the load and the energy
// withdrawn from the battery.
func (b *Battery) Drain(demandKWh float64) (toLoad, spilled, withdrawn float64) {
	if b.SoC <= 0 {
		return 0, 0, 0
	}
	withdrawn = math.Min(b.SoC, b.MaxDischargeKWh())
	out := withdrawn * b.Params.RoundTripEff
	toLoad = math.Min(out, demandKWh)
	spilled = out - toLoad
	b.SoC -= withdrawn
	return toLoad, spilled, withdrawn
}

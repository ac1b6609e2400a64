package config

import (
	"fmt"
	"math"
)

// SiteConfig holds the immutable site parameters of one simulation run.
type SiteConfig struct {
	SolarCapacityMWp   float64 `json:"solar_capacity_mwp"`
	BatteryCapacityMWh float64 `json:"battery_capacity_mwh"`
	BatteryCRate       float64 `json:"battery_c_rate"`
	InverterMVA        float64 `json:"inverter_mva"`
	DCACRatio          float64 `json:"dc_ac_ratio"`

	PeakWindowStart int    `json:"peak_window_start"`
	PeakWindowEnd   int    `json:"peak_window_end"`
	DrainDeadline   int    `json:"drain_deadline"` // policy A: SoC must be zero by this hour
	Policy          string `json:"policy"`         // "A" (fixed-window) or "B" (rate-seeking)

	RoundTripEfficiency float64 `json:"round_trip_efficiency"`
	AllowExport         bool    `json:"allow_export"`
	AllowGridCharge     bool    `json:"allow_grid_charge"`
}

// SetDefaults applies the published study defaults.
func (c *SiteConfig) SetDefaults() {
	if c.BatteryCRate == 0 {
		c.BatteryCRate = 0.5
	}
	if c.DCACRatio == 0 {
		c.DCACRatio = 1.0
	}
	if c.PeakWindowStart == 0 && c.PeakWindowEnd == 0 {
		c.PeakWindowStart = 17
		c.PeakWindowEnd = 19
	}
	if c.DrainDeadline == 0 {
		c.DrainDeadline = 23
	}
	if c.Policy == "" {
		c.Policy = "A"
	}
	if c.RoundTripEfficiency == 0 {
		c.RoundTripEfficiency = 0.9
	}
}

// BatteryPowerKW derives the charge/discharge limit from the C-rate and the
// inverter rating, whichever is tighter.
func (c SiteConfig) BatteryPowerKW() float64 {
	p := c.BatteryCapacityMWh * c.BatteryCRate
	if c.InverterMVA > 0 {
		p = math.Min(p, c.InverterMVA)
	}
	return p * 1000
}

// SolarACLimitKW is the AC clipping limit of the PV plant, zero when no solar
// capacity is configured.
func (c SiteConfig) SolarACLimitKW() float64 {
	if c.SolarCapacityMWp <= 0 {
		return 0
	}
	return c.SolarCapacityMWp / c.DCACRatio * 1000
}

// Validate rejects physically infeasible parameters.
func (c SiteConfig) Validate() error {
	if c.SolarCapacityMWp < 0 {
		return fmt.Errorf("solar_capacity_mwp must be >= 0")
	}
	if c.BatteryCapacityMWh < 0 {
		return fmt.Errorf("battery_capacity_mwh must be >= 0")
	}
	if c.BatteryCapacityMWh > 0 && c.BatteryPowerKW() <= 0 {
		return fmt.Errorf("battery power limit is zero for a %.1f MWh battery", c.BatteryCapacityMWh)
	}
	if c.DCACRatio <= 0 {
		return fmt.Errorf("dc_ac_ratio must be > 0")
	}
	if c.RoundTripEfficiency <= 0 || c.RoundTripEfficiency > 1 {
		return fmt.Errorf("round_trip_efficiency must be in (0,1]")
	}
	if c.PeakWindowStart < 0 || c.PeakWindowEnd > 24 || c.PeakWindowStart >= c.PeakWindowEnd {
		return fmt.Errorf("peak window [%d,%d) is invalid", c.PeakWindowStart, c.PeakWindowEnd)
	}
	switch c.Policy {
	case "A", "a", "fixed-window":
		if c.DrainDeadline < c.PeakWindowEnd || c.DrainDeadline > 24 {
			return fmt.Errorf("drain_deadline %d must lie in [%d,24]", c.DrainDeadline, c.PeakWindowEnd)
		}
		drainable := float64(c.DrainDeadline-c.PeakWindowEnd) * c.BatteryPowerKW()
		if c.BatteryCapacityMWh*1000 > drainable {
			return fmt.Errorf("battery cannot be emptied between %d:00 and %d:00 at %.0f kW",
				c.PeakWindowEnd, c.DrainDeadline, c.BatteryPowerKW())
		}
	case "B", "b", "rate-seeking":
	default:
		return fmt.Errorf("unknown policy %q", c.Policy)
	}
	return nil
}

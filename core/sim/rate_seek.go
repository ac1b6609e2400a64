package sim

import (
	"math"

	"github.com/gridsim/pvdispatch/core/model"
)

// RateSeek discharges whenever the prevailing tariff tier is high, holding
// back a reserve sized to fully cover the estimated upcoming peak-window
// demand. On the low tier it tops the battery up from the grid when the
// projected peak demand exceeds the stored energy.
type RateSeek struct {
	StartHour       int
	EndHour         int
	AllowGridCharge bool
}

func (RateSeek) Name() string { return "rate-seeking" }

func (p RateSeek) Window() (int, int) { return p.StartHour, p.EndHour }

// reserve is the stored energy needed to deliver the remaining peak-window
// demand through the discharge efficiency, capped at capacity.
func (p RateSeek) reserve(ctx Context) float64 {
	r := ctx.RemainingPeakKWh / ctx.Battery.Params.RoundTripEff
	if capKWh := ctx.Battery.Params.CapacityKWh; r > capKWh {
		r = capKWh
	}
	return r
}

func (p RateSeek) Decide(ctx Context) Decision {
	h := ctx.Interval.Start.Hour()
	if (h >= p.StartHour && h < p.EndHour) || ctx.Interval.Tier == model.TierPeak {
		return Decision{AllowDischarge: true, DischargeCapKWh: math.Inf(1)}
	}
	reserve := p.reserve(ctx)
	switch ctx.Interval.Tier {
	case model.TierDay:
		// Discharge only the energy above the reserve.
		head := (ctx.SoC - reserve) * ctx.Battery.Params.RoundTripEff
		if head > 0 {
			return Decision{AllowDischarge: true, DischargeCapKWh: head}
		}
	case model.TierNight:
		if p.AllowGridCharge && ctx.SoC < reserve {
			return Decision{GridChargeKWh: reserve - ctx.SoC}
		}
	}
	return Decision{}
}

package dataset

import (
	"math"
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/gridsim/pvdispatch/core/model"
)

// SiteProfile controls the synthetic half-hourly dataset for one site.
type SiteProfile struct {
	LoadBaseKW       float64
	LoadVariationKW  float64
	SolarCapacityMWp float64
	WeekendFactor    float64 // multiplier applied to weekend load
}

// Tariff schedule of the synthetic dataset: three blocks matching the
// published study (night 00-08 and 23-24, day 08-17 and 19-23, peak 17-19).
func syntheticTariff(t time.Time) (float64, model.TariffTier) {
	h := t.Hour()
	switch {
	case h >= 17 && h < 19:
		return 0.25, model.TierPeak
	case (h >= 8 && h < 17) || (h >= 19 && h < 23):
		return 0.15, model.TierDay
	default:
		return 0.08, model.TierNight
	}
}

// solarBellKW is the clear-sky generation shape: zero at night, a Gaussian
// bell centred on noon scaled by the installed capacity.
func solarBellKW(t time.Time, capacityMWp float64) float64 {
	h := t.Hour()
	if h < 6 || h >= 18 {
		return 0
	}
	x := (float64(h) - 12) / 2
	return capacityMWp * 1000 * math.Exp(-0.5*x*x)
}

// Generate builds a deterministic synthetic series of the given number of
// days starting at start, using the seed for the load variation stream.
func Generate(profile SiteProfile, start time.Time, days int, seed uint64) model.Series {
	uniform := distuv.Uniform{Min: 0, Max: 1, Src: rand.NewPCG(seed, seed+1)}
	weekend := profile.WeekendFactor
	if weekend == 0 {
		weekend = 1
	}

	n := days * 48
	series := make(model.Series, 0, n)
	for i := 0; i < n; i++ {
		ts := start.Add(time.Duration(i) * model.IntervalDuration)
		load := profile.LoadBaseKW + profile.LoadVariationKW*uniform.Rand()
		if wd := ts.Weekday(); wd == time.Saturday || wd == time.Sunday {
			load *= weekend
		}
		rate, tier := syntheticTariff(ts)
		series = append(series, model.Interval{
			Start:   ts,
			LoadKW:  load,
			SolarKW: solarBellKW(ts, profile.SolarCapacityMWp),
			Tariff:  rate,
			Tier:    tier,
		})
	}
	return series
}

package model

import (
	"fmt"
	"strings"
	"time"
)

// IntervalHours is the fixed duration of one simulation step in hours.
const IntervalHours = 0.5

// IntervalDuration is IntervalHours expressed as a time.Duration.
const IntervalDuration = 30 * time.Minute

// TariffTier classifies the tariff block an interval falls into.
type TariffTier int

const (
	TierNight TariffTier = iota
	TierDay
	TierPeak
)

// String returns a human-readable representation of the tariff tier.
func (t TariffTier) String() string {
	switch t {
	case TierNight:
		return "night"
	case TierDay:
		return "day"
	case TierPeak:
		return "peak"
	default:
		return "unknown"
	}
}

// ParseTier converts a tier label from the input series into a TariffTier.
func ParseTier(s string) (TariffTier, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "night", "low":
		return TierNight, nil
	case "day", "standard":
		return TierDay, nil
	case "peak":
		return TierPeak, nil
	default:
		return 0, fmt.Errorf("unknown tariff tier %q", s)
	}
}

// IsHigh reports whether the tier is billed above the low block.
func (t TariffTier) IsHigh() bool { return t == TierDay || t == TierPeak }

// Interval is one half-hourly record of the joined load/solar/tariff series.
type Interval struct {
	Start   time.Time
	LoadKW  float64 // site load over the interval
	SolarKW float64 // solar generation over the interval
	Tariff  float64 // currency per kWh
	Tier    TariffTier
}

// LoadKWh returns the load energy for the interval.
func (iv Interval) LoadKWh() float64 { return iv.LoadKW * IntervalHours }

// SolarKWh returns the solar energy for the interval.
func (iv Interval) SolarKWh() float64 { return iv.SolarKW * IntervalHours }

// Series is an ordered sequence of half-hourly intervals.
type Series []Interval

// Validate checks chronological ordering, uniform half-hour spacing and
// non-negative values. Any violation is an input error for the whole run.
func (s Series) Validate() error {
	if len(s) == 0 {
		return fmt.Errorf("empty series")
	}
	for i, iv := range s {
		if iv.Start.IsZero() {
			return fmt.Errorf("interval %d: missing timestamp", i)
		}
		if iv.LoadKW < 0 {
			return fmt.Errorf("interval %d (%s): negative load %.3f", i, iv.Start.Format(time.RFC3339), iv.LoadKW)
		}
		if iv.SolarKW < 0 {
			return fmt.Errorf("interval %d (%s): negative solar %.3f", i, iv.Start.Format(time.RFC3339), iv.SolarKW)
		}
		if iv.Tariff < 0 {
			return fmt.Errorf("interval %d (%s): negative tariff %.4f", i, iv.Start.Format(time.RFC3339), iv.Tariff)
		}
		if i > 0 {
			gap := iv.Start.Sub(s[i-1].Start)
			if gap <= 0 {
				return fmt.Errorf("interval %d (%s): timestamps not strictly increasing", i, iv.Start.Format(time.RFC3339))
			}
			if gap != IntervalDuration {
				return fmt.Errorf("interval %d (%s): spacing %s, want %s", i, iv.Start.Format(time.RFC3339), gap, IntervalDuration)
			}
		}
	}
	return nil
}

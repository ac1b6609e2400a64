package sim

import (
	"math"
	"time"
)

// FixedWindow discharges only inside the configured peak window and keeps
// discharging afterwards until the battery is empty, never past the drain
// deadline. Once the intervals left before the deadline are only just enough
// to empty the battery at maximum power, it forces a max-power drain so the
// state of charge reaches zero by the deadline every day.
type FixedWindow struct {
	StartHour         int
	EndHour           int
	DrainDeadlineHour int
}

func (FixedWindow) Name() string { return "fixed-window" }

func (p FixedWindow) Window() (int, int) { return p.StartHour, p.EndHour }

func (p FixedWindow) Decide(ctx Context) Decision {
	h := ctx.Interval.Start.Hour()
	switch {
	case h >= p.StartHour && h < p.EndHour:
		return Decision{AllowDischarge: true, DischargeCapKWh: math.Inf(1)}
	case h >= p.EndHour && h < p.DrainDeadlineHour && ctx.SoC > 0:
		left := intervalsUntil(ctx.Interval.Start, p.DrainDeadlineHour)
		if ctx.SoC > float64(left-1)*ctx.Battery.MaxDischargeKWh() {
			return Decision{ForceDrain: true}
		}
		return Decision{AllowDischarge: true, DischargeCapKWh: math.Inf(1)}
	}
	return Decision{}
}

// intervalsUntil counts the half-hour steps from t (inclusive) to the given
// hour of the same day.
func intervalsUntil(t time.Time, hour int) int {
	mins := hour*60 - (t.Hour()*60 + t.Minute())
	if mins <= 0 {
		return 0
	}
	return mins / 30
}

package sim

import (
	"fmt"

	"github.com/gridsim/pvdispatch/core/model"
)

// Context carries the state a policy sees when deciding one interval.
// SoC reflects any solar charging already applied this interval.
type Context struct {
	Index    int
	Interval model.Interval
	Battery  *model.Battery
	SoC      float64

	// RemainingPeakKWh estimates the load energy still to be served during
	// the upcoming peak window: the rest of today's window when it has not
	// closed yet, otherwise the whole of tomorrow's.
	RemainingPeakKWh float64
}

// Decision is the dispatch choice for one interval. AllowDischarge and
// GridChargeKWh are mutually exclusive by construction of the shipped
// policies; the engine resolves any conflict by letting discharge win.
type Decision struct {
	AllowDischarge  bool
	DischargeCapKWh float64 // ceiling on delivered energy when discharging
	ForceDrain      bool    // empty the battery at max power, spill past load
	GridChargeKWh   float64 // energy to buy into the battery this interval
}

// Policy selects battery behaviour per interval. Chosen once per run.
type Policy interface {
	Name() string
	// Window returns the peak window hours [start, end).
	Window() (startHour, endHour int)
	Decide(ctx Context) Decision
}

// NewPolicy builds the policy named by the configuration.
func NewPolicy(name string, startHour, endHour, drainDeadline int, allowGridCharge bool) (Policy, error) {
	switch name {
	case "A", "a", "fixed-window":
		return FixedWindow{StartHour: startHour, EndHour: endHour, DrainDeadlineHour: drainDeadline}, nil
	case "B", "b", "rate-seeking":
		return RateSeek{StartHour: startHour, EndHour: endHour, AllowGridCharge: allowGridCharge}, nil
	default:
		return nil, fmt.Errorf("%w: unknown policy %q", ErrConfig, name)
	}
}

package sim

import (
	"fmt"
	"math"

	"github.com/gridsim/pvdispatch/core/model"
	"github.com/gridsim/pvdispatch/infra/logger"
)

const balanceTolerance = 1e-6

// Options tune run behaviour that is independent of the dispatch policy.
type Options struct {
	// AllowExport sends unabsorbed solar surplus to the grid. When false the
	// surplus is curtailed instead.
	AllowExport bool
	// SolarACLimitKW clips generation at the inverter AC rating. Zero disables
	// clipping. Clipped energy counts as curtailment.
	SolarACLimitKW float64
}

// Engine executes a dispatch simulation as a single sequential fold over the
// input series, threading the battery state between interval steps.
type Engine struct {
	log logger.Logger
}

// New creates an Engine. A nil log falls back to the no-op logger.
func New(log logger.Logger) *Engine {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Engine{log: log}
}

// Run simulates the series under the given policy. Intervals are processed
// strictly in chronological order; the returned result is write-once.
func (e *Engine) Run(series model.Series, batt *model.Battery, pol Policy, opts Options) (*model.RunResult, error) {
	if batt == nil {
		return nil, fmt.Errorf("%w: battery is nil", ErrConfig)
	}
	if pol == nil {
		return nil, fmt.Errorf("%w: policy is nil", ErrConfig)
	}
	if err := series.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInput, err)
	}

	startHour, endHour := pol.Window()
	peakDemand := remainingPeakDemand(series, startHour, endHour)

	results := make([]model.IntervalResult, 0, len(series))
	for i, iv := range series {
		r, err := e.step(i, iv, batt, pol, opts, peakDemand[i])
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}

	res := summarize(pol.Name(), results, batt.Params.CapacityKWh)
	e.log.Debugw("run complete", map[string]any{
		"policy":          pol.Name(),
		"intervals":       len(results),
		"grid_import_kwh": res.Totals.GridImportKWh,
		"cost":            res.Totals.Cost,
	})
	return res, nil
}

func (e *Engine) step(i int, iv model.Interval, batt *model.Battery, pol Policy, opts Options, peakKWh float64) (model.IntervalResult, error) {
	load := iv.LoadKWh()
	solar := iv.SolarKWh()

	r := model.IntervalResult{
		Start:    iv.Start,
		LoadKWh:  load,
		SolarKWh: solar,
		Tariff:   iv.Tariff,
		Tier:     iv.Tier,
	}

	usable := solar
	if opts.SolarACLimitKW > 0 && iv.SolarKW > opts.SolarACLimitKW {
		usable = opts.SolarACLimitKW * model.IntervalHours
		r.CurtailedKWh += solar - usable
	}

	// Solar serves load first, then charges the battery, then exports.
	r.SolarToLoadKWh = math.Min(load, usable)
	net := load - r.SolarToLoadKWh
	surplus := usable - r.SolarToLoadKWh

	r.SolarToBatteryKWh = batt.Charge(surplus, 0)
	surplus -= r.SolarToBatteryKWh
	if surplus > 0 {
		if opts.AllowExport {
			r.GridExportKWh += surplus
		} else {
			r.CurtailedKWh += surplus
		}
	}

	d := pol.Decide(Context{
		Index:            i,
		Interval:         iv,
		Battery:          batt,
		SoC:              batt.SoC,
		RemainingPeakKWh: peakKWh,
	})

	switch {
	case d.ForceDrain:
		toLoad, spilled, withdrawn := batt.Drain(net)
		net -= toLoad
		r.BatteryToLoadKWh = toLoad
		r.BatteryToGridKWh = spilled
		r.GridExportKWh += spilled
		r.DischargeKWh = withdrawn
	case d.AllowDischarge && net > 0:
		delivered, withdrawn := batt.Discharge(net, d.DischargeCapKWh)
		net -= delivered
		r.BatteryToLoadKWh = delivered
		r.DischargeKWh = withdrawn
	}

	if net > 0 {
		r.GridImportKWh = net
		r.Cost = net * iv.Tariff
	}

	// Discharge priority holds; grid charging applies only when the battery
	// did not discharge this interval.
	if d.GridChargeKWh > 0 && r.DischargeKWh == 0 {
		bought := batt.Charge(d.GridChargeKWh, r.SolarToBatteryKWh)
		r.GridChargeKWh = bought
		r.GridImportKWh += bought
		r.Cost += bought * iv.Tariff
	}

	r.SoC = batt.SoC
	if err := checkInvariants(i, r, batt); err != nil {
		return model.IntervalResult{}, err
	}
	return r, nil
}

func checkInvariants(i int, r model.IntervalResult, batt *model.Battery) error {
	if batt.SoC < -balanceTolerance || batt.SoC > batt.Params.CapacityKWh+balanceTolerance {
		return fmt.Errorf("%w: interval %d: soc %.6f outside [0, %.3f]", ErrStateInvariant, i, batt.SoC, batt.Params.CapacityKWh)
	}
	charge := r.SolarToBatteryKWh + r.GridChargeKWh
	if charge > batt.MaxChargeKWh()+balanceTolerance {
		return fmt.Errorf("%w: interval %d: charge %.6f exceeds power limit", ErrStateInvariant, i, charge)
	}
	if r.DischargeKWh > batt.MaxDischargeKWh()+balanceTolerance {
		return fmt.Errorf("%w: interval %d: discharge %.6f exceeds power limit", ErrStateInvariant, i, r.DischargeKWh)
	}
	in := r.SolarKWh + r.GridImportKWh + r.BatteryToLoadKWh + r.BatteryToGridKWh
	out := r.LoadKWh + r.SolarToBatteryKWh + r.GridChargeKWh + r.GridExportKWh + r.CurtailedKWh
	if math.Abs(in-out) > balanceTolerance {
		return fmt.Errorf("%w: interval %d: energy balance off by %.9f", ErrStateInvariant, i, in-out)
	}
	return nil
}

// remainingPeakDemand estimates, for every interval, the load energy still to
// be served during the upcoming peak window. Inside or before today's window
// this is the rest of today's window demand; after it closes, tomorrow's.
func remainingPeakDemand(series model.Series, startHour, endHour int) []float64 {
	inWindow := func(iv model.Interval) bool {
		h := iv.Start.Hour()
		return h >= startHour && h < endHour
	}
	dayKey := func(iv model.Interval) string { return iv.Start.Format("2006-01-02") }

	dayTotal := make(map[string]float64)
	for _, iv := range series {
		if inWindow(iv) {
			dayTotal[dayKey(iv)] += iv.LoadKWh()
		}
	}

	out := make([]float64, len(series))
	suffix := make(map[string]float64)
	for i := len(series) - 1; i >= 0; i-- {
		iv := series[i]
		if inWindow(iv) {
			suffix[dayKey(iv)] += iv.LoadKWh()
		}
		if iv.Start.Hour() < endHour {
			out[i] = suffix[dayKey(iv)]
		} else {
			next := model.Interval{Start: iv.Start.AddDate(0, 0, 1)}
			out[i] = dayTotal[dayKey(next)]
		}
	}
	return out
}

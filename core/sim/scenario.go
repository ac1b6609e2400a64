package sim

import (
	"fmt"

	"github.com/gridsim/pvdispatch/core/model"
)

// noDischarge is the policy of a battery-less run: nothing ever dispatches.
type noDischarge struct{}

func (noDischarge) Name() string            { return "solar-only" }
func (noDischarge) Window() (int, int)      { return 0, 0 }
func (noDischarge) Decide(Context) Decision { return Decision{} }

// RunBaseline computes the no-solar, no-battery reference: the whole load is
// imported at the interval tariff.
func (e *Engine) RunBaseline(series model.Series) (*model.RunResult, error) {
	if err := series.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInput, err)
	}
	results := make([]model.IntervalResult, 0, len(series))
	for _, iv := range series {
		load := iv.LoadKWh()
		results = append(results, model.IntervalResult{
			Start:         iv.Start,
			LoadKWh:       load,
			Tariff:        iv.Tariff,
			Tier:          iv.Tier,
			GridImportKWh: load,
			Cost:          load * iv.Tariff,
		})
	}
	return summarize("baseline", results, 0), nil
}

// RunSolarOnly simulates solar offsetting load with no storage installed.
func (e *Engine) RunSolarOnly(series model.Series, opts Options) (*model.RunResult, error) {
	batt, err := model.NewBattery(model.BatteryParams{RoundTripEff: 1})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	res, err := e.Run(series, batt, noDischarge{}, opts)
	if err != nil {
		return nil, err
	}
	res.Scenario = "solar-only"
	return res, nil
}

package analysis

import (
	"fmt"
	"io"

	"github.com/gridsim/pvdispatch/core/model"
)

// ScenarioLine summarizes one scenario against the baseline.
type ScenarioLine struct {
	Scenario      string  `json:"scenario"`
	GridImportKWh float64 `json:"grid_import_kwh"`
	GridExportKWh float64 `json:"grid_export_kwh"`
	Cost          float64 `json:"cost"`
	Savings       float64 `json:"savings"`            // cost vs baseline
	ImportReduced float64 `json:"import_reduced_kwh"` // import vs baseline
}

// Report compares simulation scenarios against the no-solar baseline.
type Report struct {
	Lines    []ScenarioLine `json:"lines"`
	Cheapest string         `json:"cheapest"`
}

// CostBenefit builds a comparison report. The first run is treated as the
// baseline; the remaining runs are compared against it.
func CostBenefit(baseline *model.RunResult, runs ...*model.RunResult) Report {
	rep := Report{}
	base := line(baseline, nil)
	rep.Lines = append(rep.Lines, base)
	cheapest := base
	for _, r := range runs {
		l := line(r, &base)
		rep.Lines = append(rep.Lines, l)
		if l.Cost < cheapest.Cost {
			cheapest = l
		}
	}
	rep.Cheapest = cheapest.Scenario
	return rep
}

func line(r *model.RunResult, base *ScenarioLine) ScenarioLine {
	l := ScenarioLine{
		Scenario:      r.Scenario,
		GridImportKWh: r.Totals.GridImportKWh,
		GridExportKWh: r.Totals.GridExportKWh,
		Cost:          r.Totals.Cost,
	}
	if base != nil {
		l.Savings = base.Cost - l.Cost
		l.ImportReduced = base.GridImportKWh - l.GridImportKWh
	}
	return l
}

// Write renders the report as a fixed-width table.
func (r Report) Write(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "%-14s %14s %14s %12s %12s\n", "scenario", "import_kwh", "export_kwh", "cost", "savings"); err != nil {
		return err
	}
	for _, l := range r.Lines {
		if _, err := fmt.Fprintf(w, "%-14s %14.2f %14.2f %12.2f %12.2f\n",
			l.Scenario, l.GridImportKWh, l.GridExportKWh, l.Cost, l.Savings); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "cheapest: %s\n", r.Cheapest)
	return err
}

package sim

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/gridsim/pvdispatch/core/model"
)

// summarize aggregates interval results into daily, monthly and annual
// summaries and computes run-level figures.
func summarize(scenario string, intervals []model.IntervalResult, capacityKWh float64) *model.RunResult {
	res := &model.RunResult{
		Scenario:  scenario,
		Intervals: intervals,
	}
	for _, r := range intervals {
		res.Totals.Add(r)
	}

	res.Daily = groupBy(intervals, "2006-01-02")
	res.Monthly = groupBy(intervals, "2006-01")
	res.Annual = groupBy(intervals, "2006")

	if capacityKWh > 0 {
		res.BatteryCycles = res.Totals.DischargeKWh / capacityKWh
	}

	if len(res.Daily) > 0 {
		costs := make([]float64, len(res.Daily))
		imports := make([]float64, len(res.Daily))
		for i, d := range res.Daily {
			costs[i] = d.Cost
			imports[i] = d.GridImportKWh
		}
		res.MeanDailyCost = stat.Mean(costs, nil)
		res.PeakDailyImportKWh = floats.Max(imports)
	}
	return res
}

func groupBy(intervals []model.IntervalResult, layout string) []model.PeriodSummary {
	buckets := make(map[string]*model.Totals)
	for _, r := range intervals {
		key := r.Start.Format(layout)
		t, ok := buckets[key]
		if !ok {
			t = &model.Totals{}
			buckets[key] = t
		}
		t.Add(r)
	}
	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]model.PeriodSummary, 0, len(keys))
	for _, k := range keys {
		out = append(out, model.PeriodSummary{Period: k, Totals: *buckets[k]})
	}
	return out
}

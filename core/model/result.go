package model

import "time"

// IntervalResult records what happened during one simulation step.
type IntervalResult struct {
	Start time.Time

	LoadKWh  float64
	SolarKWh float64 // generation after AC clipping
	Tariff   float64
	Tier     TariffTier

	SolarToLoadKWh    float64
	SolarToBatteryKWh float64
	GridChargeKWh     float64 // energy bought to charge the battery
	DischargeKWh      float64 // withdrawn from the battery
	BatteryToLoadKWh  float64 // delivered to load after efficiency
	BatteryToGridKWh  float64 // forced-drain energy spilled to the grid

	GridImportKWh float64 // load shortfall plus grid charging
	GridExportKWh float64
	CurtailedKWh  float64

	Cost float64 // interval energy bill
	SoC  float64 // state of charge at the end of the interval
}

// Totals aggregates a sequence of interval results.
type Totals struct {
	LoadKWh        float64 `json:"load_kwh"`
	SolarKWh       float64 `json:"solar_kwh"`
	GridImportKWh  float64 `json:"grid_import_kwh"`
	GridExportKWh  float64 `json:"grid_export_kwh"`
	CurtailedKWh   float64 `json:"curtailed_kwh"`
	ChargeKWh      float64 `json:"charge_kwh"`
	DischargeKWh   float64 `json:"discharge_kwh"`
	GridChargeKWh  float64 `json:"grid_charge_kwh"`
	Cost           float64 `json:"cost"`
	GridChargeCost float64 `json:"grid_charge_cost"`
}

// Add accumulates one interval into the totals.
func (t *Totals) Add(r IntervalResult) {
	t.LoadKWh += r.LoadKWh
	t.SolarKWh += r.SolarKWh
	t.GridImportKWh += r.GridImportKWh
	t.GridExportKWh += r.GridExportKWh
	t.CurtailedKWh += r.CurtailedKWh
	t.ChargeKWh += r.SolarToBatteryKWh + r.GridChargeKWh
	t.DischargeKWh += r.DischargeKWh
	t.GridChargeKWh += r.GridChargeKWh
	t.Cost += r.Cost
	t.GridChargeCost += r.GridChargeKWh * r.Tariff
}

// PeriodSummary is an aggregate over a calendar period.
type PeriodSummary struct {
	Period string `json:"period"` // e.g. 2025-01-07, 2025-01, 2025
	Totals
}

// RunResult is the complete output of one simulation run.
type RunResult struct {
	Scenario  string           `json:"scenario"`
	Intervals []IntervalResult `json:"-"`
	Totals    Totals           `json:"totals"`
	Daily     []PeriodSummary  `json:"daily"`
	Monthly   []PeriodSummary  `json:"monthly"`
	Annual    []PeriodSummary  `json:"annual"`

	// BatteryCycles is total withdrawn energy over capacity, 0 without storage.
	BatteryCycles float64 `json:"battery_cycles"`

	// MeanDailyCost and PeakDailyImportKWh summarize the daily distribution.
	MeanDailyCost      float64 `json:"mean_daily_cost"`
	PeakDailyImportKWh float64 `json:"peak_daily_import_kwh"`
}

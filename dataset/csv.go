package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/gridsim/pvdispatch/core/model"
)

var timeLayouts = []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02 15:04"}

func parseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// LoadRow is one record of the load/tariff input before joining.
type LoadRow struct {
	Start  time.Time
	LoadKW float64
	Tariff float64
	Tier   model.TariffTier
}

// SolarRow is one record of the solar forecast input.
type SolarRow struct {
	Start   time.Time
	SolarKW float64
}

// ReadLoadCSV parses the half-hourly load/tariff series. Expected columns:
// timestamp, load_kw, tariff_rate, tariff_tier.
func ReadLoadCSV(path string) ([]LoadRow, error) {
	records, err := readAll(path)
	if err != nil {
		return nil, err
	}
	rows := make([]LoadRow, 0, len(records))
	for i, rec := range records {
		if len(rec) < 4 {
			return nil, fmt.Errorf("%s row %d: want 4 columns, got %d", path, i+2, len(rec))
		}
		t, err := parseTime(rec[0])
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %v", path, i+2, err)
		}
		load, err := strconv.ParseFloat(rec[1], 64)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: load: %v", path, i+2, err)
		}
		rate, err := strconv.ParseFloat(rec[2], 64)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: tariff: %v", path, i+2, err)
		}
		tier, err := model.ParseTier(rec[3])
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %v", path, i+2, err)
		}
		rows = append(rows, LoadRow{Start: t, LoadKW: load, Tariff: rate, Tier: tier})
	}
	return rows, nil
}

// ReadSolarCSV parses the solar forecast. Expected columns: timestamp, solar_kw.
func ReadSolarCSV(path string) ([]SolarRow, error) {
	records, err := readAll(path)
	if err != nil {
		return nil, err
	}
	rows := make([]SolarRow, 0, len(records))
	for i, rec := range records {
		if len(rec) < 2 {
			return nil, fmt.Errorf("%s row %d: want 2 columns, got %d", path, i+2, len(rec))
		}
		t, err := parseTime(rec[0])
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %v", path, i+2, err)
		}
		kw, err := strconv.ParseFloat(rec[1], 64)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: solar: %v", path, i+2, err)
		}
		rows = append(rows, SolarRow{Start: t, SolarKW: kw})
	}
	return rows, nil
}

func readAll(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("%s: no data rows", path)
	}
	return records[1:], nil // skip header
}

// Join aligns the solar forecast to the load series by timestamp. Every load
// interval must have exactly one matching solar row.
func Join(load []LoadRow, solar []SolarRow) (model.Series, error) {
	byTime := make(map[int64]float64, len(solar))
	for _, s := range solar {
		byTime[s.Start.Unix()] = s.SolarKW
	}
	series := make(model.Series, 0, len(load))
	for _, l := range load {
		kw, ok := byTime[l.Start.Unix()]
		if !ok {
			return nil, fmt.Errorf("no solar row for %s", l.Start.Format(time.RFC3339))
		}
		series = append(series, model.Interval{
			Start:   l.Start,
			LoadKW:  l.LoadKW,
			SolarKW: kw,
			Tariff:  l.Tariff,
			Tier:    l.Tier,
		})
	}
	return series, nil
}

// WriteLedgerCSV writes per-interval results for the reporting collaborator.
func WriteLedgerCSV(path string, results []model.IntervalResult) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{
		"timestamp",
		"load_kwh",
		"solar_kwh",
		"tariff_rate",
		"tariff_tier",
		"solar_to_load_kwh",
		"solar_to_battery_kwh",
		"grid_charge_kwh",
		"battery_discharge_kwh",
		"battery_to_load_kwh",
		"battery_to_grid_kwh",
		"grid_import_kwh",
		"grid_export_kwh",
		"curtailed_kwh",
		"cost",
		"soc_kwh",
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, r := range results {
		row := []string{
			r.Start.Format(time.RFC3339),
			fmtFloat(r.LoadKWh),
			fmtFloat(r.SolarKWh),
			fmtFloat(r.Tariff),
			r.Tier.String(),
			fmtFloat(r.SolarToLoadKWh),
			fmtFloat(r.SolarToBatteryKWh),
			fmtFloat(r.GridChargeKWh),
			fmtFloat(r.DischargeKWh),
			fmtFloat(r.BatteryToLoadKWh),
			fmtFloat(r.BatteryToGridKWh),
			fmtFloat(r.GridImportKWh),
			fmtFloat(r.GridExportKWh),
			fmtFloat(r.CurtailedKWh),
			fmtFloat(r.Cost),
			fmtFloat(r.SoC),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return w.Error()
}

// WriteSeriesCSV writes a series back out as the two input files, for use by
// the synth command.
func WriteSeriesCSV(loadPath, solarPath string, series model.Series) error {
	lf, err := os.Create(loadPath)
	if err != nil {
		return err
	}
	defer lf.Close()
	lw := csv.NewWriter(lf)
	defer lw.Flush()
	if err := lw.Write([]string{"timestamp", "load_kw", "tariff_rate", "tariff_tier"}); err != nil {
		return err
	}

	sf, err := os.Create(solarPath)
	if err != nil {
		return err
	}
	defer sf.Close()
	sw := csv.NewWriter(sf)
	defer sw.Flush()
	if err := sw.Write([]string{"timestamp", "solar_kw"}); err != nil {
		return err
	}

	for _, iv := range series {
		ts := iv.Start.Format(time.RFC3339)
		if err := lw.Write([]string{ts, fmtFloat(iv.LoadKW), fmtFloat(iv.Tariff), iv.Tier.String()}); err != nil {
			return err
		}
		if err := sw.Write([]string{ts, fmtFloat(iv.SolarKW)}); err != nil {
			return err
		}
	}
	if err := lw.Error(); err != nil {
		return err
	}
	return sw.Error()
}

func fmtFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}

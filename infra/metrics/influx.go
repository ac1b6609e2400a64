package metrics

import (
	"context"
	"math"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/gridsim/pvdispatch/infra/logger"
)

// InfluxSink writes simulation results to an InfluxDB instance using the
// official client. Per-interval points land in the dispatch_interval
// measurement, run totals in dispatch_run.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(cfg Config) RunSink {
	sink := NewInfluxSink(cfg.InfluxURL, cfg.InfluxToken, cfg.InfluxOrg, cfg.InfluxBucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return NopSink{}
	}
	return sink
}

// RecordRun writes the run summary and every interval result.
func (s *InfluxSink) RecordRun(rec RunRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	t := rec.Result.Totals
	summary := write.NewPointWithMeasurement("dispatch_run").
		AddTag("run_id", rec.RunID).
		AddTag("policy", rec.Policy).
		AddField("grid_import_kwh", round3(t.GridImportKWh)).
		AddField("grid_export_kwh", round3(t.GridExportKWh)).
		AddField("cost", round3(t.Cost)).
		AddField("battery_cycles", round3(rec.Result.BatteryCycles)).
		SetTime(rec.Finished)
	if err := s.writeAPI.WritePoint(ctx, summary); err != nil {
		return err
	}

	for _, r := range rec.Result.Intervals {
		p := write.NewPointWithMeasurement("dispatch_interval").
			AddTag("run_id", rec.RunID).
			AddTag("policy", rec.Policy).
			AddTag("tier", r.Tier.String()).
			AddField("grid_import_kwh", round3(r.GridImportKWh)).
			AddField("grid_export_kwh", round3(r.GridExportKWh)).
			AddField("soc_kwh", round3(r.SoC)).
			AddField("cost", round3(r.Cost)).
			SetTime(r.Start)
		if err := s.writeAPI.WritePoint(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the underlying client.
func (s *InfluxSink) Close() { s.client.Close() }

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}

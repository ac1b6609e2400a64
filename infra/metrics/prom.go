package metrics

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PromSink records completed simulation runs in Prometheus metrics.
type PromSink struct {
	runs   *prometheus.CounterVec
	totals *prometheus.GaugeVec
}

// NewPromSink registers run metrics on the provided Prometheus registerer.
// If reg is nil, the default registerer is used. If the collectors are already
// registered, the existing ones are reused.
func NewPromSink(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "simulation_runs_total",
		Help: "Total number of completed simulation runs",
	}, []string{"policy"})
	totals := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "simulation_run_total",
		Help: "Aggregate figures of the most recent run per policy",
	}, []string{"policy", "figure"})

	if err := reg.Register(runs); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			runs = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(totals); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			totals = are.ExistingCollector.(*prometheus.GaugeVec)
		} else {
			return nil, err
		}
	}
	return &PromSink{runs: runs, totals: totals}, nil
}

// RecordRun increments the run counter and publishes the run totals.
func (s *PromSink) RecordRun(rec RunRecord) error {
	s.runs.WithLabelValues(rec.Policy).Inc()
	t := rec.Result.Totals
	s.totals.WithLabelValues(rec.Policy, "grid_import_kwh").Set(t.GridImportKWh)
	s.totals.WithLabelValues(rec.Policy, "grid_export_kwh").Set(t.GridExportKWh)
	s.totals.WithLabelValues(rec.Policy, "cost").Set(t.Cost)
	s.totals.WithLabelValues(rec.Policy, "battery_cycles").Set(rec.Result.BatteryCycles)
	return nil
}

// StartPromServer starts an HTTP server exposing Prometheus metrics on the given address.
// The server runs until the provided context is canceled.
// A dedicated ServeMux is used to avoid interfering with other handlers.
func StartPromServer(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("prom server shutdown: %v", err)
		}
		cancel()
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

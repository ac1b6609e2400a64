package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gridsim/pvdispatch/config"
	"github.com/gridsim/pvdispatch/core/model"
	"github.com/gridsim/pvdispatch/core/sim"
	"github.com/gridsim/pvdispatch/dataset"
	"github.com/gridsim/pvdispatch/infra/logger"
	"github.com/gridsim/pvdispatch/infra/metrics"
	"github.com/gridsim/pvdispatch/infra/mqtt"
)

// Service wires the dispatch engine to its collaborators: input loading,
// ledger output, metric sinks and the optional MQTT summary publisher.
type Service struct {
	cfg       *config.Config
	engine    *sim.Engine
	sink      metrics.RunSink
	publisher mqtt.Publisher
	log       logger.Logger
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	var sinks []metrics.RunSink
	if cfg.Metrics.PrometheusEnabled {
		sink, err := metrics.NewPromSink(nil)
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sinks = append(sinks, sink)
	}
	if cfg.Metrics.InfluxEnabled {
		sinks = append(sinks, metrics.NewInfluxSinkWithFallback(cfg.Metrics))
	}
	var sink metrics.RunSink = metrics.NopSink{}
	if len(sinks) == 1 {
		sink = sinks[0]
	} else if len(sinks) > 1 {
		sink = metrics.NewMultiSink(sinks...)
	}

	var pub mqtt.Publisher
	if cfg.MQTT.Enabled {
		p, err := mqtt.NewPahoPublisher(cfg.MQTT)
		if err != nil {
			return nil, fmt.Errorf("mqtt publisher: %w", err)
		}
		pub = p
	}

	return &Service{
		cfg:       cfg,
		engine:    sim.New(logger.New("engine")),
		sink:      sink,
		publisher: pub,
		log:       logg,
	}, nil
}

// LoadSeries reads and joins the configured input files.
func (s *Service) LoadSeries() (model.Series, error) {
	load, err := dataset.ReadLoadCSV(s.cfg.Input.LoadCSV)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", sim.ErrInput, err)
	}
	solar, err := dataset.ReadSolarCSV(s.cfg.Input.SolarCSV)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", sim.ErrInput, err)
	}
	series, err := dataset.Join(load, solar)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", sim.ErrInput, err)
	}
	return series, nil
}

func (s *Service) battery() (*model.Battery, error) {
	site := s.cfg.Site
	power := site.BatteryPowerKW()
	return model.NewBattery(model.BatteryParams{
		CapacityKWh:    site.BatteryCapacityMWh * 1000,
		MaxChargeKW:    power,
		MaxDischargeKW: power,
		RoundTripEff:   site.RoundTripEfficiency,
	})
}

func (s *Service) options() sim.Options {
	return sim.Options{
		AllowExport:    s.cfg.Site.AllowExport,
		SolarACLimitKW: s.cfg.Site.SolarACLimitKW(),
	}
}

// Run executes one simulation under the configured policy, writes the ledger
// and pushes the run to the configured sinks.
func (s *Service) Run(ctx context.Context) (*model.RunResult, error) {
	series, err := s.LoadSeries()
	if err != nil {
		return nil, err
	}

	site := s.cfg.Site
	pol, err := sim.NewPolicy(site.Policy, site.PeakWindowStart, site.PeakWindowEnd, site.DrainDeadline, site.AllowGridCharge)
	if err != nil {
		return nil, err
	}
	batt, err := s.battery()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", sim.ErrConfig, err)
	}

	if s.cfg.Metrics.PrometheusEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.cfg.Metrics.PrometheusAddr); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}

	res, err := s.engine.Run(series, batt, pol, s.options())
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	finished := time.Now()
	s.log.Infof("run %s (%s): import=%.2f kWh export=%.2f kWh cost=%.2f cycles=%.2f",
		runID, pol.Name(), res.Totals.GridImportKWh, res.Totals.GridExportKWh, res.Totals.Cost, res.BatteryCycles)

	if s.cfg.Output.LedgerCSV != "" {
		if err := dataset.WriteLedgerCSV(s.cfg.Output.LedgerCSV, res.Intervals); err != nil {
			return nil, fmt.Errorf("write ledger: %w", err)
		}
	}
	if err := s.sink.RecordRun(metrics.RunRecord{RunID: runID, Policy: pol.Name(), Finished: finished, Result: res}); err != nil {
		s.log.Errorf("record run: %v", err)
	}
	if s.publisher != nil {
		summary := mqtt.Summary{
			RunID:    runID,
			Policy:   pol.Name(),
			Finished: finished,
			Totals:   res.Totals,
			Cycles:   res.BatteryCycles,
		}
		if err := s.publisher.PublishSummary(summary); err != nil {
			s.log.Errorf("publish summary: %v", err)
		}
	}
	return res, nil
}

// RunAll executes the baseline, solar-only and both policy scenarios on the
// same input, for the cost-benefit comparison.
func (s *Service) RunAll(ctx context.Context) (baseline, solarOnly, policyA, policyB *model.RunResult, err error) {
	series, err := s.LoadSeries()
	if err != nil {
		return nil, nil, nil, nil, err
	}
	opts := s.options()
	site := s.cfg.Site

	baseline, err = s.engine.RunBaseline(series)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	solarOnly, err = s.engine.RunSolarOnly(series, opts)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	for _, name := range []string{"A", "B"} {
		pol, perr := sim.NewPolicy(name, site.PeakWindowStart, site.PeakWindowEnd, site.DrainDeadline, site.AllowGridCharge)
		if perr != nil {
			return nil, nil, nil, nil, perr
		}
		batt, berr := s.battery()
		if berr != nil {
			return nil, nil, nil, nil, fmt.Errorf("%w: %v", sim.ErrConfig, berr)
		}
		res, rerr := s.engine.Run(series, batt, pol, opts)
		if rerr != nil {
			return nil, nil, nil, nil, rerr
		}
		if name == "A" {
			policyA = res
		} else {
			policyB = res
		}
	}
	return baseline, solarOnly, policyA, policyB, nil
}

// Close releases external connections.
func (s *Service) Close() error {
	if s.publisher != nil {
		s.publisher.Close()
	}
	return nil
}

package metrics

import (
	"time"

	"github.com/gridsim/pvdispatch/core/model"
)

// RunRecord describes one completed simulation run for observability purposes.
type RunRecord struct {
	RunID    string
	Policy   string
	Finished time.Time
	Result   *model.RunResult
}

// RunSink records completed runs.
type RunSink interface {
	RecordRun(rec RunRecord) error
}

// NopSink implements RunSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordRun(RunRecord) error { return nil }

// MultiSink fans a run record out to multiple sinks.
type MultiSink struct {
	Sinks []RunSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...RunSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordRun forwards the record to all sinks, returning the first error encountered.
func (m *MultiSink) RecordRun(rec RunRecord) error {
	for _, s := range m.Sinks {
		if err := s.RecordRun(rec); err != nil {
			return err
		}
	}
	return nil
}

package metrics

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureSink struct {
	records []RunRecord
	fail    bool
}

func (c *captureSink) RecordRun(rec RunRecord) error {
	if c.fail {
		return fmt.Errorf("sink failed")
	}
	c.records = append(c.records, rec)
	return nil
}

func TestMultiSinkFanOut(t *testing.T) {
	a := &captureSink{}
	b := &captureSink{}
	m := NewMultiSink(a, b)

	require.NoError(t, m.RecordRun(record("rate-seeking")))
	assert.Len(t, a.records, 1)
	assert.Len(t, b.records, 1)
	assert.Equal(t, "run-1", a.records[0].RunID)
}

func TestMultiSinkFirstError(t *testing.T) {
	a := &captureSink{fail: true}
	b := &captureSink{}
	m := NewMultiSink(a, b)

	assert.Error(t, m.RecordRun(record("rate-seeking")))
	assert.Empty(t, b.records)
}

func TestNopSink(t *testing.T) {
	assert.NoError(t, NopSink{}.RecordRun(record("baseline")))
}

func TestConfigValidate(t *testing.T) {
	var c Config
	c.SetDefaults()
	assert.Equal(t, ":2112", c.PrometheusAddr)
	require.NoError(t, c.Validate())

	c.InfluxEnabled = true
	assert.ErrorContains(t, c.Validate(), "influx_url")

	c.InfluxURL = "http://localhost:8086"
	assert.ErrorContains(t, c.Validate(), "influx_org")

	c.InfluxOrg = "gridsim"
	c.InfluxBucket = "dispatch"
	assert.NoError(t, c.Validate())
}

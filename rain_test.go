package main

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_weatherstation_recordRainData(t *testing.T) {
	ts := newTestStation(t)

	// a tip every 6 seconds for an hour
	for i := 0; i < 30; i++ {
		ts.closures(ts.s.Acc.NotifyRainClosure, 10, 6000)
		ts.recordRainData()
	}
	assert.InDelta(t, 0.11, testutil.ToFloat64(Prom_rainMinute), 1e-9)
	assert.InDelta(t, 6.6, ts.getHourlyRate(), 1e-9)
	assert.InDelta(t, 0, testutil.ToFloat64(Prom_rainHour), 1e-9)

	for i := 30; i < 60; i++ {
		ts.closures(ts.s.Acc.NotifyRainClosure, 10, 6000)
		ts.recordRainData()
	}
	assert.InDelta(t, 6.6, testutil.ToFloat64(Prom_rainHour), 1e-9)
	assert.InDelta(t, 6.6, testutil.ToFloat64(Prom_rainDayTotal), 1e-9)

	// a dry hour leaves the day total alone
	for i := 0; i < 60; i++ {
		ts.recordRainData()
	}
	assert.InDelta(t, 0, testutil.ToFloat64(Prom_rainHour), 1e-9)
	assert.InDelta(t, 6.6, testutil.ToFloat64(Prom_rainDayTotal), 1e-9)
	assert.InDelta(t, 0, testutil.ToFloat64(Prom_rainRatePerHour), 1e-9)
}

func Test_weatherstation_getHourlyRate(t *testing.T) {
	ts := newTestStation(t)
	require.InDelta(t, 0, ts.getHourlyRate(), 1e-9)

	// check we don't blow up for all offsets
	for i := 0; i < 59; i++ {
		ts.closures(ts.s.Acc.NotifyRainClosure, 1, 6000)
		ts.s.Rain.RainTick()
		// 0.011" a minute over at most the last 10 minutes
		want := 0.011 * float64(min(i+1, hourRateMin)) * 6
		require.InDelta(t, want, ts.getHourlyRate(), 1e-9, "minute %v", i)
	}
}

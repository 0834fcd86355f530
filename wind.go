package main

import (
	"context"
	"time"

	logger "github.com/sirupsen/logrus"
)

/*
Measuring gusts and wind intensity

The anemometer closes its reed switch once per revolution and 1 closure per
second is 1.492 MPH. Each second the closures are drained with the vane
direction, every 5 seconds those are folded into one vector averaged sample
and the last 24 of those make the 2 minute window.

Direction is averaged as vectors so a wind swinging either side of north
averages to north rather than south.

The gust is the highest 5 second average in the 2 minute window.
*/

func (w *weatherstation) StartWindMonitor(ctx context.Context) {
	logger.Info("Starting wind monitor")
	runEvery(ctx, w.clock, time.Second, func(time.Time) {
		w.recordWindData()
	})
}

func (w *weatherstation) recordWindData() {
	r := w.s.Wind.WindTick()
	if *w.args.Speedon {
		logger.Infof("Wind pulses [%v] speed [%.2f]mph", r.Pulses, mph(r.Speed))
	}
	if *w.args.Diron {
		logger.Infof("Wind direction [%v]", r.Direction)
	}

	sample := w.s.Wind.LastFiveSecond()
	Prom_windspeed.Set(mph(sample.Speed))
	if deg, ok := bearing(sample); ok {
		Prom_windDirection.Set(deg)
	}

	avg := w.s.Wind.TwoMinuteAverage()
	Prom_windspeed2m.Set(mph(avg.Speed))
	if deg, ok := bearing(avg); ok {
		Prom_windDirection2m.Set(deg)
	}
	Prom_windgust.Set(mph(w.s.Wind.Gust()))
}

package main

import (
	"context"
	"time"

	logger "github.com/sirupsen/logrus"
)

const hourRateMin int = 10 // number of minutes to average for hourly rate

func (w *weatherstation) StartRainMonitor(ctx context.Context) {
	logger.Info("Starting rain monitor")
	runEvery(ctx, w.clock, time.Minute, func(time.Time) {
		w.recordRainData()
	})
}

func (w *weatherstation) recordRainData() {
	minute := w.s.Rain.RainTick()
	hour, day := w.s.Rain.LastHourAndDay()
	rate := w.getHourlyRate()

	if *w.args.Rainon {
		logger.Infof("Rain minute [%.3f] hour [%.3f] 24h [%.3f] rate [%.3f]in", inches(minute), inches(hour), inches(day), rate)
	}

	Prom_rainMinute.Set(inches(minute))
	Prom_rainHour.Set(inches(hour))
	Prom_rainDayTotal.Set(inches(day))
	Prom_rainRatePerHour.Set(rate)
}

// work out the rate per hour assuming it continues as it has in the last
// hourRateMin minutes
func (w *weatherstation) getHourlyRate() float64 {
	pos, _ := w.s.Rain.Positions()
	count := SumLastRange(pos, hourRateMin, w.s.Rain.Minutes())

	hourMultiplier := float64(60 / hourRateMin)

	return inches(count) * hourMultiplier
}

package main

import (
	"context"
	"time"

	logger "github.com/sirupsen/logrus"
)

func (w *weatherstation) StartAtmosphericMonitor(ctx context.Context) {
	logger.Info("Starting atmosphere monitors")
	runEvery(ctx, w.clock, time.Minute, func(t time.Time) {
		w.recordAtmosphericData(t)
	})
}

// recordAtmosphericData leaves a gauge at its last value when its sensor
// fails, the wind and rain windows are unaffected.
func (w *weatherstation) recordAtmosphericData(t time.Time) {
	if w.s.Atm != nil {
		if c, err := w.s.Atm.GetTemperature(); err != nil {
			logger.Warnf("No temp data at %v [%v]", t.Format(time.ANSIC), err)
		} else {
			Prom_temperature.Set(c.Float64())
		}
		if rh, err := w.s.Atm.GetHumidity(); err != nil {
			logger.Warnf("No humidity data at %v [%v]", t.Format(time.ANSIC), err)
		} else {
			Prom_humidity.Set(rh.Float64())
		}
		if hPa, err := w.s.Atm.GetPressure(); err != nil {
			logger.Warnf("No pressure data at %v [%v]", t.Format(time.ANSIC), err)
		} else {
			Prom_atmPresure.Set(hPaToInHg(hPa.Float64()))
		}
	}

	if lvl, err := w.s.LightLevel(); err != nil {
		logger.Debugf("No light level [%v]", err)
	} else {
		Prom_lightLevel.Set(lvl)
	}
}

package main

import (
	"context"
	"math"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	logger "github.com/sirupsen/logrus"
	"github.com/talbot-j/WeatherStation/env"
	"github.com/talbot-j/WeatherStation/sensors"
)

const Rd = 287.1
const g = 9.807      // gravity
const z0 = 24.71     // station height above sea level, m
const kelvin = 273.1 // as used by the sea level reduction

// weatherReport is one reporting period in the units the station publishes.
type weatherReport struct {
	TempC        float64
	TempF        float64
	DewPointF    float64
	Humidity     float64
	PressureHpa  float64
	PressureIn   float64 // reduced to sea level
	HasAtmos     bool
	RainIn       float64 // last completed hour
	RainMM       float64
	DailyRainIn  float64
	WindDir      float64
	WindSpeedMph float64
	WindGustMph  float64
}

// Reporting called as a go routine:
// * log a summary every ReportFreqMin mins
// * write the gauges to the node exporter textfile every minute
func (w *weatherstation) Reporting(ctx context.Context) {
	runEvery(ctx, w.clock, time.Minute, func(t time.Time) {
		if t.Minute()%env.ReportFreqMin == 0 {
			w.logReport(w.prepData())
		}
		if *w.args.Test {
			return
		}
		if err := w.writeMetrics(); err != nil {
			logger.Errorf("Failed to write metrics [%v]", err)
		}
	})
}

func (w *weatherstation) writeMetrics() error {
	return prometheus.WriteToTextfile(w.cfg.MetricsFile, prometheus.DefaultGatherer)
}

func (w *weatherstation) logReport(r *weatherReport) {
	fields := logger.Fields{
		"rainIn":      r.RainIn,
		"rainMm":      r.RainMM,
		"dailyRainIn": r.DailyRainIn,
		"windDir":     r.WindDir,
		"windMph":     r.WindSpeedMph,
		"gustMph":     r.WindGustMph,
	}
	if r.HasAtmos {
		fields["tempF"] = r.TempF
		fields["dewPointF"] = r.DewPointF
		fields["humidity"] = r.Humidity
		fields["baromIn"] = r.PressureIn
	}
	logger.WithFields(fields).Info("Recording data")
}

// build the report from the current windows
func (w *weatherstation) prepData() *weatherReport {
	wd := weatherReport{WindDir: math.NaN()}

	hour, day := w.s.Rain.LastHourAndDay()
	wd.RainIn = inches(hour)
	wd.RainMM = inToMm(wd.RainIn)
	wd.DailyRainIn = inches(day)

	avg := w.s.Wind.TwoMinuteAverage()
	if deg, ok := bearing(avg); ok {
		wd.WindDir = deg
	}
	wd.WindSpeedMph = mph(avg.Speed)
	wd.WindGustMph = mph(w.s.Wind.Gust())

	if w.s.Atm == nil {
		return &wd
	}
	tempC, terr := w.s.Atm.GetTemperature()
	humidity, herr := w.s.Atm.GetHumidity()
	pressure, perr := w.s.Atm.GetPressure()
	if terr != nil || herr != nil || perr != nil {
		logger.Warnf("Atmosphere incomplete, temp [%v] humidity [%v] pressure [%v]", terr, herr, perr)
		return &wd
	}
	wd.HasAtmos = true
	wd.TempC = tempC.Float64()
	wd.TempF = ctof(wd.TempC)
	wd.Humidity = humidity.Float64()
	wd.PressureHpa = pressure.Float64()
	wd.PressureIn = seaLevel(hPaToInHg(wd.PressureHpa), wd.TempC)
	wd.DewPointF = dewPointF(wd.TempC, wd.Humidity)
	return &wd
}

// seaLevel reduces the observed pressure p0 to sea level as psl = p0 exp(z0/H),
// with scale height H = RdT/g, T in Kelvin, Rd = 287.1 J/(kg K) and
// g = 9.807 m/s2.
func seaLevel(p0 float64, tempC float64) float64 {
	H := (Rd * (tempC + kelvin)) / g
	return p0 * math.Exp(z0/H)
}

// Td = T - ((100 - RH)/5.)
func dewPointF(tempC, rh float64) float64 {
	return ctof(tempC - ((100 - rh) / 5.0))
}

// bearing turns an averaged vector back into degrees, false if there is no
// direction to report.
func bearing(s sensors.WindSample) (float64, bool) {
	if !s.HasDirection {
		return 0, false
	}
	deg := s.Vector.Bearing()
	if math.IsNaN(deg) {
		return 0, false
	}
	return deg, true
}

// mph from thousandths of a MPH
func mph(milli uint32) float64 {
	return float64(milli) / 1000
}

// inches from thousandths of an inch
func inches(thou uint32) float64 {
	return float64(thou) / 1000
}

func inToMm(in float64) float64 {
	return in * env.MmPerInch
}

func hPaToInHg(hPa float64) float64 {
	return hPa * 100 / env.PaPerInHg
}

func ctof(c float64) float64 {
	//(0°C × 9/5) + 32 = 32°F
	return ((c * 9 / 5) + 32)
}

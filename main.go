package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	logger "github.com/sirupsen/logrus"
	"github.com/talbot-j/WeatherStation/env"
	"github.com/talbot-j/WeatherStation/sensors"
)

const version = "WeatherStation-2.0.0"

type weatherstation struct {
	s     *sensors.Sensors
	cfg   env.Config
	args  env.Args
	clock clockwork.Clock
}

var Prom_atmPresure = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "atmospheric_pressure",
		Help: "Atmospheric pressure inHg",
	},
)

var Prom_rainMinute = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "rain_minute",
		Help: "Rain in the last minute, inches",
	},
)

var Prom_rainRatePerHour = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "rain_hour_rate",
		Help: "The rain rate based on the last 10 minutes, inches per hour",
	},
)

var Prom_rainHour = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "rain_hour",
		Help: "Rain in the last completed hour, inches",
	},
)

var Prom_rainDayTotal = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "rain_day",
		Help: "The rain total over the last 24 completed hours, inches",
	},
)

var Prom_humidity = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "relative_humidity",
		Help: "Relative Humidity",
	},
)

var Prom_temperature = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "temperature",
		Help: "Temperature C",
	},
)

var Prom_lightLevel = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "light_level",
		Help: "Light sensor volts against a 3.3V reference",
	},
)

var Prom_windspeed = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "windspeed",
		Help: "5 second average wind speed mph",
	},
)

var Prom_windspeed2m = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "windspeed_2m",
		Help: "2 minute average wind speed mph",
	},
)

var Prom_windgust = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "windgust",
		Help: "Highest 5 second average in the last 2 minutes, mph",
	},
)

var Prom_windDirection = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "winddirection",
		Help: "5 second average wind direction Deg",
	},
)

var Prom_windDirection2m = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "winddirection_2m",
		Help: "2 minute average wind direction Deg",
	},
)

func init() {
	prometheus.MustRegister(
		Prom_atmPresure,
		Prom_humidity,
		Prom_rainMinute,
		Prom_rainRatePerHour,
		Prom_rainHour,
		Prom_rainDayTotal,
		Prom_temperature,
		Prom_lightLevel,
		Prom_windspeed,
		Prom_windspeed2m,
		Prom_windgust,
		Prom_windDirection,
		Prom_windDirection2m)
}

func main() {
	logger.Infof("Starting weather station [%v]", version)

	args, err := env.ParseArgs(flag.CommandLine, os.Args[1:])
	if err != nil {
		logger.Fatalf("Bad arguments [%v]", err)
	}
	cfg, err := env.Load(*args.ConfigFile)
	if err != nil {
		logger.Fatalf("Bad configuration [%v]", err)
	}
	setLogLevel(cfg.LogLevel, *args.Verbose)

	if *args.Test {
		logger.Info("TEST MODE")
	}
	if *args.NoAtmosHead {
		cfg.Atmospheric = false
	}

	logger.Infof("%v: Initialize sensors...", time.Now().Format(time.RFC822))
	s, err := sensors.InitSensors(cfg, args)
	if err != nil {
		logger.Fatalf("Failed to initialise sensors!! [%v]", err)
	}
	defer s.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w := &weatherstation{s: s, cfg: cfg, args: args, clock: clockwork.NewRealClock()}
	w.run(ctx)
	logger.Info("Exiting...")
}

// run starts the edge monitors and the polling loops and blocks until ctx is
// done and they have all returned.
func (w *weatherstation) run(ctx context.Context) {
	w.s.Start(ctx)

	var wg sync.WaitGroup
	for _, f := range []func(context.Context){
		w.StartWindMonitor,
		w.StartRainMonitor,
		w.StartAtmosphericMonitor,
		w.Reporting,
		w.heartbeat,
	} {
		wg.Add(1)
		go func(f func(context.Context)) {
			defer wg.Done()
			f(ctx)
		}(f)
	}
	wg.Wait()
	w.s.Wait()
}

func (w *weatherstation) heartbeat(ctx context.Context) {
	logger.Info("Heartbeat started")
	runEvery(ctx, w.clock, env.HeartbeatPeriod, func(time.Time) {
		logger.Debug("Sending heartbeat")
		w.s.Heartbeat.Blink()
	})
}

func setLogLevel(level string, verbose bool) {
	if verbose {
		logger.SetLevel(logger.DebugLevel)
		return
	}
	l, err := logger.ParseLevel(level)
	if err != nil {
		logger.Warnf("Unknown log level [%v], using info", level)
		l = logger.InfoLevel
	}
	logger.SetLevel(l)
}

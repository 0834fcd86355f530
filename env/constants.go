package env

import "time"

const (
	GPIO04 = "GPIO04"
	GPIO12 = "GPIO12" // rain pin
	GPIO17 = "GPIO17"
	GPIO19 = "GPIO19" // rain tip LED
	GPIO20 = "GPIO20" // heartbeat LED
	GPIO22 = "GPIO22"
	GPIO27 = "GPIO27" // wind pin

	RainSensorIn = GPIO12
	WindSensorIn = GPIO27

	HeartbeatLed = GPIO20
	RainTipLed   = GPIO19

	// the ADS1115 channels on the masthead board
	WindDirChannel  = 3
	LightChannel    = 0
	Ref3V3Channel   = 1
	ADCFullScaleMV  = 5000
	VaneADCMaxCount = 1023 // the vane ladder is calibrated against a 10-bit ADC

	// Ignore switch-bounce glitches less than 10ms after the reed switch closes
	// (142MPH max reading)
	WindDebounce = time.Millisecond * 10
	RainDebounce = time.Millisecond * 10

	// 1 closure/second = 1.492MPH wind, stored as thousandths of a MPH
	MphMilliPerPulse = 1492
	// 0.011" of rain per bucket tip, stored as thousandths of an inch
	RainUnitsPerTip = 11

	MmPerInch     = 25.4
	PaPerInHg     = 3386.38
	ReportFreqMin = 15

	LEDFlashDuration = time.Millisecond * 50
	HeartbeatPeriod  = time.Second * 30

	MetricsTextfile = "/var/lib/node_exporter/textfile_collector/weather.prom"
)

// supported hardware interrupt sources for the reed switches
var EdgePins = []string{GPIO04, GPIO12, GPIO17, GPIO22, GPIO27}

package sensors

import (
	"errors"
	"math"

	"github.com/jonboulle/clockwork"
	logger "github.com/sirupsen/logrus"
	"github.com/talbot-j/WeatherStation/htu21d"
	"github.com/talbot-j/WeatherStation/mpl3115a2"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

var ErrNoAtmosphere = errors.New("atmosphere sensor not present")

type PressurehPa float64
type RelHumidity float64
type TemperatureC float64

func (p PressurehPa) Float64() float64 {
	return float64(p)
}

func (r RelHumidity) Float64() float64 {
	return float64(r)
}

func (t TemperatureC) Float64() float64 {
	return float64(t)
}

// Atmosphere is the optional masthead pair: HTU21D for temperature and
// humidity, MPL3115A2 for pressure.
type Atmosphere struct {
	TH   *htu21d.Dev
	Baro *mpl3115a2.Dev
}

// NewAtmosphere probes both sensors. A sensor that does not answer is left
// nil and its reads return ErrNoAtmosphere.
func NewAtmosphere(bus i2c.Bus, clock clockwork.Clock) *Atmosphere {
	a := &Atmosphere{}

	logger.Infof("Starting HTU21D reader [%x]", htu21d.Addr)
	th, err := htu21d.New(bus, clock)
	if err != nil {
		logger.Errorf("Failed to open HTU21D sensor: %v", err)
	} else {
		a.TH = th
	}

	logger.Infof("Starting MPL3115A2 reader [%x]", mpl3115a2.Addr)
	baro, err := mpl3115a2.New(bus, clock)
	if err != nil {
		logger.Errorf("Failed to open MPL3115A2 sensor: %v", err)
	} else {
		a.Baro = baro
	}
	return a
}

func (a *Atmosphere) GetTemperature() (TemperatureC, error) {
	if a == nil || a.TH == nil {
		return 0, ErrNoAtmosphere
	}
	c, err := a.TH.Temperature()
	if err != nil {
		return 0, err
	}
	return TemperatureC(math.Round(c*100) / 100), nil
}

func (a *Atmosphere) GetHumidity() (RelHumidity, error) {
	if a == nil || a.TH == nil {
		return 0, ErrNoAtmosphere
	}
	rh, err := a.TH.Humidity()
	if err != nil {
		return 0, err
	}
	return RelHumidity(math.Round(rh)), nil
}

func (a *Atmosphere) GetPressure() (PressurehPa, error) {
	if a == nil || a.Baro == nil {
		return 0, ErrNoAtmosphere
	}
	p, err := a.Baro.Pressure()
	if err != nil {
		return 0, err
	}
	return PressurehPa(math.Round((float64(p)/float64(100*physic.Pascal))*100) / 100), nil
}

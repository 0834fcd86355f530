package sensors

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	logger "github.com/sirupsen/logrus"
	"github.com/talbot-j/WeatherStation/env"
	"github.com/talbot-j/WeatherStation/led"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/ads1x15"
	"periph.io/x/host/v3"
)

/*
 * Sensors owns the masthead hardware and feeds the reed switch edges into the
 * accumulator. The aggregators only ever see the accumulator.
 */

const (
	edgeWait = 500 * time.Millisecond
	ref3V3   = 3.3
)

var ErrNoLightSensor = errors.New("light sensor not configured")

var adcChannels = [...]ads1x15.Channel{ads1x15.Channel0, ads1x15.Channel1, ads1x15.Channel2, ads1x15.Channel3}

// Hardware is the set of periph resources the station runs on. Anything other
// than the two reed switch pins may be nil.
type Hardware struct {
	WindPin      gpio.PinIn
	RainPin      gpio.PinIn
	RainLed      gpio.PinOut
	HeartbeatLed gpio.PinOut
	Vane         AnalogReader
	Light        AnalogReader
	Ref          AnalogReader
	Bus          i2c.BusCloser
}

type Sensors struct {
	Acc       *Accumulator
	Wind      *Anemometer
	Rain      *Rainmeter
	Atm       *Atmosphere
	RainLed   *led.LED
	Heartbeat *led.LED

	hw    Hardware
	args  env.Args
	clock clockwork.Clock
	wg    sync.WaitGroup
}

// OpenHardware initialises the host drivers and looks up every resource named
// in cfg. A reed switch pin that cannot be found is a configuration error.
func OpenHardware(cfg env.Config) (Hardware, error) {
	hw := Hardware{}
	if _, err := host.Init(); err != nil {
		return hw, fmt.Errorf("host init: %w", err)
	}

	windPin := gpioreg.ByName(cfg.WindPin)
	if windPin == nil {
		return hw, fmt.Errorf("wind pin %v: %w", cfg.WindPin, env.ErrPinConfig)
	}
	hw.WindPin = windPin
	rainPin := gpioreg.ByName(cfg.RainPin)
	if rainPin == nil {
		return hw, fmt.Errorf("rain pin %v: %w", cfg.RainPin, env.ErrPinConfig)
	}
	hw.RainPin = rainPin

	// failed LEDs are not critical
	if p := gpioreg.ByName(cfg.RainLedPin); p != nil {
		hw.RainLed = p
	} else {
		logger.Errorf("Failed to find %v - rain tip LED pin", cfg.RainLedPin)
	}
	if p := gpioreg.ByName(cfg.HeartbeatPin); p != nil {
		hw.HeartbeatLed = p
	} else {
		logger.Errorf("Failed to find %v - heartbeat pin", cfg.HeartbeatPin)
	}

	bus, err := i2creg.Open(cfg.I2CBus)
	if err != nil {
		logger.Errorf("Failed to open I²C [%v], no vane or atmosphere sensors", err)
		return hw, nil
	}
	hw.Bus = bus

	logger.Infof("Starting Wind direction ADC I2C [%x]", ads1x15.DefaultOpts.I2cAddress)
	adc, err := ads1x15.NewADS1115(bus, &ads1x15.DefaultOpts)
	if err != nil {
		logger.Errorf("Failed to open ADS1115 [%v]", err)
		return hw, nil
	}
	hw.Vane = openChannel(adc, cfg.WindDirChannel)
	hw.Light = openChannel(adc, cfg.LightChannel)
	hw.Ref = openChannel(adc, cfg.RefChannel)
	return hw, nil
}

func openChannel(adc *ads1x15.Dev, ch int) AnalogReader {
	if ch < 0 || ch >= len(adcChannels) {
		logger.Errorf("No such ADC channel [%v]", ch)
		return nil
	}
	p, err := adc.PinForChannel(adcChannels[ch], env.ADCFullScaleMV*physic.MilliVolt, 1*physic.Hertz, ads1x15.SaveEnergy)
	if err != nil {
		logger.Errorf("ADC channel [%v] failed [%v]", ch, err)
		return nil
	}
	return p
}

// InitSensors opens the real hardware and builds the station on it.
func InitSensors(cfg env.Config, args env.Args) (*Sensors, error) {
	hw, err := OpenHardware(cfg)
	if err != nil {
		return nil, err
	}
	s, err := New(cfg, args, hw, nil)
	if err != nil {
		if hw.Bus != nil {
			_ = hw.Bus.Close()
		}
		return nil, err
	}
	return s, nil
}

// New arms the reed switch pins and builds the accumulator and aggregators.
// The atmosphere sensors are optional, the wind and rain pins are not.
func New(cfg env.Config, args env.Args, hw Hardware, clock clockwork.Clock) (*Sensors, error) {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if hw.WindPin == nil || hw.RainPin == nil {
		return nil, fmt.Errorf("reed switch pins: %w", env.ErrPinConfig)
	}
	if err := hw.WindPin.In(gpio.PullUp, gpio.FallingEdge); err != nil {
		return nil, fmt.Errorf("wind pin %v: %w: %v", hw.WindPin, env.ErrPinConfig, err)
	}
	if err := hw.RainPin.In(gpio.PullUp, gpio.FallingEdge); err != nil {
		return nil, fmt.Errorf("rain pin %v: %w: %v", hw.RainPin, env.ErrPinConfig, err)
	}

	s := &Sensors{hw: hw, args: args, clock: clock}
	s.Acc = NewAccumulator(clock, cfg.WindDebounce, cfg.RainDebounce, hw.Vane)
	s.Wind = NewAnemometer(s.Acc)
	s.Rain = NewRainmeter(s.Acc)
	s.RainLed = led.NewLED("Rain Tip", hw.RainLed)
	s.Heartbeat = led.NewLED("Heartbeat", hw.HeartbeatLed)

	if cfg.Atmospheric && hw.Bus != nil {
		s.Atm = NewAtmosphere(hw.Bus, clock)
	}
	logger.Info("Sensors initialized.")
	return s, nil
}

// Start runs the edge monitors and LEDs until ctx is done.
func (s *Sensors) Start(ctx context.Context) {
	s.wg.Add(4)
	go func() {
		defer s.wg.Done()
		monitorEdges(ctx, "wind", s.hw.WindPin, s.Acc.Millis, s.Acc.NotifyWindClosure, nil)
	}()
	go func() {
		defer s.wg.Done()
		monitorEdges(ctx, "rain", s.hw.RainPin, s.Acc.Millis, s.Acc.NotifyRainClosure, s.rainTipped)
	}()
	go func() {
		defer s.wg.Done()
		s.RainLed.Run(ctx)
	}()
	go func() {
		defer s.wg.Done()
		s.Heartbeat.Run(ctx)
	}()
}

// Wait blocks until the goroutines started by Start have returned.
func (s *Sensors) Wait() {
	s.wg.Wait()
}

func (s *Sensors) rainTipped() {
	if s.args.Rainon != nil && *s.args.Rainon {
		logger.Infof("Bucket tip. [%v] @ %v", s.Acc.RainAccumulation(), s.clock.Now().Format(time.ANSIC))
	}
	s.RainLed.Blink()
}

// monitorEdges is the interrupt glue: every falling edge becomes one notify
// call stamped with the accumulator clock.
func monitorEdges(ctx context.Context, name string, pin gpio.PinIn, millis func() uint32, notify func(uint32) bool, accepted func()) {
	logger.Infof("Starting %v monitor on [%v]", name, pin)
	defer func() { _ = pin.Halt() }()
	for ctx.Err() == nil {
		if !pin.WaitForEdge(edgeWait) {
			continue
		}
		if pin.Read() != gpio.Low {
			continue
		}
		if notify(millis()) && accepted != nil {
			accepted()
		}
	}
}

// LightLevel is the light sensor output in volts, scaled against the 3.3V
// rail so the supply voltage drops out.
func (s *Sensors) LightLevel() (float64, error) {
	if s.hw.Light == nil || s.hw.Ref == nil {
		return 0, ErrNoLightSensor
	}
	ref, err := s.hw.Ref.Read()
	if err != nil {
		return 0, err
	}
	if ref.V <= 0 {
		return 0, fmt.Errorf("3V3 reference reads [%v]", ref.V)
	}
	light, err := s.hw.Light.Read()
	if err != nil {
		return 0, err
	}
	return ref3V3 * float64(light.V) / float64(ref.V), nil
}

func (s *Sensors) Close() error {
	if s.hw.Bus != nil {
		return s.hw.Bus.Close()
	}
	return nil
}

package sensors

import (
	"errors"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/talbot-j/WeatherStation/env"
	"periph.io/x/conn/v3/analog"
	"periph.io/x/conn/v3/physic"
)

var ErrNoVane = errors.New("wind vane ADC not configured")

// AnalogReader is satisfied by an ads1x15 pin or any other periph analog pin.
type AnalogReader interface {
	Read() (analog.Sample, error)
}

// Accumulator turns bouncing reed switch closures into clean counts. The
// Notify methods run on the edge monitor goroutines and the Drain methods on
// the polling goroutine. All counter state is atomic so neither side blocks.
type Accumulator struct {
	clock clockwork.Clock
	start time.Time

	windDebounce uint32 // ms
	rainDebounce uint32 // ms

	windCount atomic.Uint32
	rainAcc   atomic.Uint32 // thousandths of an inch
	lastWind  atomic.Uint32
	lastRain  atomic.Uint32

	vane AnalogReader
}

// NewAccumulator starts the millisecond clock now, so a closure inside the
// first debounce period after creation is treated as bounce.
func NewAccumulator(clock clockwork.Clock, windDebounce, rainDebounce time.Duration, vane AnalogReader) *Accumulator {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Accumulator{
		clock:        clock,
		start:        clock.Now(),
		windDebounce: uint32(windDebounce.Milliseconds()),
		rainDebounce: uint32(rainDebounce.Milliseconds()),
		vane:         vane,
	}
}

// Millis is the number of milliseconds since the accumulator was created. It
// wraps like a hardware millisecond counter, the debounce arithmetic
// tolerates that.
func (a *Accumulator) Millis() uint32 {
	return uint32(a.clock.Since(a.start).Milliseconds())
}

// NotifyWindClosure records one anemometer closure at nowMs. It reports
// whether the closure was counted, a rejected closure is bounce.
func (a *Accumulator) NotifyWindClosure(nowMs uint32) bool {
	if !debounce(&a.lastWind, nowMs, a.windDebounce) {
		return false
	}
	a.windCount.Add(1)
	return true
}

// NotifyRainClosure records one bucket tip at nowMs.
func (a *Accumulator) NotifyRainClosure(nowMs uint32) bool {
	if !debounce(&a.lastRain, nowMs, a.rainDebounce) {
		return false
	}
	a.rainAcc.Add(env.RainUnitsPerTip)
	return true
}

// accept when at least period ms have passed since the last accepted event
func debounce(last *atomic.Uint32, now, period uint32) bool {
	prev := last.Load()
	if now-prev < period {
		return false
	}
	// a racing notifier for the same stream already took this edge
	return last.CompareAndSwap(prev, now)
}

// DrainWindCount returns the pulses since the previous drain and zeroes the
// counter in one atomic step.
func (a *Accumulator) DrainWindCount() uint32 {
	return a.windCount.Swap(0)
}

// DrainRainCount returns the rain since the previous drain in thousandths of
// an inch and zeroes the accumulator in one atomic step.
func (a *Accumulator) DrainRainCount() uint32 {
	return a.rainAcc.Swap(0)
}

// WindCount is the undrained pulse count.
func (a *Accumulator) WindCount() uint32 {
	return a.windCount.Load()
}

// RainAccumulation is the undrained rain in thousandths of an inch.
func (a *Accumulator) RainAccumulation() uint32 {
	return a.rainAcc.Load()
}

// WindDirectionRaw samples the vane and scales it to the 10-bit counts the
// direction ladder is calibrated in.
func (a *Accumulator) WindDirectionRaw() (uint16, error) {
	if a.vane == nil {
		return 0, ErrNoVane
	}
	s, err := a.vane.Read()
	if err != nil {
		return 0, err
	}
	return voltsToCounts(s.V), nil
}

func voltsToCounts(v physic.ElectricPotential) uint16 {
	if v <= 0 {
		return 0
	}
	counts := int64(v) * env.VaneADCMaxCount / int64(env.ADCFullScaleMV*physic.MilliVolt)
	if counts > env.VaneADCMaxCount {
		counts = env.VaneADCMaxCount
	}
	return uint16(counts)
}

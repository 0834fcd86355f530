package led

import (
	"context"
	"sync"
	"time"

	logger "github.com/sirupsen/logrus"
	"github.com/talbot-j/WeatherStation/env"
	"periph.io/x/conn/v3/gpio"
)

type LED struct {
	Name    string
	lock    sync.Mutex
	on      bool
	blink   chan struct{}
	gpioPin gpio.PinOut
}

// NewLED wraps an output pin. A nil pin gives an LED that does nothing, a
// missing indicator is never fatal.
func NewLED(name string, pin gpio.PinOut) *LED {
	if pin == nil {
		logger.Warnf("No pin for LED [%v]", name)
	} else {
		logger.Infof("Creating new LED on pin [%v] called [%v]", pin, name)
		_ = pin.Out(gpio.Low)
	}
	return &LED{
		Name:    name,
		blink:   make(chan struct{}, 1),
		gpioPin: pin,
	}
}

// Run services Blink requests until ctx is done, then turns the LED off.
func (l *LED) Run(ctx context.Context) {
	for {
		select {
		case <-l.blink:
			l.Flash()
		case <-ctx.Done():
			l.Off()
			return
		}
	}
}

// Blink asks Run for a flash without waiting. A request arriving while one is
// already pending is dropped.
func (l *LED) Blink() {
	select {
	case l.blink <- struct{}{}:
	default:
	}
}

func (l *LED) On() {
	l.lock.Lock()
	defer l.lock.Unlock()
	l.on = true
	if l.gpioPin != nil {
		_ = l.gpioPin.Out(gpio.High)
	}
}

func (l *LED) Off() {
	l.lock.Lock()
	defer l.lock.Unlock()
	l.on = false
	if l.gpioPin != nil {
		_ = l.gpioPin.Out(gpio.Low)
	}
}

// Flash inverts the LED for LEDFlashDuration.
func (l *LED) Flash() {
	if l.gpioPin == nil {
		return
	}
	if !l.lock.TryLock() {
		// a flash is in progress, this one can be discarded
		return
	}
	defer l.lock.Unlock()
	if !l.on {
		_ = l.gpioPin.Out(gpio.High)
		time.Sleep(env.LEDFlashDuration)
		_ = l.gpioPin.Out(gpio.Low)
	} else {
		_ = l.gpioPin.Out(gpio.Low)
		time.Sleep(env.LEDFlashDuration)
		_ = l.gpioPin.Out(gpio.High)
	}
}

func (l *LED) IsOn() bool {
	l.lock.Lock()
	defer l.lock.Unlock()
	return l.on
}

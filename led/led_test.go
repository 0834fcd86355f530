package led

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

func TestOnOff(t *testing.T) {
	p := &gpiotest.Pin{N: "GPIO19"}
	l := NewLED("Rain Tip", p)
	assert.Equal(t, gpio.Low, p.Read())

	l.On()
	assert.True(t, l.IsOn())
	assert.Equal(t, gpio.High, p.Read())

	l.Flash()
	// an 'off' flash leaves it on
	assert.Equal(t, gpio.High, p.Read())

	l.Off()
	assert.False(t, l.IsOn())
	assert.Equal(t, gpio.Low, p.Read())
}

func TestBlinkDoesNotBlock(t *testing.T) {
	l := NewLED("Rain Tip", &gpiotest.Pin{N: "GPIO19"})
	done := make(chan struct{})
	go func() {
		// nothing is servicing the requests
		l.Blink()
		l.Blink()
		l.Blink()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Blink blocked")
	}
}

func TestRunTurnsOffOnExit(t *testing.T) {
	p := &gpiotest.Pin{N: "GPIO20"}
	l := NewLED("Heartbeat", p)
	l.On()

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		l.Run(ctx)
	}()
	l.Blink()
	cancel()
	wg.Wait()

	assert.False(t, l.IsOn())
	assert.Equal(t, gpio.Low, p.Read())
}

func TestNilPin(t *testing.T) {
	l := NewLED("missing", nil)
	l.On()
	l.Flash()
	l.Off()
	assert.False(t, l.IsOn())
}

// Package mpl3115a2 reads barometric pressure, altitude and temperature from
// an NXP MPL3115A2 over I²C.
package mpl3115a2

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

const (
	Addr = 0x60

	regStatus    = 0x00
	regPressure  = 0x01
	regTemp      = 0x04
	regWhoAmI    = 0x0C
	regPTDataCfg = 0x13
	regCtrl1     = 0x26

	statusTDR = 0x02
	statusPDR = 0x04

	ctrl1SBYB  = 0x01
	ctrl1OS128 = 0x38
	ctrl1ALT   = 0x80
	ctrl1BAR   = 0x00

	dataCfgEvents = 0x07 // TDEFE | PDEFE | DREM

	whoAmI = 0xC4

	pollDelay = 10 * time.Millisecond
	maxPolls  = 100
)

var (
	ErrNotFound = errors.New("mpl3115a2: unexpected WHO_AM_I")
	ErrNotReady = errors.New("mpl3115a2: data not ready")
)

// Dev is safe for concurrent use. Each reading holds mu from the mode write
// to the data read.
type Dev struct {
	mu    sync.Mutex
	d     *i2c.Dev
	clock clockwork.Clock
}

// New checks the device id and puts it in active altimeter mode with 128x
// oversampling and data ready events.
func New(bus i2c.Bus, clock clockwork.Clock) (*Dev, error) {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	d := &Dev{d: &i2c.Dev{Addr: Addr, Bus: bus}, clock: clock}

	id, err := d.readRegister(regWhoAmI)
	if err != nil {
		return nil, err
	}
	if id != whoAmI {
		return nil, fmt.Errorf("%w: [%#x]", ErrNotFound, id)
	}
	if err := d.writeRegister(regCtrl1, ctrl1SBYB|ctrl1OS128|ctrl1ALT); err != nil {
		return nil, err
	}
	if err := d.writeRegister(regPTDataCfg, dataCfgEvents); err != nil {
		return nil, err
	}
	return d, nil
}

// Pressure switches to barometer mode and returns the next reading.
func (d *Dev) Pressure() (physic.Pressure, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.writeRegister(regCtrl1, ctrl1SBYB|ctrl1OS128|ctrl1BAR); err != nil {
		return 0, err
	}
	raw, err := d.read20(statusPDR)
	if err != nil {
		return 0, err
	}
	// Q18.2 Pascal
	return physic.Pressure(raw) * physic.Pascal / 4, nil
}

// Altitude switches to altimeter mode and returns the next reading.
func (d *Dev) Altitude() (physic.Distance, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.writeRegister(regCtrl1, ctrl1SBYB|ctrl1OS128|ctrl1ALT); err != nil {
		return 0, err
	}
	raw, err := d.read20(statusPDR)
	if err != nil {
		return 0, err
	}
	// Q16.4 metres, two's complement in 20 bits
	return physic.Distance(SignExtend20(raw)) * physic.Metre / 16, nil
}

// Temperature waits for the next temperature conversion.
func (d *Dev) Temperature() (physic.Temperature, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.waitFor(statusTDR); err != nil {
		return 0, err
	}
	read := make([]byte, 2)
	if err := d.d.Tx([]byte{regTemp}, read); err != nil {
		return 0, fmt.Errorf("mpl3115a2 read temperature: %w", err)
	}
	// Q8.4 °C
	raw := int16(uint16(read[0])<<8|uint16(read[1])) >> 4
	return physic.ZeroCelsius + physic.Temperature(raw)*physic.Kelvin/16, nil
}

// read20 waits for bit then reads the 3 byte output register, dropping the
// unused low nibble.
func (d *Dev) read20(bit byte) (uint32, error) {
	if err := d.waitFor(bit); err != nil {
		return 0, err
	}
	read := make([]byte, 3)
	if err := d.d.Tx([]byte{regPressure}, read); err != nil {
		return 0, fmt.Errorf("mpl3115a2 read output: %w", err)
	}
	raw := uint32(read[0])<<16 | uint32(read[1])<<8 | uint32(read[2])
	return raw >> 4, nil
}

func (d *Dev) waitFor(bit byte) error {
	for i := 0; i < maxPolls; i++ {
		sta, err := d.readRegister(regStatus)
		if err != nil {
			return err
		}
		if sta&bit != 0 {
			return nil
		}
		d.clock.Sleep(pollDelay)
	}
	return ErrNotReady
}

func (d *Dev) readRegister(reg byte) (byte, error) {
	read := []byte{0}
	if err := d.d.Tx([]byte{reg}, read); err != nil {
		return 0, fmt.Errorf("mpl3115a2 read [%#x]: %w", reg, err)
	}
	return read[0], nil
}

func (d *Dev) writeRegister(reg, value byte) error {
	if err := d.d.Tx([]byte{reg, value}, nil); err != nil {
		return fmt.Errorf("mpl3115a2 write [%#x]: %w", reg, err)
	}
	return nil
}

// SignExtend20 treats bit 19 as the sign of a 20 bit value.
func SignExtend20(raw uint32) int32 {
	raw &= 0xFFFFF
	if raw&0x80000 != 0 {
		raw |= 0xFFF00000
	}
	return int32(raw)
}

// Package htu21d reads temperature and relative humidity from a HTU21D over
// I²C.
//
// Readings are 2 data bytes and a CRC8 check byte. The low two data bits are
// status, bit 1 is set for a humidity measurement and clear for a
// temperature measurement.
package htu21d

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	logger "github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/i2c"
)

const (
	Addr = 0x40

	cmdReadTemp     = 0xE3
	cmdReadHumidity = 0xE5
	cmdWriteUser    = 0xE6
	cmdReadUser     = 0xE7
	cmdSoftReset    = 0xFE

	userAfterReset = 0x02
	heaterBit      = 0x04

	resetDelay   = 15 * time.Millisecond
	measureDelay = 50 * time.Millisecond

	// x^8 + x^5 + x^4 + 1
	crc8Polynomial = 0x131
)

var (
	ErrNotRead  = errors.New("htu21d: no reading")
	ErrCRC      = errors.New("htu21d: crc check failed")
	ErrStatus   = errors.New("htu21d: status bits do not match the measurement")
	ErrNotFound = errors.New("htu21d: user register not at reset value")
)

// Resolution selects the RH/temperature bit depth.
type Resolution uint8

const (
	MaxRes Resolution = iota // 12 bit RH, 14 bit temperature
	LoRes                    // 8 bit RH, 12 bit temperature
	MidRes                   // 10 bit RH, 13 bit temperature
	HiRes                    // 11 bit RH, 11 bit temperature
)

// Dev is safe for concurrent use. A measurement holds mu from the command to
// the read of its result.
type Dev struct {
	mu    sync.Mutex
	d     *i2c.Dev
	clock clockwork.Clock
	user  byte
}

// New resets the sensor and checks it came back with the default user
// register.
func New(bus i2c.Bus, clock clockwork.Clock) (*Dev, error) {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	d := &Dev{d: &i2c.Dev{Addr: Addr, Bus: bus}, clock: clock, user: userAfterReset}
	if err := d.Reset(); err != nil {
		return nil, err
	}
	user, err := d.readUser()
	if err != nil {
		return nil, err
	}
	if user != userAfterReset {
		return nil, fmt.Errorf("%w: [%#x]", ErrNotFound, user)
	}
	return d, nil
}

func (d *Dev) Reset() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.d.Tx([]byte{cmdSoftReset}, nil); err != nil {
		return fmt.Errorf("htu21d reset: %w", err)
	}
	d.clock.Sleep(resetDelay)
	return nil
}

// Temperature returns °C.
func (d *Dev) Temperature() (float64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	raw, err := d.measure(cmdReadTemp)
	if err != nil {
		return 0, err
	}
	if raw&0x02 != 0 {
		return 0, ErrStatus
	}
	raw &^= 0x03
	return (175.72*float64(raw))/65536 - 46.85, nil
}

// Humidity returns %RH.
func (d *Dev) Humidity() (float64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	raw, err := d.measure(cmdReadHumidity)
	if err != nil {
		return 0, err
	}
	if raw&0x02 == 0 {
		return 0, ErrStatus
	}
	raw &^= 0x03
	return (125.0*float64(raw))/65536 - 6, nil
}

func (d *Dev) measure(cmd byte) (uint16, error) {
	if err := d.d.Tx([]byte{cmd}, nil); err != nil {
		logger.Debugf("HTU21D command [%#x] failed [%v]", cmd, err)
		return 0, ErrNotRead
	}
	d.clock.Sleep(measureDelay)

	read := make([]byte, 3)
	if err := d.d.Tx(nil, read); err != nil {
		logger.Debugf("HTU21D read failed [%v]", err)
		return 0, ErrNotRead
	}
	raw := uint16(read[0])<<8 | uint16(read[1])
	if CheckCRC8(raw, read[2]) != 0 {
		return 0, ErrCRC
	}
	return raw, nil
}

// SetHeater turns the on chip heater on or off.
func (d *Dev) SetHeater(on bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	user := d.user
	if on {
		user |= heaterBit
	} else {
		user &^= heaterBit
	}
	return d.writeUser(user)
}

// SetResolution writes the resolution bits (7 and 0) of the user register.
func (d *Dev) SetResolution(r Resolution) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	user := d.user & 0b01111110
	switch r {
	case LoRes:
		user |= 0x01
	case MidRes:
		user |= 0x80
	case HiRes:
		user |= 0x81
	}
	return d.writeUser(user)
}

// Config reads the user register back from the sensor.
func (d *Dev) Config() (byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.readUser()
}

func (d *Dev) readUser() (byte, error) {
	read := []byte{0}
	if err := d.d.Tx([]byte{cmdReadUser}, read); err != nil {
		return 0, fmt.Errorf("htu21d read user register: %w", err)
	}
	d.user = read[0]
	return read[0], nil
}

func (d *Dev) writeUser(user byte) error {
	if user == d.user {
		return nil
	}
	if err := d.d.Tx([]byte{cmdWriteUser, user}, nil); err != nil {
		return fmt.Errorf("htu21d write user register: %w", err)
	}
	d.user = user
	return nil
}

// CheckCRC8 divides the data and its check byte by the sensor polynomial. A
// valid frame leaves no remainder.
func CheckCRC8(data uint16, check byte) byte {
	rem := uint32(data)<<8 | uint32(check)
	poly := uint32(crc8Polynomial) << 23
	for bit := uint32(0x80000000); bit > 0x80; bit >>= 1 {
		if rem&bit != 0 {
			rem ^= poly
		}
		poly >>= 1
	}
	return byte(rem)
}

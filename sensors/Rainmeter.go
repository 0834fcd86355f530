package sensors

import (
	"sync"

	"github.com/talbot-j/WeatherStation/buffer"
)

const (
	minuteSlots = 60
	hourSlots   = 24
)

// Rainmeter keeps the last hour of per minute rain and the last day of per
// hour rain, all in thousandths of an inch.
type Rainmeter struct {
	acc  *Accumulator
	lock sync.RWMutex

	minutes *buffer.Ring[uint32]
	hours   *buffer.Ring[uint32]
}

func NewRainmeter(acc *Accumulator) *Rainmeter {
	return &Rainmeter{
		acc:     acc,
		minutes: buffer.NewRing[uint32](minuteSlots),
		hours:   buffer.NewRing[uint32](hourSlots),
	}
}

// RainTick must be called once a minute. It returns the rain drained for the
// minute just ended.
func (r *Rainmeter) RainTick() uint32 {
	rain := r.acc.DrainRainCount()

	r.lock.Lock()
	defer r.lock.Unlock()
	if r.minutes.Add(rain) {
		// the minute ring is consumed, an hour total replaces it
		total := buffer.Sum(r.minutes)
		r.minutes.Clear()
		r.hours.Add(total)
	}
	return rain
}

// LastMinute is the rain in the most recently completed minute slot.
func (r *Rainmeter) LastMinute() uint32 {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return r.minutes.Last()
}

// CurrentHour is the rain so far in the minute ring, the hour being built.
func (r *Rainmeter) CurrentHour() uint32 {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return buffer.Sum(r.minutes)
}

// LastHourAndDay returns the most recently completed hour total and the sum
// of all 24 hour slots. The day is summed fresh on every call.
func (r *Rainmeter) LastHourAndDay() (uint32, uint32) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return r.hours.Last(), buffer.Sum(r.hours)
}

// Positions returns the minute and hour write cursors.
func (r *Rainmeter) Positions() (int, int) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return r.minutes.Position(), r.hours.Position()
}

// Minutes returns a copy of the minute ring.
func (r *Rainmeter) Minutes() []uint32 {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return r.minutes.Values()
}

package sensors

import (
	"sync"

	logger "github.com/sirupsen/logrus"
	"github.com/talbot-j/WeatherStation/buffer"
	"github.com/talbot-j/WeatherStation/env"
)

const (
	fiveSecondSlots = 5
	twoMinuteSlots  = 24 // 24 * 5s = 2 mins
)

// WindSample is an averaged wind vector with its average speed in
// thousandths of a MPH. HasDirection is false when no second in the window
// had a readable vane.
type WindSample struct {
	Vector
	Speed        uint32
	HasDirection bool
}

// WindReading is what one second of wind looked like.
type WindReading struct {
	Direction Direction
	Pulses    uint32
	Speed     uint32
}

type windSecond struct {
	vec   Vector
	valid bool
}

// Anemometer folds the once a second wind readings into a 5 second ring and
// every completed 5 seconds into a 2 minute ring of averages.
type Anemometer struct {
	acc  *Accumulator
	lock sync.RWMutex

	fiveSec      *buffer.Ring[windSecond]
	fiveSecSpeed *buffer.Ring[uint32]
	twoMin       *buffer.Ring[WindSample]
	twoMinSpeed  *buffer.Ring[uint32]
}

func NewAnemometer(acc *Accumulator) *Anemometer {
	return &Anemometer{
		acc:          acc,
		fiveSec:      buffer.NewRing[windSecond](fiveSecondSlots),
		fiveSecSpeed: buffer.NewRing[uint32](fiveSecondSlots),
		twoMin:       buffer.NewRing[WindSample](twoMinuteSlots),
		twoMinSpeed:  buffer.NewRing[uint32](twoMinuteSlots),
	}
}

// WindTick must be called once a second. The tick carries no elapsed time, a
// missed call folds its pulses into the next one.
func (a *Anemometer) WindTick() WindReading {
	dir := DirectionError
	if raw, err := a.acc.WindDirectionRaw(); err != nil {
		logger.Debugf("Error reading wind direction value [%v]", err)
	} else {
		dir = DirectionFromADC(raw)
	}

	pulses := a.acc.DrainWindCount()
	r := WindReading{
		Direction: dir,
		Pulses:    pulses,
		Speed:     pulses * env.MphMilliPerPulse,
	}

	sec := windSecond{}
	sec.vec, sec.valid = dir.Vector()

	a.lock.Lock()
	defer a.lock.Unlock()
	a.fiveSec.Add(sec)
	if a.fiveSecSpeed.Add(r.Speed) {
		folded := a.foldFiveSeconds()
		a.twoMin.Add(folded)
		a.twoMinSpeed.Add(folded.Speed)
	}
	return r
}

// truncating means, the direction only over the seconds that had one
func (a *Anemometer) foldFiveSeconds() WindSample {
	var sumX, sumY int32
	var valid int32
	for i := 0; i < a.fiveSec.Size(); i++ {
		s := a.fiveSec.At(i)
		if !s.valid {
			continue
		}
		sumX += int32(s.vec.X)
		sumY += int32(s.vec.Y)
		valid++
	}

	out := WindSample{Speed: buffer.Mean(a.fiveSecSpeed)}
	if valid > 0 {
		out.X = int16(sumX / valid)
		out.Y = int16(sumY / valid)
		out.HasDirection = true
	}
	return out
}

// LastFiveSecond is the most recently completed 5 second average. Before the
// first 5 seconds have passed it is the zero sample.
func (a *Anemometer) LastFiveSecond() WindSample {
	a.lock.RLock()
	defer a.lock.RUnlock()
	return a.twoMin.Last()
}

// TwoMinuteAverage is the mean of the completed 5 second averages, at most
// the last 2 minutes of them.
func (a *Anemometer) TwoMinuteAverage() WindSample {
	a.lock.RLock()
	defer a.lock.RUnlock()

	filled := a.twoMin.Filled()
	if filled == 0 {
		return WindSample{}
	}
	var sumX, sumY int32
	var sumSpeed uint64
	var valid int32
	for i := 0; i < filled; i++ {
		s := a.twoMin.At(i)
		sumSpeed += uint64(s.Speed)
		if !s.HasDirection {
			continue
		}
		sumX += int32(s.X)
		sumY += int32(s.Y)
		valid++
	}
	out := WindSample{Speed: uint32(sumSpeed / uint64(filled))}
	if valid > 0 {
		out.X = int16(sumX / valid)
		out.Y = int16(sumY / valid)
		out.HasDirection = true
	}
	return out
}

// Gust is the highest 5 second average speed in the 2 minute ring. Unfilled
// slots are zero so they never win.
func (a *Anemometer) Gust() uint32 {
	a.lock.RLock()
	defer a.lock.RUnlock()
	return buffer.Max(a.twoMinSpeed)
}

// Positions returns the 5 second and 2 minute write cursors.
func (a *Anemometer) Positions() (int, int) {
	a.lock.RLock()
	defer a.lock.RUnlock()
	return a.fiveSec.Position(), a.twoMin.Position()
}

// Reset clears the 5 second and 2 minute rings.
func (a *Anemometer) Reset() {
	a.lock.Lock()
	defer a.lock.Unlock()
	a.fiveSec.Reset()
	a.fiveSecSpeed.Reset()
	a.twoMin.Reset()
	a.twoMinSpeed.Reset()
}

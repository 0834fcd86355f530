package sensors

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rainRig struct {
	acc *Accumulator
	r   *Rainmeter
	now uint32
}

func newRainRig() *rainRig {
	acc := NewAccumulator(clockwork.NewFakeClock(), 10*time.Millisecond, 10*time.Millisecond, nil)
	return &rainRig{acc: acc, r: NewRainmeter(acc), now: 1000}
}

// minute tips the bucket every 6 seconds for tips times then ticks
func (rr *rainRig) minute(tips int) uint32 {
	for i := 0; i < tips; i++ {
		rr.now += 6000
		rr.acc.NotifyRainClosure(rr.now)
	}
	return rr.r.RainTick()
}

func Test_rainmeter_RainTick(t *testing.T) {
	rr := newRainRig()

	assert.Equal(t, uint32(33), rr.minute(3))
	assert.Equal(t, uint32(33), rr.r.LastMinute())
	assert.Equal(t, uint32(0), rr.acc.RainAccumulation())

	assert.Equal(t, uint32(0), rr.minute(0))
	assert.Equal(t, uint32(0), rr.r.LastMinute())
	assert.Equal(t, uint32(33), rr.r.CurrentHour())

	m, h := rr.r.Positions()
	assert.Equal(t, 2, m)
	assert.Equal(t, 0, h)
}

func Test_rainmeter_DestructiveRollover(t *testing.T) {
	rr := newRainRig()

	var want uint32
	for i := 0; i < 60; i++ {
		want += rr.minute(i % 4)
	}
	m, h := rr.r.Positions()
	assert.Equal(t, 0, m)
	assert.Equal(t, 1, h)

	hour, day := rr.r.LastHourAndDay()
	assert.Equal(t, want, hour)
	assert.Equal(t, want, day)

	for _, v := range rr.r.Minutes() {
		require.Equal(t, uint32(0), v)
	}
	assert.Equal(t, uint32(0), rr.r.LastMinute())
}

func Test_rainmeter_TenTipsAMinuteForAnHour(t *testing.T) {
	rr := newRainRig()

	for i := 0; i < 59; i++ {
		rr.minute(10)
		require.Equal(t, uint32(110), rr.r.LastMinute())
	}
	for _, v := range rr.r.Minutes()[:59] {
		assert.Equal(t, uint32(110), v)
	}

	rr.minute(10)
	hour, day := rr.r.LastHourAndDay()
	assert.Equal(t, uint32(6600), hour)
	assert.Equal(t, uint32(6600), day)
}

func Test_rainmeter_DayIsSummedFresh(t *testing.T) {
	rr := newRainRig()

	// fill all 24 hours with one tip an hour
	for h := 0; h < 24; h++ {
		for m := 0; m < 60; m++ {
			tips := 0
			if m == 0 {
				tips = 1
			}
			rr.minute(tips)
		}
	}
	_, day := rr.r.LastHourAndDay()
	assert.Equal(t, uint32(24*11), day)
	_, h := rr.r.Positions()
	assert.Equal(t, 0, h)

	// hour 25 overwrites slot 0 with a wet hour, the day follows at once
	for m := 0; m < 60; m++ {
		rr.minute(2)
	}
	hour, day := rr.r.LastHourAndDay()
	assert.Equal(t, uint32(60*22), hour)
	assert.Equal(t, uint32(23*11+60*22), day)

	// and a dry hour into slot 1
	for m := 0; m < 60; m++ {
		rr.minute(0)
	}
	hour, day = rr.r.LastHourAndDay()
	assert.Equal(t, uint32(0), hour)
	assert.Equal(t, uint32(22*11+60*22), day)
}

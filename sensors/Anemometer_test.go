package sensors

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/physic"
)

// mid band vane counts
const (
	countsN   = 895
	countsNNE = 650
	countsNNW = 855
	countsE   = 403
	countsS   = 580
)

type windRig struct {
	vane *fakeVane
	acc  *Accumulator
	a    *Anemometer
	now  uint32
}

func newWindRig() *windRig {
	r := &windRig{vane: &fakeVane{}, now: 1000}
	r.acc = NewAccumulator(clockwork.NewFakeClock(), 10*time.Millisecond, 10*time.Millisecond, r.vane)
	r.a = NewAnemometer(r.acc)
	return r
}

func (r *windRig) point(counts int) {
	r.vane.err = nil
	r.vane.v = physic.ElectricPotential(counts) * 5000 * physic.MilliVolt / 1023
}

// second delivers pulses closures then runs the 1 second tick
func (r *windRig) second(pulses int) WindReading {
	for i := 0; i < pulses; i++ {
		r.now += 20
		r.acc.NotifyWindClosure(r.now)
	}
	return r.a.WindTick()
}

func TestVaneCountsResolve(t *testing.T) {
	r := newWindRig()
	for counts, want := range map[int]Direction{countsN: N, countsNNE: NNE, countsNNW: NNW, countsE: E, countsS: S} {
		r.point(counts)
		raw, err := r.acc.WindDirectionRaw()
		require.NoError(t, err)
		assert.Equal(t, want, DirectionFromADC(raw))
	}
}

func Test_anemometer_WindTick(t *testing.T) {
	r := newWindRig()
	r.point(countsE)

	got := r.second(3)
	assert.Equal(t, E, got.Direction)
	assert.Equal(t, uint32(3), got.Pulses)
	assert.Equal(t, uint32(3*1492), got.Speed)
	// the counter was drained
	assert.Equal(t, uint32(0), r.acc.WindCount())
}

func Test_anemometer_FiveSecondFold(t *testing.T) {
	r := newWindRig()
	r.point(countsE)

	pulses := []int{1, 2, 3, 4, 6}
	for i, p := range pulses[:4] {
		r.second(p)
		five, two := r.a.Positions()
		assert.Equal(t, i+1, five)
		assert.Equal(t, 0, two)
	}
	assert.Equal(t, WindSample{}, r.a.LastFiveSecond())

	r.second(pulses[4])
	five, two := r.a.Positions()
	assert.Equal(t, 0, five)
	assert.Equal(t, 1, two)

	got := r.a.LastFiveSecond()
	assert.Equal(t, int16(1000), got.X)
	assert.Equal(t, int16(0), got.Y)
	assert.True(t, got.HasDirection)
	// (1+2+3+4+6) * 1492 / 5 truncated
	assert.Equal(t, uint32(4774), got.Speed)

	// only one 2 minute slot was written
	assert.Equal(t, 1, r.a.twoMin.Filled())
}

func Test_anemometer_VectorAverageNearNorth(t *testing.T) {
	r := newWindRig()
	for i := 0; i < 5; i++ {
		if i%2 == 0 {
			r.point(countsNNE)
		} else {
			r.point(countsNNW)
		}
		r.second(1)
	}

	got := r.a.LastFiveSecond()
	require.True(t, got.HasDirection)
	// 3 * 383 - 2 * 383 = 383, / 5
	assert.Equal(t, int16(76), got.X)
	assert.Equal(t, int16(924), got.Y)

	bearing := got.Bearing()
	assert.Less(t, bearing, 10.0)

	// averaging the bearings as plain degrees would point south east
	naive := (22.5*3 + 337.5*2) / 5
	assert.Greater(t, math.Abs(naive-bearing), 90.0)
}

func Test_anemometer_ErrorDirectionContributesNothing(t *testing.T) {
	r := newWindRig()
	r.point(countsS)
	r.second(1)
	r.second(1)
	r.vane.err = errors.New("adc busy")
	r.second(1)
	r.second(1)
	r.point(1010) // above the ladder
	got := r.second(1)
	assert.Equal(t, DirectionError, got.Direction)

	s := r.a.LastFiveSecond()
	require.True(t, s.HasDirection)
	// two good south samples only, not diluted toward zero
	assert.Equal(t, int16(0), s.X)
	assert.Equal(t, int16(-1000), s.Y)
	assert.Equal(t, uint32(1492), s.Speed)

	r.vane.err = errors.New("adc gone")
	for i := 0; i < 5; i++ {
		r.second(0)
	}
	s = r.a.LastFiveSecond()
	assert.False(t, s.HasDirection)
	assert.Equal(t, Vector{}, s.Vector)
}

func Test_anemometer_TwoMinuteRingWraps(t *testing.T) {
	r := newWindRig()
	r.point(countsN)

	for i := 0; i < 24*5; i++ {
		r.second(2)
	}
	five, two := r.a.Positions()
	assert.Equal(t, 0, five)
	assert.Equal(t, 0, two)
	assert.Equal(t, 24, r.a.twoMin.Filled())

	// a faster 5 seconds overwrites slot 0 and is the last completed
	for i := 0; i < 5; i++ {
		r.second(4)
	}
	_, two = r.a.Positions()
	assert.Equal(t, 1, two)
	assert.Equal(t, uint32(4*1492), r.a.LastFiveSecond().Speed)
	assert.Equal(t, uint32(4*1492), r.a.Gust())

	avg := r.a.TwoMinuteAverage()
	assert.True(t, avg.HasDirection)
	assert.Equal(t, int16(1000), avg.Y)
	// (23 * 2984 + 5968) / 24
	assert.Equal(t, uint32((23*2984+5968)/24), avg.Speed)
}

func Test_anemometer_TwoMinuteAverageBeforeWarmUp(t *testing.T) {
	r := newWindRig()
	assert.Equal(t, WindSample{}, r.a.TwoMinuteAverage())
	assert.Equal(t, uint32(0), r.a.Gust())

	r.point(countsE)
	for i := 0; i < 10; i++ {
		r.second(1)
	}
	avg := r.a.TwoMinuteAverage()
	assert.Equal(t, uint32(1492), avg.Speed)
	assert.Equal(t, int16(1000), avg.X)
}

func Test_anemometer_Reset(t *testing.T) {
	r := newWindRig()
	r.point(countsE)
	for i := 0; i < 7; i++ {
		r.second(1)
	}
	r.a.Reset()
	five, two := r.a.Positions()
	assert.Equal(t, 0, five)
	assert.Equal(t, 0, two)
	assert.Equal(t, WindSample{}, r.a.LastFiveSecond())
	assert.Equal(t, uint32(0), r.a.Gust())
}

func Test_anemometer_GustAgesOut(t *testing.T) {
	r := newWindRig()
	r.point(countsN)
	for i := 0; i < 5; i++ {
		r.second(6)
	}
	assert.Equal(t, uint32(6*1492), r.a.Gust())

	// 2 minutes of calmer wind push it out of the window
	for i := 0; i < 24*5; i++ {
		r.second(1)
	}
	assert.Equal(t, uint32(1492), r.a.Gust())
}

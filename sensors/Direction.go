package sensors

import "math"

// Direction is one of the 16 vane positions, or DirectionError when the ADC
// reading falls outside the calibrated ladder.
type Direction uint8

const (
	N Direction = iota
	NNE
	NE
	ENE
	E
	ESE
	SE
	SSE
	S
	SSW
	SW
	WSW
	W
	WNW
	NW
	NNW
	DirectionError
)

// Vector is a unit circle direction in thousandths, X toward east and Y toward
// north.
type Vector struct {
	X int16
	Y int16
}

var directionNames = [...]string{
	"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE",
	"S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW",
}

// indexed by Direction, 22.5 degree steps clockwise from north
var directionVectors = [...]Vector{
	{0, 1000},
	{383, 924},
	{707, 707},
	{924, 383},
	{1000, 0},
	{924, -383},
	{707, -707},
	{383, -924},
	{0, -1000},
	{-383, -924},
	{-707, -707},
	{-924, -383},
	{-1000, 0},
	{-924, 383},
	{-707, 707},
	{-383, 924},
}

type vaneThreshold struct {
	below uint16
	dir   Direction
}

// Measured on the mast against a 10-bit ADC with the 10k divider. The bands
// are not evenly spaced and must not be recomputed from the nominal geometry.
var vaneLadder = [...]vaneThreshold{
	{380, ESE},
	{393, ENE},
	{414, E},
	{456, SSE},
	{508, SE},
	{551, SSW},
	{615, S},
	{680, NNE},
	{746, NE},
	{801, WSW},
	{833, SW},
	{878, NNW},
	{913, N},
	{940, WNW},
	{967, NW},
	{990, W},
}

// DirectionFromADC resolves a raw vane reading.
func DirectionFromADC(raw uint16) Direction {
	for _, t := range vaneLadder {
		if raw < t.below {
			return t.dir
		}
	}
	return DirectionError
}

func (d Direction) Valid() bool {
	return d < DirectionError
}

// Vector is only defined for the valid directions.
func (d Direction) Vector() (Vector, bool) {
	if !d.Valid() {
		return Vector{}, false
	}
	return directionVectors[d], true
}

func (d Direction) Degrees() float64 {
	if !d.Valid() {
		return math.NaN()
	}
	return float64(d) * 22.5
}

func (d Direction) String() string {
	if !d.Valid() {
		return "ERR"
	}
	return directionNames[d]
}

// Bearing turns an averaged vector back into compass degrees in [0, 360).
// A zero vector has no bearing and returns NaN.
func (v Vector) Bearing() float64 {
	if v.X == 0 && v.Y == 0 {
		return math.NaN()
	}
	deg := math.Atan2(float64(v.X), float64(v.Y)) * 180 / math.Pi
	if deg < 0 {
		deg += 360
	}
	return deg
}

package property

import "math"

// Lerp interpolates from a to b. t is eased progress and may leave [0, 1].
type Lerp[T any] func(a, b T, t float64) T

type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// LerpNumber interpolates any numeric type. Integer results are rounded to
// the nearest value; unsigned results do not go below zero.
func LerpNumber[N Number](a, b N, t float64) N {
	v := float64(a) + t*(float64(b)-float64(a))
	var zero N
	if zero-1 > zero && v < 0 {
		v = 0
	}
	half := 0.5
	if N(half) == 0 {
		return N(math.Round(v))
	}
	return N(v)
}

// LerpUint8 rounds and clamps to [0, 255], for color channels.
func LerpUint8(a, b uint8, t float64) uint8 {
	v := math.Round(float64(a) + t*(float64(b)-float64(a)))
	return uint8(math.Max(0, math.Min(255, v)))
}

package property

import "math"

// Easing maps animation progress in [0, 1] to eased progress. Elastic and
// bounce curves overshoot that range on purpose.
type Easing func(t float64) float64

// Linear is the default curve.
func Linear(t float64) float64 {
	return t
}

var (
	Ease      = CubicBezier(0.25, 0.1, 0.25, 1.0)
	EaseIn    = CubicBezier(0.42, 0.0, 1.0, 1.0)
	EaseOut   = CubicBezier(0.0, 0.0, 0.58, 1.0)
	EaseInOut = CubicBezier(0.42, 0.0, 0.58, 1.0)
)

// CubicBezier matches CSS cubic-bezier(). The curve runs from (0,0) to (1,1)
// through control points (x1,y1) and (x2,y2). x1 and x2 are clamped to
// [0, 1] so the curve stays a function of x.
func CubicBezier(x1, y1, x2, y2 float64) Easing {
	x1, x2 = clampUnit(x1), clampUnit(x2)
	return func(t float64) float64 {
		if t <= 0 {
			return 0
		}
		if t >= 1 {
			return 1
		}

		u := t
		for i := 0; i < 8; i++ {
			x := bezierSample(x1, x2, u) - t
			if math.Abs(x) < 1e-7 {
				return bezierSample(y1, y2, clampUnit(u))
			}
			dx := bezierSlope(x1, x2, u)
			if math.Abs(dx) < 1e-7 {
				break
			}
			u -= x / dx
		}

		// Newton did not converge; bisect
		lo, hi := 0.0, 1.0
		u = clampUnit(u)
		for i := 0; i < 16; i++ {
			x := bezierSample(x1, x2, u) - t
			if math.Abs(x) < 1e-7 {
				break
			}
			if x > 0 {
				hi = u
			} else {
				lo = u
			}
			u = (lo + hi) * 0.5
		}
		return bezierSample(y1, y2, u)
	}
}

func bezierSample(a, b, t float64) float64 {
	inv := 1 - t
	return 3*inv*inv*t*a + 3*inv*t*t*b + t*t*t
}

func bezierSlope(a, b, t float64) float64 {
	inv := 1 - t
	return 3*inv*inv*a + 6*inv*t*(b-a) + 3*t*t*(1-b)
}

func clampUnit(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// See https://easings.net for the shapes below.

func EaseInElastic(t float64) float64 {
	const c4 = 2 * math.Pi / 3
	switch t {
	case 0, 1:
		return t
	}
	return -math.Pow(2, 10*t-10) * math.Sin((t*10-10.75)*c4)
}

func EaseOutElastic(t float64) float64 {
	const c4 = 2 * math.Pi / 3
	switch t {
	case 0, 1:
		return t
	}
	return math.Pow(2, -10*t)*math.Sin((t*10-0.75)*c4) + 1
}

func EaseInOutElastic(t float64) float64 {
	const c5 = 2 * math.Pi / 4.5
	switch {
	case t == 0, t == 1:
		return t
	case t < 0.5:
		return -(math.Pow(2, 20*t-10) * math.Sin((20*t-11.125)*c5)) / 2
	default:
		return math.Pow(2, -20*t+10)*math.Sin((20*t-11.125)*c5)/2 + 1
	}
}

func EaseOutBounce(t float64) float64 {
	const (
		n1 = 7.5625
		d1 = 2.75
	)
	switch {
	case t < 1/d1:
		return n1 * t * t
	case t < 2/d1:
		t -= 1.5 / d1
		return n1*t*t + 0.75
	case t < 2.5/d1:
		t -= 2.25 / d1
		return n1*t*t + 0.9375
	default:
		t -= 2.625 / d1
		return n1*t*t + 0.984375
	}
}

func EaseInBounce(t float64) float64 {
	return 1 - EaseOutBounce(1-t)
}

func EaseInOutBounce(t float64) float64 {
	if t < 0.5 {
		return (1 - EaseOutBounce(1-2*t)) / 2
	}
	return (1 + EaseOutBounce(2*t-1)) / 2
}

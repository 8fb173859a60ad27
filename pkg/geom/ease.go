package geom

import "math"

// ExpFactor returns the blend weight 1-e^(-rate*dt) used for frame-rate
// independent exponential smoothing.
func ExpFactor(rate, dt float64) float64 {
	if rate <= 0 || dt <= 0 {
		return 0
	}
	return 1 - math.Exp(-rate*dt)
}

// Smoothstep is the cubic Hermite ease 3t²-2t³ on t clamped to [0, 1].
func Smoothstep(t float64) float64 {
	t = clamp(t, 0, 1)
	return t * t * (3 - 2*t)
}

// SineEnvelope rises from 0 to 1 and back to 0 as t runs over [0, 1].
func SineEnvelope(t float64) float64 {
	return math.Sin(math.Pi * clamp(t, 0, 1))
}

// Clamp restricts v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return clamp(v, lo, hi)
}

// Radians converts degrees to radians.
func Radians(degrees float64) float64 {
	return degrees * math.Pi / 180.0
}

func lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

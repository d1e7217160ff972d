package utils

import (
	"math"
)

// Float64AlmostEqual compares two float64s and returns if the difference between them is less than epsilon.
func Float64AlmostEqual(a, b, epsilon float64) bool {
	return math.Abs(a-b) <= epsilon
}

// IsFinite reports whether f is neither NaN nor an infinity.
func IsFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// AbsInt returns the absolute value of n.
func AbsInt(n int) int {
	if n < 0 {
		return -1 * n
	}
	return n
}

// MaxInt returns the larger of a and b.
func MaxInt(a, b int) int {
	if a < b {
		return b
	}
	return a
}

// MinInt returns the smaller of a and b.
func MinInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// GCD returns the greatest common divisor of |a| and |b|. GCD(0, 0) is 0.
func GCD(a, b int) int {
	a, b = AbsInt(a), AbsInt(b)
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// GCD3 returns the greatest common divisor of three integers.
func GCD3(a, b, c int) int {
	return GCD(GCD(a, b), c)
}

// Square returns n*n.
// Math.pow( x, 2 ) is slow, this is faster
func Square(n float64) float64 {
	return n * n
}

// Cube returns n*n*n.
func Cube(n float64) float64 {
	return n * n * n
}

// WrapAngle folds an angle in radians into [0, period).
func WrapAngle(angle, period float64) float64 {
	a := math.Mod(angle, period)
	if a < 0 {
		a += period
	}
	if a >= period {
		a = 0
	}
	return a
}

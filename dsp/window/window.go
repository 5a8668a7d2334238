// Package window generates the analysis and synthesis tapers used by the
// spectral engine and the grain envelope table.
package window

import (
	"math"

	"github.com/cwbudde/algo-vecmath"
)

// Type identifies a window function.
type Type int

const (
	TypeRectangular Type = iota
	TypeHann
)

// Option configures window generation.
type Option func(*config)

type config struct {
	periodic bool
}

// WithPeriodic configures periodic form (FFT framing) instead of symmetric form.
func WithPeriodic() Option {
	return func(c *config) {
		c.periodic = true
	}
}

// Generate returns window coefficients of the given length.
func Generate(t Type, length int, opts ...Option) []float64 {
	if length <= 0 {
		return nil
	}

	out := make([]float64, length)
	Fill(t, out, opts...)

	return out
}

// Fill writes window coefficients into dst without allocating.
func Fill(t Type, dst []float64, opts ...Option) {
	var cfg config
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	for i := range dst {
		dst[i] = evalWindow(t, samplePosition(i, len(dst), cfg.periodic))
	}
}

// ApplyCoefficientsInPlace multiplies samples with coefficients in place.
func ApplyCoefficientsInPlace(samples, coeffs []float64) error {
	if len(samples) != len(coeffs) {
		return errMismatchedLength
	}
	vecmath.MulBlockInPlace(samples, coeffs)
	return nil
}

// OverlapGain returns the constant sum reached when squared coefficients are
// overlap-added at the given hop, i.e. the gain of windowed analysis followed
// by windowed synthesis. It returns 0 when hop is not positive.
func OverlapGain(coeffs []float64, hop int) float64 {
	if hop <= 0 || len(coeffs) == 0 {
		return 0
	}
	return vecmath.DotProduct(coeffs, coeffs) / float64(hop)
}

func evalWindow(t Type, x float64) float64 {
	switch t {
	case TypeHann:
		return 0.5 - 0.5*math.Cos(2*math.Pi*x)
	default:
		return 1
	}
}

// samplePosition maps index n to the normalized window coordinate in [0,1].
func samplePosition(n, size int, periodic bool) float64 {
	if size <= 1 {
		return 0.5
	}
	if periodic {
		return float64(n) / float64(size)
	}
	return float64(n) / float64(size-1)
}

// Package conv provides uniform partitioned overlap-add convolution for long
// impulse responses at a fixed latency of one partition.
//
// An impulse response is split once into 256-sample partitions whose
// 512-point spectra live in a [PartitionSet]. Each [Partitioned] convolver
// keeps a frequency-domain delay line (FDL) of past input spectra and, per
// partition of input, evaluates
//
//	Y = Σ_p X[k-p] · H[p]
//
// followed by a single inverse FFT and overlap-add of the tail. Cost is one
// forward FFT, one inverse FFT and P complex multiplies per 256 samples,
// independent of the host block size.
//
// [Direct] is the O(N*M) time-domain reference used to validate the
// partitioned path.
package conv

import (
	"errors"

	"github.com/cwbudde/algo-vecmath"
)

// Errors returned by convolution functions.
var (
	ErrEmptyInput           = errors.New("conv: empty input")
	ErrEmptyKernel          = errors.New("conv: empty kernel")
	ErrEmptyImpulseResponse = errors.New("conv: empty impulse response")
	ErrLengthMismatch       = errors.New("conv: buffer length mismatch")
)

// Direct performs direct time-domain linear convolution of a and b.
// Returns a new slice of length len(a) + len(b) - 1.
func Direct(a, b []float64) ([]float64, error) {
	if len(a) == 0 {
		return nil, ErrEmptyInput
	}
	if len(b) == 0 {
		return nil, ErrEmptyKernel
	}

	result := make([]float64, len(a)+len(b)-1)
	temp := make([]float64, len(b))
	for i, x := range a {
		vecmath.ScaleBlock(temp, b, x)
		vecmath.AddBlockInPlace(result[i:i+len(b)], temp)
	}
	return result, nil
}

// Package fftengine wraps an algo-fft complex plan behind a fixed-size,
// allocation-free interface with a normalized inverse.
package fftengine

import (
	"errors"
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
)

// ErrLengthMismatch is returned when a buffer does not match the plan size.
var ErrLengthMismatch = errors.New("fftengine: buffer length does not match plan size")

// Engine is a fixed-size complex FFT. Forward is unscaled; Inverse applies
// 1/N so that Inverse(Forward(x)) == x.
type Engine struct {
	plan     *algofft.Plan[complex128]
	size     int
	invScale float64
}

// New returns an engine for transforms of the given size.
func New(size int) (*Engine, error) {
	if size <= 0 {
		return nil, fmt.Errorf("fftengine: size must be > 0: %d", size)
	}

	plan, err := algofft.NewPlan64(size)
	if err != nil {
		return nil, fmt.Errorf("fftengine: plan size %d: %w", size, err)
	}

	e := &Engine{plan: plan, size: size, invScale: 1}
	if err := e.calibrate(); err != nil {
		return nil, err
	}

	return e, nil
}

// calibrate probes the plan's inverse with a flat spectrum, whose normalized
// inverse is a unit impulse, and records the gain needed to reach 1.
func (e *Engine) calibrate() error {
	spec := make([]complex128, e.size)
	for i := range spec {
		spec[i] = 1
	}
	out := make([]complex128, e.size)
	if err := e.plan.Inverse(out, spec); err != nil {
		return fmt.Errorf("fftengine: inverse probe: %w", err)
	}

	g := real(out[0])
	if g == 0 || math.IsNaN(g) {
		return fmt.Errorf("fftengine: inverse probe returned %v", out[0])
	}
	if math.Abs(g-1) > 1e-9 {
		e.invScale = 1 / g
	}
	return nil
}

// Size returns the transform length.
func (e *Engine) Size() int {
	return e.size
}

// Forward computes the unscaled DFT of src into dst. dst and src may alias.
func (e *Engine) Forward(dst, src []complex128) error {
	if len(dst) != e.size || len(src) != e.size {
		return ErrLengthMismatch
	}
	if err := e.plan.Forward(dst, src); err != nil {
		return fmt.Errorf("fftengine: forward: %w", err)
	}
	return nil
}

// Inverse computes the normalized inverse DFT of src into dst. dst and src may alias.
func (e *Engine) Inverse(dst, src []complex128) error {
	if len(dst) != e.size || len(src) != e.size {
		return ErrLengthMismatch
	}
	if err := e.plan.Inverse(dst, src); err != nil {
		return fmt.Errorf("fftengine: inverse: %w", err)
	}
	if e.invScale != 1 {
		s := complex(e.invScale, 0)
		for i := range dst {
			dst[i] *= s
		}
	}
	return nil
}

// LoadReal copies real samples into dst, zero-padding the remainder.
func LoadReal(dst []complex128, src []float64) {
	n := min(len(dst), len(src))
	for i := range n {
		dst[i] = complex(src[i], 0)
	}
	clear(dst[n:])
}

package buffer

import (
	"github.com/cwbudde/algo-vecmath"
	"github.com/tphakala/simd/f64"
)

// Scale multiplies buf by gain in place.
func Scale(buf []float64, gain float64) {
	if len(buf) == 0 {
		return
	}
	vecmath.ScaleBlockInPlace(buf, gain)
}

// Add writes a+b into dst.
func Add(dst, a, b []float64) {
	n := min(len(dst), len(a), len(b))
	if n == 0 {
		return
	}
	vecmath.AddBlock(dst[:n], a[:n], b[:n])
}

// Mix accumulates src*gain into dst.
func Mix(dst, src []float64, gain float64) {
	n := min(len(dst), len(src))
	dst, src = dst[:n], src[:n]

	i := 0
	for ; i+4 <= n; i += 4 {
		dst[i] += src[i] * gain
		dst[i+1] += src[i+1] * gain
		dst[i+2] += src[i+2] * gain
		dst[i+3] += src[i+3] * gain
	}
	for ; i < n; i++ {
		dst[i] += src[i] * gain
	}
}

// Copy copies src into dst and returns the number of copied samples.
func Copy(dst, src []float64) int {
	return copy(dst, src)
}

// Clear sets all samples to 0.
func Clear(buf []float64) {
	clear(buf)
}

// Interleave writes left and right into dst as L,R,L,R...
// It processes min(len(left), len(right), len(dst)/2) frames.
func Interleave(dst, left, right []float64) int {
	n := min(len(left), len(right), len(dst)/2)
	if n == 0 {
		return 0
	}
	f64.Interleave2(dst[:2*n], left[:n], right[:n])
	return n
}

// Deinterleave splits interleaved stereo src into left and right.
// It processes min(len(src)/2, len(left), len(right)) frames.
func Deinterleave(left, right, src []float64) int {
	n := min(len(src)/2, len(left), len(right))
	for i := range n {
		left[i] = src[2*i]
		right[i] = src[2*i+1]
	}
	return n
}

// GainRamp multiplies buf by a gain moving linearly from start toward end.
// The first sample is scaled by start, the last by end-step.
func GainRamp(buf []float64, start, end float64) {
	if len(buf) == 0 {
		return
	}
	step := (end - start) / float64(len(buf))
	g := start
	for i := range buf {
		buf[i] *= g
		g += step
	}
}

// SoftClip applies the rational saturator x/(1+|x|) in place.
func SoftClip(buf []float64) {
	for i, x := range buf {
		if x < 0 {
			buf[i] = x / (1 - x)
		} else {
			buf[i] = x / (1 + x)
		}
	}
}

// HardClip limits buf to [-limit, limit] in place.
func HardClip(buf []float64, limit float64) {
	if limit < 0 {
		limit = -limit
	}
	for i, x := range buf {
		if x > limit {
			buf[i] = limit
		} else if x < -limit {
			buf[i] = -limit
		}
	}
}

// RemoveDC subtracts the block mean from buf in place.
func RemoveDC(buf []float64) {
	if len(buf) == 0 {
		return
	}
	mean := f64.Sum(buf) / float64(len(buf))
	for i := range buf {
		buf[i] -= mean
	}
}

// FindPeak returns the maximum absolute sample value, or 0 for an empty buffer.
func FindPeak(buf []float64) float64 {
	if len(buf) == 0 {
		return 0
	}
	return vecmath.MaxAbs(buf)
}

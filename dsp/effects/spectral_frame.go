package effects

import (
	"math"

	"github.com/cwbudde/algo-vecmath"
)

const (
	spectralFFTSize = 2048
	spectralHopSize = spectralFFTSize / 4
	spectralBins    = spectralFFTSize/2 + 1

	// spectralHopPhase is the phase advance of bin 1 over one hop.
	spectralHopPhase = 2 * math.Pi * spectralHopSize / spectralFFTSize

	// spectralFreezePhaseBlend scales how far phase is pulled toward the
	// frozen snapshot; the remainder keeps evolving from the live input.
	spectralFreezePhaseBlend = 0.9

	spectralShiftEpsilon = 0.001
)

// spectralChannel is the per-channel analysis/resynthesis state.
type spectralChannel struct {
	input  []float64 // sliding analysis buffer, spectralFFTSize
	output []float64 // overlap-add accumulator, 2*spectralFFTSize

	frozenMag   []float64
	frozenPhase []float64
	prevPhase   []float64
	synthPhase  []float64
}

func newSpectralChannel() spectralChannel {
	return spectralChannel{
		input:       make([]float64, spectralFFTSize),
		output:      make([]float64, 2*spectralFFTSize),
		frozenMag:   make([]float64, spectralBins),
		frozenPhase: make([]float64, spectralBins),
		prevPhase:   make([]float64, spectralBins),
		synthPhase:  make([]float64, spectralBins),
	}
}

func (c *spectralChannel) reset() {
	clear(c.input)
	clear(c.output)
	clear(c.frozenMag)
	clear(c.frozenPhase)
	clear(c.prevPhase)
	clear(c.synthPhase)
}

// spectralScratch is per-frame working memory shared by both channels.
type spectralScratch struct {
	frame    []float64
	spectrum []complex128
	re, im   []float64
	mag      []float64
	phase    []float64
	outMag   []float64
	outPhase []float64
}

func newSpectralScratch() spectralScratch {
	return spectralScratch{
		frame:    make([]float64, spectralFFTSize),
		spectrum: make([]complex128, spectralFFTSize),
		re:       make([]float64, spectralBins),
		im:       make([]float64, spectralBins),
		mag:      make([]float64, spectralBins),
		phase:    make([]float64, spectralBins),
		outMag:   make([]float64, spectralBins),
		outPhase: make([]float64, spectralBins),
	}
}

// analyze splits the first spectralBins of sc.spectrum into magnitude and phase.
func (sc *spectralScratch) analyze() {
	for k := range spectralBins {
		v := sc.spectrum[k]
		sc.re[k] = real(v)
		sc.im[k] = imag(v)
		sc.phase[k] = math.Atan2(imag(v), real(v))
	}
	vecmath.Magnitude(sc.mag, sc.re, sc.im)
}

// applyFreeze blends the live frame toward the frozen snapshot. When capture
// is set the snapshot is first replaced by the live frame.
func (c *spectralChannel) applyFreeze(sc *spectralScratch, amount float64, capture bool) {
	if capture {
		copy(c.frozenMag, sc.mag)
		copy(c.frozenPhase, sc.phase)
	}

	pb := amount * spectralFreezePhaseBlend
	for k := range spectralBins {
		sc.mag[k] = sc.mag[k]*(1-amount) + c.frozenMag[k]*amount
		sc.phase[k] = sc.phase[k]*(1-pb) + c.frozenPhase[k]*pb
	}
}

// remapBins writes the bin-shifted magnitude and phase into outMag and
// outPhase, interpolating at source bin k/ratio.
func remapBins(sc *spectralScratch, ratio float64) {
	if math.Abs(ratio-1) <= spectralShiftEpsilon {
		copy(sc.outMag, sc.mag)
		copy(sc.outPhase, sc.phase)
		return
	}

	for k := range spectralBins {
		src := float64(k) / ratio
		i := int(src)
		frac := src - float64(i)

		switch {
		case i < spectralBins-1:
			sc.outMag[k] = sc.mag[i]*(1-frac) + sc.mag[i+1]*frac
			p1, p2 := sc.phase[i], sc.phase[i+1]
			sc.outPhase[k] = p1 + (p2-p1)*frac
		case i == spectralBins-1:
			sc.outMag[k] = sc.mag[i]
			sc.outPhase[k] = sc.phase[i]
		default:
			sc.outMag[k] = 0
			sc.outPhase[k] = 0
		}
	}
}

// advancePhase runs the phase vocoder: the deviation of each bin from its
// expected advance is wrapped to [-π, π] and integrated into synthPhase,
// scaled by the shift ratio.
func (c *spectralChannel) advancePhase(sc *spectralScratch, ratio float64) {
	for k := range spectralBins {
		expected := c.prevPhase[k] + float64(k)*spectralHopPhase
		wrapped := wrapPhase(sc.outPhase[k] - expected)
		trueFreq := float64(k) + wrapped/spectralHopPhase
		c.synthPhase[k] += trueFreq * spectralHopPhase * ratio
		c.prevPhase[k] = sc.outPhase[k]
	}
}

// synthesize builds the conjugate-symmetric spectrum from outMag and
// synthPhase in sc.spectrum.
func (c *spectralChannel) synthesize(sc *spectralScratch) {
	for k := range spectralBins {
		sin, cos := math.Sincos(c.synthPhase[k])
		v := complex(sc.outMag[k]*cos, sc.outMag[k]*sin)
		sc.spectrum[k] = v
		if k > 0 && k < spectralBins-1 {
			sc.spectrum[spectralFFTSize-k] = complex(real(v), -imag(v))
		}
	}
}

func wrapPhase(p float64) float64 {
	return p - math.Round(p/(2*math.Pi))*2*math.Pi
}

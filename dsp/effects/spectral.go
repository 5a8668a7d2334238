package effects

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-ambient/dsp/arena"
	"github.com/cwbudde/algo-ambient/dsp/core"
	"github.com/cwbudde/algo-ambient/dsp/window"
	"github.com/cwbudde/algo-ambient/internal/fftengine"
)

const maxSpectralShiftSemitones = 24

// Spectral is a stereo STFT processor with spectral freeze and bin-domain
// pitch shifting, bound to an arena.
//
// Analysis uses a periodic Hann window of 2048 samples at a hop of 512.
// Each frame may be blended toward a captured snapshot (freeze), remapped
// across bins (shift) and resynthesized with phase-vocoder phase tracking.
// Output is delayed by Latency samples; with freeze and shift at zero it
// reproduces the input.
//
// Freeze state is shared by both channels: the first frame with a non-zero
// freeze amount captures a snapshot on each channel, and a freeze amount of
// exactly zero releases it.
//
// This processor is real-time safe and not thread-safe.
type Spectral struct {
	arena *arena.Arena
	fft   *fftengine.Engine

	window  []float64
	olaGain float64

	channels [arena.Channels]spectralChannel
	scratch  spectralScratch

	hopPos int
	frozen bool
}

// NewSpectral creates a spectral engine bound to a.
func NewSpectral(a *arena.Arena) (*Spectral, error) {
	fft, err := fftengine.New(spectralFFTSize)
	if err != nil {
		return nil, fmt.Errorf("spectral: %w", err)
	}

	w := window.Generate(window.TypeHann, spectralFFTSize, window.WithPeriodic())
	s := &Spectral{
		arena:   a,
		fft:     fft,
		window:  w,
		olaGain: window.OverlapGain(w, spectralHopSize),
		scratch: newSpectralScratch(),
	}
	for ch := range s.channels {
		s.channels[ch] = newSpectralChannel()
	}
	return s, nil
}

// Latency returns the input-to-output delay in samples.
func (s *Spectral) Latency() int {
	return spectralFFTSize
}

// Frozen reports whether a freeze snapshot is held.
func (s *Spectral) Frozen() bool {
	return s.frozen
}

// Reset clears all buffers and phase trackers and releases freeze.
func (s *Spectral) Reset() {
	for ch := range s.channels {
		s.channels[ch].reset()
	}
	s.hopPos = 0
	s.frozen = false
}

// Process runs one block from the arena input regions to the output regions.
// freezeAmount is clamped to [0, 1] and shiftSemitones to [-24, 24].
func (s *Spectral) Process(freezeAmount, shiftSemitones float64) error {
	freeze := core.Clamp(freezeAmount, 0, 1)
	ratio := math.Exp2(core.Clamp(shiftSemitones, -maxSpectralShiftSemitones, maxSpectralShiftSemitones) / 12)

	inL, inR := s.arena.Input(0), s.arena.Input(1)
	outL, outR := s.arena.Output(0), s.arena.Output(1)
	n := min(len(inL), len(inR), len(outL), len(outR))

	left, right := &s.channels[0], &s.channels[1]
	for i := range n {
		at := spectralFFTSize - spectralHopSize + s.hopPos
		left.input[at] = inL[i]
		right.input[at] = inR[i]
		outL[i] = left.output[s.hopPos]
		outR[i] = right.output[s.hopPos]

		s.hopPos++
		if s.hopPos < spectralHopSize {
			continue
		}
		s.hopPos = 0

		capture := freeze > 0 && !s.frozen
		for ch := range s.channels {
			if err := s.processFrame(&s.channels[ch], freeze, ratio, capture); err != nil {
				return err
			}
		}
		s.frozen = freeze > 0
	}
	return nil
}

// processFrame analyzes the channel's current input window, adds the
// resynthesized frame into its output accumulator and slides both buffers
// by one hop.
func (s *Spectral) processFrame(c *spectralChannel, freeze, ratio float64, capture bool) error {
	sc := &s.scratch

	copy(sc.frame, c.input)
	if err := window.ApplyCoefficientsInPlace(sc.frame, s.window); err != nil {
		return fmt.Errorf("spectral: %w", err)
	}
	fftengine.LoadReal(sc.spectrum, sc.frame)
	if err := s.fft.Forward(sc.spectrum, sc.spectrum); err != nil {
		return fmt.Errorf("spectral: forward FFT failed: %w", err)
	}
	sc.analyze()

	if freeze > 0 {
		c.applyFreeze(sc, freeze, capture)
	}
	remapBins(sc, ratio)
	c.advancePhase(sc, ratio)
	c.synthesize(sc)

	if err := s.fft.Inverse(sc.spectrum, sc.spectrum); err != nil {
		return fmt.Errorf("spectral: inverse FFT failed: %w", err)
	}

	copy(c.output, c.output[spectralHopSize:])
	clear(c.output[len(c.output)-spectralHopSize:])

	scale := 1 / s.olaGain
	for i, w := range s.window {
		c.output[i] = core.FlushDenormals(c.output[i] + real(sc.spectrum[i])*w*scale)
	}

	copy(c.input, c.input[spectralHopSize:])
	clear(c.input[spectralFFTSize-spectralHopSize:])
	return nil
}

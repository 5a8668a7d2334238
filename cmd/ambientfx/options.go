package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/cwbudde/algo-ambient/dsp/core"
	"github.com/cwbudde/algo-ambient/dsp/engine"
)

// effectFlags holds the flags shared by render and play.
type effectFlags struct {
	effect  string
	ir      string
	source  string
	block   int
	seed    uint
	verbose bool

	mix         float64
	grainSize   int
	density     float64
	pitchSpread float64
	position    float64
	spray       float64
	freeze      float64
	shift       float64
}

func (f *effectFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.effect, "effect", "convolution", "effect: convolution, granular, spectral")
	fs.StringVar(&f.ir, "ir", "", "impulse response WAV for the convolution effect")
	fs.StringVar(&f.source, "source", "", "source WAV for the granular effect (defaults to the input)")
	fs.IntVar(&f.block, "block", core.DefaultBlockSize, "processing block size in samples (32..512)")
	fs.UintVar(&f.seed, "seed", uint(core.DefaultSeed), "granular random seed")
	fs.BoolVar(&f.verbose, "v", false, "verbose output")

	fs.Float64Var(&f.mix, "mix", 0.5, "convolution dry/wet mix (0..1)")
	fs.IntVar(&f.grainSize, "grain", 2048, "grain size in samples (64..4096)")
	fs.Float64Var(&f.density, "density", 10, "grains per second (1..100)")
	fs.Float64Var(&f.pitchSpread, "pitch-spread", 0, "random grain pitch range in octaves (0..1)")
	fs.Float64Var(&f.position, "position", 0.5, "normalized source read position (0..1)")
	fs.Float64Var(&f.spray, "spray", 0, "random position spread (0..1)")
	fs.Float64Var(&f.freeze, "freeze", 0, "spectral freeze amount (0..1)")
	fs.Float64Var(&f.shift, "shift", 0, "spectral pitch shift in semitones (-24..24)")
}

func (f *effectFlags) params() engine.Params {
	return engine.Params{
		DryWet:         f.mix,
		GrainSize:      f.grainSize,
		Density:        f.density,
		PitchSpread:    f.pitchSpread,
		Position:       f.position,
		Spray:          f.spray,
		Freeze:         f.freeze,
		ShiftSemitones: f.shift,
	}
}

// openEngine creates an initialized engine for sampleRate and loads the
// sources the selected effect needs. input is the decoded input file, used
// as the granular source when none is given.
func (f *effectFlags) openEngine(sampleRate int, input *audioData) (*engine.Engine, engine.Effect, error) {
	effect, err := engine.ParseEffect(f.effect)
	if err != nil {
		return nil, 0, err
	}

	e, err := engine.Open(
		core.WithSampleRate(float64(sampleRate)),
		core.WithBlockSize(f.block),
		core.WithSeed(uint32(f.seed)),
	)
	if err != nil {
		return nil, 0, err
	}

	switch effect {
	case engine.EffectConvolution:
		if f.ir == "" {
			log.Printf("no impulse response given, convolution passes through")
			break
		}
		ir, err := readWAV(f.ir)
		if err != nil {
			return nil, 0, fmt.Errorf("impulse response: %w", err)
		}
		if ir.sampleRate != sampleRate {
			log.Printf("warning: impulse response rate %d Hz differs from input %d Hz", ir.sampleRate, sampleRate)
		}
		if err := e.SetImpulseResponse(ir.samples, ir.channels); err != nil {
			return nil, 0, err
		}
		if f.verbose {
			log.Printf("impulse response: %d frames, %d partitions", ir.frames(), e.Stats().IRPartitions)
		}

	case engine.EffectGranular:
		src := input
		if f.source != "" {
			if src, err = readWAV(f.source); err != nil {
				return nil, 0, fmt.Errorf("granular source: %w", err)
			}
		}
		if err := e.SetGranularSource(src.samples, src.channels); err != nil {
			return nil, 0, err
		}
		if f.verbose {
			log.Printf("granular source: %d frames, %d channels", src.frames(), src.channels)
		}
	}

	return e, effect, nil
}

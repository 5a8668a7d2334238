package effects

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-ambient/dsp/arena"
	"github.com/cwbudde/algo-ambient/dsp/buffer"
	"github.com/cwbudde/algo-ambient/dsp/core"
	"github.com/cwbudde/algo-ambient/dsp/interp"
)

const (
	// GranularCapacity is the size of the grain pool.
	GranularCapacity = 100

	minGranularGrainSize = 64
	maxGranularGrainSize = 4096
	minGranularDensity   = 1.0
	maxGranularDensity   = 100.0

	granularPanSpread = 0.7
	granularMinAmp    = 0.8
	granularAmpRange  = 0.2
)

// ErrEmptyGranularSource is returned when a granular source has no frames.
var ErrEmptyGranularSource = errors.New("granular: empty source")

// GranularParams are the per-block controls of the granular engine.
type GranularParams struct {
	// GrainSize is the grain duration in samples, clamped to [64, 4096].
	GrainSize int
	// Density is grains spawned per second, clamped to [1, 100].
	Density float64
	// PitchSpread is the random pitch range in octaves, clamped to [0, 1].
	PitchSpread float64
	// Position is the normalized read position in the source, clamped to [0, 1].
	Position float64
	// Spray is the random position spread, clamped to [0, 1].
	Spray float64
}

// Clamp returns p with every field limited to its valid range.
func (p GranularParams) Clamp() GranularParams {
	return GranularParams{
		GrainSize:   core.ClampInt(p.GrainSize, minGranularGrainSize, maxGranularGrainSize),
		Density:     core.Clamp(p.Density, minGranularDensity, maxGranularDensity),
		PitchSpread: core.Clamp(p.PitchSpread, 0, 1),
		Position:    core.Clamp(p.Position, 0, 1),
		Spray:       core.Clamp(p.Spray, 0, 1),
	}
}

// lcg is the 32-bit linear congruential generator used for grain parameters.
type lcg struct {
	state uint32
}

func (r *lcg) next() float64 {
	r.state = r.state*1664525 + 1013904223
	return float64(r.state) / math.MaxUint32
}

func (r *lcg) bipolar() float64 {
	return r.next()*2 - 1
}

type granularGrain struct {
	active    bool
	position  float64
	phase     float64
	phaseStep float64
	rate      float64
	amp       float64
	gainL     float64
	gainR     float64
}

// GranularOption configures a Granular engine.
type GranularOption func(*Granular)

// WithGranularSeed sets the initial random generator state. Zero is ignored.
func WithGranularSeed(seed uint32) GranularOption {
	return func(g *Granular) {
		if seed != 0 {
			g.rng.state = seed
		}
	}
}

// Granular is a stereo granular synthesizer reading grains from the source
// loaded into the arena's granular region.
//
// Up to GranularCapacity grains play at once. Each spawn takes the first
// inactive slot in pool order; when the pool is full the spawn is dropped.
// Grain start, pitch, pan and amplitude come from a seeded generator, so a
// given seed and parameter sequence always produce the same output.
//
// This engine is real-time safe (no allocations in Process) and not
// thread-safe.
type Granular struct {
	arena *arena.Arena
	rng   lcg

	grains   [GranularCapacity]granularGrain
	spawnAcc float64

	sourceFrames   int
	sourceChannels int
}

// NewGranular creates a granular engine bound to a.
func NewGranular(a *arena.Arena, opts ...GranularOption) *Granular {
	g := &Granular{
		arena: a,
		rng:   lcg{state: core.DefaultSeed},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

// LoadSource records that frames interleaved frames with channels channels
// were written to the arena's granular region. The samples are not copied.
// All grains stop and spawning restarts from zero.
func (g *Granular) LoadSource(frames, channels int) error {
	info := g.arena.SetGranularSource(frames, channels)
	g.sourceFrames = info.Frames
	g.sourceChannels = info.Channels
	g.Reset()

	if info.Frames == 0 {
		return fmt.Errorf("granular: load source of %d frames: %w", frames, ErrEmptyGranularSource)
	}
	return nil
}

// Loaded reports whether a source is available.
func (g *Granular) Loaded() bool {
	return g.sourceFrames > 0 && g.arena.Flags().Has(arena.FlagGranularReady)
}

// Reset stops all grains and zeroes the spawn accumulator. The source and
// random generator state are kept.
func (g *Granular) Reset() {
	for i := range g.grains {
		g.grains[i].active = false
	}
	g.spawnAcc = 0
}

// ActiveGrains returns the number of grains currently playing.
func (g *Granular) ActiveGrains() int {
	n := 0
	for i := range g.grains {
		if g.grains[i].active {
			n++
		}
	}
	return n
}

// Capacity returns the grain pool size.
func (g *Granular) Capacity() int {
	return len(g.grains)
}

// Process renders one block into the arena output regions. Output is
// silent when no source is loaded.
func (g *Granular) Process(params GranularParams) {
	outL := g.arena.Output(0)
	outR := g.arena.Output(1)
	buffer.Clear(outL)
	buffer.Clear(outR)

	if !g.Loaded() {
		return
	}

	p := params.Clamp()
	source, _ := g.arena.GranularSource()
	sampleRate := g.arena.SampleRate()
	spawnInterval := sampleRate / p.Density
	frames := float64(g.sourceFrames)

	n := min(len(outL), len(outR))
	for i := range n {
		g.spawnAcc++
		if g.spawnAcc >= spawnInterval {
			g.spawnAcc -= spawnInterval
			g.spawn(p)
		}

		var left, right float64
		for k := range g.grains {
			gr := &g.grains[k]
			if !gr.active {
				continue
			}

			s := g.readSource(source, gr.position*frames) * buffer.EnvelopeLookup(gr.phase) * gr.amp
			left += s * gr.gainL
			right += s * gr.gainR

			gr.position += gr.rate / frames
			gr.phase += gr.phaseStep
			if gr.phase >= 1 || gr.position >= 1 {
				gr.active = false
			}
		}
		outL[i] = left
		outR[i] = right
	}

	overlap := max(1, p.Density*float64(p.GrainSize)/sampleRate)
	gain := 1 / math.Sqrt(overlap)
	buffer.Scale(outL, gain)
	buffer.Scale(outR, gain)
}

// spawn activates the first inactive grain. Random draws happen only when a
// slot is free.
func (g *Granular) spawn(p GranularParams) {
	for k := range g.grains {
		gr := &g.grains[k]
		if gr.active {
			continue
		}

		position := core.Clamp(p.Position+g.rng.bipolar()*p.Spray, 0, 1)
		rate := math.Exp2(g.rng.bipolar() * p.PitchSpread)
		pan := g.rng.bipolar() * granularPanSpread
		amp := granularMinAmp + g.rng.next()*granularAmpRange

		panNorm := (pan + 1) * 0.5
		*gr = granularGrain{
			active:    true,
			position:  position,
			phaseStep: 1 / float64(p.GrainSize),
			rate:      rate,
			amp:       amp,
			gainL:     math.Sqrt(1 - panNorm),
			gainR:     math.Sqrt(panNorm),
		}
		return
	}
}

// readSource linearly interpolates the mono (or stereo-averaged) source at a
// fractional frame position. The last frame and beyond read as silence.
func (g *Granular) readSource(source []float64, pos float64) float64 {
	if g.sourceChannels != 2 {
		return interp.At(source[:g.sourceFrames], pos)
	}

	idx := int(pos)
	if pos < 0 || idx >= g.sourceFrames-1 {
		return 0
	}
	j := 2 * idx
	s0 := 0.5 * (source[j] + source[j+1])
	s1 := 0.5 * (source[j+2] + source[j+3])
	return interp.Linear2(pos-float64(idx), s0, s1)
}

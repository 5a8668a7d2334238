package engine

import (
	"fmt"
	"strings"
)

// Effect selects one of the engine's processors.
type Effect int

const (
	EffectConvolution Effect = iota
	EffectGranular
	EffectSpectral
)

var effectNames = [...]string{
	EffectConvolution: "convolution",
	EffectGranular:    "granular",
	EffectSpectral:    "spectral",
}

func (f Effect) String() string {
	if f < 0 || int(f) >= len(effectNames) {
		return fmt.Sprintf("Effect(%d)", int(f))
	}
	return effectNames[f]
}

// ParseEffect maps a name (case-insensitive, "conv" accepted) to an Effect.
func ParseEffect(name string) (Effect, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "convolution", "conv", "reverb":
		return EffectConvolution, nil
	case "granular", "grain":
		return EffectGranular, nil
	case "spectral", "freeze":
		return EffectSpectral, nil
	}
	return 0, fmt.Errorf("engine: unknown effect %q", name)
}

// Latency returns the input-to-output delay of f in samples. The granular
// engine does not process its input and reports 0.
func (e *Engine) Latency(f Effect) int {
	switch f {
	case EffectConvolution:
		return e.convolution.Latency()
	case EffectSpectral:
		return e.spectral.Latency()
	default:
		return 0
	}
}

// Params carries the controls for every effect; Process uses the ones that
// belong to the selected effect.
type Params struct {
	DryWet float64

	GrainSize   int
	Density     float64
	PitchSpread float64
	Position    float64
	Spray       float64

	Freeze         float64
	ShiftSemitones float64
}

// Process runs one block through effect f.
func (e *Engine) Process(f Effect, p Params) error {
	switch f {
	case EffectConvolution:
		return e.ProcessConvolution(p.DryWet)
	case EffectGranular:
		return e.ProcessGranular(p.GrainSize, p.Density, p.PitchSpread, p.Position, p.Spray)
	case EffectSpectral:
		return e.ProcessSpectral(p.Freeze, p.ShiftSemitones)
	}
	return fmt.Errorf("engine: unknown effect %v", f)
}

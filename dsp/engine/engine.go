// Package engine composes the arena and the three effect engines behind one
// explicitly owned handle.
//
// A host creates an Engine, calls Init, loads sources out of band, and then
// for every block fills InputBuffer, calls exactly one Process method and
// reads OutputBuffer. Every call other than Init fails with
// ErrNotInitialized before Init and after Cleanup. Control parameters are
// clamped, never rejected.
//
// An Engine is not safe for concurrent use; loads must be serialized with
// processing by the caller.
package engine

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-ambient/dsp/arena"
	"github.com/cwbudde/algo-ambient/dsp/core"
	"github.com/cwbudde/algo-ambient/dsp/effects"
	"github.com/cwbudde/algo-ambient/dsp/effects/reverb"
)

var (
	// ErrNotInitialized is returned by calls made before Init or after Cleanup.
	ErrNotInitialized = errors.New("engine: not initialized")
	// ErrInvalidChannel is returned for channel indices other than 0 and 1.
	ErrInvalidChannel = errors.New("engine: invalid channel")
)

// Engine owns the arena and the effect engines.
type Engine struct {
	cfg   core.Config
	arena *arena.Arena

	convolution *reverb.Convolution
	granular    *effects.Granular
	spectral    *effects.Spectral
}

// New allocates an engine and all of its working memory. The engine is not
// initialized; call Init before processing.
func New(opts ...core.Option) (*Engine, error) {
	cfg := core.ApplyOptions(opts...)
	a := arena.New()

	conv, err := reverb.NewConvolution(a, cfg.MaxIRPartitions)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	spectral, err := effects.NewSpectral(a)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}

	return &Engine{
		cfg:         cfg,
		arena:       a,
		convolution: conv,
		granular:    effects.NewGranular(a, effects.WithGranularSeed(cfg.Seed)),
		spectral:    spectral,
	}, nil
}

// Open is New followed by Init with the configured sample rate and block size.
func Open(opts ...core.Option) (*Engine, error) {
	e, err := New(opts...)
	if err != nil {
		return nil, err
	}
	if err := e.Init(e.cfg.SampleRate, e.cfg.BlockSize); err != nil {
		return nil, err
	}
	return e, nil
}

// Init validates and applies the processing configuration. On failure the
// engine is left as it was. On success all I/O regions are zeroed, loaded
// sources are dropped and every effect is reset.
func (e *Engine) Init(sampleRate float64, blockSize int) error {
	if err := e.arena.Init(sampleRate, blockSize); err != nil {
		return fmt.Errorf("engine: init: %w", err)
	}
	e.resetEffects()
	return nil
}

// Cleanup releases the configuration and loaded sources. Memory stays
// allocated so a later Init does not allocate.
func (e *Engine) Cleanup() {
	e.arena.Cleanup()
	e.resetEffects()
}

// Reset clears the processing history of every effect. Loaded sources and
// the configuration are kept.
func (e *Engine) Reset() error {
	if !e.arena.Initialized() {
		return ErrNotInitialized
	}
	e.resetEffects()
	return nil
}

func (e *Engine) resetEffects() {
	e.convolution.Reset()
	e.granular.Reset()
	e.spectral.Reset()
}

// Initialized reports whether Init succeeded and Cleanup has not run since.
func (e *Engine) Initialized() bool {
	return e.arena.Initialized()
}

// SampleRate returns the configured rate, or 44100 when not initialized.
func (e *Engine) SampleRate() float64 {
	return e.arena.SampleRate()
}

// BlockSize returns the configured block size, or 128 when not initialized.
func (e *Engine) BlockSize() int {
	return e.arena.BlockSize()
}

// Flags returns the arena readiness flags.
func (e *Engine) Flags() arena.Flags {
	return e.arena.Flags()
}

// InputBuffer returns the input block for channel 0 (left) or 1 (right), or
// nil for an invalid channel or an uninitialized engine.
func (e *Engine) InputBuffer(ch int) []float64 {
	if !validChannel(ch) || !e.arena.Initialized() {
		return nil
	}
	return e.arena.Input(ch)
}

// OutputBuffer returns the output block for channel 0 (left) or 1 (right),
// or nil for an invalid channel or an uninitialized engine.
func (e *Engine) OutputBuffer(ch int) []float64 {
	if !validChannel(ch) || !e.arena.Initialized() {
		return nil
	}
	return e.arena.Output(ch)
}

// CheckChannel returns ErrInvalidChannel unless ch is 0 or 1.
func CheckChannel(ch int) error {
	if !validChannel(ch) {
		return fmt.Errorf("%w: %d", ErrInvalidChannel, ch)
	}
	return nil
}

func validChannel(ch int) bool {
	return ch >= 0 && ch < arena.Channels
}

// ProcessGranular renders one block of granular synthesis.
func (e *Engine) ProcessGranular(grainSize int, density, pitchSpread, position, spray float64) error {
	if !e.arena.Initialized() {
		return ErrNotInitialized
	}
	e.granular.Process(effects.GranularParams{
		GrainSize:   grainSize,
		Density:     density,
		PitchSpread: pitchSpread,
		Position:    position,
		Spray:       spray,
	})
	return nil
}

// ProcessConvolution runs one block through the convolution reverb.
func (e *Engine) ProcessConvolution(dryWet float64) error {
	if !e.arena.Initialized() {
		return ErrNotInitialized
	}
	return e.convolution.Process(dryWet)
}

// ProcessSpectral runs one block through the spectral engine.
func (e *Engine) ProcessSpectral(freezeAmount, shiftSemitones float64) error {
	if !e.arena.Initialized() {
		return ErrNotInitialized
	}
	return e.spectral.Process(freezeAmount, shiftSemitones)
}

// ImpulseResponseRegion returns the arena region the host fills before
// LoadImpulseResponse.
func (e *Engine) ImpulseResponseRegion() []float64 {
	return e.arena.ImpulseResponseRegion()
}

// GranularSourceRegion returns the arena region the host fills before
// LoadGranularSource.
func (e *Engine) GranularSourceRegion() []float64 {
	return e.arena.GranularSourceRegion()
}

// LoadImpulseResponse partitions the frames*channels interleaved samples
// already written to ImpulseResponseRegion.
func (e *Engine) LoadImpulseResponse(frames, channels int) error {
	if !e.arena.Initialized() {
		return ErrNotInitialized
	}
	return e.convolution.LoadImpulseResponse(frames, channels)
}

// LoadGranularSource records the frames*channels interleaved samples
// already written to GranularSourceRegion.
func (e *Engine) LoadGranularSource(frames, channels int) error {
	if !e.arena.Initialized() {
		return ErrNotInitialized
	}
	return e.granular.LoadSource(frames, channels)
}

// SetImpulseResponse copies interleaved samples into the IR region,
// truncating to its capacity, and loads them.
func (e *Engine) SetImpulseResponse(samples []float64, channels int) error {
	if !e.arena.Initialized() {
		return ErrNotInitialized
	}
	channels = core.ClampInt(channels, 1, arena.Channels)
	n := copy(e.arena.ImpulseResponseRegion(), samples)
	return e.LoadImpulseResponse(n/channels, channels)
}

// SetGranularSource copies interleaved samples into the granular region,
// truncating to its capacity, and loads them.
func (e *Engine) SetGranularSource(samples []float64, channels int) error {
	if !e.arena.Initialized() {
		return ErrNotInitialized
	}
	channels = core.ClampInt(channels, 1, arena.Channels)
	n := copy(e.arena.GranularSourceRegion(), samples)
	return e.LoadGranularSource(n/channels, channels)
}

// Stats is a snapshot of engine state for monitoring.
type Stats struct {
	Flags          arena.Flags
	IRPartitions   int
	ActiveGrains   int
	SpectralFrozen bool
}

// Stats returns a snapshot of engine state.
func (e *Engine) Stats() Stats {
	st := Stats{
		Flags:          e.arena.Flags(),
		ActiveGrains:   e.granular.ActiveGrains(),
		SpectralFrozen: e.spectral.Frozen(),
	}
	if e.convolution.Loaded() {
		st.IRPartitions = e.convolution.Partitions()
	}
	return st
}

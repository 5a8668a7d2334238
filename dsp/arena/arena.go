package arena

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-ambient/dsp/core"
)

// Region capacities.
const (
	MaxBlockSize            = core.MaxBlockSize
	GranularSourceCapacity  = 44100 * 10 * 2
	ImpulseResponseCapacity = 48000 * 5 * 2
	MaxFFTSize              = 2048
	Channels                = 2
)

var (
	// ErrInvalidSampleRate is returned by Init for rates outside [8000, 192000].
	ErrInvalidSampleRate = errors.New("arena: invalid sample rate")
	// ErrInvalidBlockSize is returned by Init for sizes outside [32, 512].
	ErrInvalidBlockSize = errors.New("arena: invalid block size")
)

// Flags records engine readiness.
type Flags uint32

const (
	FlagInitialized Flags = 1 << iota
	FlagGranularReady
	FlagIRReady
)

// Has reports whether all bits in f2 are set.
func (f Flags) Has(f2 Flags) bool {
	return f&f2 == f2
}

// SourceInfo describes a sample buffer loaded into a source region.
type SourceInfo struct {
	Frames   int
	Channels int
}

// State is the engine's control block.
type State struct {
	SampleRate float64
	BlockSize  int
	Flags      Flags
	Granular   SourceInfo
	IR         SourceInfo
}

// Arena holds the engine state and every fixed region.
type Arena struct {
	state State

	input  [Channels]Region
	output [Channels]Region
	work   [Channels]Region

	granular Region
	ir       Region

	fftScratch [2][]complex128
}

// New allocates all regions. It is the only allocating call.
func New() *Arena {
	a := &Arena{
		granular: newRegion(GranularSourceCapacity),
		ir:       newRegion(ImpulseResponseCapacity),
	}
	for ch := range Channels {
		a.input[ch] = newRegion(MaxBlockSize)
		a.output[ch] = newRegion(MaxBlockSize)
		a.work[ch] = newRegion(MaxBlockSize)
	}
	for i := range a.fftScratch {
		a.fftScratch[i] = make([]complex128, MaxFFTSize)
	}
	a.resetState()
	return a
}

func (a *Arena) resetState() {
	a.state = State{
		SampleRate: core.DefaultSampleRate,
		BlockSize:  core.DefaultBlockSize,
	}
}

// Init validates and records the processing configuration. On error nothing
// changes. On success the I/O and work regions are zeroed and resized to
// blockSize, loaded source lengths are cleared and only FlagInitialized is set.
func (a *Arena) Init(sampleRate float64, blockSize int) error {
	if !core.ValidSampleRate(sampleRate) {
		return fmt.Errorf("%w: %v (want %v..%v)", ErrInvalidSampleRate, sampleRate, core.MinSampleRate, core.MaxSampleRate)
	}
	if !core.ValidBlockSize(blockSize) {
		return fmt.Errorf("%w: %d (want %d..%d)", ErrInvalidBlockSize, blockSize, core.MinBlockSize, core.MaxBlockSize)
	}

	for ch := range Channels {
		for _, r := range []*Region{&a.input[ch], &a.output[ch], &a.work[ch]} {
			r.ZeroAll()
			r.Resize(blockSize)
		}
	}
	a.granular.Resize(0)
	a.ir.Resize(0)

	a.state = State{
		SampleRate: sampleRate,
		BlockSize:  blockSize,
		Flags:      FlagInitialized,
	}
	return nil
}

// Cleanup clears flags and recorded lengths. Regions stay allocated so a
// later Init needs no allocation.
func (a *Arena) Cleanup() {
	for ch := range Channels {
		a.input[ch].Resize(0)
		a.output[ch].Resize(0)
		a.work[ch].Resize(0)
	}
	a.granular.Resize(0)
	a.ir.Resize(0)
	a.resetState()
}

// Initialized reports whether Init succeeded and Cleanup has not run since.
func (a *Arena) Initialized() bool {
	return a.state.Flags.Has(FlagInitialized)
}

// Flags returns the current readiness flags.
func (a *Arena) Flags() Flags {
	return a.state.Flags
}

// State returns a copy of the control block.
func (a *Arena) State() State {
	return a.state
}

// SampleRate returns the configured rate, or 44100 before Init.
func (a *Arena) SampleRate() float64 {
	return a.state.SampleRate
}

// BlockSize returns the configured block size, or 128 before Init.
func (a *Arena) BlockSize() int {
	return a.state.BlockSize
}

// Input returns the input view for channel ch (0 left, 1 right).
func (a *Arena) Input(ch int) []float64 {
	return a.io(a.input[:], "input", ch)
}

// Output returns the output view for channel ch (0 left, 1 right).
func (a *Arena) Output(ch int) []float64 {
	return a.io(a.output[:], "output", ch)
}

// Work returns scratch region i (0 or 1), sized to the block.
func (a *Arena) Work(i int) []float64 {
	return a.io(a.work[:], "work", i)
}

func (a *Arena) io(regions []Region, name string, ch int) []float64 {
	if ch < 0 || ch >= len(regions) {
		violation("%s channel %d out of range", name, ch)
		return nil
	}
	if !a.Initialized() {
		violation("%s region read before init", name)
		return nil
	}
	return regions[ch].Samples()
}

// FFTScratch returns shared complex scratch i (0 or 1) of MaxFFTSize.
func (a *Arena) FFTScratch(i int) []complex128 {
	if i < 0 || i >= len(a.fftScratch) {
		violation("fft scratch %d out of range", i)
		return nil
	}
	return a.fftScratch[i]
}

// GranularSourceRegion returns the whole granular source region for the host
// to fill before calling SetGranularSource.
func (a *Arena) GranularSourceRegion() []float64 {
	return a.granular.Full()
}

// ImpulseResponseRegion returns the whole impulse response region for the
// host to fill before calling SetImpulseResponse.
func (a *Arena) ImpulseResponseRegion() []float64 {
	return a.ir.Full()
}

// SetGranularSource records that frames interleaved frames with channels
// channels were written to the granular region. Channels are clamped to 1..2
// and frames truncated to capacity. Non-positive frames unload the source.
func (a *Arena) SetGranularSource(frames, channels int) SourceInfo {
	info := a.setSource(&a.granular, frames, channels)
	a.state.Granular = info
	a.setFlag(FlagGranularReady, info.Frames > 0)
	return info
}

// SetImpulseResponse is SetGranularSource for the impulse response region.
func (a *Arena) SetImpulseResponse(frames, channels int) SourceInfo {
	info := a.setSource(&a.ir, frames, channels)
	a.state.IR = info
	a.setFlag(FlagIRReady, info.Frames > 0)
	return info
}

// GranularSource returns the loaded interleaved granular samples.
func (a *Arena) GranularSource() ([]float64, SourceInfo) {
	return a.granular.Samples(), a.state.Granular
}

// ImpulseResponse returns the loaded interleaved impulse response samples.
func (a *Arena) ImpulseResponse() ([]float64, SourceInfo) {
	return a.ir.Samples(), a.state.IR
}

func (a *Arena) setSource(r *Region, frames, channels int) SourceInfo {
	channels = core.ClampInt(channels, 1, Channels)
	frames = max(0, min(frames, r.Cap()/channels))
	r.Resize(frames * channels)
	if frames == 0 {
		return SourceInfo{}
	}
	return SourceInfo{Frames: frames, Channels: channels}
}

func (a *Arena) setFlag(f Flags, on bool) {
	if on {
		a.state.Flags |= f
	} else {
		a.state.Flags &^= f
	}
}

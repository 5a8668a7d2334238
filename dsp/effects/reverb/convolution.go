package reverb

import (
	"fmt"

	"github.com/cwbudde/algo-ambient/dsp/arena"
	"github.com/cwbudde/algo-ambient/dsp/buffer"
	"github.com/cwbudde/algo-ambient/dsp/conv"
	"github.com/cwbudde/algo-ambient/dsp/core"
)

// Convolution is a stereo partitioned convolution reverb bound to an arena.
//
// Process reads the arena input regions and writes the output regions:
//
//	out = (1-dryWet)*in + dryWet*(in ∗ ir)
//
// The wet path is delayed by Latency samples. Without a loaded impulse
// response the input is copied through unchanged. Convolution is real-time
// safe and not thread-safe; loads must not overlap Process.
type Convolution struct {
	arena    *arena.Arena
	set      *conv.PartitionSet
	channels [arena.Channels]*conv.Partitioned
}

// NewConvolution preallocates a reverb with room for maxPartitions
// partitions of conv.PartitionSize samples.
func NewConvolution(a *arena.Arena, maxPartitions int) (*Convolution, error) {
	set, err := conv.NewPartitionSet(maxPartitions)
	if err != nil {
		return nil, fmt.Errorf("reverb: %w", err)
	}

	r := &Convolution{arena: a, set: set}
	for ch := range r.channels {
		r.channels[ch], err = conv.NewPartitioned(set)
		if err != nil {
			return nil, fmt.Errorf("reverb: channel %d: %w", ch, err)
		}
	}
	return r, nil
}

// LoadImpulseResponse partitions the frames*channels interleaved samples the
// host wrote to the arena IR region. Responses longer than the partition
// capacity are truncated. Convolution history is cleared; a failed load
// leaves the reverb in pass-through.
func (r *Convolution) LoadImpulseResponse(frames, channels int) error {
	info := r.arena.SetImpulseResponse(frames, channels)
	ir, _ := r.arena.ImpulseResponse()

	_, err := r.set.Load(ir, info.Channels)
	r.Reset()
	if err != nil {
		r.arena.SetImpulseResponse(0, 1)
		return fmt.Errorf("reverb: load impulse response: %w", err)
	}
	return nil
}

// Loaded reports whether an impulse response is active.
func (r *Convolution) Loaded() bool {
	return r.set.Count() > 0 && r.arena.Flags().Has(arena.FlagIRReady)
}

// Partitions returns the number of loaded partitions.
func (r *Convolution) Partitions() int {
	return r.set.Count()
}

// Latency returns the wet path delay in samples.
func (r *Convolution) Latency() int {
	return conv.PartitionSize
}

// Process runs one block. dryWet is clamped to [0, 1].
func (r *Convolution) Process(dryWet float64) error {
	wet := core.Clamp(dryWet, 0, 1)

	for ch := range r.channels {
		in := r.arena.Input(ch)
		out := r.arena.Output(ch)

		if !r.Loaded() {
			buffer.Copy(out, in)
			continue
		}

		scratch := r.arena.Work(ch)
		if err := r.channels[ch].ProcessBlock(in, scratch); err != nil {
			buffer.Copy(out, in)
			return fmt.Errorf("reverb: channel %d: %w", ch, err)
		}

		buffer.Copy(out, in)
		buffer.Scale(out, 1-wet)
		buffer.Mix(out, scratch, wet)
	}
	return nil
}

// Reset clears convolution history on both channels. The loaded response
// is kept.
func (r *Convolution) Reset() {
	for _, c := range r.channels {
		c.Reset()
	}
}

package conv

import (
	"fmt"

	"github.com/tphakala/simd/c128"

	"github.com/cwbudde/algo-ambient/dsp/core"
	"github.com/cwbudde/algo-ambient/dsp/delay"
	"github.com/cwbudde/algo-ambient/internal/fftengine"
)

// Partition geometry.
const (
	PartitionSize = 256
	FFTSize       = 2 * PartitionSize

	// bins is the number of non-redundant bins of a real 512-point spectrum.
	bins = FFTSize/2 + 1
)

// PartitionSet holds the spectra of an impulse response split into
// PartitionSize blocks. Capacity is fixed at construction.
type PartitionSet struct {
	spectra [][]complex128
	count   int
	frames  int

	fft     *fftengine.Engine
	scratch []complex128
}

// NewPartitionSet preallocates room for maxPartitions partitions.
func NewPartitionSet(maxPartitions int) (*PartitionSet, error) {
	if maxPartitions <= 0 {
		return nil, fmt.Errorf("conv: max partitions must be > 0: %d", maxPartitions)
	}
	fft, err := fftengine.New(FFTSize)
	if err != nil {
		return nil, fmt.Errorf("conv: partition FFT init: %w", err)
	}

	spectra := make([][]complex128, maxPartitions)
	for i := range spectra {
		spectra[i] = make([]complex128, bins)
	}

	return &PartitionSet{
		spectra: spectra,
		fft:     fft,
		scratch: make([]complex128, FFTSize),
	}, nil
}

// Load partitions an interleaved impulse response. Stereo input is averaged
// to mono. Partitions beyond capacity are dropped. It returns the number of
// partitions loaded and does not allocate.
func (s *PartitionSet) Load(ir []float64, channels int) (int, error) {
	channels = max(1, min(channels, 2))
	frames := len(ir) / channels
	if frames == 0 {
		s.count, s.frames = 0, 0
		return 0, ErrEmptyImpulseResponse
	}

	count := min((frames+PartitionSize-1)/PartitionSize, len(s.spectra))
	frames = min(frames, count*PartitionSize)

	for p := range count {
		start := p * PartitionSize
		n := min(PartitionSize, frames-start)
		for i := range n {
			s.scratch[i] = complex(monoFrame(ir, start+i, channels), 0)
		}
		clear(s.scratch[n:])

		if err := s.fft.Forward(s.scratch, s.scratch); err != nil {
			s.count, s.frames = 0, 0
			return 0, fmt.Errorf("conv: partition %d spectrum: %w", p, err)
		}
		copy(s.spectra[p], s.scratch[:bins])
	}

	s.count, s.frames = count, frames
	return count, nil
}

func monoFrame(ir []float64, frame, channels int) float64 {
	if channels == 2 {
		return 0.5 * (ir[2*frame] + ir[2*frame+1])
	}
	return ir[frame]
}

// Clear drops the loaded response.
func (s *PartitionSet) Clear() {
	s.count, s.frames = 0, 0
}

// Count returns the number of loaded partitions.
func (s *PartitionSet) Count() int {
	return s.count
}

// Frames returns the number of IR frames covered by the loaded partitions.
func (s *PartitionSet) Frames() int {
	return s.frames
}

// Capacity returns the maximum number of partitions.
func (s *PartitionSet) Capacity() int {
	return len(s.spectra)
}

// Partitioned is a streaming uniform partitioned convolver for one channel.
// It reads its impulse response from a shared PartitionSet; call Reset after
// the set is reloaded. Latency is PartitionSize samples for any block size.
type Partitioned struct {
	set *PartitionSet
	fft *fftengine.Engine
	fdl *delay.Line[[]complex128]

	inBlock  []float64
	outBlock []float64
	tail     []float64
	blockPos int

	frame   []complex128
	product []complex128
	accum   []complex128
}

// NewPartitioned returns a convolver bound to set, with an FDL sized to the
// set's capacity.
func NewPartitioned(set *PartitionSet) (*Partitioned, error) {
	fft, err := fftengine.New(FFTSize)
	if err != nil {
		return nil, fmt.Errorf("conv: convolver FFT init: %w", err)
	}
	fdl, err := delay.NewWith(set.Capacity(), func(int) []complex128 {
		return make([]complex128, bins)
	})
	if err != nil {
		return nil, fmt.Errorf("conv: frequency delay line: %w", err)
	}

	p := &Partitioned{
		set:      set,
		fft:      fft,
		fdl:      fdl,
		inBlock:  make([]float64, PartitionSize),
		outBlock: make([]float64, PartitionSize),
		tail:     make([]float64, PartitionSize),
		frame:    make([]complex128, FFTSize),
		product:  make([]complex128, bins),
		accum:    make([]complex128, FFTSize),
	}
	p.Reset()
	return p, nil
}

// Latency returns the processing latency in samples.
func (p *Partitioned) Latency() int {
	return PartitionSize
}

// Reset clears the FDL and overlap state and resizes the FDL to the set's
// current partition count. The set's spectra are untouched.
func (p *Partitioned) Reset() {
	p.fdl.SetLen(p.set.Count())
	for i := range p.fdl.Len() {
		clear(p.fdl.At(i))
	}
	clear(p.inBlock)
	clear(p.outBlock)
	clear(p.tail)
	p.blockPos = 0
}

// ProcessBlock convolves input into output. Both must have equal length;
// input and output may alias. Output is input convolved with the impulse
// response and delayed by Latency samples.
func (p *Partitioned) ProcessBlock(input, output []float64) error {
	if len(input) != len(output) {
		return fmt.Errorf("%w: input length %d != output length %d",
			ErrLengthMismatch, len(input), len(output))
	}

	pos := 0
	for pos < len(input) {
		chunk := min(PartitionSize-p.blockPos, len(input)-pos)

		// Stash input before writing output so aliasing is safe.
		copy(p.inBlock[p.blockPos:], input[pos:pos+chunk])
		copy(output[pos:pos+chunk], p.outBlock[p.blockPos:p.blockPos+chunk])

		p.blockPos += chunk
		pos += chunk

		if p.blockPos == PartitionSize {
			if err := p.convolvePartition(); err != nil {
				return err
			}
			p.blockPos = 0
		}
	}

	return nil
}

// convolvePartition transforms the completed input block into the FDL head,
// accumulates Σ X[k-p]·H[p], and overlap-adds the result into outBlock.
func (p *Partitioned) convolvePartition() error {
	count := p.set.Count()
	if count == 0 || p.fdl.Len() != count {
		clear(p.outBlock)
		return nil
	}

	fftengine.LoadReal(p.frame, p.inBlock)
	if err := p.fft.Forward(p.frame, p.frame); err != nil {
		clear(p.outBlock)
		return fmt.Errorf("conv: forward FFT: %w", err)
	}
	copy(*p.fdl.Head(), p.frame[:bins])

	acc := p.accum[:bins]
	clear(acc)
	for part := range count {
		c128.Mul(p.product, p.fdl.At(part), p.set.spectra[part])
		for i, v := range p.product {
			acc[i] += v
		}
	}

	// Rebuild the conjugate-symmetric upper half.
	for k := 1; k < FFTSize/2; k++ {
		v := acc[k]
		p.accum[FFTSize-k] = complex(real(v), -imag(v))
	}
	p.accum[0] = complex(real(p.accum[0]), 0)
	p.accum[FFTSize/2] = complex(real(p.accum[FFTSize/2]), 0)

	if err := p.fft.Inverse(p.accum, p.accum); err != nil {
		clear(p.outBlock)
		return fmt.Errorf("conv: inverse FFT: %w", err)
	}

	for i := range PartitionSize {
		p.outBlock[i] = core.FlushDenormals(real(p.accum[i]) + p.tail[i])
		p.tail[i] = core.FlushDenormals(real(p.accum[PartitionSize+i]))
	}

	p.fdl.Advance()
	return nil
}

package main

import (
	"github.com/cwbudde/algo-ambient/dsp/buffer"
	"github.com/cwbudde/algo-ambient/dsp/engine"
)

// stream feeds audio through the engine one block at a time and produces
// interleaved stereo output.
type stream struct {
	eng    *engine.Engine
	effect engine.Effect
	params engine.Params

	input  *audioData
	pos    int // next input frame
	length int // total frames to produce
	done   int // frames produced
	skip   int // frames of latency still to discard

	block []float64 // interleaved stereo output of the current block
	avail int       // unread frames in block
}

// newStream renders input followed by tail frames of silence. When
// compensate is set the effect latency is trimmed from the start and the
// output has the same length as input plus tail.
func newStream(e *engine.Engine, effect engine.Effect, p engine.Params, input *audioData, tail int, compensate bool) *stream {
	s := &stream{
		eng:    e,
		effect: effect,
		params: p,
		input:  input,
		length: input.frames() + tail,
		block:  make([]float64, 2*e.BlockSize()),
	}
	if compensate {
		s.skip = e.Latency(effect)
	}
	return s
}

// Remaining returns the number of output frames not yet read.
func (s *stream) Remaining() int {
	return s.length - s.done
}

// Read fills dst with interleaved stereo frames and returns the number of
// frames written. It returns 0 once the stream is exhausted.
func (s *stream) Read(dst []float64) (int, error) {
	want := min(len(dst)/2, s.Remaining())
	n := 0
	for n < want {
		if s.avail == 0 {
			if err := s.processBlock(); err != nil {
				return n, err
			}
			if s.skip > 0 {
				drop := min(s.skip, s.avail)
				s.skip -= drop
				s.avail -= drop
				continue
			}
		}
		offset := len(s.block)/2 - s.avail
		k := min(want-n, s.avail)
		copy(dst[2*n:2*(n+k)], s.block[2*offset:2*(offset+k)])
		n += k
		s.avail -= k
	}
	s.done += n
	return n, nil
}

func (s *stream) processBlock() error {
	left := s.eng.InputBuffer(0)
	right := s.eng.InputBuffer(1)
	bs := len(left)

	frames := s.input.frames()
	for i := range bs {
		var l, r float64
		if s.pos < frames {
			if s.input.channels == 1 {
				l = s.input.samples[s.pos]
				r = l
			} else {
				l = s.input.samples[2*s.pos]
				r = s.input.samples[2*s.pos+1]
			}
		}
		left[i] = l
		right[i] = r
		s.pos++
	}

	if err := s.eng.Process(s.effect, s.params); err != nil {
		return err
	}

	buffer.Interleave(s.block, s.eng.OutputBuffer(0), s.eng.OutputBuffer(1))
	s.avail = bs
	return nil
}

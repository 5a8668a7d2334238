package engine

import (
	"errors"

	"github.com/cwbudde/algo-ambient/dsp/arena"
	"github.com/cwbudde/algo-ambient/dsp/conv"
	"github.com/cwbudde/algo-ambient/dsp/effects"
)

// Status is the numeric result code reported to hosts that cannot carry Go
// errors across their boundary.
type Status int

const (
	StatusOK Status = iota
	StatusBadSampleRate
	StatusBadBlockSize
	StatusNotInitialized
	StatusInvalidChannel
	StatusInternal
)

// StatusOf maps an error returned by an Engine method to a Status. Loading
// an empty source is reported as StatusOK: the engine stays usable in
// pass-through (convolution) or silence (granular). Errors of unknown origin
// map to StatusInternal.
func StatusOf(err error) Status {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, conv.ErrEmptyImpulseResponse),
		errors.Is(err, effects.ErrEmptyGranularSource):
		return StatusOK
	case errors.Is(err, arena.ErrInvalidSampleRate):
		return StatusBadSampleRate
	case errors.Is(err, arena.ErrInvalidBlockSize):
		return StatusBadBlockSize
	case errors.Is(err, ErrNotInitialized):
		return StatusNotInitialized
	case errors.Is(err, ErrInvalidChannel):
		return StatusInvalidChannel
	}
	return StatusInternal
}

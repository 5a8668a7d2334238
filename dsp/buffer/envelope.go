package buffer

import "github.com/cwbudde/algo-ambient/dsp/window"

// EnvelopeSize is the number of entries in the grain envelope table.
const EnvelopeSize = 1024

// maxEnvelopePhase keeps the table index below EnvelopeSize.
const maxEnvelopePhase = 0.9999

var envelopeTable = func() [EnvelopeSize]float64 {
	var t [EnvelopeSize]float64
	window.Fill(window.TypeHann, t[:], window.WithPeriodic())
	return t
}()

// EnvelopeLookup returns the raised-cosine grain envelope at phase. Phase is
// clamped to [0, 0.9999] and truncated to a table index.
func EnvelopeLookup(phase float64) float64 {
	if !(phase > 0) {
		phase = 0
	} else if phase > maxEnvelopePhase {
		phase = maxEnvelopePhase
	}
	return envelopeTable[int(phase*EnvelopeSize)]
}

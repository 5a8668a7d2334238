// Package reverb provides the stereo convolution reverb that runs on the
// engine arena.
//
// The impulse response is read from the arena's IR region, averaged to mono
// and partitioned once; both channels share those spectra and keep their own
// frequency-domain delay lines.
package reverb

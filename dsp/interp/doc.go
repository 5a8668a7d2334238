// Package interp provides fractional-position interpolation primitives for
// sample playback.
package interp

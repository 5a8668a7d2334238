// Package effects provides the granular and spectral engines that run on
// the engine arena.
//
//   - Granular: a fixed pool of enveloped, panned grains read from a loaded
//     source with seeded random position, pitch and amplitude.
//   - Spectral: STFT resynthesis with phase-vocoder tracking, spectral freeze
//     and bin-domain pitch shifting.
//
// The convolution reverb lives in the reverb subpackage.
//
// Engines read the arena input regions and write its output regions, one
// block per Process call. Hot paths do not allocate.
package effects

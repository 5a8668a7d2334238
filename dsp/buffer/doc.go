// Package buffer provides the block primitives shared by the effect engines:
// gain, mixing, interleaving, clipping, DC removal, peak detection and the
// grain envelope table.
//
// Every function operates on caller-owned slices and never allocates. When
// operand lengths differ, work is bounded by the shortest one. Wide loops are
// dispatched to algo-vecmath and tphakala/simd, which pick AVX2/NEON kernels
// at runtime and fall back to scalar code elsewhere.
package buffer

package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-ambient/dsp/core"
	"github.com/cwbudde/algo-ambient/dsp/engine"
	"github.com/cwbudde/algo-ambient/internal/testutil"
)

func openTestEngine(t *testing.T, blockSize int) *engine.Engine {
	t.Helper()

	e, err := engine.Open(core.WithBlockSize(blockSize), core.WithMaxIRPartitions(8))
	require.NoError(t, err)
	return e
}

func TestStreamCompensatesSpectralLatency(t *testing.T) {
	e := openTestEngine(t, 128)
	mono := testutil.DeterministicNoise(4, 0.5, 10000)
	in := &audioData{samples: mono, channels: 1, sampleRate: 44100}

	out, err := render(newStream(e, engine.EffectSpectral, engine.Params{}, in, 0, true))
	require.NoError(t, err)
	require.Equal(t, len(mono), out.frames())

	left := make([]float64, out.frames())
	right := make([]float64, out.frames())
	for i := range left {
		left[i] = out.samples[2*i]
		right[i] = out.samples[2*i+1]
	}
	testutil.RequireSliceNearlyEqual(t, left, mono, 1e-9)
	testutil.RequireSliceNearlyEqual(t, right, mono, 1e-9)
}

func TestStreamTailLength(t *testing.T) {
	e := openTestEngine(t, 64)
	require.NoError(t, e.SetImpulseResponse([]float64{1, 0.5}, 1))
	stereo := testutil.DeterministicNoise(8, 0.5, 2*1000)
	in := &audioData{samples: stereo, channels: 2, sampleRate: 44100}

	s := newStream(e, engine.EffectConvolution, engine.Params{DryWet: 0.5}, in, 300, false)
	assert.Equal(t, 1300, s.Remaining())

	out, err := render(s)
	require.NoError(t, err)
	assert.Equal(t, 1300, out.frames())
	assert.Zero(t, s.Remaining())
	testutil.RequireFinite(t, out.samples)

	// Without compensation the first latency frames hold only the dry half.
	lat := e.Latency(engine.EffectConvolution)
	for i := range lat {
		assert.InDelta(t, 0.5*stereo[2*i], out.samples[2*i], 1e-9)
	}
}

func TestWAVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")
	src := &audioData{
		samples:    testutil.DeterministicSine(440, 22050, 0.8, 2*512),
		channels:   2,
		sampleRate: 22050,
		bitDepth:   bitsPerSample24,
	}
	require.NoError(t, writeWAV(path, src))

	got, err := readWAV(path)
	require.NoError(t, err)
	assert.Equal(t, 2, got.channels)
	assert.Equal(t, 22050, got.sampleRate)
	assert.Equal(t, bitsPerSample24, got.bitDepth)
	testutil.RequireSliceNearlyEqual(t, got.samples, src.samples, 1e-6)
}

func TestWriteWAVRejectsBitDepth(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.wav")
	err := writeWAV(path, &audioData{samples: []float64{0}, channels: 1, sampleRate: 8000, bitDepth: 12})
	assert.Error(t, err)
}
